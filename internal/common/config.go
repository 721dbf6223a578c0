package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Logging     LoggingConfig   `toml:"logging"`
	Storage     StorageConfig   `toml:"storage"`
	Docs        DocsConfig      `toml:"docs"`
	Chunking    ChunkingConfig  `toml:"chunking"`
	Embedding   EmbeddingConfig `toml:"embedding"`
	LLM         LLMConfig       `toml:"llm"`
	RAG         RAGConfig       `toml:"rag"`
	Capture     CaptureConfig   `toml:"capture"`
}

type ServerConfig struct {
	Port           int      `toml:"port" validate:"gt=0,lte=65535"`
	Host           string   `toml:"host"`
	AllowedOrigins []string `toml:"allowed_origins"` // CORS allowlist; empty = allow all
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// StorageConfig holds the persisted artifact locations
type StorageConfig struct {
	SQLite SQLiteConfig `toml:"sqlite"`
	Index  IndexConfig  `toml:"index"`
}

// SQLiteConfig configures the conversation history database
type SQLiteConfig struct {
	Path          string `toml:"path" validate:"required"`
	CacheSizeMB   int    `toml:"cache_size_mb"`
	BusyTimeoutMS int    `toml:"busy_timeout_ms"`
	WALMode       bool   `toml:"wal_mode"`
}

// IndexConfig addresses the vector index and its metadata log.
// Both files are always regenerated together; neither is ever updated
// independently once a rebuild starts.
type IndexConfig struct {
	IndexPath string `toml:"index_path" validate:"required"`
	MetaPath  string `toml:"meta_path" validate:"required"`
}

// DocsConfig configures the document roots scanned during indexing
type DocsConfig struct {
	Roots      []string `toml:"roots" validate:"min=1"`
	Extensions []string `toml:"extensions"` // ingested extensions (default: .txt, .md, .pdf)
}

type ChunkingConfig struct {
	MaxChars int `toml:"max_chars" validate:"gt=0"`
	Overlap  int `toml:"overlap" validate:"gte=0"`
}

// EmbeddingConfig selects the embedding model. The same provider/model pair
// must be used for indexing and retrieval or the vector spaces are
// incompatible; the store pins the model name and retrieval warns on mismatch.
type EmbeddingConfig struct {
	Provider  string `toml:"provider" validate:"oneof=gemini local"`
	Model     string `toml:"model"`
	Dimension int    `toml:"dimension" validate:"gt=0"`
	APIKey    string `toml:"api_key"`
	Timeout   string `toml:"timeout"`
	BatchSize int    `toml:"batch_size" validate:"gt=0"`
}

// LLMConfig configures the generation provider the chat surface relays to
type LLMConfig struct {
	Provider    string  `toml:"provider" validate:"oneof=claude gemini"`
	Model       string  `toml:"model"`
	APIKey      string  `toml:"api_key"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float32 `toml:"temperature"`
	Timeout     string  `toml:"timeout"`
}

type RAGConfig struct {
	TopK     int    `toml:"top_k" validate:"gt=0"`
	Watch    bool   `toml:"watch"`    // reindex in the background when document roots change
	Schedule string `toml:"schedule"` // cron schedule (with seconds) for periodic reindex; empty = disabled
}

// CaptureConfig configures where captured web pages are written
type CaptureConfig struct {
	Dir string `toml:"dir"`
}

// NewDefaultConfig returns a configuration populated with defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8585,
			Host: "localhost",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		Storage: StorageConfig{
			SQLite: SQLiteConfig{
				Path:          "./data/data.db",
				CacheSizeMB:   64,
				BusyTimeoutMS: 5000,
				WALMode:       true,
			},
			Index: IndexConfig{
				IndexPath: "./data/rag/index.bin",
				MetaPath:  "./data/rag/meta.jsonl",
			},
		},
		Docs: DocsConfig{
			Roots:      []string{"./data/docs"},
			Extensions: []string{".txt", ".md", ".pdf"},
		},
		Chunking: ChunkingConfig{
			MaxChars: 1200,
			Overlap:  200,
		},
		Embedding: EmbeddingConfig{
			Provider:  "local",
			Model:     "hash-v1",
			Dimension: 384,
			Timeout:   "2m",
			BatchSize: 64,
		},
		LLM: LLMConfig{
			Provider:    "claude",
			MaxTokens:   2048,
			Temperature: 0.7,
			Timeout:     "5m",
		},
		RAG: RAGConfig{
			TopK:  5,
			Watch: false,
		},
		Capture: CaptureConfig{
			Dir: "./data/docs/web",
		},
	}
}

// LoadFromFiles loads configuration with priority: defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files; environment variables override all files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the merged configuration for structural errors.
// Configuration errors are fatal at startup.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Chunking.Overlap >= c.Chunking.MaxChars {
		return fmt.Errorf("invalid configuration: chunking.overlap (%d) must be smaller than chunking.max_chars (%d)", c.Chunking.Overlap, c.Chunking.MaxChars)
	}
	for _, field := range []struct{ name, value string }{
		{"embedding.timeout", c.Embedding.Timeout},
		{"llm.timeout", c.LLM.Timeout},
	} {
		if field.value == "" {
			continue
		}
		if _, err := time.ParseDuration(field.value); err != nil {
			return fmt.Errorf("invalid configuration: %s: %w", field.name, err)
		}
	}
	return nil
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("CHATEAI_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("CHATEAI_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("CHATEAI_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Logging configuration
	if level := os.Getenv("CHATEAI_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("CHATEAI_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Storage configuration
	if path := os.Getenv("CHATEAI_SQLITE_PATH"); path != "" {
		config.Storage.SQLite.Path = path
	}
	if path := os.Getenv("CHATEAI_INDEX_PATH"); path != "" {
		config.Storage.Index.IndexPath = path
	}
	if path := os.Getenv("CHATEAI_META_PATH"); path != "" {
		config.Storage.Index.MetaPath = path
	}

	// Document roots
	if roots := os.Getenv("CHATEAI_DOCS_ROOTS"); roots != "" {
		parsed := []string{}
		for _, r := range strings.Split(roots, ",") {
			if trimmed := strings.TrimSpace(r); trimmed != "" {
				parsed = append(parsed, trimmed)
			}
		}
		if len(parsed) > 0 {
			config.Docs.Roots = parsed
		}
	}

	// Chunking configuration
	if maxChars := os.Getenv("CHATEAI_CHUNK_MAX_CHARS"); maxChars != "" {
		if mc, err := strconv.Atoi(maxChars); err == nil {
			config.Chunking.MaxChars = mc
		}
	}
	if overlap := os.Getenv("CHATEAI_CHUNK_OVERLAP"); overlap != "" {
		if ov, err := strconv.Atoi(overlap); err == nil {
			config.Chunking.Overlap = ov
		}
	}

	// Embedding configuration
	if provider := os.Getenv("CHATEAI_EMBEDDING_PROVIDER"); provider != "" {
		config.Embedding.Provider = provider
	}
	if model := os.Getenv("CHATEAI_EMBEDDING_MODEL"); model != "" {
		config.Embedding.Model = model
	}
	if dim := os.Getenv("CHATEAI_EMBEDDING_DIMENSION"); dim != "" {
		if d, err := strconv.Atoi(dim); err == nil {
			config.Embedding.Dimension = d
		}
	}
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" && config.Embedding.APIKey == "" {
		config.Embedding.APIKey = key
	}

	// LLM configuration
	if provider := os.Getenv("CHATEAI_LLM_PROVIDER"); provider != "" {
		config.LLM.Provider = provider
	}
	if model := os.Getenv("CHATEAI_LLM_MODEL"); model != "" {
		config.LLM.Model = model
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" && config.LLM.APIKey == "" {
		config.LLM.APIKey = key
	}
	// The gemini LLM provider shares Google credentials with the embedder
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" && config.LLM.APIKey == "" && strings.EqualFold(config.LLM.Provider, "gemini") {
		config.LLM.APIKey = key
	}

	// RAG configuration
	if topK := os.Getenv("CHATEAI_RAG_TOP_K"); topK != "" {
		if k, err := strconv.Atoi(topK); err == nil {
			config.RAG.TopK = k
		}
	}
	if watch := os.Getenv("CHATEAI_RAG_WATCH"); watch != "" {
		if w, err := strconv.ParseBool(watch); err == nil {
			config.RAG.Watch = w
		}
	}
	if schedule := os.Getenv("CHATEAI_RAG_SCHEDULE"); schedule != "" {
		config.RAG.Schedule = schedule
	}
}
