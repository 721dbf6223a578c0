package loader

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// frontMatterMarker delimits the optional metadata block at the top of a
// markdown file, as written by the capture writer.
const frontMatterMarker = "---"

// ParseFrontMatter splits an optional leading front-matter block from the
// body and parses it into a string mapping. Parsing never fails: an absent
// block returns the whole input as body with empty metadata, and a malformed
// block degrades to a permissive line-based parser before giving up and
// returning the original text untouched.
func ParseFrontMatter(content string) (map[string]string, string) {
	lines := strings.Split(content, "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], "\r") != frontMatterMarker {
		return map[string]string{}, content
	}

	closing := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], "\r") == frontMatterMarker {
			closing = i
			break
		}
	}
	if closing == -1 {
		// Unterminated block: treat the whole input as body
		return map[string]string{}, content
	}

	block := strings.Join(lines[1:closing], "\n")
	body := strings.Join(lines[closing+1:], "\n")

	meta, err := parseYAMLBlock(block)
	if err != nil {
		meta = parseLooseBlock(lines[1:closing])
	}
	if len(meta) == 0 && err != nil {
		// Nothing salvageable: fall back to the original full text
		return map[string]string{}, content
	}

	return meta, body
}

// parseYAMLBlock is the strict path: the block must be a flat mapping of
// scalar values (multi-line strings via "key: |" included).
func parseYAMLBlock(block string) (map[string]string, error) {
	raw := map[string]interface{}{}
	if err := yaml.Unmarshal([]byte(block), &raw); err != nil {
		return nil, err
	}

	meta := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
			meta[k] = ""
		case string:
			meta[k] = strings.TrimSpace(val)
		case time.Time:
			// yaml resolves unquoted ISO-8601 scalars to time.Time; keep
			// the on-disk RFC3339 form instead of Go's default rendering
			meta[k] = val.UTC().Format(time.RFC3339)
		case bool, int, int64, float64:
			meta[k] = strings.TrimSpace(fmt.Sprintf("%v", val))
		default:
			// Nested mappings or sequences are not part of the capture
			// format; stringify rather than fail the whole block.
			meta[k] = strings.TrimSpace(fmt.Sprintf("%v", val))
		}
	}
	return meta, nil
}

// parseLooseBlock is the permissive fallback: line-based "key: value"
// extraction where indented text under a "key: |" line accumulates into a
// single multi-line value for that key.
func parseLooseBlock(lines []string) map[string]string {
	meta := map[string]string{}
	var blockKey string
	var blockLines []string

	flush := func() {
		if blockKey != "" {
			meta[blockKey] = strings.TrimSpace(strings.Join(blockLines, "\n"))
		}
		blockKey = ""
		blockLines = nil
	}

	for _, line := range lines {
		trimmed := strings.TrimRight(line, "\r")

		// Continuation of a "key: |" block
		if blockKey != "" {
			if strings.HasPrefix(trimmed, " ") || strings.HasPrefix(trimmed, "\t") || trimmed == "" {
				blockLines = append(blockLines, strings.TrimSpace(trimmed))
				continue
			}
			flush()
		}

		idx := strings.Index(trimmed, ":")
		if idx <= 0 {
			continue
		}
		key := strings.TrimSpace(trimmed[:idx])
		value := strings.TrimSpace(trimmed[idx+1:])
		if key == "" {
			continue
		}
		if value == "|" || value == ">" {
			blockKey = key
			blockLines = nil
			continue
		}
		meta[key] = value
	}
	flush()

	return meta
}
