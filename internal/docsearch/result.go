package docsearch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/meilisearch/meilisearch-go"
)

// NoResultsMessage is returned when the index has no matching documents.
const NoResultsMessage = "No results found in the indexed documentation."

// Result is one formatted search hit.
type Result struct {
	Title   string
	URL     string
	Content string
}

// resultFromHit applies the title and content precedence rules to a raw hit:
// title is hierarchy.lvl0, then url, then "Untitled"; content prefers the
// highlighted _formatted.content over the raw content field.
func resultFromHit(hit meilisearch.Hit) (Result, error) {
	url, hasURL, err := textField(hit, "url")
	if err != nil {
		return Result{}, err
	}

	hierarchy, err := objectField(hit, "hierarchy")
	if err != nil {
		return Result{}, err
	}
	title, hasTitle, err := textField(hierarchy, "lvl0")
	if err != nil {
		return Result{}, err
	}
	if !hasTitle {
		title = "Untitled"
		if hasURL {
			title = url
		}
	}

	formatted, err := objectField(hit, "_formatted")
	if err != nil {
		return Result{}, err
	}
	content, hasContent, err := textField(formatted, "content")
	if err != nil {
		return Result{}, err
	}
	if !hasContent {
		if content, _, err = textField(hit, "content"); err != nil {
			return Result{}, err
		}
	}

	return Result{Title: title, URL: url, Content: content}, nil
}

// objectField decodes a nested object. Absent and null values yield an empty map.
func objectField(fields map[string]json.RawMessage, key string) (map[string]json.RawMessage, error) {
	raw, ok := fields[key]
	if !ok || isNull(raw) {
		return nil, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("hit field %q is not an object: %w", key, err)
	}
	return obj, nil
}

// textField renders a scalar field as text. Strings are unquoted and numbers
// or booleans keep their JSON spelling. Absent and null values report false.
func textField(fields map[string]json.RawMessage, key string) (string, bool, error) {
	raw, ok := fields[key]
	if !ok || isNull(raw) {
		return "", false, nil
	}

	trimmed := bytes.TrimSpace(raw)
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", false, fmt.Errorf("hit field %q: %w", key, err)
		}
		return s, true, nil
	case '{', '[':
		return "", false, fmt.Errorf("hit field %q is not a scalar", key)
	default:
		return string(trimmed), true, nil
	}
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// Format renders results as markdown blocks separated by blank lines.
// An empty slice renders as NoResultsMessage.
func Format(results []Result) string {
	if len(results) == 0 {
		return NoResultsMessage
	}

	blocks := make([]string, len(results))
	for i, r := range results {
		blocks[i] = fmt.Sprintf("**Result %d:** %s\n**URL:** %s\n**Content:** %s\n", i+1, r.Title, r.URL, r.Content)
	}
	return strings.Join(blocks, "\n\n")
}
