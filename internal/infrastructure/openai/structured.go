package openai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/platewise/backend/internal/domain"
)

// StructuredDecoder pulls a JSON object out of free-form model text
type StructuredDecoder interface {
	Decode(text string, v any) error
}

// JSONExtractor tries a fenced code block first, then the first
// brace-balanced object that parses.
type JSONExtractor struct{}

var fencedBlockRegex = regexp.MustCompile("(?is)```(?:json)?\\s*(.*?)```")

// Decode implements StructuredDecoder
func (JSONExtractor) Decode(text string, v any) error {
	raw, ok := ExtractJSON(text)
	if !ok {
		return fmt.Errorf("%w: no JSON object found", domain.ErrUnparsableOutput)
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnparsableOutput, err)
	}
	return nil
}

// ExtractJSON returns the first syntactically valid JSON candidate in text
func ExtractJSON(text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return "", false
	}

	if m := fencedBlockRegex.FindStringSubmatch(text); m != nil {
		if body := strings.TrimSpace(m[1]); json.Valid([]byte(body)) {
			return body, true
		}
	}

	for start := strings.IndexByte(text, '{'); start >= 0; {
		if end := matchingBrace(text, start); end >= 0 {
			if candidate := text[start : end+1]; json.Valid([]byte(candidate)) {
				return candidate, true
			}
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}

	return "", false
}

// matchingBrace returns the index of the '}' closing the '{' at start,
// skipping braces inside string literals. -1 when unbalanced.
func matchingBrace(s string, start int) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
