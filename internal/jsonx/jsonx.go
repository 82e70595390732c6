// Package jsonx extracts JSON payloads from LLM responses. Models wrap JSON
// in markdown fences, prepend prose, or both, so every stage that parses a
// generated payload goes through Unmarshal instead of calling encoding/json
// on the raw response.
package jsonx

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Unmarshal parses the first JSON object found in raw into v. It tries, in
// order: the content of the first fenced code block (or the raw text if
// unfenced), then the first balanced brace-delimited region inside it.
func Unmarshal(raw string, v any) error {
	s := Unfence(raw)
	strictErr := json.Unmarshal([]byte(s), v)
	if strictErr == nil {
		return nil
	}
	if obj, ok := balancedObject(s); ok {
		if err := json.Unmarshal([]byte(obj), v); err == nil {
			return nil
		}
	}
	return fmt.Errorf("extract JSON from response: %w", strictErr)
}

// Unfence returns the content of the first ``` code block, dropping an
// optional language tag. Text without fences is returned trimmed.
func Unfence(s string) string {
	s = strings.TrimSpace(s)
	i := strings.Index(s, "```")
	if i == -1 {
		return s
	}
	rest := s[i+3:]
	if nl := strings.IndexByte(rest, '\n'); nl != -1 {
		// ```json, ```JSON or a bare ``` put the payload on the next line
		tag := strings.TrimSpace(rest[:nl])
		if !strings.ContainsAny(tag, "{[") {
			rest = rest[nl+1:]
		}
	}
	if j := strings.Index(rest, "```"); j != -1 {
		rest = rest[:j]
	}
	return strings.TrimSpace(rest)
}

// balancedObject scans for the first '{' and returns the substring up to its
// matching '}', skipping braces inside string literals.
func balancedObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return "", false
	}
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
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
