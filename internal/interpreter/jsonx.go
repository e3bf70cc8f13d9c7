package interpreter

import (
	"fmt"
	"regexp"
	"strings"
)

var fencedJSONRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// ExtractJSON pulls a JSON object out of a model response. It tries a
// fenced code block first, then the first balanced {...} span in the raw
// text. Model output frequently wraps JSON in prose or markdown; both
// shapes must parse identically.
func ExtractJSON(response string) (string, error) {
	if m := fencedJSONRe.FindStringSubmatch(response); m != nil {
		return m[1], nil
	}

	start := strings.Index(response, "{")
	if start < 0 {
		return "", fmt.Errorf("no JSON object found in response")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(response); i++ {
		ch := response[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return response[start : i+1], nil
				}
			}
		}
	}

	return "", fmt.Errorf("unterminated JSON object in response")
}
