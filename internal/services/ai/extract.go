package ai

import (
	"regexp"
	"strings"
)

// fencePattern matches a whole response wrapped in a markdown code fence,
// with or without a json language hint.
var fencePattern = regexp.MustCompile(`(?s)^\s*` + "```" + `(?:json|JSON)?\s*\n?(.*?)\n?\s*` + "```" + `\s*$`)

// ExtractPayload returns the best-guess JSON substring of a model response.
// It strips a surrounding markdown fence, then, if the remainder does not
// already start with a bracket, slices from the first '{' or '[' to the
// last '}' or ']'. If no bracket exists at all the trimmed text is passed
// through unchanged so that downstream parsing fails explicitly instead of
// guessing further.
func ExtractPayload(response string) string {
	s := strings.TrimSpace(response)

	if matches := fencePattern.FindStringSubmatch(s); len(matches) > 1 {
		s = matches[1]
	} else {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```JSON")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[") {
		return s
	}

	start := firstIndexAny(s, '{', '[')
	end := lastIndexAny(s, '}', ']')
	if start >= 0 && end > start {
		return s[start : end+1]
	}

	return s
}

// firstIndexAny returns the smallest index of either byte, or -1.
func firstIndexAny(s string, a, b byte) int {
	ia := strings.IndexByte(s, a)
	ib := strings.IndexByte(s, b)
	switch {
	case ia < 0:
		return ib
	case ib < 0:
		return ia
	case ia < ib:
		return ia
	default:
		return ib
	}
}

// lastIndexAny returns the largest index of either byte, or -1.
func lastIndexAny(s string, a, b byte) int {
	ia := strings.LastIndexByte(s, a)
	ib := strings.LastIndexByte(s, b)
	if ia > ib {
		return ia
	}
	return ib
}
