// -----------------------------------------------------------------------
// Tolerant JSON recovery scanner - repairs model output that is almost
// JSON: unescaped quotes and raw newlines inside string literals.
// -----------------------------------------------------------------------

package ai

import "strings"

// RepairJSON rewrites a JSON-like string into structurally valid JSON using
// a single left-to-right pass with two state bits: whether the scanner is
// inside a string literal, and whether the current character is escaped.
//
// Inside a string literal:
//   - a double quote is treated as the terminator only when the next
//     non-whitespace character is a structural delimiter (: , } ]) or the
//     end of input; otherwise it is rewritten to \"
//   - raw newlines and carriage returns are rewritten to \n and \r
//
// This is a heuristic, not a grammar. A quote that happens to precede a
// delimiter while still logically inside a longer string is misread as a
// terminator; that ambiguity is accepted as the cost of a one-pass repair.
// The output is not guaranteed to parse; the caller decides what a second
// parse failure means.
func RepairJSON(input string) string {
	var out strings.Builder
	out.Grow(len(input) + 16)

	inString := false
	isEscaped := false

	for i := 0; i < len(input); i++ {
		c := input[i]

		if isEscaped {
			out.WriteByte(c)
			isEscaped = false
			continue
		}

		if inString && c == '\\' {
			out.WriteByte(c)
			isEscaped = true
			continue
		}

		if c == '"' {
			if !inString {
				inString = true
				out.WriteByte(c)
				continue
			}
			if terminatesString(input, i+1) {
				inString = false
				out.WriteByte(c)
			} else {
				out.WriteString(`\"`)
			}
			continue
		}

		if inString {
			switch c {
			case '\n':
				out.WriteString(`\n`)
				continue
			case '\r':
				out.WriteString(`\r`)
				continue
			}
		}

		out.WriteByte(c)
	}

	return out.String()
}

// terminatesString reports whether the quote before position pos looks like
// a genuine string terminator: the next non-whitespace character must be a
// structural delimiter, or the input must end.
func terminatesString(input string, pos int) bool {
	for i := pos; i < len(input); i++ {
		switch input[i] {
		case ' ', '\t', '\n', '\r':
			continue
		case ':', ',', '}', ']':
			return true
		default:
			return false
		}
	}
	return true
}
