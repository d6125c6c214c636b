package script

import "strings"

// kwPrefix marks string literals that were keywords in the source.
const kwPrefix = "__kw_"

// preprocess rewrites scene source into plain zygomys:
//
//   - :name becomes the string "__kw_name", so keywords need no globals;
//   - ; comments become // comments;
//   - kebab-case identifiers become snake_case, since zygomys reads the
//     dash as subtraction.
//
// String literals pass through untouched.
func preprocess(src string) string {
	var out strings.Builder
	out.Grow(len(src) + len(src)/4)

	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '"' || c == '`':
			j := skipString(src, i)
			out.WriteString(src[i:j])
			i = j

		case c == ';':
			out.WriteString("//")
			for i < len(src) && src[i] == ';' {
				i++
			}
			j := strings.IndexByte(src[i:], '\n')
			if j < 0 {
				j = len(src) - i
			}
			out.WriteString(src[i : i+j])
			i += j

		case c == ':' && i+1 < len(src) && isLetter(src[i+1]):
			j := i + 1
			for j < len(src) && isKeywordChar(src[j]) {
				j++
			}
			out.WriteByte('"')
			out.WriteString(kwPrefix)
			out.WriteString(src[i+1 : j])
			out.WriteByte('"')
			i = j

		case c == '-' && i > 0 && i+1 < len(src) && isIdentChar(src[i-1]) && isLetter(src[i+1]):
			out.WriteByte('_')
			i++

		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String()
}

// skipString returns the index just past the literal starting at i.
// Double-quoted literals honour backslash escapes; raw ones do not.
func skipString(src string, i int) int {
	quote := src[i]
	j := i + 1
	for j < len(src) && src[j] != quote {
		if quote == '"' && src[j] == '\\' {
			j++
		}
		j++
	}
	return min(j+1, len(src))
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentChar(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '_'
}

func isKeywordChar(c byte) bool {
	return isIdentChar(c) || c == '-'
}
