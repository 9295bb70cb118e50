package sanitize

import (
	"regexp"
	"strings"
)

var (
	jsxComment = regexp.MustCompile(`(?s)\{\s*/\*.*?\*/\s*\}`)

	secretPattern = regexp.MustCompile(
		`(?i)(?:api[_-]?key|secret|private[_-]?key|mnemonic|password|bearer)(\s*[:=]\s*|\s+)["']?[A-Za-z0-9_\-./+=]{8,}["']?`,
	)
	hexKey = regexp.MustCompile(`\b0x[0-9a-fA-F]{64}\b`)
)

// StripComments removes JS/TS line, block and JSX comments from source so
// commented-out code never feeds a heuristic. Newlines inside block comments
// are preserved to keep line numbers stable. Comment markers inside string
// and template literals are text, and "//" after ':' is a URL scheme. Quoted
// strings end at a newline so an apostrophe in JSX text cannot swallow the
// rest of the file.
func StripComments(src string) string {
	src = jsxComment.ReplaceAllStringFunc(src, keepLines)

	var b strings.Builder
	b.Grow(len(src))
	var quote byte
	for i := 0; i < len(src); i++ {
		c := src[i]
		if quote != 0 {
			b.WriteByte(c)
			switch {
			case c == '\\' && i+1 < len(src):
				i++
				b.WriteByte(src[i])
			case c == quote, c == '\n' && quote != '`':
				quote = 0
			}
			continue
		}

		next := byte(0)
		if i+1 < len(src) {
			next = src[i+1]
		}
		switch {
		case c == '"' || c == '\'' || c == '`':
			quote = c
		case c == '/' && next == '*':
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				// unterminated: leave as is
				b.WriteString(src[i:])
				return b.String()
			}
			stop := i + 2 + end + 2
			b.WriteString(keepLines(src[i:stop]))
			i = stop - 1
			continue
		case c == '/' && next == '/' && (i == 0 || src[i-1] != ':'):
			end := strings.IndexByte(src[i:], '\n')
			if end < 0 {
				return b.String()
			}
			i += end - 1
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func keepLines(m string) string {
	return strings.Repeat("\n", strings.Count(m, "\n"))
}

// Redact masks credentials and raw 32-byte hex keys in text that is about to
// leave the process.
func Redact(text string) string {
	text = secretPattern.ReplaceAllStringFunc(text, func(m string) string {
		loc := secretPattern.FindStringSubmatchIndex(m)
		// keep the label and separator, mask the value
		return m[:loc[3]] + "[REDACTED]"
	})
	return hexKey.ReplaceAllString(text, "0x[REDACTED]")
}
