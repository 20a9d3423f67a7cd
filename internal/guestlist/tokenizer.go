package guestlist

import "strings"

// Delimiter is the field separator used for a whole guest-list document
type Delimiter rune

const (
	Comma     Delimiter = ','
	Semicolon Delimiter = ';'
)

func (d Delimiter) String() string {
	return string(rune(d))
}

// DetectDelimiter picks the separator from a header line.
// Semicolon wins only when it occurs strictly more often than comma.
func DetectDelimiter(line string) Delimiter {
	if strings.Count(line, ";") > strings.Count(line, ",") {
		return Semicolon
	}
	return Comma
}

// Tokenize splits raw text into rows of trimmed fields.
// Blank lines are dropped and the delimiter is chosen once from the first surviving line.
func Tokenize(raw string) ([][]string, Delimiter) {
	raw = strings.TrimPrefix(raw, "\ufeff")

	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}

	if len(lines) == 0 {
		return nil, Comma
	}

	delim := DetectDelimiter(lines[0])
	out := make([][]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, splitLine(line, delim))
	}
	return out, delim
}

// splitLine splits one line honoring double-quote quoting.
// An unterminated quote swallows the rest of the line into the current field.
func splitLine(line string, delim Delimiter) []string {
	var (
		fields []string
		field  strings.Builder
		quoted bool
	)
	runes := []rune(line)
	sep := rune(delim)

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"':
			if quoted && i+1 < len(runes) && runes[i+1] == '"' {
				field.WriteRune('"')
				i++
				continue
			}
			quoted = !quoted
		case r == sep && !quoted:
			fields = append(fields, strings.TrimSpace(field.String()))
			field.Reset()
		default:
			field.WriteRune(r)
		}
	}
	fields = append(fields, strings.TrimSpace(field.String()))
	return fields
}
