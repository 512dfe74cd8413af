package validation

import (
	"fmt"
	"strings"
)

// patternFields maps runs of SimpleDateFormat pattern letters to Go layout elements.
var patternFields = map[string]string{
	"yyyy": "2006", "yyy": "2006", "y": "2006", "yy": "06",
	"M": "1", "MM": "01", "MMM": "Jan", "MMMM": "January",
	"d": "2", "dd": "02",
	"H": "15", "HH": "15",
	"h": "3", "hh": "03",
	"m": "4", "mm": "04",
	"s": "5", "ss": "05",
	"a": "PM",
	"EEE": "Mon", "EEEE": "Monday",
	"z": "MST", "Z": "-0700", "X": "Z07", "XXX": "Z07:00",
}

// layoutTokens are the non-numeric elements the time package recognizes in a layout.
var layoutTokens = []string{"Jan", "Mon", "MST", "PM", "pm", "_2", "Z07"}

// layoutBuilder assembles a time layout and remembers which bytes are literal text.
type layoutBuilder struct {
	b       strings.Builder
	literal []bool
}

func (l *layoutBuilder) field(s string) {
	l.b.WriteString(s)
	l.literal = append(l.literal, make([]bool, len(s))...)
}

func (l *layoutBuilder) text(s, pattern string) error {
	if strings.ContainsAny(s, "0123456789") {
		return fmt.Errorf("digits are not allowed as literal text in date format '%s'", pattern)
	}
	l.lit(s)
	return nil
}

func (l *layoutBuilder) lit(s string) {
	l.b.WriteString(s)
	for range len(s) {
		l.literal = append(l.literal, true)
	}
}

// layout fails when literal text would be read as a layout element, alone or joined
// with a neighbouring field. The time package has no escape for these.
func (l *layoutBuilder) layout(pattern string) (string, error) {
	out := l.b.String()
	for _, token := range layoutTokens {
		for from := 0; ; {
			i := strings.Index(out[from:], token)
			if i < 0 {
				break
			}
			i += from
			for k := i; k < i+len(token); k++ {
				if l.literal[k] {
					return "", fmt.Errorf("literal text '%s' can't be used in date format '%s'", token, pattern)
				}
			}
			from = i + 1
		}
	}
	return out, nil
}

// DateLayout translates a date pattern in SimpleDateFormat notation (dd/MM/yyyy,
// M/d/yyyy, ...) into a time layout. Literal text may be quoted with single quotes.
func DateLayout(pattern string) (string, error) {
	if strings.TrimSpace(pattern) == "" {
		return "", fmt.Errorf("date format can't be empty")
	}

	var l layoutBuilder
	runes := []rune(pattern)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case r == '\'':
			if i+1 < len(runes) && runes[i+1] == '\'' {
				l.lit("'")
				i += 2
				continue
			}
			end := i + 1
			for end < len(runes) && runes[end] != '\'' {
				end++
			}
			if end == len(runes) {
				return "", fmt.Errorf("unterminated quote in date format '%s'", pattern)
			}
			if err := l.text(string(runes[i+1:end]), pattern); err != nil {
				return "", err
			}
			i = end + 1
		case isPatternLetter(r):
			j := i
			for j < len(runes) && runes[j] == r {
				j++
			}
			field, ok := patternFields[string(runes[i:j])]
			if !ok {
				return "", fmt.Errorf("unsupported field '%s' in date format '%s'", string(runes[i:j]), pattern)
			}
			l.field(field)
			i = j
		default:
			if err := l.text(string(r), pattern); err != nil {
				return "", err
			}
			i++
		}
	}
	return l.layout(pattern)
}

func isPatternLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// ValidateDateFormat accepts patterns that translate and identify a calendar day.
func ValidateDateFormat(val any) error {
	pattern, ok := val.(string)
	if !ok {
		return fmt.Errorf("date format must be a string")
	}
	if _, err := DateLayout(pattern); err != nil {
		return err
	}
	unquoted := stripQuoted(pattern)
	for _, field := range []string{"y", "M", "d"} {
		if !strings.Contains(unquoted, field) {
			return fmt.Errorf("date format '%s' must contain day, month and year", pattern)
		}
	}
	return nil
}

func stripQuoted(pattern string) string {
	var b strings.Builder
	quoted := false
	for _, r := range pattern {
		if r == '\'' {
			quoted = !quoted
			continue
		}
		if !quoted {
			b.WriteRune(r)
		}
	}
	return b.String()
}
