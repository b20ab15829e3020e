package errors

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// contextWindow is the number of file lines captured around an error
// location; the excerpt renderer derives display line numbers from it.
const contextWindow = 5

// adviceWidth is the wrap column for detail prose.
const adviceWidth = 70

// ANSI escape sequences used by the terminal renderer.
const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiRed   = "\033[31m"
	ansiBlue  = "\033[34m"
	ansiCyan  = "\033[36m"
	ansiGray  = "\033[90m"
)

// colorEnabled controls whether ANSI colors are emitted.
var colorEnabled = true

// DisableColors turns off ANSI color output.
func DisableColors() { colorEnabled = false }

// EnableColors turns ANSI color output back on.
func EnableColors() { colorEnabled = true }

func paint(code, s string) string {
	if !colorEnabled {
		return s
	}
	return code + s + ansiReset
}

func red(s string) string  { return paint(ansiRed, s) }
func blue(s string) string { return paint(ansiBlue, s) }
func cyan(s string) string { return paint(ansiCyan, s) }
func gray(s string) string { return paint(ansiGray, s) }
func bold(s string) string { return paint(ansiBold, s) }

// Format renders the error for terminal display: a headline, the source
// location with a file excerpt, then detail, hint, example, and
// documentation link as available.
func (e *MoteError) Format() string {
	var b strings.Builder
	b.WriteString("\n")
	e.writeHeadline(&b)
	e.writeExcerpt(&b)
	e.writeAdvice(&b)
	return b.String()
}

func (e *MoteError) writeHeadline(b *strings.Builder) {
	head := "error"
	if e.Code != "" {
		head = "error[" + e.Code + "]"
	}
	b.WriteString(bold(red(head)))
	b.WriteString(bold(": " + e.Message))
	b.WriteString("\n\n")
}

// writeExcerpt prints the location and the captured file lines, marking
// the offending line and column.
func (e *MoteError) writeExcerpt(b *strings.Builder) {
	if e.Location == nil {
		return
	}
	b.WriteString("  ")
	b.WriteString(cyan(e.Location.String()))
	b.WriteString("\n\n")
	if len(e.Context) == 0 {
		return
	}

	// The capture starts contextWindow/2 lines above the target, clipped
	// at the top of the file.
	first := e.Location.Line - contextWindow/2
	if first < 1 {
		first = 1
	}
	width := len(strconv.Itoa(first + len(e.Context) - 1))

	for i, text := range e.Context {
		n := first + i
		if n != e.Location.Line {
			fmt.Fprintf(b, "    %*d %s %s\n", width, n, gray("│"), text)
			continue
		}
		b.WriteString("  ")
		b.WriteString(red("→ "))
		fmt.Fprintf(b, "%*d %s %s\n", width, n, gray("│"), text)
		if e.Location.Column > 0 {
			b.WriteString(strings.Repeat(" ", 4+width+1))
			b.WriteString(gray("│"))
			b.WriteString(strings.Repeat(" ", e.Location.Column))
			b.WriteString(red("^"))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
}

func (e *MoteError) writeAdvice(b *strings.Builder) {
	if e.Detail != "" {
		for _, line := range wrapText(e.Detail, adviceWidth) {
			b.WriteString("  ")
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	if e.Suggestion != "" {
		b.WriteString("  ")
		b.WriteString(cyan("Hint: "))
		b.WriteString(e.Suggestion)
		b.WriteString("\n\n")
	}
	if e.Example != "" {
		b.WriteString("  ")
		b.WriteString(cyan("Example:"))
		b.WriteString("\n")
		for _, line := range strings.Split(e.Example, "\n") {
			b.WriteString("    ")
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	if e.DocURL != "" {
		b.WriteString("  ")
		b.WriteString(gray("Learn more: "))
		b.WriteString(blue(e.DocURL))
		b.WriteString("\n")
	}
}

// FormatCompact renders the error on one line, editor style:
// file:line:col: CODE: message.
func (e *MoteError) FormatCompact() string {
	parts := make([]string, 0, 3)
	if e.Location != nil {
		parts = append(parts, e.Location.String())
	}
	if e.Code != "" {
		parts = append(parts, e.Code)
	}
	parts = append(parts, e.Message)
	return strings.Join(parts, ": ")
}

// FormatJSON renders the error as a single JSON object for tooling that
// consumes CLI output.
func (e *MoteError) FormatJSON() string {
	type location struct {
		File   string `json:"file"`
		Line   int    `json:"line"`
		Column int    `json:"column"`
	}
	payload := struct {
		Code       string    `json:"code,omitempty"`
		Category   Category  `json:"category"`
		Message    string    `json:"message"`
		Detail     string    `json:"detail,omitempty"`
		Location   *location `json:"location,omitempty"`
		Suggestion string    `json:"suggestion,omitempty"`
		DocURL     string    `json:"docUrl,omitempty"`
	}{
		Code:       e.Code,
		Category:   e.Category,
		Message:    e.Message,
		Detail:     e.Detail,
		Suggestion: e.Suggestion,
		DocURL:     e.DocURL,
	}
	if e.Location != nil {
		payload.Location = &location{e.Location.File, e.Location.Line, e.Location.Column}
	}
	out, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf(`{"message":%q}`, e.Message)
	}
	return string(out)
}

// wrapText greedily fills lines of at most width characters, breaking on
// whitespace. A word longer than width gets a line of its own.
func wrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+len(w)+1 > width {
			lines = append(lines, line)
			line = w
			continue
		}
		line += " " + w
	}
	return append(lines, line)
}

// PrintError writes a formatted error to stderr. MoteErrors render with
// their full context; anything else gets the plain headline treatment.
func PrintError(err error) {
	if me, ok := err.(*MoteError); ok {
		fmt.Fprint(os.Stderr, me.Format())
		return
	}
	fmt.Fprintf(os.Stderr, "\n%s %s\n\n", bold(red("error:")), err.Error())
}
