package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorGreen  = lipgloss.Color("#22c55e")
	colorRed    = lipgloss.Color("#ef4444")
	colorYellow = lipgloss.Color("#eab308")
	colorBlue   = lipgloss.Color("#3b82f6")
	colorDim    = lipgloss.Color("#6b7280")

	stepStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
	infoStyle    = lipgloss.NewStyle().Foreground(colorDim)
	successStyle = lipgloss.NewStyle().Foreground(colorGreen)
	warningStyle = lipgloss.NewStyle().Foreground(colorYellow)
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
)

const (
	checkMark = "[OK]"
	crossMark = "[!!]"
	warnMark  = "[??]"
	stepMark  = "[..]"
)

// Styled renders messages with lipgloss colors and status marks.
type Styled struct {
	mu  sync.Mutex
	out io.Writer
}

// NewStyled creates a Styled reporter writing to out.
func NewStyled(out io.Writer) *Styled {
	return &Styled{out: out}
}

// Report implements Reporter.
func (s *Styled) Report(level Level, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch level {
	case LevelStep:
		fmt.Fprintf(s.out, "%s %s\n", stepStyle.Render(stepMark), msg)
	case LevelSuccess:
		fmt.Fprintf(s.out, "%s %s\n", successStyle.Render(checkMark), msg)
	case LevelWarning:
		fmt.Fprintf(s.out, "%s %s\n", warningStyle.Render(warnMark), msg)
	case LevelError:
		fmt.Fprintf(s.out, "%s %s\n", errorStyle.Render(crossMark), msg)
	default:
		fmt.Fprintf(s.out, "     %s\n", infoStyle.Render(msg))
	}
}
