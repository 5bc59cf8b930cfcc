package cli

import (
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// colorEnabled mirrors the NO_COLOR / CLICOLOR_FORCE conventions: force on
// or off via env, otherwise follow whether stdout is a terminal.
func colorEnabled() bool {
	if v := strings.TrimSpace(os.Getenv("NO_COLOR")); v != "" {
		return false
	}
	if v := strings.TrimSpace(os.Getenv("CLICOLOR_FORCE")); v != "" && v != "0" {
		return true
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func init() {
	color.NoColor = !colorEnabled()
}

var (
	colorGreen  = color.New(color.FgGreen).SprintFunc()
	colorRed    = color.New(color.FgRed).SprintFunc()
	colorYellow = color.New(color.FgYellow).SprintFunc()
	colorDim    = color.New(color.FgHiBlack).SprintFunc()
	colorBold   = color.New(color.Bold).SprintFunc()
)

func statusGlyph(ok bool) string {
	if ok {
		return colorGreen("✓")
	}
	return colorRed("✗")
}
