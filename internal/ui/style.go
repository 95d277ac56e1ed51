package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Sprint color functions for building styled strings.
var (
	Bold        = color.New(color.Bold).SprintFunc()
	Dim         = color.New(color.Faint).SprintFunc()
	Cyan        = color.New(color.FgCyan).SprintFunc()
	Green       = color.New(color.FgGreen).SprintFunc()
	Red         = color.New(color.FgRed).SprintFunc()
	Yellow      = color.New(color.FgYellow).SprintFunc()
	Magenta     = color.New(color.FgMagenta).SprintFunc()
	BoldCyan    = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldGreen   = color.New(color.Bold, color.FgGreen).SprintFunc()
	BoldRed     = color.New(color.Bold, color.FgRed).SprintFunc()
	BoldYellow  = color.New(color.Bold, color.FgYellow).SprintFunc()
	BoldMagenta = color.New(color.Bold, color.FgMagenta).SprintFunc()
	BoldWhite   = color.New(color.Bold, color.FgWhite).SprintFunc()
)

// SetColorMode applies an output.color setting: "always", "never" or "auto".
// Auto keeps fatih/color's own terminal detection.
func SetColorMode(mode string) {
	switch mode {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	}
}

// PrintBanner renders the loomplan banner to w.
func PrintBanner(w io.Writer) {
	frame := color.New(color.FgCyan)
	warp := color.New(color.FgYellow)
	weft := color.New(color.FgCyan, color.Faint)
	brand := color.New(color.Bold, color.FgMagenta)
	tag := color.New(color.Faint)

	fmt.Fprintln(w)
	frame.Fprintln(w, "   +--------------------------+")
	warp.Fprintln(w, "   |  |  |  |  |  |  |  |  |  |")
	weft.Fprintln(w, "   |--+--+--+--+--+--+--+--+--|")
	brand.Fprintln(w, "   |  L  O  O  M  P  L  A  N  |")
	weft.Fprintln(w, "   |--+--+--+--+--+--+--+--+--|")
	warp.Fprintln(w, "   |  |  |  |  |  |  |  |  |  |")
	frame.Fprintln(w, "   +--------------------------+")
	tag.Fprintf(w, "   %s Dependency-aware project planning\n", Dim("🧵"))
	fmt.Fprintln(w)
}

// phaseColors gives each lifecycle phase a distinct color.
var phaseColors = map[string]func(a ...interface{}) string{
	"setup":         BoldCyan,
	"development":   BoldMagenta,
	"testing":       BoldYellow,
	"deployment":    BoldGreen,
	"documentation": color.New(color.Bold, color.FgHiBlue).SprintFunc(),
}

// Phase returns a colored phase label padded to a fixed width.
func Phase(phase string) string {
	c, ok := phaseColors[phase]
	if !ok {
		c = Dim
	}
	return c(fmt.Sprintf("%-13s", phase))
}

// CriticalMark returns the critical-path marker, or padding of equal width.
func CriticalMark(critical bool) string {
	if critical {
		return BoldYellow("⚡")
	}
	return " "
}

// DiagnosticIcon returns a colored icon for a resolver diagnostic kind.
func DiagnosticIcon(kind string) string {
	switch kind {
	case "cycle", "malformed_suggestion":
		return Red("✗")
	case "no_suggestion":
		return Yellow("⊘")
	case "unknown_task", "unknown_dependency":
		return Yellow("⏭")
	default:
		return Dim("◌")
	}
}

// TaskID returns a styled task id.
func TaskID(id string) string {
	return BoldMagenta(id)
}
