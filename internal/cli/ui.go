package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorCyan  = lipgloss.Color("36")
	colorGreen = lipgloss.Color("35")
	colorDim   = lipgloss.Color("240")
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleName    = lipgloss.NewStyle().Foreground(colorCyan)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
)

const (
	iconSuccess = "✓"
	iconInfo    = "›"
)

// printNames 列出已注册的实现，并标出默认项。
func printNames(w io.Writer, title string, names []string, def string) {
	fmt.Fprintln(w, styleTitle.Render(title))
	for _, name := range names {
		line := fmt.Sprintf("  %s %s", styleDim.Render(iconInfo), styleName.Render(name))
		if name == def {
			line += " " + styleDim.Render("(default)")
		}
		fmt.Fprintln(w, line)
	}
}

// printSummary 输出一次运行的结果。
func printSummary(w io.Writer, frames, omitted int, dir string, files []string) {
	msg := fmt.Sprintf("%s rendered %d frame(s) to %s", iconSuccess, frames, dir)
	if omitted > 0 {
		msg += fmt.Sprintf(", %d omitted", omitted)
	}
	fmt.Fprintln(w, styleSuccess.Render(msg))
	if len(files) > 0 {
		fmt.Fprintln(w, styleDim.Render("  "+strings.Join(files, " ")))
	}
}
