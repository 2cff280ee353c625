package targets

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Reporter prints detect's console narration. Quiet reporters print
// nothing.
type Reporter struct {
	w     io.Writer
	quiet bool

	headerStyle lipgloss.Style
	folderStyle lipgloss.Style
	mutedStyle  lipgloss.Style
}

func NewReporter(w io.Writer, quiet bool, plain bool) *Reporter {
	var opts []termenv.OutputOption
	if plain {
		opts = append(opts, termenv.WithProfile(termenv.Ascii))
	}
	r := lipgloss.NewRenderer(w, opts...)
	return &Reporter{
		w:           w,
		quiet:       quiet,
		headerStyle: r.NewStyle().Bold(true),
		folderStyle: r.NewStyle().Foreground(lipgloss.Color("#7D56F4")),
		mutedStyle:  r.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

func (r *Reporter) Sayf(format string, args ...any) {
	if r.quiet {
		return
	}
	fmt.Fprintln(r.w, r.mutedStyle.Render(fmt.Sprintf(format, args...)))
}

// Written summarises a finished write of folders to path.
func (r *Reporter) Written(path string, folders []string) {
	if r.quiet {
		return
	}
	fmt.Fprintln(r.w, r.headerStyle.Render(fmt.Sprintf("Wrote %d impacted folders to %s", len(folders), path)))
	if len(folders) == 0 {
		fmt.Fprintln(r.w, r.mutedStyle.Render("No impacted folders found"))
		return
	}
	fmt.Fprintln(r.w, "Impacted folders:")
	for _, folder := range folders {
		fmt.Fprintln(r.w, "  - "+r.folderStyle.Render(folder))
	}
}
