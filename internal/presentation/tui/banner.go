package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{`                     _     _ _ _ `, "#38bdf8"},
	{` __      ____ _ _   _| |__ (_) | |`, "#22d3ee"},
	{` \ \ /\ / / _' | | | | '_ \| | | |`, "#2dd4bf"},
	{`  \ V  V / (_| | |_| | |_) | | | |`, "#34d399"},
	{`   \_/\_/ \__,_|\__, |_.__/|_|_|_|`, "#4ade80"},
	{`                |___/             `, "#a3e635"},
}

// PrintBanner writes the waybill banner and a subtitle to w,
// colored according to the terminal's profile.
func PrintBanner(w io.Writer, subtitle string) {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()

	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, out.String(l.text).Foreground(p.Color(l.color)))
	}
	if subtitle != "" {
		fmt.Fprintln(w, out.String("  "+subtitle).Faint())
	}
	fmt.Fprintln(w)
}
