package display

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

const banner = `             _ ____              _
 _ __   __ _| |___ \ _ __   __ _| |
| '_ \ / _` + "`" + ` | | __) | '_ \ / _` + "`" + ` | |
| |_) | (_| | |/ __/| | | | (_| | |
| .__/ \__,_|_|_____|_| |_|\__,_|_|
|_|
`

// PrintBanner writes the ASCII art banner to w, in magenta when colors are
// enabled.
func PrintBanner(w io.Writer) {
	c := color.New(color.FgHiMagenta, color.Bold)
	fmt.Fprint(w, c.Sprint(banner))
}
