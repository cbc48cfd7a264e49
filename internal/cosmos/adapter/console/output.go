package console

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// Output writes user-facing lines. Errors and warnings are coloured when the
// terminal supports it.
type Output struct {
	w         io.Writer
	errColor  *color.Color
	warnColor *color.Color
}

// NewOutput creates an Output writing to w.
func NewOutput(w io.Writer) *Output {
	return &Output{
		w:         w,
		errColor:  color.New(color.FgRed),
		warnColor: color.New(color.FgYellow),
	}
}

func (o *Output) Println(a ...interface{}) {
	fmt.Fprintln(o.w, a...)
}

func (o *Output) Printf(format string, a ...interface{}) {
	fmt.Fprintf(o.w, format+"\n", a...)
}

// Errorf prints a failure line.
func (o *Output) Errorf(format string, a ...interface{}) {
	o.errColor.Fprintf(o.w, format+"\n", a...)
}

// Warnf prints a recoverable condition.
func (o *Output) Warnf(format string, a ...interface{}) {
	o.warnColor.Fprintf(o.w, format+"\n", a...)
}

// Table renders rows under header.
func (o *Output) Table(header []string, rows [][]string) {
	table := tablewriter.NewWriter(o.w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
}
