package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

// Format is the output format of a command.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates the --output flag.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatText, FormatJSON:
		return f, nil
	}
	return FormatText, fmt.Errorf("invalid output format: %s (must be 'text' or 'json')", s)
}

func addFormatFlag(cmd *cobra.Command, target *string) {
	cmd.PersistentFlags().StringVarP(target, "output", "o", string(FormatText), "Output format (text|json)")
}

// render writes data as JSON, or calls text to print it for humans.
func (a *App) render(data any, text func(w io.Writer)) error {
	if a.format == FormatJSON {
		encoder := json.NewEncoder(a.stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)
	}
	text(a.stdout)
	return nil
}

// table prints rows under header, aligned in columns.
func table(out io.Writer, header string, rows func(w io.Writer)) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, header)
	rows(w)
	_ = w.Flush()
}

// message prints a confirmation line, or {"message": ...} in JSON mode.
func (a *App) message(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	return a.render(map[string]string{"message": text}, func(w io.Writer) {
		fmt.Fprintln(w, text)
	})
}

func emptyOr(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
