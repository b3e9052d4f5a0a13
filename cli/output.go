// ABOUTME: Shared output helpers for CLI commands
// ABOUTME: Table writer, dash placeholders and the redirectable stdout
package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
)

// stdout receives all command output. Tests swap it for a buffer.
var stdout io.Writer = os.Stdout

func printf(format string, args ...any) {
	_, _ = fmt.Fprintf(stdout, format, args...)
}

func printLine(args ...any) {
	_, _ = fmt.Fprintln(stdout, args...)
}

func newTable(headers, rule string) *tabwriter.Writer {
	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, headers)
	_, _ = fmt.Fprintln(w, rule)
	return w
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
