package cli

import (
	"fmt"
	"io"
)

const (
	colorGreen  = "\033[92m"
	colorYellow = "\033[93m"
	colorReset  = "\033[0m"
)

// Verdict compares expected and actual, writes a colored PASS or FAIL line
// to w, and reports whether they matched.
func Verdict(w io.Writer, expected, actual, msg string) bool {
	passed := expected == actual
	color, status := colorYellow, "FAIL"
	if passed {
		color, status = colorGreen, "PASS"
	}
	fmt.Fprintf(w, "%s%s: %s%s\n", color, status, msg, colorReset)
	return passed
}
