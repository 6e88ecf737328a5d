package output

import (
	"fmt"
	"io"
)

// Warnf writes a warning line, typically to stderr.
func Warnf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, "warning: "+format+"\n", args...)
}

// Infof writes an informational line, typically to stderr.
func Infof(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format+"\n", args...)
}
