package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Exitf reports a start-up failure as "<program>: <message>" on stderr
// and exits with status 1.
func Exitf(format string, args ...any) {
	writeFatal(os.Stderr, filepath.Base(os.Args[0]), format, args...)
	os.Exit(1)
}

func writeFatal(w io.Writer, program, format string, args ...any) {
	fmt.Fprintf(w, "%s: %s\n", program, fmt.Sprintf(format, args...))
}
