package players

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

type line struct {
	text string
	err  error
}

// Lines hands console input to prompts one line at a time. A single
// goroutine reads ahead, so a prompt can give up when its context ends
// and the line it was waiting for goes to the next prompt instead.
type Lines struct {
	r    *bufio.Reader
	once sync.Once
	ch   chan line
	err  error // set before ch is closed
}

// NewLines wraps r. Share one *Lines between every consumer of a stream.
func NewLines(r io.Reader) *Lines {
	return &Lines{r: bufio.NewReader(r), ch: make(chan line)}
}

func (l *Lines) readAhead() {
	for {
		s, err := l.r.ReadString('\n')
		if s != "" {
			l.ch <- line{text: s, err: err}
		}
		if err != nil {
			l.err = err
			close(l.ch)
			return
		}
	}
}

// Next returns the next line including its newline. The final line of
// a stream without a trailing newline comes back with the read error.
func (l *Lines) Next(ctx context.Context) (string, error) {
	l.once.Do(func() { go l.readAhead() })
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case ln, ok := <-l.ch:
		if !ok {
			return "", l.err
		}
		return ln.text, ln.err
	}
}

// ReadChoice writes prompt and reads an integer in [min, max] from in,
// repeating until the input is valid. Read errors, including io.EOF on an
// empty line, and the context error are returned.
func ReadChoice(ctx context.Context, in *Lines, w io.Writer, prompt string, min, max int) (int, error) {
	for {
		if _, err := io.WriteString(w, prompt); err != nil {
			return 0, err
		}
		text, err := in.Next(ctx)
		if text == "" && err != nil {
			return 0, err
		}
		choice := strings.TrimSpace(text)
		if n, perr := strconv.Atoi(choice); perr == nil && n >= min && n <= max {
			return n, nil
		}
		if _, werr := fmt.Fprintf(w, "Invalid choice '%s', please try again!\n", choice); werr != nil {
			return 0, werr
		}
		if err != nil {
			return 0, err
		}
	}
}
