package selection

import (
	"bufio"
	"errors"
	"io"
	"log/slog"

	"github.com/muesli/cancelreader"
)

// openConsole wraps the operator input so the line pump can be stopped.
// Inputs that cannot be polled (regular files, /dev/null) still work; they
// just cannot interrupt a read in progress.
func openConsole(in io.Reader) cancelreader.CancelReader {
	reader, err := cancelreader.NewReader(in)
	if err != nil {
		slog.Debug("Operator input is not cancelable", "error", err)
		return &plainReader{Reader: in}
	}
	return reader
}

type plainReader struct {
	io.Reader
}

func (r *plainReader) Cancel() bool { return false }

func (r *plainReader) Close() error { return nil }

// maxInputLine bounds one operator line. Longer lines are dropped whole and
// count as an invalid choice.
const maxInputLine = 4096

// input is one operator line as seen by a session.
type input struct {
	text     string
	overlong bool
}

// pump is the only reader of the operator console. Each line goes to the
// live session, if any.
func (c *Controller) pump() {
	defer close(c.pumpDone)

	reader := bufio.NewReaderSize(c.console, maxInputLine)
	for {
		line, err := readInput(reader)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, cancelreader.ErrCanceled) {
				slog.Debug("Operator input closed")
				return
			}
			slog.Error("Failed to read operator input", "error", err)
			return
		}
		c.deliver(line)
	}
}

// readInput reads up to the next newline. A line over maxInputLine is
// consumed completely but its text is discarded.
func readInput(r *bufio.Reader) (input, error) {
	var (
		line     []byte
		overlong bool
	)
	for {
		chunk, more, err := r.ReadLine()
		if err != nil {
			return input{}, err
		}
		if !overlong {
			if len(line)+len(chunk) > maxInputLine {
				overlong = true
				line = nil
			} else {
				line = append(line, chunk...)
			}
		}
		if !more {
			return input{text: string(line), overlong: overlong}, nil
		}
	}
}

func (c *Controller) deliver(line input) {
	c.mu.Lock()
	s := c.active
	c.mu.Unlock()

	if s == nil {
		slog.Debug("Discarding input, no active session", "input", line.text, "overlong", line.overlong)
		return
	}

	select {
	case s.lines <- line:
	case <-s.done:
		slog.Debug("Discarding input for finished session", "session", s.id, "input", line.text)
	}
}
