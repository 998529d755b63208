package storage

import (
	"bytes"
	"context"
)

// ResultStore persists the result list of the session on display. Every save
// replaces the previous list entirely.
type ResultStore interface {
	SaveResults(ctx context.Context, urls []string) error

	Close() error
}

// FormatResults renders urls one per line, most relevant last.
func FormatResults(urls []string) []byte {
	var buf bytes.Buffer
	for i := len(urls) - 1; i >= 0; i-- {
		buf.WriteString(urls[i])
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}
