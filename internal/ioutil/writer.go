// Package ioutil holds small io.Writer helpers used by cmd/lox to wrap the
// print sink it hands to the vm package.
package ioutil

import (
	"io"

	"github.com/pkg/errors"
)

// ErrWriter wraps an io.Writer and remembers its first write error. Once set,
// every subsequent Write short-circuits and returns that same error instead
// of attempting another write, so a broken print sink surfaces once instead
// of on every print statement.
type ErrWriter struct {
	w   io.Writer
	Err error
}

func (w *ErrWriter) Write(p []byte) (n int, err error) {
	if w.Err != nil {
		return 0, w.Err
	}
	n, err = w.w.Write(p)
	if err != nil {
		w.Err = errors.Wrap(err, "write failed")
	}
	return n, w.Err
}

// NewErrWriter returns a new ErrWriter wrapping w.
func NewErrWriter(w io.Writer) *ErrWriter {
	return &ErrWriter{w: w}
}
