// Package counter measures the size of HTTP bodies while they are streamed.
package counter

import (
	"errors"
	"io"
	"sync"
)

// ReadCloser wraps an io.ReadCloser (request/response body) to count bytes read from the reader.
// Optionally, an OnClose callback can be registered, it is called at most once.
type ReadCloser struct {
	wrapped   io.ReadCloser
	onClose   OnClose
	closeOnce sync.Once
	bytes     int64
	readErr   error
}

// OnClose receives the number of bytes read and the most useful error, if any.
type OnClose func(bytes int64, err error)

func NewReadCloser(wrapped io.ReadCloser, onClose OnClose) *ReadCloser {
	return &ReadCloser{wrapped: wrapped, onClose: onClose}
}

func (w *ReadCloser) Bytes() int64 {
	return w.bytes
}

func (w *ReadCloser) Read(b []byte) (int, error) {
	n, err := w.wrapped.Read(b)
	w.bytes += int64(n)
	if err != nil && !errors.Is(err, io.EOF) {
		w.readErr = err
	}
	return n, err
}

func (w *ReadCloser) Close() error {
	closeErr := w.wrapped.Close()
	w.closeOnce.Do(func() {
		if w.onClose == nil {
			return
		}
		// Read error is preferred, it is usually more useful
		err := w.readErr
		if err == nil {
			err = closeErr
		}
		w.onClose(w.bytes, err)
	})
	return closeErr
}
