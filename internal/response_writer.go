package internal

import (
	"net/http"
	"sync"
)

// ResponseWriter wraps http.ResponseWriter to record whether and what was
// written, so error handlers don't write on top of a started response.
type ResponseWriter struct {
	http.ResponseWriter
	status  int
	size    int64
	written bool
	mu      sync.Mutex
}

// NewResponseWriter creates a new ResponseWriter.
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{
		ResponseWriter: w,
		status:         http.StatusOK,
	}
}

// WriteHeader sends the status code once; later calls are ignored.
func (w *ResponseWriter) WriteHeader(code int) {
	w.mu.Lock()
	if w.written {
		w.mu.Unlock()
		return
	}
	w.written = true
	w.status = code
	w.mu.Unlock()

	w.ResponseWriter.WriteHeader(code)
}

// Write writes the data, sending a 200 status first if none was sent.
func (w *ResponseWriter) Write(b []byte) (int, error) {
	w.mu.Lock()
	if !w.written {
		w.written = true
		w.mu.Unlock()
		w.ResponseWriter.WriteHeader(w.status)
	} else {
		w.mu.Unlock()
	}

	n, err := w.ResponseWriter.Write(b)
	w.mu.Lock()
	w.size += int64(n)
	w.mu.Unlock()
	return n, err
}

// Written reports whether the status line has been sent.
func (w *ResponseWriter) Written() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

// Status returns the sent status code.
func (w *ResponseWriter) Status() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Size returns the number of body bytes written.
func (w *ResponseWriter) Size() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

// Flush implements http.Flusher for streamed downloads.
func (w *ResponseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *ResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
