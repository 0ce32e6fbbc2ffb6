// Package gzippedhttp compresses HTTP responses for clients that accept
// gzip. Writers are pooled to avoid per-request allocation.
package gzippedhttp

import (
	"compress/gzip"
	"net/http"
	"strings"
	"sync"
)

var writerPool = sync.Pool{
	New: func() any {
		w, _ := gzip.NewWriterLevel(nil, gzip.BestSpeed)
		return w
	},
}

// ResponseWriter wraps http.ResponseWriter and gzips the body.
type ResponseWriter struct {
	w  http.ResponseWriter
	zw *gzip.Writer
}

// NewResponseWriter wraps w with a pooled gzip writer. Every body byte
// goes through the compressor, so the encoding header is set up front
// regardless of the status code the handler ends up writing.
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	zw := writerPool.Get().(*gzip.Writer)
	zw.Reset(w)
	w.Header().Set("Content-Encoding", "gzip")
	return &ResponseWriter{w: w, zw: zw}
}

// Header returns the wrapped response headers.
func (c *ResponseWriter) Header() http.Header {
	return c.w.Header()
}

// WriteHeader forwards the status code.
func (c *ResponseWriter) WriteHeader(statusCode int) {
	c.w.WriteHeader(statusCode)
}

// Write compresses p into the response body.
func (c *ResponseWriter) Write(p []byte) (int, error) {
	return c.zw.Write(p)
}

// Close flushes the compressor and returns it to the pool.
func (c *ResponseWriter) Close() error {
	err := c.zw.Close()
	writerPool.Put(c.zw)
	return err
}

// GzipResponse is the middleware compressing responses when the request's
// Accept-Encoding allows it.
func GzipResponse(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		finalResponse := response

		if strings.Contains(request.Header.Get("Accept-Encoding"), "gzip") {
			compressed := NewResponseWriter(response)
			finalResponse = compressed
			defer compressed.Close()
		}

		h.ServeHTTP(finalResponse, request)
	}

	return http.HandlerFunc(middleware)
}
