// Package logging provides logging utilities and middleware for HTTP server.
// It leverages the zap library to offer structured and performant logging.
package logging

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Sugar is a globally accessible SugaredLogger instance.
// It provides a more ergonomic API for logging compared to the base Zap logger.
// It is a no-op until Initialize is called.
var Sugar = *zap.NewNop().Sugar()

// Initialize sets up the global SugaredLogger using Zap's development
// configuration. It must be called before using Sugar.
func Initialize() error {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return err
	}

	Sugar = *logger.Sugar()
	return nil
}

// Middleware returns an HTTP middleware that logs details of each incoming
// HTTP request and its corresponding response: the request URI, method,
// response status code, duration and the size of the response body.
func Middleware() func(h http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			responseData := &responseData{
				status: 0,
				size:   0,
			}

			ww := &loggingResponseWriter{ResponseWriter: w, responseData: responseData}

			h.ServeHTTP(ww, r)

			duration := time.Since(start)

			Sugar.Infoln(
				"uri", r.RequestURI,
				"method", r.Method,
				"status", responseData.status,
				"duration", duration,
				"size", responseData.size,
			)
		})
	}
}

type (
	// responseData holds the status code and body size of a response,
	// captured by the logging middleware.
	responseData struct {
		status int
		size   int
	}

	// loggingResponseWriter wraps http.ResponseWriter to record the
	// status code and response size on the way through.
	loggingResponseWriter struct {
		http.ResponseWriter
		responseData *responseData
	}
)

// Write writes the data to the connection as part of an HTTP response.
func (r *loggingResponseWriter) Write(b []byte) (int, error) {
	size, err := r.ResponseWriter.Write(b)
	r.responseData.size += size
	return size, err
}

// WriteHeader sends an HTTP response header with the provided status code.
func (r *loggingResponseWriter) WriteHeader(statusCode int) {
	r.ResponseWriter.WriteHeader(statusCode)
	r.responseData.status = statusCode
}
