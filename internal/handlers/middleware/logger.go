package middleware

import (
	"net/http"
	"time"
)

type logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

type responseInfo struct {
	status int
	size   int
}

// statusRecorder remembers what was sent to the client
type statusRecorder struct {
	http.ResponseWriter
	info        responseInfo
	wroteHeader bool
}

func (w *statusRecorder) Write(p []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	size, err := w.ResponseWriter.Write(p)
	w.info.size += size
	return size, err
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.info.status = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

// LoggerMiddleware logs every request once it is served.
// Server side failures go to the error level.
func LoggerMiddleware(l logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{
				ResponseWriter: w,
				info:           responseInfo{status: http.StatusOK},
			}

			next.ServeHTTP(rec, r)

			log := l.Info
			if rec.info.status >= http.StatusInternalServerError {
				log = l.Error
			}
			log(
				"got HTTP request",
				"method", r.Method,
				"uri", r.RequestURI,
				"duration", time.Since(start),
				"status", rec.info.status,
				"size", rec.info.size,
			)
		})
	}
}
