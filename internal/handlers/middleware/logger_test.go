package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type logCall struct {
	level string
	msg   string
	args  []any
}

type recordingLogger struct {
	calls []logCall
}

func (l *recordingLogger) Info(msg string, v ...any) {
	l.calls = append(l.calls, logCall{"info", msg, v})
}

func (l *recordingLogger) Error(msg string, v ...any) {
	l.calls = append(l.calls, logCall{"error", msg, v})
}

func serve(t *testing.T, l logger, h http.HandlerFunc) (*http.Response, string) {
	srv := httptest.NewServer(LoggerMiddleware(l)(h))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/test?x=1")
	require.NoError(t, err, "should make request to test server")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "should read response body")
	defer resp.Body.Close() // nolint:errcheck

	return resp, string(body)
}

func TestLoggerMiddleware(t *testing.T) {
	t.Run("logs request fields", func(t *testing.T) {
		l := &recordingLogger{}

		resp, body := serve(t, l, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
			_, err := w.Write([]byte("hi"))
			require.NoError(t, err, "should write response")
		})

		require.Equalf(t, http.StatusTeapot, resp.StatusCode, "should return status Teapot. Resp: %s", body)
		require.Equal(t, "hi", body)

		require.Len(t, l.calls, 1, "logger should be called once")
		call := l.calls[0]
		require.Equal(t, "info", call.level)
		require.Equal(t, "got HTTP request", call.msg)
		require.Len(t, call.args, 10, "logger should log 10 fields")
		require.Equal(t, "method", call.args[0])
		require.Equal(t, "GET", call.args[1])
		require.Equal(t, "uri", call.args[2])
		require.Equal(t, "/test?x=1", call.args[3])
		require.Equal(t, "duration", call.args[4])
		require.NotEmpty(t, call.args[5], "duration should not be empty")
		require.Equal(t, "status", call.args[6])
		require.Equal(t, http.StatusTeapot, call.args[7])
		require.Equal(t, "size", call.args[8])
		require.Equal(t, 2, call.args[9], "size should be 2 (length of 'hi')")
	})

	t.Run("implicit ok status", func(t *testing.T) {
		l := &recordingLogger{}

		_, _ = serve(t, l, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("hello"))
		})

		require.Len(t, l.calls, 1)
		require.Equal(t, http.StatusOK, l.calls[0].args[7])
		require.Equal(t, 5, l.calls[0].args[9])
	})

	t.Run("server errors logged as errors", func(t *testing.T) {
		l := &recordingLogger{}

		resp, _ := serve(t, l, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.WriteHeader(http.StatusOK) // ignored, header already sent
		})

		require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		require.Len(t, l.calls, 1)
		require.Equal(t, "error", l.calls[0].level)
		require.Equal(t, http.StatusServiceUnavailable, l.calls[0].args[7])
	})
}
