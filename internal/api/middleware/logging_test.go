package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestLoggerRecordsStatusAndBytes(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	h := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("ok"))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/health", nil))

	out := buf.String()
	for _, want := range []string{`"status":201`, `"bytes":2`, `"path":"/health"`, "request completed"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log line missing %s: %s", want, out)
		}
	}
}

func TestLoggerMarksHijackedConnections(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	// A hijacked upgrade never writes through the wrapper, so its
	// status stays 0.
	h := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/ws", nil))

	out := buf.String()
	if !strings.Contains(out, `"hijacked":true`) || !strings.Contains(out, "connection closed") {
		t.Fatalf("hijacked request not marked: %s", out)
	}
	if strings.Contains(out, `"status"`) {
		t.Fatalf("hijacked request should not report a status: %s", out)
	}
}
