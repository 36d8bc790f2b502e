package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func setupRecoveryRouter(logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(Recovery(logger))
	r.GET("/panic", func(c *gin.Context) {
		panic("listing index corrupted")
	})
	r.GET("/partial", func(c *gin.Context) {
		c.String(http.StatusAccepted, "started")
		panic("after write")
	})
	r.GET("/ok", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func serve(r http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRecovery_NoPanic_PassesThrough(t *testing.T) {
	var logBuf bytes.Buffer
	w := serve(setupRecoveryRouter(newTestLogger(&logBuf)), "/ok")

	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("got %d %q, want 200 \"ok\"", w.Code, w.Body.String())
	}
	if logBuf.Len() != 0 {
		t.Errorf("expected no log output, got %q", logBuf.String())
	}
}

func TestRecovery_Panic_JSONEnvelope(t *testing.T) {
	var logBuf bytes.Buffer
	w := serve(setupRecoveryRouter(newTestLogger(&logBuf)), "/panic")

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse JSON response: %v", err)
	}
	if code, ok := body["code"].(float64); !ok || int(code) != 500 {
		t.Errorf("expected code 500, got %v", body["code"])
	}
	if msg := body["message"]; msg != "internal server error" {
		t.Errorf("expected message 'internal server error', got %v", msg)
	}
	if val, exists := body["data"]; !exists || val != nil {
		t.Errorf("expected null 'data' field, got %v (present=%v)", val, exists)
	}
	if strings.Contains(w.Body.String(), "corrupted") {
		t.Error("panic value leaked to the client")
	}
}

func TestRecovery_Panic_LogsDetails(t *testing.T) {
	var logBuf bytes.Buffer
	serve(setupRecoveryRouter(newTestLogger(&logBuf)), "/panic")

	out := logBuf.String()
	for _, want := range []string{"panic recovered", "listing index corrupted", "path=/panic", "stack="} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
}

func TestRecovery_Panic_AbortsFurtherHandlers(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(slog.Default()))

	afterCalled := false
	r.Use(func(c *gin.Context) {
		c.Next()
		afterCalled = true
	})
	r.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := serve(r, "/panic")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", w.Code)
	}
	if afterCalled {
		t.Error("middleware after the panic point should not complete")
	}
}

func TestRecovery_Panic_AfterWriteKeepsResponse(t *testing.T) {
	var logBuf bytes.Buffer
	w := serve(setupRecoveryRouter(newTestLogger(&logBuf)), "/partial")

	if w.Code != http.StatusAccepted || w.Body.String() != "started" {
		t.Errorf("got %d %q, want the handler's own response", w.Code, w.Body.String())
	}
	if !strings.Contains(logBuf.String(), "after write") {
		t.Error("panic after write should still be logged")
	}
}

func TestRecovery_NilLoggerUsesDefault(t *testing.T) {
	w := serve(setupRecoveryRouter(nil), "/panic")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", w.Code)
	}
}
