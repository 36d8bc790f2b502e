package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/simp-lee/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRequestIDRouter(cfg RequestIDConfig) *gin.Engine {
	r := gin.New()
	r.Use(RequestIDWithConfig(cfg))
	r.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})
	r.GET("/ctx", func(c *gin.Context) {
		c.String(http.StatusOK, findAttrValue(logger.FromContext(c.Request.Context()), "request_id"))
	})
	return r
}

func findAttrValue(attrs []slog.Attr, key string) string {
	for _, a := range attrs {
		if a.Key == key {
			return a.Value.String()
		}
	}
	return ""
}

func requestWithID(r http.Handler, path, upstream string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if upstream != "" {
		req.Header.Set(requestIDHeader, upstream)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID_GeneratesUUID(t *testing.T) {
	w := requestWithID(setupRequestIDRouter(RequestIDConfig{}), "/test", "")

	body := w.Body.String()
	if _, err := uuid.Parse(body); err != nil {
		t.Errorf("request ID %q is not a UUID: %v", body, err)
	}
	if header := w.Header().Get(requestIDHeader); header != body {
		t.Errorf("response header %q = %q; want %q", requestIDHeader, header, body)
	}
}

func TestRequestID_UpstreamHandling(t *testing.T) {
	tests := []struct {
		name      string
		trust     bool
		upstream  string
		wantReuse bool
	}{
		{"untrusted upstream ignored", false, "upstream-id-123", false},
		{"trusted upstream reused", true, "upstream-id-123", true},
		{"64 chars is the limit", true, strings.Repeat("a", 64), true},
		{"too long", true, strings.Repeat("a", 65), false},
		{"bad charset", true, "bad_id", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := requestWithID(setupRequestIDRouter(RequestIDConfig{TrustUpstream: tt.trust}), "/test", tt.upstream)
			body := w.Body.String()
			if tt.wantReuse {
				if body != tt.upstream {
					t.Errorf("request ID = %q; want upstream %q", body, tt.upstream)
				}
				return
			}
			if body == tt.upstream {
				t.Fatal("upstream ID should have been replaced")
			}
			if _, err := uuid.Parse(body); err != nil {
				t.Errorf("replacement %q is not a UUID", body)
			}
		})
	}
}

func TestRequestID_StoredInGoContext(t *testing.T) {
	w := requestWithID(setupRequestIDRouter(RequestIDConfig{TrustUpstream: true}), "/ctx", "ctx-test-456")

	if body := w.Body.String(); body != "ctx-test-456" {
		t.Errorf("expected request ID in context %q, got %q", "ctx-test-456", body)
	}
}

func TestRequestID_UniquePerRequest(t *testing.T) {
	r := setupRequestIDRouter(RequestIDConfig{})

	ids := make(map[string]bool)
	for range 100 {
		id := requestWithID(r, "/test", "").Body.String()
		if ids[id] {
			t.Fatalf("duplicate request ID generated: %q", id)
		}
		ids[id] = true
	}
}

func TestGetRequestID_Empty(t *testing.T) {
	r := gin.New()
	r.GET("/no-id", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	if body := requestWithID(r, "/no-id", "").Body.String(); body != "" {
		t.Errorf("expected empty request ID, got %q", body)
	}
}
