package pkg

import (
	"net/http"
	"testing"
)

func TestRequireActor(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		wantOK bool
	}{
		{"present", "alice", "alice", true},
		{"trimmed", "  bob ", "bob", true},
		{"missing", "", "", false},
		{"blank", "   ", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newResponseTestContext(http.MethodPost, "")
			if tt.header != "" {
				c.Request.Header.Set(ActorHeader, tt.header)
			}

			got, ok := RequireActor(c)
			if got != tt.want || ok != tt.wantOK {
				t.Fatalf("RequireActor() = (%q, %v); want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
			if !ok && w.Code != http.StatusForbidden {
				t.Errorf("status = %d; want 403", w.Code)
			}
		})
	}
}
