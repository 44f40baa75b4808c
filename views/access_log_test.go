package views

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRedactToken(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/api/topos/1/editor", "/api/topos/1/editor"},
		{"/api/topos/1/editor?token=secret", "/api/topos/1/editor?token=REDACTED"},
		{"/api/topos/1/events?a=1&token=secret", "/api/topos/1/events?a=1&token=REDACTED"},
		{"/api/crags/1/topos?page=2", "/api/crags/1/topos?page=2"},
	}
	for _, tt := range tests {
		if got := redactToken(tt.in); got != tt.want {
			t.Errorf("redactToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAccessLoggerHidesToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	r := gin.New()
	r.Use(AccessLogger(&buf))
	r.GET("/api/topos/:id/editor", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/topos/7/editor?token=secret-token", nil))

	line := buf.String()
	if strings.Contains(line, "secret-token") {
		t.Fatalf("token leaked into access log: %s", line)
	}
	if !strings.Contains(line, "/api/topos/7/editor?token=REDACTED") {
		t.Fatalf("access log = %q", line)
	}
}
