package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func testContext(t *testing.T) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/", nil)
	return c
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		forwarded  string
		realIP     string
		remoteAddr string
		want       string
	}{
		{"first forwarded entry wins", "203.0.113.7, 10.0.0.1", "198.51.100.2", "192.0.2.1:4567", "203.0.113.7"},
		{"forwarded entry is trimmed", " 203.0.113.7 ", "", "192.0.2.1:4567", "203.0.113.7"},
		{"real ip beats remote addr", "", "198.51.100.2", "192.0.2.1:4567", "198.51.100.2"},
		{"remote addr port stripped", "", "", "192.0.2.1:4567", "192.0.2.1"},
		{"bare remote addr passes through", "", "", "192.0.2.1", "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testContext(t)
			if tt.forwarded != "" {
				c.Request.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				c.Request.Header.Set("X-Real-IP", tt.realIP)
			}
			c.Request.RemoteAddr = tt.remoteAddr

			assert.Equal(t, tt.want, clientIP(c))
		})
	}
}
