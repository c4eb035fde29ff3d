package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vivamos/vivamos/internal/server/auth"
	"github.com/vivamos/vivamos/internal/server/gate"
)

func okHandler(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func TestRouter_VisibilityResolution(t *testing.T) {
	g := gate.New(gate.NewVisibility(), auth.NewTokenIssuer([]byte("k"), time.Hour), nil)
	r := NewRouter(g, nil)

	open := r.Group("/open", Public())
	open.HandleFunc(http.MethodGet, "a", okHandler)
	open.HandleFunc(http.MethodGet, "b", okHandler, Protected())

	closed := r.Group("/closed")
	closed.HandleFunc(http.MethodGet, "a", okHandler)
	closed.HandleFunc(http.MethodGet, "b", okHandler, Public())

	tests := []struct {
		path string
		want int
	}{
		{"/open/a", http.StatusOK},
		{"/open/b", http.StatusUnauthorized},
		{"/closed/a", http.StatusUnauthorized},
		{"/closed/b", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.want, rr.Code)
		})
	}

	assert.True(t, g.Visibility().IsPublic("GET /closed/b", "/closed"))
	assert.False(t, g.Visibility().IsPublic("GET /open/b", "/open"))
}

func TestRouter_UnmarkedGroupDefaultsToDeny(t *testing.T) {
	g := gate.New(gate.NewVisibility(), auth.NewTokenIssuer([]byte("k"), time.Hour), nil)
	r := NewRouter(g, nil)
	r.Group("/", Public())
	r.Group("/reports").HandleFunc(http.MethodGet, "", okHandler)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/reports", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "a public root group does not leak into other groups")
}
