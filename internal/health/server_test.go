package health

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixedStatus struct {
	connected, loggedIn bool
}

func (f fixedStatus) Status() (bool, bool) { return f.connected, f.loggedIn }

func serve(t *testing.T, status StatusProvider, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	NewRouter(status).ServeHTTP(rec, req)
	return rec
}

func TestRootReturnsBanner(t *testing.T) {
	rec := serve(t, nil, http.MethodGet, "/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "🚛 Chatbot de Caçamba rodando com sucesso!", rec.Body.String())
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name   string
		status StatusProvider
		want   string
	}{
		{"no session", nil, `{"connected":false,"logged_in":false}`},
		{"paired and online", fixedStatus{connected: true, loggedIn: true}, `{"connected":true,"logged_in":true}`},
		{"paired but offline", fixedStatus{loggedIn: true}, `{"connected":false,"logged_in":true}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, tt.status, http.MethodGet, "/status")

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, tt.want, rec.Body.String())
		})
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	rec := serve(t, nil, http.MethodGet, "/admin")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewServer(t *testing.T) {
	srv := NewServer("3000", http.NotFoundHandler())
	assert.Equal(t, ":3000", srv.Addr)
}
