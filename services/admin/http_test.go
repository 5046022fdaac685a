package admin

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvbf/bingo-hall/pkg/auth"
	"github.com/nvbf/bingo-hall/repos/store"
)

func newTestRouter(service Admin, identity auth.Identity) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		auth.WithIdentity(c, identity)
		c.Next()
	})
	NewHTTPHandler(HTTPOptions{Service: service, Router: router.Group("/admin/v1")})
	NewMeHTTPHandler(HTTPOptions{Service: service, Router: router.Group("/me/v1")})
	return router
}

func do(router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateUserHandler(t *testing.T) {
	s := NewAdminService(newFakeAuth(), newFakeUsers(), &fakeMailer{}, "")
	router := newTestRouter(s, auth.Identity{UID: "admin", Role: auth.RoleAdmin})

	w := do(router, http.MethodPost, "/admin/v1/users", gin.H{"email": "a@b.c", "password": "123456", "role": "agent"})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		User store.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "agent", resp.User.Role)

	w = do(router, http.MethodPost, "/admin/v1/users", gin.H{"email": "a@b.c"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAgentCannotCreateUsers(t *testing.T) {
	s := NewAdminService(newFakeAuth(), newFakeUsers(), &fakeMailer{}, "")
	router := newTestRouter(s, auth.Identity{UID: "agent", Role: auth.RoleAgent})

	w := do(router, http.MethodPost, "/admin/v1/users", gin.H{"email": "a@b.c", "password": "123456"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPointsHandler(t *testing.T) {
	users := newFakeUsers(&store.User{ID: "u1", Points: 10})
	s := NewAdminService(newFakeAuth(), users, &fakeMailer{}, "")
	router := newTestRouter(s, auth.Identity{UID: "agent", Role: auth.RoleAgent})

	w := do(router, http.MethodPost, "/admin/v1/users/u1/points", gin.H{"delta": 40})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"points":50}`, w.Body.String())

	w = do(router, http.MethodPost, "/admin/v1/users/u1/points", gin.H{"delta": -100})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(router, http.MethodPost, "/admin/v1/users/nobody/points", gin.H{"delta": 5})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMeHandler(t *testing.T) {
	users := newFakeUsers(&store.User{ID: "u1", Role: "user", Points: 70})
	s := NewAdminService(newFakeAuth(), users, &fakeMailer{}, "")
	router := newTestRouter(s, auth.Identity{UID: "u1", Role: auth.RoleUser})

	w := do(router, http.MethodGet, "/me/v1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"points":70`)

	w = do(router, http.MethodGet, "/admin/v1/users", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeleteHandler(t *testing.T) {
	users := newFakeUsers(&store.User{ID: "u1"})
	s := NewAdminService(newFakeAuth(), users, &fakeMailer{}, "")
	router := newTestRouter(s, auth.Identity{UID: "admin", Role: auth.RoleAdmin})

	assert.Equal(t, http.StatusNoContent, do(router, http.MethodDelete, "/admin/v1/users/u1", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(router, http.MethodDelete, "/admin/v1/users/u1", nil).Code)
}
