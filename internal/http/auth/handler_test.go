package auth_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	recycleHttp "github.com/recyclehub/recyclehub/internal/http"
	authHandler "github.com/recyclehub/recyclehub/internal/http/auth"
	"github.com/recyclehub/recyclehub/internal/identity"
	"github.com/recyclehub/recyclehub/internal/storage"
	"github.com/recyclehub/recyclehub/internal/user"
	userStore "github.com/recyclehub/recyclehub/internal/user/store"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	users := user.NewService(userStore.New(storage.NewMemory()))
	sessions := identity.NewManager("test-secret", time.Hour)
	h := authHandler.NewHandler(users, sessions, validator.New())

	r := chi.NewRouter()
	h.Routes(r, recycleHttp.Authenticator(sessions))

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	return server
}

func post(t *testing.T, server *httptest.Server, path string, body any) *http.Response {
	t.Helper()

	var payload bytes.Buffer
	require.NoError(t, json.NewEncoder(&payload).Encode(body))

	resp, err := server.Client().Post(server.URL+path, "application/json", &payload)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	return resp
}

func registerBody() map[string]any {
	return map[string]any{
		"first_name": "Amina",
		"last_name":  "El Fassi",
		"email":      "amina@example.com",
		"password":   "longenough",
		"city":       "Marrakech",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	server := newServer(t)

	resp := post(t, server, "/register", registerBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var registered struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&registered))
	assert.Equal(t, "amina@example.com", registered.Email)
	assert.Equal(t, "requester", registered.Role)

	resp = post(t, server, "/login", map[string]any{
		"email":    "amina@example.com",
		"password": "longenough",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var login struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&login))
	require.NotEmpty(t, login.Token)
	assert.Equal(t, registered.ID, login.User.ID)

	req, err := http.NewRequest(http.MethodGet, server.URL+"/me", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+login.Token)

	meResp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer meResp.Body.Close()
	assert.Equal(t, http.StatusOK, meResp.StatusCode)
}

func TestRegister_Invalid(t *testing.T) {
	server := newServer(t)

	type testCase struct {
		name   string
		mutate func(body map[string]any)
		want   int
	}

	tests := []testCase{
		{
			name:   "BadEmail",
			mutate: func(b map[string]any) { b["email"] = "not-an-email" },
			want:   http.StatusBadRequest,
		},
		{
			name:   "ShortPassword",
			mutate: func(b map[string]any) { b["password"] = "short" },
			want:   http.StatusBadRequest,
		},
		{
			name:   "MissingName",
			mutate: func(b map[string]any) { delete(b, "first_name") },
			want:   http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := registerBody()
			tt.mutate(body)

			resp := post(t, server, "/register", body)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	server := newServer(t)

	resp := post(t, server, "/register", registerBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = post(t, server, "/register", registerBody())
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestLogin_WrongPassword(t *testing.T) {
	server := newServer(t)

	resp := post(t, server, "/register", registerBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = post(t, server, "/login", map[string]any{
		"email":    "amina@example.com",
		"password": "wrongwrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
