package collection_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recyclehub/recyclehub/internal/collection"
	collectionStore "github.com/recyclehub/recyclehub/internal/collection/store"
	recycleHttp "github.com/recyclehub/recyclehub/internal/http"
	authHandler "github.com/recyclehub/recyclehub/internal/http/auth"
	collectionHandler "github.com/recyclehub/recyclehub/internal/http/collection"
	pointsHandler "github.com/recyclehub/recyclehub/internal/http/points"
	voucherHandler "github.com/recyclehub/recyclehub/internal/http/voucher"
	"github.com/recyclehub/recyclehub/internal/identity"
	"github.com/recyclehub/recyclehub/internal/material"
	"github.com/recyclehub/recyclehub/internal/photo"
	"github.com/recyclehub/recyclehub/internal/points"
	pointsStore "github.com/recyclehub/recyclehub/internal/points/store"
	"github.com/recyclehub/recyclehub/internal/storage"
	"github.com/recyclehub/recyclehub/internal/user"
	userStore "github.com/recyclehub/recyclehub/internal/user/store"
	"github.com/recyclehub/recyclehub/internal/voucher"
	voucherStore "github.com/recyclehub/recyclehub/internal/voucher/store"
	"github.com/recyclehub/recyclehub/internal/workflow"
)

type env struct {
	server   *httptest.Server
	users    *user.Service
	sessions *identity.Manager
}

func newEnv(t *testing.T) *env {
	t.Helper()

	var table material.PointsTable
	require.NoError(t, table.Decode("plastic:2,glass:1,paper:1,metal:5"))

	var tiers points.TierTable
	require.NoError(t, tiers.Decode("100:50,200:120,500:350"))

	kv := storage.NewMemory()

	pointsSvc := points.NewService(pointsStore.New(kv), table, tiers)
	collectionSvc := collection.NewService(collectionStore.New(kv), pointsSvc)
	userSvc := user.NewService(userStore.New(kv))
	issuer := voucher.NewIssuer(pointsSvc, voucherStore.New(kv), 90*24*time.Hour)
	flow := workflow.New(collectionSvc)
	sessions := identity.NewManager("test-secret", time.Hour)
	validate := validator.New()

	router := recycleHttp.New(
		sessions,
		authHandler.NewHandler(userSvc, sessions, validate),
		collectionHandler.NewHandler(flow, photo.NewIngestor(1024), validate),
		pointsHandler.NewHandler(pointsSvc),
		voucherHandler.NewHandler(issuer, userSvc, validate),
	)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &env{server: server, users: userSvc, sessions: sessions}
}

func (e *env) token(t *testing.T, role user.Role, email string) string {
	t.Helper()

	u, err := e.users.Register(context.Background(), user.RegisterParams{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Password:  "s3cret",
		Role:      role,
	})
	require.NoError(t, err)

	token, err := e.sessions.Issue(u)
	require.NoError(t, err)

	return token
}

func (e *env) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}

	req, err := http.NewRequest(method, e.server.URL+path, &payload)
	require.NoError(t, err)

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func createBody() map[string]any {
	return map[string]any{
		"materials": []map[string]any{
			{"kind": "plastic", "kilograms": 5},
			{"kind": "glass", "kilograms": 5},
		},
		"address":   "Quartier Gueliz, Marrakech",
		"date":      "2026-09-15",
		"time_slot": "09:00-11:00",
	}
}

func TestCollections_RequireAuth(t *testing.T) {
	e := newEnv(t)

	resp := e.do(t, http.MethodGet, "/api/v1/collections/mine", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = e.do(t, http.MethodGet, "/api/v1/collections/mine", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCollections_Lifecycle(t *testing.T) {
	e := newEnv(t)

	requester := e.token(t, user.RoleRequester, "amina@example.com")
	collector := e.token(t, user.RoleCollector, "karim@example.com")

	resp := e.do(t, http.MethodPost, "/api/v1/collections", requester, createBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		ID          string  `json:"id"`
		Status      string  `json:"status"`
		TotalWeight float64 `json:"total_weight"`
	}
	decodeBody(t, resp, &created)
	assert.Equal(t, "requested", created.Status)
	assert.Equal(t, 10.0, created.TotalWeight)

	resp = e.do(t, http.MethodGet, "/api/v1/collections/available?city=marrakech", collector, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var available []json.RawMessage
	decodeBody(t, resp, &available)
	assert.Len(t, available, 1)

	resp = e.do(t, http.MethodPost, "/api/v1/collections/"+created.ID+"/claim", collector, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = e.do(t, http.MethodPost, "/api/v1/collections/"+created.ID+"/start", collector, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = e.do(t, http.MethodPost, "/api/v1/collections/"+created.ID+"/validate", collector,
		map[string]any{"actual_weight": 8})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var validated struct {
		Status        string   `json:"status"`
		ActualWeight  *float64 `json:"actual_weight"`
		PointsAwarded float64  `json:"points_awarded"`
	}
	decodeBody(t, resp, &validated)
	assert.Equal(t, "validated", validated.Status)
	require.NotNil(t, validated.ActualWeight)
	assert.Equal(t, 8.0, *validated.ActualWeight)
	assert.Equal(t, 12.0, validated.PointsAwarded)

	resp = e.do(t, http.MethodGet, "/api/v1/points/balance", requester, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var balance struct {
		Balance float64 `json:"balance"`
	}
	decodeBody(t, resp, &balance)
	assert.Equal(t, 12.0, balance.Balance)
}

func TestCollections_ErrorMapping(t *testing.T) {
	e := newEnv(t)

	requester := e.token(t, user.RoleRequester, "amina@example.com")
	collector := e.token(t, user.RoleCollector, "karim@example.com")

	// Out-of-range declared weight.
	body := createBody()
	body["materials"] = []map[string]any{{"kind": "plastic", "kilograms": 11}}
	resp := e.do(t, http.MethodPost, "/api/v1/collections", requester, body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Collectors cannot create collections.
	resp = e.do(t, http.MethodPost, "/api/v1/collections", collector, createBody())
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Unknown collection.
	resp = e.do(t, http.MethodPost, "/api/v1/collections/00000000-0000-0000-0000-000000000001/claim", collector, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Claiming twice conflicts.
	resp = e.do(t, http.MethodPost, "/api/v1/collections", requester, createBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		ID string `json:"id"`
	}
	decodeBody(t, resp, &created)

	resp = e.do(t, http.MethodPost, "/api/v1/collections/"+created.ID+"/claim", collector, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = e.do(t, http.MethodPost, "/api/v1/collections/"+created.ID+"/claim", collector, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Editing after assignment conflicts.
	resp = e.do(t, http.MethodPatch, "/api/v1/collections/"+created.ID, requester,
		map[string]any{"notes": "too late"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCollections_OpenRequestCeiling(t *testing.T) {
	e := newEnv(t)

	requester := e.token(t, user.RoleRequester, "amina@example.com")

	small := func() map[string]any {
		body := createBody()
		body["materials"] = []map[string]any{{"kind": "paper", "kilograms": 1}}
		return body
	}

	for range 3 {
		resp := e.do(t, http.MethodPost, "/api/v1/collections", requester, small())
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp := e.do(t, http.MethodPost, "/api/v1/collections", requester, small())
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestPhotos_Upload(t *testing.T) {
	e := newEnv(t)
	requester := e.token(t, user.RoleRequester, "amina@example.com")

	png := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

	req, err := http.NewRequest(http.MethodPost, e.server.URL+"/api/v1/photos", bytes.NewReader(png))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+requester)

	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var uploaded struct {
		Ref string `json:"ref"`
	}
	decodeBody(t, resp, &uploaded)
	assert.Contains(t, uploaded.Ref, "data:image/png;base64,")
}
