package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"anoa.com/proofofgrind/internal/entity"
	grinderDto "anoa.com/proofofgrind/internal/modules/grinder/dto"
	grinderRepo "anoa.com/proofofgrind/internal/modules/grinder/repository"
	grinderService "anoa.com/proofofgrind/internal/modules/grinder/service"
	"anoa.com/proofofgrind/pkg/address"
	"anoa.com/proofofgrind/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	mu   sync.Mutex
	logs []entity.PointLog
}

func (r *memRepo) Commit(ctx context.Context, cs grinderRepo.Changeset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, cs.Logs...)
	return nil
}

func (r *memRepo) LoadAll(ctx context.Context) ([]entity.GrinderRecord, error) {
	return nil, nil
}

func (r *memRepo) GetPointLogs(ctx context.Context, addr string, limit int) ([]entity.PointLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.PointLog
	for i := len(r.logs) - 1; i >= 0 && len(out) < limit; i-- {
		if r.logs[i].Address == addr {
			out = append(out, r.logs[i])
		}
	}
	return out, nil
}

var (
	alice = address.MustNormalize(fmt.Sprintf("0x%040x", 0xa11ce))
	bob   = address.MustNormalize(fmt.Sprintf("0x%040x", 0xb0b))
)

type testEnv struct {
	router *gin.Engine
	clock  time.Time
}

func setupRouter(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc, err := grinderService.NewGrinderService(&memRepo{}, nil, grinderService.DefaultRules(), nil)
	require.NoError(t, err)

	env := &testEnv{clock: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	h := NewGrinderHandler(svc)
	h.now = func() time.Time { return env.clock }

	// Stand-in for RequireAuth: the caller is taken from a test header.
	asCaller := func(c *gin.Context) {
		if addr := c.GetHeader("X-Caller"); addr != "" {
			c.Set(response.ContextAddressKey, addr)
		}
		c.Next()
	}

	r := gin.New()
	api := r.Group("/api")
	api.GET("/grinders/:address", h.GetStats)
	api.GET("/grinders/:address/registered", h.IsRegistered)
	api.GET("/grinders/:address/cooldown", h.GetCooldown)
	api.GET("/grinders/:address/history", h.GetHistory)
	api.GET("/tokens/:token_id/uri", h.GetTokenURI)

	writes := api.Group("", asCaller)
	writes.POST("/register", h.Register)
	writes.POST("/grind", h.Grind)
	writes.POST("/boost", h.Boost)
	writes.POST("/check-in", h.CheckIn)

	env.router = r
	return env
}

func (e *testEnv) do(method, path, caller string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if caller != "" {
		req.Header.Set("X-Caller", caller)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestRegisterAndGrind(t *testing.T) {
	env := setupRouter(t)

	w := env.do(http.MethodPost, "/api/register", alice, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	stats := decode[grinderDto.GrinderStatsResponse](t, w)
	assert.Equal(t, alice, stats.Address)
	assert.Equal(t, uint64(1), stats.TokenID)
	assert.Equal(t, "BRONZE", stats.Tier)
	assert.Nil(t, stats.LastGrindAt)

	w = env.do(http.MethodPost, "/api/register", alice, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(http.MethodPost, "/api/grind", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats = decode[grinderDto.GrinderStatsResponse](t, w)
	assert.Equal(t, uint64(1), stats.TotalGrinds)
	assert.Equal(t, uint64(1), stats.CurrentStreak)
	assert.Equal(t, uint64(10), stats.Points)
	require.NotNil(t, stats.LastGrindAt)
	assert.Equal(t, uint64(10), stats.TierStatus.TargetCounter)
}

func TestGrindCooldownResponse(t *testing.T) {
	env := setupRouter(t)
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/api/register", alice, nil).Code)
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/api/grind", alice, nil).Code)

	env.clock = env.clock.Add(59*time.Minute + 30*time.Second)
	w := env.do(http.MethodPost, "/api/grind", alice, nil)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, float64(30), body["retry_after_seconds"])
	assert.Equal(t, "30", w.Header().Get("Retry-After"))

	w = env.do(http.MethodGet, "/api/grinders/"+alice+"/cooldown", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cd := decode[grinderDto.CooldownResponse](t, w)
	assert.False(t, cd.CanGrind)
	assert.Equal(t, int64(30), cd.SecondsUntilNextGrind)

	env.clock = env.clock.Add(30 * time.Second)
	assert.Equal(t, http.StatusOK, env.do(http.MethodPost, "/api/grind", alice, nil).Code)
}

func TestWritesRequireCaller(t *testing.T) {
	env := setupRouter(t)
	for _, path := range []string{"/api/register", "/api/grind", "/api/check-in"} {
		assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodPost, path, "", nil).Code, path)
	}
}

func TestUnregisteredWrites(t *testing.T) {
	env := setupRouter(t)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodPost, "/api/grind", alice, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodPost, "/api/check-in", alice, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/grinders/"+alice, "", nil).Code)
}

func TestBoost(t *testing.T) {
	env := setupRouter(t)
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/api/register", alice, nil).Code)
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/api/register", bob, nil).Code)

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"missing target", map[string]string{}, http.StatusBadRequest},
		{"malformed target", grinderDto.BoostRequest{Target: "0x1234"}, http.StatusBadRequest},
		{"self boost", grinderDto.BoostRequest{Target: alice}, http.StatusBadRequest},
		{"ok", grinderDto.BoostRequest{Target: bob}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodPost, "/api/boost", alice, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}

	w := env.do(http.MethodGet, "/api/grinders/"+bob, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint64(5), decode[grinderDto.GrinderStatsResponse](t, w).Points)

	w = env.do(http.MethodGet, "/api/grinders/"+alice+"/history", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decode[struct {
		Data []grinderDto.PointLogResponse `json:"data"`
	}](t, w)
	require.Len(t, history.Data, 1)
	assert.Equal(t, entity.ActionBoostGiven, history.Data[0].ActionType)
	require.NotNil(t, history.Data[0].Counterparty)
	assert.Equal(t, bob, *history.Data[0].Counterparty)
}

func TestCheckIn(t *testing.T) {
	env := setupRouter(t)
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/api/register", alice, nil).Code)

	w := env.do(http.MethodPost, "/api/check-in", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[grinderDto.GrinderStatsResponse](t, w)
	assert.Equal(t, uint64(25), stats.Points)
	assert.Equal(t, uint64(0), stats.TotalGrinds)
	assert.NotNil(t, stats.LastCheckInAt)
}

func TestReadEndpoints(t *testing.T) {
	env := setupRouter(t)
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/api/register", alice, nil).Code)

	w := env.do(http.MethodGet, "/api/grinders/"+bob+"/registered", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[grinderDto.RegisteredResponse](t, w).Registered)

	w = env.do(http.MethodGet, "/api/grinders/not-an-address/registered", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodGet, "/api/grinders/"+bob+"/cooldown", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cd := decode[grinderDto.CooldownResponse](t, w)
	assert.False(t, cd.CanGrind)
	assert.Zero(t, cd.SecondsUntilNextGrind)

	w = env.do(http.MethodGet, "/api/tokens/1/uri", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode[grinderDto.TokenURIResponse](t, w).TokenURI, "data:application/json;base64,")

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/tokens/2/uri", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/tokens/abc/uri", "", nil).Code)

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/grinders/"+alice+"/history?limit=101", "", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/grinders/"+alice+"/history?limit=5", "", nil).Code)
}
