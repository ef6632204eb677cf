package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"skillswap-server/models"
	"skillswap-server/services"
	"skillswap-server/store"
	apperrors "skillswap-server/utils/errors"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
}

type testServer struct {
	t *testing.T
	h http.Handler
}

func newTestServer(t *testing.T) *testServer {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := store.NewMemoryUserStore()
	swaps := store.NewMemorySwapStore()
	h := NewRouter(
		NewUserHandler(services.NewUserService(users, logger), logger),
		NewSwapHandler(services.NewSwapService(swaps, users, logger), logger),
		logger,
		[]string{"http://localhost:3000"},
	)
	return &testServer{t: t, h: h}
}

func (s *testServer) do(method, target string, body any) (int, envelope) {
	s.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		r = bytes.NewReader(b)
	}
	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, httptest.NewRequest(method, target, r))

	var env envelope
	require.NoError(s.t, json.NewDecoder(rec.Body).Decode(&env))
	return rec.Code, env
}

func (s *testServer) createUser(name string, public bool) models.User {
	s.t.Helper()
	code, env := s.do(http.MethodPost, "/users", map[string]any{
		"name":          name,
		"location":      "Lisbon",
		"availability":  []string{"weekends"},
		"skillsOffered": []string{"Go"},
		"skillsWanted":  []string{"Guitar"},
		"publicProfile": public,
	})
	require.Equal(s.t, http.StatusCreated, code, env.Message)
	var u models.User
	require.NoError(s.t, json.Unmarshal(env.Data, &u))
	return u
}

func (s *testServer) createSwap(from, to string) models.SwapRequest {
	s.t.Helper()
	code, env := s.do(http.MethodPost, "/swaps", map[string]any{
		"fromUserId":   from,
		"toUserId":     to,
		"skillOffered": "Go",
		"skillWanted":  "Guitar",
	})
	require.Equal(s.t, http.StatusCreated, code, env.Message)
	var sw models.SwapRequest
	require.NoError(s.t, json.Unmarshal(env.Data, &sw))
	return sw
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func TestUserRoutes(t *testing.T) {
	t.Run("should create and fetch a public user", func(t *testing.T) {
		req := require.New(t)
		s := newTestServer(t)
		u := s.createUser("Alice", true)
		req.NotEmpty(u.ID)
		req.Zero(u.Rating)

		code, env := s.do(http.MethodGet, "/users/"+u.ID, nil)
		req.Equal(http.StatusOK, code)
		req.True(env.Success)
		req.Equal("User retrieved successfully", env.Message)
		req.Equal(u.ID, decodeData[models.User](t, env).ID)
	})

	t.Run("should reject invalid input with 400", func(t *testing.T) {
		req := require.New(t)
		s := newTestServer(t)

		code, env := s.do(http.MethodPost, "/users", map[string]any{"name": "A"})
		req.Equal(http.StatusBadRequest, code)
		req.False(env.Success)
		req.Equal(apperrors.CodeValidation, env.Code)
	})

	t.Run("should reject a malformed body with 400", func(t *testing.T) {
		req := require.New(t)
		s := newTestServer(t)
		rec := httptest.NewRecorder()

		s.h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/users", strings.NewReader("{")))
		req.Equal(http.StatusBadRequest, rec.Code)
	})

	t.Run("should map not found and private profiles", func(t *testing.T) {
		req := require.New(t)
		s := newTestServer(t)
		private := s.createUser("Bob", false)

		code, env := s.do(http.MethodGet, "/users/missing", nil)
		req.Equal(http.StatusNotFound, code)
		req.Equal(apperrors.CodeNotFound, env.Code)

		code, env = s.do(http.MethodGet, "/users/"+private.ID, nil)
		req.Equal(http.StatusForbidden, code)
		req.Equal("User profile is private", env.Message)
	})

	t.Run("should toggle visibility and list only public users", func(t *testing.T) {
		req := require.New(t)
		s := newTestServer(t)
		alice := s.createUser("Alice", true)
		s.createUser("Bob", false)

		code, env := s.do(http.MethodPatch, "/users/"+alice.ID+"/visibility", nil)
		req.Equal(http.StatusOK, code)
		req.Equal("Profile visibility toggled successfully", env.Message)
		req.False(decodeData[models.User](t, env).PublicProfile)

		code, env = s.do(http.MethodGet, "/users", nil)
		req.Equal(http.StatusOK, code)
		req.JSONEq(`[]`, string(env.Data))
	})

	t.Run("should route fixed paths before ids", func(t *testing.T) {
		req := require.New(t)
		s := newTestServer(t)
		s.createUser("Alice", true)
		s.createUser("Alan", true)
		s.createUser("Bob", true)

		code, env := s.do(http.MethodGet, "/users/search?searchTerm=Al", nil)
		req.Equal(http.StatusOK, code)
		req.Len(decodeData[[]models.User](t, env), 2)

		code, env = s.do(http.MethodGet, "/users/skills/offered?skill=Go", nil)
		req.Equal(http.StatusOK, code)
		req.Len(decodeData[[]models.User](t, env), 3)

		code, env = s.do(http.MethodGet, "/users/skills/wanted?skill=Drums", nil)
		req.Equal(http.StatusOK, code)
		req.Empty(decodeData[[]models.User](t, env))

		code, env = s.do(http.MethodGet, "/users/availability?availability=weekends", nil)
		req.Equal(http.StatusOK, code)
		req.Len(decodeData[[]models.User](t, env), 3)

		code, _ = s.do(http.MethodGet, "/users/search", nil)
		req.Equal(http.StatusBadRequest, code)
	})

	t.Run("should update and delete a user", func(t *testing.T) {
		req := require.New(t)
		s := newTestServer(t)
		u := s.createUser("Alice", true)

		code, env := s.do(http.MethodPut, "/users/"+u.ID, map[string]any{
			"name":          "Alicia",
			"location":      "Porto",
			"availability":  []string{"evenings"},
			"skillsOffered": []string{"Rust"},
			"skillsWanted":  []string{"Piano"},
			"publicProfile": true,
		})
		req.Equal(http.StatusOK, code, env.Message)
		req.Equal("Alicia", decodeData[models.User](t, env).Name)

		code, env = s.do(http.MethodDelete, "/users/"+u.ID, nil)
		req.Equal(http.StatusOK, code)
		req.Equal("User deleted successfully", env.Message)

		code, _ = s.do(http.MethodGet, "/users/"+u.ID, nil)
		req.Equal(http.StatusNotFound, code)
	})
}

func TestSwapRoutes(t *testing.T) {
	t.Run("should walk a request through its lifecycle", func(t *testing.T) {
		req := require.New(t)
		s := newTestServer(t)
		alice := s.createUser("Alice", true)
		bob := s.createUser("Bob", true)
		sw := s.createSwap(alice.ID, bob.ID)
		req.Equal(models.StatusPending, sw.Status)

		code, env := s.do(http.MethodPatch, "/swaps/"+sw.ID+"/accept", nil)
		req.Equal(http.StatusOK, code)
		req.Equal("Swap request accepted successfully", env.Message)

		code, _ = s.do(http.MethodPatch, "/swaps/"+sw.ID+"/complete", nil)
		req.Equal(http.StatusOK, code)

		code, env = s.do(http.MethodPatch, "/swaps/"+sw.ID+"/rating?rating=4.5&feedback=great", nil)
		req.Equal(http.StatusOK, code, env.Message)
		rated := decodeData[models.SwapRequest](t, env)
		req.Equal(models.StatusCompleted, rated.Status)
		req.Equal(4.5, *rated.Rating)
		req.Equal("great", *rated.Feedback)

		code, env = s.do(http.MethodGet, "/swaps/"+sw.ID, nil)
		req.Equal(http.StatusOK, code)
		req.Equal(4.5, *decodeData[models.SwapRequest](t, env).Rating)
	})

	t.Run("should map state machine violations to 409", func(t *testing.T) {
		req := require.New(t)
		s := newTestServer(t)
		alice := s.createUser("Alice", true)
		bob := s.createUser("Bob", true)
		sw := s.createSwap(alice.ID, bob.ID)

		code, env := s.do(http.MethodPatch, "/swaps/"+sw.ID+"/complete", nil)
		req.Equal(http.StatusConflict, code)
		req.Equal("Cannot complete swap request that is not accepted", env.Message)

		code, env = s.do(http.MethodPost, "/swaps", map[string]any{
			"fromUserId": alice.ID, "toUserId": alice.ID, "skillOffered": "Go", "skillWanted": "Go",
		})
		req.Equal(http.StatusConflict, code)
		req.Equal(apperrors.CodeInvalidOperation, env.Code)
	})

	t.Run("should validate the rating query", func(t *testing.T) {
		req := require.New(t)
		s := newTestServer(t)
		alice := s.createUser("Alice", true)
		bob := s.createUser("Bob", true)
		sw := s.createSwap(alice.ID, bob.ID)

		for _, q := range []string{"", "?rating=abc", "?rating=5.1", "?rating=-0.1"} {
			code, env := s.do(http.MethodPatch, "/swaps/"+sw.ID+"/rating"+q, nil)
			req.Equal(http.StatusBadRequest, code, q)
			req.Equal(apperrors.CodeValidation, env.Code, q)
		}
	})

	t.Run("should list by user and status", func(t *testing.T) {
		req := require.New(t)
		s := newTestServer(t)
		u := s.createUser("Alice", true)
		v := s.createUser("Bob", true)
		out := s.createSwap(u.ID, v.ID)
		in := s.createSwap(v.ID, u.ID)

		code, env := s.do(http.MethodGet, "/swaps/user/"+u.ID+"/status/PENDING", nil)
		req.Equal(http.StatusOK, code)
		got := decodeData[[]models.SwapRequest](t, env)
		req.Len(got, 2)
		req.Equal(out.ID, got[0].ID)
		req.Equal(in.ID, got[1].ID)

		code, env = s.do(http.MethodGet, "/swaps/from/"+u.ID, nil)
		req.Equal(http.StatusOK, code)
		req.Len(decodeData[[]models.SwapRequest](t, env), 1)

		code, env = s.do(http.MethodGet, "/swaps/to/"+u.ID, nil)
		req.Equal(http.StatusOK, code)
		req.Len(decodeData[[]models.SwapRequest](t, env), 1)

		code, _ = s.do(http.MethodGet, "/swaps/user/"+u.ID+"/status/pending", nil)
		req.Equal(http.StatusBadRequest, code)
	})

	t.Run("should delete only pending requests", func(t *testing.T) {
		req := require.New(t)
		s := newTestServer(t)
		alice := s.createUser("Alice", true)
		bob := s.createUser("Bob", true)
		pending := s.createSwap(alice.ID, bob.ID)
		accepted := s.createSwap(bob.ID, alice.ID)
		code, _ := s.do(http.MethodPatch, "/swaps/"+accepted.ID+"/accept", nil)
		req.Equal(http.StatusOK, code)

		code, env := s.do(http.MethodDelete, "/swaps/"+pending.ID, nil)
		req.Equal(http.StatusOK, code)
		req.Equal("Swap request deleted successfully", env.Message)

		code, _ = s.do(http.MethodDelete, "/swaps/"+accepted.ID, nil)
		req.Equal(http.StatusConflict, code)

		code, _ = s.do(http.MethodGet, "/swaps/"+pending.ID, nil)
		req.Equal(http.StatusNotFound, code)
	})
}

func TestRouterAmbient(t *testing.T) {
	t.Run("should answer health checks", func(t *testing.T) {
		req := require.New(t)
		code, env := newTestServer(t).do(http.MethodGet, "/health", nil)
		req.Equal(http.StatusOK, code)
		req.JSONEq(`{"status":"ok"}`, string(env.Data))
	})

	t.Run("should answer unknown routes with the error envelope", func(t *testing.T) {
		req := require.New(t)
		code, env := newTestServer(t).do(http.MethodGet, "/nope", nil)
		req.Equal(http.StatusNotFound, code)
		req.False(env.Success)
	})

	t.Run("should answer CORS preflight for PATCH routes", func(t *testing.T) {
		req := require.New(t)
		s := newTestServer(t)
		r := httptest.NewRequest(http.MethodOptions, "/swaps/s1/accept", nil)
		r.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()

		s.h.ServeHTTP(rec, r)
		req.Equal(http.StatusNoContent, rec.Code)
		req.Contains(rec.Header().Get("Access-Control-Allow-Methods"), "PATCH")
	})

	t.Run("should log a recovered panic as a 500", func(t *testing.T) {
		req := require.New(t)
		var logs bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&logs, nil))
		h := chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}), logger, nil)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))
		req.Equal(http.StatusInternalServerError, rec.Code)

		var access map[string]any
		for _, line := range strings.Split(strings.TrimSpace(logs.String()), "\n") {
			var entry map[string]any
			req.NoError(json.Unmarshal([]byte(line), &entry))
			if entry["msg"] == "http request" {
				access = entry
			}
		}
		req.NotNil(access)
		req.EqualValues(http.StatusInternalServerError, access["status"])
		req.Equal("/users", access["path"])
	})
}
