package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"

	"jukebox-service/internal/auth"
	"jukebox-service/internal/command"
	"jukebox-service/internal/search"
	"jukebox-service/internal/session"
	"jukebox-service/internal/users"
	"jukebox-service/internal/window"
)

type fakeSink struct {
	mu   sync.Mutex
	sent []command.Command
	err  error
}

func (f *fakeSink) Send(ctx context.Context, c command.Command) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, c)
	return nil
}

type fakeWindows struct {
	openErr error
	alive   bool
}

func (f *fakeWindows) Open(ctx context.Context) error {
	if f.openErr != nil {
		return f.openErr
	}
	f.alive = true
	return nil
}

func (f *fakeWindows) Alive() bool { return f.alive }
func (f *fakeWindows) Close()      { f.alive = false }

type fakeSearcher struct {
	results []search.Result
	err     error
	calls   int
}

func (f *fakeSearcher) Search(ctx context.Context, query string) ([]search.Result, error) {
	f.calls++
	return f.results, f.err
}

type fakeSource struct {
	cmd command.Command
	has bool
	err error
}

func (f *fakeSource) TryReceive(ctx context.Context) (command.Command, bool, error) {
	if f.err != nil {
		return command.Command{}, false, f.err
	}
	if !f.has {
		return command.Command{}, false, nil
	}
	f.has = false
	return f.cmd, true, nil
}

type testEnv struct {
	server   *httptest.Server
	session  *session.Session
	sink     *fakeSink
	windows  *fakeWindows
	searcher *fakeSearcher
	source   *fakeSource
	mock     pgxmock.PgxPoolIface
	verifier *auth.Verifier
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	t.Cleanup(mock.Close)

	env := &testEnv{
		sink:     &fakeSink{},
		windows:  &fakeWindows{},
		searcher: &fakeSearcher{},
		source:   &fakeSource{},
		mock:     mock,
		verifier: auth.NewVerifier([]byte("test-secret"), time.Hour),
	}
	env.session = session.New(env.sink, env.windows, env.searcher, 0)

	srv := NewServer(env.session, users.NewStore(mock), window.NewHub(50*time.Millisecond), env.source, env.verifier)
	env.server = httptest.NewServer(srv.Router())
	t.Cleanup(env.server.Close)
	return env
}

func (e *testEnv) token(t *testing.T, role string) string {
	t.Helper()
	token, err := e.verifier.IssueToken("user-1", "caller@example.com", role)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealth(t *testing.T) {
	env := setupTestServer(t)

	resp := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "jukebox-service", body["service"])
}

func TestAuthGating(t *testing.T) {
	env := setupTestServer(t)

	t.Run("StateRequiresToken", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/state", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("StateWithUserToken", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/state", env.token(t, auth.RoleUser), nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("AdminRouteRejectsUserRole", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/logs", env.token(t, auth.RoleUser), nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("AdminRouteAcceptsAdmin", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/logs", env.token(t, auth.RoleAdmin), nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("AdminRouteAcceptsSuperAdmin", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/logs", env.token(t, auth.RoleSuperAdmin), nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("PlayerCommandNeedsNoToken", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/player/command", "", nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})
}

func TestSearchHandler(t *testing.T) {
	env := setupTestServer(t)
	token := env.token(t, auth.RoleUser)

	t.Run("EmptyQueryIsNoOp", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/search?query=+", token, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Items []search.Result `json:"items"`
		}
		decodeBody(t, resp, &body)
		assert.Empty(t, body.Items)
		assert.Equal(t, 0, env.searcher.calls)
	})

	t.Run("ReturnsRankedResults", func(t *testing.T) {
		env.searcher.results = []search.Result{
			{ID: "vid1", Title: "Song (Official Video)", ChannelTitle: "BandVEVO", OfficialScore: 15},
			{ID: "vid2", Title: "Song cover", ChannelTitle: "someone", OfficialScore: -3},
		}

		resp := env.do(t, http.MethodGet, "/search?query=song", token, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Items []search.Result `json:"items"`
		}
		decodeBody(t, resp, &body)
		assert.Len(t, body.Items, 2)
		assert.Equal(t, "vid1", body.Items[0].ID)
	})

	t.Run("SearchFailure", func(t *testing.T) {
		env.searcher.err = fmt.Errorf("%w: youtube status 403", search.ErrSearch)
		resp := env.do(t, http.MethodGet, "/search?query=song", token, nil)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		env.searcher.err = nil
	})

	t.Run("ResetSearch", func(t *testing.T) {
		resp := env.do(t, http.MethodDelete, "/search", token, nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Empty(t, env.session.SearchResults())
	})
}

func TestEnqueueHandler(t *testing.T) {
	t.Run("MissingVideoID", func(t *testing.T) {
		env := setupTestServer(t)
		resp := env.do(t, http.MethodPost, "/queue", env.token(t, auth.RoleUser),
			map[string]string{"title": "no id"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("FreeplaySuccess", func(t *testing.T) {
		env := setupTestServer(t)
		resp := env.do(t, http.MethodPost, "/queue", env.token(t, auth.RoleUser),
			session.Candidate{VideoID: "vid1", Title: "Song", ChannelTitle: "Band"})
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var state session.State
		decodeBody(t, resp, &state)
		assert.Equal(t, []string{"vid1"}, state.CurrentPlaylist)

		env.sink.mu.Lock()
		defer env.sink.mu.Unlock()
		assert.Len(t, env.sink.sent, 1)
		assert.Equal(t, command.ActionAddToPlaylist, env.sink.sent[0].Action)
	})

	t.Run("PaidWithoutCredits", func(t *testing.T) {
		env := setupTestServer(t)
		env.session.SetMode(session.ModePaid)

		resp := env.do(t, http.MethodPost, "/queue", env.token(t, auth.RoleUser),
			session.Candidate{VideoID: "vid1", Title: "Song"})
		assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)

		env.sink.mu.Lock()
		defer env.sink.mu.Unlock()
		assert.Empty(t, env.sink.sent)
	})

	t.Run("DeliveryFailureStillCommits", func(t *testing.T) {
		env := setupTestServer(t)
		env.sink.err = errors.New("redis down")

		resp := env.do(t, http.MethodPost, "/queue", env.token(t, auth.RoleUser),
			session.Candidate{VideoID: "vid1", Title: "Song"})
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, []string{"vid1"}, env.session.Snapshot().CurrentPlaylist)
	})
}

func TestPlayerCommandHandler(t *testing.T) {
	env := setupTestServer(t)

	t.Run("EmptySlot", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/player/command", "", nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("ConsumesPendingCommand", func(t *testing.T) {
		env.source.cmd = command.AddToPlaylist("vid1", "Song", "Band")
		env.source.has = true

		resp := env.do(t, http.MethodGet, "/player/command", "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var cmd command.Command
		decodeBody(t, resp, &cmd)
		assert.Equal(t, command.ActionAddToPlaylist, cmd.Action)
		assert.Equal(t, "vid1", cmd.VideoID)

		resp = env.do(t, http.MethodGet, "/player/command", "", nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("SlotFailure", func(t *testing.T) {
		env.source.err = errors.New("redis down")
		resp := env.do(t, http.MethodGet, "/player/command", "", nil)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		env.source.err = nil
	})
}

func TestAdminHandlers(t *testing.T) {
	env := setupTestServer(t)
	token := env.token(t, auth.RoleAdmin)

	t.Run("AdjustCredits", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/credits", token, map[string]int{"delta": 3})
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]int
		decodeBody(t, resp, &body)
		assert.Equal(t, 3, body["credits"])

		resp = env.do(t, http.MethodPost, "/credits", token, map[string]int{"delta": -5})
		decodeBody(t, resp, &body)
		assert.Equal(t, 0, body["credits"])
	})

	t.Run("SetMode", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/mode", token, map[string]string{"mode": "PAID"})
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var state session.State
		decodeBody(t, resp, &state)
		assert.Equal(t, session.ModePaid, state.Mode)
	})

	t.Run("SetModeInvalid", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/mode", token, map[string]string{"mode": "COIN_OP"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("TogglePlayerStarts", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/player/toggle", token, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]bool
		decodeBody(t, resp, &body)
		assert.True(t, body["running"])
	})

	t.Run("SkipSong", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/player/skip", token, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		env.sink.mu.Lock()
		defer env.sink.mu.Unlock()
		assert.Equal(t, command.ActionFadeOutBlack, env.sink.sent[len(env.sink.sent)-1].Action)
	})

	t.Run("LogsNewestFirst", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/logs", token, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Logs []session.LogEntry `json:"logs"`
		}
		decodeBody(t, resp, &body)
		assert.NotEmpty(t, body.Logs)
		assert.Equal(t, session.LogSongPlayed, body.Logs[0].Type)
	})

	t.Run("TogglePlayerBlockedPopup", func(t *testing.T) {
		blocked := setupTestServer(t)
		blocked.windows.openErr = window.ErrPopupBlocked

		resp := blocked.do(t, http.MethodPost, "/player/toggle", blocked.token(t, auth.RoleAdmin), nil)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}

func TestBackgroundHandlers(t *testing.T) {
	env := setupTestServer(t)
	token := env.token(t, auth.RoleAdmin)

	var created session.Background

	t.Run("Add", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/backgrounds", token,
			map[string]string{"name": "Neon", "url": "/backgrounds/neon.mp4", "kind": "video"})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		decodeBody(t, resp, &created)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, session.BackgroundVideo, created.Kind)
	})

	t.Run("AddInvalidKind", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/backgrounds", token,
			map[string]string{"name": "Bad", "url": "/x", "kind": "gif"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Select", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/backgrounds/select", token,
			map[string]string{"id": created.ID})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, created.ID, env.session.CurrentBackground().ID)
	})

	t.Run("SelectUnknown", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/backgrounds/select", token,
			map[string]string{"id": "nope"})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("List", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/backgrounds", token, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Backgrounds []session.Background `json:"backgrounds"`
			Selected    string               `json:"selected"`
		}
		decodeBody(t, resp, &body)
		assert.Len(t, body.Backgrounds, 2)
		assert.Equal(t, created.ID, body.Selected)
	})

	t.Run("Cycle", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/backgrounds/cycle", token,
			map[string]bool{"enabled": true})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, env.session.Snapshot().CycleBackgrounds)
	})
}

func TestUserHandlers(t *testing.T) {
	env := setupTestServer(t)
	token := env.token(t, auth.RoleAdmin)
	now := time.Now()

	t.Run("List", func(t *testing.T) {
		env.mock.ExpectQuery("SELECT.*FROM approved_users").
			WillReturnRows(pgxmock.NewRows([]string{"id", "email", "status", "approved_by", "created_at"}).
				AddRow("id-1", "guest@example.com", users.StatusApproved, "caller@example.com", now))

		resp := env.do(t, http.MethodGet, "/admin/users", token, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Users []users.ApprovedUser `json:"users"`
		}
		decodeBody(t, resp, &body)
		assert.Len(t, body.Users, 1)
		assert.Equal(t, "guest@example.com", body.Users[0].Email)
	})

	t.Run("AddStampsApprover", func(t *testing.T) {
		env.mock.ExpectQuery("INSERT INTO approved_users").
			WithArgs("new@example.com", users.StatusPending, "caller@example.com").
			WillReturnRows(pgxmock.NewRows([]string{"id", "email", "status", "approved_by", "created_at"}).
				AddRow("id-2", "new@example.com", users.StatusPending, "caller@example.com", now))

		resp := env.do(t, http.MethodPost, "/admin/users", token,
			map[string]string{"email": "New@Example.com"})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var u users.ApprovedUser
		decodeBody(t, resp, &u)
		assert.Equal(t, "new@example.com", u.Email)
		assert.NoError(t, env.mock.ExpectationsWereMet())
	})

	t.Run("AddDuplicate", func(t *testing.T) {
		env.mock.ExpectQuery("INSERT INTO approved_users").
			WithArgs("new@example.com", users.StatusPending, "caller@example.com").
			WillReturnError(&pgconn.PgError{Code: "23505"})

		resp := env.do(t, http.MethodPost, "/admin/users", token,
			map[string]string{"email": "new@example.com"})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("AddInvalidEmail", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/admin/users", token,
			map[string]string{"email": "not-an-email"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("UpdateStatus", func(t *testing.T) {
		env.mock.ExpectQuery("UPDATE approved_users").
			WithArgs("id-2", users.StatusApproved, "caller@example.com").
			WillReturnRows(pgxmock.NewRows([]string{"id", "email", "status", "approved_by", "created_at"}).
				AddRow("id-2", "new@example.com", users.StatusApproved, "caller@example.com", now))

		resp := env.do(t, http.MethodPatch, "/admin/users/id-2", token,
			map[string]string{"status": "approved"})
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var u users.ApprovedUser
		decodeBody(t, resp, &u)
		assert.Equal(t, users.StatusApproved, u.Status)
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		env.mock.ExpectQuery("UPDATE approved_users").
			WithArgs("ghost", users.StatusRejected, "caller@example.com").
			WillReturnRows(pgxmock.NewRows([]string{"id", "email", "status", "approved_by", "created_at"}))

		resp := env.do(t, http.MethodPatch, "/admin/users/ghost", token,
			map[string]string{"status": "rejected"})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
