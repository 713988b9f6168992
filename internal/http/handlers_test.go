package http

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/mauv0809/court-rotation/internal/config"
	"github.com/mauv0809/court-rotation/internal/metrics"
	"github.com/mauv0809/court-rotation/internal/notifier"
	"github.com/mauv0809/court-rotation/internal/pubsub"
	"github.com/mauv0809/court-rotation/internal/rotation"
	"github.com/mauv0809/court-rotation/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSlackSigningSecret = "test-signing-secret"

type testServer struct {
	*Server
	store    *session.MockStore
	notifier *notifier.Mock
	pubsub   *pubsub.MockPubSubClient
	metrics  *metrics.Mock
	tallies  *metrics.TallyMock
}

// setupTestServer initializes a server backed by in-memory mocks.
func setupTestServer(t *testing.T, withNotifier bool, slackSigningSecret string) testServer {
	t.Helper()

	ts := testServer{
		store:    session.NewMockStore(),
		notifier: notifier.NewMock(),
		pubsub:   pubsub.NewMock(),
		metrics:  metrics.NewMock(),
		tallies:  metrics.NewTallyMock(),
	}
	var n notifier.Notifier
	if withNotifier {
		n = ts.notifier
	}
	svc := session.NewService(ts.store, rotation.New(rotation.WithSeed(7)), ts.pubsub, n, ts.metrics, ts.tallies, session.Defaults{Courts: 2, QueueTarget: 2})
	cfg := config.Config{Slack: config.SlackConfig{SigningSecret: slackSigningSecret}}
	reg := prometheus.NewRegistry()
	ts.Server = NewServer(svc, ts.tallies, ts.metrics, metrics.NewMetricsHandler(reg), cfg, n, ts.pubsub)
	return ts
}

func (ts testServer) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	rr := httptest.NewRecorder()
	ts.Router.ServeHTTP(rr, req)
	return rr
}

func (ts testServer) createSession(t *testing.T, players int) rotation.Session {
	t.Helper()
	roster := make([]rotation.Player, players)
	for i := range roster {
		roster[i] = rotation.Player{ID: fmt.Sprintf("p%02d", i+1), Name: fmt.Sprintf("Player %d", i+1)}
	}
	rr := ts.do(t, http.MethodPost, "/sessions", session.CreateRequest{Name: "Club night", Players: roster})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[rotation.Session](t, rr)
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

// createSlackCommandRequest creates a slash command request signed the way Slack signs them.
func createSlackCommandRequest(t *testing.T, targetURL string, form url.Values, signingSecret string) *http.Request {
	t.Helper()

	body := form.Encode()
	req := httptest.NewRequest(http.MethodPost, targetURL, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	req.Header.Set("X-Slack-Request-Timestamp", timestamp)

	h := hmac.New(sha256.New, []byte(signingSecret))
	h.Write([]byte("v0:" + timestamp + ":" + body))
	req.Header.Set("X-Slack-Signature", "v0="+hex.EncodeToString(h.Sum(nil)))
	return req
}

func pushBody(t *testing.T, event pubsub.SessionEvent) string {
	t.Helper()
	raw, err := pubsub.Encode(event)
	require.NoError(t, err)
	var msg pushMessage
	msg.Subscription = "projects/test/subscriptions/session-events"
	msg.Message.Data = base64.StdEncoding.EncodeToString(raw)
	body, err := json.Marshal(msg)
	require.NoError(t, err)
	return string(body)
}

func TestHealthCheckHandler(t *testing.T) {
	ts := setupTestServer(t, true, "")

	rr := ts.do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rr.Code, "handler returned wrong status code")
	assert.Equal(t, "OK!", rr.Body.String(), "handler returned unexpected body")
}

func TestSessionLifecycle(t *testing.T) {
	ts := setupTestServer(t, true, "")
	created := ts.createSession(t, 12)
	base := "/sessions/" + created.ID

	t.Run("get and list", func(t *testing.T) {
		rr := ts.do(t, http.MethodGet, base, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Club night", decode[rotation.Session](t, rr).Name)

		rr = ts.do(t, http.MethodGet, "/sessions", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		summaries := decode[[]session.Summary](t, rr)
		require.Len(t, summaries, 1)
		assert.Equal(t, created.ID, summaries[0].ID)
	})

	t.Run("completing an idle court conflicts", func(t *testing.T) {
		rr := ts.do(t, http.MethodPost, base+"/courts/1/complete", nil)
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("start round honours dry run", func(t *testing.T) {
		rr := ts.do(t, http.MethodPost, base+"/round?dry_run=true", nil)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		s := decode[rotation.Session](t, rr)
		assert.Equal(t, 1, s.Round)
		assert.NotNil(t, s.Courts[0].Match)
		require.Len(t, ts.notifier.SendCourtAssignmentsCalls, 1)
		assert.True(t, ts.notifier.SendCourtAssignmentsCalls[0].DryRun)
	})

	t.Run("complete a match", func(t *testing.T) {
		rr := ts.do(t, http.MethodPost, base+"/courts/2/complete", nil)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		require.Len(t, ts.notifier.SendMatchCompletedCalls, 1)
		assert.False(t, ts.notifier.SendMatchCompletedCalls[0].DryRun)

		rr = ts.do(t, http.MethodGet, base+"/matches", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		matches := decode[[]session.CompletedMatch](t, rr)
		require.Len(t, matches, 1)
		assert.Equal(t, 2, matches[0].Court)
	})

	t.Run("bad court numbers", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPost, base+"/courts/two/complete", nil).Code)
		assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodPost, base+"/courts/9/complete", nil).Code)
	})

	t.Run("join leave and away", func(t *testing.T) {
		rr := ts.do(t, http.MethodPost, base+"/players", rotation.Player{ID: "late", Name: "Late arrival"})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		joined := decode[rotation.Session](t, rr)
		assert.NotNil(t, joined.Player("late"))

		rr = ts.do(t, http.MethodPost, base+"/players/p01/leave?reason=injury", nil)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		s := decode[rotation.Session](t, rr)
		assert.True(t, s.Player("p01").HasLeft)
		assert.Equal(t, "injury", s.Player("p01").LeftReason)

		rr = ts.do(t, http.MethodPost, base+"/players/late/away", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		away := decode[rotation.Session](t, rr)
		assert.True(t, away.Player("late").Away)

		rr = ts.do(t, http.MethodPost, base+"/players/late/away?away=false", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		back := decode[rotation.Session](t, rr)
		assert.False(t, back.Player("late").Away)

		assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodPost, base+"/players/ghost/leave", nil).Code)
		assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPost, base+"/players", "{").Code)
	})

	t.Run("queue maintenance and validation", func(t *testing.T) {
		rr := ts.do(t, http.MethodPost, base+"/queue?regenerate=true", nil)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, 1, ts.metrics.QueueRebuilds())

		rr = ts.do(t, http.MethodGet, base+"/validate", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		result := decode[rotation.ValidationResult](t, rr)
		assert.True(t, result.IsValid, result.Errors)
	})

	t.Run("stats", func(t *testing.T) {
		rr := ts.do(t, http.MethodGet, "/stats", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		stats := decode[map[metrics.Tally]int](t, rr)
		assert.Equal(t, 1, stats[metrics.TallySessionsCreated])
		assert.Equal(t, 1, stats[metrics.TallyRoundsStarted])
		assert.Equal(t, 1, stats[metrics.TallyMatchesCompleted])

		rr = ts.do(t, http.MethodGet, base+"/stats", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		own := decode[map[metrics.Tally]int](t, rr)
		assert.Equal(t, 1, own[metrics.TallyPlayersJoined])
		assert.Equal(t, 1, own[metrics.TallyPlayersLeft])

		assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/sessions/ghost/stats", nil).Code)
	})
}

func TestSessionErrors(t *testing.T) {
	ts := setupTestServer(t, true, "")

	tests := []struct {
		name   string
		method string
		target string
		body   any
		want   int
	}{
		{name: "unknown session", method: http.MethodGet, target: "/sessions/missing", want: http.StatusNotFound},
		{name: "unknown session round", method: http.MethodPost, target: "/sessions/missing/round", want: http.StatusNotFound},
		{name: "unknown session matches", method: http.MethodGet, target: "/sessions/missing/matches", want: http.StatusNotFound},
		{name: "malformed create", method: http.MethodPost, target: "/sessions", body: "not json", want: http.StatusBadRequest},
		{
			name:   "weight on unknown player",
			method: http.MethodPost,
			target: "/sessions",
			body: session.CreateRequest{
				Players: []rotation.Player{{ID: "a"}, {ID: "b"}},
				Weights: []rotation.PreferenceWeight{{Player1: "a", Player2: "z", Type: rotation.WeightTeammate, Strength: 3}},
			},
			want: http.StatusBadRequest,
		},
		{name: "wrong method", method: http.MethodGet, target: "/sessions/missing/round", want: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.do(t, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
		})
	}
	assert.Empty(t, ts.pubsub.Topics())
}

func TestAssignHandler(t *testing.T) {
	ts := setupTestServer(t, true, "")
	players := make([]rotation.Player, 9)
	for i := range players {
		players[i] = rotation.Player{ID: fmt.Sprintf("p%d", i)}
	}

	rr := ts.do(t, http.MethodPost, "/assign", assignRequest{Players: players, Courts: 2})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	a := decode[rotation.Assignment](t, rr)
	assert.Equal(t, 2, a.Quality.CourtsFilled)
	assert.Len(t, a.Waiting, 1)
	assert.Equal(t, 0, ts.store.SaveCalls, "ad hoc assignments are not stored")

	rr = ts.do(t, http.MethodPost, "/assign", assignRequest{Players: []rotation.Player{{ID: "a"}, {ID: "a"}}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSlashCommands(t *testing.T) {
	t.Run("courts for a named session", func(t *testing.T) {
		ts := setupTestServer(t, true, "")
		s := ts.createSession(t, 8)
		form := url.Values{"text": {s.ID}, "user_name": {"anna"}}
		req := httptest.NewRequest(http.MethodPost, "/slack/command/courts", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rr := httptest.NewRecorder()

		ts.Router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, map[string]string{"session": s.ID, "kind": "courts"}, decode[map[string]string](t, rr))
		require.Len(t, ts.notifier.FormatCourtsCalls, 1)
	})

	t.Run("leaderboard falls back to the latest session", func(t *testing.T) {
		ts := setupTestServer(t, true, testSlackSigningSecret)
		s := ts.createSession(t, 8)
		rr := httptest.NewRecorder()

		ts.Router.ServeHTTP(rr, createSlackCommandRequest(t, "/slack/command/leaderboard", url.Values{}, testSlackSigningSecret))

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, "leaderboard", decode[map[string]string](t, rr)["kind"])
		require.Len(t, ts.notifier.FormatLeaderboardCalls, 1)
		assert.Equal(t, s.ID, ts.notifier.FormatLeaderboardCalls[0].ID)
	})

	t.Run("bad signature is rejected", func(t *testing.T) {
		ts := setupTestServer(t, true, testSlackSigningSecret)
		rr := httptest.NewRecorder()

		ts.Router.ServeHTTP(rr, createSlackCommandRequest(t, "/slack/command/courts", url.Values{}, "wrong-secret"))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Empty(t, ts.notifier.FormatCourtsCalls)
	})

	t.Run("no sessions yet", func(t *testing.T) {
		ts := setupTestServer(t, true, "")
		rr := ts.do(t, http.MethodPost, "/slack/command/courts", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("slack not configured", func(t *testing.T) {
		ts := setupTestServer(t, false, "")
		rr := ts.do(t, http.MethodPost, "/slack/command/leaderboard", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})
}

func TestSessionEventHandler(t *testing.T) {
	ctx := context.Background()
	ts := setupTestServer(t, true, "")
	healthy := ts.createSession(t, 8)
	broken := &rotation.Session{ID: "broken", Players: []rotation.Player{{ID: "a", Status: rotation.StatusPlaying}}}
	require.NoError(t, ts.store.Save(ctx, broken))

	t.Run("healthy session", func(t *testing.T) {
		rr := ts.do(t, http.MethodPost, "/pubsub/session-events", pushBody(t, pubsub.SessionEvent{Type: pubsub.EventAssignmentUpdated, SessionID: healthy.ID}))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 0, ts.metrics.IntegrityViolations())
		require.Len(t, ts.pubsub.ProcessMessageCalls, 1)
	})

	t.Run("broken session is counted", func(t *testing.T) {
		rr := ts.do(t, http.MethodPost, "/pubsub/session-events", pushBody(t, pubsub.SessionEvent{Type: pubsub.EventMatchCompleted, SessionID: broken.ID}))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Positive(t, ts.metrics.IntegrityViolations())
	})

	t.Run("unknown session is acknowledged", func(t *testing.T) {
		rr := ts.do(t, http.MethodPost, "/pubsub/session-events", pushBody(t, pubsub.SessionEvent{Type: pubsub.EventPlayerLeft, SessionID: "gone"}))
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("malformed envelopes", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPost, "/pubsub/session-events", "{").Code)
		assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPost, "/pubsub/session-events", `{"message":{"data":"***"}}`).Code)
	})
}
