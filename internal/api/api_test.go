package api_test

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/mankind/internal/api"
	"github.com/mcoot/mankind/internal/api/apierr"
	"github.com/mcoot/mankind/internal/api/response"
	"github.com/mcoot/mankind/internal/factory"
	"github.com/mcoot/mankind/internal/model"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	app := factory.NewTestApp()
	t.Cleanup(func() { _ = app.Close() })

	router := api.NewRouter(api.RouterConfig{
		Logger:      logger,
		Progression: app.Progression,
		Results:     app.Results,
		Connections: app.Registry,
		HubManager:  app.HubManager,
		Gateway:     app.Gateway,
	})

	return &testServer{handler: router, app: app}
}

func (ts *testServer) request(method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

// seed scores a duel for the player without going through a session
func (ts *testServer) seed(t *testing.T, player model.PlayerID, correct bool, score int) *model.DuelResult {
	t.Helper()
	ctx := context.Background()

	_, err := ts.app.Progression.GetOrCreate(ctx, player)
	require.NoError(t, err)
	prog, leveledUp, err := ts.app.Progression.ApplyResult(ctx, player, correct, score)
	require.NoError(t, err)

	decision := model.DecisionAI
	if !correct {
		decision = model.DecisionHuman
	}
	result := &model.DuelResult{
		DuelID:      model.DuelID(string(player) + "-" + ts.app.MockClock.Now().Format(time.RFC3339Nano)),
		PlayerID:    player,
		Level:       1,
		Mode:        model.ModeNormal,
		Decision:    decision,
		Opponent:    model.OpponentAI,
		Correct:     correct,
		Score:       score,
		NewLevel:    prog.Level,
		NewXP:       prog.XP,
		LeveledUp:   leveledUp,
		CompletedAt: ts.app.MockClock.Now(),
	}
	require.NoError(t, ts.app.Results.Record(ctx, result, prog))
	ts.app.MockClock.Advance(time.Second)
	return result
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) apierr.APIError {
	t.Helper()
	var body apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body.Error
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.Health
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 0, resp.ActiveConnections)
}

func TestGetProgression(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t, "alice", true, 250)

	rr := ts.request(http.MethodGet, "/api/v1/players/alice/progression")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.Progression
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "alice", resp.PlayerID)
	assert.Equal(t, 2, resp.Level)
	assert.Equal(t, 250, resp.XP)
	assert.Equal(t, 200, resp.XPForNextLevel)
	assert.Equal(t, 1, resp.GamesPlayed)
	assert.Equal(t, 1, resp.GamesWon)
	assert.Equal(t, "normal", resp.BehaviorMode)
}

func TestListPlayers(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/players")
	assert.Equal(t, http.StatusOK, rr.Code)
	var empty response.PlayerList
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &empty))
	assert.Empty(t, empty.Players)

	ts.seed(t, "bob", false, -25)
	ts.seed(t, "alice", true, 250)

	rr = ts.request(http.MethodGet, "/api/v1/players")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.PlayerList
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Players, 2)
	assert.Equal(t, "alice", resp.Players[0].PlayerID)
	assert.Equal(t, 2, resp.Players[0].Level)
	assert.Equal(t, "bob", resp.Players[1].PlayerID)
	assert.Equal(t, -25, resp.Players[1].XP)
	assert.Equal(t, 1, resp.Players[1].GamesPlayed)
}

func TestGetProgressionUnknownPlayer(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/players/nobody/progression")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodePlayerNotFound, decodeError(t, rr).Code)
}

func TestListPlayerDuels(t *testing.T) {
	ts := newTestServer(t)
	first := ts.seed(t, "alice", true, 250)
	second := ts.seed(t, "alice", false, -25)
	ts.seed(t, "bob", true, 100)

	rr := ts.request(http.MethodGet, "/api/v1/players/alice/duels")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.DuelList
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Duels, 2)
	// newest first
	assert.Equal(t, string(second.DuelID), resp.Duels[0].DuelID)
	assert.Equal(t, string(first.DuelID), resp.Duels[1].DuelID)
	assert.Equal(t, "human", resp.Duels[0].Decision)
	assert.False(t, resp.Duels[0].Correct)

	rr = ts.request(http.MethodGet, "/api/v1/players/alice/duels?limit=1")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Len(t, resp.Duels, 1)
}

func TestInvalidLimit(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{
		"/api/v1/players/alice/duels?limit=abc",
		"/api/v1/duels/recent?limit=-1",
		"/api/v1/leaderboard?limit=1.5",
	} {
		rr := ts.request(http.MethodGet, path)
		assert.Equal(t, http.StatusBadRequest, rr.Code, path)
		assert.Equal(t, apierr.CodeInvalidRequest, decodeError(t, rr).Code, path)
	}
}

func TestRecentAndGetDuel(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t, "alice", true, 250)
	last := ts.seed(t, "bob", true, 100)

	rr := ts.request(http.MethodGet, "/api/v1/duels/recent")
	assert.Equal(t, http.StatusOK, rr.Code)

	var list response.DuelList
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list.Duels, 2)
	assert.Equal(t, "bob", list.Duels[0].PlayerID)

	rr = ts.request(http.MethodGet, "/api/v1/duels/"+string(last.DuelID))
	assert.Equal(t, http.StatusOK, rr.Code)

	var duel response.DuelResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &duel))
	assert.Equal(t, "ai", duel.OpponentType)
	assert.Equal(t, 100, duel.Score)

	rr = ts.request(http.MethodGet, "/api/v1/duels/missing")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeDuelNotFound, decodeError(t, rr).Code)
}

func TestLeaderboard(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t, "alice", true, 100)
	ts.seed(t, "bob", true, 250)
	ts.seed(t, "carol", false, -25)

	rr := ts.request(http.MethodGet, "/api/v1/leaderboard")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.Leaderboard
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Standings, 3)

	assert.Equal(t, "bob", resp.Standings[0].PlayerID)
	assert.Equal(t, 1, resp.Standings[0].Rank)
	assert.Equal(t, "alice", resp.Standings[1].PlayerID)
	assert.Equal(t, "carol", resp.Standings[2].PlayerID)
	assert.Equal(t, 3, resp.Standings[2].Rank)
	assert.Equal(t, 0.0, resp.Standings[2].WinRate)
}

func TestPlayerEventsStream(t *testing.T) {
	ts := newTestServer(t)
	server := httptest.NewServer(ts.handler)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/v1/players/alice/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: connected\n", line)

	// Wait until the stream is registered before publishing
	hub := ts.app.HubManager.GetHub("player:alice")
	require.NotNil(t, hub)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	ts.seed(t, "alice", true, 250)

	var events []string
	for len(events) < 2 {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if name, ok := strings.CutPrefix(line, "event: "); ok {
			events = append(events, strings.TrimSpace(name))
		}
	}
	assert.Equal(t, []string{"duel-result", "level-up"}, events)
}

func TestDuelOverWebsocketRoute(t *testing.T) {
	ts := newTestServer(t)
	server := httptest.NewServer(ts.handler)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/alice"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer ws.Close()

	var frame map[string]any
	require.NoError(t, ws.ReadJSON(&frame))
	assert.Equal(t, "game_start", frame["type"])

	rr := ts.request(http.MethodGet, "/api/v1/health")
	var health response.Health
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &health))
	assert.Equal(t, 1, health.ActiveConnections)
}
