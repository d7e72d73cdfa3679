package factory

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/mankind/internal/model"
	"github.com/mcoot/mankind/internal/sse"
)

// eventSink collects outbound events from a session
type eventSink struct {
	events chan model.OutboundEvent
}

func (s *eventSink) Send(ctx context.Context, event model.OutboundEvent) error {
	select {
	case s.events <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

func (s *IntegrationSuite) TearDownTest() {
	s.Require().NoError(s.app.Close())
}

// session starts a duel session for the player and returns its inbound
// channel, its event sink and a channel carrying Run's return value
func (s *IntegrationSuite) session(ctx context.Context, player model.PlayerID) (chan []byte, *eventSink, chan error) {
	inbound := make(chan []byte, 8)
	sink := &eventSink{events: make(chan model.OutboundEvent, 16)}
	done := make(chan error, 1)
	go func() {
		done <- s.app.DuelController.Run(ctx, player, inbound, sink)
	}()
	return inbound, sink, done
}

func (s *IntegrationSuite) next(sink *eventSink) model.OutboundEvent {
	select {
	case ev := <-sink.events:
		return ev
	case <-time.After(2 * time.Second):
		s.FailNow("timed out waiting for event")
		return nil
	}
}

func (s *IntegrationSuite) send(inbound chan []byte, event model.InboundEvent) {
	data, err := json.Marshal(event)
	s.Require().NoError(err)
	inbound <- data
}

// Test: a scored duel flows through progression, storage and the live feed
func (s *IntegrationSuite) TestScoredDuelIsRecorded() {
	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	// Subscribe to the global feed before anything is published
	hub := s.app.HubManager.GetOrCreateHub(sse.TopicDuels)
	client := sse.NewClient(hub, "watcher")
	s.Require().True(hub.Register(client))
	s.Eventually(func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	inbound, sink, done := s.session(ctx, "alice")

	start := s.next(sink).(model.GameStartEvent)
	s.Equal(1, start.Level)
	s.Equal(120, start.TimeRemaining)
	s.IsType(model.MessageEvent{}, s.next(sink))

	s.app.MockClock.Advance(30 * time.Second)
	s.send(inbound, model.InboundEvent{Type: model.EventDecision, Decision: model.DecisionAI})

	result := s.next(sink).(model.GameResultEvent)
	s.True(result.Correct)
	// 50 * (1 + 90/60) / 0.6
	s.Equal(208, result.Score)
	s.Equal(2, result.NewLevel)
	s.Equal(208, result.NewXP)

	// Progression
	prog, err := s.app.Progression.Get(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(1, prog.GamesPlayed)
	s.Equal(1, prog.GamesWon)

	// Results read model
	s.Eventually(func() bool {
		recent, err := s.app.Results.Recent(s.ctx, 10)
		return err == nil && len(recent) == 1
	}, time.Second, 5*time.Millisecond)

	recent, err := s.app.Results.Recent(s.ctx, 10)
	s.Require().NoError(err)
	s.Equal(model.DecisionAI, recent[0].Decision)
	s.Equal(30.0, recent[0].ElapsedSeconds)

	board, err := s.app.Results.Leaderboard(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(board, 1)
	s.Equal(model.PlayerID("alice"), board[0].PlayerID)
	s.Equal(208, board[0].XP)

	// Live feed
	select {
	case <-client.Messages():
	case <-time.After(time.Second):
		s.Fail("no duel-result on the global feed")
	}

	close(inbound)
	s.NoError(<-done)
}

// Test: a disconnect before any decision leaves no trace
func (s *IntegrationSuite) TestDisconnectRecordsNothing() {
	inbound, sink, done := s.session(s.ctx, "bob")
	s.next(sink)
	s.next(sink)

	close(inbound)
	s.NoError(<-done)

	prog, err := s.app.Progression.Get(s.ctx, "bob")
	s.Require().NoError(err)
	s.Equal(0, prog.GamesPlayed)

	recent, err := s.app.Results.ForPlayer(s.ctx, "bob", 10)
	s.Require().NoError(err)
	s.Empty(recent)
}

// Test: several duels on one connection accumulate on the leaderboard
func (s *IntegrationSuite) TestLeaderboardOrdersPlayers() {
	play := func(player model.PlayerID, decision model.Decision) {
		inbound, sink, done := s.session(s.ctx, player)
		s.next(sink)
		s.next(sink)
		s.send(inbound, model.InboundEvent{Type: model.EventDecision, Decision: decision})
		s.IsType(model.GameResultEvent{}, s.next(sink))
		close(inbound)
		s.NoError(<-done)
	}

	play("carol", model.DecisionAI)
	play("dave", model.DecisionHuman)

	board, err := s.app.Results.Leaderboard(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(board, 2)
	s.Equal(model.PlayerID("carol"), board[0].PlayerID)
	s.Equal(250, board[0].XP)
	s.Equal(model.PlayerID("dave"), board[1].PlayerID)
	s.Equal(-25, board[1].XP)
}
