package duel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/mankind/internal/dependencies/clock"
	"github.com/mcoot/mankind/internal/dependencies/random"
	"github.com/mcoot/mankind/internal/model"
	"github.com/mcoot/mankind/internal/services/responder"
	"github.com/mcoot/mankind/internal/services/scoring"
)

// Config holds the timing parameters of a duel
type Config struct {
	Duration       time.Duration `mapstructure:"duration"`
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	TypingDelayMin time.Duration `mapstructure:"typing_delay_min"`
	TypingDelayMax time.Duration `mapstructure:"typing_delay_max"`
}

// MaxPollInterval bounds how late a deadline may be noticed
const MaxPollInterval = time.Second

// DefaultConfig returns the standard two-minute duel settings
func DefaultConfig() Config {
	return Config{
		Duration:       120 * time.Second,
		PollInterval:   250 * time.Millisecond,
		TypingDelayMin: 500 * time.Millisecond,
		TypingDelayMax: 2500 * time.Millisecond,
	}
}

// Sender delivers outbound events to the connected client
type Sender interface {
	Send(ctx context.Context, event model.OutboundEvent) error
}

// ProgressionStore is the subset of the progression store a session needs
type ProgressionStore interface {
	GetOrCreate(ctx context.Context, id model.PlayerID) (*model.Progression, error)
	ApplyResult(ctx context.Context, id model.PlayerID, correct bool, score int) (*model.Progression, bool, error)
}

// ResultRecorder keeps scored duels for the read API
type ResultRecorder interface {
	Record(ctx context.Context, result *model.DuelResult, progression *model.Progression) error
}

// Controller runs duel sessions. One Controller serves every connection;
// per-connection state lives in the session created by Run.
type Controller struct {
	cfg         Config
	progression ProgressionStore
	responder   responder.Responder
	recorder    ResultRecorder
	scoring     *scoring.Service
	clock       clock.Clock
	random      random.Random
	logger      *slog.Logger
}

// NewController creates a new duel Controller. recorder may be nil.
func NewController(
	cfg Config,
	progression ProgressionStore,
	resp responder.Responder,
	recorder ResultRecorder,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	if cfg.PollInterval <= 0 || cfg.PollInterval > MaxPollInterval {
		cfg.PollInterval = DefaultConfig().PollInterval
	}
	return &Controller{
		cfg:         cfg,
		progression: progression,
		responder:   resp,
		recorder:    recorder,
		scoring:     scoring.New(cfg.Duration),
		clock:       clock,
		random:      random,
		logger:      logger.With(slog.String("component", "duel")),
	}
}

// outcome is the result of handling one inbound event
type outcome int

const (
	outcomeHandled outcome = iota
	outcomeIgnored
	outcomeTerminate // the session ends; a nil error means the client went away
)

// session is the per-connection duel state. It is only touched by the
// goroutine running Controller.Run.
type session struct {
	c        *Controller
	playerID model.PlayerID
	out      Sender
	duel     *model.Duel
	logger   *slog.Logger
}

// Run drives duels for one connection until the inbound channel closes, ctx
// is cancelled, or a fatal error occurs. A disconnect returns nil and leaves
// progression untouched for the unfinished duel.
func (c *Controller) Run(ctx context.Context, playerID model.PlayerID, inbound <-chan []byte, out Sender) error {
	if playerID == "" {
		return model.ErrInvalidPlayerID
	}

	s := &session{
		c:        c,
		playerID: playerID,
		out:      out,
		logger:   c.logger.With(slog.String("player_id", string(playerID))),
	}

	if oc, err := s.startDuel(ctx, model.DuelStartedText); oc == outcomeTerminate {
		return err
	}

	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if oc, err := s.checkDeadline(ctx); oc == outcomeTerminate {
			return err
		}

		select {
		case <-ctx.Done():
			s.logger.Debug("session cancelled")
			return nil

		case raw, ok := <-inbound:
			if !ok {
				s.logger.Debug("client disconnected")
				return nil
			}
			if oc, err := s.checkDeadline(ctx); oc == outcomeTerminate {
				return err
			}
			if oc, err := s.handle(ctx, raw); oc == outcomeTerminate {
				return err
			}

		case <-ticker.C:
		}
	}
}

// startDuel resets the session to a fresh duel and sends game_start followed
// by the opponent's greeting
func (s *session) startDuel(ctx context.Context, text string) (outcome, error) {
	prog, err := s.c.progression.GetOrCreate(ctx, s.playerID)
	if err != nil {
		return outcomeTerminate, fmt.Errorf("load progression: %w", err)
	}

	now := s.c.clock.Now()
	duel := &model.Duel{
		ID:        model.DuelID(uuid.NewString()),
		PlayerID:  s.playerID,
		Level:     prog.Level,
		Mode:      model.BehaviorModeForLevel(prog.Level),
		Opponent:  model.OpponentAI,
		State:     model.DuelStateStarting,
		StartedAt: now,
		Deadline:  now.Add(s.c.cfg.Duration),
	}
	s.duel = duel
	s.logger = s.c.logger.With(
		slog.String("player_id", string(s.playerID)),
		slog.String("duel_id", string(duel.ID)))

	s.logger.Info("duel started",
		slog.Int("level", duel.Level),
		slog.String("mode", string(duel.Mode)))

	if err := s.send(ctx, model.NewGameStartEvent(duel.Level, text, duel.TimeRemainingSeconds(now))); err != nil {
		return outcomeTerminate, err
	}

	greeting, err := s.c.responder.Generate(ctx, responder.GreetingInput, duel.Level, duel.Mode)
	if err != nil {
		return s.responderFailed(ctx, err)
	}
	if err := s.send(ctx, model.NewOpponentMessage(greeting, duel.TimeRemainingSeconds(s.c.clock.Now()))); err != nil {
		return outcomeTerminate, err
	}

	duel.State = model.DuelStateActive
	return outcomeHandled, nil
}

// checkDeadline moves an active duel whose budget is spent to time_up and
// notifies the client exactly once
func (s *session) checkDeadline(ctx context.Context) (outcome, error) {
	if s.duel.State != model.DuelStateActive || !s.duel.Expired(s.c.clock.Now()) {
		return outcomeIgnored, nil
	}

	s.duel.State = model.DuelStateTimeUp
	s.logger.Info("duel time up")

	if err := s.send(ctx, model.NewTimeUpEvent()); err != nil {
		return outcomeTerminate, err
	}
	return outcomeHandled, nil
}

// handle decodes and dispatches one inbound frame
func (s *session) handle(ctx context.Context, raw []byte) (outcome, error) {
	var event model.InboundEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		s.logger.Warn("ignoring event",
			slog.String("error", fmt.Errorf("%w: %w", model.ErrMalformedEvent, err).Error()))
		return outcomeIgnored, nil
	}

	switch event.Type {
	case model.EventChatMessage:
		return s.handleMessage(ctx, event.Content)
	case model.EventDecision:
		return s.handleDecision(ctx, event.Decision)
	case model.EventNextDuel:
		return s.handleNextDuel(ctx)
	default:
		s.logger.Warn("ignoring event",
			slog.String("type", string(event.Type)),
			slog.String("error", model.ErrUnknownEventType.Error()))
		return outcomeIgnored, nil
	}
}

func (s *session) handleMessage(ctx context.Context, content string) (outcome, error) {
	if s.duel.State != model.DuelStateActive {
		s.logger.Debug("ignoring message", slog.String("state", string(s.duel.State)))
		return outcomeIgnored, nil
	}

	reply, err := s.c.responder.Generate(ctx, content, s.duel.Level, s.duel.Mode)
	if err != nil {
		return s.responderFailed(ctx, err)
	}

	if !s.typingDelay(ctx) {
		return outcomeTerminate, nil
	}

	if err := s.send(ctx, model.NewOpponentMessage(reply, s.duel.TimeRemainingSeconds(s.c.clock.Now()))); err != nil {
		return outcomeTerminate, err
	}
	return outcomeHandled, nil
}

func (s *session) handleDecision(ctx context.Context, decision model.Decision) (outcome, error) {
	if !s.duel.AcceptsDecision() {
		s.logger.Debug("ignoring decision", slog.String("state", string(s.duel.State)))
		return outcomeIgnored, nil
	}

	now := s.c.clock.Now()
	elapsed := s.duel.Elapsed(now)
	correct := s.duel.IsCorrect(decision)
	score := s.c.scoring.ScoreDecision(correct, elapsed, s.duel.Level)

	prog, leveledUp, err := s.c.progression.ApplyResult(ctx, s.playerID, correct, score)
	if err != nil {
		return outcomeTerminate, fmt.Errorf("apply result: %w", err)
	}
	s.duel.State = model.DuelStateFinished

	result := &model.DuelResult{
		DuelID:         s.duel.ID,
		PlayerID:       s.playerID,
		Level:          s.duel.Level,
		Mode:           s.duel.Mode,
		Decision:       decision,
		Opponent:       s.duel.Opponent,
		Correct:        correct,
		Score:          score,
		ElapsedSeconds: elapsed.Seconds(),
		NewLevel:       prog.Level,
		NewXP:          prog.XP,
		LeveledUp:      leveledUp,
		CompletedAt:    now,
	}

	s.logger.Info("duel scored",
		slog.String("decision", string(decision)),
		slog.Bool("correct", correct),
		slog.Int("score", score),
		slog.Int("new_level", prog.Level),
		slog.Int("new_xp", prog.XP))

	if err := s.send(ctx, model.NewGameResultEvent(result)); err != nil {
		return outcomeTerminate, err
	}

	if s.c.recorder != nil {
		if err := s.c.recorder.Record(ctx, result, prog); err != nil {
			s.logger.Error("failed to record duel result", slog.String("error", err.Error()))
		}
	}
	return outcomeHandled, nil
}

func (s *session) handleNextDuel(ctx context.Context) (outcome, error) {
	switch s.duel.State {
	case model.DuelStateActive, model.DuelStateTimeUp, model.DuelStateFinished:
		s.logger.Debug("next duel requested", slog.String("state", string(s.duel.State)))
		return s.startDuel(ctx, model.NextDuelText)
	default:
		return outcomeIgnored, nil
	}
}

// typingDelay pauses this session for a random typing time. It reports
// false if ctx was cancelled first.
func (s *session) typingDelay(ctx context.Context) bool {
	delay := random.Duration(s.c.random, s.c.cfg.TypingDelayMin, s.c.cfg.TypingDelayMax)
	if delay <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// responderFailed ends the session. A failure caused by the connection going
// away is a plain disconnect.
func (s *session) responderFailed(ctx context.Context, err error) (outcome, error) {
	if ctx.Err() != nil {
		return outcomeTerminate, nil
	}
	s.logger.Error("responder failed", slog.String("error", err.Error()))
	if errors.Is(err, model.ErrResponderFailed) {
		return outcomeTerminate, err
	}
	return outcomeTerminate, fmt.Errorf("%w: %w", model.ErrResponderFailed, err)
}

func (s *session) send(ctx context.Context, event model.OutboundEvent) error {
	if err := s.out.Send(ctx, event); err != nil {
		return fmt.Errorf("send %s: %w", event.EventType(), err)
	}
	return nil
}
