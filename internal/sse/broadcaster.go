package sse

import (
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/mcoot/mankind/internal/model"
)

// Event names published on the feeds
const (
	EventDuelResult = string(model.EventDuelResult)
	EventLevelUp    = "level-up"
)

// DuelResultPayload is the JSON body of a duel-result event
type DuelResultPayload struct {
	DuelID    string  `json:"duel_id"`
	PlayerID  string  `json:"player_id"`
	Level     int     `json:"level"`
	Mode      string  `json:"mode"`
	Decision  string  `json:"decision"`
	Correct   bool    `json:"correct"`
	Score     int     `json:"score"`
	Elapsed   float64 `json:"elapsed_seconds"`
	NewLevel  int     `json:"new_level"`
	NewXP     int     `json:"new_xp"`
	LeveledUp bool    `json:"leveled_up"`
}

// Broadcaster publishes duel outcomes to the live feeds
type Broadcaster struct {
	hubManager *HubManager
	logger     *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// BroadcastDuelResult publishes a result on the global feed and the
// player's own feed, plus a level-up event on the player's feed
func (b *Broadcaster) BroadcastDuelResult(result *model.DuelResult) {
	data, err := json.Marshal(DuelResultPayload{
		DuelID:    string(result.DuelID),
		PlayerID:  string(result.PlayerID),
		Level:     result.Level,
		Mode:      string(result.Mode),
		Decision:  string(result.Decision),
		Correct:   result.Correct,
		Score:     result.Score,
		Elapsed:   result.ElapsedSeconds,
		NewLevel:  result.NewLevel,
		NewXP:     result.NewXP,
		LeveledUp: result.LeveledUp,
	})
	if err != nil {
		b.logger.Error("sse failed to encode duel result",
			slog.String("duel_id", string(result.DuelID)),
			slog.Any("error", err))
		return
	}

	if hub := b.hubManager.GetHub(TopicDuels); hub != nil {
		hub.BroadcastEvent(EventDuelResult, string(data))
	}

	hub := b.hubManager.GetHub(PlayerTopic(result.PlayerID))
	if hub == nil {
		return
	}
	hub.BroadcastEvent(EventDuelResult, string(data))
	if result.LeveledUp {
		hub.BroadcastEvent(EventLevelUp, `{"level":`+strconv.Itoa(result.NewLevel)+`}`)
	}
}
