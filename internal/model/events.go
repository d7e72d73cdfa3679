package model

// EventType identifies the type of a wire event
type EventType string

const (
	// Inbound events (client -> server)
	EventChatMessage EventType = "message"
	EventDecision    EventType = "decision"
	EventNextDuel    EventType = "next_duel"

	// Outbound events (server -> client)
	EventGameStart  EventType = "game_start"
	EventMessage    EventType = "message"
	EventTimeUp     EventType = "time_up"
	EventGameResult EventType = "game_result"

	// Feed events
	EventDuelResult EventType = "duel-result"
)

// SenderOpponent is the only sender value emitted on message events
const SenderOpponent = "opponent"

// Fixed message texts
const (
	DuelStartedText = "Duel started! You have 2 minutes to determine if you're talking to a human or AI."
	NextDuelText    = "New duel started!"
	TimeUpText      = "Time's up! Make your decision: Human or AI?"
)

// InboundEvent is the envelope for every client frame. Fields not used by a
// given type are left empty.
type InboundEvent struct {
	Type     EventType `json:"type"`
	Content  string    `json:"content,omitempty"`
	Decision Decision  `json:"decision,omitempty"`
}

// OutboundEvent is implemented by every server frame
type OutboundEvent interface {
	EventType() EventType
}

// GameStartEvent announces a fresh duel
type GameStartEvent struct {
	Type          EventType `json:"type"`
	Level         int       `json:"level"`
	Message       string    `json:"message"`
	TimeRemaining int       `json:"time_remaining"`
}

func (e GameStartEvent) EventType() EventType { return e.Type }

// NewGameStartEvent builds a game_start frame
func NewGameStartEvent(level int, message string, timeRemaining int) GameStartEvent {
	return GameStartEvent{
		Type:          EventGameStart,
		Level:         level,
		Message:       message,
		TimeRemaining: timeRemaining,
	}
}

// MessageEvent carries one opponent chat line
type MessageEvent struct {
	Type          EventType `json:"type"`
	Sender        string    `json:"sender"`
	Content       string    `json:"content"`
	TimeRemaining int       `json:"time_remaining"`
}

func (e MessageEvent) EventType() EventType { return e.Type }

// NewOpponentMessage builds a message frame from the opponent
func NewOpponentMessage(content string, timeRemaining int) MessageEvent {
	return MessageEvent{
		Type:          EventMessage,
		Sender:        SenderOpponent,
		Content:       content,
		TimeRemaining: timeRemaining,
	}
}

// TimeUpEvent tells the client the chat budget is spent
type TimeUpEvent struct {
	Type          EventType `json:"type"`
	Message       string    `json:"message"`
	TimeRemaining int       `json:"time_remaining"`
}

func (e TimeUpEvent) EventType() EventType { return e.Type }

// NewTimeUpEvent builds the time_up frame; time_remaining is always 0
func NewTimeUpEvent() TimeUpEvent {
	return TimeUpEvent{
		Type:    EventTimeUp,
		Message: TimeUpText,
	}
}

// GameResultEvent reports the outcome of a decision
type GameResultEvent struct {
	Type         EventType    `json:"type"`
	Correct      bool         `json:"correct"`
	Score        int          `json:"score"`
	OpponentType OpponentType `json:"opponent_type"`
	NewLevel     int          `json:"new_level"`
	NewXP        int          `json:"new_xp"`
}

func (e GameResultEvent) EventType() EventType { return e.Type }

// NewGameResultEvent builds a game_result frame from the scored result
func NewGameResultEvent(r *DuelResult) GameResultEvent {
	return GameResultEvent{
		Type:         EventGameResult,
		Correct:      r.Correct,
		Score:        r.Score,
		OpponentType: r.Opponent,
		NewLevel:     r.NewLevel,
		NewXP:        r.NewXP,
	}
}
