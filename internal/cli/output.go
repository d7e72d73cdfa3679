package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

// PrintFrame outputs one duel frame; JSON mode writes one line per frame
func (o *Output) PrintFrame(f Frame) {
	if o.format == "json" {
		data, _ := json.Marshal(f)
		fmt.Fprintln(o.w, string(data))
		return
	}
	o.printFrame(f)
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Progression:
		o.printProgression(v)
	case DuelList:
		o.printDuels(v)
	case Leaderboard:
		o.printLeaderboard(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Progression response type (matches API)
type Progression struct {
	PlayerID       string `json:"player_id"`
	Level          int    `json:"level"`
	XP             int    `json:"xp"`
	XPForNextLevel int    `json:"xp_for_next_level"`
	GamesPlayed    int    `json:"games_played"`
	GamesWon       int    `json:"games_won"`
	BehaviorMode   string `json:"behavior_mode"`
}

// DuelResult response type
type DuelResult struct {
	DuelID         string    `json:"duel_id"`
	PlayerID       string    `json:"player_id"`
	Level          int       `json:"level"`
	Mode           string    `json:"mode"`
	Decision       string    `json:"decision"`
	OpponentType   string    `json:"opponent_type"`
	Correct        bool      `json:"correct"`
	Score          int       `json:"score"`
	ElapsedSeconds float64   `json:"elapsed_seconds"`
	NewLevel       int       `json:"new_level"`
	NewXP          int       `json:"new_xp"`
	LeveledUp      bool      `json:"leveled_up"`
	CompletedAt    time.Time `json:"completed_at"`
}

// DuelList response type
type DuelList struct {
	Duels []DuelResult `json:"duels"`
}

// Standing response type
type Standing struct {
	Rank        int     `json:"rank"`
	PlayerID    string  `json:"player_id"`
	Level       int     `json:"level"`
	XP          int     `json:"xp"`
	GamesPlayed int     `json:"games_played"`
	GamesWon    int     `json:"games_won"`
	WinRate     float64 `json:"win_rate"`
}

// Leaderboard response type
type Leaderboard struct {
	Standings []Standing `json:"standings"`
}

// HealthResult response type
type HealthResult struct {
	Status            string `json:"status"`
	ActiveConnections int    `json:"active_connections"`
}

// Frame is any server-to-client duel event; unused fields stay zero
type Frame struct {
	Type          string `json:"type"`
	Level         int    `json:"level,omitempty"`
	Message       string `json:"message,omitempty"`
	Sender        string `json:"sender,omitempty"`
	Content       string `json:"content,omitempty"`
	TimeRemaining int    `json:"time_remaining"`
	Correct       *bool  `json:"correct,omitempty"`
	Score         int    `json:"score,omitempty"`
	OpponentType  string `json:"opponent_type,omitempty"`
	NewLevel      int    `json:"new_level,omitempty"`
	NewXP         int    `json:"new_xp,omitempty"`
}

func (o *Output) printProgression(p Progression) {
	fmt.Fprintf(o.w, "Player: %s\n", p.PlayerID)
	fmt.Fprintf(o.w, "Level: %d (%s)\n", p.Level, p.BehaviorMode)
	fmt.Fprintf(o.w, "XP: %d / %d\n", p.XP, p.XPForNextLevel)
	fmt.Fprintf(o.w, "Games: %d played, %d won\n", p.GamesPlayed, p.GamesWon)
}

func (o *Output) printDuels(l DuelList) {
	if len(l.Duels) == 0 {
		fmt.Fprintln(o.w, "No duels yet")
		return
	}
	for _, d := range l.Duels {
		verdict := "wrong"
		if d.Correct {
			verdict = "right"
		}
		fmt.Fprintf(o.w, "%s  %-12s L%-2d %-6s %-5s %+5d  (%.0fs)\n",
			d.CompletedAt.Format("2006-01-02 15:04:05"), d.PlayerID, d.Level,
			d.Decision, verdict, d.Score, d.ElapsedSeconds)
	}
}

func (o *Output) printLeaderboard(l Leaderboard) {
	if len(l.Standings) == 0 {
		fmt.Fprintln(o.w, "Leaderboard is empty")
		return
	}
	fmt.Fprintf(o.w, "%-4s %-16s %-5s %-6s %s\n", "#", "PLAYER", "LEVEL", "XP", "WON")
	for _, s := range l.Standings {
		fmt.Fprintf(o.w, "%-4d %-16s %-5d %-6d %d/%d\n",
			s.Rank, s.PlayerID, s.Level, s.XP, s.GamesWon, s.GamesPlayed)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	fmt.Fprintf(o.w, "Active connections: %d\n", h.ActiveConnections)
}

func (o *Output) printFrame(f Frame) {
	switch f.Type {
	case "game_start":
		fmt.Fprintf(o.w, "== Level %d == %s (%ds)\n", f.Level, f.Message, f.TimeRemaining)
	case "message":
		fmt.Fprintf(o.w, "[%3ds] %s: %s\n", f.TimeRemaining, f.Sender, f.Content)
	case "time_up":
		fmt.Fprintf(o.w, "!! %s\n", f.Message)
	case "game_result":
		verdict := "Wrong."
		if f.Correct != nil && *f.Correct {
			verdict = "Correct!"
		}
		fmt.Fprintf(o.w, "%s %+d points. The opponent was %s. Level %d, XP %d.\n",
			verdict, f.Score, f.OpponentType, f.NewLevel, f.NewXP)
		fmt.Fprintln(o.w, "Type /next for another duel or /quit to leave.")
	default:
		fmt.Fprintf(o.w, "(%s)\n", f.Type)
	}
}
