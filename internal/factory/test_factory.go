package factory

import (
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/mankind/internal/dependencies/mocks"
	"github.com/mcoot/mankind/internal/gateway"
	"github.com/mcoot/mankind/internal/services/duel"
	"github.com/mcoot/mankind/internal/services/responder"
	"github.com/mcoot/mankind/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// Opponent replies are sent without a typing delay and deadlines are polled
// every 5ms, so tests drive time entirely through MockClock.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	cfg := Config{
		Duel: duel.Config{
			Duration:     120 * time.Second,
			PollInterval: 5 * time.Millisecond,
		},
		Gateway: gateway.DefaultConfig(),
	}

	app := newWithDependencies(cfg, store, mockClock, mockRandom, responder.NewPhraseResponder(mockRandom), logger)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
