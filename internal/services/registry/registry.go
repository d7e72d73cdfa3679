package registry

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/mcoot/mankind/internal/model"
)

// Conn is the part of a live connection the registry needs
type Conn interface {
	Close() error
}

// Lease proves ownership of a registry entry
type Lease struct {
	PlayerID model.PlayerID
	Token    string
}

type entry struct {
	conn  Conn
	token string
}

// Registry tracks the single live connection per player. A new connection
// for a player replaces and closes the previous one.
type Registry struct {
	mu      sync.Mutex
	entries map[model.PlayerID]entry
	logger  *slog.Logger
}

// New creates an empty Registry
func New(logger *slog.Logger) *Registry {
	return &Registry{
		entries: make(map[model.PlayerID]entry),
		logger:  logger.With(slog.String("component", "registry")),
	}
}

// Register makes conn the player's live connection and returns its lease.
// Any previous connection is closed after the lock is released.
func (r *Registry) Register(id model.PlayerID, conn Conn) *Lease {
	lease := &Lease{PlayerID: id, Token: uuid.NewString()}

	r.mu.Lock()
	prev, hadPrev := r.entries[id]
	r.entries[id] = entry{conn: conn, token: lease.Token}
	r.mu.Unlock()

	if hadPrev {
		r.logger.Info("replacing existing connection", slog.String("player_id", string(id)))
		if err := prev.conn.Close(); err != nil {
			r.logger.Debug("closing replaced connection",
				slog.String("player_id", string(id)),
				slog.String("error", err.Error()))
		}
	}
	return lease
}

// Release removes the entry if the lease still owns it
func (r *Registry) Release(lease *Lease) bool {
	if lease == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[lease.PlayerID]
	if !ok || e.token != lease.Token {
		return false
	}
	delete(r.entries, lease.PlayerID)
	return true
}

// Lookup returns the player's live connection, if any
func (r *Registry) Lookup(id model.PlayerID) (Conn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	return e.conn, ok
}

// Count returns the number of live connections
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// CloseAll closes and forgets every connection
func (r *Registry) CloseAll() {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[model.PlayerID]entry)
	r.mu.Unlock()

	for id, e := range entries {
		if err := e.conn.Close(); err != nil {
			r.logger.Debug("closing connection on shutdown",
				slog.String("player_id", string(id)),
				slog.String("error", err.Error()))
		}
	}
}
