package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
)

// memoryGame keeps encoded games in process memory, so nothing survives a restart.
// Games are stored encoded so callers never share a GameState with the store.
type memoryGame struct {
	mu    sync.RWMutex
	games map[string]memoryEntry
	ttl   time.Duration
	now   func() time.Time
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

func (that memoryEntry) expired(now time.Time) bool {
	return !that.expiresAt.IsZero() && !now.Before(that.expiresAt)
}

// NewMemoryGameRepository keeps games in memory. Every write refreshes the entry expiry to ttl; zero means no expiry.
func NewMemoryGameRepository(ttl time.Duration) GameRepository {
	return &memoryGame{
		games: make(map[string]memoryEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (that *memoryGame) CreateOrUpdate(_ context.Context, game *entity.Game) error {
	gameJSON, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	now := that.now()
	entry := memoryEntry{data: gameJSON}
	if that.ttl > 0 {
		entry.expiresAt = now.Add(that.ttl)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	that.sweep(now)
	that.games[game.ID] = entry

	return nil
}

func (that *memoryGame) GetByID(_ context.Context, id string) (*entity.Game, error) {
	that.mu.RLock()
	entry, ok := that.games[id]
	that.mu.RUnlock()

	if !ok || entry.expired(that.now()) {
		return nil, fmt.Errorf("%w: id %s", apperror.ErrGameNotFound, id)
	}

	return decodeGame(entry.data)
}

func (that *memoryGame) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	entry, ok := that.games[id]
	if !ok {
		return fmt.Errorf("%w: id %s", apperror.ErrGameNotFound, id)
	}

	delete(that.games, id)

	if entry.expired(that.now()) {
		return fmt.Errorf("%w: id %s", apperror.ErrGameNotFound, id)
	}

	return nil
}

// sweep drops expired entries. Callers hold the write lock.
func (that *memoryGame) sweep(now time.Time) {
	for id, entry := range that.games {
		if entry.expired(now) {
			delete(that.games, id)
		}
	}
}

func (that *memoryGame) size() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.games)
}
