package session

import (
	"sync"

	"github.com/arenabot/tictactoe-arena/internal/entity"
)

// Store is the in-memory registry of live games. It keeps a direct
// user-to-game index so lookup by participant never scans, and it is the
// sole owner of a game's lifecycle after the matchmaker constructs it.
type Store struct {
	mu     sync.RWMutex
	games  map[string]*entity.Game
	byUser map[int64]string
}

func NewStore() *Store {
	return &Store{
		games:  make(map[string]*entity.Game),
		byUser: make(map[int64]string),
	}
}

// Put registers a game and indexes both participants.
func (that *Store) Put(game *entity.Game) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.games[game.ID] = game
	for _, player := range game.Players {
		that.byUser[player.ID] = game.ID
	}
}

// ByUser returns the game the user participates in, if any.
func (that *Store) ByUser(userID int64) (*entity.Game, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	gameID, ok := that.byUser[userID]
	if !ok {
		return nil, false
	}

	game, ok := that.games[gameID]

	return game, ok
}

// Delete destroys a game and drops the index entries of its players.
func (that *Store) Delete(gameID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	game, ok := that.games[gameID]
	if !ok {
		return
	}

	for _, player := range game.Players {
		delete(that.byUser, player.ID)
	}

	delete(that.games, gameID)
}

// Count returns the number of live games.
func (that *Store) Count() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.games)
}
