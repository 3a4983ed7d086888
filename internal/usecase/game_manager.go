package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/arenabot/tictactoe-arena/internal/apperror"
	"github.com/arenabot/tictactoe-arena/internal/entity"
)

type presenceRepo interface {
	MarkWaiting(ctx context.Context, userID int64) error
	MarkPlaying(ctx context.Context, userID, partnerID int64) error
	Clear(ctx context.Context, userID int64) error
	WaitingCount(ctx context.Context) (int64, error)
	WaitingUsers(ctx context.Context) ([]int64, error)
	PartnerOf(ctx context.Context, userID int64) (int64, error)
	TakeWaitingPair(ctx context.Context) (int64, int64, error)
}

type sessionStore interface {
	Put(game *entity.Game)
	ByUser(userID int64) (*entity.Game, bool)
	Delete(gameID string)
}

// GameManager is the session controller: it mediates between the
// presence records and the live games and decides which notifications
// go out. One mutex serializes user actions against the matchmaking
// sweep, so a pairing transition is never observed half done.
type GameManager struct {
	logger *slog.Logger

	mu       sync.Mutex
	presence presenceRepo
	sessions sessionStore
	notifier Notifier
}

func NewGameManager(logger *slog.Logger, presence presenceRepo, sessions sessionStore, notifier Notifier) *GameManager {
	return &GameManager{
		logger: logger,

		presence: presence,
		sessions: sessions,
		notifier: notifier,
	}
}

// RegisterUser puts the user into the waiting queue. A user who is
// already waiting or already paired keeps their state and only gets told
// so.
func (that *GameManager) RegisterUser(ctx context.Context, userID int64) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	partnerID, err := that.presence.PartnerOf(ctx, userID)
	if err == nil {
		that.notifier.NotifyAlreadyPlaying(userID, partnerID)
		return nil
	}

	if !errors.Is(err, apperror.ErrNotPlaying) {
		return fmt.Errorf("failed to check playing record: %w", err)
	}

	waiting, err := that.presence.WaitingUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list waiting users: %w", err)
	}

	if slices.Contains(waiting, userID) {
		that.notifier.NotifyAlreadyQueued(userID)
		return nil
	}

	if err = that.presence.MarkWaiting(ctx, userID); err != nil {
		return fmt.Errorf("failed to mark user waiting: %w", err)
	}

	that.notifier.NotifyQueued(userID)

	return nil
}

// Interrupt tears down whatever the user is involved in. A paired user's
// partner is notified and cleared too, and the game is destroyed; a
// merely waiting user just leaves the queue.
func (that *GameManager) Interrupt(ctx context.Context, userID int64) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	log := that.logger.With("method", "Interrupt")

	partnerID, err := that.presence.PartnerOf(ctx, userID)

	switch {
	case err == nil:
		that.notifier.NotifyInterruptedByOpponent(partnerID)

		if err = that.presence.Clear(ctx, partnerID); err != nil {
			return fmt.Errorf("failed to clear partner: %w", err)
		}

		if game, ok := that.sessions.ByUser(userID); ok {
			that.sessions.Delete(game.ID)
			log.Info("game interrupted", "game_id", game.ID, "user_id", userID)
		}
	case !errors.Is(err, apperror.ErrNotPlaying):
		return fmt.Errorf("failed to check playing record: %w", err)
	}

	that.notifier.NotifyInterrupted(userID)

	if err = that.presence.Clear(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear user: %w", err)
	}

	return nil
}

// ApplyMove delegates one move to the user's game. A rejected move turns
// into a notification and leaves all state untouched; an accepted move
// updates both participants and, on a terminal result, tears the session
// down.
func (that *GameManager) ApplyMove(ctx context.Context, userID int64, move string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	game, ok := that.sessions.ByUser(userID)
	if !ok {
		return fmt.Errorf("%w for user %d", apperror.ErrNoActiveGame, userID)
	}

	if err := game.MakeTurn(userID, move); err != nil {
		if isMoveRejection(err) {
			that.notifier.NotifyMoveRejected(userID, err.Error())
			return nil
		}

		return fmt.Errorf("failed to make turn: %w", err)
	}

	board := game.Board.Render()
	for _, player := range game.Players {
		that.notifier.NotifyBoardUpdate(player.ID, board)
	}

	if !game.IsFinished() {
		that.notifier.NotifyYourTurn(game.Turn)
		return nil
	}

	return that.finishGame(ctx, game)
}

// IsPlaying reports whether the user has a playing record. The transport
// uses it to route bare text to ApplyMove only for paired users.
func (that *GameManager) IsPlaying(ctx context.Context, userID int64) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	_, err := that.presence.PartnerOf(ctx, userID)

	return err == nil
}

// DrainReadyUsers is one matchmaking sweep: while at least two users
// wait, pair them, mark both playing, start their game, and notify. The
// first-drawn user plays x and moves first. Work is bounded by the
// queue size at entry; the sweep never blocks on an odd leftover.
func (that *GameManager) DrainReadyUsers(ctx context.Context) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	log := that.logger.With("method", "DrainReadyUsers")

	for {
		count, err := that.presence.WaitingCount(ctx)
		if err != nil {
			return fmt.Errorf("failed to count waiting users: %w", err)
		}

		if count < 2 {
			return nil
		}

		firstID, secondID, err := that.presence.TakeWaitingPair(ctx)
		if err != nil {
			return fmt.Errorf("failed to take waiting pair: %w", err)
		}

		if err = that.presence.MarkPlaying(ctx, firstID, secondID); err != nil {
			return fmt.Errorf("failed to mark user playing: %w", err)
		}

		if err = that.presence.MarkPlaying(ctx, secondID, firstID); err != nil {
			return fmt.Errorf("failed to mark user playing: %w", err)
		}

		game := entity.NewGame(uuid.NewString(), firstID, secondID)
		that.sessions.Put(game)

		that.notifier.NotifyGameStarted(firstID, secondID, game.Board.Render())
		that.notifier.NotifyYourTurn(firstID)

		log.Info("users paired", "game_id", game.ID, "first", firstID, "second", secondID)
	}
}

func (that *GameManager) finishGame(ctx context.Context, game *entity.Game) error {
	log := that.logger.With("method", "finishGame")

	if game.Draw {
		that.notifier.NotifyGameDraw(game.Players[0].ID, game.Players[1].ID)
	} else {
		that.notifier.NotifyGameWon(game.Winner, game.OpponentOf(game.Winner))
	}

	that.sessions.Delete(game.ID)

	for _, player := range game.Players {
		if err := that.presence.Clear(ctx, player.ID); err != nil {
			log.Error("failed to clear player", "user_id", player.ID, "error", err)
		}
	}

	log.Info("game finished", "game_id", game.ID, "winner", game.Winner, "draw", game.Draw)

	return nil
}

func isMoveRejection(err error) bool {
	return errors.Is(err, apperror.ErrNotYourTurn) ||
		errors.Is(err, apperror.ErrBadMoveFormat) ||
		errors.Is(err, apperror.ErrMoveOutOfBounds) ||
		errors.Is(err, apperror.ErrCellOccupied)
}
