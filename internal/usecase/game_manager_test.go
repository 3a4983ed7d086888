package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arenabot/tictactoe-arena/internal/apperror"
	"github.com/arenabot/tictactoe-arena/internal/session"
)

const emptyBoard = "· 1 2 3\n" +
	"1 _ _ _\n" +
	"2 _ _ _\n" +
	"3 _ _ _"

// fakePresence is an in-memory stand-in for the redis presence records.
type fakePresence struct {
	waiting []int64
	playing map[int64]int64
}

func newFakePresence() *fakePresence {
	return &fakePresence{playing: make(map[int64]int64)}
}

func (that *fakePresence) MarkWaiting(_ context.Context, userID int64) error {
	if !slices.Contains(that.waiting, userID) {
		that.waiting = append(that.waiting, userID)
	}
	return nil
}

func (that *fakePresence) MarkPlaying(_ context.Context, userID, partnerID int64) error {
	that.waiting = slices.DeleteFunc(that.waiting, func(id int64) bool { return id == userID })
	that.playing[userID] = partnerID
	return nil
}

func (that *fakePresence) Clear(_ context.Context, userID int64) error {
	that.waiting = slices.DeleteFunc(that.waiting, func(id int64) bool { return id == userID })
	delete(that.playing, userID)
	return nil
}

func (that *fakePresence) WaitingCount(_ context.Context) (int64, error) {
	return int64(len(that.waiting)), nil
}

func (that *fakePresence) WaitingUsers(_ context.Context) ([]int64, error) {
	return slices.Clone(that.waiting), nil
}

func (that *fakePresence) PartnerOf(_ context.Context, userID int64) (int64, error) {
	partnerID, ok := that.playing[userID]
	if !ok {
		return 0, apperror.ErrNotPlaying
	}
	return partnerID, nil
}

func (that *fakePresence) TakeWaitingPair(_ context.Context) (int64, int64, error) {
	firstID, secondID := that.waiting[0], that.waiting[1]
	that.waiting = that.waiting[2:]
	return firstID, secondID, nil
}

// fakeNotifier records events as compact strings so tests can assert on
// what was sent and in which order.
type fakeNotifier struct {
	events []string
	boards map[int64]string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{boards: make(map[int64]string)}
}

func (that *fakeNotifier) record(format string, args ...any) {
	that.events = append(that.events, fmt.Sprintf(format, args...))
}

func (that *fakeNotifier) NotifyQueued(userID int64)        { that.record("queued:%d", userID) }
func (that *fakeNotifier) NotifyAlreadyQueued(userID int64) { that.record("already_queued:%d", userID) }
func (that *fakeNotifier) NotifyYourTurn(userID int64)      { that.record("your_turn:%d", userID) }
func (that *fakeNotifier) NotifyInterrupted(userID int64)   { that.record("interrupted:%d", userID) }

func (that *fakeNotifier) NotifyAlreadyPlaying(userID, partnerID int64) {
	that.record("already_playing:%d:%d", userID, partnerID)
}

func (that *fakeNotifier) NotifyGameStarted(firstID, secondID int64, board string) {
	that.record("started:%d:%d", firstID, secondID)
	that.boards[firstID] = board
	that.boards[secondID] = board
}

func (that *fakeNotifier) NotifyBoardUpdate(userID int64, board string) {
	that.record("board:%d", userID)
	that.boards[userID] = board
}

func (that *fakeNotifier) NotifyMoveRejected(userID int64, reason string) {
	that.record("rejected:%d:%s", userID, reason)
}

func (that *fakeNotifier) NotifyGameWon(winnerID, loserID int64) {
	that.record("won:%d", winnerID)
	that.record("lost:%d", loserID)
}

func (that *fakeNotifier) NotifyGameDraw(firstID, secondID int64) {
	that.record("draw:%d", firstID)
	that.record("draw:%d", secondID)
}

func (that *fakeNotifier) NotifyInterruptedByOpponent(partnerID int64) {
	that.record("interrupted_by_opponent:%d", partnerID)
}

func newTestManager() (*GameManager, *fakePresence, *session.Store, *fakeNotifier) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	presence := newFakePresence()
	sessions := session.NewStore()
	notifier := newFakeNotifier()

	return NewGameManager(logger, presence, sessions, notifier), presence, sessions, notifier
}

// pairUsers registers both users and runs one matchmaking sweep.
func pairUsers(t *testing.T, manager *GameManager, firstID, secondID int64) {
	t.Helper()

	ctx := context.Background()
	require.NoError(t, manager.RegisterUser(ctx, firstID))
	require.NoError(t, manager.RegisterUser(ctx, secondID))
	require.NoError(t, manager.DrainReadyUsers(ctx))
}

func TestGameManager_RegisterUser(t *testing.T) {
	ctx := context.Background()

	t.Run("New user is queued", func(t *testing.T) {
		// Given: an empty system
		manager, presence, _, notifier := newTestManager()

		// When: a user registers
		require.NoError(t, manager.RegisterUser(ctx, 1))

		// Then: the user waits and is told so
		assert.Equal(t, []int64{1}, presence.waiting)
		assert.Equal(t, []string{"queued:1"}, notifier.events)
	})

	t.Run("Waiting user is told they are already queued", func(t *testing.T) {
		// Given: a user already in the queue
		manager, presence, _, notifier := newTestManager()
		require.NoError(t, manager.RegisterUser(ctx, 1))

		// When: the same user registers again
		require.NoError(t, manager.RegisterUser(ctx, 1))

		// Then: the queue is unchanged and only a notice goes out
		assert.Equal(t, []int64{1}, presence.waiting)
		assert.Contains(t, notifier.events, "already_queued:1")
	})

	t.Run("Playing user is told who they are paired with", func(t *testing.T) {
		// Given: a paired user
		manager, presence, _, notifier := newTestManager()
		pairUsers(t, manager, 1, 2)

		// When: the paired user registers again
		require.NoError(t, manager.RegisterUser(ctx, 1))

		// Then: no state changes and the partner is named
		assert.Empty(t, presence.waiting)
		assert.Contains(t, notifier.events, "already_playing:1:2")
	})
}

func TestGameManager_DrainReadyUsers(t *testing.T) {
	ctx := context.Background()

	t.Run("Two users become a game, x moves first", func(t *testing.T) {
		// Given: two registered users (scenario 1)
		manager, presence, sessions, notifier := newTestManager()

		// When: the matchmaker sweeps
		pairUsers(t, manager, 1, 2)

		// Then: both get identical initial boards and x gets the turn prompt
		assert.Equal(t, emptyBoard, notifier.boards[1])
		assert.Equal(t, notifier.boards[1], notifier.boards[2])
		assert.Contains(t, notifier.events, "started:1:2")
		assert.Contains(t, notifier.events, "your_turn:1")
		assert.NotContains(t, notifier.events, "your_turn:2")

		// Then: both users are reciprocally playing and one session is live
		assert.Equal(t, int64(2), presence.playing[1])
		assert.Equal(t, int64(1), presence.playing[2])
		assert.Empty(t, presence.waiting)
		assert.Equal(t, 1, sessions.Count())
	})

	t.Run("Odd queue leaves one user waiting", func(t *testing.T) {
		// Given: three registered users
		manager, presence, sessions, _ := newTestManager()
		require.NoError(t, manager.RegisterUser(ctx, 1))
		require.NoError(t, manager.RegisterUser(ctx, 2))
		require.NoError(t, manager.RegisterUser(ctx, 3))

		// When: the matchmaker sweeps
		require.NoError(t, manager.DrainReadyUsers(ctx))

		// Then: one pair is formed and the third user keeps waiting
		assert.Equal(t, 1, sessions.Count())
		assert.Equal(t, []int64{3}, presence.waiting)
	})

	t.Run("Sweep with an empty queue does nothing", func(t *testing.T) {
		// Given: nobody waiting
		manager, _, sessions, notifier := newTestManager()

		// When: the matchmaker sweeps
		require.NoError(t, manager.DrainReadyUsers(ctx))

		// Then: no sessions and no notifications
		assert.Equal(t, 0, sessions.Count())
		assert.Empty(t, notifier.events)
	})

	t.Run("Sweep is idempotent for already paired users", func(t *testing.T) {
		// Given: a formed pair
		manager, _, sessions, notifier := newTestManager()
		pairUsers(t, manager, 1, 2)
		eventsBefore := len(notifier.events)

		// When: the matchmaker sweeps again
		require.NoError(t, manager.DrainReadyUsers(ctx))

		// Then: nothing new happens
		assert.Equal(t, 1, sessions.Count())
		assert.Len(t, notifier.events, eventsBefore)
	})
}

func TestGameManager_ApplyMove(t *testing.T) {
	ctx := context.Background()

	t.Run("Accepted move updates both players and passes the turn", func(t *testing.T) {
		// Given: a live game (scenario 2)
		manager, _, _, notifier := newTestManager()
		pairUsers(t, manager, 1, 2)

		// When: x plays the top-left cell
		require.NoError(t, manager.ApplyMove(ctx, 1, "11"))

		// Then: both players see the same board with x at row 1, col 1
		expected := "· 1 2 3\n" +
			"1 x _ _\n" +
			"2 _ _ _\n" +
			"3 _ _ _"
		assert.Equal(t, expected, notifier.boards[1])
		assert.Equal(t, notifier.boards[1], notifier.boards[2])

		// Then: the opponent is prompted to move
		assert.Equal(t, "your_turn:2", notifier.events[len(notifier.events)-1])
	})

	t.Run("Rejected move notifies only the mover and changes nothing", func(t *testing.T) {
		// Given: a live game
		manager, presence, sessions, notifier := newTestManager()
		pairUsers(t, manager, 1, 2)

		// When: the o player tries to move out of turn
		require.NoError(t, manager.ApplyMove(ctx, 2, "11"))

		// Then: the mover is told why, and the session and presence are intact
		assert.Contains(t, notifier.events, "rejected:2:"+apperror.ErrNotYourTurn.Error())
		assert.Equal(t, 1, sessions.Count())
		assert.Equal(t, int64(2), presence.playing[1])
	})

	t.Run("Move without a session fails", func(t *testing.T) {
		// Given: an empty system
		manager, _, _, _ := newTestManager()

		// When: an unpaired user sends a move
		err := manager.ApplyMove(ctx, 1, "11")

		// Then: the lookup fails with ErrNoActiveGame
		assert.ErrorIs(t, err, apperror.ErrNoActiveGame)
	})

	t.Run("Winning move finishes and tears down the game", func(t *testing.T) {
		// Given: a live game played to x's top-row win (scenario 3)
		manager, presence, sessions, notifier := newTestManager()
		pairUsers(t, manager, 1, 2)

		moves := []struct {
			userID int64
			move   string
		}{
			{1, "11"}, {2, "22"}, {1, "12"}, {2, "32"},
		}
		for _, m := range moves {
			require.NoError(t, manager.ApplyMove(ctx, m.userID, m.move))
		}

		// When: x completes the top row
		require.NoError(t, manager.ApplyMove(ctx, 1, "13"))

		// Then: win and loss are personalized
		assert.Contains(t, notifier.events, "won:1")
		assert.Contains(t, notifier.events, "lost:2")

		// Then: presence is cleared and the session is gone
		assert.Empty(t, presence.playing)
		assert.Empty(t, presence.waiting)
		assert.Equal(t, 0, sessions.Count())

		// Then: further moves by either user fail to find a session
		assert.ErrorIs(t, manager.ApplyMove(ctx, 1, "21"), apperror.ErrNoActiveGame)
		assert.ErrorIs(t, manager.ApplyMove(ctx, 2, "21"), apperror.ErrNoActiveGame)
	})

	t.Run("Full board without a line is announced as a draw", func(t *testing.T) {
		// Given: a live game filled with no three-in-a-row (scenario 4)
		manager, presence, sessions, notifier := newTestManager()
		pairUsers(t, manager, 1, 2)

		moves := []struct {
			userID int64
			move   string
		}{
			{1, "11"}, {2, "12"}, {1, "13"},
			{2, "22"}, {1, "21"}, {2, "23"},
			{1, "32"}, {2, "31"}, {1, "33"},
		}

		// When: the board fills up
		for _, m := range moves {
			require.NoError(t, manager.ApplyMove(ctx, m.userID, m.move))
		}

		// Then: both users get the draw notice and are cleared
		assert.Contains(t, notifier.events, "draw:1")
		assert.Contains(t, notifier.events, "draw:2")
		assert.Empty(t, presence.playing)
		assert.Equal(t, 0, sessions.Count())
	})
}

func TestGameManager_Interrupt(t *testing.T) {
	ctx := context.Background()

	t.Run("Interrupting a live game clears both sides", func(t *testing.T) {
		// Given: a live game (scenario 5)
		manager, presence, sessions, notifier := newTestManager()
		pairUsers(t, manager, 1, 2)

		// When: one participant interrupts
		require.NoError(t, manager.Interrupt(ctx, 1))

		// Then: both are notified with their own message
		assert.Contains(t, notifier.events, "interrupted:1")
		assert.Contains(t, notifier.events, "interrupted_by_opponent:2")

		// Then: presence is cleared on both sides and the session is destroyed
		assert.Empty(t, presence.playing)
		assert.Equal(t, 0, sessions.Count())
	})

	t.Run("Interrupting while waiting only leaves the queue", func(t *testing.T) {
		// Given: a waiting user
		manager, presence, _, notifier := newTestManager()
		require.NoError(t, manager.RegisterUser(ctx, 1))

		// When: the user interrupts
		require.NoError(t, manager.Interrupt(ctx, 1))

		// Then: the queue entry is gone and no third party is notified
		assert.Empty(t, presence.waiting)
		assert.Contains(t, notifier.events, "interrupted:1")
		assert.NotContains(t, notifier.events, "interrupted_by_opponent:1")
	})
}

func TestGameManager_IsPlaying(t *testing.T) {
	ctx := context.Background()

	// Given: one paired pair and one stranger
	manager, _, _, _ := newTestManager()
	pairUsers(t, manager, 1, 2)

	// Then: both participants are playing, the stranger is not
	assert.True(t, manager.IsPlaying(ctx, 1))
	assert.True(t, manager.IsPlaying(ctx, 2))
	assert.False(t, manager.IsPlaying(ctx, 3))
}
