package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arenabot/tictactoe-arena/internal/apperror"
)

// Pairing order for TakeWaitingPair.
const (
	PairingFIFO   = "fifo"
	PairingRandom = "random"
)

const (
	// waitingQueueKey is a sorted set of waiting user ids scored by
	// enqueue time, so FIFO selection is a single ZPOPMIN.
	waitingQueueKey = "players:waiting"

	playingKeyPattern = "player:*:playing"
)

var ErrNotEnoughWaiting = errors.New("not enough waiting users to pair")

// PresenceRepository records which users are waiting for an opponent and
// which are paired, keyed by the opaque chat user id. Records survive a
// process restart; live game boards do not.
type PresenceRepository interface {
	MarkWaiting(ctx context.Context, userID int64) error
	MarkPlaying(ctx context.Context, userID, partnerID int64) error
	Clear(ctx context.Context, userID int64) error
	WaitingCount(ctx context.Context) (int64, error)
	WaitingUsers(ctx context.Context) ([]int64, error)
	PlayingUsers(ctx context.Context) ([]int64, error)
	PartnerOf(ctx context.Context, userID int64) (int64, error)
	TakeWaitingPair(ctx context.Context) (int64, int64, error)
}

type dbPresence struct {
	client *redis.Client
	order  string
}

func NewPresenceRepository(client *redis.Client, order string) PresenceRepository {
	return &dbPresence{
		client: client,
		order:  order,
	}
}

func playingKey(userID int64) string {
	return fmt.Sprintf("player:%d:playing", userID)
}

// MarkWaiting enqueues the user. Re-adding an already waiting user only
// refreshes the enqueue score; the session controller prevents that.
func (that *dbPresence) MarkWaiting(ctx context.Context, userID int64) error {
	member := redis.Z{
		Score:  float64(time.Now().UnixNano()),
		Member: userID,
	}

	if err := that.client.ZAdd(ctx, waitingQueueKey, member).Err(); err != nil {
		return fmt.Errorf("failed to enqueue user: %w", err)
	}

	return nil
}

// MarkPlaying drops any waiting record for the user and records the
// partner reference.
func (that *dbPresence) MarkPlaying(ctx context.Context, userID, partnerID int64) error {
	if err := that.client.ZRem(ctx, waitingQueueKey, userID).Err(); err != nil {
		return fmt.Errorf("failed to dequeue user: %w", err)
	}

	if err := that.client.Set(ctx, playingKey(userID), partnerID, 0).Err(); err != nil {
		return fmt.Errorf("failed to set playing record: %w", err)
	}

	return nil
}

// Clear removes all presence records for the user.
func (that *dbPresence) Clear(ctx context.Context, userID int64) error {
	if err := that.client.ZRem(ctx, waitingQueueKey, userID).Err(); err != nil {
		return fmt.Errorf("failed to dequeue user: %w", err)
	}

	if err := that.client.Del(ctx, playingKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete playing record: %w", err)
	}

	return nil
}

func (that *dbPresence) WaitingCount(ctx context.Context) (int64, error) {
	count, err := that.client.ZCard(ctx, waitingQueueKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count waiting users: %w", err)
	}

	return count, nil
}

func (that *dbPresence) WaitingUsers(ctx context.Context) ([]int64, error) {
	members, err := that.client.ZRange(ctx, waitingQueueKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list waiting users: %w", err)
	}

	return parseUserIDs(members)
}

func (that *dbPresence) PlayingUsers(ctx context.Context) ([]int64, error) {
	keys, err := that.client.Keys(ctx, playingKeyPattern).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list playing records: %w", err)
	}

	users := make([]int64, 0, len(keys))
	for _, key := range keys {
		parts := strings.Split(key, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("unexpected playing record key: %q", key)
		}

		userID, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse playing record key %q: %w", key, err)
		}

		users = append(users, userID)
	}

	return users, nil
}

func (that *dbPresence) PartnerOf(ctx context.Context, userID int64) (int64, error) {
	partnerID, err := that.client.Get(ctx, playingKey(userID)).Int64()

	if errors.Is(err, redis.Nil) {
		return 0, apperror.ErrNotPlaying
	}

	if err != nil {
		return 0, fmt.Errorf("failed to get playing record: %w", err)
	}

	return partnerID, nil
}

// TakeWaitingPair removes and returns two waiting users. With FIFO order
// the two longest-waiting users are popped atomically; with random order
// two arbitrary members are drawn and removed.
func (that *dbPresence) TakeWaitingPair(ctx context.Context) (int64, int64, error) {
	if that.order == PairingRandom {
		return that.takeRandomPair(ctx)
	}

	popped, err := that.client.ZPopMin(ctx, waitingQueueKey, 2).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to pop waiting users: %w", err)
	}

	if len(popped) < 2 {
		for _, member := range popped {
			_ = that.client.ZAdd(ctx, waitingQueueKey, member).Err()
		}

		return 0, 0, ErrNotEnoughWaiting
	}

	firstID, err := parseMember(popped[0].Member)
	if err != nil {
		return 0, 0, err
	}

	secondID, err := parseMember(popped[1].Member)
	if err != nil {
		return 0, 0, err
	}

	return firstID, secondID, nil
}

func (that *dbPresence) takeRandomPair(ctx context.Context) (int64, int64, error) {
	members, err := that.client.ZRandMember(ctx, waitingQueueKey, 2).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to draw waiting users: %w", err)
	}

	if len(members) < 2 {
		return 0, 0, ErrNotEnoughWaiting
	}

	users, err := parseUserIDs(members)
	if err != nil {
		return 0, 0, err
	}

	if err = that.client.ZRem(ctx, waitingQueueKey, members[0], members[1]).Err(); err != nil {
		return 0, 0, fmt.Errorf("failed to dequeue drawn users: %w", err)
	}

	return users[0], users[1], nil
}

func parseUserIDs(members []string) ([]int64, error) {
	users := make([]int64, 0, len(members))
	for _, member := range members {
		userID, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse waiting user id %q: %w", member, err)
		}

		users = append(users, userID)
	}

	return users, nil
}

func parseMember(member interface{}) (int64, error) {
	raw, ok := member.(string)
	if !ok {
		return 0, fmt.Errorf("unexpected waiting queue member type %T", member)
	}

	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse waiting user id %q: %w", raw, err)
	}

	return userID, nil
}
