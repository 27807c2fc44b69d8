package common

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/DelphiTri/website/internal/constants"
)

// IPHistory exposes the chat service's record of which IPs a user connected from
type IPHistory interface {
	UserIPs(ctx context.Context, userID int64) ([]string, error)
	// LinkedUserIDs returns other users seen on any of userID's IPs
	LinkedUserIDs(ctx context.Context, userID int64) ([]int64, error)
}

// RedisIPHistory reads CHAT:userips-<id> (sorted set, newest highest) and
// CHAT:ipusers-<ip> (set of user ids).
type RedisIPHistory struct {
	client *redis.Client
}

func NewRedisIPHistory(client *redis.Client) *RedisIPHistory {
	return &RedisIPHistory{client: client}
}

func (h *RedisIPHistory) UserIPs(ctx context.Context, userID int64) ([]string, error) {
	ips, err := h.client.ZRevRange(ctx, constants.RedisKeyUserIPs+strconv.FormatInt(userID, 10), 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to read ips for user %d: %w", userID, err)
	}
	if ips == nil {
		ips = []string{}
	}
	return ips, nil
}

func (h *RedisIPHistory) LinkedUserIDs(ctx context.Context, userID int64) ([]int64, error) {
	ips, err := h.UserIPs(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := map[int64]struct{}{}
	for _, ip := range ips {
		members, err := h.client.SMembers(ctx, constants.RedisKeyIPUsers+ip).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("failed to read users for ip %s: %w", ip, err)
		}
		for _, m := range members {
			id, err := strconv.ParseInt(m, 10, 64)
			if err != nil || id == userID {
				continue
			}
			seen[id] = struct{}{}
		}
	}

	ids := make([]int64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// NoopIPHistory is used when no Redis is configured
type NoopIPHistory struct{}

func (NoopIPHistory) UserIPs(context.Context, int64) ([]string, error) {
	return []string{}, nil
}

func (NoopIPHistory) LinkedUserIDs(context.Context, int64) ([]int64, error) {
	return []int64{}, nil
}
