package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"skillswap-server/models"
)

// CachedUserStore is a read-through Redis cache in front of another UserStore.
// FindByID is served from "user:<id>" entries. Every write goes to the
// underlying store first, then bumps "user:<id>:version" and drops the entry.
// A miss only fills the entry if the version is unchanged since before the
// backing read, so a read racing a write cannot put an old record back.
// Cache failures are logged and never fail the call.
type CachedUserStore struct {
	next   UserStore
	rdb    redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

var errStaleFill = errors.New("user changed during cache fill")

func NewCachedUserStore(next UserStore, rdb redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *CachedUserStore {
	return &CachedUserStore{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

func userCacheKey(id string) string {
	return "user:" + id
}

func userVersionKey(id string) string {
	return "user:" + id + ":version"
}

func (s *CachedUserStore) Insert(ctx context.Context, user *models.User) error {
	if err := s.next.Insert(ctx, user); err != nil {
		return err
	}
	s.invalidate(ctx, user.ID)
	return nil
}

func (s *CachedUserStore) Replace(ctx context.Context, user *models.User) error {
	if err := s.next.Replace(ctx, user); err != nil {
		return err
	}
	s.invalidate(ctx, user.ID)
	return nil
}

func (s *CachedUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := s.get(ctx, id); ok {
		return user, nil
	}
	version, versionOK := s.version(ctx, id)
	user, err := s.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if versionOK {
		s.fill(ctx, user, version)
	}
	return user, nil
}

// Exists always asks the underlying store.
func (s *CachedUserStore) Exists(ctx context.Context, id string) (bool, error) {
	return s.next.Exists(ctx, id)
}

func (s *CachedUserStore) Find(ctx context.Context, q UserQuery) ([]models.User, error) {
	return s.next.Find(ctx, q)
}

func (s *CachedUserStore) Delete(ctx context.Context, id string) error {
	if err := s.next.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *CachedUserStore) get(ctx context.Context, id string) (*models.User, bool) {
	data, err := s.rdb.Get(ctx, userCacheKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.WarnContext(ctx, "failed to read cached user", "user_id", id, "error", err)
		}
		return nil, false
	}
	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		s.logger.WarnContext(ctx, "failed to unmarshal cached user", "user_id", id, "error", err)
		return nil, false
	}
	return &user, true
}

// version reads the write counter for id. A missing counter reads as "".
func (s *CachedUserStore) version(ctx context.Context, id string) (string, bool) {
	v, err := s.rdb.Get(ctx, userVersionKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return "", true
	}
	if err != nil {
		s.logger.WarnContext(ctx, "failed to read user cache version", "user_id", id, "error", err)
		return "", false
	}
	return v, true
}

// fill caches user unless a write bumped its version after seen was read.
func (s *CachedUserStore) fill(ctx context.Context, user *models.User, seen string) {
	data, err := json.Marshal(user)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to marshal user for cache", "user_id", user.ID, "error", err)
		return
	}
	key, versionKey := userCacheKey(user.ID), userVersionKey(user.ID)
	err = s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, versionKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != seen {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		return err
	}, versionKey)
	switch {
	case err == nil:
	case errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
		s.logger.DebugContext(ctx, "skipped stale user cache fill", "user_id", user.ID)
	default:
		s.logger.WarnContext(ctx, "failed to cache user", "user_id", user.ID, "error", err)
	}
}

// invalidate bumps the version of id and drops its entry. The version key
// outlives any entry filled under an older version.
func (s *CachedUserStore) invalidate(ctx context.Context, id string) {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, userVersionKey(id))
		pipe.Expire(ctx, userVersionKey(id), 2*s.ttl)
		pipe.Del(ctx, userCacheKey(id))
		return nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate cached user", "user_id", id, "error", err)
	}
}
