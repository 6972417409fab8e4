package presence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// StatusStore mirrors online/offline status into Redis so sibling services
// can answer "is this user online" without a connection to this process.
// Strictly best-effort: failures are logged and never affect delivery.
type StatusStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	log    *zap.SugaredLogger
}

func NewStatusStore(rdb *redis.Client, prefix string, log *zap.SugaredLogger) *StatusStore {
	return &StatusStore{rdb: rdb, prefix: prefix, ttl: 24 * time.Hour, log: log}
}

func (s *StatusStore) key(userID string) string {
	return s.prefix + ":" + userID
}

// SetOnline marks the user online. Nil-receiver safe so the registry works
// without Redis configured.
func (s *StatusStore) SetOnline(ctx context.Context, userID string) {
	s.set(ctx, userID, "online")
}

// SetOffline marks the user offline.
func (s *StatusStore) SetOffline(ctx context.Context, userID string) {
	s.set(ctx, userID, "offline")
}

func (s *StatusStore) set(ctx context.Context, userID, status string) {
	if s == nil || s.rdb == nil {
		return
	}
	payload, _ := json.Marshal(map[string]any{
		"status":    status,
		"last_seen": time.Now().Unix(),
	})
	if err := s.rdb.Set(ctx, s.key(userID), payload, s.ttl).Err(); err != nil {
		s.log.Warnf("presence mirror %s for user %s failed: %v", status, userID, err)
	}
}
