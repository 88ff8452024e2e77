package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dedupTTL = 24 * time.Hour
	// claimTTL bounds how long a crashed submission can hold its key.
	claimTTL = 5 * time.Minute

	claimPending = "pending"
)

// releaseScript deletes a claim only while it is still pending.
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// DedupChecker tracks submission idempotency keys.
// Key format: laporpak:idem:<user_id>:<key>, value "pending" or the report id.
type DedupChecker struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewDedupChecker creates a DedupChecker wrapping the given Redis client.
func NewDedupChecker(client redis.Cmdable) *DedupChecker {
	return &DedupChecker{client: client, ttl: dedupTTL}
}

// Claim reserves key with SETNX. A taken key yields its report id, or "" while
// the submission holding it is still running.
func (d *DedupChecker) Claim(ctx context.Context, userID, key string) (bool, string, error) {
	k := d.key(userID, key)
	ok, err := d.client.SetNX(ctx, k, claimPending, claimTTL).Result()
	if err != nil {
		return false, "", fmt.Errorf("dedup claim: %w", err)
	}
	if ok {
		return true, "", nil
	}

	id, err := d.client.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) || id == claimPending {
		return false, "", nil
	}
	if err != nil {
		return false, "", fmt.Errorf("dedup claim: %w", err)
	}
	return false, id, nil
}

// Complete records the report a claimed key produced for the full TTL.
func (d *DedupChecker) Complete(ctx context.Context, userID, key, reportID string) error {
	if err := d.client.Set(ctx, d.key(userID, key), reportID, d.ttl).Err(); err != nil {
		return fmt.Errorf("dedup complete: %w", err)
	}
	return nil
}

// Release drops a pending claim so the client can retry with the same key.
func (d *DedupChecker) Release(ctx context.Context, userID, key string) error {
	if err := releaseScript.Run(ctx, d.client, []string{d.key(userID, key)}, claimPending).Err(); err != nil {
		return fmt.Errorf("dedup release: %w", err)
	}
	return nil
}

func (d *DedupChecker) key(userID, key string) string {
	return fmt.Sprintf("%sidem:%s:%s", keyPrefix, userID, key)
}
