package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/laporpak/report-service/internal/core/domain"
)

const draftTTL = 7 * 24 * time.Hour

// clearScript drops the form and location and fences the stored seq at the
// last number handed out, so picks numbered before the clear are rejected.
// KEYS[1] form, KEYS[2] location, KEYS[3] stored seq, KEYS[4] seq counter;
// ARGV: ttl ms.
var clearScript = redis.NewScript(`
redis.call('DEL', KEYS[1], KEYS[2])
local issued = redis.call('GET', KEYS[4])
if issued then
	redis.call('SET', KEYS[3], issued, 'PX', ARGV[1])
end
return 1
`)

// saveLocationScript stores a picked location unless a pick with the same or a
// higher number is already recorded. KEYS[1] location, KEYS[2] stored seq;
// ARGV: payload, seq, ttl ms.
var saveLocationScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[2]) or '0')
if current >= tonumber(ARGV[2]) then
	return 0
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

// DraftStore keeps one in-progress report per user: the form fields and the
// current picked location live under separate keys.
type DraftStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewDraftStore(client redis.Cmdable) *DraftStore {
	return &DraftStore{client: client, ttl: draftTTL}
}

func (s *DraftStore) SaveForm(ctx context.Context, userID string, form domain.DraftForm) error {
	payload, err := json.Marshal(form)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(userID, "form"), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("save draft form: %w", err)
	}
	return nil
}

func (s *DraftStore) LoadForm(ctx context.Context, userID string) (*domain.DraftForm, error) {
	var form domain.DraftForm
	ok, err := s.load(ctx, s.key(userID, "form"), &form)
	if err != nil || !ok {
		return nil, err
	}
	return &form, nil
}

// SaveLocation reports false when a location with the same or a higher Seq is
// already stored, or when the draft was cleared after loc.Seq was handed out.
func (s *DraftStore) SaveLocation(ctx context.Context, userID string, loc domain.PickedLocation) (bool, error) {
	payload, err := json.Marshal(loc)
	if err != nil {
		return false, err
	}
	keys := []string{s.key(userID, "location"), s.key(userID, "location_seq")}
	stored, err := saveLocationScript.Run(ctx, s.client, keys, payload, loc.Seq, s.ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("save picked location: %w", err)
	}
	return stored == 1, nil
}

func (s *DraftStore) LoadLocation(ctx context.Context, userID string) (*domain.PickedLocation, error) {
	var loc domain.PickedLocation
	ok, err := s.load(ctx, s.key(userID, "location"), &loc)
	if err != nil || !ok {
		return nil, err
	}
	return &loc, nil
}

// NextSeq hands out increasing pick numbers per user.
func (s *DraftStore) NextSeq(ctx context.Context, userID string) (int64, error) {
	key := s.key(userID, "seq")
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("next location seq: %w", err)
	}
	return incr.Val(), nil
}

// Clear drops the form and the location. Any pick whose number was handed out
// before the clear is refused afterwards.
func (s *DraftStore) Clear(ctx context.Context, userID string) error {
	keys := []string{
		s.key(userID, "form"),
		s.key(userID, "location"),
		s.key(userID, "location_seq"),
		s.key(userID, "seq"),
	}
	if err := clearScript.Run(ctx, s.client, keys, s.ttl.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	return nil
}

func (s *DraftStore) load(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// Keys share the {user} hash tag so the scripts stay in one slot.
func (s *DraftStore) key(userID, part string) string {
	return fmt.Sprintf("%sdraft:{%s}:%s", keyPrefix, userID, part)
}
