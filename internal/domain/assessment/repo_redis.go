package assessment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix     = "fieldops:assessment:"
	redisIndexKey      = "fieldops:assessments"
	redisSubjectPrefix = "fieldops:subject:"
)

// RedisRepository keeps records as JSON values that expire ttl after their last write.
// Sorted sets keyed by creation time index them for listing; index entries whose
// record has expired are pruned when a list call runs into them.
type RedisRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRepoRedis returns a Redis-backed repository. A zero ttl keeps records forever.
func NewRepoRedis(client *redis.Client, ttl time.Duration) *RedisRepository {
	return &RedisRepository{client: client, ttl: ttl}
}

func recordKey(id uuid.UUID) string { return redisKeyPrefix + id.String() }

func subjectKey(subjectID string) string { return redisSubjectPrefix + subjectID }

func (r *RedisRepository) Create(ctx context.Context, rec *Record) error {
	rec.Version = 1
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode assessment %s: %w", rec.ID, err)
	}
	key := recordKey(rec.ID)
	member := redis.Z{Score: float64(rec.CreatedAt.UnixMilli()), Member: rec.ID.String()}

	// The record and both indexes are written in one MULTI. EXEC does not roll back a
	// command that fails inside it, so a failed create also removes the record.
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: %s already exists", ErrConflict, rec.ID)
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, data, r.ttl)
			p.ZAdd(ctx, redisIndexKey, member)
			p.ZAdd(ctx, subjectKey(rec.SubjectID), member)
			if r.ttl > 0 {
				p.Expire(ctx, subjectKey(rec.SubjectID), r.ttl)
			}
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("%w: %s already exists", ErrConflict, rec.ID)
	}
	if errors.Is(err, ErrConflict) {
		return err
	}
	if err != nil {
		r.client.Del(context.WithoutCancel(ctx), key)
		return fmt.Errorf("store assessment %s: %w", rec.ID, err)
	}
	return nil
}

func (r *RedisRepository) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	data, err := r.client.Get(ctx, recordKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeRecord(data)
}

func (r *RedisRepository) Update(ctx context.Context, rec *Record) error {
	key := recordKey(rec.ID)
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		cur, err := decodeRecord(data)
		if err != nil {
			return err
		}
		if cur.Version != rec.Version {
			return fmt.Errorf("%w: %s at version %d, have %d", ErrConflict, rec.ID, cur.Version, rec.Version)
		}

		next := *rec
		next.Version++
		out, err := json.Marshal(&next)
		if err != nil {
			return fmt.Errorf("encode assessment %s: %w", rec.ID, err)
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, out, r.ttl)
			if r.ttl > 0 {
				p.Expire(ctx, subjectKey(rec.SubjectID), r.ttl)
			}
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("%w: %s", ErrConflict, rec.ID)
	}
	if err != nil {
		return err
	}
	rec.Version++
	return nil
}

func (r *RedisRepository) List(ctx context.Context, limit, offset int) ([]*Record, int, error) {
	return r.page(ctx, redisIndexKey, limit, offset)
}

func (r *RedisRepository) ListBySubject(ctx context.Context, subjectID string, limit, offset int) ([]*Record, int, error) {
	return r.page(ctx, subjectKey(subjectID), limit, offset)
}

func (r *RedisRepository) page(ctx context.Context, index string, limit, offset int) ([]*Record, int, error) {
	total, err := r.client.ZCard(ctx, index).Result()
	if err != nil {
		return nil, 0, err
	}
	ids, err := r.client.ZRevRange(ctx, index, int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return nil, 0, err
	}
	if len(ids) == 0 {
		return []*Record{}, int(total), nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = redisKeyPrefix + id
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, 0, err
	}

	items := make([]*Record, 0, len(values))
	var expired []interface{}
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			expired = append(expired, ids[i])
			continue
		}
		rec, err := decodeRecord([]byte(s))
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rec)
	}
	if len(expired) > 0 {
		if err := r.client.ZRem(ctx, index, expired...).Err(); err != nil {
			return nil, 0, err
		}
		total -= int64(len(expired))
	}
	return items, int(total), nil
}

func decodeRecord(data []byte) (*Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode assessment record: %w", err)
	}
	return &rec, nil
}
