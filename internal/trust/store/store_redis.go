package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/redis/go-redis/v9"

	"trustgraph/internal/trust/models"
	"trustgraph/pkg/platform/sentinel"
)

const (
	redisRecordPrefix      = "trust:record:"
	redisSubjectsKey       = "trust:subjects"
	redisEndorsementPrefix = "trust:endorsement:"

	// maxUpdateRetries bounds optimistic retries when a WATCHed key changes.
	maxUpdateRetries = 100
)

// RedisStore keeps records as JSON documents in Redis. Updates use
// WATCH/MULTI so concurrent writers to one subject never lose an update.
type RedisStore struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed trust store.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func recordKey(subject models.DID) string { return redisRecordPrefix + string(subject) }
func endorsementKey(id string) string     { return redisEndorsementPrefix + id }

func (s *RedisStore) Get(ctx context.Context, subject models.DID) (*models.TrustRecord, error) {
	return getRecord(ctx, s.client, subject)
}

type redisGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getRecord(ctx context.Context, c redisGetter, subject models.DID) (*models.TrustRecord, error) {
	data, err := c.Get(ctx, recordKey(subject)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get trust record: %w", err)
	}
	return decodeRecord(data)
}

func decodeRecord(data []byte) (*models.TrustRecord, error) {
	var rec models.TrustRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode trust record: %w", err)
	}
	if rec.Endorsements == nil {
		rec.Endorsements = []models.Endorsement{}
	}
	return &rec, nil
}

func (s *RedisStore) Put(ctx context.Context, rec *models.TrustRecord) error {
	if rec == nil || rec.Subject.IsZero() {
		return sentinel.ErrInvalidInput
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode trust record: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, recordKey(rec.Subject), data, 0)
		pipe.SAdd(ctx, redisSubjectsKey, string(rec.Subject))
		return nil
	})
	if err != nil {
		return fmt.Errorf("put trust record: %w", err)
	}
	return nil
}

func (s *RedisStore) Update(ctx context.Context, subject models.DID, fn UpdateFunc) (*models.TrustRecord, error) {
	key := recordKey(subject)
	var updated *models.TrustRecord

	txf := func(tx *redis.Tx) error {
		rec, err := getRecord(ctx, tx, subject)
		if err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode trust record: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		if err != nil {
			return err
		}
		updated = rec
		return nil
	}

	for range maxUpdateRetries {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, fmt.Errorf("update trust record %s: %w", subject, sentinel.ErrConflict)
}

func (s *RedisStore) SaveEndorsement(ctx context.Context, e models.Endorsement) error {
	if e.ID == "" {
		return sentinel.ErrInvalidInput
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode endorsement: %w", err)
	}
	if err := s.client.Set(ctx, endorsementKey(e.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("save endorsement: %w", err)
	}
	return nil
}

func (s *RedisStore) GetEndorsement(ctx context.Context, id string) (*models.Endorsement, error) {
	data, err := s.client.Get(ctx, endorsementKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get endorsement: %w", err)
	}
	var e models.Endorsement
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decode endorsement: %w", err)
	}
	return &e, nil
}

func (s *RedisStore) List(ctx context.Context) ([]*models.TrustRecord, error) {
	subjects, err := s.client.SMembers(ctx, redisSubjectsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list trust subjects: %w", err)
	}
	if len(subjects) == 0 {
		return []*models.TrustRecord{}, nil
	}
	slices.Sort(subjects)

	keys := make([]string, len(subjects))
	for i, subj := range subjects {
		keys[i] = recordKey(models.DID(subj))
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load trust records: %w", err)
	}

	out := make([]*models.TrustRecord, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		rec, err := decodeRecord([]byte(raw))
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	slices.SortFunc(out, func(a, b *models.TrustRecord) int {
		return strings.Compare(string(a.Subject), string(b.Subject))
	})
	return out, nil
}

func (s *RedisStore) Count(ctx context.Context) (int, error) {
	n, err := s.client.SCard(ctx, redisSubjectsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("count trust subjects: %w", err)
	}
	return int(n), nil
}
