package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/serroba/shortlink/internal/shortener"
)

const (
	redisCodePrefix   = "link:code:"
	redisHandlePrefix = "link:handle:"
	redisIndexKey     = "links:index"
	redisSeqKey       = "links:seq"
)

// RedisStore is a Redis implementation of shortener.Repository.
//
// Each link is a JSON record under link:code:{code}. A handle key points back
// at the code, and the links:index sorted set keeps insertion order.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

type redisRecord struct {
	Handle    string    `json:"handle"`
	Code      string    `json:"code"`
	LongURL   string    `json:"long_url"`
	CreatedAt time.Time `json:"created_at"`
}

// NewRedisStore creates a new Redis-backed link store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

func (r *RedisStore) Create(ctx context.Context, code shortener.Code, longURL string) (*shortener.ShortLink, error) {
	rec := redisRecord{
		Handle:    uuid.NewString(),
		Code:      string(code),
		LongURL:   longURL,
		CreatedAt: r.now().UTC(),
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode short link: %w", err)
	}

	codeKey := redisCodePrefix + rec.Code

	// SETNX is the uniqueness guard for codes.
	ok, err := r.client.SetNX(ctx, codeKey, payload, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("reserve code: %w", err)
	}

	if !ok {
		return nil, shortener.ErrDuplicateKey
	}

	seq, err := r.client.Incr(ctx, redisSeqKey).Result()
	if err != nil {
		r.release(codeKey)

		return nil, fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, redisHandlePrefix+rec.Handle, rec.Code, 0)
		pipe.ZAdd(ctx, redisIndexKey, redis.Z{Score: float64(seq), Member: rec.Code})

		return nil
	})
	if err != nil {
		r.release(codeKey)

		return nil, fmt.Errorf("index short link: %w", err)
	}

	return rec.toLink(), nil
}

func (r *RedisStore) FindByCode(ctx context.Context, code shortener.Code) (*shortener.ShortLink, error) {
	payload, err := r.client.Get(ctx, redisCodePrefix+string(code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	return decodeRecord(payload)
}

func (r *RedisStore) List(ctx context.Context) ([]*shortener.ShortLink, error) {
	codes, err := r.client.ZRevRange(ctx, redisIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}

	links := make([]*shortener.ShortLink, 0, len(codes))
	if len(codes) == 0 {
		return links, nil
	}

	keys := make([]string, len(codes))
	for i, code := range codes {
		keys[i] = redisCodePrefix + code
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("read short links: %w", err)
	}

	for _, v := range values {
		// A concurrent delete may have removed the record after the index read.
		s, ok := v.(string)
		if !ok {
			continue
		}

		link, err := decodeRecord([]byte(s))
		if err != nil {
			return nil, err
		}

		links = append(links, link)
	}

	return links, nil
}

// DeleteByHandle removes the handle pointer, the record and its index entry
// in one transaction, so a failed delete leaves the link fully intact.
func (r *RedisStore) DeleteByHandle(ctx context.Context, handle shortener.Handle) (*shortener.ShortLink, error) {
	handleKey := redisHandlePrefix + string(handle)

	var link *shortener.ShortLink

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		code, err := tx.Get(ctx, handleKey).Result()
		if err != nil {
			return err
		}

		codeKey := redisCodePrefix + code

		payload, err := tx.Get(ctx, codeKey).Bytes()
		if err != nil {
			return err
		}

		if link, err = decodeRecord(payload); err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, handleKey, codeKey)
			pipe.ZRem(ctx, redisIndexKey, code)

			return nil
		})

		return err
	}, handleKey)

	switch {
	case err == nil:
		return link, nil
	case errors.Is(err, redis.Nil), errors.Is(err, redis.TxFailedErr):
		// TxFailedErr means a concurrent delete removed the handle first.
		return nil, shortener.ErrNotFound
	default:
		return nil, fmt.Errorf("delete short link: %w", err)
	}
}

// Ping checks connectivity to Redis.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Shutdown closes the Redis client.
func (r *RedisStore) Shutdown() error {
	return r.client.Close()
}

// release frees a reserved code after a failed write.
func (r *RedisStore) release(codeKey string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_ = r.client.Del(ctx, codeKey).Err()
}

func decodeRecord(payload []byte) (*shortener.ShortLink, error) {
	var rec redisRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("decode short link: %w", err)
	}

	return rec.toLink(), nil
}

func (rec redisRecord) toLink() *shortener.ShortLink {
	return &shortener.ShortLink{
		Handle:    shortener.Handle(rec.Handle),
		Code:      shortener.Code(rec.Code),
		LongURL:   rec.LongURL,
		CreatedAt: rec.CreatedAt.UTC(),
	}
}
