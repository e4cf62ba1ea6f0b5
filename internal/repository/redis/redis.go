package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	apperrors "github.com/MoNabawy-2003/al-safaa-hospital/pkg/errors"
	"github.com/MoNabawy-2003/al-safaa-hospital/pkg/metrics"
)

// Storage keys, one JSON document per collection.
const (
	keyAppointments = "hospital:appointments"
	keyUsers        = "hospital:users"
	keyMessages     = "hospital:messages"
)

type Config struct {
	URL          string
	MaxRetries   int
	RetryBackoff time.Duration
	PoolSize     int
	MinIdleConns int
}

func NewClient(cfg Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.MaxRetries = cfg.MaxRetries
	opts.MinRetryBackoff = cfg.RetryBackoff
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// Store reads and writes whole JSON documents under fixed keys. It mirrors
// the original localStorage surface: no partial updates, no merging.
type Store struct {
	client  *redis.Client
	logger  *zerolog.Logger
	metrics *metrics.Metrics
}

func NewStore(client *redis.Client, logger *zerolog.Logger, m *metrics.Metrics) *Store {
	return &Store{
		client:  client,
		logger:  logger,
		metrics: m,
	}
}

// loadRaw fetches the document under key. A missing key yields nil bytes.
// Transport failures surface as PersistenceError.
func (s *Store) loadRaw(ctx context.Context, key, collection string) ([]byte, error) {
	start := time.Now()
	raw, err := s.client.Get(ctx, key).Bytes()
	s.observe("load", collection, start)

	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		s.fail("load", collection)
		return nil, apperrors.NewPersistence("load", err)
	}
	return raw, nil
}

// decodeDoc unmarshals a stored document. A corrupt payload is logged and
// read as an empty collection; partially decoded records are discarded, never
// handed back.
func decodeDoc[T any](s *Store, key string, raw []byte) []T {
	if len(raw) == 0 {
		return nil
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("corrupt document in store, treating as empty")
		return nil
	}
	return out
}

// save overwrites the document under key with v.
func (s *Store) save(ctx context.Context, key, collection string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		s.fail("save", collection)
		return apperrors.NewPersistence("save", err)
	}

	start := time.Now()
	err = s.client.Set(ctx, key, payload, 0).Err()
	s.observe("save", collection, start)
	if err != nil {
		s.fail("save", collection)
		return apperrors.NewPersistence("save", err)
	}
	return nil
}

func (s *Store) observe(op, collection string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.StoreOperations.WithLabelValues(op, collection).Inc()
	s.metrics.StoreLatency.WithLabelValues(op, collection).Observe(time.Since(start).Seconds())
}

func (s *Store) fail(op, collection string) {
	if s.metrics == nil {
		return
	}
	s.metrics.StoreFailures.WithLabelValues(op, collection).Inc()
}
