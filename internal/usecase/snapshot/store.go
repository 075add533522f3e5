package snapshot

import (
	"context"
	"encoding/json"

	snapshotv1 "github.com/lomash27/Auro/internal/domain/snapshot/v1"
	"github.com/lomash27/Auro/pkg/errors"
	"github.com/lomash27/Auro/pkg/logger"
	"github.com/lomash27/Auro/pkg/redis"
)

// Store persists book snapshots in Redis under a single key.
type Store struct {
	key         string
	logger      *logger.Logger
	redisclient redis.Client
}

// NewStore creates a snapshot store writing to the given Redis key.
func NewStore(redisclient redis.Client, key string, log *logger.Logger) *Store {
	return &Store{
		key:         key,
		redisclient: redisclient,
		logger:      log,
	}
}

// Store serializes the snapshot and writes it to Redis.
func (s *Store) Store(ctx context.Context, snapshot *snapshotv1.Snapshot) error {
	buf, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "key",
			Value: s.key,
		})
		return errors.NewTracer("snapshot_marshal_error").Wrap(err)
	}

	if err := s.redisclient.Set(ctx, s.key, buf, 0); err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "key",
			Value: s.key,
		})
		return errors.NewTracer("snapshot_store_error").Wrap(err)
	}

	s.logger.InfoContext(ctx, "snapshot stored",
		logger.Field{Key: "key", Value: s.key},
		logger.Field{Key: "books", Value: len(snapshot.Books)},
		logger.Field{Key: "offset", Value: snapshot.OrderOffset},
	)
	return nil
}

// Load reads the snapshot back from Redis. It returns (nil, nil) when no
// snapshot has been stored yet.
func (s *Store) Load(ctx context.Context) (*snapshotv1.Snapshot, error) {
	data, err := s.redisclient.Get(ctx, s.key)
	if err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "key",
			Value: s.key,
		})
		return nil, errors.NewTracer("snapshot_load_error").Wrap(err)
	}

	if data == "" {
		s.logger.WarnContext(ctx, "no snapshot found", logger.Field{
			Key:   "key",
			Value: s.key,
		})
		return nil, nil
	}

	var snapshot snapshotv1.Snapshot
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "key",
			Value: s.key,
		})
		return nil, errors.NewTracer("snapshot_unmarshal_error").Wrap(err)
	}
	return &snapshot, nil
}
