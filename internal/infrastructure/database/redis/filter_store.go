package redis

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/turtacn/facetmap/internal/domain/filter"
	"github.com/turtacn/facetmap/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/facetmap/pkg/errors"
)

// FilterStore keeps the shared filter list in Redis so every replica sees the
// same FilterSet. Filters live in a list in append order; the time range is a
// separate string key.
type FilterStore struct {
	client   *Client
	logger   logging.Logger
	listKey  string
	rangeKey string
}

// NewFilterStore scopes the keys under namespace, usually the dashboard id.
func NewFilterStore(client *Client, namespace string, log logging.Logger) *FilterStore {
	return &FilterStore{
		client:   client,
		logger:   log,
		listKey:  client.Key("filters", namespace),
		rangeKey: client.Key("filters", namespace, "time"),
	}
}

func (s *FilterStore) List(ctx context.Context) (filter.FilterSet, error) {
	rdb, err := s.client.Universal()
	if err != nil {
		return filter.FilterSet{}, err
	}

	pipe := rdb.Pipeline()
	items := pipe.LRange(ctx, s.listKey, 0, -1)
	tr := pipe.Get(ctx, s.rangeKey)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return filter.FilterSet{}, storeError(err, "list filters")
	}

	set := filter.FilterSet{Filters: make([]filter.Filter, 0, len(items.Val()))}
	for _, raw := range items.Val() {
		var f filter.Filter
		if err := json.Unmarshal([]byte(raw), &f); err != nil {
			s.logger.Warn("Skipping undecodable filter", logging.String("key", s.listKey), logging.Err(err))
			continue
		}
		set.Filters = append(set.Filters, f)
	}

	if raw, err := tr.Bytes(); err == nil {
		var r filter.TimeRange
		if err := json.Unmarshal(raw, &r); err != nil {
			return filter.FilterSet{}, errors.Wrap(err, errors.ErrCodeSerialization, "decode time range")
		}
		set.Time = &r
	}
	return set, nil
}

func (s *FilterStore) Append(ctx context.Context, f filter.Filter) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	data, err := json.Marshal(f)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "encode filter")
	}
	rdb, err := s.client.Universal()
	if err != nil {
		return err
	}
	return storeError(rdb.RPush(ctx, s.listKey, data).Err(), "append filter")
}

func (s *FilterStore) SetTimeRange(ctx context.Context, r filter.TimeRange) error {
	if err := r.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(r)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "encode time range")
	}
	rdb, err := s.client.Universal()
	if err != nil {
		return err
	}
	return storeError(rdb.Set(ctx, s.rangeKey, data, 0).Err(), "set time range")
}

func (s *FilterStore) Clear(ctx context.Context) error {
	rdb, err := s.client.Universal()
	if err != nil {
		return err
	}
	return storeError(rdb.Del(ctx, s.listKey, s.rangeKey).Err(), "clear filters")
}

var _ filter.Store = (*FilterStore)(nil)

//Personal.AI order the ending
