package redis

import (
	"context"
	"encoding/json"

	"github.com/turtacn/facetmap/internal/domain/savedquery"
	"github.com/turtacn/facetmap/pkg/errors"
)

// SavedQueryStore holds saved queries in a hash keyed by id, with a list
// recording first-insertion order.
type SavedQueryStore struct {
	client   *Client
	hashKey  string
	orderKey string
}

func NewSavedQueryStore(client *Client, namespace string) *SavedQueryStore {
	return &SavedQueryStore{
		client:   client,
		hashKey:  client.Key("queries", namespace),
		orderKey: client.Key("queries", namespace, "order"),
	}
}

func (s *SavedQueryStore) Save(ctx context.Context, q savedquery.SubQuery) error {
	if err := q.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(q)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "encode saved query")
	}
	rdb, err := s.client.Universal()
	if err != nil {
		return err
	}

	isNew, err := rdb.HSetNX(ctx, s.hashKey, q.ID, data).Result()
	if err != nil {
		return storeError(err, "save query")
	}
	if isNew {
		return storeError(rdb.RPush(ctx, s.orderKey, q.ID).Err(), "save query order")
	}
	return storeError(rdb.HSet(ctx, s.hashKey, q.ID, data).Err(), "replace query")
}

func (s *SavedQueryStore) List(ctx context.Context) ([]savedquery.SubQuery, error) {
	byID, order, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]savedquery.SubQuery, 0, len(order))
	for _, id := range order {
		if q, ok := byID[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *SavedQueryStore) Resolve(ctx context.Context, sel savedquery.Selection) ([]savedquery.SubQuery, error) {
	if sel.Mode != savedquery.ModeSelected {
		return savedquery.ResolveFrom(sel, nil)
	}
	byID, _, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return savedquery.ResolveFrom(sel, func(id string) (savedquery.SubQuery, bool) {
		q, ok := byID[id]
		return q, ok
	})
}

func (s *SavedQueryStore) load(ctx context.Context) (map[string]savedquery.SubQuery, []string, error) {
	rdb, err := s.client.Universal()
	if err != nil {
		return nil, nil, err
	}
	pipe := rdb.Pipeline()
	all := pipe.HGetAll(ctx, s.hashKey)
	order := pipe.LRange(ctx, s.orderKey, 0, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, nil, storeError(err, "load queries")
	}

	byID := make(map[string]savedquery.SubQuery, len(all.Val()))
	for id, raw := range all.Val() {
		var q savedquery.SubQuery
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			return nil, nil, errors.Wrap(err, errors.ErrCodeSerialization, "decode saved query").WithDetail(id)
		}
		byID[id] = q
	}
	return byID, order.Val(), nil
}

var _ savedquery.Store = (*SavedQueryStore)(nil)

//Personal.AI order the ending
