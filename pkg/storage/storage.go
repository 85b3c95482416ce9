// Package storage persists decoded results in a pebble database keyed by
// KSUID, so listing returns results in creation order.
package storage

import (
	"encoding/json"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/actfast/pkg/sensors"
)

var (
	infoPrefix = []byte("info/")
	dataPrefix = []byte("data/")
)

// ErrNotFound is returned for unknown result ids
var ErrNotFound = errors.New("result not found")

// ResultInfo describes a stored result without its tables
type ResultInfo struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Format    string         `json:"format"`
	CreatedAt time.Time      `json:"created_at"`
	Size      int            `json:"size"`
	Rows      map[string]int `json:"rows"`
}

// ResultStore stores sensor results
type ResultStore struct {
	db *pebble.DB
}

// NewResultStore opens or creates a store in dir
func NewResultStore(dir string) (*ResultStore, error) {
	return NewResultStoreWithOptions(dir, &pebble.Options{})
}

// NewResultStoreWithOptions opens a store with explicit pebble options
func NewResultStoreWithOptions(dir string, opts *pebble.Options) (*ResultStore, error) {
	db, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "open result store %s", dir)
	}
	return &ResultStore{db: db}, nil
}

func key(prefix []byte, id ksuid.KSUID) []byte {
	return append(append([]byte{}, prefix...), id.Bytes()...)
}

func parseID(id string) (ksuid.KSUID, error) {
	k, err := ksuid.Parse(id)
	if err != nil {
		return ksuid.Nil, errors.Wrapf(ErrNotFound, "invalid id %q", id)
	}
	return k, nil
}

// Save stores a result under a new id
func (s *ResultStore) Save(name string, r *sensors.Result) (ResultInfo, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return ResultInfo{}, errors.Wrap(err, "encode result")
	}

	id := ksuid.New()
	info := ResultInfo{
		ID:        id.String(),
		Name:      name,
		Format:    r.Format,
		CreatedAt: id.Time().UTC(),
		Size:      len(data),
		Rows:      make(map[string]int, len(r.Tables)),
	}
	for tableName, t := range r.Tables {
		info.Rows[tableName] = t.Len()
	}
	infoData, err := json.Marshal(info)
	if err != nil {
		return ResultInfo{}, errors.Wrap(err, "encode result info")
	}

	b := s.db.NewBatch()
	defer b.Close()
	if err := b.Set(key(infoPrefix, id), infoData, nil); err != nil {
		return ResultInfo{}, err
	}
	if err := b.Set(key(dataPrefix, id), data, nil); err != nil {
		return ResultInfo{}, err
	}
	if err := b.Commit(pebble.Sync); err != nil {
		return ResultInfo{}, errors.Wrap(err, "commit result")
	}
	return info, nil
}

func (s *ResultStore) get(k []byte, v any) error {
	data, closer, err := s.db.Get(k)
	if errors.Is(err, pebble.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	defer closer.Close()

	return json.Unmarshal(data, v)
}

// Info returns the description of a stored result
func (s *ResultStore) Info(id string) (ResultInfo, error) {
	k, err := parseID(id)
	if err != nil {
		return ResultInfo{}, err
	}
	var info ResultInfo
	if err := s.get(key(infoPrefix, k), &info); err != nil {
		return ResultInfo{}, err
	}
	return info, nil
}

// Get returns a stored result
func (s *ResultStore) Get(id string) (*sensors.Result, error) {
	k, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var r sensors.Result
	if err := s.get(key(dataPrefix, k), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// List returns every stored result in creation order
func (s *ResultStore) List() ([]ResultInfo, error) {
	upper := append([]byte{}, infoPrefix...)
	upper[len(upper)-1]++

	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: infoPrefix, UpperBound: upper})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []ResultInfo
	for iter.First(); iter.Valid(); iter.Next() {
		var info ResultInfo
		if err := json.Unmarshal(iter.Value(), &info); err != nil {
			return nil, errors.Wrapf(err, "decode result info %x", iter.Key())
		}
		out = append(out, info)
	}
	return out, iter.Error()
}

// Delete removes a stored result
func (s *ResultStore) Delete(id string) error {
	k, err := parseID(id)
	if err != nil {
		return err
	}
	if _, err := s.Info(id); err != nil {
		return err
	}

	b := s.db.NewBatch()
	defer b.Close()
	if err := b.Delete(key(infoPrefix, k), nil); err != nil {
		return err
	}
	if err := b.Delete(key(dataPrefix, k), nil); err != nil {
		return err
	}
	return b.Commit(pebble.Sync)
}

// Close closes the underlying database
func (s *ResultStore) Close() error {
	return s.db.Close()
}
