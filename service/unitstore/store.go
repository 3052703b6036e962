package unitstore

import (
	"errors"
	"io"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"

	bCtx "github.com/unit-xyz/goapi/base/ctx"
	"github.com/unit-xyz/goapi/base/log"
)

var (
	// ErrNotFound is returned when a key has no record
	ErrNotFound = errors.New("record not found")

	// ErrReadOnlyTxn is returned for writes inside View
	ErrReadOnlyTxn = errors.New("write in read-only transaction")
)

// Txn is a view over the market state. Inside Update, writes are staged
// and become visible to subsequent reads of the same Txn; nothing is
// persisted unless the whole Update commits.
type Txn interface {
	Get(key []byte) ([]byte, error)
	Set(key, val []byte) error
	Delete(key []byte) error
	// Iterate walks every record whose key starts with prefix, in key
	// order, until fn returns a non-nil error.
	Iterate(prefix []byte, fn func(key, val []byte) error) error
}

// Store is the single backing store for listings, offers, ledger
// entries and event records. Update runs its callback under an
// exclusive store-wide lock and commits all staged writes as one
// atomic batch, so no two operations interleave and a failed operation
// leaves no partial state.
type Store interface {
	View(c bCtx.Ctx, fn func(Txn) error) error
	Update(c bCtx.Ctx, fn func(Txn) error) error
	Ping(c bCtx.Ctx) error
	Close() error
}

type impl struct {
	db *pebble.DB
	mu sync.RWMutex
}

// Open opens or creates the store at path.
func Open(path string) (Store, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &impl{db: db}, nil
}

// OpenMem opens a store backed by an in-memory filesystem. Used by
// tests and the throwaway dev mode.
func OpenMem() (Store, error) {
	db, err := pebble.Open("", &pebble.Options{FS: vfs.NewMem()})
	if err != nil {
		return nil, err
	}
	return &impl{db: db}, nil
}

func (s *impl) View(c bCtx.Ctx, fn func(Txn) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&viewTxn{db: s.db})
}

func (s *impl) Update(c bCtx.Ctx, fn func(Txn) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := s.db.NewIndexedBatch()
	if err := fn(&updateTxn{batch: batch}); err != nil {
		if cerr := batch.Close(); cerr != nil {
			c.WithField("err", cerr).Warn("batch.Close failed")
		}
		return err
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		c.WithField("err", err).Error("batch.Commit failed")
		return err
	}
	return nil
}

func (s *impl) Ping(c bCtx.Ctx) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, closer, err := s.db.Get([]byte("ping"))
	if err != nil && err != pebble.ErrNotFound {
		c.WithFields(log.Fields{"err": err}).Error("db.Get failed")
		return err
	}
	if closer != nil {
		closer.Close()
	}
	return nil
}

func (s *impl) Close() error {
	return s.db.Close()
}

type reader interface {
	Get(key []byte) ([]byte, io.Closer, error)
	NewIter(o *pebble.IterOptions) (*pebble.Iterator, error)
}

func get(r reader, key []byte) ([]byte, error) {
	val, closer, err := r.Get(key)
	if err == pebble.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func iterate(r reader, prefix []byte, fn func(key, val []byte) error) error {
	iter, err := r.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
	if err != nil {
		return err
	}
	defer iter.Close()
	for iter.First(); iter.Valid(); iter.Next() {
		key := make([]byte, len(iter.Key()))
		copy(key, iter.Key())
		val := make([]byte, len(iter.Value()))
		copy(val, iter.Value())
		if err := fn(key, val); err != nil {
			return err
		}
	}
	return iter.Error()
}

// keyUpperBound returns the exclusive upper bound for a prefix scan
func keyUpperBound(prefix []byte) []byte {
	bound := make([]byte, len(prefix))
	copy(bound, prefix)
	for i := len(bound) - 1; i >= 0; i-- {
		bound[i]++
		if bound[i] != 0 {
			return bound[:i+1]
		}
	}
	return nil
}

type viewTxn struct {
	db *pebble.DB
}

func (t *viewTxn) Get(key []byte) ([]byte, error) {
	return get(t.db, key)
}

func (t *viewTxn) Set(key, val []byte) error {
	return ErrReadOnlyTxn
}

func (t *viewTxn) Delete(key []byte) error {
	return ErrReadOnlyTxn
}

func (t *viewTxn) Iterate(prefix []byte, fn func(key, val []byte) error) error {
	return iterate(t.db, prefix, fn)
}

type updateTxn struct {
	batch *pebble.Batch
}

func (t *updateTxn) Get(key []byte) ([]byte, error) {
	return get(t.batch, key)
}

func (t *updateTxn) Set(key, val []byte) error {
	return t.batch.Set(key, val, nil)
}

func (t *updateTxn) Delete(key []byte) error {
	return t.batch.Delete(key, nil)
}

func (t *updateTxn) Iterate(prefix []byte, fn func(key, val []byte) error) error {
	return iterate(t.batch, prefix, fn)
}
