package store

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
	"github.com/tgk/tipstream/internal/logger"
	"github.com/tgk/tipstream/internal/models"
)

var ErrDBNotOpen = errors.New("store is not open")

type Config struct {
	// Dir is the badger directory. Empty means in-memory.
	Dir string
}

// DB persists per-window winners in badger, keyed by big-endian window end
// so iteration order is window order. Only final results land here, never
// in-flight window state.
type DB struct {
	open atomic.Bool

	dbPath string
	logger zerolog.Logger

	db *badger.DB
	mu sync.RWMutex
}

func New(c *Config) *DB {
	newLogger := logger.GetLogger("winstore")
	newLogger.Print("creating new winners store")
	return &DB{
		dbPath: c.Dir,
		logger: newLogger,
	}
}

func (db *DB) Open() error {
	opts := badger.DefaultOptions(db.dbPath)
	if db.dbPath == "" {
		opts = opts.WithInMemory(true)
	}
	opts = opts.WithLogger(nil)

	badgerDB, err := badger.Open(opts)
	if err != nil {
		return err
	}
	db.db = badgerDB
	db.open.Store(true)
	db.logger.Debug().Msgf("opened winners store at %q", db.dbPath)
	return nil
}

func (db *DB) Close() error {
	if !db.open.Load() {
		return nil
	}
	db.open.Store(false)
	return db.db.Close()
}

// Put stores the winner for its window, overwriting any previous value for
// the same window end.
func (db *DB) Put(winner models.TipTotal) error {
	if !db.open.Load() {
		return ErrDBNotOpen
	}
	db.mu.Lock()
	defer db.mu.Unlock()

	val, err := json.Marshal(winner)
	if err != nil {
		return err
	}
	err = db.db.Update(func(txn *badger.Txn) error {
		return txn.Set(windowKey(winner.WindowEnd), val)
	})
	if err != nil {
		db.logger.Err(err).Msgf("err storing winner for window %d", winner.WindowEnd)
		return err
	}
	return nil
}

// Get returns the winner for windowEnd. The second return is false when no
// winner was recorded for that window.
func (db *DB) Get(windowEnd int64) (models.TipTotal, bool, error) {
	if !db.open.Load() {
		return models.TipTotal{}, false, ErrDBNotOpen
	}
	db.mu.RLock()
	defer db.mu.RUnlock()

	var winner models.TipTotal
	err := db.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(windowKey(windowEnd))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &winner)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return models.TipTotal{}, false, nil
	}
	if err != nil {
		return models.TipTotal{}, false, err
	}
	return winner, true, nil
}

// Recent returns up to n winners, newest window first.
func (db *DB) Recent(n int) ([]models.TipTotal, error) {
	if !db.open.Load() {
		return nil, ErrDBNotOpen
	}
	db.mu.RLock()
	defer db.mu.RUnlock()

	winners := make([]models.TipTotal, 0, n)
	err := db.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration starts past the highest key.
		seek := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
		for it.Seek(seek); it.Valid() && len(winners) < n; it.Next() {
			var winner models.TipTotal
			verr := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &winner)
			})
			if verr != nil {
				return verr
			}
			winners = append(winners, winner)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return winners, nil
}

func windowKey(windowEnd int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(windowEnd))
	return key
}
