package state

import (
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
)

// LevelStore is a Store backed by a LevelDB directory. It backs the local ledger,
// where there is no peer to hold the world state.
type LevelStore struct {
	db *leveldb.DB
}

// OpenLevel opens (or creates) the LevelDB database at path.
func OpenLevel(path string) (*LevelStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger at %s: %v", path, err)
	}
	return &LevelStore{db: db}, nil
}

// Close releases the database.
func (l *LevelStore) Close() error {
	return l.db.Close()
}

// GetState returns the value under key, or nil when absent.
func (l *LevelStore) GetState(key string) ([]byte, error) {
	value, err := l.db.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// PutState writes key directly.
func (l *LevelStore) PutState(key string, value []byte) error {
	return l.db.Put([]byte(key), value, nil)
}

// DelState deletes key directly.
func (l *LevelStore) DelState(key string) error {
	return l.db.Delete([]byte(key), nil)
}

// WriteBatch applies the write set as a single LevelDB batch, so a crash leaves
// either all or none of it on disk.
func (l *LevelStore) WriteBatch(puts map[string][]byte, dels []string) error {
	batch := new(leveldb.Batch)
	for key, value := range puts {
		batch.Put([]byte(key), value)
	}
	for _, key := range dels {
		batch.Delete([]byte(key))
	}
	return l.db.Write(batch, nil)
}
