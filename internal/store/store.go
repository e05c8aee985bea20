// Package store persists workflow documents in an embedded badger database.
package store

import (
	"strings"

	"github.com/dgraph-io/badger/v3"
	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/avi3tal/flowforge/internal/document"
)

const keyPrefix = "workflow:"

// ErrNotFound is returned when no document is saved under the given name.
var ErrNotFound = errors.New("workflow not found")

// Store is a badger-backed document store keyed by workflow name.
type Store struct {
	db  *badger.DB
	log *zap.Logger
}

// Open opens (creating if needed) a store at the given directory.
func Open(path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := badger.Open(badger.DefaultOptions(path).WithLogger(nil))
	if err != nil {
		return nil, errors.Wrapf(err, "open workflow store at %s", path)
	}
	return &Store{db: db, log: log}, nil
}

// OpenInMemory opens a store backed by memory only, for tests and
// ephemeral sessions.
func OpenInMemory() (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, errors.Wrap(err, "open in-memory workflow store")
	}
	return &Store{db: db, log: zap.NewNop()}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes a document under its workflow name, overwriting any previous
// version.
func (s *Store) Save(doc document.Document) error {
	if strings.TrimSpace(doc.Name) == "" {
		return errors.New("cannot save a workflow without a name")
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "encode workflow document")
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+doc.Name), data)
	})
	if err != nil {
		return errors.Wrapf(err, "save workflow %s", doc.Name)
	}
	s.log.Debug("workflow saved", zap.String("name", doc.Name))
	return nil
}

// Get loads the document saved under the given name.
func (s *Store) Get(name string) (document.Document, error) {
	var doc document.Document
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + name))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return errors.Wrap(ErrNotFound, name)
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &doc)
		})
	})
	if err != nil {
		return document.Document{}, err
	}
	return doc, nil
}

// List returns the names of all saved workflows in key order.
func (s *Store) List() ([]string, error) {
	var names []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			names = append(names, strings.TrimPrefix(string(it.Item().Key()), keyPrefix))
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "list workflows")
	}
	return names, nil
}

// Delete removes the document saved under the given name.
func (s *Store) Delete(name string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(keyPrefix + name)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return errors.Wrap(ErrNotFound, name)
			}
			return err
		}
		return txn.Delete([]byte(keyPrefix + name))
	})
	if err != nil {
		return err
	}
	s.log.Debug("workflow deleted", zap.String("name", name))
	return nil
}
