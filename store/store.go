// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package store keeps named circuit snapshots in a BadgerDB database.
//
// Snapshots are netlist documents, stored in their YAML encoding under the
// key "netlist/<name>".
//
package store

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	"github.com/db47h/cedarsim/netlist"
)

const keyPrefix = "netlist/"

// ErrNotFound is returned when a snapshot does not exist.
//
var ErrNotFound = errors.New("snapshot not found")

// Config configures a Store.
//
type Config struct {
	// Path of the database directory. Ignored if InMemory is set.
	Path string
	// InMemory keeps everything in memory.
	InMemory bool
	Logger   *slog.Logger
}

type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// Store is a snapshot store. It is safe for concurrent use.
//
type Store struct {
	db *badger.DB
}

// Open opens or creates a store.
//
func Open(cfg Config) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("store: path is required for a persistent store")
		}
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, errors.Wrapf(err, "store: create directory %s", cfg.Path)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger.With("component", "badger")})
	} else {
		opts = opts.WithLogger(nil)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "store: open database")
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
//
func (s *Store) Close() error {
	return s.db.Close()
}

func checkName(name string) error {
	if name == "" || strings.ContainsAny(name, "/\x00") {
		return errors.Errorf("store: invalid snapshot name %q", name)
	}
	return nil
}

// Save stores d under the given name, replacing any previous snapshot with
// the same name.
//
func (s *Store) Save(name string, d *netlist.Document) error {
	if err := checkName(name); err != nil {
		return err
	}
	data, err := netlist.Marshal(d)
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+name), data)
	})
	return errors.Wrapf(err, "store: save %s", name)
}

// Load returns the named snapshot.
//
func (s *Store) Load(name string) (*netlist.Document, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + name))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, errors.Wrap(ErrNotFound, name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "store: load %s", name)
	}
	return netlist.Unmarshal(data)
}

// Delete removes the named snapshot.
//
func (s *Store) Delete(name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		key := []byte(keyPrefix + name)
		if _, err := txn.Get(key); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if err == badger.ErrKeyNotFound {
		return errors.Wrap(ErrNotFound, name)
	}
	return errors.Wrapf(err, "store: delete %s", name)
}

// List returns the names of all snapshots, in lexical order.
//
func (s *Store) List() ([]string, error) {
	var names []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			names = append(names, strings.TrimPrefix(string(it.Item().Key()), keyPrefix))
		}
		return nil
	})
	return names, errors.Wrap(err, "store: list")
}
