// Package journal persists the vault's audit trail in BadgerDB.
//
// Each published event is stored as JSON under a key made of a fixed prefix
// and a big-endian position drawn from a Badger sequence, so a prefix scan
// replays events in publication order across restarts.
package journal

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/sufield/yieldvault/internal/domain"
	"github.com/sufield/yieldvault/internal/ports"
)

var (
	eventPrefix = []byte("event/")
	sequenceKey = []byte("meta/sequence")
)

// sequenceBandwidth is how many positions Badger leases at a time.
const sequenceBandwidth = 64

// Config holds configuration for a journal.
type Config struct {
	// Path is the directory for BadgerDB files. Ignored when InMemory is true.
	Path string

	// InMemory keeps the journal in memory only (tests, simulations).
	InMemory bool

	// SyncWrites makes every Publish durable before it returns.
	SyncWrites bool

	// Logger receives BadgerDB's internal logging. Nil disables it.
	Logger *slog.Logger
}

// Journal is a ports.EventSink backed by BadgerDB.
type Journal struct {
	db  *badger.DB
	seq *badger.Sequence
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Open opens (or creates) a journal.
func Open(cfg Config) (*Journal, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("journal path is required for a persistent journal")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create journal directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger.With("component", "journal")})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	seq, err := db.GetSequence(sequenceKey, sequenceBandwidth)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal sequence: %w", err)
	}
	return &Journal{db: db, seq: seq}, nil
}

// OpenInMemory opens a journal that is lost on Close.
func OpenInMemory() (*Journal, error) {
	return Open(Config{InMemory: true})
}

// Publish implements ports.EventSink.
func (j *Journal) Publish(ctx context.Context, evt domain.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	pos, err := j.seq.Next()
	if err != nil {
		return fmt.Errorf("journal position: %w", err)
	}
	val, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", evt.Kind, err)
	}
	if err := j.db.Update(func(txn *badger.Txn) error {
		return txn.Set(eventKey(pos), val)
	}); err != nil {
		return fmt.Errorf("journal %s event %d: %w", evt.Kind, evt.Seq, err)
	}
	return nil
}

// Replay calls fn for every journaled event, oldest first. It stops at the
// first error fn returns.
func (j *Journal) Replay(ctx context.Context, fn func(domain.Event) error) error {
	return j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = eventPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var evt domain.Event
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &evt)
			}); err != nil {
				return fmt.Errorf("decode journal entry %x: %w", it.Item().Key(), err)
			}
			if err := fn(evt); err != nil {
				return err
			}
		}
		return nil
	})
}

// Recent returns up to n of the newest events, oldest first.
func (j *Journal) Recent(ctx context.Context, n int) ([]domain.Event, error) {
	if n <= 0 {
		return nil, nil
	}
	var out []domain.Event
	err := j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = eventPrefix
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration must seek past the last key with the prefix.
		seek := append(append([]byte{}, eventPrefix...), 0xFF)
		for it.Seek(seek); it.Valid() && len(out) < n; it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var evt domain.Event
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &evt)
			}); err != nil {
				return fmt.Errorf("decode journal entry %x: %w", it.Item().Key(), err)
			}
			out = append(out, evt)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for i, k := 0, len(out)-1; i < k; i, k = i+1, k-1 {
		out[i], out[k] = out[k], out[i]
	}
	return out, nil
}

// Close releases the sequence lease and closes the database.
func (j *Journal) Close() error {
	return errors.Join(j.seq.Release(), j.db.Close())
}

func eventKey(pos uint64) []byte {
	key := make([]byte, len(eventPrefix)+8)
	copy(key, eventPrefix)
	binary.BigEndian.PutUint64(key[len(eventPrefix):], pos)
	return key
}

var _ ports.EventSink = (*Journal)(nil)
