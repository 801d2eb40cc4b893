// Package blocklist records revoked token IDs until the tokens expire.
package blocklist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const keyPrefix = "revoked:"

// Blocklist is a badger-backed set of revoked token IDs. Entries carry a TTL
// equal to the token's remaining lifetime, so the set never outgrows the
// tokens that could still be presented.
type Blocklist struct {
	db     *badger.DB
	logger *slog.Logger
	now    func() time.Time
}

// Open opens or creates a blocklist at path.
func Open(path string, logger *slog.Logger) (*Blocklist, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable Badger's internal logging
	opts.SyncWrites = true
	return open(opts, logger)
}

// OpenInMemory creates a blocklist that is not persisted. Used in tests.
func OpenInMemory(logger *slog.Logger) (*Blocklist, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts, logger)
}

func open(opts badger.Options, logger *slog.Logger) (*Blocklist, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open blocklist: %w", err)
	}
	logger.Info("token blocklist opened", "path", opts.Dir, "in_memory", opts.InMemory)
	return &Blocklist{db: db, logger: logger, now: time.Now}, nil
}

// Close closes the underlying database.
func (b *Blocklist) Close() error {
	return b.db.Close()
}

// Revoke marks tokenID as revoked until expiresAt. Tokens that have already
// expired need no entry.
func (b *Blocklist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return errors.New("token id is required")
	}
	ttl := expiresAt.Sub(b.now())
	if ttl <= 0 {
		return nil
	}

	err := b.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(keyPrefix+tokenID), nil).WithTTL(ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}

	b.logger.Debug("token revoked", "jti", tokenID, "ttl", ttl)
	return nil
}

// IsRevoked reports whether tokenID has been revoked and has not yet expired.
func (b *Blocklist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := b.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(keyPrefix + tokenID))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check token: %w", err)
	}
	return true, nil
}

// RunGC reclaims value log space until ctx is cancelled.
func (b *Blocklist) RunGC(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for b.db.RunValueLogGC(0.5) == nil {
			}
		}
	}
}
