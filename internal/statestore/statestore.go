// Package statestore persists per-meter state across process restarts,
// adapted from the teacher's pkg/storage/dtc.go DTC-dedup store: the
// same bbolt-backed "have I already reported this" bucket, renamed and
// repurposed from diagnostic-trouble-code dedup into wM-Bus status
// dedup, plus a second bucket for the last serialized snapshot per
// meter so the round-trip/idempotence property (spec §8) survives a
// restart.
package statestore

import (
	"fmt"

	bolt "go.etcd.io/bbolt"
)

var (
	statusBucket   = []byte("status")
	snapshotBucket = []byte("snapshot")
)

// Store wraps a bbolt database holding this project's durable state.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if absent) the bbolt database at path and
// ensures both buckets exist.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("statestore: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(statusBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(snapshotBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("statestore: init buckets: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database file.
func (s *Store) Close() error { return s.db.Close() }

// IsNewStatus reports whether status is a change from the last status
// recorded for addr, recording it as current as a side effect. The
// first call for a given addr is always "new".
func (s *Store) IsNewStatus(addr, status string) (bool, error) {
	isNew := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(statusBucket)
		cur := b.Get([]byte(addr))
		if string(cur) == status {
			return nil
		}
		isNew = true
		return b.Put([]byte(addr), []byte(status))
	})
	if err != nil {
		return false, fmt.Errorf("statestore: IsNewStatus: %w", err)
	}
	return isNew, nil
}

// ClearStatus removes any recorded status for addr, so the next status
// seen is always reported as new.
func (s *Store) ClearStatus(addr string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(statusBucket).Delete([]byte(addr))
	})
	if err != nil {
		return fmt.Errorf("statestore: ClearStatus: %w", err)
	}
	return nil
}

// PutSnapshot stores doc (a serialized telegram) as the last known
// state for addr.
func (s *Store) PutSnapshot(addr string, doc []byte) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(snapshotBucket).Put([]byte(addr), doc)
	})
	if err != nil {
		return fmt.Errorf("statestore: PutSnapshot: %w", err)
	}
	return nil
}

// LastSnapshot returns the last serialized document stored for addr,
// or nil if none has been recorded.
func (s *Store) LastSnapshot(addr string) ([]byte, error) {
	var doc []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(snapshotBucket).Get([]byte(addr))
		if v != nil {
			doc = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("statestore: LastSnapshot: %w", err)
	}
	return doc, nil
}
