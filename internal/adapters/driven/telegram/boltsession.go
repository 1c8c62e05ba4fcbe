package telegram

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/boltdb/bolt"
	"github.com/gotd/td/session"
)

var (
	sessionBucket = []byte("session") // holds the serialized MTProto session
	peersBucket   = []byte("peers")   // maps peer ids to access hashes

	sessionKey = []byte("current")
)

// BoltStore persists the MTProto session and resolved peers in a bolt file.
// It implements session.Storage.
type BoltStore struct {
	db *bolt.DB
}

var _ session.Storage = (*BoltStore)(nil)

// OpenBoltStore opens (or creates) the bolt file at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating session directory: %w", err)
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening session file %q: %w", path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(sessionBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(peersBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensuring session buckets: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// Close closes the bolt file.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// LoadSession returns the stored session, or session.ErrNotFound.
func (s *BoltStore) LoadSession(_ context.Context) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(sessionBucket).Get(sessionKey)
		if v == nil {
			return session.ErrNotFound
		}
		// Bolt values are only valid inside the transaction.
		data = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// StoreSession replaces the stored session.
func (s *BoltStore) StoreSession(_ context.Context, data []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionBucket).Put(sessionKey, data)
	})
}

// HasSession reports whether a session has been stored.
func (s *BoltStore) HasSession() bool {
	_, err := s.LoadSession(context.Background())
	return err == nil
}

// peerRecord is what is needed to address a peer without resolving it again.
type peerRecord struct {
	ID         int64  `json:"id"`
	AccessHash int64  `json:"access_hash"`
	Kind       string `json:"kind"`
	Title      string `json:"title"`
	Username   string `json:"username,omitempty"`
	Chat       bool   `json:"chat,omitempty"`
}

// SavePeer records a resolved peer.
func (s *BoltStore) SavePeer(p peerRecord) error {
	v, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(peersBucket).Put(id2key(p.ID), v)
	})
}

// LoadPeer returns a previously resolved peer.
func (s *BoltStore) LoadPeer(id int64) (peerRecord, bool, error) {
	var p peerRecord
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(peersBucket).Get(id2key(id))
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &p)
	})
	if err != nil {
		return peerRecord{}, false, err
	}
	return p, found, nil
}

// FindPeerByUsername scans the stored peers for a username.
func (s *BoltStore) FindPeerByUsername(username string) (peerRecord, bool, error) {
	var match peerRecord
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(peersBucket).ForEach(func(_, v []byte) error {
			var p peerRecord
			if err := json.Unmarshal(v, &p); err != nil {
				return err
			}
			if p.Username != "" && strings.EqualFold(p.Username, username) {
				match, found = p, true
				return errStopScan
			}
			return nil
		})
	})
	if err != nil && !errors.Is(err, errStopScan) {
		return peerRecord{}, false, err
	}
	return match, found, nil
}

var errStopScan = errors.New("stop scan")

func id2key(id int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(id))
	return key
}
