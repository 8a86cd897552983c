// Package apikey stores and checks the credential allow-list. A key is
// never persisted whole: only its Keccak-256 hash plus a short plaintext
// prefix, checked together on lookup.
package apikey

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/sha3"
	"gorm.io/gorm"
)

// PrefixLen is how many raw bytes of the key are kept in plaintext. The
// prefix narrows the lookup and guards the hash check against index
// collisions; it is far too short to recover the key.
const PrefixLen = 10

// Key is one issued credential. No column links a key to a chat: the
// allow-list is a shared secret, not per-user issuance.
type Key struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	KeyHash   []byte `gorm:"type:varbinary(32);not null;index:idx_api_keys_hash_prefix,priority:1"`
	KeyPrefix []byte `gorm:"type:varbinary(16);not null;index:idx_api_keys_hash_prefix,priority:2"`
	CreatedAt time.Time
}

func (Key) TableName() string { return "api_keys" }

// Hash computes the verification tuple for a key.
func Hash(key string) (hash, prefix []byte) {
	d := sha3.NewLegacyKeccak256()
	d.Write([]byte(key))
	hash = d.Sum(nil)

	b := []byte(key)
	if len(b) > PrefixLen {
		b = b[:PrefixLen]
	}
	prefix = append([]byte(nil), b...)
	return hash, prefix
}

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Verify reports whether the candidate matches any issued key. An empty
// candidate always fails; it never fails with an error for malformed
// input, only for storage faults.
func (s *Store) Verify(ctx context.Context, candidate string) (bool, error) {
	if candidate == "" {
		return false, nil
	}
	return MatchExists(s.db.WithContext(ctx), candidate)
}

// MatchExists runs the (hash, prefix) lookup on the given handle, so a
// caller can embed the check inside its own transaction.
func MatchExists(tx *gorm.DB, candidate string) (bool, error) {
	hash, prefix := Hash(candidate)
	var cnt int64
	err := tx.Model(&Key{}).
		Where("key_hash = ? AND key_prefix = ?", hash, prefix).
		Count(&cnt).Error
	if err != nil {
		return false, err
	}
	return cnt > 0, nil
}

// Issue registers a key's verification tuple. Operator-side only; the
// interactive message path never calls this.
func (s *Store) Issue(ctx context.Context, key string) error {
	hash, prefix := Hash(key)
	return s.db.WithContext(ctx).Create(&Key{KeyHash: hash, KeyPrefix: prefix}).Error
}

// Prefixes lists the stored plaintext prefixes, newest first. Used by the
// admin API to show what exists without exposing anything recoverable.
func (s *Store) Prefixes(ctx context.Context) ([]string, error) {
	var keys []Key
	if err := s.db.WithContext(ctx).Order("id DESC").Find(&keys).Error; err != nil {
		return nil, err
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, string(k.KeyPrefix))
	}
	return out, nil
}

// Generate produces a fresh random key: a ULID plus 10 random bytes,
// hex-encoded. 46 chars, URL-safe, enough entropy that the prefix leak
// is irrelevant.
func Generate() (string, error) {
	var suffix [10]byte
	if _, err := rand.Read(suffix[:]); err != nil {
		return "", err
	}
	return ulid.Make().String() + hex.EncodeToString(suffix[:]), nil
}
