package session

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mkrylov/tgrelay/internal/apikey"
)

// ErrCredentialRejected means a verifying Put found no matching key. It is
// deliberately distinct from storage faults so the caller can tell the
// user "key rejected" instead of "internal error".
var ErrCredentialRejected = errors.New("api key rejected")

// Store is the system of record for dialogue progress. Writes are
// last-write-wins per chat: a single chat issues at most one in-flight
// turn under normal transport delivery, so no per-record version check is
// kept. Concurrent duplicate deliveries for one chat can race; that is an
// accepted limitation, not a guarantee.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Get loads the session for a chat. A missing row is the AwaitingKey
// phase, not an error. A row whose history no longer parses surfaces
// ErrHistoryCorrupted.
func (s *Store) Get(ctx context.Context, chatID int64) (Session, error) {
	var rec UserRecord
	err := s.db.WithContext(ctx).First(&rec, "chat_id = ?", chatID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Session{Phase: PhaseAwaitingKey}, nil
	}
	if err != nil {
		return Session{}, err
	}

	h, err := DecodeHistory(rec.History)
	if err != nil {
		return Session{}, err
	}
	return Session{
		Phase:   PhaseActive,
		History: h,
		Version: ParseModelVersion(rec.ModelVersion),
	}, nil
}

// Put persists a session transition.
//
// A PendingKey session is the registration write: in one transaction the
// candidate is checked against the allow-list and, only on a match, an
// Active row with empty history and the default version is created. On a
// mismatch nothing is written and ErrCredentialRejected comes back.
//
// An Active session overwrites the whole history and version for the
// chat. An AwaitingKey session has no record to write and is a no-op.
func (s *Store) Put(ctx context.Context, chatID int64, sess Session) error {
	switch sess.Phase {
	case PhaseAwaitingKey:
		return nil

	case PhasePendingKey:
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			ok, err := apikey.MatchExists(tx, sess.Candidate)
			if err != nil {
				return err
			}
			if !ok {
				return ErrCredentialRejected
			}

			encoded, err := EncodeHistory(nil)
			if err != nil {
				return err
			}
			_, prefix := apikey.Hash(sess.Candidate)
			return tx.Create(&UserRecord{
				ChatID:       chatID,
				History:      encoded,
				ModelVersion: string(DefaultModelVersion),
				KeyPrefix:    prefix,
			}).Error
		})

	case PhaseActive:
		encoded, err := EncodeHistory(sess.History)
		if err != nil {
			return err
		}
		res := s.db.WithContext(ctx).Model(&UserRecord{}).
			Where("chat_id = ?", chatID).
			Updates(map[string]any{
				"history":       encoded,
				"model_version": string(sess.Version),
			})
		return res.Error

	default:
		return errors.New("session: unknown phase")
	}
}

// Delete removes the chat's record entirely; the next Get reverts to
// AwaitingKey. Deleting an absent chat is a no-op success.
func (s *Store) Delete(ctx context.Context, chatID int64) error {
	return s.db.WithContext(ctx).Delete(&UserRecord{}, "chat_id = ?", chatID).Error
}
