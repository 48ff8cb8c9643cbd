package deck

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tandemchat/backend/internal/cache"
	"github.com/tandemchat/backend/internal/models"
)

// SessionStore persists deck sessions in the TTL cache. There is no
// cross-process lock around the read-modify-write of a session: concurrent
// messages from two devices can race and last write wins, which is the
// accepted behavior of this layer.
type SessionStore struct {
	store cache.Store
}

// NewSessionStore wraps the given cache.
func NewSessionStore(store cache.Store) *SessionStore {
	return &SessionStore{store: store}
}

// Load returns the session for (user, deckName), or nil when none is
// cached. A successful read refreshes the session TTL.
func (s *SessionStore) Load(ctx context.Context, user, deckName string) (*models.DeckSession, error) {
	key := cache.DeckSessionKey(user, deckName)
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load deck session: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var session models.DeckSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("decode deck session: %w", err)
	}
	// Reads refresh the session lifetime.
	_ = s.store.Set(ctx, key, raw, cache.DeckSessionTTL)
	return &session, nil
}

// Save writes the session under the (user, deck) key with a full TTL.
func (s *SessionStore) Save(ctx context.Context, user string, session *models.DeckSession) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode deck session: %w", err)
	}
	key := cache.DeckSessionKey(user, session.DeckName)
	if err := s.store.Set(ctx, key, string(raw), cache.DeckSessionTTL); err != nil {
		return fmt.Errorf("save deck session: %w", err)
	}
	return nil
}

// Activate reconciles an incoming deck upload against any cached session
// and persists the result. Cached review progress carries over per note,
// but only while the note's revision counter is unchanged: a bumped Mod
// means the card content changed in the deck system, so its cached review
// status is discarded and the note presents as unreviewed.
//
// The session language is sticky: an explicit incoming language wins, then
// the previously stored language, then a one-shot auto-detection over the
// uploaded fronts.
func (s *SessionStore) Activate(ctx context.Context, user string, incoming models.DeckSession) (models.DeckSession, error) {
	existing, err := s.Load(ctx, user, incoming.DeckName)
	if err != nil {
		// A corrupt or unreadable cached session must not block deck
		// activation; start fresh.
		existing = nil
	}

	type progress struct {
		isReviewed bool
		mod        int64
	}
	progressByID := make(map[string]progress)
	if existing != nil {
		for _, note := range existing.Notes {
			progressByID[note.ID] = progress{isReviewed: note.IsReviewed, mod: note.Mod}
		}
	}

	final := make([]models.Note, len(incoming.Notes))
	for i, note := range incoming.Notes {
		note.IsReviewed = false
		if prev, ok := progressByID[note.ID]; ok && prev.mod == note.Mod {
			note.IsReviewed = prev.isReviewed
		}
		final[i] = note
	}

	lang := incoming.TargetLanguage
	if lang == "" && existing != nil {
		lang = existing.TargetLanguage
	}
	if lang == "" {
		lang = DetectLanguage(incoming.Notes)
	}

	session := models.DeckSession{
		DeckName:       incoming.DeckName,
		Notes:          final,
		TargetLanguage: lang,
	}
	if err := s.Save(ctx, user, &session); err != nil {
		return models.DeckSession{}, err
	}
	return session, nil
}
