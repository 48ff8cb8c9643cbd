package deck

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tandemchat/backend/internal/cache"
	"github.com/tandemchat/backend/internal/models"
)

func TestActivateFreshDeck(t *testing.T) {
	ctx := context.Background()
	s := NewSessionStore(cache.NewMemory())

	session, err := s.Activate(ctx, "alice", models.DeckSession{
		DeckName: "German Verbs",
		Notes: []models.Note{
			{ID: "n1", Front: "gehen", Mod: 1},
			{ID: "n2", Front: "essen", Mod: 1},
		},
	})
	require.NoError(t, err)
	assert.Len(t, session.Notes, 2)
	for _, n := range session.Notes {
		assert.False(t, n.IsReviewed)
	}

	loaded, err := s.Load(ctx, "alice", "German Verbs")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "German Verbs", loaded.DeckName)
}

func TestActivateCarriesReviewProgress(t *testing.T) {
	ctx := context.Background()
	s := NewSessionStore(cache.NewMemory())

	require.NoError(t, s.Save(ctx, "alice", &models.DeckSession{
		DeckName: "Deck",
		Notes:    []models.Note{{ID: "n1", Front: "gehen", Mod: 5, IsReviewed: true}},
	}))

	session, err := s.Activate(ctx, "alice", models.DeckSession{
		DeckName: "Deck",
		Notes:    []models.Note{{ID: "n1", Front: "gehen", Mod: 5}},
	})
	require.NoError(t, err)
	assert.True(t, session.Notes[0].IsReviewed, "unchanged mod keeps review progress")
}

func TestActivateResetsOnStaleMod(t *testing.T) {
	ctx := context.Background()
	s := NewSessionStore(cache.NewMemory())

	require.NoError(t, s.Save(ctx, "alice", &models.DeckSession{
		DeckName: "Deck",
		Notes:    []models.Note{{ID: "n1", Front: "gehen", Mod: 5, IsReviewed: true}},
	}))

	session, err := s.Activate(ctx, "alice", models.DeckSession{
		DeckName: "Deck",
		Notes:    []models.Note{{ID: "n1", Front: "gehen", Mod: 6}},
	})
	require.NoError(t, err)
	assert.False(t, session.Notes[0].IsReviewed, "bumped mod must present as unreviewed")
}

func TestActivateLanguageSticky(t *testing.T) {
	ctx := context.Background()
	s := NewSessionStore(cache.NewMemory())

	first, err := s.Activate(ctx, "alice", models.DeckSession{
		DeckName:       "Deck",
		TargetLanguage: "de",
		Notes:          []models.Note{{ID: "n1", Front: "gehen", Mod: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, "de", first.TargetLanguage)

	// Re-upload without a language: the stored one sticks.
	second, err := s.Activate(ctx, "alice", models.DeckSession{
		DeckName: "Deck",
		Notes:    []models.Note{{ID: "n1", Front: "gehen", Mod: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, "de", second.TargetLanguage)
}

func TestActivateDetectsLanguageOnce(t *testing.T) {
	ctx := context.Background()
	s := NewSessionStore(cache.NewMemory())

	session, err := s.Activate(ctx, "alice", models.DeckSession{
		DeckName: "Deck",
		Notes: []models.Note{
			{ID: "n1", Front: "der Hund ist nicht zu Hause", Mod: 1},
			{ID: "n2", Front: "ich gehe mit dem Hund", Mod: 1},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "de", session.TargetLanguage)
}

func TestLoadMissingSession(t *testing.T) {
	ctx := context.Background()
	s := NewSessionStore(cache.NewMemory())

	session, err := s.Load(ctx, "alice", "Nope")
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestSessionKeySanitizesSpaces(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemory()
	s := NewSessionStore(store)

	require.NoError(t, s.Save(ctx, "alice", &models.DeckSession{DeckName: "My German Deck"}))
	_, ok, err := store.Get(ctx, "anki_session:alice:My_German_Deck")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDetectLanguageFallsBackToEnglish(t *testing.T) {
	assert.Equal(t, "en", DetectLanguage(nil))
	assert.Equal(t, "en", DetectLanguage([]models.Note{{Front: "zzz qqq"}}))
}

func TestPersistedFeaturesStableForEmptyFront(t *testing.T) {
	ctx := context.Background()
	s := NewSessionStore(cache.NewMemory())
	e := newTestEngine()

	session, err := s.Activate(ctx, "alice", models.DeckSession{
		DeckName: "Fruit",
		Notes: []models.Note{
			{ID: "n1", Front: "apple", Mod: 1},
			{ID: "n2", Front: "   ", Mod: 1},
		},
	})
	require.NoError(t, err)

	_, updated, changed := e.FindMatches("an apple a day", session.Notes, "en")
	require.True(t, changed)
	session.Notes = updated
	require.NoError(t, s.Save(ctx, "alice", &session))

	// The blank-front note's computed-but-empty features must survive the
	// cache round trip; a second pass over the reloaded session is a no-op.
	loaded, err := s.Load(ctx, "alice", "Fruit")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	for _, n := range loaded.Notes {
		assert.True(t, n.HasFeatures())
	}

	_, _, changed = e.FindMatches("another apple here", loaded.Notes, "en")
	assert.False(t, changed)
}
