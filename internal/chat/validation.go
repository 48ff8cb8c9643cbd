package chat

import (
	"context"
	"strings"

	"github.com/tandemchat/backend/internal/db"
	"github.com/tandemchat/backend/internal/deck"
	"github.com/tandemchat/backend/internal/logging"
	"github.com/tandemchat/backend/internal/models"
	"github.com/tandemchat/backend/internal/validate"
)

// Reviewer performs the asynchronous deck review for one message: lexical
// matching against the active deck session, validator confirmation, and the
// monotonic reviewed-flag update.
type Reviewer struct {
	sessions  *deck.SessionStore
	engine    *deck.Engine
	validator validate.Validator
	store     db.Store
}

// NewReviewer wires the reviewer's collaborators.
func NewReviewer(sessions *deck.SessionStore, engine *deck.Engine, validator validate.Validator, store db.Store) *Reviewer {
	return &Reviewer{
		sessions:  sessions,
		engine:    engine,
		validator: validator,
		store:     store,
	}
}

// Review matches msg against the user's active deck session and asks the
// validator to confirm the matches. It returns nil when there is no session,
// no lexical match, or nothing confirmed by the validator. A validator
// failure degrades to the fallback verdict, which confirms nothing.
func (r *Reviewer) Review(ctx context.Context, user, deckName string, msg *models.Message) (*models.MessageReview, error) {
	session, err := r.sessions.Load(ctx, user, deckName)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}

	matches, updated, featuresChanged := r.engine.FindMatches(msg.Content, session.Notes, session.EffectiveLanguage())
	if featuresChanged {
		session.Notes = updated
	}
	if len(matches) == 0 {
		if featuresChanged {
			if err := r.sessions.Save(ctx, user, session); err != nil {
				logging.Error("failed to persist deck session", err, map[string]interface{}{
					"user":      user,
					"deck_name": deckName,
				})
			}
		}
		return nil, nil
	}

	candidates := make([]models.TickedNote, 0, len(matches))
	for _, note := range matches {
		candidates = append(candidates, models.TickedNote{ID: note.ID, Word: note.Front})
	}

	result, err := r.validator.Validate(ctx, msg.Content, candidates, session.EffectiveLanguage())
	if err != nil {
		logging.Warn("validator unavailable, falling back", map[string]interface{}{
			"message_id": msg.ID,
			"error":      err.Error(),
		})
		result = validate.Fallback()
	}

	confirmed := confirmedNotes(candidates, result.ValidWords)
	if len(confirmed) == 0 {
		// Nothing confirmed, so no review exists. Refreshed features are
		// still worth keeping.
		if featuresChanged {
			if err := r.sessions.Save(ctx, user, session); err != nil {
				logging.Error("failed to persist deck session", err, map[string]interface{}{
					"user":      user,
					"deck_name": deckName,
				})
			}
		}
		return nil, nil
	}

	reviewChanged := markReviewed(session.Notes, confirmed)

	// Reconfirming already-reviewed notes performs no session write, the
	// broadcast still carries them.
	if featuresChanged || reviewChanged {
		if err := r.sessions.Save(ctx, user, session); err != nil {
			logging.Error("failed to persist deck session", err, map[string]interface{}{
				"user":      user,
				"deck_name": deckName,
			})
		}
	}

	review := &models.MessageReview{
		TickedNotes:   confirmed,
		MessageReview: result.Feedback,
		DeckName:      deckName,
	}
	if err := r.store.AttachMessageReview(msg.ID, review); err != nil {
		logging.Error("failed to attach message review", err, map[string]interface{}{
			"message_id": msg.ID,
		})
	}

	return review, nil
}

// confirmedNotes keeps the candidates whose surface text the validator
// confirmed, comparing case-insensitively.
func confirmedNotes(candidates []models.TickedNote, validWords []string) []models.TickedNote {
	valid := make(map[string]struct{}, len(validWords))
	for _, w := range validWords {
		valid[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}

	confirmed := make([]models.TickedNote, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := valid[strings.ToLower(c.Word)]; ok {
			confirmed = append(confirmed, c)
		}
	}
	return confirmed
}

// markReviewed flips is_reviewed on the confirmed notes and reports whether
// any flag actually changed. The flag never goes back to false here.
func markReviewed(notes []models.Note, confirmed []models.TickedNote) bool {
	ids := make(map[string]struct{}, len(confirmed))
	for _, c := range confirmed {
		ids[c.ID] = struct{}{}
	}

	changed := false
	for i := range notes {
		if _, ok := ids[notes[i].ID]; !ok {
			continue
		}
		if !notes[i].IsReviewed {
			notes[i].IsReviewed = true
			changed = true
		}
	}
	return changed
}
