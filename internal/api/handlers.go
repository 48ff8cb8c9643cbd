package api

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/tandemchat/backend/internal/cache"
	"github.com/tandemchat/backend/internal/db"
	"github.com/tandemchat/backend/internal/deck"
	"github.com/tandemchat/backend/internal/logging"
	"github.com/tandemchat/backend/internal/models"
)

// Handler holds the REST route handlers and their collaborators.
type Handler struct {
	store    db.Store
	views    *cache.Aside
	cache    cache.Store
	sessions *deck.SessionStore
}

// NewHandler creates a Handler.
func NewHandler(store db.Store, cacheStore cache.Store, sessions *deck.SessionStore) *Handler {
	return &Handler{
		store:    store,
		views:    cache.NewAside(cacheStore),
		cache:    cacheStore,
		sessions: sessions,
	}
}

// GetHistory handles GET /chat/history/{id}. The membership check runs on
// every request, including cache hits.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	conversationID := chi.URLParam(r, "id")

	conv, err := h.store.GetConversation(conversationID)
	if err != nil {
		logging.Error("failed to fetch conversation", err, map[string]interface{}{
			"conversation_id": conversationID,
		})
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if conv == nil {
		writeJSON(w, http.StatusNotFound, errorBody("conversation not found"))
		return
	}
	if !conv.HasParticipant(user) {
		writeJSON(w, http.StatusForbidden, errorBody("not a participant"))
		return
	}

	body, err := h.views.GetOrCompute(r.Context(), cache.ChatHistoryKey(conversationID), cache.ViewTTL,
		func(ctx context.Context) (string, error) {
			msgs, err := h.store.ListMessages(conversationID)
			if err != nil {
				return "", err
			}
			data, err := json.Marshal(map[string]interface{}{"messages": msgs})
			return string(data), err
		})
	if err != nil {
		logging.Error("failed to load chat history", err, map[string]interface{}{
			"conversation_id": conversationID,
		})
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeRawJSON(w, http.StatusOK, body)
}

type initiateRequest struct {
	Participants []string `json:"participants"`
	Type         string   `json:"type"`
	Name         string   `json:"name"`
}

func (req initiateRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Participants, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Type, validation.In(models.ConversationPrivate, models.ConversationGroup)),
	)
}

// InitiateConversation handles POST /chat/conversations/initiate. A private
// conversation between the same two users is deduplicated: initiating it
// again returns the existing one.
func (h *Handler) InitiateConversation(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req initiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if req.Type == "" {
		req.Type = models.ConversationPrivate
	}

	participants := withMember(req.Participants, user)
	sort.Strings(participants)

	if req.Type == models.ConversationPrivate {
		if len(participants) != 2 {
			writeJSON(w, http.StatusBadRequest, errorBody("private conversations have exactly two participants"))
			return
		}
		existing, err := h.store.FindPrivateConversation(participants[0], participants[1])
		if err != nil {
			logging.Error("failed to look up private conversation", err)
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
			return
		}
		if existing != nil {
			writeJSON(w, http.StatusOK, existing)
			return
		}
	} else if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("group conversations require a name"))
		return
	}

	conv := &models.Conversation{
		Participants: participants,
		Type:         req.Type,
		Name:         req.Name,
	}
	if req.Type == models.ConversationPrivate {
		conv.Admins = participants
	} else {
		conv.Admins = []string{user}
	}

	if err := h.store.CreateConversation(conv); err != nil {
		logging.Error("failed to create conversation", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	h.invalidateLists(r.Context(), conv.Participants)
	writeJSON(w, http.StatusCreated, conv)
}

// ListConversations handles GET /chat/conversations/list. The per-user view
// is cached; unread counts and display names are resolved for the viewer.
func (h *Handler) ListConversations(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	body, err := h.views.GetOrCompute(r.Context(), cache.UserConversationsKey(user), cache.ViewTTL,
		func(ctx context.Context) (string, error) {
			convs, err := h.store.ListConversationsFor(user)
			if err != nil {
				return "", err
			}
			unread, err := h.store.UnreadCounts(user)
			if err != nil {
				return "", err
			}

			summaries := make([]models.ConversationSummary, 0, len(convs))
			for _, conv := range convs {
				summaries = append(summaries, models.ConversationSummary{
					ID:                 conv.ID,
					Participants:       conv.Participants,
					Admins:             conv.Admins,
					Type:               conv.Type,
					Name:               displayName(&conv, user),
					CreatedAt:          conv.CreatedAt,
					LastMessagePreview: conv.LastMessagePreview,
					LastMessageAt:      conv.LastMessageAt,
					UnreadCount:        unread[conv.ID],
				})
			}
			data, err := json.Marshal(map[string]interface{}{"conversations": summaries})
			return string(data), err
		})
	if err != nil {
		logging.Error("failed to list conversations", err, map[string]interface{}{
			"user": user,
		})
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeRawJSON(w, http.StatusOK, body)
}

// DeleteConversation handles DELETE /chat/conversations/{id}. Admin only.
func (h *Handler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	conversationID := chi.URLParam(r, "id")

	conv, err := h.store.GetConversation(conversationID)
	if err != nil {
		logging.Error("failed to fetch conversation", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if conv == nil {
		writeJSON(w, http.StatusNotFound, errorBody("conversation not found"))
		return
	}
	if !conv.HasAdmin(user) {
		writeJSON(w, http.StatusForbidden, errorBody("not an admin"))
		return
	}

	if err := h.store.DeleteConversation(conversationID); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, errorBody("conversation not found"))
			return
		}
		logging.Error("failed to delete conversation", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	if err := h.cache.Delete(r.Context(), cache.ChatHistoryKey(conversationID)); err != nil {
		logging.Error("failed to invalidate history cache", err)
	}
	h.invalidateLists(r.Context(), conv.Participants)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// MarkRead handles POST /chat/conversations/{id}/read.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	conversationID := chi.URLParam(r, "id")

	conv, err := h.store.GetConversation(conversationID)
	if err != nil {
		logging.Error("failed to fetch conversation", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if conv == nil {
		writeJSON(w, http.StatusNotFound, errorBody("conversation not found"))
		return
	}
	if !conv.HasParticipant(user) {
		writeJSON(w, http.StatusForbidden, errorBody("not a participant"))
		return
	}

	if err := h.store.MarkRead(conversationID, user, time.Now().UTC()); err != nil {
		logging.Error("failed to mark conversation read", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	h.invalidateLists(r.Context(), []string{user})
	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

type activeDeckRequest struct {
	DeckName       string        `json:"deck_name"`
	TargetLanguage string        `json:"target_language"`
	Notes          []models.Note `json:"notes"`
}

func (req activeDeckRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.DeckName, validation.Required, validation.Length(1, 255)),
		validation.Field(&req.Notes, validation.Required),
	)
}

// ActiveDeck handles POST /anki/active-deck-persistence: it activates (or
// reconciles) the caller's deck session and returns the stored session.
func (h *Handler) ActiveDeck(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req activeDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	session, err := h.sessions.Activate(r.Context(), user, models.DeckSession{
		DeckName:       req.DeckName,
		TargetLanguage: req.TargetLanguage,
		Notes:          req.Notes,
	})
	if err != nil {
		logging.Error("failed to activate deck session", err, map[string]interface{}{
			"user":      user,
			"deck_name": req.DeckName,
		})
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *Handler) invalidateLists(ctx context.Context, users []string) {
	for _, u := range users {
		if err := h.cache.Delete(ctx, cache.UserConversationsKey(u)); err != nil {
			logging.Error("failed to invalidate conversation list cache", err, map[string]interface{}{
				"user": u,
			})
		}
	}
}

// displayName resolves a conversation's name for the viewing user: a group
// keeps its own name, a private conversation shows the other participant.
func displayName(conv *models.Conversation, viewer string) string {
	if conv.Type == models.ConversationGroup || conv.Name != "" {
		return conv.Name
	}
	for _, p := range conv.Participants {
		if p != viewer {
			return p
		}
	}
	return viewer
}

// withMember returns members with user added when absent.
func withMember(members []string, user string) []string {
	for _, m := range members {
		if m == user {
			return append([]string(nil), members...)
		}
	}
	out := make([]string, 0, len(members)+1)
	out = append(out, members...)
	return append(out, user)
}
