package chat

import (
	"time"

	"github.com/tandemchat/backend/internal/models"
)

// Inbound envelope types.
const (
	TypeChatMessage    = "chat_message"
	TypePing           = "ping"
	TypePong           = "pong"
	TypeLearningUpdate = "learning_update"
)

// Envelope is the typed inbound websocket frame. Type defaults to
// chat_message when absent for older clients.
type Envelope struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id,omitempty"`
	Content        string `json:"content,omitempty"`
	DeckName       string `json:"deck_name,omitempty"`
}

// ChatBroadcast is the outbound frame for a delivered chat message.
type ChatBroadcast struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id"`
	From           string `json:"from"`
	Content        string `json:"content"`
	Timestamp      string `json:"timestamp"`
}

// LearningUpdate is the outbound frame for an asynchronous review result.
type LearningUpdate struct {
	Type          string              `json:"type"`
	TickedNotes   []models.TickedNote `json:"ticked_notes"`
	MessageReview string              `json:"message_review"`
	DeckName      string              `json:"deck_name"`
	Learner       string              `json:"learner"`
	Timestamp     string              `json:"timestamp"`
}

// PongFrame answers an inbound ping.
type PongFrame struct {
	Type string `json:"type"`
}

func newChatBroadcast(msg *models.Message) ChatBroadcast {
	return ChatBroadcast{
		Type:           TypeChatMessage,
		ConversationID: msg.ConversationID,
		From:           msg.Sender,
		Content:        msg.Content,
		Timestamp:      msg.Timestamp.UTC().Format(time.RFC3339),
	}
}

func newLearningUpdate(learner string, review *models.MessageReview) LearningUpdate {
	return LearningUpdate{
		Type:          TypeLearningUpdate,
		TickedNotes:   review.TickedNotes,
		MessageReview: review.MessageReview,
		DeckName:      review.DeckName,
		Learner:       learner,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}
}
