package models

import "time"

// Message is a single chat message. The review attachment is produced
// asynchronously after the message is persisted; message creation and
// review enrichment are two separate writes, never atomic.
type Message struct {
	ID             string         `json:"message_id"`
	ConversationID string         `json:"conversation_id"`
	Sender         string         `json:"sender"`
	Content        string         `json:"content"`
	Timestamp      time.Time      `json:"timestamp"`
	AnkiReview     *MessageReview `json:"anki_review,omitempty"`
}

// MessageReview is the deck-validation enrichment attached to a message
// once the asynchronous matcher/validator pass has confirmed note usage.
type MessageReview struct {
	TickedNotes   []TickedNote `json:"ticked_notes"`
	MessageReview string       `json:"message_review"`
	DeckName      string       `json:"deck_name"`
}

// PreviewLimit is the maximum rune length of a conversation's last-message
// preview before truncation.
const PreviewLimit = 10

// Preview returns content truncated for the conversation list sidebar.
func Preview(content string) string {
	runes := []rune(content)
	if len(runes) <= PreviewLimit {
		return content
	}
	return string(runes[:PreviewLimit]) + "..."
}
