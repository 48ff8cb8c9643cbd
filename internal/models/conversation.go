package models

import "time"

// Conversation types.
const (
	ConversationPrivate = "private"
	ConversationGroup   = "group"
)

// Conversation represents a direct or group chat. Participants and admins
// are usernames; admins are authorized to delete the conversation and
// mutate membership.
type Conversation struct {
	ID           string    `json:"id"`
	Participants []string  `json:"participants"`
	Admins       []string  `json:"admins"`
	Type         string    `json:"type"`
	Name         string    `json:"name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`

	// Aggregate fields derived from the most recent message.
	LastMessagePreview string     `json:"last_message_preview,omitempty"`
	LastMessageAt      *time.Time `json:"last_message_at,omitempty"`
}

// HasParticipant reports whether user is a member of the conversation.
func (c *Conversation) HasParticipant(user string) bool {
	for _, p := range c.Participants {
		if p == user {
			return true
		}
	}
	return false
}

// HasAdmin reports whether user may administer the conversation.
func (c *Conversation) HasAdmin(user string) bool {
	for _, a := range c.Admins {
		if a == user {
			return true
		}
	}
	return false
}

// ConversationSummary is the per-user inbox view of a conversation: the
// display name is resolved for the viewing user and the unread count comes
// from that user's conversation state.
type ConversationSummary struct {
	ID                 string     `json:"id"`
	Participants       []string   `json:"participants"`
	Admins             []string   `json:"admins"`
	Type               string     `json:"type"`
	Name               string     `json:"name"`
	CreatedAt          time.Time  `json:"created_at"`
	LastMessagePreview string     `json:"last_message_preview,omitempty"`
	LastMessageAt      *time.Time `json:"last_message_at,omitempty"`
	UnreadCount        int        `json:"unread_count"`
}
