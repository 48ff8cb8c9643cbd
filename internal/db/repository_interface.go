package db

import (
	"time"

	"github.com/tandemchat/backend/internal/models"
)

// Store is the persistence contract consumed by the message pipeline and
// the API layer. *Repository implements it; tests substitute fakes.
type Store interface {
	CreateConversation(conv *models.Conversation) error
	GetConversation(id string) (*models.Conversation, error)
	FindPrivateConversation(userA, userB string) (*models.Conversation, error)
	UpdateConversationActivity(conversationID, preview string, at time.Time) error
	DeleteConversation(id string) error
	ListConversationsFor(user string) ([]models.Conversation, error)

	InsertMessage(msg *models.Message) error
	AttachMessageReview(messageID string, review *models.MessageReview) error
	ListMessages(conversationID string) ([]models.Message, error)

	IncrementUnread(conversationID, user string, at time.Time) error
	MarkRead(conversationID, user string, at time.Time) error
	UnreadCounts(user string) (map[string]int, error)
}

var _ Store = (*Repository)(nil)
