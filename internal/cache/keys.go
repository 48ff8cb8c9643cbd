package cache

import "strings"

// Key builders for the three key families. Kept in one place so the
// invalidation call sites and the read sites cannot drift apart.

// DeckSessionKey is the per-user-per-deck learning state key. Spaces in
// deck names are not allowed in keys and are replaced with underscores.
func DeckSessionKey(user, deckName string) string {
	return "anki_session:" + user + ":" + strings.ReplaceAll(deckName, " ", "_")
}

// ChatHistoryKey caches the rendered history view of one conversation.
func ChatHistoryKey(conversationID string) string {
	return "chat_history:" + conversationID
}

// UserConversationsKey caches one user's conversation-list view.
func UserConversationsKey(user string) string {
	return "user_conversations:" + user
}
