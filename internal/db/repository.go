package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/tandemchat/backend/internal/models"
	"github.com/tandemchat/backend/internal/uuid"
)

// Repository provides persistence operations for conversations, messages
// and per-user conversation state.
//
// Frequently executed statements are prepared on first use and cached to
// avoid repeated SQL parsing; message inserts and conversation lookups run
// on every chat message.
type Repository struct {
	db *DB

	stmtCache sync.Map // map[string]*sql.Stmt
}

// NewRepository creates a new Repository instance.
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// prepareStmt gets or creates a prepared statement from cache.
func (r *Repository) prepareStmt(query string) (*sql.Stmt, error) {
	if stmt, ok := r.stmtCache.Load(query); ok {
		return stmt.(*sql.Stmt), nil
	}

	stmt, err := r.db.Prepare(query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}

	actual, loaded := r.stmtCache.LoadOrStore(query, stmt)
	if loaded {
		// Another goroutine already prepared this, close our duplicate.
		stmt.Close()
		return actual.(*sql.Stmt), nil
	}
	return stmt, nil
}

// Close closes all cached prepared statements.
func (r *Repository) Close() error {
	var firstErr error
	r.stmtCache.Range(func(_, value interface{}) bool {
		if err := value.(*sql.Stmt).Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		return true
	})
	return firstErr
}

// =====================================================
// Conversation Operations
// =====================================================

// CreateConversation inserts a conversation and its membership rows,
// assigning an identity and creation time.
func (r *Repository) CreateConversation(conv *models.Conversation) error {
	conv.ID = uuid.New()
	conv.CreatedAt = time.Now().UTC()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO conversations (id, type, name, created_at) VALUES (?, ?, ?, ?)`,
		conv.ID, conv.Type, conv.Name, conv.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return err
	}

	for _, user := range conv.Participants {
		_, err = tx.Exec(
			`INSERT INTO conversation_members (conversation_id, user, is_admin) VALUES (?, ?, ?)`,
			conv.ID, user, boolToInt(conv.HasAdmin(user)),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetConversation fetches a conversation with its participants and admins.
// Returns (nil, nil) when no such conversation exists; the pipeline treats
// a missing conversation as a silent skip, not an error.
func (r *Repository) GetConversation(id string) (*models.Conversation, error) {
	stmt, err := r.prepareStmt(
		`SELECT id, type, name, created_at, last_message_preview, last_message_at
		 FROM conversations WHERE id = ?`,
	)
	if err != nil {
		return nil, err
	}

	conv := &models.Conversation{}
	var createdAt int64
	var lastAt sql.NullInt64
	err = stmt.QueryRow(id).Scan(&conv.ID, &conv.Type, &conv.Name, &createdAt,
		&conv.LastMessagePreview, &lastAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	conv.CreatedAt = time.UnixMilli(createdAt).UTC()
	if lastAt.Valid {
		at := time.UnixMilli(lastAt.Int64).UTC()
		conv.LastMessageAt = &at
	}

	memberStmt, err := r.prepareStmt(
		`SELECT user, is_admin FROM conversation_members WHERE conversation_id = ? ORDER BY user`,
	)
	if err != nil {
		return nil, err
	}
	rows, err := memberStmt.Query(id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var user string
		var isAdmin int
		if err := rows.Scan(&user, &isAdmin); err != nil {
			return nil, err
		}
		conv.Participants = append(conv.Participants, user)
		if isAdmin != 0 {
			conv.Admins = append(conv.Admins, user)
		}
	}
	return conv, rows.Err()
}

// FindPrivateConversation returns an existing direct conversation with
// exactly the given two participants, or nil.
func (r *Repository) FindPrivateConversation(userA, userB string) (*models.Conversation, error) {
	row := r.db.QueryRow(
		`SELECT c.id FROM conversations c
		 JOIN conversation_members m1 ON m1.conversation_id = c.id AND m1.user = ?
		 JOIN conversation_members m2 ON m2.conversation_id = c.id AND m2.user = ?
		 WHERE c.type = 'private'
		 LIMIT 1`,
		userA, userB,
	)
	var id string
	if err := row.Scan(&id); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return r.GetConversation(id)
}

// UpdateConversationActivity sets the conversation's last-message preview
// and timestamp aggregates.
func (r *Repository) UpdateConversationActivity(conversationID, preview string, at time.Time) error {
	_, err := r.db.Exec(
		`UPDATE conversations SET last_message_preview = ?, last_message_at = ? WHERE id = ?`,
		preview, at.UnixMilli(), conversationID,
	)
	return err
}

// DeleteConversation removes a conversation; membership, messages and
// states cascade.
func (r *Repository) DeleteConversation(id string) error {
	res, err := r.db.Exec(`DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return err
}

// ListConversationsFor returns every conversation the user belongs to,
// most recently active first.
func (r *Repository) ListConversationsFor(user string) ([]models.Conversation, error) {
	rows, err := r.db.Query(
		`SELECT c.id FROM conversations c
		 JOIN conversation_members m ON m.conversation_id = c.id
		 WHERE m.user = ?
		 ORDER BY COALESCE(c.last_message_at, 0) DESC, c.created_at DESC`,
		user,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var out []models.Conversation
	for _, id := range ids {
		conv, err := r.GetConversation(id)
		if err != nil {
			return nil, err
		}
		if conv != nil {
			out = append(out, *conv)
		}
	}
	return out, nil
}

// =====================================================
// Message Operations
// =====================================================

// InsertMessage appends a message to its conversation, assigning identity
// and timestamp.
func (r *Repository) InsertMessage(msg *models.Message) error {
	msg.ID = uuid.New()
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	stmt, err := r.prepareStmt(
		`INSERT INTO messages (id, conversation_id, sender, content, timestamp) VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	_, err = stmt.Exec(msg.ID, msg.ConversationID, msg.Sender, msg.Content, msg.Timestamp.UnixMilli())
	return err
}

// AttachMessageReview stores the deck-validation enrichment on an already
// persisted message. This is deliberately a separate write from message
// creation.
func (r *Repository) AttachMessageReview(messageID string, review *models.MessageReview) error {
	raw, err := json.Marshal(review)
	if err != nil {
		return err
	}
	res, err := r.db.Exec(`UPDATE messages SET anki_review = ? WHERE id = ?`, string(raw), messageID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return err
}

// ListMessages returns the conversation history in timestamp order.
func (r *Repository) ListMessages(conversationID string) ([]models.Message, error) {
	rows, err := r.db.Query(
		`SELECT id, conversation_id, sender, content, timestamp, anki_review
		 FROM messages WHERE conversation_id = ? ORDER BY timestamp ASC, id ASC`,
		conversationID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Message
	for rows.Next() {
		var msg models.Message
		var ts int64
		var review sql.NullString
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Sender, &msg.Content, &ts, &review); err != nil {
			return nil, err
		}
		msg.Timestamp = time.UnixMilli(ts).UTC()
		if review.Valid && review.String != "" {
			var mr models.MessageReview
			if err := json.Unmarshal([]byte(review.String), &mr); err == nil {
				msg.AnkiReview = &mr
			}
		}
		out = append(out, msg)
	}
	return out, rows.Err()
}

// =====================================================
// Conversation State Operations
// =====================================================

// IncrementUnread bumps the unread counter for (conversation, user) and
// stamps the activity time, creating the state row if absent.
func (r *Repository) IncrementUnread(conversationID, user string, at time.Time) error {
	stmt, err := r.prepareStmt(
		`INSERT INTO conversation_states (conversation_id, user, unread_count, updated_at)
		 VALUES (?, ?, 1, ?)
		 ON CONFLICT(conversation_id, user)
		 DO UPDATE SET unread_count = unread_count + 1, updated_at = excluded.updated_at`,
	)
	if err != nil {
		return err
	}
	_, err = stmt.Exec(conversationID, user, at.UnixMilli())
	return err
}

// MarkRead zeroes the unread counter and records the read time.
func (r *Repository) MarkRead(conversationID, user string, at time.Time) error {
	_, err := r.db.Exec(
		`INSERT INTO conversation_states (conversation_id, user, unread_count, last_read_at, updated_at)
		 VALUES (?, ?, 0, ?, ?)
		 ON CONFLICT(conversation_id, user)
		 DO UPDATE SET unread_count = 0, last_read_at = excluded.last_read_at, updated_at = excluded.updated_at`,
		conversationID, user, at.UnixMilli(), at.UnixMilli(),
	)
	return err
}

// UnreadCounts returns the user's unread counter per conversation id.
func (r *Repository) UnreadCounts(user string) (map[string]int, error) {
	rows, err := r.db.Query(
		`SELECT conversation_id, unread_count FROM conversation_states WHERE user = ?`, user,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
