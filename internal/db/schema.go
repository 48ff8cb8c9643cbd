package db

// Schema is applied idempotently at startup. Participants and admins live
// in a membership table rather than a serialized list so broadcast and
// authorization lookups stay indexable.
const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	id TEXT PRIMARY KEY,
	type TEXT NOT NULL CHECK(type IN ('private', 'group')),
	name TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL,
	last_message_preview TEXT NOT NULL DEFAULT '',
	last_message_at INTEGER
);

CREATE TABLE IF NOT EXISTS conversation_members (
	conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
	user TEXT NOT NULL,
	is_admin INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (conversation_id, user)
);

CREATE INDEX IF NOT EXISTS idx_members_user ON conversation_members(user);

CREATE TABLE IF NOT EXISTS messages (
	id TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
	sender TEXT NOT NULL,
	content TEXT NOT NULL,
	timestamp INTEGER NOT NULL,
	anki_review TEXT
);

CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, timestamp);

CREATE TABLE IF NOT EXISTS conversation_states (
	conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
	user TEXT NOT NULL,
	unread_count INTEGER NOT NULL DEFAULT 0,
	last_read_at INTEGER,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (conversation_id, user)
);
`

// Migrate applies the schema to the database.
func (db *DB) Migrate() error {
	_, err := db.Exec(schema)
	return err
}
