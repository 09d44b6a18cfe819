package mysql

import (
	"context"
	"database/sql"
	"time"

	"liveshop/internal/domain"
)

type MySQLChatRepository struct {
	db *sql.DB
}

func NewMySQLChatRepository(db *sql.DB) *MySQLChatRepository {
	return &MySQLChatRepository{db: db}
}

func (r *MySQLChatRepository) Append(ctx context.Context, msg *domain.ChatMessage) error {
	query := `
        INSERT INTO chat_messages (user, text, time, created_at)
        VALUES (?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query, msg.User, msg.Text, msg.Time, time.Now())
	return err
}

// LoadRecent returns the newest messages in chronological order.
func (r *MySQLChatRepository) LoadRecent(ctx context.Context, limit int) ([]*domain.ChatMessage, error) {
	query := `
        SELECT user, text, time FROM (
            SELECT id, user, text, time FROM chat_messages ORDER BY id DESC LIMIT ?
        ) recent ORDER BY id ASC
    `

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []*domain.ChatMessage
	for rows.Next() {
		var msg domain.ChatMessage
		if err := rows.Scan(&msg.User, &msg.Text, &msg.Time); err != nil {
			return nil, err
		}
		msgs = append(msgs, &msg)
	}

	return msgs, rows.Err()
}
