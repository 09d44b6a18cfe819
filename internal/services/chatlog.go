package services

import (
	"context"
	"time"

	"liveshop/internal/domain"
	"liveshop/pkg/logger"
)

// ChatLog keeps the most recent chat messages in arrival order, capped at
// a fixed size with oldest-first eviction. The in-memory buffer is the fast
// path; writes to the repository lag behind and may fail without affecting
// live behavior.
type ChatLog struct {
	repo domain.ChatRepository
	max  int
	buf  []*domain.ChatMessage
	log  logger.Logger
}

const persistTimeout = 5 * time.Second

func NewChatLog(repo domain.ChatRepository, max int, log logger.Logger) *ChatLog {
	return &ChatLog{
		repo: repo,
		max:  max,
		log:  log,
	}
}

// LoadInitial fills the buffer with the most recent stored messages.
func (c *ChatLog) LoadInitial(ctx context.Context) error {
	msgs, err := c.repo.LoadRecent(ctx, c.max)
	if err != nil {
		return err
	}
	c.buf = msgs
	return nil
}

// Append pushes to the tail, evicting from the head past capacity, and
// persists in the background.
func (c *ChatLog) Append(msg *domain.ChatMessage) {
	c.buf = append(c.buf, msg)
	if len(c.buf) > c.max {
		c.buf = c.buf[len(c.buf)-c.max:]
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := c.repo.Append(ctx, msg); err != nil {
			c.log.Error("Failed to persist chat message", "user", msg.User, "error", err)
		}
	}()
}

// Snapshot returns a copy of the current buffer, oldest first.
func (c *ChatLog) Snapshot() []*domain.ChatMessage {
	out := make([]*domain.ChatMessage, len(c.buf))
	copy(out, c.buf)
	return out
}

func (c *ChatLog) Len() int {
	return len(c.buf)
}
