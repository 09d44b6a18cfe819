package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"liveshop/internal/domain"
	"liveshop/pkg/logger"
)

type stubChatRepo struct {
	mu     sync.Mutex
	stored []*domain.ChatMessage
}

func (s *stubChatRepo) Append(ctx context.Context, msg *domain.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stored = append(s.stored, msg)
	return nil
}

func (s *stubChatRepo) LoadRecent(ctx context.Context, limit int) ([]*domain.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.stored) > limit {
		return s.stored[len(s.stored)-limit:], nil
	}
	return s.stored, nil
}

func TestChatLog_CapsAtFiftyInOrder(t *testing.T) {
	chat := NewChatLog(&stubChatRepo{}, 50, logger.Nop())

	for i := 0; i < 60; i++ {
		chat.Append(&domain.ChatMessage{User: "alice", Text: fmt.Sprintf("msg-%d", i)})
	}

	snap := chat.Snapshot()
	if len(snap) != 50 {
		t.Fatalf("expected 50 messages after 60 appends, got %d", len(snap))
	}
	for i, msg := range snap {
		want := fmt.Sprintf("msg-%d", i+10)
		if msg.Text != want {
			t.Fatalf("snapshot[%d] = %q, want %q", i, msg.Text, want)
		}
	}
}

func TestChatLog_LoadInitialFillsBuffer(t *testing.T) {
	repo := &stubChatRepo{}
	for i := 0; i < 3; i++ {
		repo.stored = append(repo.stored, &domain.ChatMessage{Text: fmt.Sprintf("old-%d", i)})
	}

	chat := NewChatLog(repo, 50, logger.Nop())
	if err := chat.LoadInitial(context.Background()); err != nil {
		t.Fatalf("LoadInitial failed: %v", err)
	}
	if chat.Len() != 3 {
		t.Fatalf("expected 3 messages, got %d", chat.Len())
	}
}

func TestChatLog_SnapshotIsDetached(t *testing.T) {
	chat := NewChatLog(&stubChatRepo{}, 50, logger.Nop())
	chat.Append(&domain.ChatMessage{Text: "first"})

	snap := chat.Snapshot()
	snap[0] = &domain.ChatMessage{Text: "mutated"}

	if chat.Snapshot()[0].Text != "first" {
		t.Error("mutating a snapshot must not affect the log")
	}
}
