package store_test

import (
	"context"
	"strings"
	"testing"

	"fryerbot/internal/config"
	"fryerbot/internal/data/redisStore"
	"fryerbot/internal/data/store"
	"fryerbot/internal/domain/jobModel"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestMessageStore(t *testing.T) *store.RedisMessageStore {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return store.TestMessageStore(redisStore.NewTestStore(client))
}

func TestRedisMessageStore_ChatLifecycle(t *testing.T) {
	messageStore := newTestMessageStore(t)
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
	chatId := "chat-42"

	t.Run("Unknown chat is invalid", func(t *testing.T) {
		if messageStore.ValidateChatId(ctx, chatId) {
			t.Error("Expected unknown chat id to be invalid")
		}
	})

	t.Run("TrySaveChat refuses unknown chat", func(t *testing.T) {
		err := messageStore.TrySaveChat(ctx, chatId, jobModel.JobPayload{Question: "q"})
		if err == nil {
			t.Error("Expected error saving into an uninitialized chat")
		}
	})

	t.Run("InitNewChat makes the chat valid", func(t *testing.T) {
		if err := messageStore.InitNewChat(ctx, chatId); err != nil {
			t.Fatalf("InitNewChat failed: %v", err)
		}
		if !messageStore.ValidateChatId(ctx, chatId) {
			t.Error("Chat should be valid after init")
		}
	})

	t.Run("History skips the init placeholder", func(t *testing.T) {
		err, history := messageStore.GetMessageHistory(ctx, chatId)
		if err != nil {
			t.Fatalf("GetMessageHistory failed: %v", err)
		}
		if len(history) != 0 {
			t.Errorf("Expected empty history right after init, got %v", history)
		}
	})

	t.Run("Saved exchanges come back formatted", func(t *testing.T) {
		payload := jobModel.JobPayload{
			Question: "Сколько ТЭНов у X-500?",
			Answer:   "У модели X-500 два ТЭНа.",
		}
		if err := messageStore.TrySaveChat(ctx, chatId, payload); err != nil {
			t.Fatalf("TrySaveChat failed: %v", err)
		}

		err, history := messageStore.GetMessageHistory(ctx, chatId)
		if err != nil {
			t.Fatalf("GetMessageHistory failed: %v", err)
		}
		if len(history) != 1 {
			t.Fatalf("Expected 1 history entry, got %d", len(history))
		}
		if !strings.Contains(history[0], "Вопрос: Сколько ТЭНов у X-500?") ||
			!strings.Contains(history[0], "Ответ: У модели X-500 два ТЭНа.") {
			t.Errorf("Unexpected history format: %s", history[0])
		}
	})

	t.Run("InitNewChat resets the history", func(t *testing.T) {
		if err := messageStore.InitNewChat(ctx, chatId); err != nil {
			t.Fatalf("InitNewChat failed: %v", err)
		}
		err, history := messageStore.GetMessageHistory(ctx, chatId)
		if err != nil {
			t.Fatalf("GetMessageHistory failed: %v", err)
		}
		if len(history) != 0 {
			t.Errorf("Expected history to be reset, got %v", history)
		}
	})
}

func TestFormatHistory(t *testing.T) {
	raw := []string{
		`{"question":"","answer":""}`,
		`{"question":"q1","answer":"a1"}`,
		`not json`,
		`{"question":"q2","answer":"a2"}`,
	}

	history := store.FormatHistory(raw)

	if len(history) != 2 {
		t.Fatalf("Expected 2 entries, got %d: %v", len(history), history)
	}
	if history[0] != "Вопрос: q1\nОтвет: a1" {
		t.Errorf("Unexpected formatting: %s", history[0])
	}
}
