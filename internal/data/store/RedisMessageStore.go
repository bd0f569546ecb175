package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"fryerbot/internal/config"
	"fryerbot/internal/data/redisStore"
	"fryerbot/internal/domain/jobModel"
	"fryerbot/pkg/logger_i"
)

// historyDepth is how many past exchanges feed the LLM as conversation
// context.
const historyDepth = 5

type RedisMessageStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisMessageStore(ctx context.Context) *RedisMessageStore {
	internal := redisStore.GetRedisStore(ctx, config.RedisMessageStore)
	if internal == nil {
		return nil
	}
	return &RedisMessageStore{
		store:  internal,
		logger: logger_i.NewLogger("MessageStore"),
	}
}

func (s *RedisMessageStore) ValidateChatId(ctx context.Context, chatId string) bool {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", chatId)
	isFound, err := s.store.Exists(ctx, chatId)
	if s.store.IsNil(err) {
		return false
	} else if err != nil {
		log.Error("Failed to check if chatId exists", "err", err)
		return false
	}
	return isFound
}

func (s *RedisMessageStore) TrySaveChat(ctx context.Context, id string, conversation jobModel.JobPayload) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", id)
	if !s.ValidateChatId(ctx, id) {
		err := errors.New("invalid chat id")
		log.Error("Failed Validation before saving", "err", err)
		return err
	}
	return s.saveChat(ctx, id, conversation)
}

func (s *RedisMessageStore) saveChat(ctx context.Context, id string, conversation jobModel.JobPayload) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", id)
	err := s.store.ListPush(ctx, id, marshallJson(conversation, s.logger))
	if err != nil {
		log.Error("error saving chat", "error:", err)
		return err
	}
	// refresh the sliding window on every write
	if err := s.store.Expire(ctx, id, config.RedisMessageStoreTTL); err != nil {
		log.Error("error refreshing chat TTL", "error:", err)
	}
	log.Debug("Saved chat successfully")
	return nil
}

func (s *RedisMessageStore) InitNewChat(ctx context.Context, id string) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", id)
	log.Debug("Initializing new chat")
	if err := s.store.Del(ctx, id); err != nil && !s.store.IsNil(err) {
		log.Error("Error resetting chat", "error:", err)
	}
	return s.saveChat(ctx, id, jobModel.JobPayload{})
}

func (s *RedisMessageStore) GetMessageHistory(ctx context.Context, chatId string) (error, []string) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", chatId)

	res, err := s.store.ListGetLast(ctx, chatId, historyDepth)
	if err != nil {
		log.Error("Error getting history", "error:", err)
		return err, nil
	}
	return nil, FormatHistory(res)
}

// FormatHistory renders stored payloads as question/answer lines the LLM
// prompt can embed directly. Placeholder entries (empty question) from chat
// initialization are skipped.
func FormatHistory(rawEntries []string) []string {
	var history []string
	for _, raw := range rawEntries {
		var payload jobModel.JobPayload
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			continue
		}
		if payload.Question == "" {
			continue
		}
		history = append(history, fmt.Sprintf("Вопрос: %s\nОтвет: %s", payload.Question, payload.Answer))
	}
	return history
}

func marshallJson(payload jobModel.JobPayload, logger *logger_i.Logger) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Error marshalling json :", "error", err)
	}
	return data
}

func TestMessageStore(store *redisStore.Store) *RedisMessageStore {
	return &RedisMessageStore{
		store:  store,
		logger: logger_i.NewLogger("test redis"),
	}
}
