package bot

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"fryerbot/internal/adapter/utils"
	"fryerbot/internal/config"
	"fryerbot/internal/domain/jobModel"
	"fryerbot/internal/metrics"
	"fryerbot/internal/rag"
	"fryerbot/pkg/logger_i"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const welcomeTemplate = `👋 Привет, %s! Я помощник по подбору аэрогрилей.

Помогу:
• подобрать модель по объёму, мощности или количеству ТЭНов
• сравнить несколько моделей
• рассказать о программах и функциях
• подобрать аксессуары

Напишите, что вы ищете.`

const failureReply = "Извините, произошла ошибка при обработке вашего запроса. " +
	"Попробуйте переформулировать вопрос или попробуйте позже."

// Bot polls Telegram and answers every text message through the RAG
// pipeline. Unlike the admin panel it skips the job queue, a chat message
// wants one synchronous answer, not a job id to poll.
type Bot struct {
	api          *tgbotapi.BotAPI
	tg           telegramSender
	ragService   rag.Service
	messageStore jobModel.MessageStore
	logger       *logger_i.Logger
}

// telegramSender is the slice of the Bot API the message handlers touch.
type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

func New(token string, ragService rag.Service, messageStore jobModel.MessageStore) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth failed: %w", err)
	}
	return &Bot{
		api:          api,
		tg:           api,
		ragService:   ragService,
		messageStore: messageStore,
		logger:       logger_i.NewLogger("TelegramBot"),
	}, nil
}

// Run blocks on long polling until the context is cancelled. Each message
// is handled in its own goroutine so one slow LLM call doesn't stall the
// rest of the chat.
func (b *Bot) Run(ctx context.Context) {
	b.logger.Info("Bot is polling", "username", b.api.Self.UserName)

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = config.TelegramPollTimeout

	b.dispatch(ctx, b.api.GetUpdatesChan(updateConfig))
	b.logger.Info("Bot stopped")
}

// dispatch fans updates out to per-message goroutines. On shutdown it stops
// polling and waits for the in-flight handlers, so answers and history
// writes already underway are not lost.
func (b *Bot) dispatch(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	var inFlight sync.WaitGroup
	for {
		select {
		case <-ctx.Done():
			if b.api != nil {
				b.api.StopReceivingUpdates()
			}
			inFlight.Wait()
			return
		case update := <-updates:
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			message := update.Message
			inFlight.Add(1)
			go func() {
				defer inFlight.Done()
				b.handleMessage(context.WithoutCancel(ctx), message)
			}()
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	traceId := utils.GetNewUUID()
	ctx = context.WithValue(ctx, config.TRACE_ID_KEY, traceId)
	log := b.logger.With("traceId", traceId, "chatId", message.Chat.ID)

	if message.IsCommand() && message.Command() == "start" {
		b.handleStart(ctx, message, log)
		return
	}
	// any other command falls through and is answered like plain text

	// typing indicator while the pipeline runs
	if _, err := b.tg.Request(tgbotapi.NewChatAction(message.Chat.ID, tgbotapi.ChatTyping)); err != nil {
		log.Warn("Failed to send typing action", "err", err)
	}

	answer, sources, err := b.answer(ctx, message)
	if err != nil {
		log.Error("Failed to answer message", "err", err)
		metrics.CountBotMessage("failed")
		b.reply(message.Chat.ID, failureReply, log)
		return
	}

	metrics.CountBotMessage("answered")
	log.Info("Answer sent", "sources", sources)
	b.reply(message.Chat.ID, answer, log)
}

func (b *Bot) handleStart(ctx context.Context, message *tgbotapi.Message, log *logger_i.Logger) {
	chatId := chatKey(message.Chat.ID)
	if err := b.messageStore.InitNewChat(ctx, chatId); err != nil {
		log.Error("Failed to init chat history", "err", err)
	}
	metrics.CountBotMessage("start")
	b.reply(message.Chat.ID, fmt.Sprintf(welcomeTemplate, message.From.FirstName), log)
}

func (b *Bot) answer(ctx context.Context, message *tgbotapi.Message) (string, int, error) {
	chatId := chatKey(message.Chat.ID)

	// users can message without /start, make sure the history key exists
	if !b.messageStore.ValidateChatId(ctx, chatId) {
		if err := b.messageStore.InitNewChat(ctx, chatId); err != nil {
			b.logger.Error("Failed to init chat history", "err", err)
		}
	}

	err, history := b.messageStore.GetMessageHistory(ctx, chatId)
	if err != nil {
		b.logger.Error("Failed to get message history", "err", err)
	}

	job := jobModel.Job{
		Id:          utils.GetNewUUID(),
		ChatId:      chatId,
		TraceId:     ctx.Value(config.TRACE_ID_KEY).(string),
		JobType:     jobModel.JobTypeQuery,
		CreatedTime: time.Now(),
		Status:      jobModel.JobStatusRunning,
		CurrentStep: jobModel.UserQueryInit,
	}
	job.JobPayload.Question = message.Text

	job = b.ragService.ProcessRequest(ctx, job, history)
	if job.Status == jobModel.JobStatusError {
		return "", 0, fmt.Errorf("pipeline failed: %s", job.Error.Message)
	}

	if err := b.messageStore.TrySaveChat(ctx, chatId, job.JobPayload); err != nil {
		b.logger.Error("Failed to save chat history", "err", err)
	}

	return job.JobPayload.Answer, len(job.JobPayload.Sources), nil
}

func (b *Bot) reply(chatID int64, text string, log *logger_i.Logger) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.tg.Send(msg); err != nil {
		log.Error("Failed to send reply", "err", err)
	}
}

func chatKey(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}
