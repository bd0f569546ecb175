package bot

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"fryerbot/internal/config"
	"fryerbot/internal/data/store"
	"fryerbot/internal/domain/jobModel"
	"fryerbot/pkg/logger_i"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type stubRagService struct {
	answer string
	fail   bool
	delay  time.Duration
}

func (s *stubRagService) ProcessRequest(ctx context.Context, j jobModel.Job, hist []string) jobModel.Job {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.fail {
		j.Status = jobModel.JobStatusError
		j.Error = jobModel.JobError{Message: "boom"}
		return j
	}
	j.JobPayload.Answer = s.answer
	j.JobPayload.Sources = []string{"Модель: X-500, Артикул: AF500"}
	j.CurrentStep = jobModel.Complete
	return j
}

func (s *stubRagService) IngestCatalog(ctx context.Context, j jobModel.Job) jobModel.Job {
	return j
}

func (s *stubRagService) CountDocuments(ctx context.Context) (uint64, error) {
	return 0, nil
}

type fakeSender struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.mu.Lock()
		f.sent = append(f.sent, msg.Text)
		f.mu.Unlock()
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) sentTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func testBot(rag *stubRagService) (*Bot, jobModel.MessageStore, *fakeSender) {
	messageStore := store.InitMessageStore()
	sender := &fakeSender{}
	return &Bot{
		tg:           sender,
		ragService:   rag,
		messageStore: messageStore,
		logger:       logger_i.NewLogger("bot test"),
	}, messageStore, sender
}

func incomingMessage(text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		Text: text,
		Chat: &tgbotapi.Chat{ID: 42},
		From: &tgbotapi.User{FirstName: "Анна"},
	}
}

func TestAnswer_SavesHistory(t *testing.T) {
	b, messageStore, _ := testBot(&stubRagService{answer: "У X-500 два ТЭНа."})
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "trace-1")

	answer, sources, err := b.answer(ctx, incomingMessage("Сколько ТЭНов у X-500?"))
	if err != nil {
		t.Fatalf("answer failed: %v", err)
	}
	if answer != "У X-500 два ТЭНа." {
		t.Errorf("Answer got %q", answer)
	}
	if sources != 1 {
		t.Errorf("Sources got %d, want 1", sources)
	}

	// chat key exists and holds the exchange even without /start
	err, history := messageStore.GetMessageHistory(ctx, chatKey(42))
	if err != nil {
		t.Fatalf("GetMessageHistory failed: %v", err)
	}
	if len(history) != 1 || !strings.Contains(history[0], "Сколько ТЭНов у X-500?") {
		t.Errorf("Unexpected history: %v", history)
	}
}

func TestAnswer_PipelineError(t *testing.T) {
	b, messageStore, _ := testBot(&stubRagService{fail: true})
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "trace-2")

	_, _, err := b.answer(ctx, incomingMessage("вопрос"))
	if err == nil {
		t.Fatal("Expected error from failing pipeline")
	}

	err, history := messageStore.GetMessageHistory(ctx, chatKey(42))
	if err != nil {
		t.Fatalf("GetMessageHistory failed: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("Failed exchanges must not land in history, got %v", history)
	}
}

func TestReplyTexts(t *testing.T) {
	if !strings.Contains(failureReply, "Извините") {
		t.Error("Failure reply must apologize in Russian")
	}
	if !strings.Contains(welcomeTemplate, "%s") {
		t.Error("Welcome template must greet the user by name")
	}
}

func TestChatKey(t *testing.T) {
	if chatKey(-1001234) != "-1001234" {
		t.Errorf("chatKey got %s", chatKey(-1001234))
	}
}

func commandMessage(text string) *tgbotapi.Message {
	msg := incomingMessage(text)
	msg.Entities = []tgbotapi.MessageEntity{
		{Type: "bot_command", Offset: 0, Length: len(strings.Fields(text)[0])},
	}
	return msg
}

func TestHandleMessage_StartCommand(t *testing.T) {
	b, messageStore, sender := testBot(&stubRagService{answer: "не должно дойти"})

	b.handleMessage(context.Background(), commandMessage("/start"))

	sent := sender.sentTexts()
	if len(sent) != 1 || !strings.Contains(sent[0], "Привет, Анна") {
		t.Fatalf("Expected a welcome greeting, got %v", sent)
	}
	if !messageStore.ValidateChatId(context.Background(), chatKey(42)) {
		t.Error("/start must initialize the chat history")
	}
}

func TestHandleMessage_UnknownCommandAnswered(t *testing.T) {
	b, _, sender := testBot(&stubRagService{answer: "X-500 вмещает 5 литров."})

	// unknown commands are treated as regular questions, not dropped
	b.handleMessage(context.Background(), commandMessage("/help"))

	sent := sender.sentTexts()
	if len(sent) != 1 || sent[0] != "X-500 вмещает 5 литров." {
		t.Fatalf("Unknown command should get a pipeline answer, got %v", sent)
	}
}

func TestDispatch_WaitsForInFlightHandlers(t *testing.T) {
	b, _, sender := testBot(&stubRagService{answer: "готово", delay: 150 * time.Millisecond})

	updates := make(chan tgbotapi.Update, 1)
	updates <- tgbotapi.Update{Message: incomingMessage("вопрос")}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.dispatch(ctx, updates)
		close(done)
	}()

	// let the update get picked up, then shut down mid-answer
	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch did not return after cancellation")
	}

	sent := sender.sentTexts()
	if len(sent) != 1 || sent[0] != "готово" {
		t.Fatalf("Shutdown must wait for the in-flight answer, got %v", sent)
	}
}
