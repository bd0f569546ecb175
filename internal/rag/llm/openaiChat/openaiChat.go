package openaiChat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"fryerbot/internal/config"
	"fryerbot/internal/rag/llm"
	"fryerbot/pkg/logger_i"

	goopenai "github.com/sashabaranov/go-openai"
)

type llmClient struct {
	openAI       *goopenai.Client
	modelName    string
	systemPrompt string
	temperature  float32
	maxTokens    int
}

var logger *logger_i.Logger
var chatClient *llmClient
var once sync.Once

func GetOpenAIChatClient(modelName string, apikey string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_openai")
		newChatClient(modelName, apikey)
	})

	if chatClient == nil {
		return nil
	}
	return chatClient
}

func newChatClient(modelName string, apikey string) {
	if apikey == "" {
		logger.Error("OpenAI API key is empty")
		return
	}

	cfg := goopenai.DefaultConfig(apikey)
	cfg.HTTPClient = &http.Client{Timeout: config.OpenAITimeout()}

	chatClient = &llmClient{
		openAI:       goopenai.NewClientWithConfig(cfg),
		modelName:    modelName,
		systemPrompt: config.SystemPrompt(),
		temperature:  config.OpenAITemperature(),
		maxTokens:    config.OpenAIMaxTokens(),
	}
	logger.Info("OpenAI chat client created", "model", modelName)
}

func (c *llmClient) Generate(ctx context.Context, userQuery string, matches []string, messageHistory []string) (string, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	resp, err := c.openAI.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       c.modelName,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: c.systemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: BuildUserPrompt(userQuery, matches, messageHistory)},
		},
	})
	if err != nil {
		log.Error("Chat completion failed", "error", err.Error())
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in chat completion response")
	}

	return resp.Choices[0].Message.Content, nil
}

// BuildUserPrompt folds the retrieved context and the recent conversation
// into a single user message. Prompt text is Russian to match the knowledge
// base and the system prompt.
func BuildUserPrompt(userQuery string, matches []string, messageHistory []string) string {
	var b strings.Builder

	if len(messageHistory) > 0 {
		b.WriteString("История диалога:\n")
		b.WriteString(strings.Join(messageHistory, "\n"))
		b.WriteString("\n\n")
	}

	context := "Контекст не найден."
	if len(matches) > 0 {
		context = strings.Join(matches, "\n\n")
	}

	b.WriteString(fmt.Sprintf("Контекст:\n%s\n\nВопрос: %s", context, userQuery))
	return b.String()
}
