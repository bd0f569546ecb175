package config

import "testing"

func TestDefaults(t *testing.T) {
	if got := OpenAIModel(); got != DefaultOpenAIModel {
		t.Errorf("OpenAIModel got %s, want %s", got, DefaultOpenAIModel)
	}
	if got := CollectionName(); got != DefaultCollectionName {
		t.Errorf("CollectionName got %s, want %s", got, DefaultCollectionName)
	}
	if got := RAGTopK(); got != DefaultTopK {
		t.Errorf("RAGTopK got %d, want %d", got, DefaultTopK)
	}
	if got := RAGScoreThreshold(); got != DefaultScoreThreshold {
		t.Errorf("RAGScoreThreshold got %f, want %f", got, float32(DefaultScoreThreshold))
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("RAG_TOP_K", "7")
	t.Setenv("RAG_SCORE_THRESHOLD", "0.55")

	if got := OpenAIModel(); got != "gpt-4o" {
		t.Errorf("OpenAIModel got %s, want gpt-4o", got)
	}
	if got := RAGTopK(); got != 7 {
		t.Errorf("RAGTopK got %d, want 7", got)
	}
	if got := RAGScoreThreshold(); got != 0.55 {
		t.Errorf("RAGScoreThreshold got %f, want 0.55", got)
	}
}

func TestEnvOverrides_BadValuesFallBack(t *testing.T) {
	t.Setenv("RAG_TOP_K", "many")
	t.Setenv("RAG_SCORE_THRESHOLD", "high")

	if got := RAGTopK(); got != DefaultTopK {
		t.Errorf("RAGTopK got %d, want default %d", got, DefaultTopK)
	}
	if got := RAGScoreThreshold(); got != DefaultScoreThreshold {
		t.Errorf("RAGScoreThreshold got %f, want default", got)
	}
}

func TestValidateBotEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	if err := ValidateBotEnv(); err == nil {
		t.Error("Expected error with no OPENAI_API_KEY")
	}

	t.Setenv("OPENAI_API_KEY", "sk-test")
	if err := ValidateBotEnv(); err == nil {
		t.Error("Expected error with no TELEGRAM_BOT_TOKEN")
	}

	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	if err := ValidateBotEnv(); err != nil {
		t.Errorf("Expected valid env, got %v", err)
	}
}
