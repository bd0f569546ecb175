package openaiChat

import (
	"strings"
	"testing"
)

func TestBuildUserPrompt_FullContext(t *testing.T) {
	matches := []string{
		"Документ 1 (релевантность: 0.91):\nМодель: X-500",
		"Документ 2 (релевантность: 0.84):\nМодель: X-700",
	}
	history := []string{"Вопрос: q1\nОтвет: a1"}

	prompt := BuildUserPrompt("Какой выбрать?", matches, history)

	if !strings.HasPrefix(prompt, "История диалога:\n") {
		t.Errorf("History must lead the prompt, got: %s", prompt)
	}
	if !strings.Contains(prompt, "Контекст:\nДокумент 1") {
		t.Errorf("Context block missing: %s", prompt)
	}
	if !strings.HasSuffix(prompt, "Вопрос: Какой выбрать?") {
		t.Errorf("Question must close the prompt, got: %s", prompt)
	}
}

func TestBuildUserPrompt_NoHistory(t *testing.T) {
	prompt := BuildUserPrompt("q", []string{"doc"}, nil)

	if strings.Contains(prompt, "История диалога") {
		t.Errorf("Empty history must not render a history block: %s", prompt)
	}
	if !strings.HasPrefix(prompt, "Контекст:\ndoc") {
		t.Errorf("Prompt must start with the context block: %s", prompt)
	}
}

func TestBuildUserPrompt_NoMatches(t *testing.T) {
	prompt := BuildUserPrompt("q", nil, nil)

	if !strings.Contains(prompt, "Контекст не найден.") {
		t.Errorf("Empty search result needs the explicit no-context marker: %s", prompt)
	}
}
