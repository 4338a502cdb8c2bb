package generator

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type brokenLLM struct{}

func (brokenLLM) Complete(context.Context, Prompt) (string, error) {
	return "", errors.New("model unavailable")
}

func (brokenLLM) CompleteJSON(context.Context, Prompt, string, map[string]any) (string, error) {
	return "", errors.New("model unavailable")
}

func TestNewAgentRequiresClient(t *testing.T) {
	if _, err := NewAgent(nil); err == nil {
		t.Fatal("want error on nil llm client")
	}
}

func TestAgentGenerateProducesCleanDraft(t *testing.T) {
	agent, err := NewAgent(MockLLM{})
	if err != nil {
		t.Fatal(err)
	}
	draft, err := agent.Generate(context.Background(), Spec{Topic: "测试主题"}, nil, nil, "")
	if err != nil {
		t.Fatal(err)
	}
	if draft.Title == "" {
		t.Error("title must be extracted")
	}
	if strings.Contains(draft.HTML, "<h1") {
		t.Errorf("h1 must not remain in body:\n%s", draft.HTML)
	}
	if draft.Markdown == "" {
		t.Error("raw markdown should be kept on the draft")
	}
}

func TestAgentGenerateSurfacesModelError(t *testing.T) {
	agent, err := NewAgent(brokenLLM{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := agent.Generate(context.Background(), Spec{Topic: "t"}, nil, nil, ""); err == nil {
		t.Fatal("want model error surfaced")
	}
}

func TestBuildPromptRoutesRevision(t *testing.T) {
	prev := Draft{Title: "旧题", HTML: "<p>旧文</p>"}
	p := buildPrompt(Spec{Topic: "t"}, &prev, "再短一点", nil)
	if !strings.Contains(p.User, "再短一点") {
		t.Errorf("revision comment missing from prompt:\n%s", p.User)
	}
	if first := buildPrompt(Spec{Topic: "t"}, nil, "", nil); strings.Contains(first.User, "再短一点") {
		t.Error("initial prompt should not carry a revision comment")
	}
}
