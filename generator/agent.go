package generator

import (
	"context"
	"errors"
)

// Agent 把一次生成请求串起来：选提示词、调模型、清洗产出。
// 返回的 Draft 已经过 PostProcess，标题抽离、HTML 只剩白名单标签。
type Agent struct {
	llm LLMClient
}

func NewAgent(llm LLMClient) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	return &Agent{llm: llm}, nil
}

// Generate 产出一份可直接进排版管线的稿件。
// prevDraft 为 nil 时走首稿提示词，否则带着历史和评论走修订提示词。
func (a *Agent) Generate(ctx context.Context, spec Spec, prevDraft *Draft, history []Turn, comment string) (Draft, error) {
	raw, err := a.llm.Complete(ctx, buildPrompt(spec, prevDraft, comment, history))
	if err != nil {
		return Draft{}, err
	}
	return PostProcess(raw, spec)
}

func buildPrompt(spec Spec, prev *Draft, comment string, history []Turn) Prompt {
	if prev == nil {
		return BuildInitialPrompt(spec)
	}
	return BuildRevisionPrompt(spec, *prev, comment, history)
}
