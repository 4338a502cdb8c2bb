// Package studio 把生成、排版、配图、朗读四个阶段串成一条流水线。
// 各阶段对稿件的所有权是单向传递的：排版和配图就地改写正文，
// 朗读只读最终文本。
package studio

import (
	"context"

	"go.uber.org/zap"

	"auto_wechat_article_studio/formatter"
	"auto_wechat_article_studio/generator"
	"auto_wechat_article_studio/illustrate"
	"auto_wechat_article_studio/narration"
)

// Options 控制流水线行为。
type Options struct {
	// Illustrations 是期望的插图数量（含封面）。0 表示不配图。
	Illustrations int
	// ChunkLimit 是朗读分段的字符上限，0 用默认值。
	ChunkLimit int
}

// Studio 是对外的流水线入口，server 和 CLI 共用。
type Studio struct {
	agent     *generator.Agent
	formatter *formatter.Formatter
	planner   *illustrate.Planner
	narrator  *narration.Pipeline
	opts      Options
	log       *zap.SugaredLogger
}

func New(llm generator.LLMClient, image generator.ImageClient, speech generator.SpeechClient, opts Options, log *zap.SugaredLogger) (*Studio, error) {
	agent, err := generator.NewAgent(llm)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Studio{
		agent:     agent,
		formatter: formatter.New(nil),
		planner:   illustrate.NewPlanner(llm, image, nil, log),
		narrator:  narration.NewPipeline(speech, opts.ChunkLimit, log),
		opts:      opts,
		log:       log,
	}, nil
}

// NewSession 建一个尚未出稿的会话。
func (st *Studio) NewSession(id string, spec generator.Spec) *generator.Session {
	return generator.NewSession(id, spec, st.agent)
}

// Propose 出首稿并做富化。生成彻底失败时退化为固定的占位稿件，
// 调用方总能拿到可渲染的正文。
func (st *Studio) Propose(ctx context.Context, sess *generator.Session) generator.Draft {
	draft, err := sess.Propose(ctx)
	if err != nil {
		st.log.Errorw("article generation failed, falling back to placeholder", "session", sess.ID, "err", err)
		draft = generator.PlaceholderDraft(sess.Spec)
		sess.SetDraft(draft)
		return draft
	}
	return st.enrich(ctx, sess, draft)
}

// Revise 按用户评论修订并重新富化。修订失败保留上一版稿件并返回错误。
func (st *Studio) Revise(ctx context.Context, sess *generator.Session, comment string) (generator.Draft, error) {
	draft, err := sess.Revise(ctx, comment)
	if err != nil {
		return generator.Draft{}, err
	}
	return st.enrich(ctx, sess, draft), nil
}

// enrich 先整体排版再配图。配图失败（包括计划不完整）不拖垮整篇文章，
// 只是产出一篇没有插图的排版稿。
func (st *Studio) enrich(ctx context.Context, sess *generator.Session, draft generator.Draft) generator.Draft {
	normalized, err := st.formatter.Normalize(draft.HTML)
	if err != nil {
		st.log.Errorw("formatting failed, keeping raw html", "session", sess.ID, "err", err)
		normalized = draft.HTML
	}
	draft.HTML = normalized

	if st.opts.Illustrations > 0 {
		illustrated, err := st.planner.Illustrate(ctx, draft.HTML, st.opts.Illustrations)
		if err != nil {
			st.log.Errorw("illustration failed, keeping article without images", "session", sess.ID, "err", err)
		} else {
			draft.HTML = illustrated
		}
	}

	sess.SetDraft(draft)
	return draft
}

// Narrate 为当前正文产出朗读分段，只读不改稿。
func (st *Studio) Narrate(ctx context.Context, doc string) []narration.Segment {
	return st.narrator.Narrate(ctx, formatter.PlainText(doc))
}
