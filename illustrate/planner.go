package illustrate

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"auto_wechat_article_studio/formatter"
	"auto_wechat_article_studio/generator"
)

// ErrPlanIncomplete 表示分析阶段没有给满请求的插图计划。
// 计划阶段是整个配图调用里唯一 fail-fast 的环节。
var ErrPlanIncomplete = errors.New("illustrate: analysis returned fewer plans than requested")

const coverAspectRatio = "16:9"

// 生图提示词模板。顶部/底部留白是下游裁剪的硬性要求，不是审美偏好。
const imagePromptTemplate = "%s。构图要求：横向全幅画面，主体居中且占画面比例较小，顶部与底部各预留约 25%% 可延展的纯净背景（后续裁剪需要），整体风格统一、色调柔和，画面中不出现任何文字或水印。"

// Planner 负责整条配图链路：请计划 → 生图 → 按计划落点拼入文档。
type Planner struct {
	llm    generator.LLMClient
	image  generator.ImageClient
	styles formatter.StyleTable
	log    *zap.SugaredLogger
}

func NewPlanner(llm generator.LLMClient, image generator.ImageClient, styles formatter.StyleTable, log *zap.SugaredLogger) *Planner {
	if styles == nil {
		styles = formatter.DefaultStyles
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Planner{llm: llm, image: image, styles: styles, log: log}
}

// Illustrate 往文档里放最多 count 张插图，返回改写后的文档。
// 单张图的失败（生图失败、找不到落点）只丢掉那一张；
// 计划请求本身失败才会让整个调用报错。
func (p *Planner) Illustrate(ctx context.Context, doc string, count int) (string, error) {
	if count <= 0 {
		return doc, nil
	}

	plans, err := p.plan(ctx, formatter.PlainText(doc), count)
	if err != nil {
		return "", err
	}

	// 生图可以并发，拼接必须串行：后面的落点要在已含前面插图的文档上计算。
	images := make([][]byte, len(plans))
	errs := make([]error, len(plans))
	var wg sync.WaitGroup
	for i, plan := range plans {
		wg.Add(1)
		go func(i int, plan PlacementPlan) {
			defer wg.Done()
			images[i], errs[i] = p.image.GenerateImage(ctx, fmt.Sprintf(imagePromptTemplate, plan.ImagePrompt), coverAspectRatio)
		}(i, plan)
	}
	wg.Wait()

	placed := 0
	for i, plan := range plans {
		res := p.splice(&doc, i, plan, images[i], errs[i])
		if res.Placed {
			placed++
		} else {
			p.log.Warnw("illustration skipped", "index", i, "reason", res.Reason)
		}
	}
	p.log.Infow("illustration done", "requested", count, "placed", placed)
	return doc, nil
}

func (p *Planner) splice(doc *string, i int, plan PlacementPlan, img []byte, genErr error) InsertionResult {
	if genErr != nil {
		return InsertionResult{Reason: fmt.Sprintf("image generation failed: %v", genErr)}
	}
	if len(img) == 0 {
		return InsertionResult{Reason: "image payload empty"}
	}

	frag := p.figureFragment(img)
	if plan.IsCover || i == 0 {
		*doc = Prepend(*doc, frag)
		return InsertionResult{Placed: true}
	}
	if strings.TrimSpace(plan.ContextSnippet) == "" {
		return InsertionResult{Reason: "plan has no context snippet"}
	}
	at, ok := Locate(*doc, plan.ContextSnippet)
	if !ok {
		return InsertionResult{Reason: fmt.Sprintf("anchor not found for snippet %.30q", plan.ContextSnippet)}
	}
	*doc = Insert(*doc, at, frag)
	return InsertionResult{Placed: true}
}

// figureFragment 产出一个自带样式的图片段落。样式取自排版表，
// 因为拼接发生在整体排版之后，片段必须自己长成排版后的样子。
func (p *Planner) figureFragment(img []byte) string {
	src := "data:image/png;base64," + base64.StdEncoding.EncodeToString(img)
	return fmt.Sprintf(`<p style="%s"><img src="%s" alt="" style="%s"/></p>`,
		p.styles.Inline("figure"), src, p.styles.Inline("img"))
}

// --- planning ---

type planResponse struct {
	Plans []PlacementPlan `json:"plans"`
}

var planSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"plans": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"is_cover":        map[string]any{"type": "boolean"},
					"context_snippet": map[string]any{"type": "string"},
					"image_prompt":    map[string]any{"type": "string"},
				},
				"required":             []string{"is_cover", "context_snippet", "image_prompt"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []string{"plans"},
	"additionalProperties": false,
}

// plan 请求文本分析模型给出恰好 count 条插图计划。少于 count 视为分析失败。
func (p *Planner) plan(ctx context.Context, plain string, count int) ([]PlacementPlan, error) {
	raw, err := p.llm.CompleteJSON(ctx, buildPlanPrompt(plain, count), "illustration_plans", planSchema)
	if err != nil {
		return nil, fmt.Errorf("illustrate: planning request failed: %w", err)
	}

	var resp planResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("illustrate: planning response not valid JSON: %w", err)
	}
	if len(resp.Plans) < count {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrPlanIncomplete, len(resp.Plans), count)
	}
	// 多给的计划直接裁掉，每个槽位一条。
	return resp.Plans[:count], nil
}

func buildPlanPrompt(plain string, count int) generator.Prompt {
	var sb strings.Builder
	sb.WriteString("你是一名图文编辑，为文章规划插图。\n")
	sb.WriteString(fmt.Sprintf("- 恰好给出 %d 条计划，第一条必须是封面图（is_cover=true），其余 is_cover=false。\n", count))
	sb.WriteString("- 封面的 context_snippet 留空；其余每条的 context_snippet 必须是正文中逐字出现的一句话，插图会放在这句话所在段落之后。\n")
	sb.WriteString("- image_prompt 用一两句话描述画面内容，不要出现人名、品牌和文字。\n")

	return generator.Prompt{
		System: sb.String(),
		User:   fmt.Sprintf("文章全文：\n%s", plain),
	}
}
