package generator

import (
	"bytes"
	"errors"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

// wechatPolicy 把模型产出收敛到公众号能承载的标签子集，其余标记一律剥掉。
// 图片允许远程地址和 data URI（配图阶段会以 data URI 形式内嵌）。
var wechatPolicy = buildPolicy()

func buildPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("h1", "h2", "h3", "p", "strong", "b", "em", "u", "ul", "ol", "li", "br", "figure", "figcaption")
	p.AllowStandardURLs()
	p.AllowImages()
	p.AllowDataURIImages()
	return p
}

var leadHeadingRe = regexp.MustCompile(`(?s)<h1[^>]*>.*?</h1>`)

// PostProcess 校验模型输出并产出 Draft：抽标题、出摘要、转 HTML 并消毒。
func PostProcess(raw string, spec Spec) (Draft, error) {
	md := strings.TrimSpace(raw)
	if md == "" {
		return Draft{}, errors.New("model returned empty markdown")
	}

	title := extractTitle(md)
	if title == "" {
		title = spec.Topic
	}
	digest := extractDigest(md)
	if digest == "" {
		digest = defaultDigest(md, 120)
	}

	html, err := mdToHTML(md)
	if err != nil {
		return Draft{}, err
	}
	html = wechatPolicy.Sanitize(html)
	// 标题单独入库（公众号标题是独立字段），正文里不再保留 h1。
	if loc := leadHeadingRe.FindStringIndex(html); loc != nil {
		html = html[:loc[0]] + html[loc[1]:]
	}

	return Draft{
		Title:    title,
		Digest:   digest,
		Markdown: md,
		HTML:     strings.TrimSpace(html),
	}, nil
}

// PlaceholderDraft 在生成彻底失败时兜底，保证调用方拿到可渲染的正文。
func PlaceholderDraft(spec Spec) Draft {
	title := spec.Topic
	if title == "" {
		title = "内容生成失败"
	}
	return Draft{
		Title:       title,
		Digest:      "内容生成暂时失败，请稍后重试。",
		HTML:        `<p>内容生成暂时失败，请稍后重试，或调整主题与要求后重新生成。</p>`,
		Placeholder: true,
	}
}

func mdToHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func extractTitle(md string) string {
	re := regexp.MustCompile(`(?m)^#\s+(.+)$`)
	m := re.FindStringSubmatch(md)
	if len(m) >= 2 {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// 摘要取首段（去掉标题行）。
func extractDigest(md string) string {
	lines := strings.Split(md, "\n")
	var b strings.Builder
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		if strings.TrimSpace(line) == "" {
			if b.Len() > 0 {
				break
			}
			continue
		}
		b.WriteString(strings.TrimSpace(line))
		break
	}
	return b.String()
}

func defaultDigest(md string, limit int) string {
	compact := strings.Fields(md)
	joined := strings.Join(compact, " ")
	runes := []rune(joined)
	if len(runes) <= limit {
		return joined
	}
	return string(runes[:limit])
}
