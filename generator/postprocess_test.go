package generator

import (
	"strings"
	"testing"
)

func TestPostProcess(t *testing.T) {
	raw := "# 我的标题\n\n这是摘要段落，概述全文要点。\n\n## 小节\n\n正文内容，**加粗**词和[链接](https://example.com)。\n"
	draft, err := PostProcess(raw, Spec{Topic: "话题"})
	if err != nil {
		t.Fatal(err)
	}
	if draft.Title != "我的标题" {
		t.Errorf("title: got %q", draft.Title)
	}
	if draft.Digest != "这是摘要段落，概述全文要点。" {
		t.Errorf("digest: got %q", draft.Digest)
	}
	if strings.Contains(draft.HTML, "<h1") {
		t.Errorf("h1 must be extracted from body:\n%s", draft.HTML)
	}
	if !strings.Contains(draft.HTML, "<h2>小节</h2>") {
		t.Errorf("h2 missing:\n%s", draft.HTML)
	}
	if !strings.Contains(draft.HTML, "<strong>加粗</strong>") {
		t.Errorf("strong missing:\n%s", draft.HTML)
	}
	// 链接标签被剥掉，文字保留。
	if strings.Contains(draft.HTML, "<a ") || strings.Contains(draft.HTML, "<a>") {
		t.Errorf("anchor tag should be stripped:\n%s", draft.HTML)
	}
	if !strings.Contains(draft.HTML, "链接") {
		t.Errorf("anchor text should survive:\n%s", draft.HTML)
	}
}

// 模型偶尔会在 markdown 里夹带裸 HTML，策略必须兜底：
// div/span 剥壳留文字，script 连内容一起扔。
func TestWechatPolicyStripsDisallowedTags(t *testing.T) {
	raw := `<div><span>甲</span>乙</div><script>alert(1)</script><p>丙<strong>丁</strong></p>`
	got := wechatPolicy.Sanitize(raw)
	for _, tag := range []string{"<div", "<span", "<script"} {
		if strings.Contains(got, tag) {
			t.Errorf("%s should be stripped:\n%s", tag, got)
		}
	}
	if strings.Contains(got, "alert") {
		t.Errorf("script body must not survive:\n%s", got)
	}
	if !strings.Contains(got, "甲") || !strings.Contains(got, "乙") {
		t.Errorf("text inside stripped containers should survive:\n%s", got)
	}
	if !strings.Contains(got, "<p>丙<strong>丁</strong></p>") {
		t.Errorf("allowed tags disturbed:\n%s", got)
	}
}

func TestPostProcessEmpty(t *testing.T) {
	if _, err := PostProcess("   \n", Spec{}); err == nil {
		t.Fatal("want error on empty output")
	}
}

func TestPostProcessTitleFallsBackToTopic(t *testing.T) {
	draft, err := PostProcess("没有标题的正文段落。", Spec{Topic: "备选标题"})
	if err != nil {
		t.Fatal(err)
	}
	if draft.Title != "备选标题" {
		t.Errorf("title: got %q, want topic fallback", draft.Title)
	}
}

func TestDefaultDigestRuneTruncation(t *testing.T) {
	got := defaultDigest("一二三四五六七八", 5)
	if got != "一二三四五" {
		t.Errorf("got %q", got)
	}
}

func TestPlaceholderDraft(t *testing.T) {
	draft := PlaceholderDraft(Spec{Topic: "主题"})
	if !draft.Placeholder {
		t.Error("placeholder flag not set")
	}
	if draft.Title != "主题" {
		t.Errorf("title: got %q", draft.Title)
	}
	if !strings.Contains(draft.HTML, "<p>") {
		t.Errorf("placeholder must be renderable markup: %q", draft.HTML)
	}
}
