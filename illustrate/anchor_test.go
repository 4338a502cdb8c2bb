package illustrate

import (
	"strings"
	"testing"
)

func TestLocateAfterParagraphClose(t *testing.T) {
	doc := `<p>前文。目标片段在这里，后面还有别的话。</p><p>下一段。</p>`
	at, ok := Locate(doc, "目标片段在这里")
	if !ok {
		t.Fatal("locate failed")
	}
	want := strings.Index(doc, "</p>") + len("</p>")
	if at.Offset != want {
		t.Errorf("offset: got %d, want %d (after first </p>)", at.Offset, want)
	}
}

func TestLocateBareSubstring(t *testing.T) {
	// 片段出现在文本里但没有段落闭合跟随：退化为片段末尾之后。
	doc := `<div>目标片段在这里，后面没有闭合段落`
	at, ok := Locate(doc, "目标片段在这里")
	if !ok {
		t.Fatal("locate failed")
	}
	want := strings.Index(doc, "目标片段在这里") + len("目标片段在这里")
	if at.Offset != want {
		t.Errorf("offset: got %d, want %d", at.Offset, want)
	}
}

func TestLocateTruncatedPrefix(t *testing.T) {
	snippet := "abcdefghijklmnopqrstuvwxy" // 25 chars
	doc := `<p>abcdefghijklmno and then something else</p>`
	at, ok := Locate(doc, snippet)
	if !ok {
		t.Fatal("locate failed, want truncated-prefix match")
	}
	want := strings.Index(doc, "abcdefghijklmno") + 15
	if at.Offset != want {
		t.Errorf("offset: got %d, want %d", at.Offset, want)
	}
}

func TestLocateShortPrefixRejected(t *testing.T) {
	snippet := "abcdefghijklmnopqrstuvwxy"
	// 文档中只出现前 8 个字符，15 字前缀找不到，不再进一步截短。
	doc := `<p>abcdefgh stops here</p>`
	if _, ok := Locate(doc, snippet); ok {
		t.Fatal("locate succeeded, want not found")
	}
}

// 纯文本投影里的 & 在序列化文档里是 &amp;：逐字片段仍要能命中段落闭合匹配。
func TestLocateEscapedEntitySnippet(t *testing.T) {
	doc := `<p>Tom &amp; Jerry ran far away together.</p><p>Next.</p>`
	at, ok := Locate(doc, "Tom & Jerry ran far away together.")
	if !ok {
		t.Fatal("locate failed on entity-escaped document")
	}
	want := strings.Index(doc, "</p>") + len("</p>")
	if at.Offset != want {
		t.Errorf("offset: got %d, want %d (after first </p>)", at.Offset, want)
	}
}

func TestLocateEscapedEntityBareSubstring(t *testing.T) {
	doc := `<div>速度 &lt;100ms 才算达标，这里没有段落闭合`
	at, ok := Locate(doc, "速度 <100ms 才算达标")
	if !ok {
		t.Fatal("locate failed on escaped bare substring")
	}
	want := strings.Index(doc, "速度 &lt;100ms 才算达标") + len("速度 &lt;100ms 才算达标")
	if at.Offset != want {
		t.Errorf("offset: got %d, want %d", at.Offset, want)
	}
}

func TestLocateEscapedTruncatedPrefix(t *testing.T) {
	snippet := `A & B plus more trailing words here` // 前 15 字符含 &
	doc := `<p>A &amp; B plus more only</p>`
	if _, ok := Locate(doc, snippet); !ok {
		t.Fatal("locate failed, want escaped truncated-prefix match")
	}
}

func TestLocateEmptySnippet(t *testing.T) {
	if _, ok := Locate("<p>anything</p>", "  "); ok {
		t.Fatal("locate succeeded on blank snippet")
	}
}

func TestInsert(t *testing.T) {
	doc := "<p>a</p><p>b</p>"
	got := Insert(doc, Anchor{Offset: 8}, "<img/>")
	if got != "<p>a</p><img/><p>b</p>" {
		t.Errorf("got %q", got)
	}
}

func TestPrependPlainDocument(t *testing.T) {
	got := Prepend("<p>body</p>", "<img/>")
	if got != "<img/><p>body</p>" {
		t.Errorf("got %q", got)
	}
}

func TestPrependEntersContainer(t *testing.T) {
	doc := `<section data-tool="article-studio" style="x"><p>body</p></section>`
	got := Prepend(doc, "<img/>")
	want := `<section data-tool="article-studio" style="x"><img/><p>body</p></section>`
	if got != want {
		t.Errorf("got %q\nwant %q", got, want)
	}
}
