package illustrate

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// 片段是模型对原文的复述，不保证逐字一致。定位走一个降级阶梯：
// 段落收尾的精确匹配 > 裸子串匹配 > 截断前缀匹配 > 放弃。
// 宁可落点糙一点也不轻易丢图。
const (
	truncatedPrefixLen = 15
	minPrefixLen       = 10
)

// Anchor 是文档标记文本中的插入位置（字节偏移）。
type Anchor struct {
	Offset int
}

// Locate 在文档标记中寻找片段的插入点。
// 片段来自纯文本投影，而文档是序列化后的标记：& < > 和引号在
// 文档里已经变成了实体。每一级匹配都把原始形态和实体转义形态各试一遍，
// 逐字片段不会因为含 & 之类的字符而凭空丢失。
func Locate(doc, snippet string) (Anchor, bool) {
	snippet = strings.TrimSpace(snippet)
	if snippet == "" {
		return Anchor{}, false
	}
	forms := candidateForms(snippet)

	// 1) 片段 + 任意非标签文本 + 段落闭合：插到 </p> 之后，
	//    图片落在它所说明的段落外面。
	for _, s := range forms {
		re := regexp.MustCompile(regexp.QuoteMeta(s) + `[^<]*</p>`)
		if loc := re.FindStringIndex(doc); loc != nil {
			return Anchor{Offset: loc[1]}, true
		}
	}

	// 2) 裸子串：插到片段末尾之后。可能落在标签附近的文本中间，可接受的退化。
	for _, s := range forms {
		if i := strings.Index(doc, s); i >= 0 {
			return Anchor{Offset: i + len(s)}, true
		}
	}

	// 3) 截断前缀重试。太短的前缀容易误命中，直接拒绝。
	runes := []rune(snippet)
	if len(runes) > truncatedPrefixLen {
		prefix := strings.TrimSpace(string(runes[:truncatedPrefixLen]))
		if utf8.RuneCountInString(prefix) >= minPrefixLen {
			for _, s := range candidateForms(prefix) {
				if i := strings.Index(doc, s); i >= 0 {
					return Anchor{Offset: i + len(s)}, true
				}
			}
		}
	}

	return Anchor{}, false
}

// candidateForms 给出片段的原始形态和实体转义形态。
// 转义用序列化器同一套规则，两边才能对得上。
func candidateForms(s string) []string {
	if esc := html.EscapeString(s); esc != s {
		return []string{s, esc}
	}
	return []string{s}
}

// Insert 在锚点处拼入片段，返回新文档。
func Insert(doc string, at Anchor, fragment string) string {
	if at.Offset < 0 || at.Offset > len(doc) {
		return doc
	}
	return doc[:at.Offset] + fragment + doc[at.Offset:]
}

var containerOpenRe = regexp.MustCompile(`^\s*<section[^>]*>`)

// Prepend 把片段放到文档正文最前面（封面图专用，不做任何查找）。
// 文档若已包在容器里，片段进容器内部而不是容器前面。
func Prepend(doc, fragment string) string {
	if loc := containerOpenRe.FindStringIndex(doc); loc != nil {
		return doc[:loc[1]] + fragment + doc[loc[1]:]
	}
	return fragment + doc
}
