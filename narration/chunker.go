package narration

import (
	"strings"
	"unicode/utf8"
)

// DefaultChunkLimit 是单个朗读分段的默认字符上限。
const DefaultChunkLimit = 300

// 句终符：中英文标点 + 换行，终止符保留在所属句子末尾。
const sentenceTerminators = "。！？；.?!;\n"

// Chunk 把整段文本按句切开后贪心合并成不超过 limit 字的分段。
// 单句超过 limit 不再细切（分段可以超限，这是策略不是缺陷）；
// 空白输入产出零个分段。纯函数，不保留任何状态。
func Chunk(text string, limit int) []string {
	if limit <= 0 {
		limit = DefaultChunkLimit
	}

	var chunks []string
	cur := ""
	for _, s := range splitSentences(text) {
		if cur != "" && utf8.RuneCountInString(cur)+utf8.RuneCountInString(s) > limit {
			if strings.TrimSpace(cur) != "" {
				chunks = append(chunks, cur)
			}
			cur = s
			continue
		}
		cur += s
	}
	if strings.TrimSpace(cur) != "" {
		chunks = append(chunks, cur)
	}
	return chunks
}

func splitSentences(text string) []string {
	var out []string
	var b strings.Builder
	for _, r := range text {
		b.WriteRune(r)
		if strings.ContainsRune(sentenceTerminators, r) {
			out = append(out, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		out = append(out, b.String())
	}
	return out
}
