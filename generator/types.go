package generator

import "time"

// Spec describes the intended article before 生成/修订。
type Spec struct {
	Topic       string
	Outline     []string
	Tone        string
	Audience    string
	Words       int
	Constraints []string
}

// Draft is the 模型产出的稿件。Markdown 为模型原始输出；HTML 为清洗后的正文
// （标题已抽出，不再包含 h1），后续排版/配图/朗读都基于 HTML 进行。
type Draft struct {
	Title    string
	Digest   string
	Markdown string
	HTML     string
	// Placeholder 标记生成彻底失败时返回的兜底稿件。
	Placeholder bool
}

// Turn 记录一次评论驱动的修订。
type Turn struct {
	Comment   string
	Draft     Draft
	Summary   string
	CreatedAt time.Time
}
