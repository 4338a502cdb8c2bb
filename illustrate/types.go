package illustrate

// PlacementPlan 描述一张待生成的插图：放置位置提示 + 生图提示词。
// 由文本分析模型产出；约定首条为封面，封面不需要定位片段。
type PlacementPlan struct {
	IsCover        bool   `json:"is_cover"`
	ContextSnippet string `json:"context_snippet"`
	ImagePrompt    string `json:"image_prompt"`
}

// InsertionResult 记录一条计划的落点结果，用于日志与统计。
type InsertionResult struct {
	Placed bool
	Reason string
}
