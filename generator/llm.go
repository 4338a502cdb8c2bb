package generator

import "context"

// LLMClient 抽象大模型文本客户端，便于替换/Mock。
type LLMClient interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
	// CompleteJSON 走结构化输出（json_schema），返回严格符合 schema 的 JSON 文本。
	CompleteJSON(ctx context.Context, prompt Prompt, schemaName string, schema map[string]any) (string, error)
}

// ImageClient 生成单张位图。aspectRatio 形如 "16:9"，由实现映射到具体尺寸。
type ImageClient interface {
	GenerateImage(ctx context.Context, prompt, aspectRatio string) ([]byte, error)
}

// SpeechClient 合成语音，返回裸 PCM（s16le、24000 Hz、单声道）。
type SpeechClient interface {
	GenerateSpeech(ctx context.Context, text string) ([]byte, error)
}

// LLMSettings 提供给具体实现的基础配置。
type LLMSettings struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	ImageModel  string
	SpeechModel string
	Voice       string
}
