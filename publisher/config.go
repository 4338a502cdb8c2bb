package publisher

import (
	"encoding/json"
	"os"
)

// Config holds the WeChat app credentials plus pipeline settings.
// 发布凭据允许为空：只生成不发布的场景不需要公众号账号。
type Config struct {
	AppID     string `json:"app_id,omitempty"`
	AppSecret string `json:"app_secret,omitempty"`
	// APIBaseURL 覆盖微信接口域名（走代理或测试时用），空值用官方域名。
	APIBaseURL string     `json:"api_base_url,omitempty"`
	ServerAddr string     `json:"server_addr,omitempty"`
	LogMode    string     `json:"log_mode,omitempty"`
	LLM        *LLMConfig `json:"llm,omitempty"`
	// Illustrations 是每篇文章期望的插图数量（含封面）。
	Illustrations int `json:"illustrations,omitempty"`
	// ChunkLimit 是朗读分段的字符上限，0 用默认 300。
	ChunkLimit int `json:"chunk_limit,omitempty"`
}

// LLMConfig 是生成模块的模型配置。api_key_env 指向环境变量名，
// 优先级高于明文 api_key。
type LLMConfig struct {
	Provider    string `json:"provider,omitempty"`
	Model       string `json:"model,omitempty"`
	APIKey      string `json:"api_key,omitempty"`
	APIKeyEnv   string `json:"api_key_env,omitempty"`
	BaseURL     string `json:"base_url,omitempty"`
	ImageModel  string `json:"image_model,omitempty"`
	SpeechModel string `json:"speech_model,omitempty"`
	Voice       string `json:"voice,omitempty"`
}

// ResolveAPIKey 返回最终生效的 api key。
func (c *LLMConfig) ResolveAPIKey() string {
	if c == nil {
		return ""
	}
	if c.APIKeyEnv != "" {
		if v := os.Getenv(c.APIKeyEnv); v != "" {
			return v
		}
	}
	return c.APIKey
}

// LoadConfig reads JSON config from disk.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
