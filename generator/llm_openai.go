package generator

import (
	"context"
	"encoding/base64"
	"errors"
	"io"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIClient implements LLMClient/ImageClient/SpeechClient using the official
// openai-go SDK. DeepSeek 等 OpenAI 兼容网关通过 BaseURL 接入（仅文本能力）。
type OpenAIClient struct {
	Model       string
	ImageModel  string
	SpeechModel string
	Voice       string
	Opts        []option.RequestOption
}

func NewOpenAIClientFromConfig(cfg *LLMSettings) (*OpenAIClient, error) {
	if cfg == nil {
		return nil, errors.New("llm config is nil")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key missing; provide llm.api_key or api_key_env")
	}
	if cfg.Model == "" {
		return nil, errors.New("llm model is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIClient{
		Model:       cfg.Model,
		ImageModel:  cfg.ImageModel,
		SpeechModel: cfg.SpeechModel,
		Voice:       cfg.Voice,
		Opts:        opts,
	}, nil
}

func (o *OpenAIClient) messages(prompt Prompt) []openai.ChatCompletionMessageParamUnion {
	msgs := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(prompt.System),
	}
	for _, h := range prompt.History {
		switch h.Role {
		case "assistant":
			msgs = append(msgs, openai.ChatCompletionMessageParamOfAssistant(h.Content))
		default:
			msgs = append(msgs, openai.UserMessage(h.Content))
		}
	}
	return append(msgs, openai.UserMessage(prompt.User))
}

func (o *OpenAIClient) Complete(ctx context.Context, prompt Prompt) (string, error) {
	client := openai.NewClient(o.Opts...)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(o.Model),
		Messages: o.messages(prompt),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// CompleteJSON 使用 json_schema 结构化输出，模型被强约束为返回符合 schema 的 JSON。
func (o *OpenAIClient) CompleteJSON(ctx context.Context, prompt Prompt, schemaName string, schema map[string]any) (string, error) {
	client := openai.NewClient(o.Opts...)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(o.Model),
		Messages: o.messages(prompt),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   schemaName,
					Schema: schema,
					Strict: openai.Bool(true),
				},
			},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateImage 生成单张图片并以字节形式返回（b64_json 解码）。
func (o *OpenAIClient) GenerateImage(ctx context.Context, prompt, aspectRatio string) ([]byte, error) {
	client := openai.NewClient(o.Opts...)

	model := o.ImageModel
	if model == "" {
		model = string(openai.ImageModelDallE3)
	}
	resp, err := client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         prompt,
		Model:          openai.ImageModel(model),
		N:              openai.Int(1),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatB64JSON,
		Size:           imageSizeForRatio(aspectRatio),
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, errors.New("openai: image payload missing")
	}
	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("openai: image payload empty")
	}
	return data, nil
}

func imageSizeForRatio(ratio string) openai.ImageGenerateParamsSize {
	switch ratio {
	case "16:9", "3:2":
		return openai.ImageGenerateParamsSize1792x1024
	case "9:16", "2:3":
		return openai.ImageGenerateParamsSize1024x1792
	default:
		return openai.ImageGenerateParamsSize1024x1024
	}
}

// GenerateSpeech 合成语音。响应格式固定为 pcm：24000 Hz、16-bit、单声道裸采样，
// 调用方自行封装 WAV 头。
func (o *OpenAIClient) GenerateSpeech(ctx context.Context, text string) ([]byte, error) {
	client := openai.NewClient(o.Opts...)

	model := o.SpeechModel
	if model == "" {
		model = string(openai.SpeechModelTTS1)
	}
	voice := o.Voice
	if voice == "" {
		voice = string(openai.AudioSpeechNewParamsVoiceAlloy)
	}
	resp, err := client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          openai.SpeechModel(model),
		Voice:          openai.AudioSpeechNewParamsVoice(voice),
		Input:          text,
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatPCM,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	pcm, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(pcm) == 0 {
		return nil, errors.New("openai: speech payload empty")
	}
	return pcm, nil
}
