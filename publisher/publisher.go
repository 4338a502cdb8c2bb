package publisher

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"go.uber.org/zap"
)

const (
	defaultAPIBase  = "https://api.weixin.qq.com"
	accessTokenPath = "/cgi-bin/token"
	uploadImagePath = "/cgi-bin/material/add_material"
	uploadImgPath   = "/cgi-bin/media/uploadimg"
	addDraftPath    = "/cgi-bin/draft/add"
)

func apiBase(cfg Config) string {
	if cfg.APIBaseURL != "" {
		return cfg.APIBaseURL
	}
	return defaultAPIBase
}

// PublishParams describes the content to be published.
// HTML 是排版+配图之后的最终正文；内嵌的 data URI 图片会在发布前
// 上传到公众号素材库并替换为微信侧 URL（公众号不接受 data URI）。
type PublishParams struct {
	Title      string
	Author     string
	Digest     string
	HTML       string
	CoverPath  string
	CoverBytes []byte
}

type accessTokenResp struct {
	AccessToken string `json:"access_token"`
	ErrCode     int    `json:"errcode"`
	ErrMsg      string `json:"errmsg"`
}

type uploadImageResp struct {
	MediaID string `json:"media_id"`
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

type uploadImgResp struct {
	URL     string `json:"url"`
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

type addDraftResp struct {
	MediaID string `json:"media_id"`
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

type article struct {
	Title              string `json:"title"`
	Author             string `json:"author"`
	Digest             string `json:"digest"`
	Content            string `json:"content"`
	ThumbMediaID       string `json:"thumb_media_id"`
	NeedOpenComment    int    `json:"need_open_comment"`
	OnlyFansCanComment int    `json:"only_fans_can_comment"`
}

type addDraftPayload struct {
	Articles []article `json:"articles"`
}

// Publisher orchestrates resource upload and draft creation on WeChat.
type Publisher struct {
	cfg         Config
	client      *http.Client
	accessToken string
	log         *zap.SugaredLogger
}

// New creates a Publisher and fetches the access token immediately so it can be reused.
func New(cfg Config, client *http.Client, log *zap.SugaredLogger) (*Publisher, error) {
	if cfg.AppID == "" || cfg.AppSecret == "" {
		return nil, errors.New("config must include app_id and app_secret")
	}
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	accessToken, err := getAccessToken(client, cfg)
	if err != nil {
		return nil, err
	}

	return &Publisher{
		cfg:         cfg,
		client:      client,
		accessToken: accessToken,
		log:         log,
	}, nil
}

// PublishDraft uploads embedded images plus the cover, then creates a draft.
func (p *Publisher) PublishDraft(ctx context.Context, params PublishParams) (string, error) {
	if params.HTML == "" || params.Title == "" {
		return "", errors.New("html content and title are required")
	}
	if params.CoverPath == "" && len(params.CoverBytes) == 0 {
		return "", errors.New("cover image is required (path or bytes)")
	}

	content, err := p.replaceEmbeddedImages(ctx, params.HTML)
	if err != nil {
		return "", err
	}
	p.log.Infow("uploaded inline images", "title", params.Title)

	cover := params.CoverBytes
	coverName := "cover.png"
	if params.CoverPath != "" {
		cover, err = os.ReadFile(params.CoverPath)
		if err != nil {
			return "", err
		}
		coverName = filepath.Base(params.CoverPath)
	}
	thumbMediaID, err := p.uploadCoverMaterial(ctx, cover, coverName)
	if err != nil {
		return "", err
	}
	p.log.Infow("uploaded cover image", "media_id", thumbMediaID)

	art := article{
		Title:              params.Title,
		Author:             params.Author,
		Digest:             params.Digest,
		Content:            content,
		ThumbMediaID:       thumbMediaID,
		NeedOpenComment:    0,
		OnlyFansCanComment: 0,
	}

	mediaID, err := p.addDraft(ctx, art)
	if err != nil {
		return "", err
	}
	p.log.Infow("draft created", "media_id", mediaID)

	return mediaID, nil
}

var embeddedImgRe = regexp.MustCompile(`src="data:image/([a-z]+);base64,([^"]+)"`)

// replaceEmbeddedImages 把正文里内嵌的 data URI 图片逐个上传，替换成微信 URL。
func (p *Publisher) replaceEmbeddedImages(ctx context.Context, doc string) (string, error) {
	matches := embeddedImgRe.FindAllStringSubmatchIndex(doc, -1)
	if len(matches) == 0 {
		return doc, nil
	}

	var b bytes.Buffer
	last := 0
	for i, m := range matches {
		ext := doc[m[2]:m[3]]
		data, err := base64.StdEncoding.DecodeString(doc[m[4]:m[5]])
		if err != nil {
			return "", fmt.Errorf("embedded image %d: %w", i, err)
		}
		url, err := p.uploadContentImage(ctx, data, fmt.Sprintf("inline_%d.%s", i, ext))
		if err != nil {
			return "", fmt.Errorf("embedded image %d: %w", i, err)
		}
		b.WriteString(doc[last:m[0]])
		b.WriteString(`src="` + url + `"`)
		last = m[1]
	}
	b.WriteString(doc[last:])
	return b.String(), nil
}

func getAccessToken(client *http.Client, cfg Config) (string, error) {
	req, err := http.NewRequest("GET", apiBase(cfg)+accessTokenPath, nil)
	if err != nil {
		return "", err
	}
	q := req.URL.Query()
	q.Set("grant_type", "client_credential")
	q.Set("appid", cfg.AppID)
	q.Set("secret", cfg.AppSecret)
	req.URL.RawQuery = q.Encode()

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var data accessTokenResp
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", err
	}
	if data.AccessToken == "" {
		return "", fmt.Errorf("failed to get access_token: %d %s", data.ErrCode, data.ErrMsg)
	}
	return data.AccessToken, nil
}

func (p *Publisher) multipartUpload(ctx context.Context, rawURL string, query map[string]string, img []byte, filename string) ([]byte, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("media", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(img); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", rawURL, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	q := req.URL.Query()
	q.Set("access_token", p.accessToken)
	for k, v := range query {
		q.Set(k, v)
	}
	req.URL.RawQuery = q.Encode()

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// uploadCoverMaterial 上传封面为永久素材，拿 thumb_media_id。
func (p *Publisher) uploadCoverMaterial(ctx context.Context, img []byte, filename string) (string, error) {
	raw, err := p.multipartUpload(ctx, apiBase(p.cfg)+uploadImagePath, map[string]string{"type": "image"}, img, filename)
	if err != nil {
		return "", err
	}
	var data uploadImageResp
	if err := json.Unmarshal(raw, &data); err != nil {
		return "", err
	}
	if data.MediaID == "" {
		return "", fmt.Errorf("failed to upload cover image: %d %s", data.ErrCode, data.ErrMsg)
	}
	return data.MediaID, nil
}

// uploadContentImage 上传正文插图，拿微信侧图片 URL。
func (p *Publisher) uploadContentImage(ctx context.Context, img []byte, filename string) (string, error) {
	raw, err := p.multipartUpload(ctx, apiBase(p.cfg)+uploadImgPath, nil, img, filename)
	if err != nil {
		return "", err
	}
	var data uploadImgResp
	if err := json.Unmarshal(raw, &data); err != nil {
		return "", err
	}
	if data.URL == "" {
		return "", fmt.Errorf("failed to upload content image: %d %s", data.ErrCode, data.ErrMsg)
	}
	return data.URL, nil
}

func (p *Publisher) addDraft(ctx context.Context, art article) (string, error) {
	payload := addDraftPayload{Articles: []article{art}}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", apiBase(p.cfg)+addDraftPath, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	q := req.URL.Query()
	q.Set("access_token", p.accessToken)
	req.URL.RawQuery = q.Encode()

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var data addDraftResp
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", err
	}
	if data.MediaID == "" {
		return "", fmt.Errorf("failed to add draft: %d %s", data.ErrCode, data.ErrMsg)
	}
	return data.MediaID, nil
}
