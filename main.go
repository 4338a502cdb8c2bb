package main

import (
	"context"
	"flag"
	"fmt"
	"html"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"auto_wechat_article_studio/generator"
	"auto_wechat_article_studio/logging"
	"auto_wechat_article_studio/publisher"
	"auto_wechat_article_studio/server"
	"auto_wechat_article_studio/studio"
)

func main() {
	configPath := flag.String("config", "config/config.json", "path to config.json")
	topic := flag.String("topic", "", "article topic (one-shot mode)")
	words := flag.Int("words", 0, "target word count")
	tone := flag.String("tone", "", "article tone")
	audience := flag.String("audience", "", "target audience")
	images := flag.Int("images", -1, "illustration count incl. cover (overrides config)")
	outDir := flag.String("out", "out", "output directory for one-shot mode")
	narrate := flag.Bool("narrate", false, "also synthesize narration audio")
	publish := flag.Bool("publish", false, "publish the result as a WeChat draft")
	author := flag.String("author", "", "author name for publishing")
	cover := flag.String("cover", "", "cover image path (defaults to the generated cover)")
	serve := flag.Bool("serve", false, "start web server")
	addr := flag.String("addr", "", "http listen address when --serve (overrides config.server_addr)")
	flag.Parse()

	// .env 里放 api key 一类的敏感配置，没有也无所谓。
	_ = godotenv.Load()

	cfg, err := publisher.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	client, err := buildClient(cfg)
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}

	opts := studio.Options{Illustrations: cfg.Illustrations, ChunkLimit: cfg.ChunkLimit}
	if *images >= 0 {
		opts.Illustrations = *images
	}
	st, err := studio.New(client, client, client, opts, log)
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}

	// Web server mode
	if *serve {
		srv, err := server.New(st, cfg, log)
		if err != nil {
			log.Error(err)
			os.Exit(1)
		}
		listen := cfg.ServerAddr
		if *addr != "" {
			listen = *addr
		}
		if listen == "" {
			listen = ":8080"
		}
		log.Infow("starting web server", "addr", listen)
		if err := http.ListenAndServe(listen, srv.Routes()); err != nil {
			log.Error(err)
			os.Exit(1)
		}
		return
	}

	if *topic == "" {
		fmt.Fprintln(os.Stderr, "--topic is required (or use --serve)")
		os.Exit(1)
	}

	spec := generator.Spec{
		Topic:    *topic,
		Words:    *words,
		Tone:     *tone,
		Audience: *audience,
	}
	sess := st.NewSession(uuid.NewString(), spec)

	ctx := context.Background()
	log.Infow("generating article", "topic", spec.Topic)
	draft := st.Propose(ctx, sess)
	if draft.Placeholder {
		log.Warn("article generation failed; placeholder written")
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Error(err)
		os.Exit(1)
	}
	htmlPath := filepath.Join(*outDir, "article.html")
	if err := os.WriteFile(htmlPath, []byte(renderArticlePage(draft)), 0o644); err != nil {
		log.Error(err)
		os.Exit(1)
	}
	log.Infow("article written", "path", htmlPath, "title", draft.Title)

	if *narrate {
		writeNarration(ctx, st, draft.HTML, *outDir, log)
	}

	if *publish {
		publishDraft(ctx, cfg, draft, *cover, *author, log)
	}
}

// renderArticlePage 拼一个可直接在浏览器打开的预览页。
// 标题是纯文本，拼进标签前要转义；正文已经是清洗过的 HTML。
func renderArticlePage(draft generator.Draft) string {
	return fmt.Sprintf("<h1>%s</h1>\n%s\n", html.EscapeString(draft.Title), draft.HTML)
}

func writeNarration(ctx context.Context, st *studio.Studio, doc, outDir string, log *zap.SugaredLogger) {
	segments := st.Narrate(ctx, doc)
	for _, seg := range segments {
		path := filepath.Join(outDir, fmt.Sprintf("narration_%02d.wav", seg.Index))
		if err := os.WriteFile(path, seg.WAV, 0o644); err != nil {
			log.Errorw("write narration failed", "path", path, "err", err)
			continue
		}
		log.Infow("narration written", "path", path)
	}
	if len(segments) == 0 {
		log.Warn("narration produced no audio")
	}
}

func publishDraft(ctx context.Context, cfg publisher.Config, draft generator.Draft, coverPath, author string, log *zap.SugaredLogger) {
	params := publisher.PublishParams{
		Title:     draft.Title,
		Author:    author,
		Digest:    draft.Digest,
		HTML:      draft.HTML,
		CoverPath: coverPath,
	}
	if coverPath == "" {
		data, ok := publisher.FirstEmbeddedImage(draft.HTML)
		if !ok {
			log.Error("no cover available: article has no embedded image and --cover not given")
			os.Exit(1)
		}
		params.CoverBytes = data
	}
	pub, err := publisher.New(cfg, nil, log)
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}
	mediaID, err := pub.PublishDraft(ctx, params)
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}
	log.Infow("publish done", "media_id", mediaID)
	fmt.Println(mediaID)
}

func buildClient(cfg publisher.Config) (*generator.OpenAIClient, error) {
	if cfg.LLM == nil || cfg.LLM.Provider == "" {
		return nil, fmt.Errorf("llm config missing; please set llm.provider/model/api_key in config")
	}
	settings := &generator.LLMSettings{
		Provider:    cfg.LLM.Provider,
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.ResolveAPIKey(),
		BaseURL:     cfg.LLM.BaseURL,
		ImageModel:  cfg.LLM.ImageModel,
		SpeechModel: cfg.LLM.SpeechModel,
		Voice:       cfg.LLM.Voice,
	}
	switch cfg.LLM.Provider {
	case "openai":
		return generator.NewOpenAIClientFromConfig(settings)
	case "deepseek":
		// DeepSeek 提供 OpenAI 兼容接口，需填写 base_url（例如官方/网关地址）。
		// 注意兼容网关通常只有文本能力，配图/朗读仍要走 OpenAI 的模型。
		if cfg.LLM.BaseURL == "" {
			return nil, fmt.Errorf("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
		return generator.NewOpenAIClientFromConfig(settings)
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.LLM.Provider)
	}
}
