package narration

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"auto_wechat_article_studio/generator"
)

// Segment 是一个分段的朗读产物。Index 是分段在原文里的序号，
// 输出顺序由它决定，与合成完成的先后无关。
type Segment struct {
	Index int
	Text  string
	WAV   []byte
}

// Pipeline 把文章文本切段后并发合成语音。整条链路是尽力而为的：
// 任何一段失败只丢那一段，整体失败退化成空结果，从不向调用方报错。
type Pipeline struct {
	speech generator.SpeechClient
	limit  int
	log    *zap.SugaredLogger
}

func NewPipeline(speech generator.SpeechClient, chunkLimit int, log *zap.SugaredLogger) *Pipeline {
	if chunkLimit <= 0 {
		chunkLimit = DefaultChunkLimit
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Pipeline{speech: speech, limit: chunkLimit, log: log}
}

// Narrate 为整篇文本产出按分段顺序排列的语音列表。
func (p *Pipeline) Narrate(ctx context.Context, text string) []Segment {
	chunks := Chunk(text, p.limit)
	if len(chunks) == 0 {
		return nil
	}

	// 每段一个带序号的任务，全部结完再按序号收集，不依赖完成顺序。
	pcms := make([][]byte, len(chunks))
	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		go func(i int, chunk string) {
			defer wg.Done()
			pcm, err := p.speech.GenerateSpeech(ctx, chunk)
			if err != nil {
				p.log.Warnw("narration chunk failed", "index", i, "err", err)
				return
			}
			if len(pcm) == 0 {
				p.log.Warnw("narration chunk empty", "index", i)
				return
			}
			pcms[i] = pcm
		}(i, chunk)
	}
	wg.Wait()

	var out []Segment
	for i, pcm := range pcms {
		if pcm == nil {
			continue
		}
		out = append(out, Segment{
			Index: i,
			Text:  chunks[i],
			WAV:   PCMToWAV(pcm, SampleRate, Channels, BitDepth),
		})
	}
	return out
}
