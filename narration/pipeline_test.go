package narration

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// fakeSpeech 按文本内容决定成功或失败，并发安全（无共享可变状态）。
type fakeSpeech struct {
	failOn string
}

func (f *fakeSpeech) GenerateSpeech(_ context.Context, text string) ([]byte, error) {
	if f.failOn != "" && strings.Contains(text, f.failOn) {
		return nil, errors.New("synthesis failed")
	}
	// 把文本自身当作 PCM 负载，便于断言顺序。
	return []byte(text), nil
}

// 五个分段里第三段失败：产出四个分段，顺序仍按原始分段序号。
func TestNarrateSkipsFailedChunkKeepsOrder(t *testing.T) {
	text := "一号句子甲乙丙。二号句子甲乙丙。三号句子甲乙丙。四号句子甲乙丙。五号句子甲乙丙。"
	p := NewPipeline(&fakeSpeech{failOn: "三号"}, 10, nil)

	segments := p.Narrate(context.Background(), text)
	if len(segments) != 4 {
		t.Fatalf("got %d segments, want 4", len(segments))
	}
	wantIdx := []int{0, 1, 3, 4}
	wantText := []string{"一号", "二号", "四号", "五号"}
	for i, seg := range segments {
		if seg.Index != wantIdx[i] {
			t.Errorf("segment %d: index got %d, want %d", i, seg.Index, wantIdx[i])
		}
		if !strings.Contains(seg.Text, wantText[i]) {
			t.Errorf("segment %d: text %q does not contain %q", i, seg.Text, wantText[i])
		}
		if !strings.Contains(string(seg.WAV[44:]), wantText[i]) {
			t.Errorf("segment %d: wav payload does not match chunk text", i)
		}
	}
}

type deadSpeech struct{}

func (deadSpeech) GenerateSpeech(_ context.Context, _ string) ([]byte, error) {
	return nil, errors.New("down")
}

// 整体失败退化为空结果，不报错。
func TestNarrateTotalFailureYieldsEmpty(t *testing.T) {
	p := NewPipeline(deadSpeech{}, 0, nil)
	if got := p.Narrate(context.Background(), "第一句。第二句。"); len(got) != 0 {
		t.Fatalf("got %d segments, want 0", len(got))
	}
}

type emptySpeech struct{}

func (emptySpeech) GenerateSpeech(_ context.Context, _ string) ([]byte, error) {
	return nil, nil
}

// 成功返回但负载为空，同样按失败处理。
func TestNarrateEmptyPayloadSkipped(t *testing.T) {
	p := NewPipeline(emptySpeech{}, 0, nil)
	if got := p.Narrate(context.Background(), "第一句。"); len(got) != 0 {
		t.Fatalf("got %d segments, want 0", len(got))
	}
}

func TestNarrateEmptyText(t *testing.T) {
	p := NewPipeline(deadSpeech{}, 0, nil)
	if got := p.Narrate(context.Background(), "   "); got != nil {
		t.Fatalf("got %v, want nil", got)
	}
}

func TestNarrateWrapsWAV(t *testing.T) {
	p := NewPipeline(&fakeSpeech{}, 0, nil)
	segments := p.Narrate(context.Background(), "只有一句。")
	if len(segments) != 1 {
		t.Fatalf("got %d segments, want 1", len(segments))
	}
	if string(segments[0].WAV[0:4]) != "RIFF" {
		t.Errorf("segment is not a wav container")
	}
}
