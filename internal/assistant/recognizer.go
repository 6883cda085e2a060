package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"github.com/gordonklaus/portaudio"
)

// Recorder captures one utterance as mono float32 PCM at SampleRate.
type Recorder interface {
	Record(ctx context.Context) ([]float32, error)
}

// Transcriber turns PCM into text.
type Transcriber interface {
	Transcribe(ctx context.Context, pcm []float32) (string, error)
}

// LocalListener is a Listener that records and transcribes on the device.
type LocalListener struct {
	rec Recorder
	stt Transcriber
}

func NewLocalListener(rec Recorder, stt Transcriber) *LocalListener {
	return &LocalListener{rec: rec, stt: stt}
}

func (l *LocalListener) Listen(ctx context.Context) (string, error) {
	pcm, err := l.rec.Record(ctx)
	if err != nil {
		return "", fmt.Errorf("record: %w", err)
	}
	if len(pcm) == 0 {
		return "", ErrUnintelligible
	}

	text, err := l.stt.Transcribe(ctx, pcm)
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	text = cleanTranscript(text)
	if text == "" {
		return "", ErrUnintelligible
	}
	return text, nil
}

// cleanTranscript drops whisper's non-speech markers such as [BLANK_AUDIO].
func cleanTranscript(s string) string {
	var b strings.Builder
	for {
		open := strings.IndexAny(s, "[(")
		if open < 0 {
			b.WriteString(s)
			break
		}
		closer := "]"
		if s[open] == '(' {
			closer = ")"
		}
		end := strings.Index(s[open:], closer)
		if end < 0 {
			b.WriteString(s)
			break
		}
		b.WriteString(s[:open])
		s = s[open+end+1:]
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// SilenceRecorder records from the default microphone until speech is
// followed by a stretch of silence, or MaxFrames frames were kept.
type SilenceRecorder struct {
	Threshold float64
	// SilenceFrames of 20 ms end an utterance once speech was heard.
	SilenceFrames int
	MaxFrames     int
}

func NewSilenceRecorder() *SilenceRecorder {
	return &SilenceRecorder{
		Threshold:     0.015,
		SilenceFrames: 30,
		MaxFrames:     10 * 50,
	}
}

func (r *SilenceRecorder) Record(ctx context.Context) ([]float32, error) {
	const frameSize = SampleRate / 50

	buf := make([]float32, frameSize)
	out := make([]float32, 0, SampleRate*3)

	stream, err := portaudio.OpenDefaultStream(1, 0, SampleRate, len(buf), buf)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, err
	}
	defer stream.Stop()

	var (
		speaking bool
		silent   int
	)
	// Frames before the first speech do not count towards MaxFrames.
	for frames := 0; frames < r.MaxFrames; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := stream.Read(); err != nil {
			return nil, err
		}

		if frameRMS(buf) > r.Threshold {
			speaking = true
			silent = 0
			frames++
			out = append(out, buf...)
			continue
		}
		if !speaking {
			continue
		}
		silent++
		frames++
		if silent >= r.SilenceFrames {
			break
		}
		out = append(out, buf...)
	}
	return out, nil
}

// WhisperTranscriber runs a local whisper.cpp model.
type WhisperTranscriber struct {
	model    whisper.Model
	language string
}

// NewWhisperTranscriber loads the model at path. language is a whisper
// language code such as "en", or "auto".
func NewWhisperTranscriber(path, language string) (*WhisperTranscriber, error) {
	if path == "" {
		return nil, errors.New("empty model path")
	}
	m, err := whisper.New(path)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	if language == "" {
		language = "auto"
	}
	return &WhisperTranscriber{model: m, language: language}, nil
}

func (t *WhisperTranscriber) Close() error {
	return t.model.Close()
}

func (t *WhisperTranscriber) Transcribe(ctx context.Context, pcm []float32) (string, error) {
	wctx, err := t.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("new context: %w", err)
	}
	if err := wctx.SetLanguage(t.language); err != nil {
		return "", fmt.Errorf("set language: %w", err)
	}
	wctx.SetThreads(uint(runtime.NumCPU()))

	if err := wctx.Process(pcm, nil, nil, nil); err != nil {
		return "", fmt.Errorf("process: %w", err)
	}

	var parts []string
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		seg, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("next segment: %w", err)
		}
		parts = append(parts, seg.Text)
	}
	return strings.Join(parts, " "), nil
}

// WhisperLanguage maps a BCP 47 tag like "en-US" to whisper's "en".
func WhisperLanguage(tag string) string {
	base, _, _ := strings.Cut(tag, "-")
	return strings.ToLower(base)
}
