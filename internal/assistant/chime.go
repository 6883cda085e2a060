package assistant

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
)

// SoundChime plays an mp3 file through the system speaker. The file is
// decoded once on first use.
type SoundChime struct {
	path string

	once   sync.Once
	buffer *beep.Buffer
	err    error
}

func NewSoundChime(path string) *SoundChime {
	return &SoundChime{path: path}
}

func (c *SoundChime) load() {
	f, err := os.Open(c.path)
	if err != nil {
		c.err = fmt.Errorf("open chime: %w", err)
		return
	}

	streamer, format, err := mp3.Decode(f)
	if err != nil {
		f.Close()
		c.err = fmt.Errorf("decode chime: %w", err)
		return
	}
	defer streamer.Close()

	c.buffer = beep.NewBuffer(format)
	c.buffer.Append(streamer)

	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		c.err = fmt.Errorf("init speaker: %w", err)
	}
}

// Play blocks until the chime has finished.
func (c *SoundChime) Play() error {
	c.once.Do(c.load)
	if c.err != nil {
		return c.err
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(c.buffer.Streamer(0, c.buffer.Len()), beep.Callback(func() {
		close(done)
	})))
	<-done
	return nil
}
