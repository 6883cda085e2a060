package assistant

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// blockFrames is 100 ms of audio at SampleRate.
const blockFrames = SampleRate / 10

var errNotRecording = errors.New("audio device is not recording")

// PortAudioDevice implements AudioDevice on the default input and output
// devices. Init must be called before use and Close after.
type PortAudioDevice struct {
	mu sync.Mutex

	in    *portaudio.Stream
	inBuf []int16

	out    *portaudio.Stream
	outBuf []int16
}

func NewPortAudioDevice() *PortAudioDevice {
	return &PortAudioDevice{
		inBuf:  make([]int16, blockFrames),
		outBuf: make([]int16, blockFrames),
	}
}

// Init initializes PortAudio.
func (d *PortAudioDevice) Init() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	return nil
}

// Close stops any open streams and terminates PortAudio.
func (d *PortAudioDevice) Close() error {
	_ = d.StopRecording()
	_ = d.StopPlayback()
	return portaudio.Terminate()
}

func (d *PortAudioDevice) StartRecording() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.in != nil {
		return nil
	}

	stream, err := portaudio.OpenDefaultStream(1, 0, SampleRate, len(d.inBuf), d.inBuf)
	if err != nil {
		return fmt.Errorf("failed to open input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("failed to start input stream: %w", err)
	}
	d.in = stream
	return nil
}

func (d *PortAudioDevice) StopRecording() error {
	d.mu.Lock()
	stream := d.in
	d.in = nil
	d.mu.Unlock()
	if stream == nil {
		return nil
	}
	if err := stream.Stop(); err != nil {
		stream.Close()
		return err
	}
	return stream.Close()
}

// ReadChunk blocks for one block of microphone audio.
func (d *PortAudioDevice) ReadChunk() ([]byte, error) {
	d.mu.Lock()
	stream := d.in
	d.mu.Unlock()
	if stream == nil {
		return nil, errNotRecording
	}
	if err := stream.Read(); err != nil {
		return nil, err
	}
	return encodePCM(d.inBuf), nil
}

func (d *PortAudioDevice) StartPlayback() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.out != nil {
		return nil
	}

	stream, err := portaudio.OpenDefaultStream(0, 1, SampleRate, len(d.outBuf), d.outBuf)
	if err != nil {
		return fmt.Errorf("failed to open output stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("failed to start output stream: %w", err)
	}
	d.out = stream
	return nil
}

// WriteChunk plays pcm, padding the last block with silence.
func (d *PortAudioDevice) WriteChunk(pcm []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.out == nil {
		return errors.New("audio device is not playing")
	}

	samples := decodePCM(pcm)
	for pos := 0; pos < len(samples); pos += len(d.outBuf) {
		n := copy(d.outBuf, samples[pos:])
		clear(d.outBuf[n:])
		if err := d.out.Write(); err != nil {
			return fmt.Errorf("failed to write to stream: %w", err)
		}
	}
	return nil
}

func (d *PortAudioDevice) StopPlayback() error {
	d.mu.Lock()
	stream := d.out
	d.out = nil
	d.mu.Unlock()
	if stream == nil {
		return nil
	}
	if err := stream.Stop(); err != nil {
		stream.Close()
		return err
	}
	return stream.Close()
}

// encodePCM packs samples as little-endian LINEAR16.
func encodePCM(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// decodePCM unpacks little-endian LINEAR16; a trailing odd byte is dropped.
func decodePCM(data []byte) []int16 {
	out := make([]int16, len(data)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return out
}

// frameRMS is the root mean square of a float32 frame.
func frameRMS(f []float32) float64 {
	if len(f) == 0 {
		return 0
	}
	var s float64
	for _, x := range f {
		s += float64(x * x)
	}
	return math.Sqrt(s / float64(len(f)))
}
