package assistant

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	embedded "google.golang.org/genproto/googleapis/assistant/embedded/v1alpha2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/oauth"
)

const (
	// Endpoint is the Embedded Assistant API address.
	Endpoint = "embeddedassistant.googleapis.com:443"

	// SampleRate is the LINEAR16 rate used both ways.
	SampleRate = 16000

	// TurnDeadline bounds one Assist call.
	TurnDeadline = 185 * time.Second
)

// AudioDevice streams LINEAR16 mono audio at SampleRate.
type AudioDevice interface {
	StartRecording() error
	StopRecording() error
	ReadChunk() ([]byte, error)

	StartPlayback() error
	WriteChunk(pcm []byte) error
	StopPlayback() error
}

// Dial opens a TLS channel to the Embedded Assistant API that authorizes
// every call with tokens from ts.
func Dial(ts oauth2.TokenSource) (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(Endpoint,
		grpc.WithTransportCredentials(credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})),
		grpc.WithPerRPCCredentials(oauth.TokenSource{TokenSource: ts}),
	)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", Endpoint, err)
	}
	return conn, nil
}

// DeviceInfo identifies this mirror to the Assistant.
type DeviceInfo struct {
	ID       string
	ModelID  string
	Language string
}

// GRPCConversation runs turns over EmbeddedAssistant.Assist. It keeps the
// conversation state between turns; it is not safe for concurrent use.
type GRPCConversation struct {
	client   embedded.EmbeddedAssistantClient
	audio    AudioDevice
	device   DeviceInfo
	deadline time.Duration
	log      zerolog.Logger

	state []byte
}

// NewGRPCConversation creates a conversation. An empty device ID is replaced
// by a random one.
func NewGRPCConversation(client embedded.EmbeddedAssistantClient, audio AudioDevice, device DeviceInfo, log zerolog.Logger) *GRPCConversation {
	if device.ID == "" {
		device.ID = uuid.NewString()
	}
	return &GRPCConversation{
		client:   client,
		audio:    audio,
		device:   device,
		deadline: TurnDeadline,
		log:      log.With().Str("component", "assistant").Str("device_id", device.ID).Logger(),
	}
}

func (c *GRPCConversation) config() *embedded.AssistConfig {
	return &embedded.AssistConfig{
		Type: &embedded.AssistConfig_AudioInConfig{
			AudioInConfig: &embedded.AudioInConfig{
				Encoding:        embedded.AudioInConfig_LINEAR16,
				SampleRateHertz: SampleRate,
			},
		},
		AudioOutConfig: &embedded.AudioOutConfig{
			Encoding:         embedded.AudioOutConfig_LINEAR16,
			SampleRateHertz:  SampleRate,
			VolumePercentage: 100,
		},
		DialogStateIn: &embedded.DialogStateIn{
			LanguageCode:      c.device.Language,
			ConversationState: c.state,
			IsNewConversation: c.state == nil,
		},
		DeviceConfig: &embedded.DeviceConfig{
			DeviceId:      c.device.ID,
			DeviceModelId: c.device.ModelID,
		},
	}
}

// Converse records the user until the service detects the end of the
// utterance, plays the reply and returns what was said.
func (c *GRPCConversation) Converse(ctx context.Context) (Utterance, error) {
	ctx, cancel := context.WithTimeout(ctx, c.deadline)
	defer cancel()

	stream, err := c.client.Assist(ctx)
	if err != nil {
		return Utterance{}, fmt.Errorf("open assist stream: %w", err)
	}
	if err := stream.Send(&embedded.AssistRequest{
		Type: &embedded.AssistRequest_Config{Config: c.config()},
	}); err != nil {
		return Utterance{}, fmt.Errorf("send assist config: %w", err)
	}

	if err := c.audio.StartRecording(); err != nil {
		return Utterance{}, fmt.Errorf("start recording: %w", err)
	}

	var (
		stopOnce sync.Once
		stopMic  = make(chan struct{})
		sendDone = make(chan error, 1)
	)
	stopRecording := func() {
		stopOnce.Do(func() {
			close(stopMic)
			if err := c.audio.StopRecording(); err != nil {
				c.log.Warn().Err(err).Msg("stop recording")
			}
		})
	}
	defer stopRecording()

	go func() {
		sendDone <- c.sendAudio(stream, stopMic)
	}()

	var (
		u       Utterance
		playing bool
	)
	defer func() {
		if playing {
			if err := c.audio.StopPlayback(); err != nil {
				c.log.Warn().Err(err).Msg("stop playback")
			}
		}
	}()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Utterance{}, fmt.Errorf("receive assist response: %w", err)
		}

		if resp.GetEventType() == embedded.AssistResponse_END_OF_UTTERANCE {
			c.log.Debug().Msg("end of utterance detected")
			stopRecording()
		}
		if t := transcript(resp.GetSpeechResults()); t != "" {
			u.Transcript = t
		}
		if data := resp.GetAudioOut().GetAudioData(); len(data) > 0 {
			if !playing {
				stopRecording()
				if err := c.audio.StartPlayback(); err != nil {
					return Utterance{}, fmt.Errorf("start playback: %w", err)
				}
				playing = true
			}
			if err := c.audio.WriteChunk(data); err != nil {
				return Utterance{}, fmt.Errorf("play response: %w", err)
			}
		}
		if ds := resp.GetDialogStateOut(); ds != nil {
			if len(ds.GetConversationState()) > 0 {
				c.state = ds.GetConversationState()
			}
			if text := ds.GetSupplementalDisplayText(); text != "" {
				u.Response = text
			}
			u.FollowOn = ds.GetMicrophoneMode() == embedded.DialogStateOut_DIALOG_FOLLOW_ON
		}
	}

	stopRecording()
	if err := <-sendDone; err != nil {
		return u, fmt.Errorf("stream microphone: %w", err)
	}
	return u, nil
}

// sendAudio streams microphone chunks until stop is closed, then half-closes
// the stream.
func (c *GRPCConversation) sendAudio(stream embedded.EmbeddedAssistant_AssistClient, stop <-chan struct{}) error {
	for {
		select {
		case <-stop:
			return stream.CloseSend()
		default:
		}

		chunk, err := c.audio.ReadChunk()
		if err != nil {
			select {
			case <-stop:
				return stream.CloseSend()
			default:
			}
			_ = stream.CloseSend()
			return err
		}
		if err := stream.Send(&embedded.AssistRequest{
			Type: &embedded.AssistRequest_AudioIn{AudioIn: chunk},
		}); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func transcript(results []*embedded.SpeechRecognitionResult) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		if t := strings.TrimSpace(r.GetTranscript()); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
