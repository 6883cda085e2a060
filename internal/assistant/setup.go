package assistant

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	embedded "google.golang.org/genproto/googleapis/assistant/embedded/v1alpha2"
)

// Options configures the production assistant.
type Options struct {
	CredentialsPath  string
	Device           DeviceInfo
	Trigger          bool
	WhisperModelPath string
	ChimePath        string
}

// Build loads credentials, opens the gRPC channel and the audio devices and
// returns a Loop ready to Start. release frees everything Build acquired.
// ctx must outlive the Loop; it backs token refreshes.
func Build(ctx context.Context, opts Options, log zerolog.Logger) (loop *Loop, release func(), err error) {
	creds, err := LoadCredentials(opts.CredentialsPath)
	if err != nil {
		return nil, nil, err
	}
	ts, err := creds.Refresh(ctx)
	if err != nil {
		return nil, nil, err
	}

	conn, err := Dial(ts)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("endpoint", Endpoint).Msg("connecting to embedded assistant")

	dev := NewPortAudioDevice()
	if err := dev.Init(); err != nil {
		conn.Close()
		return nil, nil, err
	}

	release = func() {
		if cerr := dev.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("close audio device")
		}
		if cerr := conn.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("close assistant channel")
		}
	}

	var (
		listener Listener
		chime    Chime
		stt      *WhisperTranscriber
	)
	if opts.Trigger {
		stt, err = NewWhisperTranscriber(opts.WhisperModelPath, WhisperLanguage(opts.Device.Language))
		if err != nil {
			release()
			return nil, nil, fmt.Errorf("trigger recognizer: %w", err)
		}
		listener = NewLocalListener(NewSilenceRecorder(), stt)
		if opts.ChimePath != "" {
			chime = NewSoundChime(opts.ChimePath)
		}

		closeDevices := release
		release = func() {
			if cerr := stt.Close(); cerr != nil {
				log.Warn().Err(cerr).Msg("close whisper model")
			}
			closeDevices()
		}
	}

	conv := NewGRPCConversation(embedded.NewEmbeddedAssistantClient(conn), dev, opts.Device, log)
	return NewLoop(conv, listener, chime, log), release, nil
}
