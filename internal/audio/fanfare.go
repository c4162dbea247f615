// Package audio plays an optional fanfare alongside the confetti.
package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
	"github.com/ncruces/zenity"
)

// ErrUnsupportedFormat is returned by Load for a file that is not wav, mp3 or flac.
var ErrUnsupportedFormat = errors.New("unsupported audio file type")

// Sound is what the hosts drive: started with the effect, paused when it is
// paused or quit.
type Sound interface {
	Play() error
	Pause()
}

var _ Sound = (*Fanfare)(nil)

type decodeFunc func(f *os.File) (beep.StreamSeekCloser, beep.Format, error)

// decoderFor picks a decoder by file extension.
func decoderFor(path string) (decodeFunc, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".wav":
		return func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return wav.Decode(f) }, nil
	case ".mp3":
		return func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return mp3.Decode(f) }, nil
	case ".flac":
		return func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return flac.Decode(f) }, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Fanfare is a single sound played once when the confetti starts.
// A nil *Fanfare is valid and silent.
type Fanfare struct {
	file     *os.File
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	playing  bool
	log      *slog.Logger
}

// Load opens and decodes the file at path.
func Load(path string, logger *slog.Logger) (*Fanfare, error) {
	decode, err := decoderFor(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	streamer, format, err := decode(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	logger.Debug("fanfare loaded", "path", path, "sample_rate", int(format.SampleRate), "duration", duration(streamer, format))

	return &Fanfare{
		file:     f,
		streamer: streamer,
		format:   format,
		ctrl:     &beep.Ctrl{Streamer: streamer},
		log:      logger,
	}, nil
}

func duration(s beep.StreamSeekCloser, format beep.Format) time.Duration {
	return format.SampleRate.D(s.Len())
}

// Play starts playback on the speaker.
func (a *Fanfare) Play() error {
	if a == nil || a.playing {
		return nil
	}
	bufferSize := a.format.SampleRate.N(time.Second / 20)
	if err := speaker.Init(a.format.SampleRate, bufferSize); err != nil {
		return fmt.Errorf("initializing speaker: %w", err)
	}
	a.playing = true
	speaker.Play(beep.Seq(a.ctrl, beep.Callback(func() {
		a.log.Debug("fanfare done")
	})))
	return nil
}

// Pause silences the fanfare. The confetti cannot resume, so neither does
// the sound.
func (a *Fanfare) Pause() {
	if a == nil || !a.playing {
		return
	}
	speaker.Lock()
	a.ctrl.Paused = true
	speaker.Unlock()
}

// Close stops playback and releases the file.
func (a *Fanfare) Close() error {
	if a == nil {
		return nil
	}
	if a.playing {
		speaker.Lock()
		speaker.Clear()
		speaker.Unlock()
		a.playing = false
	}
	var firstErr error
	if a.streamer != nil {
		if err := a.streamer.Close(); err != nil {
			firstErr = err
		}
		a.streamer = nil
	}
	if a.file != nil {
		if err := a.file.Close(); err != nil && firstErr == nil && !errors.Is(err, os.ErrClosed) {
			firstErr = err
		}
		a.file = nil
	}
	return firstErr
}

// PickSound asks the user for a sound file. A cancelled dialog returns ""
// and no error.
func PickSound() (string, error) {
	filename, err := zenity.SelectFile(
		zenity.Title("Pick a confetti fanfare"),
		zenity.FileFilters{{
			Name:     "Audio",
			Patterns: []string{"*.wav", "*.mp3", "*.flac"},
		}},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return "", nil
		}
		return "", err
	}
	return filename, nil
}
