package media

import (
	"encoding/binary"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/pkg/errors"
)

// WAVAudioSink records 16-bit PCM into a WAV file. The header is finalized
// on Close.
type WAVAudioSink struct {
	file    *os.File
	enc     *wav.Encoder
	format  *audio.Format
	samples []int
}

func NewWAVAudioSink(filename string) (*WAVAudioSink, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, err
	}
	return &WAVAudioSink{file: f}, nil
}

func (s *WAVAudioSink) Configure(rate, channels, format int) error {
	if format != S16LE {
		return errNotSupported
	}
	if s.enc != nil {
		return errors.New("WAV sink already configured")
	}
	s.format = &audio.Format{NumChannels: channels, SampleRate: rate}
	s.enc = wav.NewEncoder(s.file, rate, 16, channels, 1)
	return nil
}

func (s *WAVAudioSink) Write(p []byte) (int, error) {
	if s.enc == nil {
		return 0, errNotConfigured
	}

	n := len(p) &^ 1
	s.samples = s.samples[:0]
	for i := 0; i < n; i += 2 {
		s.samples = append(s.samples, int(int16(binary.LittleEndian.Uint16(p[i:]))))
	}

	buf := &audio.IntBuffer{
		Format:         s.format,
		Data:           s.samples,
		SourceBitDepth: 16,
	}
	if err := s.enc.Write(buf); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *WAVAudioSink) WriteTimeout(p []byte, timeout time.Duration) (int, error) {
	return s.Write(p)
}

func (s *WAVAudioSink) Close() error {
	if s.enc != nil {
		if err := s.enc.Close(); err != nil {
			s.file.Close()
			return err
		}
	}
	return s.file.Close()
}

func init() {
	RegisterAudioSinkType("wav", func(path string) (AudioSink, error) {
		sink, err := NewWAVAudioSink(path)
		if err != nil {
			return nil, err
		}
		return sink, nil
	})
}
