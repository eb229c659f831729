//////////////////////////////////////////////////////////////////////////////
//
// File media sink
//
// Copyright 2019 Lanikai Labs. All rights reserved.
//
//////////////////////////////////////////////////////////////////////////////

package media

import (
	"os"
	"time"

	"github.com/pkg/errors"
)

// FileMediaSink writes raw PCM to a file, useful for testing or writing
// audio to a pipe. It accepts every write immediately.
type FileMediaSink struct {
	file *os.File
}

func NewFileMediaSink(filename string) (*FileMediaSink, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, err
	}

	return &FileMediaSink{file: f}, nil
}

// Close file sink
func (s *FileMediaSink) Close() error {
	return s.file.Close()
}

// Configure file sink (to meet interface; raw PCM carries no header)
func (s *FileMediaSink) Configure(rate, channels, format int) error {
	if rate <= 0 || channels <= 0 {
		return errors.Errorf("invalid audio format: %d Hz, %d channels", rate, channels)
	}
	return nil
}

// Write buffer to file
func (s *FileMediaSink) Write(p []byte) (int, error) {
	return s.file.Write(p)
}

func (s *FileMediaSink) WriteTimeout(p []byte, timeout time.Duration) (int, error) {
	return s.file.Write(p)
}

func init() {
	RegisterAudioSinkType("file", func(path string) (AudioSink, error) {
		sink, err := NewFileMediaSink(path)
		if err != nil {
			return nil, err
		}
		return sink, nil
	})
}
