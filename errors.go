package alohaplayer

import "github.com/pkg/errors"

var (
	ErrAlreadyStarted = errors.New("player: already started")
	ErrNoDisplay      = errors.New("player: no display")
	ErrEmptyPlaylist  = errors.New("player: empty playlist")
	ErrNotInPlaylist  = errors.New("player: file not in playlist")
)
