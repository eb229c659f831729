//go:build !linux

package fbdev

import "errors"

type Device struct{}

func Open(path string) (*Device, error) {
	return nil, errors.New("Framebuffer devices require Linux")
}

func (dev *Device) Width() int                              { return 0 }
func (dev *Device) Height() int                             { return 0 }
func (dev *Device) Clear() error                            { return nil }
func (dev *Device) Blit(x, y, w, h int, pix []uint16) error { return nil }
func (dev *Device) Close() error                            { return nil }
