// Package fbdev drives a Linux framebuffer device (/dev/fbN) as a display.
package fbdev

import (
	"encoding/binary"

	"github.com/lanikai/alohaplayer/internal/logging"
	"github.com/lanikai/alohaplayer/internal/media"
)

var log = logging.DefaultLogger.WithTag("fbdev")

const defaultDevice = "/dev/fb0"

// Expands an RGB565 pixel to 32-bit XRGB8888, replicating the high bits into
// the low bits so that full intensity stays full.
func rgb565ToXRGB(p uint16) uint32 {
	r := uint32(p>>11) & 0x1f
	g := uint32(p>>5) & 0x3f
	b := uint32(p) & 0x1f
	r = r<<3 | r>>2
	g = g<<2 | g>>4
	b = b<<3 | b>>2
	return 0xff000000 | r<<16 | g<<8 | b
}

// Writes one row of pixels into a framebuffer row of the given depth.
func putRow(dst []byte, pix []uint16, bitsPerPixel int) {
	switch bitsPerPixel {
	case 16:
		for i, p := range pix {
			binary.LittleEndian.PutUint16(dst[2*i:], p)
		}
	case 32:
		for i, p := range pix {
			binary.LittleEndian.PutUint32(dst[4*i:], rgb565ToXRGB(p))
		}
	}
}

func init() {
	media.RegisterDisplayType("fb", func(path string) (media.Display, error) {
		if path == "" {
			path = defaultDevice
		}
		d, err := Open(path)
		if err != nil {
			return nil, err
		}
		return d, nil
	})
}
