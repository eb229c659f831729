package media

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
)

// MemoryDisplay is a Display backed by an in-memory framebuffer. It stands
// in for a panel in headless runs and tests.
type MemoryDisplay struct {
	mu     sync.Mutex
	width  int
	height int
	pix    []uint16

	blits  int
	clears int
}

func NewMemoryDisplay(width, height int) *MemoryDisplay {
	return &MemoryDisplay{
		width:  width,
		height: height,
		pix:    make([]uint16, width*height),
	}
}

func (d *MemoryDisplay) Width() int  { return d.width }
func (d *MemoryDisplay) Height() int { return d.height }

func (d *MemoryDisplay) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.pix {
		d.pix[i] = 0
	}
	d.clears++
	return nil
}

func (d *MemoryDisplay) Blit(x, y, w, h int, pix []uint16) error {
	if x < 0 || y < 0 || w < 0 || h < 0 || x+w > d.width || y+h > d.height {
		return errors.Errorf("blit %dx%d at (%d,%d) outside %dx%d display", w, h, x, y, d.width, d.height)
	}
	if len(pix) < w*h {
		return errors.Errorf("blit %dx%d with only %d pixels", w, h, len(pix))
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for row := 0; row < h; row++ {
		copy(d.pix[(y+row)*d.width+x:], pix[row*w:row*w+w])
	}
	d.blits++
	return nil
}

// Pixel returns the pixel at (x, y).
func (d *MemoryDisplay) Pixel(x, y int) uint16 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pix[y*d.width+x]
}

// Counts returns the number of blits and clears performed.
func (d *MemoryDisplay) Counts() (blits, clears int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.blits, d.clears
}

// ParseGeometry parses "WxH".
func ParseGeometry(s string) (width, height int, err error) {
	if n, err := fmt.Sscanf(s, "%dx%d", &width, &height); n != 2 || err != nil {
		return 0, 0, errors.Errorf("invalid geometry '%s'", s)
	}
	if width <= 0 || height <= 0 {
		return 0, 0, errors.Errorf("invalid geometry '%s'", s)
	}
	return width, height, nil
}

func init() {
	RegisterDisplayType("null", func(path string) (Display, error) {
		if path == "" {
			path = "320x240"
		}
		w, h, err := ParseGeometry(path)
		if err != nil {
			return nil, err
		}
		return NewMemoryDisplay(w, h), nil
	})
}
