//go:build linux

package fbdev

import (
	"sync"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// ioctl requests from <linux/fb.h>
const (
	fbioGetVScreenInfo = 0x4600
	fbioGetFScreenInfo = 0x4602
)

// struct fb_var_screeninfo, up to bits_per_pixel.
type varScreenInfo struct {
	xres         uint32
	yres         uint32
	xresVirtual  uint32
	yresVirtual  uint32
	xoffset      uint32
	yoffset      uint32
	bitsPerPixel uint32
	grayscale    uint32
	_            [32]uint32
}

// struct fb_fix_screeninfo
type fixScreenInfo struct {
	id           [16]byte
	smemStart    uintptr
	smemLen      uint32
	typ          uint32
	typeAux      uint32
	visual       uint32
	xpanstep     uint16
	ypanstep     uint16
	ywrapstep    uint16
	lineLength   uint32
	mmioStart    uintptr
	mmioLen      uint32
	accel        uint32
	capabilities uint16
	reserved     [2]uint16
}

// Device is a memory-mapped framebuffer.
type Device struct {
	path string
	fd   int
	mmap []byte

	width        int
	height       int
	bitsPerPixel int
	lineLength   int

	mu sync.Mutex
}

// Open maps the framebuffer at path. Only 16 and 32 bits per pixel are
// supported.
func Open(path string) (*Device, error) {
	fd, err := unix.Open(path, unix.O_RDWR, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}

	dev := &Device{path: path, fd: fd}
	if err := dev.init(); err != nil {
		unix.Close(fd)
		return nil, err
	}

	log.Info("%s: %dx%d, %d bpp, %d bytes per line", path, dev.width, dev.height, dev.bitsPerPixel, dev.lineLength)
	return dev, nil
}

func (dev *Device) ioctl(request uint, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(
		unix.SYS_IOCTL,
		uintptr(dev.fd),
		uintptr(request),
		uintptr(arg),
	)
	if errno != 0 {
		return errno
	}
	return nil
}

func (dev *Device) init() error {
	var vinfo varScreenInfo
	if err := dev.ioctl(fbioGetVScreenInfo, unsafe.Pointer(&vinfo)); err != nil {
		return errors.Wrap(err, "FBIOGET_VSCREENINFO")
	}
	var finfo fixScreenInfo
	if err := dev.ioctl(fbioGetFScreenInfo, unsafe.Pointer(&finfo)); err != nil {
		return errors.Wrap(err, "FBIOGET_FSCREENINFO")
	}

	dev.width = int(vinfo.xres)
	dev.height = int(vinfo.yres)
	dev.bitsPerPixel = int(vinfo.bitsPerPixel)
	dev.lineLength = int(finfo.lineLength)

	if dev.bitsPerPixel != 16 && dev.bitsPerPixel != 32 {
		return errors.Errorf("%s: unsupported depth %d bpp", dev.path, dev.bitsPerPixel)
	}

	var err error
	dev.mmap, err = unix.Mmap(
		dev.fd,
		0,
		int(finfo.smemLen),
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_SHARED,
	)
	return errors.Wrap(err, "mmap")
}

func (dev *Device) Width() int  { return dev.width }
func (dev *Device) Height() int { return dev.height }

func (dev *Device) Clear() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	for i := range dev.mmap {
		dev.mmap[i] = 0
	}
	return nil
}

func (dev *Device) Blit(x, y, w, h int, pix []uint16) error {
	if x < 0 || y < 0 || x+w > dev.width || y+h > dev.height || len(pix) < w*h {
		return errors.Errorf("blit %dx%d at (%d,%d) outside %dx%d display", w, h, x, y, dev.width, dev.height)
	}

	dev.mu.Lock()
	defer dev.mu.Unlock()
	bpp := dev.bitsPerPixel / 8
	for row := 0; row < h; row++ {
		off := (y+row)*dev.lineLength + x*bpp
		putRow(dev.mmap[off:off+w*bpp], pix[row*w:row*w+w], dev.bitsPerPixel)
	}
	return nil
}

func (dev *Device) Close() error {
	if dev.mmap != nil {
		if err := unix.Munmap(dev.mmap); err != nil {
			return err
		}
		dev.mmap = nil
	}
	return unix.Close(dev.fd)
}
