package color

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestYCbCrToRGB565(t *testing.T) {
	assert.Equal(t, uint16(0x0000), YCbCrToRGB565(0, 128, 128))
	assert.Equal(t, uint16(0xffff), YCbCrToRGB565(255, 128, 128))

	// Mid gray: r=g=b=128.
	assert.Equal(t, uint16(0x8410), YCbCrToRGB565(128, 128, 128))

	// Green goes negative and clamps to 0.
	assert.Equal(t, uint16(0xb01c), YCbCrToRGB565(0, 255, 255))

	// Red overflows and clamps to 255.
	assert.Equal(t, uint16(0xf800), YCbCrToRGB565(255, 128, 255)&0xf800)
}

// Fills a macroblock-aligned image so that luma encodes the column and every
// chroma sample is neutral.
func testImage(w, h int) *image.YCbCr {
	aligned := image.Rect(0, 0, (w+15)&^15, (h+15)&^15)
	img := image.NewYCbCr(aligned, image.YCbCrSubsampleRatio420)
	for y := 0; y < aligned.Dy(); y++ {
		for x := 0; x < aligned.Dx(); x++ {
			img.Y[y*img.YStride+x] = byte(x * 8)
		}
	}
	for i := range img.Cb {
		img.Cb[i] = 128
		img.Cr[i] = 128
	}
	return img
}

func TestI420ToRGB565UsesStride(t *testing.T) {
	img := testImage(10, 6)
	assert.Equal(t, 16, img.YStride)

	dst := make([]uint16, 10*6)
	I420ToRGB565(dst, img, 10, 6)

	for y := 0; y < 6; y++ {
		for x := 0; x < 10; x++ {
			assert.Equal(t, YCbCrToRGB565(byte(x*8), 128, 128), dst[y*10+x])
		}
	}
}

func TestI420ToRGB565Scaled(t *testing.T) {
	img := testImage(32, 16)
	dst := make([]uint16, 16*8)
	I420ToRGB565Scaled(dst, img, 32, 16, 16, 8)

	for y := 0; y < 8; y++ {
		for x := 0; x < 16; x++ {
			assert.Equal(t, YCbCrToRGB565(byte(2*x*8), 128, 128), dst[y*16+x])
		}
	}
}

func BenchmarkI420ToRGB565At720P(b *testing.B) {
	img := testImage(1280, 720)
	dst := make([]uint16, 1280*720)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		I420ToRGB565(dst, img, 1280, 720)
	}
}

func BenchmarkI420ToRGB565ScaledTo320x180(b *testing.B) {
	img := testImage(1280, 720)
	dst := make([]uint16, 320*180)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		I420ToRGB565Scaled(dst, img, 1280, 720, 320, 180)
	}
}
