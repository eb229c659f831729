// Copyright 2019 Lanikai Labs. All rights reserved.

package color

import (
	"image"
)

// YCbCrToRGB565 converts one pixel using the integer ITU-R BT.601 transform
// and packs it as 5-6-5 bits.
func YCbCrToRGB565(y, cb, cr uint8) uint16 {
	yy := int32(y)
	u := int32(cb) - 128
	v := int32(cr) - 128

	r := clamp(yy + (v*359)>>8)
	g := clamp(yy - (u*88+v*183)>>8)
	b := clamp(yy + (u*454)>>8)

	return uint16(r&0xf8)<<8 | uint16(g&0xfc)<<3 | uint16(b>>3)
}

func clamp(x int32) int32 {
	if x < 0 {
		return 0
	}
	if x > 255 {
		return 255
	}
	return x
}

// I420ToRGB565 converts the top-left width x height pixels of a 4:2:0 image
// into dst, which is packed with a stride of width. The source strides may be
// larger than width, as decoders typically align planes to 16-pixel
// macroblocks.
func I420ToRGB565(dst []uint16, src *image.YCbCr, width, height int) {
	min := src.Rect.Min
	for j := 0; j < height; j++ {
		yrow := src.Y[(min.Y+j)*src.YStride+min.X:]
		crow := (min.Y/2 + j/2) * src.CStride
		out := dst[j*width : j*width+width]
		for i := range out {
			c := crow + min.X/2 + i/2
			out[i] = YCbCrToRGB565(yrow[i], src.Cb[c], src.Cr[c])
		}
	}
}

// I420ToRGB565Scaled converts a srcWidth x srcHeight region of src into a
// dstWidth x dstHeight image in dst using nearest-neighbor sampling.
func I420ToRGB565Scaled(dst []uint16, src *image.YCbCr, srcWidth, srcHeight, dstWidth, dstHeight int) {
	min := src.Rect.Min

	// Precompute horizontal source columns.
	cols := make([]int, dstWidth)
	for i := range cols {
		cols[i] = i * srcWidth / dstWidth
	}

	for j := 0; j < dstHeight; j++ {
		sy := j * srcHeight / dstHeight
		yrow := (min.Y + sy) * src.YStride
		crow := (min.Y/2 + sy/2) * src.CStride
		out := dst[j*dstWidth : j*dstWidth+dstWidth]
		for i, sx := range cols {
			c := crow + min.X/2 + sx/2
			out[i] = YCbCrToRGB565(src.Y[yrow+min.X+sx], src.Cb[c], src.Cr[c])
		}
	}
}
