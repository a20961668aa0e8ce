package cpu

import (
	"image"
	"image/png"
	"os"
)

// Screen dimensions in pixels.
const (
	ScreenWidth  = 512
	ScreenHeight = 256
)

// FramebufferRGBA decodes the screen memory map into a 512×256 RGBA8888 byte
// slice (length 512*256*4). Each word holds 16 pixels, least significant bit
// leftmost; a set bit is a black pixel on a white background.
func (c *Computer) FramebufferRGBA() []byte {
	pixels := make([]byte, ScreenWidth*ScreenHeight*4)

	for wordIdx := 0; wordIdx < ScreenWords; wordIdx++ {
		word := c.RAM[ScreenBase+wordIdx]
		for bit := 0; bit < 16; bit++ {
			shade := byte(0xFF)
			if word>>bit&1 != 0 {
				shade = 0x00
			}
			pixelIdx := (wordIdx*16 + bit) * 4
			pixels[pixelIdx+0] = shade
			pixels[pixelIdx+1] = shade
			pixels[pixelIdx+2] = shade
			pixels[pixelIdx+3] = 0xFF
		}
	}
	return pixels
}

// FramebufferImage returns the screen contents as an *image.RGBA.
func (c *Computer) FramebufferImage() *image.RGBA {
	return &image.RGBA{
		Pix:    c.FramebufferRGBA(),
		Stride: ScreenWidth * 4,
		Rect:   image.Rect(0, 0, ScreenWidth, ScreenHeight),
	}
}

// SaveScreenshot encodes the current screen as a PNG and writes it to filename.
func (c *Computer) SaveScreenshot(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, c.FramebufferImage())
}
