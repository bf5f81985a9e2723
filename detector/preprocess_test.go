package detector

import (
	"image"
	"image/color"
	"testing"
)

func TestPrepareInputChannelLayout(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	img.Set(1, 0, color.RGBA{G: 255, A: 255})
	img.Set(0, 1, color.RGBA{B: 255, A: 255})
	img.Set(1, 1, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	input := prepareInput(img, 2)

	equals(t, 12, len(input))

	//red plane, then green, then blue; pixels in row-major order
	equals(t, []float32{1, 0, 0, 1}, input[0:4])
	equals(t, []float32{0, 1, 0, 1}, input[4:8])
	equals(t, []float32{0, 0, 1, 1}, input[8:12])
}

func TestPrepareInputResizesToModelInput(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 31, 17))

	input := prepareInput(img, 8)

	equals(t, 3*8*8, len(input))
}

func TestOrientWithoutExifReturnsImageUnchanged(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))

	oriented := Orient([]byte("definitely not a jpeg"), img)

	equals(t, image.Image(img), oriented)
}
