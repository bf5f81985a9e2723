package detector

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
)

// prepareInput resizes the image to the model's square input size and lays
// the pixels out channel-first (RGB planes), scaled to [0,1].
func prepareInput(img image.Image, inputSize int) []float32 {
	//resize image to the size the model was trained on
	//the image resize library in use might be slow when larger images are used
	//-> (see https://github.com/fawick/speedtest-resize for comparison)
	resized := imaging.Resize(img, inputSize, inputSize, imaging.Box)

	stride := inputSize * inputSize
	input := make([]float32, 3*stride)
	idx := 0
	for y := 0; y < inputSize; y++ {
		for x := 0; x < inputSize; x++ {
			r, g, b, _ := resized.At(x, y).RGBA()
			input[idx] = float32(r>>8) / 255.0
			input[idx+stride] = float32(g>>8) / 255.0
			input[idx+2*stride] = float32(b>>8) / 255.0
			idx++
		}
	}
	return input
}

// Orient applies the EXIF orientation found in the raw upload bytes to the
// already decoded image, so the model sees the picture the way the camera
// did. Images without a usable orientation tag are returned unchanged.
func Orient(raw []byte, img image.Image) image.Image {
	x, err := exif.Decode(bytes.NewReader(raw))
	if err != nil {
		return img
	}

	orientTag, err := x.Get(exif.Orientation)
	if err != nil {
		return img
	}

	orientation, err := orientTag.Int(0)
	if err != nil {
		return img
	}

	//imaging rotates counter-clockwise
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	}
	return img
}
