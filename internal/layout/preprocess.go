package layout

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
)

// ImageNet normalization constants used when the model was trained.
var (
	normMean = [3]float32{0.485, 0.456, 0.406}
	normStd  = [3]float32{0.229, 0.224, 0.225}
)

// letterboxMapping records how a source image was placed inside the square
// model input so detections can be mapped back to source pixels.
type letterboxMapping struct {
	scale      float64
	padX, padY float64
	srcW, srcH int
	inputSize  int
}

// toImage maps a box from model-input coordinates back to source image
// pixels, clamping to the image bounds. Returns false for boxes that fall
// entirely inside the padding.
func (m letterboxMapping) toImage(box Rect) (Rect, bool) {
	x0 := (box.X - m.padX) / m.scale
	y0 := (box.Y - m.padY) / m.scale
	x1 := (box.X + box.Width - m.padX) / m.scale
	y1 := (box.Y + box.Height - m.padY) / m.scale

	x0 = clamp(x0, 0, float64(m.srcW))
	y0 = clamp(y0, 0, float64(m.srcH))
	x1 = clamp(x1, 0, float64(m.srcW))
	y1 = clamp(y1, 0, float64(m.srcH))

	if x1-x0 < 1 || y1-y0 < 1 {
		return Rect{}, false
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}, true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// letterbox resizes the image to fit a square model input, pads the
// remainder with gray, and converts to a normalized CHW float32 tensor.
func letterbox(img image.Image, inputSize int) ([]float32, letterboxMapping) {
	bounds := img.Bounds()
	srcW := bounds.Dx()
	srcH := bounds.Dy()

	scale := float64(inputSize) / float64(max(srcW, srcH))
	fitW := int(float64(srcW) * scale)
	fitH := int(float64(srcH) * scale)
	if fitW < 1 {
		fitW = 1
	}
	if fitH < 1 {
		fitH = 1
	}

	resized := imaging.Resize(img, fitW, fitH, imaging.Linear)

	padX := (inputSize - fitW) / 2
	padY := (inputSize - fitH) / 2

	canvas := image.NewNRGBA(image.Rect(0, 0, inputSize, inputSize))
	gray := color.NRGBA{128, 128, 128, 255}
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{gray}, image.Point{}, draw.Src)
	draw.Draw(canvas, image.Rect(padX, padY, padX+fitW, padY+fitH), resized, image.Point{}, draw.Src)

	data := imageToTensor(canvas, inputSize)

	return data, letterboxMapping{
		scale:     scale,
		padX:      float64(padX),
		padY:      float64(padY),
		srcW:      srcW,
		srcH:      srcH,
		inputSize: inputSize,
	}
}

// imageToTensor converts an NRGBA image to a CHW float32 tensor with
// ImageNet normalization.
func imageToTensor(img *image.NRGBA, size int) []float32 {
	plane := size * size
	data := make([]float32, 3*plane)

	for y := 0; y < size; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < size; x++ {
			idx := y*size + x
			r := float32(row[x*4]) / 255.0
			g := float32(row[x*4+1]) / 255.0
			b := float32(row[x*4+2]) / 255.0

			data[idx] = (r - normMean[0]) / normStd[0]
			data[plane+idx] = (g - normMean[1]) / normStd[1]
			data[2*plane+idx] = (b - normMean[2]) / normStd[2]
		}
	}

	return data
}
