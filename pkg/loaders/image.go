package loaders

import (
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"os"

	"github.com/go-gl/mathgl/mgl32"
	colorful "github.com/lucasb-eyer/go-colorful"
	_ "golang.org/x/image/bmp" // BMP decoder
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // TIFF decoder
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/df07/go-blackhole-raytracer/pkg/sky"
)

// ImageData contains loaded image data as a linear color array
type ImageData struct {
	Width  int
	Height int
	Pixels []mgl32.Vec3
}

// LoadImage loads an image and converts it to a row-major color array.
// If maxWidth is positive and the image is wider, it is downscaled
// bilinearly to maxWidth keeping its aspect ratio.
func LoadImage(filename string, maxWidth int) (*ImageData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	// format is detected from the file header
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", filename, err)
	}

	return FromImage(downscale(img, maxWidth)), nil
}

// FromImage converts a decoded image to ImageData, decoding sRGB texels
// to linear radiance
func FromImage(img image.Image) *ImageData {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	pixels := make([]mgl32.Vec3, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			// RGBA returns uint32 in [0, 65535]
			c := colorful.Color{R: float64(r) / 65535, G: float64(g) / 65535, B: float64(b) / 65535}
			lr, lg, lb := c.LinearRgb()
			pixels[y*width+x] = mgl32.Vec3{float32(lr), float32(lg), float32(lb)}
		}
	}

	return &ImageData{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}
}

func downscale(img image.Image, maxWidth int) image.Image {
	bounds := img.Bounds()
	if maxWidth <= 0 || bounds.Dx() <= maxWidth {
		return img
	}

	height := max(1, bounds.Dy()*maxWidth/bounds.Dx())
	dst := image.NewRGBA64(image.Rect(0, 0, maxWidth, height))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, xdraw.Src, nil)
	return dst
}

// LoadSkyTexture loads an equirectangular environment map as a sky
func LoadSkyTexture(filename string, maxWidth int) (*sky.Texture, error) {
	data, err := LoadImage(filename, maxWidth)
	if err != nil {
		return nil, fmt.Errorf("failed to load sky texture: %w", err)
	}
	return sky.NewTexture(data.Width, data.Height, data.Pixels), nil
}
