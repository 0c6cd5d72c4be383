package test

import (
	"context"
	"fmt"
	"image"
	"image/color"

	watermark "github.com/yyyoichi/aethertag"
)

func ExampleEmbed() {
	// Create a simple gradient image (100x100 pixels)
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < img.Bounds().Dy(); y++ {
		for x := 0; x < img.Bounds().Dx(); x++ {
			r := uint8(x * 255 / 100)
			g := uint8(y * 255 / 100)
			b := uint8((x + y) * 255 / 200)
			img.Set(x, y, color.RGBA{r, g, b, 255})
		}
	}

	// Embed bare text in the blue channel
	ctx := context.Background()
	markedImg, err := watermark.Embed(ctx, img, "hello")
	if err != nil {
		fmt.Printf("Error embedding watermark: %v\n", err)
		return
	}

	// Extract it again
	text, found, err := watermark.Extract(ctx, markedImg)
	if err != nil {
		fmt.Printf("Error extracting watermark: %v\n", err)
		return
	}
	fmt.Printf("Found: %v\n", found)
	fmt.Printf("Text:  %s\n", text)

	// The original image carries nothing
	_, found, _ = watermark.Extract(ctx, img)
	fmt.Printf("Original found: %v\n", found)

	// Output:
	// Found: true
	// Text:  hello
	// Original found: false
}
