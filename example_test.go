package watermark_test

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"

	watermark "github.com/yyyoichi/aethertag"
)

func Example_watermark() {
	// Create a simple gradient image (64x64 pixels)
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < img.Bounds().Dy(); y++ {
		for x := 0; x < img.Bounds().Dx(); x++ {
			r := uint8(x * 255 / 64)
			g := uint8(y * 255 / 64)
			b := uint8((x + y) * 255 / 128)
			img.Set(x, y, color.RGBA{r, g, b, 255})
		}
	}

	ctx := context.Background()
	text := `{"id":"abc","fp":"deadbeefcafefeed","ts":1700000000000,"meta":"{}"}`

	// Embed the framed payload
	marked, err := watermark.Embed(ctx, img, text)
	if err != nil {
		fmt.Printf("Error embedding watermark: %v\n", err)
		return
	}

	// Extract it back
	extracted, found, err := watermark.Extract(ctx, marked)
	if err != nil {
		fmt.Printf("Error extracting watermark: %v\n", err)
		return
	}
	fmt.Println(found)
	fmt.Println(extracted)

	var record struct {
		Fingerprint string `json:"fp"`
	}
	_ = json.Unmarshal([]byte(extracted), &record)
	fmt.Println(record.Fingerprint)

	// Output:
	// true
	// {"id":"abc","fp":"deadbeefcafefeed","ts":1700000000000,"meta":"{}"}
	// deadbeefcafefeed
}
