package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	watermark "github.com/yyyoichi/aethertag"
	"github.com/yyyoichi/aethertag/frame"
	"github.com/yyyoichi/aethertag/internal/imagecodec"
	"github.com/yyyoichi/aethertag/internal/ledger"
)

type protectOutput struct {
	Output      string  `json:"output"`
	ID          string  `json:"id,omitempty"`
	Signature   string  `json:"signature,omitempty"`
	Fingerprint string  `json:"fingerprint,omitempty"`
	Bits        int     `json:"bits"`
	PSNR        float64 `json:"psnr,omitempty"`
}

func runProtect(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("protect", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		in         = fs.StringP("in", "i", "", "input image (required)")
		out        = fs.StringP("out", "o", "", "output PNG (default: <in>_aether_protected.png next to the input)")
		meta       = fs.StringP("meta", "m", "", "caller metadata stored in the payload")
		client     = fs.Bool("client", false, "embed the client payload form (sig, ts, meta)")
		text       = fs.String("text", "", "embed this bare text instead of a payload record")
		ledgerPath = fs.String("ledger", "", "SQLite ledger recording issued payloads")
		verbose    = fs.BoolP("verbose", "v", false, "debug logging")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return fmt.Errorf("--in is required")
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(*in), watermark.ProtectedName(*in))
	}

	opts := []watermark.Option{watermark.WithLogger(newTextLogger(stderr, *verbose))}
	if *ledgerPath != "" {
		db, err := ledger.Open(*ledgerPath)
		if err != nil {
			return err
		}
		defer db.Close()
		opts = append(opts, watermark.WithLedger(db))
	}
	w, err := watermark.New(opts...)
	if err != nil {
		return err
	}

	original, err := os.ReadFile(*in)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	var res *watermark.Protected
	switch {
	case fs.Changed("text"):
		res, err = protectText(ctx, w, original, *text)
	case *client:
		res, err = w.ProtectClient(ctx, original, *meta)
	default:
		res, err = w.Protect(ctx, original, *meta)
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, res.Image, 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	summary := protectOutput{
		Output:      *out,
		ID:          res.ID,
		Signature:   res.Signature,
		Fingerprint: res.Fingerprint,
		Bits:        res.Bits,
	}
	if res.Quality.MSE > 0 {
		summary.PSNR = res.Quality.PSNR
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

func protectText(ctx context.Context, w *watermark.Watermark, original []byte, text string) (*watermark.Protected, error) {
	src, _, err := imagecodec.Decode(original, imagecodec.DefaultMaxPixels)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", watermark.ErrDecode, err)
	}
	marked, err := w.ProtectText(ctx, src, text)
	if err != nil {
		return nil, err
	}
	data, err := imagecodec.EncodePNG(marked)
	if err != nil {
		return nil, err
	}
	return &watermark.Protected{
		Image:     data,
		Signature: text,
		Text:      text,
		Bits:      (len(text) + frame.Overhead()) * 8,
	}, nil
}
