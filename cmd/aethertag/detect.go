package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	watermark "github.com/yyyoichi/aethertag"
	"github.com/yyyoichi/aethertag/frame"
	"github.com/yyyoichi/aethertag/internal/config"
	"github.com/yyyoichi/aethertag/internal/fetch"
	"github.com/yyyoichi/aethertag/internal/ledger"
)

type detectOutput struct {
	Detected         bool     `json:"detected"`
	Kind             string   `json:"kind,omitempty"`
	Version          int      `json:"version,omitempty"`
	Signature        string   `json:"signature,omitempty"`
	Timestamp        *int64   `json:"timestamp,omitempty"`
	Meta             string   `json:"meta,omitempty"`
	FilenameVerified bool     `json:"filenameVerified"`
	Registered       bool     `json:"registered"`
	Related          []string `json:"related,omitempty"`
}

func runDetect(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("detect", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		in         = fs.StringP("in", "i", "", "image file to check")
		rawURL     = fs.StringP("url", "u", "", "image URL to check")
		cfgPath    = fs.StringP("config", "c", "", "YAML config file for fetch and size limits (default: $"+config.EnvVar+")")
		cacheDir   = fs.String("cache-dir", "", "HTTP cache directory for --url (overrides fetch.cache_dir)")
		ledgerPath = fs.String("ledger", "", "SQLite ledger to check payload ids against")
		verbose    = fs.BoolP("verbose", "v", false, "debug logging")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if (*in == "") == (*rawURL == "") {
		return fmt.Errorf("exactly one of --in or --url is required")
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	if *cacheDir != "" {
		cfg.Fetch.CacheDir = *cacheDir
	}

	opts := []watermark.Option{
		watermark.WithLogger(newTextLogger(stderr, *verbose)),
		watermark.WithMaxPixels(cfg.MaxPixels),
	}
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

	var (
		data     []byte
		filename string
	)
	if *in != "" {
		data, err = os.ReadFile(*in)
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
		filename = *in
	} else {
		f := fetch.New(cfg.Fetch.CacheDir, cfg.MaxUploadBytes, cfg.Fetch.MinInterval)
		data, filename, err = f.Fetch(ctx, *rawURL)
		if err != nil {
			return err
		}
	}

	d, err := w.Detect(ctx, data, filename)
	if err != nil {
		return err
	}
	out := detectOutput{
		Detected:         d.Detected,
		FilenameVerified: d.FilenameVerified,
		Registered:       d.Registered,
	}
	if d.Detected {
		out.Kind = d.Payload.Kind.String()
		out.Version = frame.Version
		out.Related = d.Related
		out.Signature = d.Signature()
		out.Meta = d.Meta()
		if ts, ok := d.Timestamp(); ok {
			ms := ts.UnixMilli()
			out.Timestamp = &ms
		}
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
