package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tbourn/faq-chat-backend/internal/ingest"
	"github.com/tbourn/faq-chat-backend/internal/rag"
)

type ingestOptions struct {
	raw      string
	clean    string
	out      string
	encoding string
	watch    bool
	noIndex  bool
}

func newIngestCmd() *cobra.Command {
	var opts ingestOptions
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Clean the FAQ export and load it into the vector index",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (opts.raw == "") == (opts.clean == "") {
				return errors.New("exactly one of --raw or --clean is required")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runIngest(log.Logger.WithContext(ctx), opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.raw, "raw", "", "raw spreadsheet export (Q./A. rows)")
	f.StringVar(&opts.clean, "clean", "", "clean CSV with id,num,question,answer[,category]")
	f.StringVar(&opts.out, "out", "qa_clean.csv", "where --raw writes the clean CSV")
	f.StringVar(&opts.encoding, "encoding", "cp949", "encoding of the --raw file (cp949|utf-8)")
	f.BoolVar(&opts.watch, "watch", false, "re-ingest whenever the input file changes")
	f.BoolVar(&opts.noIndex, "no-index", false, "only write the clean CSV")
	return cmd
}

func runIngest(ctx context.Context, opts ingestOptions) error {
	var index func(context.Context, []ingest.Entry) error
	if !opts.noIndex {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		b, err := buildBackends(ctx, cfg)
		if err != nil {
			return err
		}
		defer b.Close()

		ix := ingest.NewIndexer(rag.EmbedderWithTimeout(b.docEmbedder, cfg.UpstreamTimeout), b.index, cfg.RAG.Namespace)
		index = func(ctx context.Context, entries []ingest.Entry) error {
			if _, err := ix.Build(ctx, entries); err != nil {
				return err
			}
			return b.flush()
		}
	}

	once := func(ctx context.Context) error {
		entries, err := loadEntries(opts)
		if err != nil {
			return err
		}
		log.Ctx(ctx).Info().Int("entries", len(entries)).Msg("entries loaded")
		if len(entries) == 0 {
			return ingest.ErrNoEntries
		}
		if index == nil {
			return nil
		}
		return index(ctx, entries)
	}

	if err := once(ctx); err != nil {
		return err
	}
	if !opts.watch {
		return nil
	}
	path := opts.clean
	if opts.raw != "" {
		path = opts.raw
	}
	return ingest.Watch(ctx, path, once)
}

// loadEntries reads --clean directly, or converts --raw and writes --out.
func loadEntries(opts ingestOptions) ([]ingest.Entry, error) {
	if opts.clean != "" {
		f, err := os.Open(opts.clean)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ingest.ReadCleanCSV(f)
	}

	f, err := os.Open(opts.raw)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	entries, err := ingest.ParseRawCSV(f, opts.encoding)
	if err != nil {
		return nil, err
	}

	out, err := os.Create(opts.out)
	if err != nil {
		return nil, err
	}
	if err := ingest.WriteCleanCSV(out, entries); err != nil {
		out.Close()
		return nil, fmt.Errorf("write %s: %w", opts.out, err)
	}
	if err := out.Close(); err != nil {
		return nil, err
	}
	log.Info().Str("out", opts.out).Int("entries", len(entries)).Msg("clean csv written")
	return entries, nil
}
