package ingest

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Watch calls onChange each time the file at path is created or written,
// until ctx is done. The parent directory is watched so editors that
// replace the file by rename are still seen. Errors from onChange are
// logged and do not stop the watch.
func Watch(ctx context.Context, path string, onChange func(ctx context.Context) error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	logger := log.Ctx(ctx).With().Str("path", abs).Logger()
	logger.Info().Msg("watching for changes")

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			logger.Info().Str("op", ev.Op.String()).Msg("change detected; re-ingesting")
			if err := onChange(ctx); err != nil {
				logger.Error().Err(err).Msg("re-ingest failed")
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("watch error")
		}
	}
}
