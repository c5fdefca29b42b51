package cmd

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/spigell/pathfinder/internal/upload"
)

// watchUploads forwards resumes dropped into dir to the conversation.
func watchUploads(ctx context.Context, c conversation, dir string, out io.Writer, logger *zap.Logger) (func(), error) {
	watcher, err := upload.NewWatcher(logger)
	if err != nil {
		return nil, err
	}

	paths, err := watcher.Watch(ctx, dir)
	if err != nil {
		watcher.Close()
		return nil, err
	}

	go func() {
		for path := range paths {
			if err := uploadFile(ctx, c, path, out, logger); err != nil {
				logger.Warn("uploading a dropped resume", zap.String("path", path), zap.Error(err))
			}
		}
	}()

	return func() {
		if err := watcher.Close(); err != nil {
			logger.Debug("closing the drop folder watcher", zap.Error(err))
		}
	}, nil
}
