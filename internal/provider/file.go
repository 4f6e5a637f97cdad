package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/fabriclens/fabriclens/internal/apperr"
	"github.com/fabriclens/fabriclens/internal/graph"
)

// FileSource serves the payload from a local JSON file, for exploring an
// exported dataset without a running provider. Refresh is a no-op because
// every Graph call re-reads the file.
type FileSource struct {
	path string
}

// NewFileSource creates a source reading from the given JSON file.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Graph reads and decodes the payload file.
func (f *FileSource) Graph(ctx context.Context) (*graph.Payload, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w: %v", f.path, apperr.ErrUnavailable, err)
	}
	var p graph.Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.path, err)
	}
	return &p, nil
}

// Stats derives the summary counts from the payload file.
func (f *FileSource) Stats(ctx context.Context) (*graph.Stats, error) {
	p, err := f.Graph(ctx)
	if err != nil {
		return nil, err
	}
	return &graph.Stats{
		WorkspaceCount: len(p.Workspaces),
		ItemCount:      len(p.Items),
		EdgeCount:      len(p.Edges),
	}, nil
}

// Refresh is a no-op for a file source.
func (f *FileSource) Refresh(ctx context.Context) error { return nil }

// Watch runs an fsnotify watcher on the payload file's directory until ctx
// is cancelled, invoking cb after the file changes. Rapid write bursts are
// debounced so editors that write in several chunks trigger one reload.
func (f *FileSource) Watch(ctx context.Context, logger *slog.Logger, cb func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := filepath.Dir(f.path)
	if err := w.Add(dir); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("path", f.path))

	var debounce *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-fire:
			logger.Info("watcher: payload changed, reloading")
			cb()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(f.path) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(200 * time.Millisecond)
				fire = debounce.C
			} else {
				debounce.Reset(200 * time.Millisecond)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher: error", slog.String("error", err.Error()))
		}
	}
}
