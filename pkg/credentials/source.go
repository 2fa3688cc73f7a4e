package credentials

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// Source serves one provider's API key and reloads it when credentials.toml
// changes on disk. A key set through the provider's environment variable is
// fixed for the life of the Source.
type Source struct {
	mgr      *Manager
	provider string
	logger   *slog.Logger

	key     atomic.Value // string
	fromEnv bool
}

// NewSource resolves the current key for provider and returns a Source
// holding it. Call Watch to pick up later edits to credentials.toml.
func NewSource(mgr *Manager, provider string, logger *slog.Logger) (*Source, error) {
	s := &Source{
		mgr:      mgr,
		provider: provider,
		logger:   logger,
	}

	if env := EnvVarForProvider(provider); env != "" && os.Getenv(env) != "" {
		s.key.Store(os.Getenv(env))
		s.fromEnv = true
		return s, nil
	}

	key, err := mgr.GetKey(provider)
	if err != nil {
		return nil, err
	}
	s.key.Store(key)

	return s, nil
}

// APIKey returns the most recently loaded key.
func (s *Source) APIKey() string {
	key, _ := s.key.Load().(string)
	return key
}

// Reload re-reads credentials.toml. A file that fails to parse leaves the
// previous key in place.
func (s *Source) Reload() error {
	if s.fromEnv {
		return nil
	}

	key, err := s.mgr.GetKey(s.provider)
	if err != nil {
		return err
	}
	s.key.Store(key)

	return nil
}

// Watch reloads the key whenever credentials.toml is written, created,
// renamed or removed, until ctx is done. It blocks, so run it in a goroutine.
// The parent directory is watched because editors often replace the file.
func (s *Source) Watch(ctx context.Context) error {
	if s.fromEnv {
		<-ctx.Done()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating credentials watcher: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(s.mgr.GetTarget())
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watching credentials dir: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if err := s.Reload(); err != nil {
				s.logger.Warn("reloading credentials", "provider", s.provider, "error", err)
				continue
			}
			s.logger.Debug("credentials reloaded", "provider", s.provider, "key_set", s.APIKey() != "")

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("credentials watcher error: %w", err)
		}
	}
}
