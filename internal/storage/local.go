package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	dirPermissions  = 0o755
	filePermissions = 0o644
)

// LocalStore writes audio files to a directory served under a URL prefix.
type LocalStore struct {
	dir       string
	urlPrefix string
}

// NewLocalStore creates a LocalStore. The directory is created on first write.
func NewLocalStore(dir, urlPrefix string) *LocalStore {
	return &LocalStore{dir: dir, urlPrefix: strings.TrimSuffix(urlPrefix, "/")}
}

// Save writes data to dir/name and returns its URL.
func (s *LocalStore) Save(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if name == "" || filepath.Base(name) != name {
		return "", fmt.Errorf("invalid audio file name %q", name)
	}
	if err := os.MkdirAll(s.dir, dirPermissions); err != nil {
		return "", fmt.Errorf("create audio dir: %w", err)
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, filePermissions); err != nil {
		return "", fmt.Errorf("write audio file: %w", err)
	}

	log.Debug().Str("path", path).Int("size", len(data)).Msg("Audio file written")
	return s.urlPrefix + "/" + name, nil
}

// Sweep deletes regular files whose modification time is before cutoff and
// returns how many were removed.
func (s *LocalStore) Sweep(cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read audio dir: %w", err)
	}

	removed := 0
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("file", e.Name()).Msg("Failed to remove expired audio file")
			continue
		}
		removed++
	}
	return removed, nil
}

// RunSweeper deletes files older than retention every interval until ctx is done.
func (s *LocalStore) RunSweeper(ctx context.Context, interval, retention time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := s.Sweep(now.Add(-retention))
			if err != nil {
				log.Error().Err(err).Msg("Audio sweep failed")
				continue
			}
			if n > 0 {
				log.Info().Int("removed", n).Dur("retention", retention).Msg("Expired audio files removed")
			}
		}
	}
}
