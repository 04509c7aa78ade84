package checkpoint

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Gobusters/ectologger"
)

// Store persists the set of ticket ids still waiting to be synced as a
// newline-delimited file. The file is rewritten at the start of every run and
// shrinks one line at a time as tickets commit, so a crashed run can resume
// from whatever is left.
type Store struct {
	path   string
	logger ectologger.Logger
}

func NewStore(path string, logger ectologger.Logger) *Store {
	return &Store{
		path:   path,
		logger: logger,
	}
}

// Initialize replaces the checkpoint with the given ids.
func (s *Store) Initialize(ids []string) error {
	return s.write(ids)
}

// Read returns the ids currently in the checkpoint. A missing file is an
// empty checkpoint.
func (s *Store) Read() ([]string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint %s: %w", s.path, err)
	}

	var ids []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ids = append(ids, line)
	}

	return ids, nil
}

// Remove drops one id from the checkpoint. Removing an id that is not
// present is a no-op.
func (s *Store) Remove(id string) error {
	ids, err := s.Read()
	if err != nil {
		return err
	}

	remaining := make([]string, 0, len(ids))
	for _, existing := range ids {
		if existing == id {
			continue
		}
		remaining = append(remaining, existing)
	}

	if len(remaining) == len(ids) {
		return nil
	}

	if err := s.write(remaining); err != nil {
		return err
	}

	s.logger.Debugf("removed ticket %s from checkpoint %s", id, s.path)
	return nil
}

// write replaces the file through a rename so a crash mid-write cannot leave
// a half-written checkpoint behind.
func (s *Store) write(ids []string) error {
	var sb strings.Builder
	for _, id := range ids {
		sb.WriteString(id)
		sb.WriteString("\n")
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create checkpoint temp file: %w", err)
	}

	if _, err := tmp.WriteString(sb.String()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close checkpoint temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace checkpoint %s: %w", s.path, err)
	}

	return nil
}
