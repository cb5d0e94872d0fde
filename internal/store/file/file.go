// Package file stores the whole dataset in one JSON document (db.json). Every
// write rewrites the document through a temp file and rename.
package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"skmart/backend/internal/domain"
	"skmart/backend/internal/store/memory"
)

type Store struct {
	*memory.Store
	path string
}

// Open loads path, creating an empty document (and its directory) when the
// file does not exist yet.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	snap, err := readSnapshot(path)
	if errors.Is(err, os.ErrNotExist) {
		snap = memory.Snapshot{}
		if err := writeSnapshot(path, snap); err != nil {
			return nil, err
		}
		log.Info().Str("path", path).Msg("initialised empty data file")
	} else if err != nil {
		return nil, err
	}

	s := &Store{path: path}
	s.Store = memory.FromSnapshot(snap, func(next memory.Snapshot) error {
		return writeSnapshot(path, next)
	})
	return s, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Close() error {
	return nil
}

func readSnapshot(path string) (memory.Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return memory.Snapshot{}, err
	}
	var snap memory.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return memory.Snapshot{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return snap, nil
}

func writeSnapshot(path string, snap memory.Snapshot) error {
	if snap.Products == nil {
		snap.Products = []domain.Product{}
	}
	if snap.Categories == nil {
		snap.Categories = []domain.Category{}
	}
	if snap.Sales == nil {
		snap.Sales = []domain.Sale{}
	}
	payload, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode data file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".db-*.json")
	if err != nil {
		return fmt.Errorf("create temp data file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp data file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp data file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace data file: %w", err)
	}
	return nil
}
