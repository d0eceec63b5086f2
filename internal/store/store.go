// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store reads and writes the mapping and publication-store
// documents. Saves go backup-then-overwrite: the prior store file is
// copied to a sibling .bak path, then the new document replaces the file
// whole through a temp-write and rename.
package store

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/imslab/pubsync/pkg/types"
)

// BackupSuffix is appended to the store path for the backup copy. Only
// the most recent backup is kept; each run overwrites it.
const BackupSuffix = ".bak"

// LoadResearchers reads the mapping document (key → name + ORCID iD).
// The file format follows the extension: .yaml/.yml is parsed as YAML,
// anything else as JSON. A missing, unreadable, or empty mapping is an
// error — the caller treats it as fatal.
func LoadResearchers(path string) (map[string]types.Researcher, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading researcher mapping %s: %w", path, err)
	}

	researchers := make(map[string]types.Researcher)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &researchers)
	default:
		err = json.Unmarshal(data, &researchers)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing researcher mapping %s: %w", path, err)
	}

	if len(researchers) == 0 {
		return nil, fmt.Errorf("researcher mapping %s is empty", path)
	}
	return researchers, nil
}

// LoadPublications reads the publication store JSON document. An absent
// file is tolerated and yields an empty store.
func LoadPublications(path string) (types.PublicationStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return types.PublicationStore{}, nil
		}
		return nil, fmt.Errorf("reading publication store %s: %w", path, err)
	}

	store := types.PublicationStore{}
	if err := json.Unmarshal(data, &store); err != nil {
		return nil, fmt.Errorf("parsing publication store %s: %w", path, err)
	}
	return store, nil
}

// SavePublications backs up the current store file and then replaces it
// whole with the given document.
func SavePublications(path string, store types.PublicationStore) error {
	if err := Backup(path); err != nil {
		return err
	}

	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling publication store: %w", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating store directory %s: %w", dir, err)
		}
	}

	// Write to a temp file and rename so readers never see a partial store.
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".store-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.Write(data)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing publication store: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Backup copies the current file at path to path+BackupSuffix. It is a
// no-op when the file does not yet exist.
func Backup(path string) error {
	src, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("opening %s for backup: %w", path, err)
	}
	defer src.Close()

	dst, err := os.Create(path + BackupSuffix)
	if err != nil {
		return fmt.Errorf("creating backup of %s: %w", path, err)
	}

	_, copyErr := io.Copy(dst, src)
	closeErr := dst.Close()
	if copyErr != nil {
		return fmt.Errorf("copying backup of %s: %w", path, copyErr)
	}
	if closeErr != nil {
		return fmt.Errorf("closing backup of %s: %w", path, closeErr)
	}
	return nil
}
