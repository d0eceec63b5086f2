// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads per-deployment values from a directory of
// plain-text files: the filename is the key and the trimmed file
// contents are the value.
//
// The sync pipeline reads one key from here: "mailto", the contact
// address sent to the public APIs for polite pool access.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MailtoKey is the filename holding the polite-pool contact address.
const MailtoKey = "mailto"

// Load reads all files in dir and returns a map of filename to trimmed
// contents. A missing directory is not an error; Load returns an empty
// map. Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	values := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", entry.Name(), err)
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			values[entry.Name()] = value
		}
	}
	return values, nil
}
