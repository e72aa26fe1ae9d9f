// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key
// name and the file contents (trimmed) are the value.
//
// Supported keys: openalex-email. An email.json file of the form
// {"email": "..."} is also accepted and populates openalex-email when no
// plain openalex-email file is present.
package secrets

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// OpenAlexEmailKey names the secret sent as the OpenAlex mailto parameter.
const OpenAlexEmailKey = "openalex-email"

const emailJSON = "email.json"

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged as warnings and skipped.
func Load(dir string, log zerolog.Logger) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn().Err(err).Str("secret", name).Msg("could not read secret")
			continue
		}

		if name == emailJSON {
			if email := parseEmailJSON(data); email != "" {
				if _, ok := secrets[OpenAlexEmailKey]; !ok {
					secrets[OpenAlexEmailKey] = email
				}
			} else {
				log.Warn().Str("secret", name).Msg("secret has no email field")
			}
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

func parseEmailJSON(data []byte) string {
	var doc struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Email)
}
