package cache

import (
	"encoding/json"
	"os"
	"time"
)

// Record is what the manifest remembers about one cache file.
type Record struct {
	Source    string    `json:"source"`
	Params    string    `json:"params"`
	Rows      int       `json:"rows"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Manifest maps cache file names to their records.
type Manifest struct {
	Files     map[string]Record `json:"files"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// LoadManifest reads the manifest from a JSON file. Returns an empty manifest if the file doesn't exist.
func LoadManifest(filePath string) (*Manifest, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &Manifest{Files: map[string]Record{}}, nil
		}
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m.Files == nil {
		m.Files = map[string]Record{}
	}
	return &m, nil
}

// SaveManifest writes the manifest to a JSON file.
func SaveManifest(filePath string, m *Manifest) error {
	m.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}
