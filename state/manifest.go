// Package state records what a generation run wrote, so later runs can tell
// generated files from files the user has edited since.
package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
)

// ManifestFile is the manifest's file name inside the output directory.
const ManifestFile = ".loom.manifest.json"

const manifestVersion = "1"

type ManifestEntry struct {
	Path   string `json:"path"`
	Hash   string `json:"hash"`
	Size   int64  `json:"size"`
	Kind   string `json:"kind"`
	Source string `json:"source"`
}

type Manifest struct {
	Version   string                   `json:"version"`
	RunID     string                   `json:"run_id"`
	Generated time.Time                `json:"generated"`
	Entries   map[string]ManifestEntry `json:"entries"`
}

// NewManifest returns an empty manifest for a new run.
func NewManifest() *Manifest {
	return &Manifest{
		Version:   manifestVersion,
		RunID:     uuid.NewString(),
		Generated: time.Now().UTC(),
		Entries:   make(map[string]ManifestEntry),
	}
}

// Record hashes content and adds it as the entry for path.
func (m *Manifest) Record(path, kind, source string, content []byte) {
	sum := sha256.Sum256(content)
	m.Add(ManifestEntry{
		Path:   path,
		Hash:   hex.EncodeToString(sum[:]),
		Size:   int64(len(content)),
		Kind:   kind,
		Source: source,
	})
}

// Add adds or replaces the entry for entry.Path.
func (m *Manifest) Add(entry ManifestEntry) {
	if m.Entries == nil {
		m.Entries = make(map[string]ManifestEntry)
	}
	m.Entries[entry.Path] = entry
}

// Paths returns the recorded paths in sorted order.
func (m *Manifest) Paths() []string {
	paths := make([]string, 0, len(m.Entries))
	for p := range m.Entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

type ManifestManager struct {
	outputRoot   string
	manifestPath string
}

func NewManifestManager(outputRoot string) *ManifestManager {
	return &ManifestManager{
		outputRoot:   outputRoot,
		manifestPath: filepath.Join(outputRoot, ManifestFile),
	}
}

// LoadManifest reads the manifest of the previous run. A missing manifest
// yields an empty one.
func (mm *ManifestManager) LoadManifest() (*Manifest, error) {
	file, err := os.Open(mm.manifestPath)
	if os.IsNotExist(err) {
		return NewManifest(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest file: %w", err)
	}
	defer file.Close()

	var manifest Manifest
	if err := json.NewDecoder(file).Decode(&manifest); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	if manifest.Entries == nil {
		manifest.Entries = make(map[string]ManifestEntry)
	}
	return &manifest, nil
}

func (mm *ManifestManager) SaveManifest(manifest *Manifest) error {
	if err := os.MkdirAll(mm.outputRoot, 0o755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}

	file, err := os.CreateTemp(mm.outputRoot, ManifestFile+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary manifest file: %w", err)
	}
	tmpPath := file.Name()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(manifest); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to encode manifest: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temporary manifest file: %w", err)
	}

	if err := os.Rename(tmpPath, mm.manifestPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move manifest file: %w", err)
	}
	return nil
}

// HasChanged reports whether the file at path differs from what the
// manifest recorded. Unrecorded and deleted files count as changed.
func (mm *ManifestManager) HasChanged(manifest *Manifest, path string) (bool, error) {
	entry, ok := manifest.Entries[path]
	if !ok {
		return true, nil
	}

	fullPath := filepath.Join(mm.outputRoot, filepath.FromSlash(path))
	file, err := os.Open(fullPath)
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to open %s: %w", fullPath, err)
	}
	defer file.Close()

	h := sha256.New()
	n, err := io.Copy(h, file)
	if err != nil {
		return false, fmt.Errorf("failed to hash %s: %w", fullPath, err)
	}
	if n != entry.Size {
		return true, nil
	}
	return hex.EncodeToString(h.Sum(nil)) != entry.Hash, nil
}
