package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"rudder/internal/state"
	"rudder/pkg/logging"

	"gopkg.in/yaml.v3"
)

// FileStore keeps one YAML file per device identity under a state directory.
type FileStore struct {
	mu       sync.RWMutex
	stateDir string
}

// NewFileStore creates a FileStore rooted at stateDir. The directory is
// created on first write.
func NewFileStore(stateDir string) *FileStore {
	return &FileStore{stateDir: stateDir}
}

// Get loads the snapshot for the device, returning false when no snapshot
// file exists.
func (s *FileStore) Get(deviceID string) (state.Document, bool, error) {
	if deviceID == "" {
		return nil, false, fmt.Errorf("deviceID cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	filePath := s.snapshotPath(deviceID)
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read snapshot %s: %w", filePath, err)
	}

	var doc state.Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, false, fmt.Errorf("failed to parse snapshot %s: %w", filePath, err)
	}

	logging.Debug("SnapshotStore", "Loaded snapshot for %s from %s", deviceID, filePath)
	return doc, true, nil
}

// Set writes the snapshot for the device, replacing any previous file.
func (s *FileStore) Set(deviceID string, doc state.Document) error {
	if deviceID == "" {
		return fmt.Errorf("deviceID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.stateDir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory %s: %w", s.stateDir, err)
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot for %s: %w", deviceID, err)
	}

	filePath := s.snapshotPath(deviceID)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", filePath, err)
	}

	logging.Info("SnapshotStore", "Saved snapshot for %s to %s", deviceID, filePath)
	return nil
}

func (s *FileStore) snapshotPath(deviceID string) string {
	return filepath.Join(s.stateDir, sanitizeFilename(deviceID)+".yaml")
}

// sanitizeFilename keeps device identities safe to use as file names.
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		" ", "_",
	)
	return replacer.Replace(name)
}
