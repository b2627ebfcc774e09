package daemon

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/trac2md/internal/foundation/errors"
)

// State is persisted between runs.
type State struct {
	LastRun   time.Time `yaml:"last_run"`
	LastRunID string    `yaml:"last_run_id,omitempty"`
	Pages     int       `yaml:"pages"`
	Failed    int       `yaml:"failed"`
}

// StateStore reads and writes State as YAML.
type StateStore struct {
	path string
}

// NewStateStore returns a store backed by path.
func NewStateStore(path string) *StateStore {
	return &StateStore{path: path}
}

// Path returns the state file location.
func (s *StateStore) Path() string {
	return s.path
}

// Load returns the stored state, or a zero State when the file does not exist.
func (s *StateStore) Load() (State, error) {
	var st State
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return st, nil
		}
		return st, errors.FileSystemError("failed to read sync state").
			WithCause(err).
			WithContext("path", s.path).
			Build()
	}
	if err := yaml.Unmarshal(data, &st); err != nil {
		return st, errors.WrapError(err, errors.CategoryValidation, "failed to parse sync state").
			WithContext("path", s.path).
			Build()
	}
	return st, nil
}

// Save replaces the state file atomically.
func (s *StateStore) Save(st State) error {
	data, err := yaml.Marshal(st)
	if err != nil {
		return errors.InternalError("failed to marshal sync state").WithCause(err).Build()
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return s.fsError("failed to create state directory", err)
	}
	tmp, err := os.CreateTemp(dir, ".trac2md-state-*")
	if err != nil {
		return s.fsError("failed to create temporary state file", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return s.fsError("failed to write sync state", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return s.fsError("failed to write sync state", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return s.fsError("failed to replace sync state", err)
	}
	return nil
}

func (s *StateStore) fsError(msg string, err error) error {
	return errors.FileSystemError(msg).WithCause(err).WithContext("path", s.path).Build()
}
