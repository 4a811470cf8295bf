package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

// StateSchemaVersion is written into every state file.
const StateSchemaVersion = "1.0.0"

// ErrStoreClosed is returned by a store after Close.
var ErrStoreClosed = errors.New("state store closed")

// Store is durable key/value storage that survives restarts.
type Store interface {
	// Get decodes the value under key into out. It reports false when the key
	// is absent.
	Get(key string, out interface{}) (bool, error)
	Set(key string, value interface{}) error
}

// stateFile is the on-disk layout of the state store.
type stateFile struct {
	SchemaVersion string                 `yaml:"schema_version"`
	Values        map[string]interface{} `yaml:"values"`
}

// FileStore is a Store backed by a single YAML file.
type FileStore struct {
	path      string
	log       zerolog.Logger
	mutex     sync.Mutex
	values    map[string]interface{}
	lastWrite []byte
	closed    bool
	watcher   *stateWatcher
	onChange  []func(key string)
}

// DefaultStatePath returns the per-user location of the state file.
func DefaultStatePath() (string, error) {
	path, err := xdg.StateFile(filepath.Join(ConfigDirName, StateFileName))
	if err != nil {
		return "", fmt.Errorf("failed to resolve state file path: %w", err)
	}
	return path, nil
}

// OpenFileStore loads the store at path. A missing, unreadable or corrupt file
// yields an empty store; only a failure to create the directory is an error.
func OpenFileStore(path string, log zerolog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory %s: %w", filepath.Dir(path), err)
	}

	s := &FileStore{
		path:   path,
		log:    componentLogger(log, "store"),
		values: make(map[string]interface{}),
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		s.log.Info().Str("path", path).Msg("state file not found, starting empty")
	case err != nil:
		s.log.Warn().Err(err).Str("path", path).Msg("failed to read state file, starting empty")
	default:
		values, err := decodeStateFile(data, s.log)
		if err != nil {
			s.log.Warn().Err(err).Str("path", path).Msg("corrupt state file, starting empty")
		} else {
			s.values = values
			s.lastWrite = data
		}
	}
	return s, nil
}

// decodeStateFile parses a state file, migrating older layouts.
func decodeStateFile(data []byte, log zerolog.Logger) (map[string]interface{}, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return make(map[string]interface{}), nil
	}

	var file stateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}

	if file.SchemaVersion == "" {
		// Files written before the schema header were a flat key/value map.
		var flat map[string]interface{}
		if err := yaml.Unmarshal(data, &flat); err != nil {
			return nil, fmt.Errorf("failed to parse legacy state file: %w", err)
		}
		log.Info().Int("keys", len(flat)).Msg("migrating legacy state file")
		return flat, nil
	}

	if isNewerVersion(StateSchemaVersion, file.SchemaVersion) {
		log.Warn().
			Str("file_schema", file.SchemaVersion).
			Str("supported_schema", StateSchemaVersion).
			Msg("state file written by a newer version, reading known keys only")
	} else if _, err := semver.NewVersion(file.SchemaVersion); err != nil {
		return nil, fmt.Errorf("invalid schema version %q: %w", file.SchemaVersion, err)
	}

	if file.Values == nil {
		file.Values = make(map[string]interface{})
	}
	return file.Values, nil
}

// Path returns the backing file location.
func (s *FileStore) Path() string {
	return s.path
}

// Get implements Store.
func (s *FileStore) Get(key string, out interface{}) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return false, ErrStoreClosed
	}
	raw, ok := s.values[key]
	if !ok || raw == nil {
		return false, nil
	}
	// Round-trip through YAML to convert the generic map into out.
	data, err := yaml.Marshal(raw)
	if err != nil {
		return false, fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// Set implements Store. The file is rewritten on every call.
func (s *FileStore) Set(key string, value interface{}) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	normalized, err := normalizeValue(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	prev, had := s.values[key]
	s.values[key] = normalized
	if err := s.flushLocked(); err != nil {
		if had {
			s.values[key] = prev
		} else {
			delete(s.values, key)
		}
		return err
	}
	return nil
}

// normalizeValue converts value to the generic form yaml.v2 decodes the file
// into, so values set in process compare equal to the same values read back.
func normalizeValue(value interface{}) (interface{}, error) {
	data, err := yaml.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes key and rewrites the file.
func (s *FileStore) Delete(key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	if _, ok := s.values[key]; !ok {
		return nil
	}
	delete(s.values, key)
	return s.flushLocked()
}

// flushLocked writes the store through a temp file and rename.
func (s *FileStore) flushLocked() error {
	data, err := yaml.Marshal(stateFile{SchemaVersion: StateSchemaVersion, Values: s.values})
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+StateFileName+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp state file: %w", err)
	}
	if err := tmp.Chmod(ConfigFileMode); err != nil {
		s.log.Debug().Err(err).Msg("chmod on temp state file failed")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp state file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace state file %s: %w", s.path, err)
	}

	s.lastWrite = data
	return nil
}

// OnExternalChange registers fn to be called with every key whose value
// changed because the file was edited outside this process.
func (s *FileStore) OnExternalChange(fn func(key string)) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.onChange = append(s.onChange, fn)
}

// reload re-reads the file after an external modification.
func (s *FileStore) reload() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		s.log.Debug().Err(err).Msg("state reload skipped")
		return
	}

	s.mutex.Lock()
	if s.closed || bytes.Equal(data, s.lastWrite) {
		s.mutex.Unlock()
		return
	}
	values, err := decodeStateFile(data, s.log)
	if err != nil {
		s.mutex.Unlock()
		s.log.Warn().Err(err).Msg("ignoring unparseable external state edit")
		return
	}

	var changed []string
	for k, v := range values {
		if old, ok := s.values[k]; !ok || !reflect.DeepEqual(old, v) {
			changed = append(changed, k)
		}
	}
	for k := range s.values {
		if _, ok := values[k]; !ok {
			changed = append(changed, k)
		}
	}
	s.values = values
	s.lastWrite = data
	callbacks := append([]func(string){}, s.onChange...)
	s.mutex.Unlock()

	s.log.Info().Strs("keys", changed).Msg("state file changed on disk")
	for _, key := range changed {
		for _, fn := range callbacks {
			fn(key)
		}
	}
}

// Close stops the watcher. Further Get/Set calls fail with ErrStoreClosed.
func (s *FileStore) Close() error {
	s.mutex.Lock()
	s.closed = true
	w := s.watcher
	s.watcher = nil
	s.mutex.Unlock()

	if w != nil {
		w.Stop()
	}
	return nil
}
