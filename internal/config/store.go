package config

import (
	"sync"
)

// Store persists the choices made during a session. Saving a value equal to
// the stored one does not touch the file.
type Store struct {
	mu   sync.Mutex
	path string
	cfg  *ProjectConfig
}

// OpenStore loads the config at path.
//
// Parameters:
//   - path: Path to the config.yaml file; it need not exist yet
//
// Returns:
//   - *Store: The store
//   - error: A read or parse error
func OpenStore(path string) (*Store, error) {
	cfg, err := LoadProjectConfig(path)
	if err != nil {
		return nil, err
	}
	return &Store{path: path, cfg: cfg}, nil
}

// Config returns the loaded configuration. Callers must not modify it.
func (s *Store) Config() *ProjectConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// DefaultVariant returns the remembered variant, or "".
func (s *Store) DefaultVariant() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Build.DefaultVariant
}

// SelectedDevice returns the remembered device ID, or "".
func (s *Store) SelectedDevice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Device.Selected
}

// SaveVariant remembers v as the default variant.
func (s *Store) SaveVariant(v string) error {
	return s.update(func(c *ProjectConfig) bool {
		if c.Build.DefaultVariant == v {
			return false
		}
		c.Build.DefaultVariant = v
		return true
	})
}

// SaveDevice remembers id as the selected device.
func (s *Store) SaveDevice(id string) error {
	return s.update(func(c *ProjectConfig) bool {
		if c.Device.Selected == id {
			return false
		}
		c.Device.Selected = id
		return true
	})
}

// update applies fn to a copy and writes it when fn reports a change. The
// in-memory config is only replaced after a successful write.
func (s *Store) update(fn func(*ProjectConfig) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := *s.cfg
	if !fn(&next) {
		return nil
	}
	if err := WriteProjectConfig(s.path, &next); err != nil {
		return err
	}
	s.cfg = &next
	return nil
}
