// Package persist stores the switch word between runs.
package persist

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/ghodss/yaml"

	"github.com/ocmsx/ctrlrom/dipswitch"
)

type Store interface {
	Load() (dipswitch.Word, error)
	Save(dipswitch.Word) error
}

// ErrEmpty is returned by Load if nothing was saved yet.
var ErrEmpty = errors.New("persist: nothing saved")

// Memory keeps the word in memory.
type Memory struct {
	mtx   sync.Mutex
	word  dipswitch.Word
	saved bool
	saves int
}

func (m *Memory) Load() (dipswitch.Word, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if !m.saved {
		return dipswitch.Default, ErrEmpty
	}
	return m.word, nil
}

func (m *Memory) Save(w dipswitch.Word) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.word, m.saved = w, true
	m.saves++
	return nil
}

// Saves returns how often Save was called.
func (m *Memory) Saves() int {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.saves
}

type document struct {
	Settings map[string]string `json:"settings"`
}

// File stores the settings as YAML, keyed by option name:
//
//	settings:
//	  video: VGA - 31KHz, 60Hz
//	  sdcard: "on"
type File struct {
	Path string
}

func (f File) Load() (dipswitch.Word, error) {
	buf, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return dipswitch.Default, ErrEmpty
	}
	if err != nil {
		return dipswitch.Default, err
	}
	var doc document
	if err := yaml.Unmarshal(buf, &doc); err != nil {
		return dipswitch.Default, fmt.Errorf("persist: %s: %w", f.Path, err)
	}
	s, err := dipswitch.FromNamed(doc.Settings)
	if err != nil {
		return dipswitch.Default, fmt.Errorf("persist: %s: %w", f.Path, err)
	}
	return s.Word(), nil
}

func (f File) Save(w dipswitch.Word) error {
	s := dipswitch.Unpack(w)
	buf, err := yaml.Marshal(document{Settings: s.Named()})
	if err != nil {
		return err
	}
	return os.WriteFile(f.Path, buf, 0o644)
}
