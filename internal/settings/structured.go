package settings

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

type document struct {
	Bools      map[string]bool     `yaml:"bools,omitempty"`
	Strings    map[string]string   `yaml:"strings,omitempty"`
	Ints       map[string]int64    `yaml:"ints,omitempty"`
	StringSets map[string][]string `yaml:"string_sets,omitempty"`
}

func newDocument() document {
	return document{
		Bools:      make(map[string]bool),
		Strings:    make(map[string]string),
		Ints:       make(map[string]int64),
		StringSets: make(map[string][]string),
	}
}

func (d document) clone() document {
	c := newDocument()
	maps.Copy(c.Bools, d.Bools)
	maps.Copy(c.Strings, d.Strings)
	maps.Copy(c.Ints, d.Ints)
	for k, v := range d.StringSets {
		c.StringSets[k] = slices.Clone(v)
	}
	return c
}

// Structured is the typed preference namespace. Entries are edited in batches that are
// applied and persisted together.
type Structured struct {
	mu   sync.RWMutex
	path string
	doc  document
}

func NewStructuredMemory() *Structured {
	return &Structured{doc: newDocument()}
}

func OpenStructured(path string) (*Structured, error) {
	s := &Structured{path: path, doc: newDocument()}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings %s: %w", path, err)
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	s.doc = newDocument()
	maps.Copy(s.doc.Bools, doc.Bools)
	maps.Copy(s.doc.Strings, doc.Strings)
	maps.Copy(s.doc.Ints, doc.Ints)
	maps.Copy(s.doc.StringSets, doc.StringSets)
	return s, nil
}

func (s *Structured) Bool(key string) (bool, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.doc.Bools[key]
	return v, ok
}

func (s *Structured) String(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.doc.Strings[key]
	return v, ok
}

func (s *Structured) Int(key string) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.doc.Ints[key]
	return v, ok
}

// StringSet returns the set sorted.
func (s *Structured) StringSet(key string) ([]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.doc.StringSets[key]
	return slices.Clone(v), ok
}

// Editor stages changes inside Structured.Edit. Setting a key drops any entry of
// another type under the same key.
type Editor struct {
	doc document
}

func (e *Editor) clear(key string) {
	delete(e.doc.Bools, key)
	delete(e.doc.Strings, key)
	delete(e.doc.Ints, key)
	delete(e.doc.StringSets, key)
}

func (e *Editor) SetBool(key string, v bool) {
	e.clear(key)
	e.doc.Bools[key] = v
}

func (e *Editor) SetString(key, v string) {
	e.clear(key)
	e.doc.Strings[key] = v
}

func (e *Editor) SetInt(key string, v int64) {
	e.clear(key)
	e.doc.Ints[key] = v
}

// SetStringSet stores values deduplicated and sorted.
func (e *Editor) SetStringSet(key string, values []string) {
	e.clear(key)
	set := slices.Clone(values)
	slices.Sort(set)
	e.doc.StringSets[key] = slices.Compact(set)
}

func (e *Editor) Remove(key string) {
	e.clear(key)
}

// Edit applies fn to a copy of the entries and, if fn succeeds, persists and publishes
// the result. A failing fn or write leaves the store unchanged.
func (s *Structured) Edit(fn func(e *Editor) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := &Editor{doc: s.doc.clone()}
	if err := fn(e); err != nil {
		return err
	}
	if s.path != "" {
		data, err := yaml.Marshal(e.doc)
		if err != nil {
			return fmt.Errorf("failed to encode settings: %w", err)
		}
		if err := writeFile(s.path, data); err != nil {
			return err
		}
	}
	s.doc = e.doc
	return nil
}
