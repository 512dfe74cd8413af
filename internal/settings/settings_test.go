package settings

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_TypedGetters(t *testing.T) {
	s := NewMemory(map[string]any{
		"flag":     true,
		"flag_str": "true",
		"count":    42,
		"count_s":  "7",
		"name":     "value",
	})

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"bool", s.GetBool("flag", false), true},
		{"bool from string", s.GetBool("flag_str", false), true},
		{"bool default", s.GetBool("missing", true), true},
		{"bool of non-bool", s.GetBool("name", false), false},
		{"int", s.GetInt("count", 0), int64(42)},
		{"int from string", s.GetInt("count_s", 0), int64(7)},
		{"int default", s.GetInt("name", -1), int64(-1)},
		{"string", s.GetString("name", ""), "value"},
		{"string of int", s.GetString("count", ""), "42"},
		{"string default", s.GetString("missing", "def"), "def"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestFileStore_SaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs", "settings.yaml")

	s, err := OpenFile(path)
	require.NoError(t, err)
	assert.Empty(t, s.Keys())

	s.Put("share_target", true)
	s.Put("current_version", int64(570))
	s.Put("filter_cat_1", `3,4;Food\;Drinks`)
	s.Remove("absent")
	require.NoError(t, s.Save())

	reloaded, err := OpenFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"current_version", "filter_cat_1", "share_target"}, reloaded.Keys())
	assert.True(t, reloaded.GetBool("share_target", false))
	assert.Equal(t, int64(570), reloaded.GetInt("current_version", 0))
	assert.Equal(t, `3,4;Food\;Drinks`, reloaded.GetString("filter_cat_1", ""))
}

func TestFileStore_MemoryDoesNotWrite(t *testing.T) {
	s := NewMemory(nil)
	s.Put("k", "v")
	assert.NoError(t, s.Save())
	assert.Equal(t, "", s.Path())
}

func TestOpenFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- not\n- a map\n"), 0644))

	_, err := OpenFile(path)
	assert.Error(t, err)
}

func TestStructured_EditPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ui.yaml")
	s, err := OpenStructured(path)
	require.NoError(t, err)

	require.NoError(t, s.Edit(func(e *Editor) error {
		e.SetStringSet("collapsedAccounts", []string{"3", "1", "3"})
		e.SetBool("group_header", false)
		e.SetString("criterion_future", "EndOfDay")
		e.SetInt("counter", 5)
		return nil
	}))

	reloaded, err := OpenStructured(path)
	require.NoError(t, err)
	set, ok := reloaded.StringSet("collapsedAccounts")
	assert.True(t, ok)
	assert.Equal(t, []string{"1", "3"}, set)
	v, ok := reloaded.Bool("group_header")
	assert.True(t, ok)
	assert.False(t, v)
	str, _ := reloaded.String("criterion_future")
	assert.Equal(t, "EndOfDay", str)
	n, _ := reloaded.Int("counter")
	assert.Equal(t, int64(5), n)
}

func TestStructured_FailedEditLeavesEntries(t *testing.T) {
	s := NewStructuredMemory()
	require.NoError(t, s.Edit(func(e *Editor) error {
		e.SetBool("a", true)
		return nil
	}))

	err := s.Edit(func(e *Editor) error {
		e.Remove("a")
		e.SetBool("b", true)
		return errors.New("abort")
	})
	assert.Error(t, err)

	_, ok := s.Bool("a")
	assert.True(t, ok)
	_, ok = s.Bool("b")
	assert.False(t, ok)
}

func TestStructured_SetReplacesOtherType(t *testing.T) {
	s := NewStructuredMemory()
	require.NoError(t, s.Edit(func(e *Editor) error {
		e.SetString("key", "x")
		e.SetBool("key", true)
		return nil
	}))

	_, ok := s.String("key")
	assert.False(t, ok)
	v, ok := s.Bool("key")
	assert.True(t, ok)
	assert.True(t, v)
}
