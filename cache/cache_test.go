package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFile(t *testing.T) {
	c, warn := Load(filepath.Join(t.TempDir(), "nope.json"))
	if warn != nil {
		t.Fatalf("missing file should not warn: %v", warn)
	}
	if c.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", c.Len())
	}
}

func TestLoadCorruptFileRecovers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	c, warn := Load(path)
	if warn == nil {
		t.Fatal("corrupt file should produce a warning")
	}
	if c.Len() != 0 {
		t.Fatalf("corrupt file should yield empty cache, got %d entries", c.Len())
	}

	// The cache must stay usable after recovery.
	if err := c.Put("Hello", "你好"); err != nil {
		t.Fatalf("Put after recovery: %v", err)
	}
}

func TestPutPersistsImmediately(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	c, _ := Load(path)
	if err := c.Put("Hello", "你好"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := c.Put("Bye", "再见"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// A fresh load must see both entries: persistence happens per Put,
	// not at shutdown.
	fresh, warn := Load(path)
	if warn != nil {
		t.Fatalf("reload warned: %v", warn)
	}
	if v, ok := fresh.Get("Hello"); !ok || v != "你好" {
		t.Fatalf("Get(Hello) = %q,%v", v, ok)
	}
	if v, ok := fresh.Get("Bye"); !ok || v != "再见" {
		t.Fatalf("Get(Bye) = %q,%v", v, ok)
	}
}

func TestFileFormatIsPrettyPrintedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	c, _ := Load(path)
	if err := c.Put("multi\nline", "多\n行"); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "\n  ") {
		t.Fatalf("cache file is not indented:\n%s", data)
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("cache file is not valid JSON: %v", err)
	}
	if m["multi\nline"] != "多\n行" {
		t.Fatalf("roundtrip = %q", m["multi\nline"])
	}
}

func TestPutCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "cache.json")
	c, _ := Load(path)
	if err := c.Put("k", "v"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("cache file not created: %v", err)
	}
}

func TestKeysSorted(t *testing.T) {
	c := &Cache{path: filepath.Join(t.TempDir(), "c.json"), entries: map[string]string{
		"b": "2", "a": "1", "c": "3",
	}}
	keys := c.Keys()
	if len(keys) != 3 || keys[0] != "a" || keys[2] != "c" {
		t.Fatalf("Keys() = %v", keys)
	}
}
