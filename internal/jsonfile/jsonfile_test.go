package jsonfile

import (
	"os"
	"path/filepath"
	"testing"
)

type doc struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

func TestWriteRead(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"plain.json", "packed.json.zst"} {
		path := filepath.Join(dir, "nested", name)
		in := doc{Name: "serve", Values: []float64{0.1, 0.25, -0.3}}
		if err := Write(path, in); err != nil {
			t.Fatalf("%s: write: %v", name, err)
		}
		var out doc
		if err := Read(path, &out); err != nil {
			t.Fatalf("%s: read: %v", name, err)
		}
		if out.Name != in.Name || len(out.Values) != 3 || out.Values[2] != -0.3 {
			t.Errorf("%s: got %+v", name, out)
		}
	}

	raw, err := os.ReadFile(filepath.Join(dir, "nested", "packed.json.zst"))
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) > 0 && raw[0] == '{' {
		t.Error("expected compressed bytes in .zst file")
	}
}

func TestRead_Missing(t *testing.T) {
	var out doc
	if err := Read(filepath.Join(t.TempDir(), "nope.json"), &out); !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
