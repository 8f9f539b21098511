package catalog

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Load reads the snapshot at path, preferring the gzip twin and falling back
// to the inflated file. A missing snapshot is not an error: readers get
// (nil, nil) and render an empty catalog.
func Load(path string) (*Snapshot, error) {
	raw, err := readPayload(path)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return &snap, nil
}

func readPayload(path string) ([]byte, error) {
	if compressed, err := os.ReadFile(path + ".gz"); err == nil {
		zr, err := gzip.NewReader(bytes.NewReader(compressed))
		if err != nil {
			return nil, fmt.Errorf("open compressed snapshot %s.gz: %w", path, err)
		}
		defer zr.Close()
		raw, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("inflate snapshot %s.gz: %w", path, err)
		}
		return raw, nil
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// Write persists the snapshot at path in both inflated and gzip form. Each
// file is written to a temp sibling and renamed so a crashed run never leaves
// a truncated snapshot behind.
func Write(path string, snap *Snapshot) (compressedSize int, err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}

	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("encode snapshot: %w", err)
	}

	if err := writeAtomic(path, raw); err != nil {
		return 0, err
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return 0, fmt.Errorf("compress snapshot: %w", err)
	}
	if err := zw.Close(); err != nil {
		return 0, fmt.Errorf("compress snapshot: %w", err)
	}
	if err := writeAtomic(path+".gz", buf.Bytes()); err != nil {
		return 0, err
	}
	return buf.Len(), nil
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
