// SPDX-License-Identifier: MIT

package store

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// CompressedExt selects zstd compression for Export and Import.
const CompressedExt = ".zst"

// Encode writes rec as indented JSON, zstd-compressed when compress is set.
func Encode(w io.Writer, rec SavedGraph, compress bool) error {
	if !compress {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("store: creating zstd encoder: %w", err)
	}
	if err = json.NewEncoder(zw).Encode(rec); err != nil {
		zw.Close()
		return fmt.Errorf("store: compressing: %w", err)
	}
	if err = zw.Close(); err != nil {
		return fmt.Errorf("store: closing encoder: %w", err)
	}

	return nil
}

// Decode reads a record written by Encode and verifies its checksum.
func Decode(r io.Reader, compressed bool) (SavedGraph, error) {
	if compressed {
		zr, err := zstd.NewReader(r)
		if err != nil {
			return SavedGraph{}, fmt.Errorf("store: creating zstd decoder: %w", err)
		}
		defer zr.Close()
		r = zr
	}
	var rec SavedGraph
	if err := json.NewDecoder(r).Decode(&rec); err != nil {
		return SavedGraph{}, fmt.Errorf("store: decoding: %w", err)
	}
	if err := verify(rec); err != nil {
		return SavedGraph{}, err
	}

	return rec, nil
}

// Export writes rec to path; a ".zst" suffix compresses the file.
func Export(path string, rec SavedGraph) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("store: export %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("store: export %s: %w", path, cerr)
		}
	}()

	return Encode(f, rec, strings.HasSuffix(path, CompressedExt))
}

// Import reads a record written by Export.
func Import(path string) (SavedGraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return SavedGraph{}, fmt.Errorf("store: import %s: %w", path, err)
	}
	defer f.Close()

	return Decode(f, strings.HasSuffix(path, CompressedExt))
}
