package manifest

import (
	"bytes"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/nao1215/dxmanifest/internal/fsx"
	"github.com/nao1215/dxmanifest/internal/model"
	"golang.org/x/crypto/blake2b"
)

// FilePerm is the permission of written manifests.
const FilePerm = 0644

// Encode writes rows as CSV with a header row to w.
func Encode(w io.Writer, rows []model.ManifestRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(model.ManifestHeader); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row.Record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Marshal returns the CSV encoding of rows.
func Marshal(rows []model.ManifestRow) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Digest returns the hex BLAKE2b-256 digest of data.
func Digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// WriteFile writes rows to path atomically, replacing any existing file,
// and returns the digest of the written bytes. On failure the previous
// file, if any, is left untouched and the error wraps model.ErrIO.
func WriteFile(path string, rows []model.ManifestRow) (string, error) {
	data, err := Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("encode manifest: %w", err)
	}

	if err := fsx.WriteFileAtomic(path, data, FilePerm); err != nil {
		return "", fmt.Errorf("%w: write manifest %s: %w", model.ErrIO, path, err)
	}

	return Digest(data), nil
}
