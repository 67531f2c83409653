package slidedotnet

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// save writes the package to a file, creating parent directories.
func (p *Package) save(path string) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	writeErr := p.write(f)
	closeErr := f.Close()

	if writeErr != nil {
		// Attempt cleanup on write failure
		os.Remove(path)
		return writeErr
	}
	return closeErr
}

// write emits every part in archive order. Parts whose parsed document was
// edited are re-serialized; untouched parts are copied byte for byte.
func (p *Package) write(w io.Writer) error {
	zw := zip.NewWriter(w)
	for _, name := range p.order {
		if err := writePartToZip(zw, name, p.parts[name].Bytes()); err != nil {
			return err
		}
	}
	return zw.Close()
}

func writePartToZip(zw *zip.Writer, name string, data []byte) error {
	fw, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create %s in zip: %w", name, err)
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
