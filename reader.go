package slidedotnet

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
)

// maxZipEntrySize is the default limit for a single part. It keeps zip bombs
// out; 50 MB is generous for any legitimate PPTX part.
const maxZipEntrySize = 50 << 20 // 50 MB

// maxZipTotalSize is the default cumulative limit for all extracted content.
const maxZipTotalSize = 200 << 20 // 200 MB

// maxZipEntries is the default maximum number of files in the archive.
const maxZipEntries = 10000

// readPackageFile opens path and loads it as a package.
func readPackageFile(path string, cfg Config) (*Package, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	return readPackage(f, info.Size(), cfg)
}

// readPackage loads every ZIP entry of r as a part.
func readPackage(r io.ReaderAt, size int64, cfg Config) (*Package, error) {
	cfg.defaults()
	if size <= 0 {
		return nil, fmt.Errorf("invalid reader size: %d", size)
	}
	if size > cfg.MaxPackageSize {
		return nil, fmt.Errorf("file size %d exceeds maximum allowed (%d bytes)", size, cfg.MaxPackageSize)
	}

	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip: %w", err)
	}
	if len(zr.File) > cfg.MaxParts {
		return nil, fmt.Errorf("zip archive contains too many entries (%d > %d)", len(zr.File), cfg.MaxParts)
	}

	pkg := newPackage(cfg.Logger)
	var total int64
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		data, err := readZipEntry(f, cfg.MaxPartSize)
		if err != nil {
			return nil, err
		}
		total += int64(len(data))
		if total > cfg.MaxPackageSize {
			return nil, fmt.Errorf("extracted content exceeds maximum allowed (%d bytes)", cfg.MaxPackageSize)
		}
		pkg.addRaw(f.Name, data)
	}

	ct, ok := pkg.parts[contentTypesPart]
	if !ok {
		return nil, fmt.Errorf("failed to read %s: %w", contentTypesPart, ErrPartNotFound)
	}
	if err := xml.Unmarshal(ct.data, &pkg.types); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", contentTypesPart, err)
	}
	cfg.Logger.Debug("package loaded", "parts", len(pkg.order), "bytes", total)
	return pkg, nil
}

func readZipEntry(f *zip.File, limit int64) ([]byte, error) {
	if f.UncompressedSize64 > uint64(limit) {
		return nil, fmt.Errorf("file %s exceeds maximum allowed size (%d bytes)", f.Name, limit)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s in zip: %w", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from zip: %w", f.Name, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("file %s actual size exceeds maximum allowed size", f.Name)
	}
	return data, nil
}
