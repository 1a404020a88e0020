package domain

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"livesort.dev/pkg/livesort/internal/adapter"
	m "livesort.dev/pkg/livesort/internal/model"
)

const (
	// SidecarPrefix marks device sidecar files (AppleDouble), never matched.
	SidecarPrefix = "._"
	// CapturePrefix is the stem prefix the capture device assigns.
	CapturePrefix = "IMG_"
	// PrefixLength is the length of the canonical stem, e.g. IMG_0001.
	PrefixLength = 8
)

// FileIndexer scans one directory into a Snapshot.
type FileIndexer interface {
	Index(dir m.Path) (m.Snapshot, error)
}

type fileIndexer struct {
	adapter.CaptureFSAdapter
}

// NewFileIndexer creates a FileIndexer backed by the given filesystem adapter.
func NewFileIndexer(fsAdapter adapter.CaptureFSAdapter) FileIndexer {
	return &fileIndexer{CaptureFSAdapter: fsAdapter}
}

// Index lists dir once and classifies every regular file. Any read or stat
// error aborts the scan.
func (fi *fileIndexer) Index(dir m.Path) (m.Snapshot, error) {
	entries, err := fi.ListFiles(dir)
	if err != nil {
		return m.Snapshot{}, fmt.Errorf("scan %s: %w", dir, err)
	}

	snap := m.NewSnapshot(dir)

	for _, entry := range entries {
		file := NewCaptureFile(entry)
		snap.All = append(snap.All, file)

		table := snap.Table(file.Kind)
		if table == nil || file.Sidecar {
			continue
		}

		if prev, dup := table[file.Stem]; dup {
			slog.Warn("duplicate stem, keeping first", "kept", prev.Path, "ignored", file.Path)
			continue
		}

		table[file.Stem] = file
	}

	slog.Debug("indexed directory",
		"dir", dir,
		"files", len(snap.All),
		"heic", len(snap.HEIC),
		"jpeg", len(snap.JPEG),
		"mov", len(snap.MOV),
	)

	return snap, nil
}

// NewCaptureFile builds a CaptureFile from a directory entry.
func NewCaptureFile(entry adapter.FileEntry) m.CaptureFile {
	stem, ext, kind, sidecar := Classify(entry.Name)

	return m.CaptureFile{
		Path:    entry.Path,
		Name:    entry.Name,
		Stem:    stem,
		Ext:     ext,
		Kind:    kind,
		ModTime: entry.ModTime,
		Sidecar: sidecar,
	}
}

// Classify splits a file name into stem and extension and derives its kind.
// Sidecars and malformed names (empty stem or extension, invalid UTF-8) are
// Unclassified.
func Classify(name string) (stem, ext string, kind m.Kind, sidecar bool) {
	dotExt := filepath.Ext(name)
	stem = strings.TrimSuffix(name, dotExt)
	ext = strings.TrimPrefix(dotExt, ".")

	if strings.HasPrefix(name, SidecarPrefix) {
		return stem, ext, m.KindUnclassified, true
	}

	if stem == "" || ext == "" || !utf8.ValidString(name) {
		return stem, ext, m.KindUnclassified, false
	}

	return stem, ext, kindOf(ext), false
}

func kindOf(ext string) m.Kind {
	switch strings.ToLower(ext) {
	case "heic":
		return m.KindStillHEIC
	case "jpg", "jpeg":
		return m.KindStillJPEG
	case "mov":
		return m.KindMotionMOV
	default:
		return m.KindUnclassified
	}
}
