package domain

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livesort.dev/pkg/livesort/internal/adapter"
	m "livesort.dev/pkg/livesort/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		wantStem    string
		wantExt     string
		wantKind    m.Kind
		wantSidecar bool
	}{
		{name: "heic", file: "IMG_0001.HEIC", wantStem: "IMG_0001", wantExt: "HEIC", wantKind: m.KindStillHEIC},
		{name: "jpg lowercase", file: "IMG_0001.jpg", wantStem: "IMG_0001", wantExt: "jpg", wantKind: m.KindStillJPEG},
		{name: "jpeg", file: "IMG_0001.JPEG", wantStem: "IMG_0001", wantExt: "JPEG", wantKind: m.KindStillJPEG},
		{name: "mov", file: "IMG_00025.MOV", wantStem: "IMG_00025", wantExt: "MOV", wantKind: m.KindMotionMOV},
		{name: "unknown ext", file: "notes.txt", wantStem: "notes", wantExt: "txt", wantKind: m.KindUnclassified},
		{name: "no ext", file: "README", wantStem: "README", wantExt: "", wantKind: m.KindUnclassified},
		{name: "dotfile", file: ".HEIC", wantStem: "", wantExt: "HEIC", wantKind: m.KindUnclassified},
		{name: "sidecar", file: "._IMG_0001.HEIC", wantStem: "._IMG_0001", wantExt: "HEIC", wantKind: m.KindUnclassified, wantSidecar: true},
		{name: "invalid utf8", file: "IMG_\xff.MOV", wantStem: "IMG_\xff", wantExt: "MOV", wantKind: m.KindUnclassified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stem, ext, kind, sidecar := Classify(tt.file)

			assert.Equal(t, tt.wantStem, stem)
			assert.Equal(t, tt.wantExt, ext)
			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantSidecar, sidecar)
		})
	}
}

func TestFileIndexer_Index(t *testing.T) {
	dir := t.TempDir()

	writeCapture(t, dir, "IMG_0001.HEIC", captureTime)
	writeCapture(t, dir, "IMG_0001.MOV", captureTime)
	writeCapture(t, dir, "IMG_0002.JPG", captureTime)
	writeCapture(t, dir, "._IMG_0001.HEIC", captureTime)
	writeCapture(t, dir, "notes.txt", captureTime)
	writeCapture(t, dir, filepath.Join("nested", "IMG_0003.MOV"), captureTime)

	snap := indexDir(t, dir)

	assert.Equal(t, m.Path(dir), snap.Dir)
	assert.Len(t, snap.All, 5, "directories are not files")
	assert.Contains(t, snap.HEIC, "IMG_0001")
	assert.Contains(t, snap.MOV, "IMG_0001")
	assert.Contains(t, snap.JPEG, "IMG_0002")
	assert.NotContains(t, snap.MOV, "IMG_0003")
	assert.Len(t, snap.HEIC, 1, "sidecar must not enter the HEIC table")

	for _, file := range snap.All {
		assert.True(t, file.ModTime.Equal(captureTime), "%s has wrong time", file.Name)
	}
}

func TestFileIndexer_DuplicateStemKeepsFirst(t *testing.T) {
	dir := t.TempDir()

	writeCapture(t, dir, "IMG_0001.JPEG", captureTime)
	writeCapture(t, dir, "IMG_0001.jpg", captureTime)

	snap := indexDir(t, dir)

	require.Contains(t, snap.JPEG, "IMG_0001")
	assert.Equal(t, "IMG_0001.JPEG", snap.JPEG["IMG_0001"].Name)
	assert.Len(t, snap.All, 2)
}

func TestFileIndexer_MissingDirectory(t *testing.T) {
	indexer := NewFileIndexer(adapter.NewLocalCaptureFSAdapter())

	_, err := indexer.Index(m.Path(filepath.Join(t.TempDir(), "missing")))
	require.Error(t, err)
}
