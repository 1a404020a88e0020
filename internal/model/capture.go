// Package model defines the data structures for organizing Live Photo captures.
package model

import (
	"path/filepath"
	"strings"
	"time"
)

// Path represents a file system path.
type Path string

// String returns the path as a plain string.
func (p Path) String() string {
	return string(p)
}

// Base returns the last element of the path.
func (p Path) Base() string {
	return filepath.Base(string(p))
}

// Kind is the classification of a capture file by extension.
type Kind string

const (
	// KindStillHEIC represents a still image stored as HEIC.
	KindStillHEIC Kind = "heic"
	// KindStillJPEG represents a still image stored as JPEG (jpg or jpeg).
	KindStillJPEG Kind = "jpeg"
	// KindMotionMOV represents the motion half of a Live Photo.
	KindMotionMOV Kind = "mov"
	// KindUnclassified represents anything else, including malformed names and sidecars.
	KindUnclassified Kind = "unclassified"
)

// IsStill reports whether the kind is one of the still image kinds.
func (k Kind) IsStill() bool {
	return k == KindStillHEIC || k == KindStillJPEG
}

// CaptureFile is a single file seen during a directory scan.
type CaptureFile struct {
	Path    Path
	Name    string
	Stem    string
	Ext     string // without the leading dot, original case
	Kind    Kind
	ModTime time.Time
	Sidecar bool // device sidecar (._ prefix), never matched
}

// WithPath returns a copy of the file relocated to path. Stem, name and
// extension are derived from the new path; kind and times are kept.
func (c CaptureFile) WithPath(path Path) CaptureFile {
	name := path.Base()
	ext := filepath.Ext(name)

	c.Path = path
	c.Name = name
	c.Ext = strings.TrimPrefix(ext, ".")
	c.Stem = strings.TrimSuffix(name, ext)

	return c
}

// SameTime reports whether both files carry the same modification time.
func (c CaptureFile) SameTime(other CaptureFile) bool {
	return c.ModTime.Equal(other.ModTime)
}
