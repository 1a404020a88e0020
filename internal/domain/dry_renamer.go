package domain

import (
	m "livesort.dev/pkg/livesort/internal/model"
)

// dryRenamer records renames instead of performing them, so a preview runs the
// same matching algorithm without touching the disk.
type dryRenamer struct {
	base    Renamer
	added   map[m.Path]struct{}
	removed map[m.Path]struct{}
}

// NewDryRenamer wraps base; existence checks see the planned renames.
func NewDryRenamer(base Renamer) Renamer {
	return &dryRenamer{
		base:    base,
		added:   make(map[m.Path]struct{}),
		removed: make(map[m.Path]struct{}),
	}
}

func (d *dryRenamer) Exists(path m.Path) (bool, error) {
	if _, ok := d.added[path]; ok {
		return true, nil
	}

	if _, ok := d.removed[path]; ok {
		return false, nil
	}

	return d.base.Exists(path)
}

func (d *dryRenamer) Rename(src, dst m.Path) error {
	delete(d.added, src)
	d.removed[src] = struct{}{}

	delete(d.removed, dst)
	d.added[dst] = struct{}{}

	return nil
}
