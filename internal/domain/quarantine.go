package domain

import (
	"fmt"
	"log/slog"

	"livesort.dev/pkg/livesort/internal/adapter"
	m "livesort.dev/pkg/livesort/internal/model"
)

// Quarantine moves everything that did not survive matching out of the
// working directory.
type Quarantine interface {
	Quarantine(files []m.CaptureFile, kept m.KeptSet, base m.Path) ([]m.MoveRecord, error)
}

type quarantine struct {
	mover SafeMover
}

// NewQuarantine creates a Quarantine that relocates files through mover.
func NewQuarantine(mover SafeMover) Quarantine {
	return &quarantine{mover: mover}
}

// Quarantine works on the file list captured before any repair. Files renamed
// by a repair are no longer at their recorded path and are skipped by the
// mover; their new paths are in kept.
func (q *quarantine) Quarantine(files []m.CaptureFile, kept m.KeptSet, base m.Path) ([]m.MoveRecord, error) {
	var moves []m.MoveRecord

	for _, file := range files {
		if kept.Has(file.Path) {
			continue
		}

		dst, moved, err := q.mover.Move(file.Path, base)
		if err != nil {
			if adapter.IsCrossDevice(err) {
				slog.Error("quarantine base is on another filesystem", "src", file.Path, "base", base)
			}

			return moves, fmt.Errorf("quarantine %s: %w", file.Path, err)
		}

		if !moved {
			continue
		}

		slog.Info("quarantined file", "src", file.Path, "dst", dst)
		moves = append(moves, m.MoveRecord{From: file.Path, To: dst})
	}

	return moves, nil
}
