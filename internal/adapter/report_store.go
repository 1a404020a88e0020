package adapter

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	m "livesort.dev/pkg/livesort/internal/model"
)

const (
	reportPrefix     = "report-"
	reportExt        = ".yaml"
	reportTimeLayout = "20060102T150405.000000000Z"
)

// ErrNoReports is returned when the reports directory holds no saved report.
var ErrNoReports = errors.New("no reports found")

// ReportStore persists run reports.
type ReportStore interface {
	SaveReport(dir m.Path, report m.RunReport) (m.Path, error)
	LoadLatestReport(dir m.Path) (m.RunReport, error)
}

// YAMLReportStore stores one YAML document per run, named by finish time.
type YAMLReportStore struct{}

// NewReportStore returns a YAML-backed ReportStore.
func NewReportStore() *YAMLReportStore {
	return &YAMLReportStore{}
}

// SaveReport writes report into dir atomically and returns the file path.
func (s *YAMLReportStore) SaveReport(dir m.Path, report m.RunReport) (m.Path, error) {
	data, err := yaml.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}

	name := reportPrefix + report.FinishedAt.UTC().Format(reportTimeLayout) + reportExt
	if err := writeFileAtomic(string(dir), name, data); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	path := m.Path(filepath.Join(string(dir), name))
	slog.Debug("saved report", "path", path)

	return path, nil
}

// LoadLatestReport reads the most recent report in dir.
func (s *YAMLReportStore) LoadLatestReport(dir m.Path) (m.RunReport, error) {
	entries, err := os.ReadDir(string(dir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return m.RunReport{}, fmt.Errorf("%w in %s", ErrNoReports, dir)
		}

		return m.RunReport{}, fmt.Errorf("read reports dir: %w", err)
	}

	var names []string

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, reportPrefix) || !strings.HasSuffix(name, reportExt) {
			continue
		}

		names = append(names, name)
	}

	if len(names) == 0 {
		return m.RunReport{}, fmt.Errorf("%w in %s", ErrNoReports, dir)
	}

	sort.Strings(names)
	latest := filepath.Join(string(dir), names[len(names)-1])

	data, err := os.ReadFile(latest)
	if err != nil {
		return m.RunReport{}, fmt.Errorf("read report: %w", err)
	}

	var report m.RunReport
	if err := yaml.Unmarshal(data, &report); err != nil {
		return m.RunReport{}, fmt.Errorf("decode report %s: %w", latest, err)
	}

	return report, nil
}

// writeFileAtomic writes name in dir through a temp file and a rename in the
// same directory, so readers never see a partial report.
func writeFileAtomic(dir, name string, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}

	tmpName := tmp.Name()

	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}

	if err := tmp.Sync(); err != nil {
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	return renameFunc(tmpName, filepath.Join(dir, name))
}
