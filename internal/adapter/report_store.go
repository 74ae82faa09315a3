package adapter

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	m "refdiff.dev/pkg/refdiff/internal/model"
)

// ReportStore persists refactoring reports.
type ReportStore interface {
	SaveReport(path m.Path, report *m.Report) error
	LoadReport(path m.Path) (*m.Report, error)
}

// FileReportStore writes reports as YAML, or as JSON when the path ends in
// ".json".
type FileReportStore struct {
	fs SourceFSAdapter
}

// NewFileReportStore constructs a FileReportStore on top of fs.
func NewFileReportStore(fs SourceFSAdapter) *FileReportStore {
	return &FileReportStore{fs: fs}
}

// SaveReport encodes report and writes it to path.
func (s *FileReportStore) SaveReport(path m.Path, report *m.Report) error {
	out, err := EncodeReport(report, formatForPath(path))
	if err != nil {
		return err
	}

	if err := s.fs.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}

	return nil
}

// LoadReport reads a report written by SaveReport.
func (s *FileReportStore) LoadReport(path m.Path) (*m.Report, error) {
	data, err := s.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report %s: %w", path, err)
	}

	var report m.Report
	if formatForPath(path) == "json" {
		err = json.Unmarshal(data, &report)
	} else {
		err = yaml.Unmarshal(data, &report)
	}

	if err != nil {
		return nil, fmt.Errorf("decode report %s: %w", path, err)
	}

	return &report, nil
}

// EncodeReport serializes report as "json" or "yaml".
func EncodeReport(report *m.Report, format string) ([]byte, error) {
	var (
		out []byte
		err error
	)

	switch format {
	case "json":
		out, err = json.MarshalIndent(report, "", "  ")
		if err == nil {
			out = append(out, '\n')
		}
	case "yaml":
		out, err = yaml.Marshal(report)
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}

	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}

	return out, nil
}

func formatForPath(path m.Path) string {
	if strings.EqualFold(filepath.Ext(string(path)), ".json") {
		return "json"
	}

	return "yaml"
}
