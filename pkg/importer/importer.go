// Package importer reads timetable files (CSV, JSON or YAML) into raw exam
// records for the normalizer.
package importer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/noah-isme/exam-timetable-api/internal/models"
)

// Format identifies a timetable file encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrUnsupportedFormat is returned for files that are not CSV, JSON or YAML.
var ErrUnsupportedFormat = errors.New("unsupported timetable format")

// DetectFormat picks the format from the file extension, falling back to the
// content type.
func DetectFormat(filename, contentType string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filename)
	}
	switch mediaType {
	case "text/csv", "application/csv":
		return FormatCSV, nil
	case "application/json", "text/json":
		return FormatJSON, nil
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q (%s)", ErrUnsupportedFormat, filename, mediaType)
}

// Parse decodes records in the given format.
func Parse(r io.Reader, format Format) ([]models.RawExam, error) {
	switch format {
	case FormatCSV:
		return parseCSV(r)
	case FormatJSON:
		return parseJSON(r)
	case FormatYAML:
		return parseYAML(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// ParseFile reads a timetable file from disk, detecting the format from its
// extension.
func ParseFile(path string) ([]models.RawExam, error) {
	format, err := DetectFormat(path, "")
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open timetable: %w", err)
	}
	defer f.Close() //nolint:errcheck
	return Parse(f, format)
}

// parseCSV treats the first row as headers. Headers are trimmed and
// lower-cased; empty cells are left out of the record.
func parseCSV(r io.Reader) ([]models.RawExam, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []models.RawExam{}, nil
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i, h := range headers {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	records := make([]models.RawExam, 0)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		record := make(models.RawExam, len(headers))
		for i, value := range row {
			if i >= len(headers) || headers[i] == "" {
				continue
			}
			if value = strings.TrimSpace(value); value != "" {
				record[headers[i]] = value
			}
		}
		if len(record) > 0 {
			records = append(records, record)
		}
	}
	return records, nil
}

func parseJSON(r io.Reader) ([]models.RawExam, error) {
	var doc any
	decoder := json.NewDecoder(r)
	decoder.UseNumber()
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode json timetable: %w", err)
	}
	return records(doc)
}

func parseYAML(r io.Reader) ([]models.RawExam, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read yaml timetable: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []models.RawExam{}, nil
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode yaml timetable: %w", err)
	}
	return records(doc)
}

// records accepts either a list of objects or an object holding the list
// under "exams".
func records(doc any) ([]models.RawExam, error) {
	if obj, ok := doc.(map[string]any); ok {
		list, found := obj["exams"]
		if !found {
			return nil, fmt.Errorf("timetable object has no exams list")
		}
		doc = list
	}
	items, ok := doc.([]any)
	if !ok {
		return nil, fmt.Errorf("timetable must be a list of exams")
	}
	out := make([]models.RawExam, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("exam %d is not an object", i+1)
		}
		record := make(models.RawExam, len(obj))
		for key, value := range obj {
			record[key] = scalar(value)
		}
		out = append(out, record)
	}
	return out, nil
}

// scalar flattens decoder-specific values. YAML resolves bare dates to
// time.Time and JSON numbers arrive as json.Number.
func scalar(value any) any {
	switch v := value.(type) {
	case time.Time:
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 {
			return v.Format("2006-01-02")
		}
		return v.Format(time.RFC3339)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	default:
		return value
	}
}
