package importer

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		name        string
		filename    string
		contentType string
		want        Format
	}{
		{"csv extension", "exams.CSV", "", FormatCSV},
		{"yml extension", "exams.yml", "", FormatYAML},
		{"json by content type", "upload", "application/json; charset=utf-8", FormatJSON},
		{"yaml by content type", "blob", "text/yaml", FormatYAML},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DetectFormat(tc.filename, tc.contentType)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := DetectFormat("exams.xlsx", "application/vnd.ms-excel")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = DetectFormat("exams", "")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseCSVFile(t *testing.T) {
	records, err := ParseFile(filepath.Join("testdata", "timetable.csv"))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Data Structures", records[0]["subject name"])
	assert.Equal(t, "2025-01-15", records[0]["exam_date"])
	assert.Equal(t, "58", records[1]["total students"])
}

func TestParseCSVSkipsEmptyCellsAndRows(t *testing.T) {
	input := "\ufeffsubject,room,extra\nMaths,,\n,,\nPhysics,B-2,x,overflow\n"
	records, err := Parse(strings.NewReader(input), FormatCSV)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Maths", records[0]["subject"])
	_, hasRoom := records[0]["room"]
	assert.False(t, hasRoom)
	assert.Equal(t, "B-2", records[1]["room"])
	assert.Len(t, records[1], 3)
}

func TestParseJSONShapes(t *testing.T) {
	list, err := Parse(strings.NewReader(`[{"subject":"Maths","capacity":60,"ratio":1.5}]`), FormatJSON)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(60), list[0]["capacity"])
	assert.Equal(t, 1.5, list[0]["ratio"])

	wrapped, err := Parse(strings.NewReader(`{"exams":[{"subject":"Maths"},{"subject":"Physics"}]}`), FormatJSON)
	require.NoError(t, err)
	assert.Len(t, wrapped, 2)

	_, err = Parse(strings.NewReader(`{"timetable":[]}`), FormatJSON)
	assert.Error(t, err)
	_, err = Parse(strings.NewReader(`[1,2]`), FormatJSON)
	assert.Error(t, err)
	_, err = Parse(strings.NewReader(`[{`), FormatJSON)
	assert.Error(t, err)
}

func TestParseYAMLFile(t *testing.T) {
	records, err := ParseFile(filepath.Join("testdata", "timetable.yaml"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2025-01-16", records[0]["date"])
	assert.Equal(t, "09:00", records[0]["start"])
	assert.Equal(t, 40, records[0]["capacity"])
}

func TestParseEmptyInputs(t *testing.T) {
	records, err := Parse(strings.NewReader(""), FormatCSV)
	require.NoError(t, err)
	assert.Empty(t, records)

	records, err = Parse(strings.NewReader("  \n"), FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, records)

	_, err = Parse(strings.NewReader("x"), Format("xml"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
