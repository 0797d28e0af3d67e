package timetable

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/spf13/cast"

	"github.com/noah-isme/exam-timetable-api/internal/models"
)

// Field aliases accepted from uploads and API payloads, in lookup order.
var (
	subjectKeys       = []string{"subject", "subject_name", "subjectName"}
	dateKeys          = []string{"date", "exam_date"}
	startKeys         = []string{"start", "start_time", "startTime"}
	endKeys           = []string{"end", "end_time", "endTime"}
	roomKeys          = []string{"room", "room_no", "roomNo"}
	facultyKeys       = []string{"faculty", "faculty_id", "facultyId", "invigilator"}
	studentGroupKeys  = []string{"studentGroup", "student_group", "group"}
	branchKeys        = []string{"branch", "department", "dept"}
	capacityKeys      = []string{"capacity", "room_capacity", "roomCapacity"}
	totalStudentsKeys = []string{"totalStudents", "total_students", "students"}
	idKeys            = []string{"id", "exam_id", "examId"}
)

var dateLayouts = []string{"2006-01-02", "2006/01/02", "02-01-2006", "02/01/2006", time.RFC3339}

// Normalize resolves field aliases of a raw record into an ExamSession.
// Keys match exactly first, then ignoring case, spaces, dashes and
// underscores, so "Student Group" finds studentGroup. Missing or unreadable
// fields become "" or 0.
func Normalize(raw models.RawExam) models.ExamSession {
	fields := foldFields(raw)
	return models.ExamSession{
		ID:            lookupString(fields, idKeys),
		Subject:       lookupString(fields, subjectKeys),
		Branch:        lookupString(fields, branchKeys),
		Date:          normalizeDate(lookupString(fields, dateKeys)),
		Start:         normalizeClock(lookupString(fields, startKeys)),
		End:           normalizeClock(lookupString(fields, endKeys)),
		Room:          lookupString(fields, roomKeys),
		Faculty:       lookupString(fields, facultyKeys),
		StudentGroup:  lookupString(fields, studentGroupKeys),
		Capacity:      lookupInt(fields, capacityKeys),
		TotalStudents: lookupInt(fields, totalStudentsKeys),
	}
}

// NormalizeAll normalizes every record in order.
func NormalizeAll(raw []models.RawExam) []models.ExamSession {
	sessions := make([]models.ExamSession, 0, len(raw))
	for _, record := range raw {
		sessions = append(sessions, Normalize(record))
	}
	return sessions
}

type fields struct {
	exact  models.RawExam
	folded map[string]any
}

func foldFields(raw models.RawExam) fields {
	folded := make(map[string]any, len(raw))
	for key, value := range raw {
		k := foldKey(key)
		if existing, taken := folded[k]; !taken || existing == nil {
			folded[k] = value
		}
	}
	return fields{exact: raw, folded: folded}
}

func foldKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-':
			return -1
		}
		return unicode.ToLower(r)
	}, strings.TrimSpace(key))
}

func (f fields) get(key string) (any, bool) {
	if value, ok := f.exact[key]; ok && value != nil {
		return value, true
	}
	value, ok := f.folded[foldKey(key)]
	return value, ok && value != nil
}

func lookupString(raw fields, keys []string) string {
	for _, key := range keys {
		value, ok := raw.get(key)
		if !ok {
			continue
		}
		text, err := cast.ToStringE(value)
		if err != nil {
			text = fmt.Sprint(value)
		}
		if text = strings.TrimSpace(text); text != "" {
			return text
		}
	}
	return ""
}

func lookupInt(raw fields, keys []string) int {
	for _, key := range keys {
		value, ok := raw.get(key)
		if !ok {
			continue
		}
		var n int
		if text, isString := value.(string); isString {
			text = strings.TrimSpace(text)
			if text == "" {
				continue
			}
			f, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return 0
			}
			n = int(f)
		} else {
			var err error
			if n, err = cast.ToIntE(value); err != nil {
				return 0
			}
		}
		if n < 0 {
			return 0
		}
		return n
	}
	return 0
}

func normalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(dateLayout)
		}
	}
	return raw
}

func normalizeClock(raw string) string {
	if minutes, ok := parseClock(raw); ok {
		return formatClock(minutes)
	}
	return raw
}
