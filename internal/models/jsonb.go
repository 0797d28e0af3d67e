package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

func jsonValue(v any, name string) (driver.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", name, err)
	}
	return data, nil
}

func jsonScan(value any, dest any, name string) error {
	if value == nil {
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for %s", value, name)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("unmarshal %s: %w", name, err)
	}
	return nil
}

// Value marshals the sessions to JSON for persistence.
func (s ExamSessions) Value() (driver.Value, error) {
	if s == nil {
		s = ExamSessions{}
	}
	return jsonValue([]ExamSession(s), "exam sessions")
}

// Scan unmarshals a JSONB column into the session list.
func (s *ExamSessions) Scan(value any) error {
	*s = ExamSessions{}
	return jsonScan(value, (*[]ExamSession)(s), "exam sessions")
}

// Value marshals the conflicts to JSON for persistence.
func (c Conflicts) Value() (driver.Value, error) {
	if c == nil {
		c = Conflicts{}
	}
	return jsonValue([]Conflict(c), "conflicts")
}

// Scan unmarshals a JSONB column into the conflict list.
func (c *Conflicts) Scan(value any) error {
	*c = Conflicts{}
	return jsonScan(value, (*[]Conflict)(c), "conflicts")
}

// Value marshals the suggestions to JSON for persistence.
func (s Suggestions) Value() (driver.Value, error) {
	if s == nil {
		s = Suggestions{}
	}
	return jsonValue([]Suggestion(s), "suggestions")
}

// Scan unmarshals a JSONB column into the suggestion list.
func (s *Suggestions) Scan(value any) error {
	*s = Suggestions{}
	return jsonScan(value, (*[]Suggestion)(s), "suggestions")
}

// Value marshals the fatigue report to JSON for persistence.
func (f FatigueReport) Value() (driver.Value, error) {
	if f == nil {
		f = FatigueReport{}
	}
	return jsonValue([]FatigueEntry(f), "fatigue report")
}

// Scan unmarshals a JSONB column into the fatigue report.
func (f *FatigueReport) Scan(value any) error {
	*f = FatigueReport{}
	return jsonScan(value, (*[]FatigueEntry)(f), "fatigue report")
}

// Value marshals the impact summary to JSON for persistence.
func (i ImpactSummary) Value() (driver.Value, error) {
	return jsonValue(i, "impact summary")
}

// Scan unmarshals a JSONB column into the impact summary.
func (i *ImpactSummary) Scan(value any) error {
	*i = ImpactSummary{}
	return jsonScan(value, i, "impact summary")
}

// StringList is a JSONB-backed list of strings.
type StringList []string

// Value marshals the list to JSON for persistence.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return jsonValue([]string(l), "string list")
}

// Scan unmarshals a JSONB column into the list.
func (l *StringList) Scan(value any) error {
	*l = StringList{}
	return jsonScan(value, (*[]string)(l), "string list")
}

// Value marshals the exam to JSON for persistence.
func (e ExamSession) Value() (driver.Value, error) {
	return jsonValue(e, "exam session")
}

// Scan unmarshals a JSONB column into the exam.
func (e *ExamSession) Scan(value any) error {
	*e = ExamSession{}
	return jsonScan(value, e, "exam session")
}
