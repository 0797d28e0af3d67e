package models

import "fmt"

// RawExam is an exam record as received from uploads or API payloads, before
// field aliases are resolved.
type RawExam map[string]any

// ExamSession is the canonical exam occurrence used by the timetable engine.
// It is a comparable value; conflicts and results hold copies, never pointers.
type ExamSession struct {
	ID            string `json:"id" yaml:"id"`
	Subject       string `json:"subject" yaml:"subject"`
	Branch        string `json:"branch" yaml:"branch"`
	Date          string `json:"date" yaml:"date"`
	Start         string `json:"start" yaml:"start"`
	End           string `json:"end" yaml:"end"`
	Room          string `json:"room" yaml:"room"`
	Faculty       string `json:"faculty" yaml:"faculty"`
	StudentGroup  string `json:"studentGroup" yaml:"studentGroup"`
	Capacity      int    `json:"capacity" yaml:"capacity"`
	TotalStudents int    `json:"totalStudents" yaml:"totalStudents"`
}

// Label identifies the session in human-readable output.
func (e ExamSession) Label() string {
	if e.Subject != "" {
		return e.Subject
	}
	if e.ID != "" {
		return e.ID
	}
	return "Unnamed exam"
}

// Slot renders the session's time range as "start-end".
func (e ExamSession) Slot() string {
	return fmt.Sprintf("%s-%s", e.Start, e.End)
}

// ExamSessions is a JSONB-backed list of sessions.
type ExamSessions []ExamSession
