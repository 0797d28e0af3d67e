package timetable

import "github.com/noah-isme/exam-timetable-api/internal/models"

func exam(id, subject, group, date, start, end, room, faculty string) models.ExamSession {
	return models.ExamSession{
		ID:           id,
		Subject:      subject,
		Date:         date,
		Start:        start,
		End:          end,
		Room:         room,
		Faculty:      faculty,
		StudentGroup: group,
	}
}

func conflictTypes(conflicts []models.Conflict) []models.ConflictType {
	types := make([]models.ConflictType, 0, len(conflicts))
	for _, c := range conflicts {
		types = append(types, c.Type)
	}
	return types
}
