package models

import "time"

type QuestionDTO struct {
	ID           uint        `json:"id"`
	QuizID       uint        `json:"quiz_id"`
	QuestionText string      `json:"question_text"`
	GradePoints  int         `json:"grade_points"`
	Answers      []AnswerDTO `json:"answers"`
}

type AnswerDTO struct {
	ID         uint   `json:"id"`
	AnswerText string `json:"answer_text"`
	IsCorrect  *bool  `json:"is_correct,omitempty"` // hidden from students
}

// ToDTO maps a question for transport. Correctness flags are only included
// for staff; students get the bare answer options.
func (q Question) ToDTO(includeCorrect bool) QuestionDTO {
	answers := make([]AnswerDTO, len(q.Answers))
	for i, a := range q.Answers {
		answers[i] = AnswerDTO{
			ID:         a.ID,
			AnswerText: a.AnswerText,
		}
		if includeCorrect {
			correct := a.IsCorrect
			answers[i].IsCorrect = &correct
		}
	}
	return QuestionDTO{
		ID:           q.ID,
		QuizID:       q.QuizID,
		QuestionText: q.QuestionText,
		GradePoints:  q.GradePoints,
		Answers:      answers,
	}
}

// AttemptResultDTO is the completion payload: the final attempt row plus
// the correct-question count, which is computed but not persisted.
type AttemptResultDTO struct {
	ID                  uint       `json:"id"`
	StudentID           uint       `json:"student_id"`
	QuizID              uint       `json:"quiz_id"`
	StartTime           time.Time  `json:"start_time"`
	EndTime             *time.Time `json:"end_time,omitempty"`
	IsCompleted         bool       `json:"is_completed"`
	Score               int        `json:"score"`
	Passed              bool       `json:"passed"`
	TotalCorrectAnswers int        `json:"total_correct_answers"`
}

func (a StudentQuizAttempt) ToResultDTO(totalCorrect int) AttemptResultDTO {
	return AttemptResultDTO{
		ID:                  a.ID,
		StudentID:           a.StudentID,
		QuizID:              a.QuizID,
		StartTime:           a.StartTime,
		EndTime:             a.EndTime,
		IsCompleted:         a.IsCompleted,
		Score:               a.Score,
		Passed:              a.Passed,
		TotalCorrectAnswers: totalCorrect,
	}
}
