package models

import (
	"time"

	"gorm.io/gorm"
)

// StudentQuizAttempt tracks one bounded-retry engagement of a student with
// a quiz. Once IsCompleted is set the row is never mutated again.
type StudentQuizAttempt struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"deleted_at" gorm:"index"`
	StudentID   uint           `json:"student_id" gorm:"not null;index:idx_student_quiz"`
	QuizID      uint           `json:"quiz_id" gorm:"not null;index:idx_student_quiz"`
	StartTime   time.Time      `json:"start_time"`
	EndTime     *time.Time     `json:"end_time,omitempty"`
	IsCompleted bool           `json:"is_completed" gorm:"default:false"`
	Score       int            `json:"score" gorm:"default:0"`
	Passed      bool           `json:"passed" gorm:"default:false"`

	Answers []StudentAnswer `json:"answers,omitempty" gorm:"foreignKey:AttemptID"`
}

// StudentAnswer records the selection a student made for one question of an
// attempt. QuestionID is denormalized from the selected answer so the
// one-answer-per-question rule holds at the storage layer, not just in the
// application check.
type StudentAnswer struct {
	ID               uint           `json:"id" gorm:"primaryKey"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"deleted_at" gorm:"index"`
	AttemptID        uint           `json:"attempt_id" gorm:"not null;uniqueIndex:idx_attempt_question"`
	QuestionID       uint           `json:"question_id" gorm:"not null;uniqueIndex:idx_attempt_question"`
	SelectedAnswerID uint           `json:"selected_answer_id" gorm:"not null"`

	SelectedAnswer *QuestionAnswer `json:"selected_answer,omitempty" gorm:"foreignKey:SelectedAnswerID"`
}
