package models

import (
	"time"

	"gorm.io/gorm"
)

// Quiz is authored by exactly one of an admin or a teacher; the two
// foreign keys are never both set. Use Creator() instead of touching the
// nullable columns directly.
type Quiz struct {
	ID                   uint           `json:"id" gorm:"primaryKey"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `json:"deleted_at" gorm:"index"`
	Title                string         `json:"title" gorm:"not null"`
	Subject              string         `json:"subject"`
	Description          string         `json:"description"`
	GradeLevel           int            `json:"grade_level"`
	PassingScore         int            `json:"passing_score"`
	NumOfAllowedAttempts int            `json:"num_of_allowed_attempts" gorm:"default:1"`
	IsPublic             bool           `json:"is_public" gorm:"default:false"`
	EndDate              time.Time      `json:"end_date"`
	AdminID              *uint          `json:"admin_id,omitempty"`
	TeacherID            *uint          `json:"teacher_id,omitempty"`

	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:QuizID"`
	Classes   []Class    `json:"classes,omitempty" gorm:"many2many:quiz_classes"`
}

// Creator is the tagged view over the quiz's two nullable creator columns.
type Creator struct {
	Role Role `json:"role"`
	ID   uint `json:"id"`
}

// Creator returns the single non-null creator reference. The second return
// is false for a row that violates the one-creator invariant.
func (q *Quiz) Creator() (Creator, bool) {
	switch {
	case q.AdminID != nil:
		return Creator{Role: RoleAdmin, ID: *q.AdminID}, true
	case q.TeacherID != nil:
		return Creator{Role: RoleTeacher, ID: *q.TeacherID}, true
	}
	return Creator{}, false
}

// CreatedByTeacher reports whether teacherID authored this quiz.
func (q *Quiz) CreatedByTeacher(teacherID uint) bool {
	return q.TeacherID != nil && *q.TeacherID == teacherID
}

// AssignedToAny reports whether the quiz is assigned to at least one of the
// given classes. Quiz.Classes must be preloaded by the caller.
func (q *Quiz) AssignedToAny(classIDs []uint) bool {
	for _, c := range q.Classes {
		for _, id := range classIDs {
			if c.ID == id {
				return true
			}
		}
	}
	return false
}

// Ended reports whether the quiz deadline has passed.
func (q *Quiz) Ended(now time.Time) bool {
	return !q.EndDate.IsZero() && q.EndDate.Before(now)
}

type Question struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"deleted_at" gorm:"index"`
	QuizID       uint           `json:"quiz_id" gorm:"not null;index"`
	QuestionText string         `json:"question_text" gorm:"not null"`
	GradePoints  int            `json:"grade_points" gorm:"not null"`

	Quiz    *Quiz            `json:"quiz,omitempty" gorm:"foreignKey:QuizID"`
	Answers []QuestionAnswer `json:"answers,omitempty" gorm:"foreignKey:QuestionID"`
}

// CorrectAnswerTexts collects the texts of every answer marked correct.
// A question may have several (multi-select).
func (q *Question) CorrectAnswerTexts() []string {
	var texts []string
	for _, a := range q.Answers {
		if a.IsCorrect {
			texts = append(texts, a.AnswerText)
		}
	}
	return texts
}

type QuestionAnswer struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"deleted_at" gorm:"index"`
	QuestionID uint           `json:"question_id" gorm:"not null;index"`
	AnswerText string         `json:"answer_text" gorm:"not null"`
	IsCorrect  bool           `json:"is_correct"`

	Question *Question `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
}
