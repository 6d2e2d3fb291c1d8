package attempt

import (
	"errors"
	"log"

	"classquiz/internal/models"

	"gorm.io/gorm"
)

// ErrAttemptLimit is returned by CreateAttempt when the student already
// used up the quiz's allowed attempts.
var ErrAttemptLimit = errors.New("attempt limit reached")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetQuiz(quizID uint) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := r.db.First(&quiz, quizID).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *Repository) GetQuizQuestions(quizID uint) ([]models.Question, error) {
	var questions []models.Question
	err := r.db.Where("quiz_id = ?", quizID).
		Preload("Answers").
		Find(&questions).Error
	if err != nil {
		log.Printf("Error getting questions for quiz %d: %v", quizID, err)
		return nil, err
	}
	return questions, nil
}

// CreateAttempt re-checks the attempt count and inserts inside one
// transaction, so two concurrent starts cannot both pass the cap check.
func (r *Repository) CreateAttempt(attempt *models.StudentQuizAttempt, maxAttempts int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.StudentQuizAttempt{}).
			Where("student_id = ? AND quiz_id = ?", attempt.StudentID, attempt.QuizID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count >= int64(maxAttempts) {
			return ErrAttemptLimit
		}
		return tx.Create(attempt).Error
	})
}

func (r *Repository) GetAttempt(attemptID uint) (*models.StudentQuizAttempt, error) {
	var attempt models.StudentQuizAttempt
	if err := r.db.First(&attempt, attemptID).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *Repository) UpdateAttempt(attempt *models.StudentQuizAttempt) error {
	return r.db.Save(attempt).Error
}

func (r *Repository) QuestionInQuiz(questionID, quizID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Question{}).
		Where("id = ? AND quiz_id = ?", questionID, quizID).
		Count(&count).Error
	return count > 0, err
}

// HasAnswerForQuestion detects an existing selection for the question by
// joining through the selected answer's owning question.
func (r *Repository) HasAnswerForQuestion(attemptID, questionID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.StudentAnswer{}).
		Joins("JOIN question_answers ON question_answers.id = student_answers.selected_answer_id").
		Where("student_answers.attempt_id = ? AND question_answers.question_id = ?", attemptID, questionID).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) GetQuestionAnswer(answerID uint) (*models.QuestionAnswer, error) {
	var answer models.QuestionAnswer
	if err := r.db.First(&answer, answerID).Error; err != nil {
		return nil, err
	}
	return &answer, nil
}

func (r *Repository) CreateStudentAnswer(ans *models.StudentAnswer) error {
	return r.db.Create(ans).Error
}

func (r *Repository) GetStudentAnswer(answerID uint) (*models.StudentAnswer, error) {
	var ans models.StudentAnswer
	if err := r.db.First(&ans, answerID).Error; err != nil {
		return nil, err
	}
	return &ans, nil
}

func (r *Repository) UpdateStudentAnswer(ans *models.StudentAnswer) error {
	return r.db.Save(ans).Error
}

func (r *Repository) ListAttemptsForQuiz(quizID uint) ([]models.StudentQuizAttempt, error) {
	var attempts []models.StudentQuizAttempt
	err := r.db.Where("quiz_id = ?", quizID).Find(&attempts).Error
	return attempts, err
}

func (r *Repository) ListStudentAttempts(studentID uint) ([]models.StudentQuizAttempt, error) {
	var attempts []models.StudentQuizAttempt
	err := r.db.Where("student_id = ?", studentID).
		Preload("Answers.SelectedAnswer").
		Find(&attempts).Error
	return attempts, err
}

func (r *Repository) ListAnswersForAttempt(attemptID uint) ([]models.StudentAnswer, error) {
	var answers []models.StudentAnswer
	err := r.db.Where("attempt_id = ?", attemptID).
		Preload("SelectedAnswer").
		Find(&answers).Error
	return answers, err
}

func (r *Repository) DeleteAttempt(attemptID uint) error {
	result := r.db.Delete(&models.StudentQuizAttempt{}, attemptID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
