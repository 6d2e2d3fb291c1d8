package attempt

import (
	"errors"
	"log"
	"time"

	"classquiz/internal/apperror"
	"classquiz/internal/models"

	"gorm.io/gorm"
)

// Store is the storage port the lifecycle runs against; the gorm Repository
// implements it, tests plug in an in-memory fake.
type Store interface {
	GetQuiz(quizID uint) (*models.Quiz, error)
	GetQuizQuestions(quizID uint) ([]models.Question, error)
	CreateAttempt(attempt *models.StudentQuizAttempt, maxAttempts int) error
	GetAttempt(attemptID uint) (*models.StudentQuizAttempt, error)
	UpdateAttempt(attempt *models.StudentQuizAttempt) error
	QuestionInQuiz(questionID, quizID uint) (bool, error)
	HasAnswerForQuestion(attemptID, questionID uint) (bool, error)
	GetQuestionAnswer(answerID uint) (*models.QuestionAnswer, error)
	CreateStudentAnswer(ans *models.StudentAnswer) error
	GetStudentAnswer(answerID uint) (*models.StudentAnswer, error)
	UpdateStudentAnswer(ans *models.StudentAnswer) error
	ListAttemptsForQuiz(quizID uint) ([]models.StudentQuizAttempt, error)
	ListStudentAttempts(studentID uint) ([]models.StudentQuizAttempt, error)
	ListAnswersForAttempt(attemptID uint) ([]models.StudentAnswer, error)
	DeleteAttempt(attemptID uint) error
}

// Notifier receives attempt-completion events for the live feed. May be nil.
type Notifier interface {
	AttemptCompleted(quizID uint, result models.AttemptResultDTO)
}

type Service struct {
	store    Store
	notifier Notifier
}

func NewService(store Store, notifier Notifier) *Service {
	return &Service{store: store, notifier: notifier}
}

// Start opens a new in-progress attempt for the student, provided the quiz
// exists and the student has attempts left. The cap check and the insert
// run in one storage transaction.
func (s *Service) Start(studentID, quizID uint) (*models.StudentQuizAttempt, error) {
	quiz, err := s.store.GetQuiz(quizID)
	if err != nil {
		return nil, apperror.FromStorage(err, "Quiz not found.")
	}

	attempt := &models.StudentQuizAttempt{
		StudentID:   studentID,
		QuizID:      quizID,
		StartTime:   time.Now(),
		IsCompleted: false,
		Score:       0,
		Passed:      false,
	}
	if err := s.store.CreateAttempt(attempt, quiz.NumOfAllowedAttempts); err != nil {
		if errors.Is(err, ErrAttemptLimit) {
			return nil, apperror.Forbidden("You exceeded the maximum allowed attempts for this quiz.")
		}
		log.Printf("Error creating attempt for student %d quiz %d: %v", studentID, quizID, err)
		return nil, apperror.Internal("Quiz attempt not created.")
	}
	return attempt, nil
}

// SubmitAnswer records the student's selection for one question of an open
// attempt. A question may be answered at most once per attempt; duplicates
// are detected through the selected answer's owning question and backstopped
// by the storage unique index.
func (s *Service) SubmitAnswer(attemptID, questionID, selectedAnswerID uint) (*models.StudentAnswer, error) {
	attempt, err := s.store.GetAttempt(attemptID)
	if err != nil || attempt.IsCompleted {
		return nil, apperror.BadRequest("Invalid attempt ID or the attempt is already completed.")
	}

	inQuiz, err := s.store.QuestionInQuiz(questionID, attempt.QuizID)
	if err != nil {
		return nil, apperror.FromStorage(err, "Question not found.")
	}
	if !inQuiz {
		return nil, apperror.BadRequest("The question does not belong to the quiz for this attempt.")
	}

	exists, err := s.store.HasAnswerForQuestion(attemptID, questionID)
	if err != nil {
		return nil, apperror.FromStorage(err, "Attempt not found.")
	}
	if exists {
		return nil, apperror.BadRequest("Answer for this question is already submitted.")
	}

	ans := &models.StudentAnswer{
		AttemptID:        attemptID,
		QuestionID:       questionID,
		SelectedAnswerID: selectedAnswerID,
	}
	if err := s.store.CreateStudentAnswer(ans); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.BadRequest("Answer for this question is already submitted.")
		}
		log.Printf("Error creating student answer: %v", err)
		return nil, apperror.Internal("Answer not recorded.")
	}
	return ans, nil
}

// UpdateAnswer replaces the selection on an existing answer record while its
// attempt is still open.
func (s *Service) UpdateAnswer(answerID, selectedAnswerID uint) (*models.StudentAnswer, error) {
	ans, err := s.store.GetStudentAnswer(answerID)
	if err != nil {
		return nil, apperror.BadRequest("Invalid answer ID or the associated attempt is completed.")
	}
	attempt, err := s.store.GetAttempt(ans.AttemptID)
	if err != nil || attempt.IsCompleted {
		return nil, apperror.BadRequest("Invalid answer ID or the associated attempt is completed.")
	}

	selected, err := s.store.GetQuestionAnswer(selectedAnswerID)
	if err != nil {
		return nil, apperror.FromStorage(err, "Selected answer not found.")
	}

	ans.SelectedAnswerID = selected.ID
	ans.QuestionID = selected.QuestionID
	if err := s.store.UpdateStudentAnswer(ans); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.BadRequest("Answer for this question is already submitted.")
		}
		return nil, apperror.Internal("Answer not updated.")
	}
	return ans, nil
}

// Complete transitions the attempt to its terminal state: scores the
// submitted selections, stamps the end time and the pass verdict. A score
// equal to passingScore passes. Completed attempts cannot be re-scored.
func (s *Service) Complete(attemptID uint, submitted []SubmittedAnswer, passingScore int) (*models.AttemptResultDTO, error) {
	attempt, err := s.store.GetAttempt(attemptID)
	if err != nil {
		return nil, apperror.FromStorage(err, "Quiz attempt not found.")
	}
	if attempt.IsCompleted {
		return nil, apperror.BadRequest("Quiz attempt is already completed.")
	}

	questions, err := s.store.GetQuizQuestions(attempt.QuizID)
	if err != nil {
		return nil, apperror.FromStorage(err, "Quiz not found.")
	}

	result := ComputeScore(questions, submitted)

	now := time.Now()
	attempt.EndTime = &now
	attempt.IsCompleted = true
	attempt.Score = result.Score
	attempt.Passed = result.Score >= passingScore
	if err := s.store.UpdateAttempt(attempt); err != nil {
		log.Printf("Error completing attempt %d: %v", attemptID, err)
		return nil, apperror.Internal("Quiz attempt not updated.")
	}

	dto := attempt.ToResultDTO(result.TotalCorrectAnswers)
	if s.notifier != nil {
		s.notifier.AttemptCompleted(attempt.QuizID, dto)
	}
	return &dto, nil
}

func (s *Service) ListAttemptsForQuiz(quizID uint) ([]models.StudentQuizAttempt, error) {
	attempts, err := s.store.ListAttemptsForQuiz(quizID)
	if err != nil {
		return nil, apperror.FromStorage(err, "Quiz attempts not found.")
	}
	if len(attempts) == 0 {
		return nil, apperror.NotFound("Quiz attempts not found.")
	}
	return attempts, nil
}

func (s *Service) ListStudentAttempts(studentID uint) ([]models.StudentQuizAttempt, error) {
	attempts, err := s.store.ListStudentAttempts(studentID)
	if err != nil {
		return nil, apperror.FromStorage(err, "Student attempts not found.")
	}
	if len(attempts) == 0 {
		return nil, apperror.NotFound("Student attempts not found.")
	}
	return attempts, nil
}

func (s *Service) ListAnswersForAttempt(attemptID uint) ([]models.StudentAnswer, error) {
	if _, err := s.store.GetAttempt(attemptID); err != nil {
		return nil, apperror.FromStorage(err, "Attempt not found.")
	}
	answers, err := s.store.ListAnswersForAttempt(attemptID)
	if err != nil {
		return nil, apperror.FromStorage(err, "Attempt not found.")
	}
	return answers, nil
}

func (s *Service) Delete(attemptID uint) error {
	if err := s.store.DeleteAttempt(attemptID); err != nil {
		return apperror.FromStorage(err, "Quiz attempt not found.")
	}
	return nil
}
