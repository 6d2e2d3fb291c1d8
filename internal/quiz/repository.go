package quiz

import (
	"log"

	"classquiz/internal/models"

	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetQuiz loads a quiz with its class assignments, which every visibility
// decision needs.
func (r *Repository) GetQuiz(quizID uint) (*models.Quiz, error) {
	var quiz models.Quiz
	err := r.db.Preload("Classes").First(&quiz, quizID).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *Repository) CreateQuiz(quiz *models.Quiz) error {
	if err := r.db.Create(quiz).Error; err != nil {
		log.Printf("Error creating quiz: %v", err)
		return err
	}
	return nil
}

func (r *Repository) UpdateQuiz(quiz *models.Quiz) error {
	return r.db.Save(quiz).Error
}

func (r *Repository) DeleteQuiz(quizID uint) error {
	result := r.db.Delete(&models.Quiz{}, quizID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListQuizzesByCreator scopes quizzes to one arm of the creator union,
// optionally narrowed by publication flag.
func (r *Repository) ListQuizzesByCreator(creator models.Creator, isPublic *bool) ([]models.Quiz, error) {
	query := r.db.Model(&models.Quiz{})
	switch creator.Role {
	case models.RoleAdmin:
		query = query.Where("admin_id = ?", creator.ID)
	case models.RoleTeacher:
		query = query.Where("teacher_id = ?", creator.ID)
	}
	if isPublic != nil {
		query = query.Where("is_public = ?", *isPublic)
	}
	var quizzes []models.Quiz
	err := query.Find(&quizzes).Error
	return quizzes, err
}

// ListQuizzesForClasses returns quizzes assigned to any of the classes.
func (r *Repository) ListQuizzesForClasses(classIDs []uint) ([]models.Quiz, error) {
	if len(classIDs) == 0 {
		return nil, nil
	}
	var quizzes []models.Quiz
	err := r.db.
		Joins("JOIN quiz_classes ON quiz_classes.quiz_id = quizzes.id").
		Where("quiz_classes.class_id IN ?", classIDs).
		Distinct("quizzes.*").
		Find(&quizzes).Error
	return quizzes, err
}

// ListPublicQuizzes returns public quizzes, optionally restricted to one
// grade level.
func (r *Repository) ListPublicQuizzes(gradeLevel *int) ([]models.Quiz, error) {
	query := r.db.Where("is_public = ?", true)
	if gradeLevel != nil {
		query = query.Where("grade_level = ?", *gradeLevel)
	}
	var quizzes []models.Quiz
	err := query.Find(&quizzes).Error
	return quizzes, err
}

func (r *Repository) GetClass(classID uint) (*models.Class, error) {
	var class models.Class
	if err := r.db.First(&class, classID).Error; err != nil {
		return nil, err
	}
	return &class, nil
}

func (r *Repository) AssignQuizToClass(quiz *models.Quiz, class *models.Class) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(quiz).Update("is_public", false).Error; err != nil {
			return err
		}
		return tx.Model(quiz).Association("Classes").Append(class)
	})
}

func (r *Repository) UnassignQuizFromClass(quiz *models.Quiz, class *models.Class) error {
	return r.db.Model(quiz).Association("Classes").Delete(class)
}

// GetQuestion loads a question with its owning quiz so policy predicates
// can climb the containment tree.
func (r *Repository) GetQuestion(questionID uint) (*models.Question, error) {
	var question models.Question
	err := r.db.Preload("Quiz.Classes").First(&question, questionID).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *Repository) CreateQuestion(question *models.Question) error {
	return r.db.Create(question).Error
}

func (r *Repository) UpdateQuestion(question *models.Question) error {
	return r.db.Save(question).Error
}

func (r *Repository) DeleteQuestion(questionID uint) error {
	result := r.db.Delete(&models.Question{}, questionID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetAnswer loads an answer with the question→quiz chain preloaded.
func (r *Repository) GetAnswer(answerID uint) (*models.QuestionAnswer, error) {
	var answer models.QuestionAnswer
	err := r.db.Preload("Question.Quiz").First(&answer, answerID).Error
	if err != nil {
		return nil, err
	}
	return &answer, nil
}

func (r *Repository) CreateAnswer(answer *models.QuestionAnswer) error {
	return r.db.Create(answer).Error
}

func (r *Repository) UpdateAnswer(answer *models.QuestionAnswer) error {
	return r.db.Save(answer).Error
}

func (r *Repository) DeleteAnswer(answerID uint) error {
	result := r.db.Delete(&models.QuestionAnswer{}, answerID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListQuestions returns a quiz's questions with their answers.
func (r *Repository) ListQuestions(quizID uint) ([]models.Question, error) {
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
