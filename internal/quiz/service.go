package quiz

import (
	"log"
	"time"

	"classquiz/internal/apperror"
	"classquiz/internal/models"
	"classquiz/internal/policy"
)

// Store is the storage port for quiz management and visibility queries.
type Store interface {
	GetQuiz(quizID uint) (*models.Quiz, error)
	CreateQuiz(quiz *models.Quiz) error
	UpdateQuiz(quiz *models.Quiz) error
	DeleteQuiz(quizID uint) error
	ListQuizzesByCreator(creator models.Creator, isPublic *bool) ([]models.Quiz, error)
	ListQuizzesForClasses(classIDs []uint) ([]models.Quiz, error)
	ListPublicQuizzes(gradeLevel *int) ([]models.Quiz, error)
	GetClass(classID uint) (*models.Class, error)
	AssignQuizToClass(quiz *models.Quiz, class *models.Class) error
	UnassignQuizFromClass(quiz *models.Quiz, class *models.Class) error
	GetQuestion(questionID uint) (*models.Question, error)
	CreateQuestion(question *models.Question) error
	UpdateQuestion(question *models.Question) error
	DeleteQuestion(questionID uint) error
	GetAnswer(answerID uint) (*models.QuestionAnswer, error)
	CreateAnswer(answer *models.QuestionAnswer) error
	UpdateAnswer(answer *models.QuestionAnswer) error
	DeleteAnswer(answerID uint) error
	ListQuestions(quizID uint) ([]models.Question, error)
}

// Cache is the read-through quiz cache; a nil cache disables caching.
type Cache interface {
	GetQuiz(quizID uint) (*models.Quiz, error)
	SetQuiz(quiz *models.Quiz) error
	InvalidateQuiz(quizID uint) error
}

type Service struct {
	store Store
	cache Cache
}

func NewService(store Store, cache Cache) *Service {
	return &Service{store: store, cache: cache}
}

// Filter narrows quiz listings for staff roles.
type Filter string

const (
	FilterNone    Filter = ""
	FilterCreated Filter = "created"
	FilterClass   Filter = "class"
	FilterPublic  Filter = "public"
)

type QuizInput struct {
	Title                string    `json:"title"`
	Subject              string    `json:"subject"`
	Description          string    `json:"description"`
	GradeLevel           int       `json:"grade_level"`
	PassingScore         int       `json:"passing_score"`
	NumOfAllowedAttempts int       `json:"num_of_allowed_attempts"`
	IsPublic             bool      `json:"is_public"`
	EndDate              time.Time `json:"end_date"`
}

func (in QuizInput) validate() error {
	if in.Title == "" {
		return apperror.BadRequest("Title is required")
	}
	if in.PassingScore < 0 {
		return apperror.BadRequest("Passing score must not be negative")
	}
	if in.NumOfAllowedAttempts <= 0 {
		return apperror.BadRequest("Number of allowed attempts must be positive")
	}
	return nil
}

// CreateQuiz creates a quiz authored by the acting admin or teacher; the
// role decides which arm of the creator union is set.
func (s *Service) CreateQuiz(user *models.User, input QuizInput) (*models.Quiz, error) {
	actor, err := policy.ActorFor(user)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	quiz := &models.Quiz{
		Title:                input.Title,
		Subject:              input.Subject,
		Description:          input.Description,
		GradeLevel:           input.GradeLevel,
		PassingScore:         input.PassingScore,
		NumOfAllowedAttempts: input.NumOfAllowedAttempts,
		IsPublic:             input.IsPublic,
		EndDate:              input.EndDate,
	}
	switch a := actor.(type) {
	case policy.Admin:
		id := a.ID
		quiz.AdminID = &id
	case policy.Teacher:
		id := a.ID
		quiz.TeacherID = &id
	default:
		return nil, apperror.Forbidden("You are not authorized to create a quiz")
	}

	if err := s.store.CreateQuiz(quiz); err != nil {
		return nil, apperror.Internal("Quiz not created")
	}
	s.cacheSet(quiz)
	return quiz, nil
}

// ListQuizzes resolves which quizzes the actor may see, per role:
// admins default to their own creations, teachers must name a filter,
// students get the union of class-assigned and grade-matched public
// quizzes and need at least one class assignment.
func (s *Service) ListQuizzes(user *models.User, filter Filter) ([]models.Quiz, error) {
	actor, err := policy.ActorFor(user)
	if err != nil {
		return nil, err
	}

	switch a := actor.(type) {
	case policy.Admin:
		return s.listCreatorQuizzes(models.Creator{Role: models.RoleAdmin, ID: a.ID}, filter)
	case policy.Teacher:
		if filter == FilterNone {
			return nil, apperror.Forbidden("You are not authorized")
		}
		return s.listCreatorQuizzes(models.Creator{Role: models.RoleTeacher, ID: a.ID}, filter)
	case policy.Student:
		return s.listStudentQuizzes(a)
	}
	return nil, apperror.InvalidRole("Unrecognized user role")
}

func (s *Service) listCreatorQuizzes(creator models.Creator, filter Filter) ([]models.Quiz, error) {
	var isPublic *bool
	switch filter {
	case FilterClass:
		v := false
		isPublic = &v
	case FilterPublic:
		v := true
		isPublic = &v
	}
	quizzes, err := s.store.ListQuizzesByCreator(creator, isPublic)
	if err != nil {
		return nil, apperror.Internal("Quizzes not retrieved")
	}
	return quizzes, nil
}

func (s *Service) listStudentQuizzes(student policy.Student) ([]models.Quiz, error) {
	if len(student.ClassIDs) == 0 {
		return nil, apperror.Forbidden("You are not assigned to any classes")
	}

	assigned, err := s.store.ListQuizzesForClasses(student.ClassIDs)
	if err != nil {
		return nil, apperror.Internal("Quizzes not retrieved")
	}
	grade := student.GradeLevel
	public, err := s.store.ListPublicQuizzes(&grade)
	if err != nil {
		return nil, apperror.Internal("Quizzes not retrieved")
	}

	seen := make(map[uint]bool, len(assigned))
	quizzes := make([]models.Quiz, 0, len(assigned)+len(public))
	for _, q := range assigned {
		seen[q.ID] = true
		quizzes = append(quizzes, q)
	}
	for _, q := range public {
		if !seen[q.ID] {
			quizzes = append(quizzes, q)
		}
	}
	return quizzes, nil
}

// ListPublicQuizzes is the separate public-quiz query: students get their
// grade level only, staff see all public quizzes. No class assignment is
// required on this path.
func (s *Service) ListPublicQuizzes(user *models.User) ([]models.Quiz, error) {
	actor, err := policy.ActorFor(user)
	if err != nil {
		return nil, err
	}

	var gradeLevel *int
	if student, ok := actor.(policy.Student); ok {
		grade := student.GradeLevel
		gradeLevel = &grade
	}
	quizzes, err := s.store.ListPublicQuizzes(gradeLevel)
	if err != nil {
		return nil, apperror.Internal("Quizzes not retrieved")
	}
	return quizzes, nil
}

// GetQuiz returns one quiz if the actor may view it.
func (s *Service) GetQuiz(user *models.User, quizID uint) (*models.Quiz, error) {
	actor, err := policy.ActorFor(user)
	if err != nil {
		return nil, err
	}
	quiz, err := s.loadQuiz(quizID)
	if err != nil {
		return nil, err
	}
	if !actor.CanViewQuiz(quiz) {
		return nil, apperror.Forbidden("You are not authorized to view this quiz")
	}
	return quiz, nil
}

type QuizUpdate struct {
	Title                *string    `json:"title"`
	Subject              *string    `json:"subject"`
	Description          *string    `json:"description"`
	GradeLevel           *int       `json:"grade_level"`
	PassingScore         *int       `json:"passing_score"`
	NumOfAllowedAttempts *int       `json:"num_of_allowed_attempts"`
	IsPublic             *bool      `json:"is_public"`
	EndDate              *time.Time `json:"end_date"`
}

func (u QuizUpdate) validate() error {
	if u.Title != nil && *u.Title == "" {
		return apperror.BadRequest("Title must not be empty")
	}
	if u.PassingScore != nil && *u.PassingScore < 0 {
		return apperror.BadRequest("Passing score must not be negative")
	}
	if u.NumOfAllowedAttempts != nil && *u.NumOfAllowedAttempts <= 0 {
		return apperror.BadRequest("Number of allowed attempts must be positive")
	}
	return nil
}

// UpdateQuiz applies a partial update after the full payload validates.
func (s *Service) UpdateQuiz(user *models.User, quizID uint, update QuizUpdate) (*models.Quiz, error) {
	actor, err := policy.ActorFor(user)
	if err != nil {
		return nil, err
	}
	quiz, err := s.loadQuiz(quizID)
	if err != nil {
		return nil, err
	}
	if !actor.CanUpdateQuiz(quiz) {
		return nil, apperror.Forbidden("You are not authorized to update this quiz")
	}
	if err := update.validate(); err != nil {
		return nil, err
	}

	if update.Title != nil {
		quiz.Title = *update.Title
	}
	if update.Subject != nil {
		quiz.Subject = *update.Subject
	}
	if update.Description != nil {
		quiz.Description = *update.Description
	}
	if update.GradeLevel != nil {
		quiz.GradeLevel = *update.GradeLevel
	}
	if update.PassingScore != nil {
		quiz.PassingScore = *update.PassingScore
	}
	if update.NumOfAllowedAttempts != nil {
		quiz.NumOfAllowedAttempts = *update.NumOfAllowedAttempts
	}
	if update.IsPublic != nil {
		quiz.IsPublic = *update.IsPublic
	}
	if update.EndDate != nil {
		quiz.EndDate = *update.EndDate
	}

	if err := s.store.UpdateQuiz(quiz); err != nil {
		return nil, apperror.Internal("Quiz not updated")
	}
	s.cacheInvalidate(quizID)
	return quiz, nil
}

func (s *Service) DeleteQuiz(user *models.User, quizID uint) error {
	actor, err := policy.ActorFor(user)
	if err != nil {
		return err
	}
	quiz, err := s.loadQuiz(quizID)
	if err != nil {
		return err
	}
	if !actor.CanUpdateQuiz(quiz) {
		return apperror.Forbidden("You are not authorized to delete this quiz")
	}
	if err := s.store.DeleteQuiz(quizID); err != nil {
		return apperror.FromStorage(err, "Quiz not found")
	}
	s.cacheInvalidate(quizID)
	return nil
}

// AssignQuizToClass attaches a quiz to a class and makes it class-scoped.
func (s *Service) AssignQuizToClass(user *models.User, quizID, classID uint) (*models.Quiz, error) {
	actor, err := policy.ActorFor(user)
	if err != nil {
		return nil, err
	}
	quiz, err := s.loadQuiz(quizID)
	if err != nil {
		return nil, err
	}
	if !actor.CanAssignQuizToClass(quiz, classID) {
		return nil, apperror.Forbidden("You are not authorized to assign this quiz to a class")
	}
	class, err := s.store.GetClass(classID)
	if err != nil {
		return nil, apperror.FromStorage(err, "Class not found")
	}
	if err := s.store.AssignQuizToClass(quiz, class); err != nil {
		log.Printf("Error assigning quiz %d to class %d: %v", quizID, classID, err)
		return nil, apperror.Internal("Quiz not assigned to class")
	}
	s.cacheInvalidate(quizID)
	return s.loadQuiz(quizID)
}

func (s *Service) UnassignQuizFromClass(user *models.User, quizID, classID uint) (*models.Quiz, error) {
	actor, err := policy.ActorFor(user)
	if err != nil {
		return nil, err
	}
	quiz, err := s.loadQuiz(quizID)
	if err != nil {
		return nil, err
	}
	if !actor.CanUnassignQuizFromClass(quiz, classID) {
		return nil, apperror.Forbidden("You are not authorized to unassign this quiz from a class")
	}
	class, err := s.store.GetClass(classID)
	if err != nil {
		return nil, apperror.FromStorage(err, "Class not found")
	}
	if err := s.store.UnassignQuizFromClass(quiz, class); err != nil {
		return nil, apperror.Internal("Quiz not unassigned from class")
	}
	s.cacheInvalidate(quizID)
	return s.loadQuiz(quizID)
}

type QuestionInput struct {
	QuestionText string `json:"question_text"`
	GradePoints  int    `json:"grade_points"`
}

func (in QuestionInput) validate() error {
	if in.QuestionText == "" {
		return apperror.BadRequest("Question text is required")
	}
	if in.GradePoints <= 0 {
		return apperror.BadRequest("Grade points must be positive")
	}
	return nil
}

func (s *Service) CreateQuestion(user *models.User, quizID uint, input QuestionInput) (*models.Question, error) {
	actor, err := policy.ActorFor(user)
	if err != nil {
		return nil, err
	}
	quiz, err := s.loadQuiz(quizID)
	if err != nil {
		return nil, err
	}
	if !actor.CanUpdateQuiz(quiz) {
		return nil, apperror.Forbidden("You are not authorized")
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	question := &models.Question{
		QuizID:       quizID,
		QuestionText: input.QuestionText,
		GradePoints:  input.GradePoints,
	}
	if err := s.store.CreateQuestion(question); err != nil {
		return nil, apperror.Internal("Question not created")
	}
	return question, nil
}

func (s *Service) UpdateQuestion(user *models.User, questionID uint, input QuestionInput) (*models.Question, error) {
	actor, err := policy.ActorFor(user)
	if err != nil {
		return nil, err
	}
	question, err := s.store.GetQuestion(questionID)
	if err != nil {
		return nil, apperror.FromStorage(err, "Question not found")
	}
	if !actor.CanUpdateQuestion(question) {
		return nil, apperror.Forbidden("You are not authorized to update this question")
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	question.QuestionText = input.QuestionText
	question.GradePoints = input.GradePoints
	if err := s.store.UpdateQuestion(question); err != nil {
		return nil, apperror.Internal("Question not updated")
	}
	return question, nil
}

func (s *Service) DeleteQuestion(user *models.User, questionID uint) error {
	actor, err := policy.ActorFor(user)
	if err != nil {
		return err
	}
	question, err := s.store.GetQuestion(questionID)
	if err != nil {
		return apperror.FromStorage(err, "Question not found")
	}
	if !actor.CanUpdateQuestion(question) {
		return apperror.Forbidden("You are not authorized to delete this question")
	}
	if err := s.store.DeleteQuestion(questionID); err != nil {
		return apperror.FromStorage(err, "Question not found")
	}
	return nil
}

type AnswerInput struct {
	AnswerText string `json:"answer_text"`
	IsCorrect  bool   `json:"is_correct"`
}

func (in AnswerInput) validate() error {
	if in.AnswerText == "" {
		return apperror.BadRequest("Answer text is required")
	}
	return nil
}

// CreateAnswer adds an answer option to a question. Students are rejected
// before the policy is consulted; that call-site rule is deliberate.
func (s *Service) CreateAnswer(user *models.User, questionID uint, input AnswerInput) (*models.QuestionAnswer, error) {
	if user.Role == models.RoleStudent {
		return nil, apperror.Forbidden("You are not authorized")
	}
	actor, err := policy.ActorFor(user)
	if err != nil {
		return nil, err
	}
	question, err := s.store.GetQuestion(questionID)
	if err != nil {
		return nil, apperror.FromStorage(err, "Question not found")
	}
	if !actor.CanCreateAnswer(question) {
		return nil, apperror.Forbidden("You are not authorized")
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	answer := &models.QuestionAnswer{
		QuestionID: questionID,
		AnswerText: input.AnswerText,
		IsCorrect:  input.IsCorrect,
	}
	if err := s.store.CreateAnswer(answer); err != nil {
		return nil, apperror.Internal("Answer not created")
	}
	return answer, nil
}

func (s *Service) UpdateAnswer(user *models.User, answerID uint, input AnswerInput) (*models.QuestionAnswer, error) {
	if user.Role == models.RoleStudent {
		return nil, apperror.Forbidden("You are not authorized")
	}
	actor, err := policy.ActorFor(user)
	if err != nil {
		return nil, err
	}
	answer, err := s.store.GetAnswer(answerID)
	if err != nil {
		return nil, apperror.FromStorage(err, "Answer not found")
	}
	if !actor.CanUpdateAnswer(answer) {
		return nil, apperror.Forbidden("You are not authorized to update this answer")
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	answer.AnswerText = input.AnswerText
	answer.IsCorrect = input.IsCorrect
	if err := s.store.UpdateAnswer(answer); err != nil {
		return nil, apperror.Internal("Answer not updated")
	}
	return answer, nil
}

func (s *Service) DeleteAnswer(user *models.User, answerID uint) error {
	if user.Role == models.RoleStudent {
		return apperror.Forbidden("You are not authorized")
	}
	actor, err := policy.ActorFor(user)
	if err != nil {
		return err
	}
	answer, err := s.store.GetAnswer(answerID)
	if err != nil {
		return apperror.FromStorage(err, "Answer not found")
	}
	if !actor.CanDeleteAnswer(answer) {
		return apperror.Forbidden("You are not authorized to delete this answer")
	}
	if err := s.store.DeleteAnswer(answerID); err != nil {
		return apperror.FromStorage(err, "Answer not found")
	}
	return nil
}

// ListQuizQuestions returns a quiz's questions for an authorized actor.
// Students additionally hit the quiz deadline gate, and never see the
// correctness flags on answers.
func (s *Service) ListQuizQuestions(user *models.User, quizID uint) ([]models.QuestionDTO, error) {
	actor, err := policy.ActorFor(user)
	if err != nil {
		return nil, err
	}
	quiz, err := s.loadQuiz(quizID)
	if err != nil {
		return nil, err
	}
	if !actor.CanViewQuiz(quiz) {
		return nil, apperror.Forbidden("You are not authorized to retrieve questions for this quiz")
	}
	if !actor.CanViewQuizQuestions(quiz, time.Now()) {
		return nil, apperror.Forbidden("This quiz has ended")
	}

	questions, err := s.store.ListQuestions(quizID)
	if err != nil {
		return nil, apperror.Internal("Questions not retrieved")
	}

	includeCorrect := actor.Role() != models.RoleStudent
	dtos := make([]models.QuestionDTO, len(questions))
	for i, q := range questions {
		dtos[i] = q.ToDTO(includeCorrect)
	}
	return dtos, nil
}

// loadQuiz goes through the cache first, falling back to storage.
func (s *Service) loadQuiz(quizID uint) (*models.Quiz, error) {
	if s.cache != nil {
		if quiz, err := s.cache.GetQuiz(quizID); err == nil {
			return quiz, nil
		}
	}
	quiz, err := s.store.GetQuiz(quizID)
	if err != nil {
		return nil, apperror.FromStorage(err, "Quiz not found")
	}
	s.cacheSet(quiz)
	return quiz, nil
}

func (s *Service) cacheSet(quiz *models.Quiz) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetQuiz(quiz); err != nil {
		log.Printf("Error caching quiz %d: %v", quiz.ID, err)
	}
}

func (s *Service) cacheInvalidate(quizID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateQuiz(quizID); err != nil {
		log.Printf("Error invalidating quiz %d cache: %v", quizID, err)
	}
}
