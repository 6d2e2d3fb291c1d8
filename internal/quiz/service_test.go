package quiz

import (
	"testing"
	"time"

	"classquiz/internal/apperror"
	"classquiz/internal/models"

	"gorm.io/gorm"
)

type fakeStore struct {
	quizzes   map[uint]*models.Quiz
	classes   map[uint]*models.Class
	questions map[uint]*models.Question
	answers   map[uint]*models.QuestionAnswer
	nextID    uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		quizzes:   make(map[uint]*models.Quiz),
		classes:   make(map[uint]*models.Class),
		questions: make(map[uint]*models.Question),
		answers:   make(map[uint]*models.QuestionAnswer),
	}
}

func (f *fakeStore) GetQuiz(quizID uint) (*models.Quiz, error) {
	quiz, ok := f.quizzes[quizID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return quiz, nil
}

func (f *fakeStore) CreateQuiz(quiz *models.Quiz) error {
	f.nextID++
	quiz.ID = f.nextID
	f.quizzes[quiz.ID] = quiz
	return nil
}

func (f *fakeStore) UpdateQuiz(quiz *models.Quiz) error {
	f.quizzes[quiz.ID] = quiz
	return nil
}

func (f *fakeStore) DeleteQuiz(quizID uint) error {
	if _, ok := f.quizzes[quizID]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.quizzes, quizID)
	return nil
}

func (f *fakeStore) ListQuizzesByCreator(creator models.Creator, isPublic *bool) ([]models.Quiz, error) {
	var out []models.Quiz
	for _, q := range f.quizzes {
		cr, ok := q.Creator()
		if !ok || cr != creator {
			continue
		}
		if isPublic != nil && q.IsPublic != *isPublic {
			continue
		}
		out = append(out, *q)
	}
	return out, nil
}

func (f *fakeStore) ListQuizzesForClasses(classIDs []uint) ([]models.Quiz, error) {
	var out []models.Quiz
	for _, q := range f.quizzes {
		if q.AssignedToAny(classIDs) {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (f *fakeStore) ListPublicQuizzes(gradeLevel *int) ([]models.Quiz, error) {
	var out []models.Quiz
	for _, q := range f.quizzes {
		if !q.IsPublic {
			continue
		}
		if gradeLevel != nil && q.GradeLevel != *gradeLevel {
			continue
		}
		out = append(out, *q)
	}
	return out, nil
}

func (f *fakeStore) GetClass(classID uint) (*models.Class, error) {
	class, ok := f.classes[classID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return class, nil
}

func (f *fakeStore) AssignQuizToClass(quiz *models.Quiz, class *models.Class) error {
	quiz.IsPublic = false
	quiz.Classes = append(quiz.Classes, *class)
	return nil
}

func (f *fakeStore) UnassignQuizFromClass(quiz *models.Quiz, class *models.Class) error {
	kept := quiz.Classes[:0]
	for _, c := range quiz.Classes {
		if c.ID != class.ID {
			kept = append(kept, c)
		}
	}
	quiz.Classes = kept
	return nil
}

func (f *fakeStore) GetQuestion(questionID uint) (*models.Question, error) {
	q, ok := f.questions[questionID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return q, nil
}

func (f *fakeStore) CreateQuestion(question *models.Question) error {
	f.nextID++
	question.ID = f.nextID
	question.Quiz = f.quizzes[question.QuizID]
	f.questions[question.ID] = question
	return nil
}

func (f *fakeStore) UpdateQuestion(question *models.Question) error {
	f.questions[question.ID] = question
	return nil
}

func (f *fakeStore) DeleteQuestion(questionID uint) error {
	if _, ok := f.questions[questionID]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.questions, questionID)
	return nil
}

func (f *fakeStore) GetAnswer(answerID uint) (*models.QuestionAnswer, error) {
	a, ok := f.answers[answerID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (f *fakeStore) CreateAnswer(answer *models.QuestionAnswer) error {
	f.nextID++
	answer.ID = f.nextID
	answer.Question = f.questions[answer.QuestionID]
	f.answers[answer.ID] = answer
	return nil
}

func (f *fakeStore) UpdateAnswer(answer *models.QuestionAnswer) error {
	f.answers[answer.ID] = answer
	return nil
}

func (f *fakeStore) DeleteAnswer(answerID uint) error {
	if _, ok := f.answers[answerID]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.answers, answerID)
	return nil
}

func (f *fakeStore) ListQuestions(quizID uint) ([]models.Question, error) {
	var out []models.Question
	for _, q := range f.questions {
		if q.QuizID == quizID {
			out = append(out, *q)
		}
	}
	return out, nil
}

func uintPtr(v uint) *uint { return &v }

func adminUser(id uint) *models.User {
	return &models.User{ID: id, Role: models.RoleAdmin, Admin: &models.Admin{ID: id}}
}

func teacherUser(id uint, classIDs ...uint) *models.User {
	teacher := &models.Teacher{ID: id}
	for _, cid := range classIDs {
		teacher.AssignedClasses = append(teacher.AssignedClasses, models.Class{ID: cid})
	}
	return &models.User{ID: id, Role: models.RoleTeacher, Teacher: teacher}
}

func studentUser(id uint, grade int, classIDs ...uint) *models.User {
	student := &models.Student{ID: id, GradeLevel: grade}
	for _, cid := range classIDs {
		student.AssignedClasses = append(student.AssignedClasses, models.Class{ID: cid})
	}
	return &models.User{ID: id, Role: models.RoleStudent, Student: student}
}

func TestCreateQuizSetsCreatorArm(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)
	input := QuizInput{Title: "Algebra", GradeLevel: 8, NumOfAllowedAttempts: 1}

	adminQuiz, err := svc.CreateQuiz(adminUser(1), input)
	if err != nil {
		t.Fatalf("admin CreateQuiz: %v", err)
	}
	if adminQuiz.AdminID == nil || adminQuiz.TeacherID != nil {
		t.Errorf("admin quiz creator arms = %v/%v", adminQuiz.AdminID, adminQuiz.TeacherID)
	}

	teacherQuiz, err := svc.CreateQuiz(teacherUser(7), input)
	if err != nil {
		t.Fatalf("teacher CreateQuiz: %v", err)
	}
	if teacherQuiz.TeacherID == nil || teacherQuiz.AdminID != nil {
		t.Errorf("teacher quiz creator arms = %v/%v", teacherQuiz.AdminID, teacherQuiz.TeacherID)
	}

	if _, err := svc.CreateQuiz(studentUser(5, 8, 1), input); !apperror.IsForbidden(err) {
		t.Errorf("student CreateQuiz error = %v, want forbidden", err)
	}
}

func TestCreateQuizValidation(t *testing.T) {
	svc := NewService(newFakeStore(), nil)
	tests := []struct {
		name  string
		input QuizInput
	}{
		{"missing title", QuizInput{NumOfAllowedAttempts: 1}},
		{"negative passing score", QuizInput{Title: "T", PassingScore: -1, NumOfAllowedAttempts: 1}},
		{"zero attempts", QuizInput{Title: "T"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateQuiz(adminUser(1), tt.input); !apperror.IsBadRequest(err) {
				t.Errorf("error = %v, want bad request", err)
			}
		})
	}
}

func TestListQuizzesTeacherRequiresFilter(t *testing.T) {
	store := newFakeStore()
	store.quizzes[1] = &models.Quiz{ID: 1, Title: "Mine", TeacherID: uintPtr(7)}
	store.quizzes[2] = &models.Quiz{ID: 2, Title: "Public mine", TeacherID: uintPtr(7), IsPublic: true}
	store.quizzes[3] = &models.Quiz{ID: 3, Title: "Theirs", TeacherID: uintPtr(8)}
	svc := NewService(store, nil)

	if _, err := svc.ListQuizzes(teacherUser(7), FilterNone); !apperror.IsForbidden(err) {
		t.Fatalf("no filter error = %v, want forbidden", err)
	}

	created, err := svc.ListQuizzes(teacherUser(7), FilterCreated)
	if err != nil {
		t.Fatalf("created filter: %v", err)
	}
	if len(created) != 2 {
		t.Errorf("created = %d quizzes, want 2", len(created))
	}

	public, err := svc.ListQuizzes(teacherUser(7), FilterPublic)
	if err != nil {
		t.Fatalf("public filter: %v", err)
	}
	if len(public) != 1 || public[0].ID != 2 {
		t.Errorf("public = %+v, want only quiz 2", public)
	}
}

func TestListQuizzesAdminDefaultsToCreated(t *testing.T) {
	store := newFakeStore()
	store.quizzes[1] = &models.Quiz{ID: 1, AdminID: uintPtr(1)}
	store.quizzes[2] = &models.Quiz{ID: 2, AdminID: uintPtr(2)}
	store.quizzes[3] = &models.Quiz{ID: 3, TeacherID: uintPtr(1)}
	svc := NewService(store, nil)

	quizzes, err := svc.ListQuizzes(adminUser(1), FilterNone)
	if err != nil {
		t.Fatalf("ListQuizzes: %v", err)
	}
	if len(quizzes) != 1 || quizzes[0].ID != 1 {
		t.Errorf("quizzes = %+v, want only quiz 1", quizzes)
	}
}

func TestListQuizzesStudentUnion(t *testing.T) {
	store := newFakeStore()
	// Assigned to the student's class and also public at their grade:
	// must appear once.
	store.quizzes[1] = &models.Quiz{
		ID: 1, AdminID: uintPtr(1), IsPublic: true, GradeLevel: 8,
		Classes: []models.Class{{ID: 3}},
	}
	// Class-assigned only.
	store.quizzes[2] = &models.Quiz{ID: 2, AdminID: uintPtr(1), Classes: []models.Class{{ID: 3}}}
	// Public at the student's grade only.
	store.quizzes[3] = &models.Quiz{ID: 3, AdminID: uintPtr(1), IsPublic: true, GradeLevel: 8}
	// Public at another grade: invisible.
	store.quizzes[4] = &models.Quiz{ID: 4, AdminID: uintPtr(1), IsPublic: true, GradeLevel: 9}
	// Another class: invisible.
	store.quizzes[5] = &models.Quiz{ID: 5, AdminID: uintPtr(1), Classes: []models.Class{{ID: 9}}}
	svc := NewService(store, nil)

	quizzes, err := svc.ListQuizzes(studentUser(5, 8, 3), FilterNone)
	if err != nil {
		t.Fatalf("ListQuizzes: %v", err)
	}
	seen := make(map[uint]int)
	for _, q := range quizzes {
		seen[q.ID]++
	}
	for _, want := range []uint{1, 2, 3} {
		if seen[want] != 1 {
			t.Errorf("quiz %d appears %d times, want once", want, seen[want])
		}
	}
	if len(quizzes) != 3 {
		t.Errorf("got %d quizzes, want 3", len(quizzes))
	}
}

func TestListQuizzesStudentWithoutClasses(t *testing.T) {
	store := newFakeStore()
	store.quizzes[1] = &models.Quiz{ID: 1, AdminID: uintPtr(1), IsPublic: true, GradeLevel: 8}
	svc := NewService(store, nil)

	if _, err := svc.ListQuizzes(studentUser(5, 8), FilterNone); !apperror.IsForbidden(err) {
		t.Fatalf("error = %v, want forbidden", err)
	}
}

func TestListPublicQuizzes(t *testing.T) {
	store := newFakeStore()
	store.quizzes[1] = &models.Quiz{ID: 1, AdminID: uintPtr(1), IsPublic: true, GradeLevel: 8}
	store.quizzes[2] = &models.Quiz{ID: 2, AdminID: uintPtr(1), IsPublic: true, GradeLevel: 9}
	store.quizzes[3] = &models.Quiz{ID: 3, AdminID: uintPtr(1)}
	svc := NewService(store, nil)

	// No class assignment required on this path.
	quizzes, err := svc.ListPublicQuizzes(studentUser(5, 8))
	if err != nil {
		t.Fatalf("student ListPublicQuizzes: %v", err)
	}
	if len(quizzes) != 1 || quizzes[0].ID != 1 {
		t.Errorf("student sees %+v, want only quiz 1", quizzes)
	}

	quizzes, err = svc.ListPublicQuizzes(teacherUser(7))
	if err != nil {
		t.Fatalf("teacher ListPublicQuizzes: %v", err)
	}
	if len(quizzes) != 2 {
		t.Errorf("teacher sees %d quizzes, want 2", len(quizzes))
	}
}

func TestGetQuizVisibilityGate(t *testing.T) {
	store := newFakeStore()
	store.quizzes[1] = &models.Quiz{ID: 1, TeacherID: uintPtr(7)}
	svc := NewService(store, nil)

	if _, err := svc.GetQuiz(teacherUser(7), 1); err != nil {
		t.Errorf("creator GetQuiz: %v", err)
	}
	if _, err := svc.GetQuiz(studentUser(5, 8, 3), 1); !apperror.IsForbidden(err) {
		t.Errorf("student error = %v, want forbidden", err)
	}
	if _, err := svc.GetQuiz(adminUser(1), 99); !apperror.IsNotFound(err) {
		t.Errorf("missing quiz error = %v, want not found", err)
	}
}

func TestUpdateQuizOwnership(t *testing.T) {
	store := newFakeStore()
	store.quizzes[1] = &models.Quiz{ID: 1, Title: "Old", TeacherID: uintPtr(7)}
	svc := NewService(store, nil)

	title := "New"
	if _, err := svc.UpdateQuiz(teacherUser(8), 1, QuizUpdate{Title: &title}); !apperror.IsForbidden(err) {
		t.Fatalf("foreign teacher error = %v, want forbidden", err)
	}

	quiz, err := svc.UpdateQuiz(teacherUser(7), 1, QuizUpdate{Title: &title})
	if err != nil {
		t.Fatalf("UpdateQuiz: %v", err)
	}
	if quiz.Title != "New" {
		t.Errorf("Title = %q", quiz.Title)
	}

	empty := ""
	if _, err := svc.UpdateQuiz(teacherUser(7), 1, QuizUpdate{Title: &empty}); !apperror.IsBadRequest(err) {
		t.Errorf("empty title error = %v, want bad request", err)
	}
}

func TestAssignQuizToClassMakesItPrivate(t *testing.T) {
	store := newFakeStore()
	store.quizzes[1] = &models.Quiz{ID: 1, TeacherID: uintPtr(7), IsPublic: true}
	store.classes[3] = &models.Class{ID: 3}
	svc := NewService(store, nil)

	if _, err := svc.AssignQuizToClass(teacherUser(7), 1, 3); !apperror.IsForbidden(err) {
		t.Fatalf("teacher outside class error = %v, want forbidden", err)
	}

	quiz, err := svc.AssignQuizToClass(teacherUser(7, 3), 1, 3)
	if err != nil {
		t.Fatalf("AssignQuizToClass: %v", err)
	}
	if quiz.IsPublic {
		t.Error("quiz stayed public after class assignment")
	}
	if !quiz.AssignedToAny([]uint{3}) {
		t.Error("quiz not attached to class")
	}

	quiz, err = svc.UnassignQuizFromClass(teacherUser(7, 3), 1, 3)
	if err != nil {
		t.Fatalf("UnassignQuizFromClass: %v", err)
	}
	if quiz.AssignedToAny([]uint{3}) {
		t.Error("quiz still attached after unassignment")
	}
}

func TestStudentsNeverMutateAnswers(t *testing.T) {
	store := newFakeStore()
	store.quizzes[1] = &models.Quiz{ID: 1, IsPublic: true, GradeLevel: 8, AdminID: uintPtr(1)}
	store.questions[2] = &models.Question{ID: 2, QuizID: 1, Quiz: store.quizzes[1]}
	store.answers[3] = &models.QuestionAnswer{ID: 3, QuestionID: 2, Question: store.questions[2]}
	svc := NewService(store, nil)

	student := studentUser(5, 8, 3)
	input := AnswerInput{AnswerText: "42"}

	if _, err := svc.CreateAnswer(student, 2, input); !apperror.IsForbidden(err) {
		t.Errorf("CreateAnswer error = %v, want forbidden", err)
	}
	if _, err := svc.UpdateAnswer(student, 3, input); !apperror.IsForbidden(err) {
		t.Errorf("UpdateAnswer error = %v, want forbidden", err)
	}
	if err := svc.DeleteAnswer(student, 3); !apperror.IsForbidden(err) {
		t.Errorf("DeleteAnswer error = %v, want forbidden", err)
	}
}

func TestListQuizQuestionsStripsCorrectnessForStudents(t *testing.T) {
	store := newFakeStore()
	store.quizzes[1] = &models.Quiz{ID: 1, IsPublic: true, GradeLevel: 8, AdminID: uintPtr(1)}
	store.questions[2] = &models.Question{
		ID: 2, QuizID: 1, Quiz: store.quizzes[1], QuestionText: "2+2?", GradePoints: 1,
		Answers: []models.QuestionAnswer{
			{ID: 20, AnswerText: "4", IsCorrect: true},
			{ID: 21, AnswerText: "5"},
		},
	}
	svc := NewService(store, nil)

	studentView, err := svc.ListQuizQuestions(studentUser(5, 8, 3), 1)
	if err != nil {
		t.Fatalf("student ListQuizQuestions: %v", err)
	}
	for _, q := range studentView {
		for _, a := range q.Answers {
			if a.IsCorrect != nil {
				t.Errorf("answer %d leaks correctness to student", a.ID)
			}
		}
	}

	staffView, err := svc.ListQuizQuestions(teacherUser(7), 1)
	if err != nil {
		t.Fatalf("teacher ListQuizQuestions: %v", err)
	}
	for _, q := range staffView {
		for _, a := range q.Answers {
			if a.IsCorrect == nil {
				t.Errorf("answer %d hides correctness from staff", a.ID)
			}
		}
	}
}

func TestListQuizQuestionsDeadline(t *testing.T) {
	store := newFakeStore()
	store.quizzes[1] = &models.Quiz{
		ID: 1, IsPublic: true, GradeLevel: 8, AdminID: uintPtr(1),
		EndDate: time.Now().Add(-time.Hour),
	}
	svc := NewService(store, nil)

	if _, err := svc.ListQuizQuestions(studentUser(5, 8, 3), 1); !apperror.IsForbidden(err) {
		t.Fatalf("student error = %v, want forbidden", err)
	}
	// Staff are not gated by the deadline.
	if _, err := svc.ListQuizQuestions(adminUser(1), 1); err != nil {
		t.Errorf("admin ListQuizQuestions: %v", err)
	}
}

func TestListQuizQuestionsHiddenQuiz(t *testing.T) {
	store := newFakeStore()
	store.quizzes[1] = &models.Quiz{ID: 1, TeacherID: uintPtr(7)}
	svc := NewService(store, nil)

	if _, err := svc.ListQuizQuestions(studentUser(5, 8, 3), 1); !apperror.IsForbidden(err) {
		t.Fatalf("error = %v, want forbidden", err)
	}
}

type fakeCache struct {
	quizzes     map[uint]*models.Quiz
	invalidated []uint
}

func newFakeCache() *fakeCache {
	return &fakeCache{quizzes: make(map[uint]*models.Quiz)}
}

func (c *fakeCache) GetQuiz(quizID uint) (*models.Quiz, error) {
	quiz, ok := c.quizzes[quizID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return quiz, nil
}

func (c *fakeCache) SetQuiz(quiz *models.Quiz) error {
	c.quizzes[quiz.ID] = quiz
	return nil
}

func (c *fakeCache) InvalidateQuiz(quizID uint) error {
	c.invalidated = append(c.invalidated, quizID)
	delete(c.quizzes, quizID)
	return nil
}

func TestQuizCacheReadThrough(t *testing.T) {
	store := newFakeStore()
	store.quizzes[1] = &models.Quiz{ID: 1, Title: "Cached", AdminID: uintPtr(1)}
	cache := newFakeCache()
	svc := NewService(store, cache)

	if _, err := svc.GetQuiz(adminUser(1), 1); err != nil {
		t.Fatalf("GetQuiz: %v", err)
	}
	if _, ok := cache.quizzes[1]; !ok {
		t.Fatal("quiz not populated into cache")
	}

	// Served from cache even after the row disappears from storage.
	delete(store.quizzes, 1)
	quiz, err := svc.GetQuiz(adminUser(1), 1)
	if err != nil {
		t.Fatalf("cached GetQuiz: %v", err)
	}
	if quiz.Title != "Cached" {
		t.Errorf("Title = %q", quiz.Title)
	}
}

func TestUpdateQuizInvalidatesCache(t *testing.T) {
	store := newFakeStore()
	store.quizzes[1] = &models.Quiz{ID: 1, Title: "Old", AdminID: uintPtr(1)}
	cache := newFakeCache()
	svc := NewService(store, cache)

	title := "New"
	if _, err := svc.UpdateQuiz(adminUser(1), 1, QuizUpdate{Title: &title}); err != nil {
		t.Fatalf("UpdateQuiz: %v", err)
	}
	if len(cache.invalidated) == 0 || cache.invalidated[0] != 1 {
		t.Errorf("invalidated = %v, want [1]", cache.invalidated)
	}
}
