// Package policy holds the pure authorization decisions. Every predicate
// takes already-fetched entity snapshots and returns a bool; loading the
// snapshots (with classes and the answer→question→quiz chain preloaded) is
// the caller's job.
package policy

import (
	"time"

	"classquiz/internal/apperror"
	"classquiz/internal/models"
)

// Actor is the closed set of decision-makers, one implementation per role.
type Actor interface {
	Role() models.Role

	CanUpdateAnswer(ans *models.QuestionAnswer) bool
	CanDeleteAnswer(ans *models.QuestionAnswer) bool
	CanCreateAnswer(q *models.Question) bool
	CanUpdateQuestion(q *models.Question) bool

	CanUpdateQuiz(quiz *models.Quiz) bool
	CanAssignQuizToClass(quiz *models.Quiz, classID uint) bool
	CanUnassignQuizFromClass(quiz *models.Quiz, classID uint) bool
	CanViewQuiz(quiz *models.Quiz) bool
	CanViewQuizQuestions(quiz *models.Quiz, now time.Time) bool
}

// ActorFor builds the Actor for a user snapshot. The matching profile must
// be attached (users stay PENDING, without a profile, until activated).
func ActorFor(user *models.User) (Actor, error) {
	switch user.Role {
	case models.RoleAdmin:
		if user.Admin == nil {
			return nil, apperror.Forbidden("Your account is not active")
		}
		return Admin{ID: user.Admin.ID}, nil
	case models.RoleTeacher:
		if user.Teacher == nil {
			return nil, apperror.Forbidden("Your account is not active")
		}
		return Teacher{ID: user.Teacher.ID, ClassIDs: classIDs(user.Teacher.AssignedClasses)}, nil
	case models.RoleStudent:
		if user.Student == nil {
			return nil, apperror.Forbidden("Your account is not active")
		}
		return Student{
			ID:         user.Student.ID,
			GradeLevel: user.Student.GradeLevel,
			ClassIDs:   classIDs(user.Student.AssignedClasses),
		}, nil
	}
	return nil, apperror.InvalidRole("Unrecognized user role")
}

func classIDs(classes []models.Class) []uint {
	ids := make([]uint, len(classes))
	for i, c := range classes {
		ids[i] = c.ID
	}
	return ids
}

// owningQuiz climbs answer → question → quiz. Nil when the chain was not
// preloaded; predicates treat that as not-authorized.
func owningQuiz(ans *models.QuestionAnswer) *models.Quiz {
	if ans == nil || ans.Question == nil {
		return nil
	}
	return ans.Question.Quiz
}

// Admin decisions: admins may do everything.
type Admin struct {
	ID uint
}

func (Admin) Role() models.Role { return models.RoleAdmin }

func (Admin) CanUpdateAnswer(*models.QuestionAnswer) bool       { return true }
func (Admin) CanDeleteAnswer(*models.QuestionAnswer) bool       { return true }
func (Admin) CanCreateAnswer(*models.Question) bool             { return true }
func (Admin) CanUpdateQuestion(*models.Question) bool           { return true }
func (Admin) CanUpdateQuiz(*models.Quiz) bool                   { return true }
func (Admin) CanAssignQuizToClass(*models.Quiz, uint) bool      { return true }
func (Admin) CanUnassignQuizFromClass(*models.Quiz, uint) bool  { return true }
func (Admin) CanViewQuiz(*models.Quiz) bool                     { return true }
func (Admin) CanViewQuizQuestions(*models.Quiz, time.Time) bool { return true }

// Teacher decisions hinge on authorship and class assignment.
type Teacher struct {
	ID       uint
	ClassIDs []uint
}

func (Teacher) Role() models.Role { return models.RoleTeacher }

func (t Teacher) CanUpdateAnswer(ans *models.QuestionAnswer) bool {
	quiz := owningQuiz(ans)
	return quiz != nil && quiz.CreatedByTeacher(t.ID)
}

// CanDeleteAnswer matches the actor against the quiz's creator, whichever
// arm of the creator union is set.
func (t Teacher) CanDeleteAnswer(ans *models.QuestionAnswer) bool {
	quiz := owningQuiz(ans)
	if quiz == nil {
		return false
	}
	cr, ok := quiz.Creator()
	return ok && cr.Role == models.RoleTeacher && cr.ID == t.ID
}

func (t Teacher) CanCreateAnswer(q *models.Question) bool {
	return q != nil && q.Quiz != nil && q.Quiz.CreatedByTeacher(t.ID)
}

func (t Teacher) CanUpdateQuestion(q *models.Question) bool {
	return q != nil && q.Quiz != nil && q.Quiz.CreatedByTeacher(t.ID)
}

func (t Teacher) CanUpdateQuiz(quiz *models.Quiz) bool {
	return quiz.CreatedByTeacher(t.ID)
}

func (t Teacher) CanAssignQuizToClass(quiz *models.Quiz, classID uint) bool {
	return quiz.CreatedByTeacher(t.ID) && t.assignedTo(classID)
}

func (t Teacher) CanUnassignQuizFromClass(quiz *models.Quiz, classID uint) bool {
	return quiz.CreatedByTeacher(t.ID) && t.assignedTo(classID)
}

func (t Teacher) CanViewQuiz(quiz *models.Quiz) bool {
	return quiz.IsPublic || quiz.AssignedToAny(t.ClassIDs) || quiz.CreatedByTeacher(t.ID)
}

func (t Teacher) CanViewQuizQuestions(quiz *models.Quiz, _ time.Time) bool {
	return t.CanViewQuiz(quiz)
}

func (t Teacher) assignedTo(classID uint) bool {
	for _, id := range t.ClassIDs {
		if id == classID {
			return true
		}
	}
	return false
}

// Student decisions: students never touch authored content; they only view
// quizzes reachable by grade-scoped publication or class assignment. Either
// condition grants access on its own.
type Student struct {
	ID         uint
	GradeLevel int
	ClassIDs   []uint
}

func (Student) Role() models.Role { return models.RoleStudent }

func (Student) CanUpdateAnswer(*models.QuestionAnswer) bool      { return false }
func (Student) CanDeleteAnswer(*models.QuestionAnswer) bool      { return false }
func (Student) CanCreateAnswer(*models.Question) bool            { return false }
func (Student) CanUpdateQuestion(*models.Question) bool          { return false }
func (Student) CanUpdateQuiz(*models.Quiz) bool                  { return false }
func (Student) CanAssignQuizToClass(*models.Quiz, uint) bool     { return false }
func (Student) CanUnassignQuizFromClass(*models.Quiz, uint) bool { return false }

func (s Student) CanViewQuiz(quiz *models.Quiz) bool {
	if quiz.IsPublic && quiz.GradeLevel == s.GradeLevel {
		return true
	}
	return quiz.AssignedToAny(s.ClassIDs)
}

// CanViewQuizQuestions additionally gates students on the quiz deadline.
func (s Student) CanViewQuizQuestions(quiz *models.Quiz, now time.Time) bool {
	return s.CanViewQuiz(quiz) && !quiz.Ended(now)
}
