package class

import (
	"classquiz/internal/apperror"
	"classquiz/internal/models"
	"classquiz/internal/policy"
)

// Store is the storage port for class management.
type Store interface {
	GetClass(classID uint) (*models.Class, error)
	CreateClass(class *models.Class) error
	DeleteClass(classID uint) error
	ListClassesByAdmin(adminID uint) ([]models.Class, error)
	GetTeacher(teacherID uint) (*models.Teacher, error)
	GetStudent(studentID uint) (*models.Student, error)
	AddTeacher(class *models.Class, teacher *models.Teacher) error
	RemoveTeacher(class *models.Class, teacher *models.Teacher) error
	AddStudent(class *models.Class, student *models.Student) error
	RemoveStudent(class *models.Class, student *models.Student) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

type ClassInput struct {
	Name       string `json:"name"`
	GradeLevel int    `json:"grade_level"`
}

// CreateClass creates a class owned by the acting admin.
func (s *Service) CreateClass(user *models.User, input ClassInput) (*models.Class, error) {
	actor, err := policy.ActorFor(user)
	if err != nil {
		return nil, err
	}
	admin, ok := actor.(policy.Admin)
	if !ok {
		return nil, apperror.Forbidden("You are not authorized to create a class")
	}
	if input.Name == "" {
		return nil, apperror.BadRequest("Class name is required")
	}

	class := &models.Class{
		Name:       input.Name,
		GradeLevel: input.GradeLevel,
		AdminID:    admin.ID,
	}
	if err := s.store.CreateClass(class); err != nil {
		return nil, apperror.Internal("Class not created")
	}
	return class, nil
}

// GetClass is visible to admins and to teachers/students enrolled in it.
func (s *Service) GetClass(user *models.User, classID uint) (*models.Class, error) {
	actor, err := policy.ActorFor(user)
	if err != nil {
		return nil, err
	}
	class, err := s.store.GetClass(classID)
	if err != nil {
		return nil, apperror.FromStorage(err, "Class not found")
	}

	switch a := actor.(type) {
	case policy.Admin:
		return class, nil
	case policy.Teacher:
		for _, t := range class.Teachers {
			if t.ID == a.ID {
				return class, nil
			}
		}
	case policy.Student:
		for _, st := range class.Students {
			if st.ID == a.ID {
				return class, nil
			}
		}
	}
	return nil, apperror.Forbidden("You are not enrolled in this class.")
}

func (s *Service) ListClasses(user *models.User) ([]models.Class, error) {
	actor, err := policy.ActorFor(user)
	if err != nil {
		return nil, err
	}
	admin, ok := actor.(policy.Admin)
	if !ok {
		return nil, apperror.Forbidden("You are not authorized")
	}
	classes, err := s.store.ListClassesByAdmin(admin.ID)
	if err != nil {
		return nil, apperror.Internal("Classes not retrieved")
	}
	return classes, nil
}

func (s *Service) DeleteClass(user *models.User, classID uint) error {
	actor, err := policy.ActorFor(user)
	if err != nil {
		return err
	}
	if _, ok := actor.(policy.Admin); !ok {
		return apperror.Forbidden("You are not authorized")
	}
	if err := s.store.DeleteClass(classID); err != nil {
		return apperror.FromStorage(err, "Class not found")
	}
	return nil
}

// AssignTeacher enrolls a teacher into a class. Admin only.
func (s *Service) AssignTeacher(user *models.User, classID, teacherID uint) error {
	class, err := s.adminClass(user, classID)
	if err != nil {
		return err
	}
	teacher, err := s.store.GetTeacher(teacherID)
	if err != nil {
		return apperror.FromStorage(err, "Teacher not found")
	}
	if err := s.store.AddTeacher(class, teacher); err != nil {
		return apperror.Internal("Teacher not assigned to class")
	}
	return nil
}

func (s *Service) UnassignTeacher(user *models.User, classID, teacherID uint) error {
	class, err := s.adminClass(user, classID)
	if err != nil {
		return err
	}
	teacher, err := s.store.GetTeacher(teacherID)
	if err != nil {
		return apperror.FromStorage(err, "Teacher not found")
	}
	if err := s.store.RemoveTeacher(class, teacher); err != nil {
		return apperror.Internal("Teacher not unassigned from class")
	}
	return nil
}

// AssignStudent enrolls a student into a class. Admin only.
func (s *Service) AssignStudent(user *models.User, classID, studentID uint) error {
	class, err := s.adminClass(user, classID)
	if err != nil {
		return err
	}
	student, err := s.store.GetStudent(studentID)
	if err != nil {
		return apperror.FromStorage(err, "Student not found")
	}
	if err := s.store.AddStudent(class, student); err != nil {
		return apperror.Internal("Student not assigned to class")
	}
	return nil
}

func (s *Service) UnassignStudent(user *models.User, classID, studentID uint) error {
	class, err := s.adminClass(user, classID)
	if err != nil {
		return err
	}
	student, err := s.store.GetStudent(studentID)
	if err != nil {
		return apperror.FromStorage(err, "Student not found")
	}
	if err := s.store.RemoveStudent(class, student); err != nil {
		return apperror.Internal("Student not unassigned from class")
	}
	return nil
}

func (s *Service) adminClass(user *models.User, classID uint) (*models.Class, error) {
	actor, err := policy.ActorFor(user)
	if err != nil {
		return nil, err
	}
	if _, ok := actor.(policy.Admin); !ok {
		return nil, apperror.Forbidden("You are not authorized")
	}
	class, err := s.store.GetClass(classID)
	if err != nil {
		return nil, apperror.FromStorage(err, "Class not found")
	}
	return class, nil
}
