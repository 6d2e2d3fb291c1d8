package class

import (
	"testing"

	"classquiz/internal/apperror"
	"classquiz/internal/models"

	"gorm.io/gorm"
)

type fakeStore struct {
	classes  map[uint]*models.Class
	teachers map[uint]*models.Teacher
	students map[uint]*models.Student
	nextID   uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		classes:  make(map[uint]*models.Class),
		teachers: make(map[uint]*models.Teacher),
		students: make(map[uint]*models.Student),
	}
}

func (f *fakeStore) GetClass(classID uint) (*models.Class, error) {
	class, ok := f.classes[classID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return class, nil
}

func (f *fakeStore) CreateClass(class *models.Class) error {
	f.nextID++
	class.ID = f.nextID
	f.classes[class.ID] = class
	return nil
}

func (f *fakeStore) DeleteClass(classID uint) error {
	if _, ok := f.classes[classID]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.classes, classID)
	return nil
}

func (f *fakeStore) ListClassesByAdmin(adminID uint) ([]models.Class, error) {
	var out []models.Class
	for _, c := range f.classes {
		if c.AdminID == adminID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeStore) GetTeacher(teacherID uint) (*models.Teacher, error) {
	teacher, ok := f.teachers[teacherID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return teacher, nil
}

func (f *fakeStore) GetStudent(studentID uint) (*models.Student, error) {
	student, ok := f.students[studentID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return student, nil
}

func (f *fakeStore) AddTeacher(class *models.Class, teacher *models.Teacher) error {
	class.Teachers = append(class.Teachers, *teacher)
	return nil
}

func (f *fakeStore) RemoveTeacher(class *models.Class, teacher *models.Teacher) error {
	kept := class.Teachers[:0]
	for _, t := range class.Teachers {
		if t.ID != teacher.ID {
			kept = append(kept, t)
		}
	}
	class.Teachers = kept
	return nil
}

func (f *fakeStore) AddStudent(class *models.Class, student *models.Student) error {
	class.Students = append(class.Students, *student)
	return nil
}

func (f *fakeStore) RemoveStudent(class *models.Class, student *models.Student) error {
	kept := class.Students[:0]
	for _, s := range class.Students {
		if s.ID != student.ID {
			kept = append(kept, s)
		}
	}
	class.Students = kept
	return nil
}

func adminUser(id uint) *models.User {
	return &models.User{ID: id, Role: models.RoleAdmin, Admin: &models.Admin{ID: id}}
}

func teacherUser(id uint) *models.User {
	return &models.User{ID: id, Role: models.RoleTeacher, Teacher: &models.Teacher{ID: id}}
}

func studentUser(id uint) *models.User {
	return &models.User{ID: id, Role: models.RoleStudent, Student: &models.Student{ID: id}}
}

func TestCreateClassAdminOnly(t *testing.T) {
	svc := NewService(newFakeStore())

	class, err := svc.CreateClass(adminUser(1), ClassInput{Name: "8B", GradeLevel: 8})
	if err != nil {
		t.Fatalf("CreateClass: %v", err)
	}
	if class.AdminID != 1 || class.Name != "8B" {
		t.Errorf("class = %+v", class)
	}

	if _, err := svc.CreateClass(teacherUser(7), ClassInput{Name: "8C"}); !apperror.IsForbidden(err) {
		t.Errorf("teacher error = %v, want forbidden", err)
	}
	if _, err := svc.CreateClass(adminUser(1), ClassInput{}); !apperror.IsBadRequest(err) {
		t.Errorf("empty name error = %v, want bad request", err)
	}
}

func TestGetClassEnrollmentGate(t *testing.T) {
	store := newFakeStore()
	store.classes[1] = &models.Class{
		ID:       1,
		AdminID:  1,
		Teachers: []models.Teacher{{ID: 7}},
		Students: []models.Student{{ID: 5}},
	}
	svc := NewService(store)

	if _, err := svc.GetClass(adminUser(2), 1); err != nil {
		t.Errorf("admin GetClass: %v", err)
	}
	if _, err := svc.GetClass(teacherUser(7), 1); err != nil {
		t.Errorf("enrolled teacher GetClass: %v", err)
	}
	if _, err := svc.GetClass(studentUser(5), 1); err != nil {
		t.Errorf("enrolled student GetClass: %v", err)
	}
	if _, err := svc.GetClass(teacherUser(8), 1); !apperror.IsForbidden(err) {
		t.Errorf("outside teacher error = %v, want forbidden", err)
	}
	if _, err := svc.GetClass(studentUser(6), 1); !apperror.IsForbidden(err) {
		t.Errorf("outside student error = %v, want forbidden", err)
	}
}

func TestMembershipManagement(t *testing.T) {
	store := newFakeStore()
	store.classes[1] = &models.Class{ID: 1, AdminID: 1}
	store.teachers[7] = &models.Teacher{ID: 7}
	store.students[5] = &models.Student{ID: 5}
	svc := NewService(store)
	admin := adminUser(1)

	if err := svc.AssignTeacher(admin, 1, 7); err != nil {
		t.Fatalf("AssignTeacher: %v", err)
	}
	if err := svc.AssignStudent(admin, 1, 5); err != nil {
		t.Fatalf("AssignStudent: %v", err)
	}
	class := store.classes[1]
	if len(class.Teachers) != 1 || len(class.Students) != 1 {
		t.Fatalf("class membership = %+v", class)
	}

	if err := svc.AssignTeacher(admin, 1, 99); !apperror.IsNotFound(err) {
		t.Errorf("unknown teacher error = %v, want not found", err)
	}
	if err := svc.AssignTeacher(teacherUser(7), 1, 7); !apperror.IsForbidden(err) {
		t.Errorf("non-admin error = %v, want forbidden", err)
	}

	if err := svc.UnassignTeacher(admin, 1, 7); err != nil {
		t.Fatalf("UnassignTeacher: %v", err)
	}
	if err := svc.UnassignStudent(admin, 1, 5); err != nil {
		t.Fatalf("UnassignStudent: %v", err)
	}
	if len(class.Teachers) != 0 || len(class.Students) != 0 {
		t.Errorf("class membership after removal = %+v", class)
	}
}

func TestListAndDeleteClasses(t *testing.T) {
	store := newFakeStore()
	store.classes[1] = &models.Class{ID: 1, AdminID: 1}
	store.classes[2] = &models.Class{ID: 2, AdminID: 2}
	svc := NewService(store)

	classes, err := svc.ListClasses(adminUser(1))
	if err != nil {
		t.Fatalf("ListClasses: %v", err)
	}
	if len(classes) != 1 || classes[0].ID != 1 {
		t.Errorf("classes = %+v, want only class 1", classes)
	}

	if _, err := svc.ListClasses(studentUser(5)); !apperror.IsForbidden(err) {
		t.Errorf("student error = %v, want forbidden", err)
	}

	if err := svc.DeleteClass(adminUser(1), 1); err != nil {
		t.Fatalf("DeleteClass: %v", err)
	}
	if err := svc.DeleteClass(adminUser(1), 1); !apperror.IsNotFound(err) {
		t.Errorf("second delete error = %v, want not found", err)
	}
}
