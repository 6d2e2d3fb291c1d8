package class

import (
	"classquiz/internal/models"

	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetClass(classID uint) (*models.Class, error) {
	var class models.Class
	err := r.db.Preload("Teachers").Preload("Students").First(&class, classID).Error
	if err != nil {
		return nil, err
	}
	return &class, nil
}

func (r *Repository) CreateClass(class *models.Class) error {
	return r.db.Create(class).Error
}

func (r *Repository) DeleteClass(classID uint) error {
	result := r.db.Delete(&models.Class{}, classID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) ListClassesByAdmin(adminID uint) ([]models.Class, error) {
	var classes []models.Class
	err := r.db.Where("admin_id = ?", adminID).Find(&classes).Error
	return classes, err
}

func (r *Repository) GetTeacher(teacherID uint) (*models.Teacher, error) {
	var teacher models.Teacher
	if err := r.db.First(&teacher, teacherID).Error; err != nil {
		return nil, err
	}
	return &teacher, nil
}

func (r *Repository) GetStudent(studentID uint) (*models.Student, error) {
	var student models.Student
	if err := r.db.First(&student, studentID).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *Repository) AddTeacher(class *models.Class, teacher *models.Teacher) error {
	return r.db.Model(class).Association("Teachers").Append(teacher)
}

func (r *Repository) RemoveTeacher(class *models.Class, teacher *models.Teacher) error {
	return r.db.Model(class).Association("Teachers").Delete(teacher)
}

func (r *Repository) AddStudent(class *models.Class, student *models.Student) error {
	return r.db.Model(class).Association("Students").Append(student)
}

func (r *Repository) RemoveStudent(class *models.Class, student *models.Student) error {
	return r.db.Model(class).Association("Students").Delete(student)
}
