package auth

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

func (r *Repository) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByID loads the user with whichever profile matches its role,
// including class assignments, so policy actors can be built from the
// snapshot without further queries.
func (r *Repository) GetUserByID(userID uint) (*models.User, error) {
	var user models.User
	err := r.db.
		Preload("Admin").
		Preload("Teacher.AssignedClasses").
		Preload("Student.AssignedClasses").
		First(&user, userID).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) CreateUser(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *Repository) UpdateUser(user *models.User) error {
	return r.db.Save(user).Error
}

func (r *Repository) ListUsersByStatus(status models.UserStatus) ([]models.User, error) {
	var users []models.User
	err := r.db.Where("status = ?", status).Find(&users).Error
	return users, err
}

func (r *Repository) CreateAdmin(admin *models.Admin) error {
	return r.db.Create(admin).Error
}

func (r *Repository) CreateTeacher(teacher *models.Teacher) error {
	return r.db.Create(teacher).Error
}

func (r *Repository) CreateStudent(student *models.Student) error {
	return r.db.Create(student).Error
}

// DeleteProfile removes whichever profile row is attached to the user.
func (r *Repository) DeleteProfile(user *models.User) error {
	switch {
	case user.Admin != nil:
		return r.db.Delete(user.Admin).Error
	case user.Teacher != nil:
		return r.db.Delete(user.Teacher).Error
	case user.Student != nil:
		return r.db.Delete(user.Student).Error
	}
	return nil
}
