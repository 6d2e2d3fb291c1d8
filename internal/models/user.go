package models

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleTeacher Role = "TEACHER"
	RoleStudent Role = "STUDENT"
)

type UserStatus string

const (
	StatusPending UserStatus = "PENDING"
	StatusActive  UserStatus = "ACTIVE"
)

// User carries credentials, role and activation status. The matching
// profile row (Admin/Teacher/Student) exists only while Status is ACTIVE.
type User struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`
	Email     string         `json:"email" gorm:"uniqueIndex;not null"`
	Password  string         `json:"-" gorm:"not null"`
	Role      Role           `json:"role" gorm:"not null"`
	Status    UserStatus     `json:"status" gorm:"not null;default:PENDING"`

	Admin   *Admin   `json:"admin,omitempty" gorm:"foreignKey:UserID"`
	Teacher *Teacher `json:"teacher,omitempty" gorm:"foreignKey:UserID"`
	Student *Student `json:"student,omitempty" gorm:"foreignKey:UserID"`
}

type Admin struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`
	UserID    uint           `json:"user_id" gorm:"uniqueIndex"`
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
}

type Teacher struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"deleted_at" gorm:"index"`
	UserID         uint           `json:"user_id" gorm:"uniqueIndex"`
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name"`
	Specialization string         `json:"specialization"`

	AssignedClasses []Class `json:"assigned_classes,omitempty" gorm:"many2many:teacher_classes"`
}

type Student struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"deleted_at" gorm:"index"`
	UserID     uint           `json:"user_id" gorm:"uniqueIndex"`
	FirstName  string         `json:"first_name"`
	LastName   string         `json:"last_name"`
	GradeLevel int            `json:"grade_level"`

	AssignedClasses []Class `json:"assigned_classes,omitempty" gorm:"many2many:student_classes"`
}

// Class is owned by the admin who created it; teachers and students are
// attached through join tables.
type Class struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"deleted_at" gorm:"index"`
	Name       string         `json:"name" gorm:"not null"`
	GradeLevel int            `json:"grade_level"`
	AdminID    uint           `json:"admin_id"`

	Teachers []Teacher `json:"teachers,omitempty" gorm:"many2many:teacher_classes"`
	Students []Student `json:"students,omitempty" gorm:"many2many:student_classes"`
}
