package auth

import (
	"errors"
	"log"
	"time"

	"classquiz/internal/apperror"
	"classquiz/internal/models"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Service struct {
	repo      *Repository
	jwtSecret []byte
}

func NewService(repo *Repository, jwtSecret string) *Service {
	return &Service{
		repo:      repo,
		jwtSecret: []byte(jwtSecret),
	}
}

// Register creates a PENDING user. The role profile is only created later,
// when an admin activates the account.
func (s *Service) Register(email, password string, role models.Role) (*models.User, error) {
	switch role {
	case models.RoleAdmin, models.RoleTeacher, models.RoleStudent:
	default:
		return nil, apperror.InvalidRole("Unrecognized user role")
	}

	if _, err := s.repo.GetUserByEmail(email); err == nil {
		return nil, apperror.BadRequest("A user with this email already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal("Registration failed")
	}

	user := &models.User{
		Email:    email,
		Password: string(hashed),
		Role:     role,
		Status:   models.StatusPending,
	}
	if err := s.repo.CreateUser(user); err != nil {
		log.Printf("Error creating user: %v", err)
		return nil, apperror.Internal("Registration failed")
	}
	return user, nil
}

func (s *Service) Login(email, password string) (string, error) {
	user, err := s.repo.GetUserByEmail(email)
	if err != nil {
		return "", apperror.Unauthorized("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", apperror.Unauthorized("Invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"role":    string(user.Role),
		"exp":     time.Now().Add(time.Hour * 24).Unix(),
	})
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", apperror.Internal("Login failed")
	}
	return tokenString, nil
}

// ActivateInput carries the profile fields required when a user status
// moves to ACTIVE.
type ActivateInput struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	GradeLevel     int    `json:"grade_level"`
	Specialization string `json:"specialization"`
}

// UpdateStatus flips a user's status. Transitioning to ACTIVE creates the
// profile matching the user's role; no profile exists before that.
func (s *Service) UpdateStatus(userID uint, status models.UserStatus, input ActivateInput) (*models.User, error) {
	user, err := s.repo.GetUserByID(userID)
	if err != nil {
		return nil, apperror.FromStorage(err, "User not found")
	}

	if status != models.StatusActive && status != models.StatusPending {
		return nil, apperror.BadRequest("Unrecognized user status")
	}

	if status == models.StatusActive && user.Status != models.StatusActive {
		if err := s.createProfile(user, input); err != nil {
			return nil, err
		}
	}

	user.Status = status
	if err := s.repo.UpdateUser(user); err != nil {
		return nil, apperror.Internal("User status not updated")
	}
	return user, nil
}

func (s *Service) createProfile(user *models.User, input ActivateInput) error {
	switch user.Role {
	case models.RoleAdmin:
		return wrapProfileErr(s.repo.CreateAdmin(&models.Admin{
			UserID:    user.ID,
			FirstName: input.FirstName,
			LastName:  input.LastName,
		}))
	case models.RoleTeacher:
		return wrapProfileErr(s.repo.CreateTeacher(&models.Teacher{
			UserID:         user.ID,
			FirstName:      input.FirstName,
			LastName:       input.LastName,
			Specialization: input.Specialization,
		}))
	case models.RoleStudent:
		if input.GradeLevel <= 0 {
			return apperror.BadRequest("Grade level is required for students")
		}
		return wrapProfileErr(s.repo.CreateStudent(&models.Student{
			UserID:     user.ID,
			FirstName:  input.FirstName,
			LastName:   input.LastName,
			GradeLevel: input.GradeLevel,
		}))
	}
	return apperror.InvalidRole("Unrecognized user role")
}

func wrapProfileErr(err error) error {
	if err != nil {
		log.Printf("Error creating profile: %v", err)
		return apperror.Internal("Profile not created")
	}
	return nil
}

// ResetStatus moves a user back to PENDING and drops its profile.
func (s *Service) ResetStatus(userID uint) (*models.User, error) {
	user, err := s.repo.GetUserByID(userID)
	if err != nil {
		return nil, apperror.FromStorage(err, "User not found")
	}
	if user.Status == models.StatusPending {
		return user, nil
	}

	if err := s.repo.DeleteProfile(user); err != nil {
		return nil, apperror.Internal("Profile not removed")
	}
	user.Admin, user.Teacher, user.Student = nil, nil, nil
	user.Status = models.StatusPending
	if err := s.repo.UpdateUser(user); err != nil {
		return nil, apperror.Internal("User status not updated")
	}
	return user, nil
}

func (s *Service) ListPendingUsers() ([]models.User, error) {
	users, err := s.repo.ListUsersByStatus(models.StatusPending)
	if err != nil {
		return nil, apperror.Internal("Users not retrieved")
	}
	return users, nil
}

// UserByID resolves a token subject into a full user snapshot.
func (s *Service) UserByID(userID uint) (*models.User, error) {
	user, err := s.repo.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Unauthorized("Invalid token")
		}
		return nil, apperror.Internal("Something went wrong")
	}
	return user, nil
}
