package auth

import (
	"encoding/json"
	"net/http"
	"strconv"

	"classquiz/internal/apperror"
	"classquiz/internal/models"

	"github.com/gorilla/mux"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type statusRequest struct {
	Status         string `json:"status"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	GradeLevel     int    `json:"grade_level"`
	Specialization string `json:"specialization"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperror.Write(w, apperror.BadRequest("Invalid request body"))
		return
	}
	if req.Email == "" || req.Password == "" {
		apperror.Write(w, apperror.BadRequest("Email and password are required"))
		return
	}

	user, err := h.service.Register(req.Email, req.Password, models.Role(req.Role))
	if err != nil {
		apperror.Write(w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusCreated, user)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperror.Write(w, apperror.BadRequest("Invalid request body"))
		return
	}

	token, err := h.service.Login(req.Email, req.Password)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *Handler) ListPendingUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListPendingUsers()
	if err != nil {
		apperror.Write(w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, users)
}

func (h *Handler) UpdateUserStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDVar(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperror.Write(w, apperror.BadRequest("Invalid request body"))
		return
	}
	if req.Status == "" {
		apperror.Write(w, apperror.BadRequest("Status is required"))
		return
	}

	user, err := h.service.UpdateStatus(userID, models.UserStatus(req.Status), ActivateInput{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		GradeLevel:     req.GradeLevel,
		Specialization: req.Specialization,
	})
	if err != nil {
		apperror.Write(w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "User status updated",
		"user":    user,
	})
}

func (h *Handler) ResetUserStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDVar(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}

	user, err := h.service.ResetStatus(userID)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "User status reset",
		"user":    user,
	})
}

func userIDVar(r *http.Request) (uint, error) {
	raw := mux.Vars(r)["userId"]
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, apperror.BadRequest("Invalid userId")
	}
	return uint(id), nil
}
