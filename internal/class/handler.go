package class

import (
	"encoding/json"
	"net/http"
	"strconv"

	"classquiz/internal/apperror"
	"classquiz/internal/auth"
	"classquiz/internal/models"

	"github.com/gorilla/mux"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) CreateClass(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var input ClassInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		apperror.Write(w, apperror.BadRequest("Invalid request body"))
		return
	}
	class, err := h.service.CreateClass(user, input)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusCreated, class)
}

func (h *Handler) GetClass(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	classID, err := pathID(r, "classId")
	if err != nil {
		apperror.Write(w, err)
		return
	}
	class, err := h.service.GetClass(user, classID)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, class)
}

func (h *Handler) ListClasses(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	classes, err := h.service.ListClasses(user)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, classes)
}

func (h *Handler) DeleteClass(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	classID, err := pathID(r, "classId")
	if err != nil {
		apperror.Write(w, err)
		return
	}
	if err := h.service.DeleteClass(user, classID); err != nil {
		apperror.Write(w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, map[string]string{"message": "Class deleted successfully"})
}

func (h *Handler) AssignTeacher(w http.ResponseWriter, r *http.Request) {
	h.membership(w, r, "teacherId", h.service.AssignTeacher, "Teacher assigned to class")
}

func (h *Handler) UnassignTeacher(w http.ResponseWriter, r *http.Request) {
	h.membership(w, r, "teacherId", h.service.UnassignTeacher, "Teacher unassigned from class")
}

func (h *Handler) AssignStudent(w http.ResponseWriter, r *http.Request) {
	h.membership(w, r, "studentId", h.service.AssignStudent, "Student assigned to class")
}

func (h *Handler) UnassignStudent(w http.ResponseWriter, r *http.Request) {
	h.membership(w, r, "studentId", h.service.UnassignStudent, "Student unassigned from class")
}

func (h *Handler) membership(w http.ResponseWriter, r *http.Request, memberVar string, op func(*models.User, uint, uint) error, msg string) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	classID, err := pathID(r, "classId")
	if err != nil {
		apperror.Write(w, err)
		return
	}
	memberID, err := pathID(r, memberVar)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	if err := op(user, classID, memberID); err != nil {
		apperror.Write(w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, map[string]string{"message": msg})
}

func requireUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		apperror.Write(w, apperror.Unauthorized("Authentication required"))
		return nil, false
	}
	return user, true
}

func pathID(r *http.Request, name string) (uint, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, apperror.BadRequest("Invalid " + name)
	}
	return uint(id), nil
}
