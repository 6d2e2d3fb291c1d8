package attempt

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

type startRequest struct {
	QuizID uint `json:"quiz_id"`
}

type submitAnswerRequest struct {
	AttemptID        uint `json:"attempt_id"`
	QuestionID       uint `json:"question_id"`
	SelectedAnswerID uint `json:"selected_answer_id"`
}

type updateAnswerRequest struct {
	AnswerID         uint `json:"answer_id"`
	SelectedAnswerID uint `json:"selected_answer_id"`
}

type completeRequest struct {
	AttemptID    uint              `json:"attempt_id"`
	Answers      []SubmittedAnswer `json:"answers"`
	PassingScore int               `json:"passing_score"`
}

// Start opens an attempt for the calling student.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user.Role != models.RoleStudent || user.Student == nil {
		apperror.Write(w, apperror.Forbidden("Not authorized to view this quiz attempt."))
		return
	}

	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperror.Write(w, apperror.BadRequest("Invalid request body"))
		return
	}

	attempt, err := h.service.Start(user.Student.ID, req.QuizID)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusCreated, attempt)
}

func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req submitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperror.Write(w, apperror.BadRequest("Invalid request body"))
		return
	}

	ans, err := h.service.SubmitAnswer(req.AttemptID, req.QuestionID, req.SelectedAnswerID)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusCreated, ans)
}

func (h *Handler) UpdateAnswer(w http.ResponseWriter, r *http.Request) {
	var req updateAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperror.Write(w, apperror.BadRequest("Invalid request body"))
		return
	}

	ans, err := h.service.UpdateAnswer(req.AnswerID, req.SelectedAnswerID)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, ans)
}

func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperror.Write(w, apperror.BadRequest("Invalid request body"))
		return
	}

	result, err := h.service.Complete(req.AttemptID, req.Answers, req.PassingScore)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) ListForQuiz(w http.ResponseWriter, r *http.Request) {
	quizID, err := pathID(r, "quizId")
	if err != nil {
		apperror.Write(w, err)
		return
	}
	attempts, err := h.service.ListAttemptsForQuiz(quizID)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, attempts)
}

func (h *Handler) ListForStudent(w http.ResponseWriter, r *http.Request) {
	studentID, err := pathID(r, "studentId")
	if err != nil {
		apperror.Write(w, err)
		return
	}
	attempts, err := h.service.ListStudentAttempts(studentID)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, attempts)
}

func (h *Handler) ListAnswers(w http.ResponseWriter, r *http.Request) {
	attemptID, err := pathID(r, "attemptId")
	if err != nil {
		apperror.Write(w, err)
		return
	}
	answers, err := h.service.ListAnswersForAttempt(attemptID)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, answers)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	attemptID, err := pathID(r, "attemptId")
	if err != nil {
		apperror.Write(w, err)
		return
	}
	if err := h.service.Delete(attemptID); err != nil {
		apperror.Write(w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, map[string]string{"message": "Quiz attempt deleted"})
}

func pathID(r *http.Request, name string) (uint, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, apperror.BadRequest("Invalid " + name)
	}
	return uint(id), nil
}
