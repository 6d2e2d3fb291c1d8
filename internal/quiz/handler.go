package quiz

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

func (h *Handler) CreateQuiz(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var input QuizInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		apperror.Write(w, apperror.BadRequest("Invalid request body"))
		return
	}
	quiz, err := h.service.CreateQuiz(user, input)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Quiz created successfully",
		"quiz":    quiz,
	})
}

func (h *Handler) ListQuizzes(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	filter := Filter(r.URL.Query().Get("filter"))
	quizzes, err := h.service.ListQuizzes(user, filter)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, quizzes)
}

func (h *Handler) ListPublicQuizzes(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	quizzes, err := h.service.ListPublicQuizzes(user)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Public quizzes retrieved successfully",
		"quizzes": quizzes,
	})
}

func (h *Handler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	quizID, err := pathID(r, "quizId")
	if err != nil {
		apperror.Write(w, err)
		return
	}
	quiz, err := h.service.GetQuiz(user, quizID)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, quiz)
}

func (h *Handler) UpdateQuiz(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	quizID, err := pathID(r, "quizId")
	if err != nil {
		apperror.Write(w, err)
		return
	}
	var update QuizUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		apperror.Write(w, apperror.BadRequest("Invalid request body"))
		return
	}
	quiz, err := h.service.UpdateQuiz(user, quizID, update)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, quiz)
}

func (h *Handler) DeleteQuiz(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	quizID, err := pathID(r, "quizId")
	if err != nil {
		apperror.Write(w, err)
		return
	}
	if err := h.service.DeleteQuiz(user, quizID); err != nil {
		apperror.Write(w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, map[string]string{"message": "Quiz deleted successfully"})
}

func (h *Handler) AssignQuizToClass(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	quizID, err := pathID(r, "quizId")
	if err != nil {
		apperror.Write(w, err)
		return
	}
	classID, err := pathID(r, "classId")
	if err != nil {
		apperror.Write(w, err)
		return
	}
	quiz, err := h.service.AssignQuizToClass(user, quizID, classID)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Quiz assigned to class successfully",
		"quiz":    quiz,
	})
}

func (h *Handler) UnassignQuizFromClass(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	quizID, err := pathID(r, "quizId")
	if err != nil {
		apperror.Write(w, err)
		return
	}
	classID, err := pathID(r, "classId")
	if err != nil {
		apperror.Write(w, err)
		return
	}
	quiz, err := h.service.UnassignQuizFromClass(user, quizID, classID)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Quiz unassigned from class successfully",
		"quiz":    quiz,
	})
}

func (h *Handler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	quizID, err := pathID(r, "quizId")
	if err != nil {
		apperror.Write(w, err)
		return
	}
	var input QuestionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		apperror.Write(w, apperror.BadRequest("Invalid request body"))
		return
	}
	question, err := h.service.CreateQuestion(user, quizID, input)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusCreated, question)
}

func (h *Handler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	questionID, err := pathID(r, "questionId")
	if err != nil {
		apperror.Write(w, err)
		return
	}
	var input QuestionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		apperror.Write(w, apperror.BadRequest("Invalid request body"))
		return
	}
	question, err := h.service.UpdateQuestion(user, questionID, input)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, question)
}

func (h *Handler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	questionID, err := pathID(r, "questionId")
	if err != nil {
		apperror.Write(w, err)
		return
	}
	if err := h.service.DeleteQuestion(user, questionID); err != nil {
		apperror.Write(w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, map[string]string{"message": "Question deleted successfully"})
}

func (h *Handler) CreateAnswer(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	questionID, err := pathID(r, "questionId")
	if err != nil {
		apperror.Write(w, err)
		return
	}
	var input AnswerInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		apperror.Write(w, apperror.BadRequest("Invalid request body"))
		return
	}
	answer, err := h.service.CreateAnswer(user, questionID, input)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusCreated, answer)
}

func (h *Handler) UpdateAnswer(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	answerID, err := pathID(r, "answerId")
	if err != nil {
		apperror.Write(w, err)
		return
	}
	var input AnswerInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		apperror.Write(w, apperror.BadRequest("Invalid request body"))
		return
	}
	answer, err := h.service.UpdateAnswer(user, answerID, input)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, answer)
}

func (h *Handler) DeleteAnswer(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	answerID, err := pathID(r, "answerId")
	if err != nil {
		apperror.Write(w, err)
		return
	}
	if err := h.service.DeleteAnswer(user, answerID); err != nil {
		apperror.Write(w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, map[string]string{"message": "Answer deleted successfully"})
}

func (h *Handler) ListQuizQuestions(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	quizID, err := pathID(r, "quizId")
	if err != nil {
		apperror.Write(w, err)
		return
	}
	questions, err := h.service.ListQuizQuestions(user, quizID)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Questions retrieved successfully",
		"questions": questions,
	})
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
