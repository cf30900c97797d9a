package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"classquiz/internal/app"
	"classquiz/internal/domain"
)

// QuizHandler exposes the quiz REST surface.
type QuizHandler struct {
	service    *app.QuizService
	dispatcher *app.Dispatcher
	validate   *validator.Validate
	log        *logrus.Logger
}

func NewQuizHandler(service *app.QuizService, dispatcher *app.Dispatcher, log *logrus.Logger) *QuizHandler {
	return &QuizHandler{
		service:    service,
		dispatcher: dispatcher,
		validate:   validator.New(),
		log:        log,
	}
}

type optionPayload struct {
	Text      string `json:"text" validate:"required"`
	IsCorrect bool   `json:"isCorrect"`
}

type questionPayload struct {
	QuestionText string          `json:"questionText" validate:"required"`
	Options      []optionPayload `json:"options" validate:"required,min=2,dive"`
	Explanation  string          `json:"explanation"`
	Points       int             `json:"points" validate:"omitempty,min=1"`
}

type createQuizRequest struct {
	Title            string            `json:"title" validate:"required"`
	Description      string            `json:"description"`
	Subject          string            `json:"subject" validate:"required"`
	Class            string            `json:"class" validate:"required"`
	TimeLimitMinutes *int              `json:"timeLimitMinutes" validate:"omitempty,min=1"`
	Difficulty       string            `json:"difficulty" validate:"omitempty,oneof=Easy Medium Hard"`
	Questions        []questionPayload `json:"questions" validate:"required,min=1,dive"`
	IsLive           bool              `json:"isLive"`
}

type updateQuizRequest struct {
	Title            *string           `json:"title"`
	Description      *string           `json:"description"`
	Subject          *string           `json:"subject"`
	Class            *string           `json:"class"`
	TimeLimitMinutes *int              `json:"timeLimitMinutes"`
	Difficulty       *string           `json:"difficulty" validate:"omitempty,oneof=Easy Medium Hard"`
	Questions        []questionPayload `json:"questions" validate:"omitempty,min=1,dive"`
}

type toggleLiveRequest struct {
	IsLive bool `json:"isLive"`
}

type submitRequest struct {
	Answers []answerPayload `json:"answers"`
}

type answerPayload struct {
	QuestionIndex       int  `json:"questionIndex"`
	SelectedOptionIndex *int `json:"selectedOptionIndex"`
}

type quizSummary struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Subject          string    `json:"subject"`
	Class            string    `json:"class"`
	TimeLimitMinutes *int      `json:"timeLimitMinutes,omitempty"`
	Difficulty       string    `json:"difficulty"`
	IsLive           bool      `json:"isLive"`
	CreatedBy        string    `json:"createdBy"`
	CreatedAt        time.Time `json:"createdAt"`
}

type optionView struct {
	Text string `json:"text"`
	// Omitted entirely for students so correct answers never leak.
	IsCorrect *bool `json:"isCorrect,omitempty"`
}

type questionView struct {
	QuestionText string       `json:"questionText"`
	Options      []optionView `json:"options"`
	Explanation  string       `json:"explanation"`
	Points       int          `json:"points"`
}

type quizDetail struct {
	quizSummary
	Questions []questionView `json:"questions"`
}

type scoreResponse struct {
	Message    string                  `json:"message"`
	Score      int                     `json:"score"`
	MaxScore   int                     `json:"maxScore"`
	Percentage float64                 `json:"percentage"`
	Results    []domain.QuestionResult `json:"results"`
}

type leaderboardEntry struct {
	Rank         int       `json:"rank"`
	StudentName  string    `json:"studentName"`
	StudentClass string    `json:"studentClass"`
	Score        int       `json:"score"`
	MaxScore     int       `json:"maxScore"`
	Percentage   float64   `json:"percentage"`
	SubmittedAt  time.Time `json:"submittedAt"`
}

func (h *QuizHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req createQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, kindValidation, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, kindValidation, err.Error())
		return
	}

	quiz, ev, err := h.service.CreateQuiz(r.Context(), principal, quizFromCreate(req))
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}
	h.dispatcher.Dispatch(ev)

	h.log.WithFields(logrus.Fields{"quiz_id": quiz.ID, "owner": principal.ID}).Info("quiz created")
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "quiz created successfully",
		"quiz":    summaryView(quiz),
	})
}

func (h *QuizHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	filter := app.QuizFilter{
		Subject:   r.URL.Query().Get("subject"),
		Class:     r.URL.Query().Get("class"),
		CreatedBy: r.URL.Query().Get("createdBy"),
	}
	if raw := r.URL.Query().Get("isLive"); raw != "" {
		live := raw == "true"
		filter.IsLive = &live
	}

	quizzes, err := h.service.ListQuizzes(r.Context(), principal, filter)
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	summaries := make([]quizSummary, 0, len(quizzes))
	for _, quiz := range quizzes {
		summaries = append(summaries, summaryView(quiz))
	}
	writeJSON(w, http.StatusOK, map[string]any{"quizzes": summaries})
}

func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	quiz, err := h.service.GetQuiz(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"quiz": detailView(quiz, principal.Role)})
}

func (h *QuizHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req updateQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, kindValidation, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, kindValidation, err.Error())
		return
	}

	changes := app.QuizChanges{
		Title:            req.Title,
		Description:      req.Description,
		Subject:          req.Subject,
		Class:            req.Class,
		TimeLimitMinutes: req.TimeLimitMinutes,
	}
	if req.Difficulty != nil {
		d := domain.Difficulty(*req.Difficulty)
		changes.Difficulty = &d
	}
	if req.Questions != nil {
		changes.Questions = questionsFromPayload(req.Questions)
	}

	quiz, err := h.service.UpdateQuiz(r.Context(), principal, chi.URLParam(r, "id"), changes)
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "quiz updated successfully",
		"quiz":    summaryView(quiz),
	})
}

func (h *QuizHandler) ToggleLive(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req toggleLiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, kindValidation, "invalid request body")
		return
	}

	quiz, ev, err := h.service.ToggleLive(r.Context(), principal, chi.URLParam(r, "id"), req.IsLive)
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}
	h.dispatcher.Dispatch(ev)

	status := "inactive"
	if quiz.IsLive {
		status = "live"
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "quiz set to " + status, "isLive": quiz.IsLive})
}

func (h *QuizHandler) Submit(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	quizID := chi.URLParam(r, "id")

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, kindValidation, "invalid request body")
		return
	}

	answers := make([]domain.Answer, 0, len(req.Answers))
	for _, a := range req.Answers {
		answers = append(answers, domain.Answer{QuestionIndex: a.QuestionIndex, SelectedOption: a.SelectedOptionIndex})
	}

	result, ev, err := h.service.Submit(r.Context(), principal, quizID, answers)
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}
	h.dispatcher.Dispatch(ev)

	h.log.WithFields(logrus.Fields{
		"quiz_id":    quizID,
		"student_id": principal.ID,
		"score":      result.TotalScore,
	}).Info("quiz submitted")
	writeJSON(w, http.StatusOK, scoreResponse{
		Message:    "quiz submitted successfully",
		Score:      result.TotalScore,
		MaxScore:   result.MaxScore,
		Percentage: app.RoundPercentage(result.Percentage),
		Results:    result.Results,
	})
}

func (h *QuizHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.Leaderboard(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	rows := make([]leaderboardEntry, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, leaderboardEntry{
			Rank:         e.Rank,
			StudentName:  e.StudentName,
			StudentClass: e.StudentClass,
			Score:        e.Score,
			MaxScore:     e.MaxScore,
			Percentage:   app.RoundPercentage(e.Percentage),
			SubmittedAt:  e.SubmittedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"leaderboard": rows})
}

func (h *QuizHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	quizID := chi.URLParam(r, "id")

	if err := h.service.DeleteQuiz(r.Context(), principal, quizID); err != nil {
		writeDomainError(w, h.log, err)
		return
	}
	h.log.WithFields(logrus.Fields{"quiz_id": quizID, "owner": principal.ID}).Info("quiz deleted")
	writeJSON(w, http.StatusOK, map[string]any{"message": "quiz deleted successfully"})
}

func quizFromCreate(req createQuizRequest) domain.Quiz {
	return domain.Quiz{
		Title:            req.Title,
		Description:      req.Description,
		Subject:          req.Subject,
		Class:            req.Class,
		TimeLimitMinutes: req.TimeLimitMinutes,
		Difficulty:       domain.Difficulty(req.Difficulty),
		Questions:        questionsFromPayload(req.Questions),
		IsLive:           req.IsLive,
	}
}

func questionsFromPayload(payload []questionPayload) []domain.Question {
	questions := make([]domain.Question, 0, len(payload))
	for _, q := range payload {
		opts := make([]domain.Option, 0, len(q.Options))
		for _, o := range q.Options {
			opts = append(opts, domain.Option{Text: o.Text, IsCorrect: o.IsCorrect})
		}
		points := q.Points
		if points == 0 {
			points = 1
		}
		questions = append(questions, domain.Question{
			Text:        q.QuestionText,
			Options:     opts,
			Explanation: q.Explanation,
			Points:      points,
		})
	}
	return questions
}

func summaryView(quiz domain.Quiz) quizSummary {
	return quizSummary{
		ID:               quiz.ID,
		Title:            quiz.Title,
		Description:      quiz.Description,
		Subject:          quiz.Subject,
		Class:            quiz.Class,
		TimeLimitMinutes: quiz.TimeLimitMinutes,
		Difficulty:       string(quiz.Difficulty),
		IsLive:           quiz.IsLive,
		CreatedBy:        quiz.CreatedBy,
		CreatedAt:        quiz.CreatedAt,
	}
}

// detailView renders a full quiz. Correct-answer flags are only included
// for teachers.
func detailView(quiz domain.Quiz, role domain.Role) quizDetail {
	questions := make([]questionView, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		opts := make([]optionView, 0, len(q.Options))
		for _, o := range q.Options {
			view := optionView{Text: o.Text}
			if role == domain.RoleTeacher {
				isCorrect := o.IsCorrect
				view.IsCorrect = &isCorrect
			}
			opts = append(opts, view)
		}
		points := q.Points
		if points == 0 {
			points = 1
		}
		questions = append(questions, questionView{
			QuestionText: q.Text,
			Options:      opts,
			Explanation:  q.Explanation,
			Points:       points,
		})
	}
	return quizDetail{quizSummary: summaryView(quiz), Questions: questions}
}
