package domain

import "time"

// Role classifies a registered user.
type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Difficulty is a coarse quiz rating chosen by the author.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// User is a registered principal. Class is set for students only.
type User struct {
	ID        string    `json:"id"`
	AuthUID   string    `json:"-"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	Class     string    `json:"class,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Option is one answer choice of a question.
type Option struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// Question is an MCQ question embedded in a quiz. Exactly one option must
// carry IsCorrect; questions have no identity beyond their position.
type Question struct {
	Text        string   `json:"questionText"`
	Options     []Option `json:"options"`
	Explanation string   `json:"explanation"`
	Points      int      `json:"points"` // treated as 1 if zero
}

// Quiz is a named set of questions bound to a subject and class, owned by
// one teacher. Students may submit only while IsLive is set.
type Quiz struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Subject          string     `json:"subject"`
	Class            string     `json:"class"`
	TimeLimitMinutes *int       `json:"timeLimitMinutes,omitempty"`
	Difficulty       Difficulty `json:"difficulty"`
	Questions        []Question `json:"questions,omitempty"`
	IsLive           bool       `json:"isLive"`
	CreatedBy        string     `json:"createdBy"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// Answer is a student's selection for one question, matched by index.
// A nil SelectedOption means the question was left unanswered.
type Answer struct {
	QuestionIndex  int  `json:"questionIndex"`
	SelectedOption *int `json:"selectedOptionIndex"`
}

// Submission is one student's finalized, scored answer set for one quiz.
// At most one submission exists per (quiz, student) pair; submissions are
// never mutated after insert.
type Submission struct {
	ID           string    `json:"id"`
	QuizID       string    `json:"quizId"`
	StudentID    string    `json:"studentId"`
	StudentName  string    `json:"studentName"`
	StudentClass string    `json:"studentClass"`
	Answers      []Answer  `json:"answers"`
	Score        int       `json:"score"`
	MaxScore     int       `json:"maxScore"`
	Percentage   float64   `json:"percentage"` // unrounded; round only for display
	SubmittedAt  time.Time `json:"submittedAt"`
}

// QuestionResult is the per-question outcome of grading.
type QuestionResult struct {
	QuestionIndex int    `json:"questionIndex"`
	QuestionText  string `json:"questionText"`
	UserAnswer    *int   `json:"userAnswer"`
	CorrectAnswer int    `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
	Explanation   string `json:"explanation"`
}

// ScoreResult is the aggregate grading outcome for one submission.
type ScoreResult struct {
	TotalScore int              `json:"score"`
	MaxScore   int              `json:"maxScore"`
	Percentage float64          `json:"percentage"`
	Results    []QuestionResult `json:"results"`
}

// RankedEntry is one row of a quiz leaderboard. Ranks are 1-based and
// dense, assigned strictly by output position.
type RankedEntry struct {
	Rank         int       `json:"rank"`
	StudentName  string    `json:"studentName"`
	StudentClass string    `json:"studentClass"`
	Score        int       `json:"score"`
	MaxScore     int       `json:"maxScore"`
	Percentage   float64   `json:"percentage"`
	SubmittedAt  time.Time `json:"submittedAt"`
}
