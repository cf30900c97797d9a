package app

import (
	"math"

	"classquiz/internal/domain"
)

// Score grades a raw answer set against a quiz. It walks the quiz's
// questions in their defined order, regardless of the size or order of
// the answers slice. Missing, unanswered, or out-of-range selections
// count as incorrect; nothing here can fail.
func Score(quiz domain.Quiz, answers []domain.Answer) domain.ScoreResult {
	totalScore := 0
	maxScore := 0
	results := make([]domain.QuestionResult, 0, len(quiz.Questions))

	for qi := range quiz.Questions {
		question := quiz.Questions[qi]
		points := question.Points
		if points <= 0 {
			points = 1
		}
		maxScore += points

		selected := selectedOption(answers, qi)
		correctIdx := correctOptionIndex(question)
		isCorrect := selected != nil && correctIdx >= 0 && *selected == correctIdx
		if isCorrect {
			totalScore += points
		}

		results = append(results, domain.QuestionResult{
			QuestionIndex: qi,
			QuestionText:  question.Text,
			UserAnswer:    selected,
			CorrectAnswer: correctIdx,
			IsCorrect:     isCorrect,
			Explanation:   question.Explanation,
		})
	}

	percentage := 0.0
	if maxScore > 0 {
		percentage = 100 * float64(totalScore) / float64(maxScore)
	}
	return domain.ScoreResult{
		TotalScore: totalScore,
		MaxScore:   maxScore,
		Percentage: percentage,
		Results:    results,
	}
}

// selectedOption finds the answer matching a question index. The first
// match wins when the input carries duplicates.
func selectedOption(answers []domain.Answer, questionIndex int) *int {
	for _, a := range answers {
		if a.QuestionIndex == questionIndex {
			return a.SelectedOption
		}
	}
	return nil
}

// correctOptionIndex returns the position of the option flagged correct,
// or -1 when the quiz invariant is broken.
func correctOptionIndex(q domain.Question) int {
	for i := range q.Options {
		if q.Options[i].IsCorrect {
			return i
		}
	}
	return -1
}

// RoundPercentage rounds to two decimal places for display. Stored
// percentages stay unrounded so ranking compares exact values.
func RoundPercentage(p float64) float64 {
	return math.Round(p*100) / 100
}
