package learning

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrQuizIncomplete = errors.New("quiz incomplete")
	ErrQuizSubmitted  = errors.New("quiz already submitted")
	ErrUnknownAnswer  = errors.New("unknown question or option")
)

// Result is a graded quiz.
type Result struct {
	Score   int `json:"score"`
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

func (r Result) Announcement() string {
	return fmt.Sprintf("Quiz Submitted. Your score is %d percent. You got %d out of %d questions correct.",
		r.Score, r.Correct, r.Total)
}

// Grade scores answers, keyed by question id with the chosen option index.
// Every question must have an answer.
func (m Module) Grade(answers map[int]int) (Result, error) {
	total := len(m.Quiz)
	if total == 0 {
		return Result{}, ErrQuizIncomplete
	}

	correct := 0
	for _, q := range m.Quiz {
		choice, ok := answers[q.ID]
		if !ok || choice < 0 || choice >= len(q.Options) {
			return Result{}, ErrQuizIncomplete
		}
		if choice == q.CorrectAnswer {
			correct++
		}
	}

	return Result{
		Score:   int(math.Round(float64(correct) / float64(total) * 100)),
		Correct: correct,
		Total:   total,
	}, nil
}

// Question returns the quiz question with id.
func (m Module) Question(id int) (Question, bool) {
	for _, q := range m.Quiz {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}
