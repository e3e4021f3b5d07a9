package learning

import (
	"fmt"
	"math"
)

type Tab string

const (
	TabContent Tab = "content"
	TabQuiz    Tab = "quiz"
)

// ParseTab returns TabContent for anything that is not "quiz".
func ParseTab(s string) Tab {
	if Tab(s) == TabQuiz {
		return TabQuiz
	}
	return TabContent
}

func (t Tab) Announcement() string {
	if t == TabQuiz {
		return "Quiz tab selected"
	}
	return "Content tab selected"
}

const (
	// ViewedProgress is the progress reached by opening either tab.
	ViewedProgress    = 50
	CompletedProgress = 100
)

// Progress is a learner's state within one module.
type Progress struct {
	Value     int
	Section   int
	Answers   map[int]int
	Submitted bool
	Result    Result
}

// SelectTab raises progress to ViewedProgress.
func (p *Progress) SelectTab(Tab) {
	if p.Value < ViewedProgress {
		p.Value = ViewedProgress
	}
}

// GoToSection moves to section i of m. Progress follows the section position
// and is capped at ViewedProgress, except after the quiz is submitted.
func (p *Progress) GoToSection(m Module, i int) error {
	n := len(m.Sections())
	if i < 0 || i >= n {
		return fmt.Errorf("section %d out of range", i)
	}
	p.Section = i
	if !p.Submitted {
		p.Value = SectionProgress(i, n)
	}
	return nil
}

// SectionProgress is the progress for section i of n.
func SectionProgress(i, n int) int {
	if n <= 1 {
		return ViewedProgress
	}
	v := int(math.Round(float64(i) / float64(n-1) * ViewedProgress))
	return min(ViewedProgress, v)
}

// Answer records an answer. Answers are locked once the quiz is submitted.
func (p *Progress) Answer(m Module, questionID, option int) error {
	if p.Submitted {
		return ErrQuizSubmitted
	}
	q, ok := m.Question(questionID)
	if !ok || option < 0 || option >= len(q.Options) {
		return fmt.Errorf("%w: question %d option %d", ErrUnknownAnswer, questionID, option)
	}
	if p.Answers == nil {
		p.Answers = make(map[int]int)
	}
	p.Answers[questionID] = option
	return nil
}

// Submit grades the recorded answers and completes the module.
func (p *Progress) Submit(m Module) (Result, error) {
	if p.Submitted {
		return p.Result, ErrQuizSubmitted
	}
	res, err := m.Grade(p.Answers)
	if err != nil {
		return Result{}, err
	}
	p.Submitted = true
	p.Result = res
	p.Value = CompletedProgress
	return res, nil
}
