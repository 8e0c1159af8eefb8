package quizbuilder

import (
	"fmt"
	"strings"
)

// QuizNavigator gives wraparound access to a finished list of questions.
// It does not own the current position; callers keep a NavigationState.
type QuizNavigator struct {
	questions []QuizQuestion
	total     int
}

// NewQuizNavigator wraps questions. The slice is read, never modified.
func NewQuizNavigator(questions []QuizQuestion) *QuizNavigator {
	return &QuizNavigator{
		questions: questions,
		total:     len(questions),
	}
}

// Total returns the number of questions
func (qn *QuizNavigator) Total() int {
	return qn.total
}

// QuestionAt returns the question at index, wrapping in both directions, so
// -1 is the last question. It returns false only when the quiz is empty.
func (qn *QuizNavigator) QuestionAt(index int) (QuizQuestion, bool) {
	if qn.total == 0 {
		return QuizQuestion{}, false
	}
	return qn.questions[wrap(index, qn.total)], true
}

// Advance moves current by direction (normally +1 or -1) and wraps the result into [0, Total).
func (qn *QuizNavigator) Advance(direction, current int) (int, error) {
	if qn.total == 0 {
		return 0, fmt.Errorf("%w: cannot navigate an empty quiz", ErrInvalidState)
	}
	return wrap(current+direction, qn.total), nil
}

// wrap is a modulo whose result is always in [0, n).
func wrap(i, n int) int {
	r := i % n
	if r < 0 {
		r += n
	}
	return r
}

// Current returns the question the state points at
func (ns NavigationState) Current(qn *QuizNavigator) (QuizQuestion, bool) {
	return qn.QuestionAt(ns.Index)
}

// Move advances the state by direction. The index is left untouched on error.
func (ns *NavigationState) Move(qn *QuizNavigator, direction int) error {
	next, err := qn.Advance(direction, ns.Index)
	if err != nil {
		return err
	}
	ns.Index = next
	return nil
}

// CheckAnswer reports whether selection picks the correct choice. selection may
// be a bare key ("B") or a rendered label ("B) Paris").
func CheckAnswer(q QuizQuestion, selection string) bool {
	selection = strings.TrimSpace(selection)
	if selection == "" || q.Answer == "" {
		return false
	}
	if selection == q.Answer {
		return true
	}
	return strings.HasPrefix(selection, q.Answer+")")
}
