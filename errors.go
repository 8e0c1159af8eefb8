package quizbuilder

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration is returned when a generator or config is built with unusable settings,
	// such as a question count outside [1, MaxQuestions].
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrMissingDependency is returned when generation needs a retriever or LLM that was not supplied.
	ErrMissingDependency = errors.New("missing dependency")

	// ErrMalformedResponse is returned when model output cannot be parsed into a QuizQuestion.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrMissingQuestion marks a response whose "question" key is absent or null.
	ErrMissingQuestion = fmt.Errorf("%w: missing question text", ErrMalformedResponse)

	// ErrInvalidState is returned when navigation is requested on an empty quiz.
	ErrInvalidState = errors.New("invalid state")
)
