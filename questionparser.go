package quizbuilder

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// rawQuestion mirrors the JSON the prompt asks for. Pointers let us tell an
// absent or null key apart from an empty string.
type rawQuestion struct {
	Question    *string   `json:"question"`
	Choices     *[]Choice `json:"choices"`
	Answer      *string   `json:"answer"`
	Explanation string    `json:"explanation"`
}

// ParseQuestion decodes one model response into a QuizQuestion.
//
// Models sometimes wrap JSON in a ```json fence, which is stripped first.
// Every error wraps ErrMalformedResponse; a missing or null "question" key
// returns ErrMissingQuestion.
func ParseQuestion(raw string) (*QuizQuestion, error) {
	clean := stripCodeFence(raw)
	if clean == "" {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedResponse)
	}

	var doc json.RawMessage
	decoder := json.NewDecoder(strings.NewReader(clean))
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: failed to decode question JSON: %v", ErrMalformedResponse, err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after question object", ErrMalformedResponse)
	}
	if err := checkFieldNames(doc); err != nil {
		return nil, err
	}

	var rq rawQuestion
	if err := json.Unmarshal(doc, &rq); err != nil {
		return nil, fmt.Errorf("%w: failed to decode question JSON: %v", ErrMalformedResponse, err)
	}

	if rq.Question == nil {
		return nil, ErrMissingQuestion
	}
	if rq.Choices == nil || len(*rq.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices", ErrMalformedResponse)
	}
	if rq.Answer == nil {
		return nil, fmt.Errorf("%w: no answer", ErrMalformedResponse)
	}

	question := &QuizQuestion{
		Question:    *rq.Question,
		Choices:     *rq.Choices,
		Answer:      *rq.Answer,
		Explanation: rq.Explanation,
	}
	if _, ok := question.Choice(question.Answer); !ok {
		return nil, fmt.Errorf("%w: answer %q does not match any choice key", ErrMalformedResponse, question.Answer)
	}
	if len(question.Choices) != len(ChoiceKeys) {
		VerboseLog("Question %q has %d choices, expected %d", question.Question, len(question.Choices), len(ChoiceKeys))
	}
	return question, nil
}

var (
	questionFields = []string{"question", "choices", "answer", "explanation"}
	choiceFields   = []string{"key", "value"}
)

// checkFieldNames rejects keys that match a known field only when case is
// ignored. encoding/json would map "Question" onto the question field, and the
// last such key would win.
func checkFieldNames(doc json.RawMessage) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(doc, &fields); err != nil {
		return fmt.Errorf("%w: response is not a JSON object: %v", ErrMalformedResponse, err)
	}
	if err := matchFieldCase(fields, questionFields); err != nil {
		return err
	}

	raw, ok := fields["choices"]
	if !ok {
		return nil
	}
	var choices []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &choices); err != nil {
		return fmt.Errorf("%w: choices must be a list of objects: %v", ErrMalformedResponse, err)
	}
	for _, choice := range choices {
		if err := matchFieldCase(choice, choiceFields); err != nil {
			return err
		}
	}
	return nil
}

func matchFieldCase(fields map[string]json.RawMessage, known []string) error {
	for name := range fields {
		for _, want := range known {
			if name != want && strings.EqualFold(name, want) {
				return fmt.Errorf("%w: key %q must be spelled %q", ErrMalformedResponse, name, want)
			}
		}
	}
	return nil
}

func stripCodeFence(raw string) string {
	clean := strings.TrimSpace(raw)
	if !strings.HasPrefix(clean, "```") {
		return clean
	}
	clean = strings.TrimPrefix(clean, "```")
	// drop the info string, e.g. "json"
	if i := strings.IndexByte(clean, '\n'); i >= 0 {
		clean = clean[i+1:]
	} else {
		clean = strings.TrimPrefix(clean, "json")
	}
	clean = strings.TrimSuffix(strings.TrimSpace(clean), "```")
	return strings.TrimSpace(clean)
}
