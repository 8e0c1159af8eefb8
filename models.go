package quizbuilder

import "time"

const (
	// DefaultTopic is used when a generator is created without a topic.
	DefaultTopic = "General Knowledge"

	// MaxQuestions is the largest batch a generator will produce.
	MaxQuestions = 10
)

// ChoiceKeys are the fixed labels the prompt asks the model to use.
var ChoiceKeys = []string{"A", "B", "C", "D"}

// Choice is one labeled multiple choice option
type Choice struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Label renders the choice the way the quiz UI shows it, e.g. "A) Paris".
func (c Choice) Label() string {
	return c.Key + ") " + c.Value
}

// QuizQuestion is a single generated question. Two questions are the same
// question when their Question text is byte-for-byte equal.
type QuizQuestion struct {
	Question    string   `json:"question"`
	Choices     []Choice `json:"choices"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation"`
}

// Choice returns the option labeled key.
func (q QuizQuestion) Choice(key string) (Choice, bool) {
	for _, c := range q.Choices {
		if c.Key == key {
			return c, true
		}
	}
	return Choice{}, false
}

// Labels returns every choice rendered with Choice.Label, in order.
func (q QuizQuestion) Labels() []string {
	labels := make([]string, len(q.Choices))
	for i, c := range q.Choices {
		labels[i] = c.Label()
	}
	return labels
}

// Quiz is a finished batch together with the settings that produced it
type Quiz struct {
	ID        string         `json:"id"`
	Topic     string         `json:"topic"`
	Requested int            `json:"requested"`
	Questions []QuizQuestion `json:"questions"`
	CreatedAt time.Time      `json:"created_at"`
}

// Short reports whether fewer questions were accepted than requested.
func (q *Quiz) Short() bool {
	return len(q.Questions) < q.Requested
}

// Passage is one piece of context returned by a Retriever
type Passage struct {
	Text   string `json:"text"`
	Source string `json:"source,omitempty"`
}

// NavigationState is the caller-owned position within a quiz.
type NavigationState struct {
	Index int `json:"index"`
}
