package quizbuilder

// QuestionBatch collects unique questions for one quiz, in acceptance order.
// It is not safe for concurrent use; each generation run owns its own batch.
type QuestionBatch struct {
	questions []QuizQuestion
	limit     int
}

// NewQuestionBatch creates an empty batch that holds at most limit questions
func NewQuestionBatch(limit int) *QuestionBatch {
	return &QuestionBatch{
		questions: make([]QuizQuestion, 0, limit),
		limit:     limit,
	}
}

// Reset empties the batch
func (qb *QuestionBatch) Reset() {
	qb.questions = qb.questions[:0]
}

// Contains reports whether a question with exactly this text was already accepted
func (qb *QuestionBatch) Contains(text string) bool {
	for _, q := range qb.questions {
		if q.Question == text {
			return true
		}
	}
	return false
}

// Add appends the question unless the batch is full or the text is a duplicate.
func (qb *QuestionBatch) Add(question QuizQuestion) bool {
	if qb.Full() || qb.Contains(question.Question) {
		return false
	}
	qb.questions = append(qb.questions, question)
	return true
}

// Len returns the number of accepted questions
func (qb *QuestionBatch) Len() int {
	return len(qb.questions)
}

// Full reports whether the batch reached its limit
func (qb *QuestionBatch) Full() bool {
	return len(qb.questions) >= qb.limit
}

// IsEmpty returns true if nothing was accepted
func (qb *QuestionBatch) IsEmpty() bool {
	return qb.Len() == 0
}

// Questions returns a copy of the accepted questions. The copy is what gets
// handed to a QuizNavigator, so later changes to the batch do not leak into a running quiz.
func (qb *QuestionBatch) Questions() []QuizQuestion {
	out := make([]QuizQuestion, len(qb.questions))
	copy(out, qb.questions)
	return out
}
