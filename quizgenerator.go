package quizbuilder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SlotOutcome records what happened to one iteration of the generation loop
type SlotOutcome string

const (
	SlotAccepted  SlotOutcome = "accepted"
	SlotDuplicate SlotOutcome = "duplicate"
	SlotMissing   SlotOutcome = "missing_question"
	SlotMalformed SlotOutcome = "malformed"
	SlotFailed    SlotOutcome = "failed"
)

// QuestionGenerator produces a batch of unique questions about one topic,
// making one retrieval and one model call per requested question.
type QuestionGenerator struct {
	topic        string
	numQuestions int
	retriever    Retriever
	llm          LLM
	llmLog       *LLMLogger
	callTimeout  time.Duration
	batch        *QuestionBatch
	outcomes     []SlotOutcome
}

// Option configures a QuestionGenerator
type Option func(*QuestionGenerator)

// WithRetriever sets the source of context passages
func WithRetriever(r Retriever) Option {
	return func(qg *QuestionGenerator) { qg.retriever = r }
}

// WithLLM sets the model used to write questions
func WithLLM(llm LLM) Option {
	return func(qg *QuestionGenerator) { qg.llm = llm }
}

// WithLogger records prompts and responses in a per-quiz transcript
func WithLogger(ll *LLMLogger) Option {
	return func(qg *QuestionGenerator) { qg.llmLog = ll }
}

// WithCallTimeout bounds each retrieval and each model call. Zero means no bound.
func WithCallTimeout(d time.Duration) Option {
	return func(qg *QuestionGenerator) { qg.callTimeout = d }
}

// NewQuestionGenerator creates a generator for numQuestions questions about topic.
// An empty topic falls back to DefaultTopic.
func NewQuestionGenerator(topic string, numQuestions int, opts ...Option) (*QuestionGenerator, error) {
	if numQuestions < 1 || numQuestions > MaxQuestions {
		return nil, fmt.Errorf("%w: number of questions must be between 1 and %d, got %d",
			ErrInvalidConfiguration, MaxQuestions, numQuestions)
	}
	if topic == "" {
		topic = DefaultTopic
	}

	qg := &QuestionGenerator{
		topic:        topic,
		numQuestions: numQuestions,
		batch:        NewQuestionBatch(numQuestions),
	}
	qg.Configure(opts...)
	return qg, nil
}

// Configure applies options after construction, so callers can validate the
// topic and count before opening a model client or a transcript.
func (qg *QuestionGenerator) Configure(opts ...Option) {
	for _, opt := range opts {
		opt(qg)
	}
}

// Topic returns the topic questions are generated for
func (qg *QuestionGenerator) Topic() string {
	return qg.topic
}

// NumQuestions returns the requested batch size
func (qg *QuestionGenerator) NumQuestions() int {
	return qg.numQuestions
}

// Outcomes returns one entry per slot of the last GenerateBatch run
func (qg *QuestionGenerator) Outcomes() []SlotOutcome {
	out := make([]SlotOutcome, len(qg.outcomes))
	copy(out, qg.outcomes)
	return out
}

func (qg *QuestionGenerator) checkDependencies() error {
	if qg.retriever == nil {
		return fmt.Errorf("%w: retriever is not configured", ErrMissingDependency)
	}
	if qg.llm == nil {
		return fmt.Errorf("%w: LLM is not configured", ErrMissingDependency)
	}
	return nil
}

// GenerateOne retrieves context for the topic, fills the prompt and returns the
// model's raw reply. It makes exactly one call of each kind and never retries.
func (qg *QuestionGenerator) GenerateOne(ctx context.Context) (string, error) {
	return qg.generateSlot(ctx, 0)
}

func (qg *QuestionGenerator) generateSlot(ctx context.Context, slot int) (string, error) {
	if err := qg.checkDependencies(); err != nil {
		return "", err
	}

	passages, err := qg.retrieve(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve context for %q: %w", qg.topic, err)
	}

	prompt := buildQuestionPrompt(qg.topic, formatContext(passages))
	qg.llmLog.LogLLMRequest(slot, prompt)

	raw, err := qg.generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	qg.llmLog.LogLLMResponse(slot, raw)
	return raw, nil
}

func (qg *QuestionGenerator) retrieve(ctx context.Context) ([]Passage, error) {
	if qg.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, qg.callTimeout)
		defer cancel()
	}
	return qg.retriever.Retrieve(ctx, qg.topic)
}

func (qg *QuestionGenerator) generate(ctx context.Context, prompt string) (string, error) {
	if qg.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, qg.callTimeout)
		defer cancel()
	}
	return qg.llm.Generate(ctx, prompt)
}

// GenerateBatch runs exactly NumQuestions slots and returns the unique questions
// they produced. Slots whose call fails, whose reply does not parse, or whose
// question repeats an accepted one add nothing, so the batch can come back
// short or empty without an error. Only missing dependencies and a cancelled
// context are reported; on cancellation the partial batch is returned too.
// The batch is reused by the next run, so keep Questions() rather than the pointer.
func (qg *QuestionGenerator) GenerateBatch(ctx context.Context) (*QuestionBatch, error) {
	if err := qg.checkDependencies(); err != nil {
		return nil, err
	}

	log := logger.WithFields(logrus.Fields{
		"topic":     qg.topic,
		"questions": qg.numQuestions,
	})
	log.Info("Starting question generation")

	qg.batch.Reset()
	qg.outcomes = qg.outcomes[:0]

	for slot := 1; slot <= qg.numQuestions; slot++ {
		if err := ctx.Err(); err != nil {
			log.WithError(err).Warn("Question generation cancelled")
			return qg.batch, err
		}

		outcome, detail := qg.runSlot(ctx, slot)
		qg.outcomes = append(qg.outcomes, outcome)
		qg.llmLog.LogSlotResult(slot, outcome, detail)

		entry := log.WithFields(logrus.Fields{"slot": slot, "outcome": outcome})
		if outcome == SlotAccepted {
			entry.Debug(detail)
		} else {
			entry.Warn(detail)
		}
	}

	log.WithField("accepted", qg.batch.Len()).Info("Question generation complete")
	return qg.batch, nil
}

func (qg *QuestionGenerator) runSlot(ctx context.Context, slot int) (SlotOutcome, string) {
	raw, err := qg.generateSlot(ctx, slot)
	if err != nil {
		return SlotFailed, err.Error()
	}

	question, err := ParseQuestion(raw)
	switch {
	case errors.Is(err, ErrMissingQuestion):
		return SlotMissing, "response has no question text"
	case err != nil:
		return SlotMalformed, err.Error()
	}

	if !qg.batch.Add(*question) {
		return SlotDuplicate, fmt.Sprintf("duplicate question %q", question.Question)
	}
	return SlotAccepted, fmt.Sprintf("accepted question %q", question.Question)
}

// GenerateQuiz runs GenerateBatch and wraps the result in a Quiz. An empty
// quizID is replaced with a new one.
func (qg *QuestionGenerator) GenerateQuiz(ctx context.Context, quizID string) (*Quiz, error) {
	batch, err := qg.GenerateBatch(ctx)
	if err != nil {
		return nil, err
	}
	if quizID == "" {
		quizID = NewQuizID()
	}
	return &Quiz{
		ID:        quizID,
		Topic:     qg.topic,
		Requested: qg.numQuestions,
		Questions: batch.Questions(),
		CreatedAt: time.Now(),
	}, nil
}

// NewQuizID returns a fresh quiz identifier
func NewQuizID() string {
	return uuid.NewString()
}
