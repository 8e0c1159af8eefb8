package quizbuilder

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LLMLogger writes a transcript of every model interaction for one quiz.
// A nil *LLMLogger is valid and discards everything.
type LLMLogger struct {
	file   *os.File
	mu     sync.Mutex
	quizID string
}

// NewLLMLogger creates <dir>/<quizID>.log and writes the quiz parameters as a header
func NewLLMLogger(dir, quizID, topic string, numQuestions int) (*LLMLogger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	filename := filepath.Join(dir, fmt.Sprintf("%s.log", quizID))
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	ll := &LLMLogger{
		file:   file,
		quizID: quizID,
	}

	ll.Logf("=== Quiz Generation Log ===\n")
	ll.Logf("Quiz ID: %s\n", quizID)
	ll.Logf("Topic: %s\n", topic)
	ll.Logf("Number of Questions: %d\n", numQuestions)
	ll.Logf("Started: %s\n", time.Now().Format(time.RFC3339))
	ll.Logf("========================\n\n")

	return ll, nil
}

// Path returns the transcript file name
func (ll *LLMLogger) Path() string {
	if ll == nil || ll.file == nil {
		return ""
	}
	return ll.file.Name()
}

// Logf writes a formatted log entry with timestamp
func (ll *LLMLogger) Logf(format string, args ...interface{}) {
	if ll == nil {
		return
	}
	ll.mu.Lock()
	defer ll.mu.Unlock()
	ll.write(format, args...)
}

func (ll *LLMLogger) write(format string, args ...interface{}) {
	if ll.file == nil {
		return
	}
	timestamp := time.Now().Format("15:04:05.000")
	fmt.Fprintf(ll.file, "[%s] %s", timestamp, fmt.Sprintf(format, args...))
	ll.file.Sync()
}

// LogLLMRequest logs the prompt sent for a slot
func (ll *LLMLogger) LogLLMRequest(slot int, prompt string) {
	ll.Logf("=== LLM REQUEST (slot %d) ===\n", slot)
	ll.Logf("Prompt:\n%s\n", prompt)
	ll.Logf("=====================\n\n")
}

// LogLLMResponse logs the raw model output for a slot
func (ll *LLMLogger) LogLLMResponse(slot int, response string) {
	ll.Logf("=== LLM RESPONSE (slot %d) ===\n", slot)
	ll.Logf("Response:\n%s\n", response)
	ll.Logf("======================\n\n")
}

// LogSlotResult logs what happened to the question produced by a slot
func (ll *LLMLogger) LogSlotResult(slot int, outcome SlotOutcome, detail string) {
	ll.Logf("Slot %d: %s - %s\n", slot, outcome, detail)
}

// Close writes the footer and closes the log file
func (ll *LLMLogger) Close() error {
	if ll == nil {
		return nil
	}
	ll.mu.Lock()
	defer ll.mu.Unlock()

	if ll.file == nil {
		return nil
	}
	ll.write("=== Quiz Generation Complete ===\n")
	ll.write("Completed: %s\n", time.Now().Format(time.RFC3339))
	ll.write("=============================\n")
	err := ll.file.Close()
	ll.file = nil
	return err
}
