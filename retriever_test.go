package quizbuilder

import (
	"context"
	"testing"
)

func TestSplitPassages(t *testing.T) {
	text := "First paragraph.\r\n\r\nSecond paragraph\nstill second.\n\n\n\n  \n\nThird."

	passages := SplitPassages("notes.txt", text)
	want := []string{"First paragraph.", "Second paragraph\nstill second.", "Third."}
	if len(passages) != len(want) {
		t.Fatalf("expected %d passages, got %d: %+v", len(want), len(passages), passages)
	}
	for i, p := range passages {
		if p.Text != want[i] {
			t.Errorf("passage %d: expected %q, got %q", i, want[i], p.Text)
		}
		if p.Source != "notes.txt" {
			t.Errorf("passage %d: expected source notes.txt, got %q", i, p.Source)
		}
	}
}

func TestPassageRetrieverRanksByOverlap(t *testing.T) {
	passages := []Passage{
		{Text: "Rust has a borrow checker."},
		{Text: "Go channels pass values between goroutines."},
		{Text: "Python uses indentation."},
		{Text: "Go is compiled. Go has goroutines."},
	}
	r := NewPassageRetriever(passages, 2)

	got, err := r.Retrieve(context.Background(), "Go goroutines")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 passages, got %d", len(got))
	}
	if got[0].Text != passages[3].Text || got[1].Text != passages[1].Text {
		t.Fatalf("unexpected ranking: %+v", got)
	}
}

func TestPassageRetrieverKeepsOrderWithoutMatches(t *testing.T) {
	passages := SplitPassages("", "a\n\nb\n\nc\n\nd\n\ne")
	r := NewPassageRetriever(passages, 0)

	got, err := r.Retrieve(context.Background(), "zebra")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(got) != DefaultPassageLimit {
		t.Fatalf("expected default limit %d, got %d", DefaultPassageLimit, len(got))
	}
	for i, want := range []string{"a", "b", "c", "d"} {
		if got[i].Text != want {
			t.Errorf("passage %d: expected %q, got %q", i, want, got[i].Text)
		}
	}
}

func TestPassageRetrieverEmpty(t *testing.T) {
	got, err := NewPassageRetriever(nil, 3).Retrieve(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no passages, got %d", len(got))
	}
	if formatContext(got) != "None" {
		t.Fatalf("expected placeholder context for no passages")
	}
}

func TestQuestionBatch(t *testing.T) {
	batch := NewQuestionBatch(2)

	if !batch.Add(sampleQuestion("one")) {
		t.Fatal("first question rejected")
	}
	if batch.Add(sampleQuestion("one")) {
		t.Fatal("duplicate question accepted")
	}
	if !batch.Add(sampleQuestion("two")) {
		t.Fatal("second question rejected")
	}
	if batch.Add(sampleQuestion("three")) {
		t.Fatal("question accepted past the limit")
	}

	questions := batch.Questions()
	questions[0].Question = "changed"
	if !batch.Contains("one") {
		t.Fatal("Questions returned shared storage")
	}

	batch.Reset()
	if !batch.IsEmpty() || batch.Contains("one") {
		t.Fatal("Reset left questions behind")
	}
}
