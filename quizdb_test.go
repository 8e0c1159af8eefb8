package quizbuilder

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(context.Background(), filepath.Join(t.TempDir(), "quiz.db"))
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveAndGetQuiz(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	quiz := &Quiz{
		ID:        "quiz-1",
		Topic:     "Go",
		Requested: 3,
		Questions: []QuizQuestion{sampleQuestion("first"), sampleQuestion("second")},
		CreatedAt: time.Now(),
	}
	quiz.Questions[1].Explanation = ""

	if err := db.SaveQuiz(ctx, quiz); err != nil {
		t.Fatalf("SaveQuiz: %v", err)
	}

	got, err := db.GetQuiz(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("GetQuiz: %v", err)
	}
	if got.Topic != "Go" || got.Requested != 3 {
		t.Fatalf("unexpected quiz: %+v", got)
	}
	if !got.CreatedAt.Equal(quiz.CreatedAt) {
		t.Fatalf("expected created_at %s, got %s", quiz.CreatedAt, got.CreatedAt)
	}
	if !reflect.DeepEqual(got.Questions, quiz.Questions) {
		t.Fatalf("questions did not round trip:\nwant %+v\ngot  %+v", quiz.Questions, got.Questions)
	}
	if !got.Short() {
		t.Fatal("expected a quiz with 2 of 3 questions to be short")
	}
}

func TestGetQuizNotFound(t *testing.T) {
	db := openTestDB(t)

	if _, err := db.GetQuiz(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListQuizzes(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	base := time.Now()

	quizzes := []*Quiz{
		{ID: "old", Topic: "History", Requested: 2, Questions: []QuizQuestion{sampleQuestion("a")}, CreatedAt: base.Add(-time.Hour)},
		{ID: "new", Topic: "Science", Requested: 2, Questions: []QuizQuestion{sampleQuestion("a"), sampleQuestion("b")}, CreatedAt: base},
	}
	for _, q := range quizzes {
		if err := db.SaveQuiz(ctx, q); err != nil {
			t.Fatalf("SaveQuiz(%s): %v", q.ID, err)
		}
	}

	list, err := db.ListQuizzes(ctx, 0)
	if err != nil {
		t.Fatalf("ListQuizzes: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 quizzes, got %d", len(list))
	}
	if list[0].ID != "new" || list[0].Accepted != 2 {
		t.Fatalf("unexpected first summary: %+v", list[0])
	}
	if list[1].ID != "old" || list[1].Accepted != 1 {
		t.Fatalf("unexpected second summary: %+v", list[1])
	}

	limited, err := db.ListQuizzes(ctx, 1)
	if err != nil {
		t.Fatalf("ListQuizzes: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected 1 quiz with limit, got %d", len(limited))
	}
}

func TestStoredPassagesRetriever(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	passages := SplitPassages("notes", "Cats purr.\n\nDogs bark loudly.\n\nBirds sing.")
	if err := db.AddPassages(ctx, "notes", passages); err != nil {
		t.Fatalf("AddPassages: %v", err)
	}
	if err := db.AddPassages(ctx, "other", SplitPassages("other", "Dogs dig.")); err != nil {
		t.Fatalf("AddPassages: %v", err)
	}

	stored, err := db.Passages(ctx, "notes")
	if err != nil {
		t.Fatalf("Passages: %v", err)
	}
	if !reflect.DeepEqual(stored, passages) {
		t.Fatalf("expected %+v, got %+v", passages, stored)
	}

	got, err := db.Retriever("notes", 1).Retrieve(ctx, "dogs")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(got) != 1 || got[0].Text != "Dogs bark loudly." {
		t.Fatalf("unexpected passages: %+v", got)
	}

	none, err := db.Retriever("unknown", 2).Retrieve(ctx, "dogs")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no passages for an unknown source, got %+v", none)
	}
}

func TestLLMLoggerNilIsSafe(t *testing.T) {
	var ll *LLMLogger
	ll.LogLLMRequest(0, "prompt")
	ll.LogLLMResponse(0, "response")
	ll.LogSlotResult(0, SlotAccepted, "detail")
	if ll.Path() != "" {
		t.Fatal("nil logger reported a path")
	}
	if err := ll.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
