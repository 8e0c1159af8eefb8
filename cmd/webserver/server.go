package main

import (
	"context"
	"embed"
	"encoding/gob"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"quizbuilder"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"github.com/sirupsen/logrus"
)

//go:embed templates/*.html
var templateFS embed.FS

const sessionName = "quiz-session"

// LLMFactory creates the model client used for one quiz request
type LLMFactory func(ctx context.Context) (quizbuilder.LLM, error)

// Server serves the quiz builder UI
type Server struct {
	cfg       quizbuilder.Config
	db        *quizbuilder.DB
	store     sessions.Store
	templates map[string]*template.Template
	newLLM    LLMFactory
}

// QuizSession is the per-browser quiz state kept in the session cookie
type QuizSession struct {
	QuizID     string
	Navigation quizbuilder.NavigationState
	Score      int
	Answered   int
	LastResult *AnswerResult
}

// AnswerResult is shown once after an answer is submitted
type AnswerResult struct {
	Correct      bool
	CorrectLabel string
	Explanation  string
}

func init() {
	gob.Register(QuizSession{})
}

// NewServer parses the templates and wires the handlers' dependencies
func NewServer(cfg quizbuilder.Config, db *quizbuilder.DB, store sessions.Store, newLLM LLMFactory) (*Server, error) {
	funcMap := template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
	}

	templates := make(map[string]*template.Template)
	templateFiles := []struct {
		name string
		file string
	}{
		{"home", "templates/home.html"},
		{"question", "templates/question.html"},
		{"empty", "templates/empty.html"},
	}

	for _, tmpl := range templateFiles {
		t, err := template.New(tmpl.name).Funcs(funcMap).ParseFS(templateFS, "templates/base.html", tmpl.file)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", tmpl.file, err)
		}
		templates[tmpl.name] = t
	}

	return &Server{
		cfg:       cfg,
		db:        db,
		store:     store,
		templates: templates,
		newLLM:    newLLM,
	}, nil
}

// Routes builds the HTTP router
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/", s.handleHome)
	r.Post("/quiz/new", s.handleNewQuiz)
	r.Route("/quiz/{quizID}", func(r chi.Router) {
		r.Get("/", s.handleQuestion)
		r.Post("/answer", s.handleAnswer)
		r.Post("/move", s.handleMove)
	})
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": middleware.GetReqID(r.Context()),
		}).Debug("Handling request")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) render(w http.ResponseWriter, name string, data interface{}) {
	if err := s.templates[name].ExecuteTemplate(w, "base.html", data); err != nil {
		logger.WithError(err).Errorf("Template error in %s", name)
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	quizzes, err := s.db.ListQuizzes(r.Context(), 20)
	if err != nil {
		logger.WithError(err).Error("Failed to get quizzes")
		http.Error(w, "Failed to get quizzes", http.StatusInternalServerError)
		return
	}

	s.render(w, "home", map[string]interface{}{
		"Quizzes":      quizzes,
		"MaxQuestions": quizbuilder.MaxQuestions,
	})
}

func (s *Server) handleNewQuiz(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	topic := r.FormValue("topic")
	sourceMaterial := r.FormValue("source_material")
	numQuestions, err := strconv.Atoi(r.FormValue("num_questions"))
	if err != nil {
		numQuestions = 1
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.GenerationTimeout)
	defer cancel()

	quizID := quizbuilder.NewQuizID()
	generator, err := quizbuilder.NewQuestionGenerator(topic, numQuestions,
		quizbuilder.WithRetriever(s.db.Retriever(quizID, s.cfg.PassageLimit)),
		quizbuilder.WithCallTimeout(s.cfg.CallTimeout),
	)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	llm, err := s.newLLM(ctx)
	if err != nil {
		logger.WithError(err).Error("Failed to create model client")
		http.Error(w, "Model is not available", http.StatusServiceUnavailable)
		return
	}

	if err := s.db.AddPassages(ctx, quizID, quizbuilder.SplitPassages(quizID, sourceMaterial)); err != nil {
		logger.WithError(err).Error("Failed to store source material")
		http.Error(w, "Failed to store source material", http.StatusInternalServerError)
		return
	}

	llmLog, err := quizbuilder.NewLLMLogger(s.cfg.LogDir, quizID, generator.Topic(), generator.NumQuestions())
	if err != nil {
		// Continue without logging rather than failing
		logger.WithError(err).Warnf("Failed to create logger for quiz %s", quizID)
	}
	defer llmLog.Close()

	generator.Configure(quizbuilder.WithLLM(llm), quizbuilder.WithLogger(llmLog))

	quiz, err := generator.GenerateQuiz(ctx, quizID)
	if err != nil {
		logger.WithError(err).Errorf("Failed to generate quiz %s", quizID)
		http.Error(w, "Failed to generate quiz", http.StatusInternalServerError)
		return
	}

	if len(quiz.Questions) == 0 {
		s.render(w, "empty", quiz)
		return
	}

	if err := s.db.SaveQuiz(ctx, quiz); err != nil {
		logger.WithError(err).Errorf("Failed to save quiz %s", quizID)
		http.Error(w, "Failed to save quiz", http.StatusInternalServerError)
		return
	}

	s.saveSession(w, r, QuizSession{QuizID: quiz.ID})
	http.Redirect(w, r, "/quiz/"+quiz.ID, http.StatusSeeOther)
}

// loadQuiz fetches the quiz named in the URL and the caller's session for it.
// A session for another quiz is replaced by a fresh one starting at index 0.
func (s *Server) loadQuiz(w http.ResponseWriter, r *http.Request) (*quizbuilder.Quiz, QuizSession, bool) {
	quizID := chi.URLParam(r, "quizID")
	quiz, err := s.db.GetQuiz(r.Context(), quizID)
	if err != nil {
		if errors.Is(err, quizbuilder.ErrNotFound) {
			http.NotFound(w, r)
		} else {
			logger.WithError(err).Errorf("Failed to get quiz %s", quizID)
			http.Error(w, "Failed to get quiz", http.StatusInternalServerError)
		}
		return nil, QuizSession{}, false
	}

	qs := s.getSession(r)
	if qs.QuizID != quiz.ID {
		qs = QuizSession{QuizID: quiz.ID}
	}
	return quiz, qs, true
}

func (s *Server) handleQuestion(w http.ResponseWriter, r *http.Request) {
	quiz, qs, ok := s.loadQuiz(w, r)
	if !ok {
		return
	}

	nav := quizbuilder.NewQuizNavigator(quiz.Questions)
	question, ok := qs.Navigation.Current(nav)
	if !ok {
		s.render(w, "empty", quiz)
		return
	}

	// the answer result is shown once
	result := qs.LastResult
	qs.LastResult = nil
	s.saveSession(w, r, qs)

	s.render(w, "question", map[string]interface{}{
		"Quiz":     quiz,
		"Index":    qs.Navigation.Index,
		"Total":    nav.Total(),
		"Question": question,
		"Labels":   question.Labels(),
		"Result":   result,
		"Score":    qs.Score,
		"Answered": qs.Answered,
	})
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	quiz, qs, ok := s.loadQuiz(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	nav := quizbuilder.NewQuizNavigator(quiz.Questions)
	question, ok := qs.Navigation.Current(nav)
	if !ok {
		http.Error(w, "Quiz has no questions", http.StatusConflict)
		return
	}

	selection := r.FormValue("choice")
	if selection == "" {
		http.Error(w, "Choose an answer", http.StatusBadRequest)
		return
	}

	correct, _ := question.Choice(question.Answer)
	result := &AnswerResult{
		Correct:      quizbuilder.CheckAnswer(question, selection),
		CorrectLabel: correct.Label(),
		Explanation:  question.Explanation,
	}
	if result.Correct {
		qs.Score++
	}
	qs.Answered++
	qs.LastResult = result

	if err := qs.Navigation.Move(nav, 1); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	s.saveSession(w, r, qs)
	http.Redirect(w, r, "/quiz/"+quiz.ID, http.StatusSeeOther)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	quiz, qs, ok := s.loadQuiz(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	direction := 1
	if r.FormValue("direction") == "prev" {
		direction = -1
	}

	nav := quizbuilder.NewQuizNavigator(quiz.Questions)
	if err := qs.Navigation.Move(nav, direction); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	qs.LastResult = nil

	s.saveSession(w, r, qs)
	http.Redirect(w, r, "/quiz/"+quiz.ID, http.StatusSeeOther)
}

func (s *Server) getSession(r *http.Request) QuizSession {
	session, err := s.store.Get(r, sessionName)
	if err != nil {
		logger.WithError(err).Debug("Discarding unreadable session")
	}
	if qs, ok := session.Values["quiz"].(QuizSession); ok {
		return qs
	}
	return QuizSession{}
}

func (s *Server) saveSession(w http.ResponseWriter, r *http.Request, qs QuizSession) {
	session, _ := s.store.Get(r, sessionName)
	session.Values["quiz"] = qs
	if err := session.Save(r, w); err != nil {
		logger.WithError(err).Error("Session save error")
	}
}
