package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"quizbuilder"
)

var logger = quizbuilder.Logger()

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout))
}

// run executes the command and returns an exit code. Deferred cleanup, such
// as the transcript footer, runs on every path.
func run(args []string, stdin io.Reader, stdout io.Writer) int {
	fs := flag.NewFlagSet("quizgenerator", flag.ContinueOnError)
	var (
		configPath   = fs.String("config", "", "YAML config file")
		topic        = fs.String("topic", "", "Quiz topic (default: General Knowledge)")
		numQuestions = fs.Int("questions", 1, "Number of questions to generate (1-10)")
		sourceFile   = fs.String("source", "", "Text file with source material to base questions on")
		sourceID     = fs.String("source-id", "", "Name of passages stored in the database to use as context")
		provider     = fs.String("provider", "", "Model provider: openai or gemini (overrides config)")
		model        = fs.String("model", "", "Model name (overrides config)")
		outputFile   = fs.String("output", "", "Output file for quiz JSON (default: stdout)")
		save         = fs.Bool("save", false, "Store the quiz in the database")
		playMode     = fs.Bool("play", false, "Play the quiz interactively")
		verbose      = fs.Bool("verbose", false, "Enable verbose debugging output")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	quizbuilder.SetVerbose(*verbose)

	cfg, err := quizbuilder.LoadConfig(*configPath)
	if err != nil {
		logger.Errorf("Failed to load config: %v", err)
		return 1
	}
	if *provider != "" {
		cfg.Model.Provider = *provider
		cfg.ApplyEnv(os.Getenv)
	}
	if *model != "" {
		cfg.Model.Model = *model
	}

	generator, err := quizbuilder.NewQuestionGenerator(*topic, *numQuestions,
		quizbuilder.WithCallTimeout(cfg.CallTimeout),
	)
	if err != nil {
		logger.Errorf("Invalid quiz settings: %v", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.GenerationTimeout)
	defer cancel()

	llm, err := quizbuilder.NewLLM(ctx, cfg.Model)
	if err != nil {
		logger.Errorf("Failed to create model client: %v", err)
		return 1
	}

	var db *quizbuilder.DB
	if *save || *sourceID != "" {
		db, err = quizbuilder.OpenDB(ctx, cfg.Database)
		if err != nil {
			logger.Errorf("Failed to open database: %v", err)
			return 1
		}
		defer db.Close()
	}

	retriever, err := buildRetriever(ctx, db, *sourceFile, *sourceID, cfg.PassageLimit)
	if err != nil {
		logger.Errorf("Failed to load source material: %v", err)
		return 1
	}

	quizID := quizbuilder.NewQuizID()
	llmLog, err := quizbuilder.NewLLMLogger(cfg.LogDir, quizID, generator.Topic(), generator.NumQuestions())
	if err != nil {
		// Continue without a transcript rather than failing
		logger.Warnf("Failed to create LLM log for quiz %s: %v", quizID, err)
	}
	defer llmLog.Close()

	generator.Configure(
		quizbuilder.WithRetriever(retriever),
		quizbuilder.WithLLM(llm),
		quizbuilder.WithLogger(llmLog),
	)

	quiz, err := generator.GenerateQuiz(ctx, quizID)
	if err != nil {
		logger.Errorf("Failed to generate quiz: %v", err)
		return 1
	}
	if len(quiz.Questions) == 0 {
		logger.Errorf("No questions generated for topic %q. See %s for the model transcript.", quiz.Topic, llmLog.Path())
		return 1
	}
	if quiz.Short() {
		logger.Warnf("Only %d of %d questions were generated", len(quiz.Questions), quiz.Requested)
	}

	if *save {
		if err := db.SaveQuiz(ctx, quiz); err != nil {
			logger.Errorf("Failed to save quiz: %v", err)
			return 1
		}
		logger.Infof("Quiz saved with ID %s", quiz.ID)
	}

	if *playMode {
		if err := playQuiz(quiz, stdin, stdout); err != nil {
			logger.Errorf("Quiz stopped: %v", err)
			return 1
		}
		return 0
	}

	output, err := json.MarshalIndent(quiz, "", "  ")
	if err != nil {
		logger.Errorf("Failed to marshal quiz: %v", err)
		return 1
	}

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, output, 0644); err != nil {
			logger.Errorf("Failed to write output file: %v", err)
			return 1
		}
		logger.Infof("Quiz saved to: %s", *outputFile)
	} else {
		fmt.Fprintln(stdout, string(output))
	}
	return 0
}

func buildRetriever(ctx context.Context, db *quizbuilder.DB, sourceFile, sourceID string, limit int) (quizbuilder.Retriever, error) {
	if sourceFile != "" {
		data, err := os.ReadFile(sourceFile)
		if err != nil {
			return nil, err
		}
		passages := quizbuilder.SplitPassages(sourceFile, string(data))
		if db != nil && sourceID != "" {
			if err := db.AddPassages(ctx, sourceID, passages); err != nil {
				return nil, err
			}
		}
		return quizbuilder.NewPassageRetriever(passages, limit), nil
	}
	if sourceID != "" {
		return db.Retriever(sourceID, limit), nil
	}
	// No source material: the prompt says so and the model relies on the topic alone.
	return quizbuilder.NewPassageRetriever(nil, limit), nil
}

// playQuiz walks the quiz with the navigator. Players answer with a key,
// or use n/p to skip forward and back, q to quit.
func playQuiz(quiz *quizbuilder.Quiz, in io.Reader, out io.Writer) error {
	nav := quizbuilder.NewQuizNavigator(quiz.Questions)
	state := quizbuilder.NavigationState{}
	scanner := bufio.NewScanner(in)

	if nav.Total() == 0 {
		fmt.Fprintln(out, "No questions generated.")
		return nil
	}
	fmt.Fprintf(out, "🎯 Quiz on: %s (%d questions)\n\n", quiz.Topic, nav.Total())

	answered := make(map[int]bool)
	score := 0
	start := time.Now()

	for len(answered) < nav.Total() {
		question, _ := state.Current(nav)

		fmt.Fprintf(out, "Question %d/%d:\n%s\n\n", state.Index+1, nav.Total(), question.Question)
		for _, label := range question.Labels() {
			fmt.Fprintln(out, label)
		}
		fmt.Fprint(out, "\nAnswer (key, n=next, p=previous, q=quit): ")

		if !scanner.Scan() {
			break
		}
		input := strings.ToUpper(strings.TrimSpace(scanner.Text()))
		fmt.Fprintln(out)

		switch input {
		case "Q":
			printScore(out, score, nav.Total(), start)
			return nil
		case "N", "P":
			direction := 1
			if input == "P" {
				direction = -1
			}
			if err := state.Move(nav, direction); err != nil {
				return err
			}
			continue
		}

		if _, ok := question.Choice(input); !ok {
			fmt.Fprintln(out, "Please enter one of the choice keys.")
			continue
		}

		if quizbuilder.CheckAnswer(question, input) {
			fmt.Fprintln(out, "✅ Correct!")
			if !answered[state.Index] {
				score++
			}
		} else {
			correct, _ := question.Choice(question.Answer)
			fmt.Fprintf(out, "❌ Incorrect. The correct answer is %s\n", correct.Label())
		}
		if question.Explanation != "" {
			fmt.Fprintf(out, "💡 Explanation: %s\n", question.Explanation)
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, strings.Repeat("─", 50))
		fmt.Fprintln(out)

		answered[state.Index] = true
		if err := state.Move(nav, 1); err != nil {
			return err
		}
	}

	printScore(out, score, nav.Total(), start)
	return nil
}

func printScore(out io.Writer, score, total int, start time.Time) {
	percentage := float64(score) / float64(total) * 100
	fmt.Fprintf(out, "🎉 Quiz completed in %s: %d/%d (%.1f%%)\n", time.Since(start).Round(time.Second), score, total, percentage)
}
