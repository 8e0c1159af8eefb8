package quizbuilder

import (
	"context"
	"sort"
	"strings"
)

// DefaultPassageLimit is how many passages a retriever hands back per query.
const DefaultPassageLimit = 4

// Retriever returns context passages relevant to a query. Vector stores and
// other search backends plug in here.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]Passage, error)
}

// RetrieverFunc adapts a function to the Retriever interface
type RetrieverFunc func(ctx context.Context, query string) ([]Passage, error)

// Retrieve calls f(ctx, query)
func (f RetrieverFunc) Retrieve(ctx context.Context, query string) ([]Passage, error) {
	return f(ctx, query)
}

// PassageRetriever serves passages held in memory, typically source material
// pasted by the user. Passages sharing more words with the query come first.
type PassageRetriever struct {
	passages []Passage
	limit    int
}

// NewPassageRetriever creates a retriever over the given passages
func NewPassageRetriever(passages []Passage, limit int) *PassageRetriever {
	if limit <= 0 {
		limit = DefaultPassageLimit
	}
	return &PassageRetriever{passages: passages, limit: limit}
}

// NewSourceMaterialRetriever splits text into paragraphs and serves them as passages.
func NewSourceMaterialRetriever(source, text string) *PassageRetriever {
	return NewPassageRetriever(SplitPassages(source, text), DefaultPassageLimit)
}

// Retrieve returns up to limit passages ordered by word overlap with query,
// keeping input order among equal scores.
func (pr *PassageRetriever) Retrieve(ctx context.Context, query string) ([]Passage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	terms := strings.Fields(strings.ToLower(query))
	type scored struct {
		passage Passage
		score   int
	}
	ranked := make([]scored, len(pr.passages))
	for i, p := range pr.passages {
		text := strings.ToLower(p.Text)
		score := 0
		for _, term := range terms {
			score += strings.Count(text, term)
		}
		ranked[i] = scored{passage: p, score: score}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	n := min(pr.limit, len(ranked))
	out := make([]Passage, n)
	for i := 0; i < n; i++ {
		out[i] = ranked[i].passage
	}
	return out, nil
}

// SplitPassages breaks text on blank lines, dropping empty paragraphs.
func SplitPassages(source, text string) []Passage {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var passages []Passage
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		passages = append(passages, Passage{Text: para, Source: source})
	}
	return passages
}

// formatContext joins passages into the block interpolated into the prompt.
func formatContext(passages []Passage) string {
	if len(passages) == 0 {
		return "None"
	}
	var sb strings.Builder
	for i, p := range passages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(p.Text)
	}
	return sb.String()
}
