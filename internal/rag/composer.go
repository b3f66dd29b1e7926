package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/WoldamlakDebasu/Cognidoc/internal/domain"
	"github.com/WoldamlakDebasu/Cognidoc/internal/provider"
)

// InsufficientAnswer is returned when no context clears the relevance
// threshold. It distinguishes "no answer found" from "system failure".
const InsufficientAnswer = "I don't have enough information in the current knowledge base to answer that question. Please upload relevant documents or try a different query."

// Composer builds a grounding prompt from retrieved contexts, invokes
// the generation provider and assembles the answer with per-source
// citations. With no generator configured (demo mode) it falls back to
// extractive and canned answers with the same Answer shape.
type Composer struct {
	gen    provider.Generator // nil in demo mode
	canned []CannedRule
	log    *slog.Logger
}

// NewComposer creates a composer. Pass a nil generator for demo mode.
func NewComposer(gen provider.Generator, canned []CannedRule, log *slog.Logger) *Composer {
	if log == nil {
		log = slog.Default()
	}
	return &Composer{gen: gen, canned: canned, log: log}
}

// Compose produces an answer for the query from the supplied contexts.
// Sources are built only from what was actually passed in, never parsed
// back out of the generated text. The generation call is synchronous and
// never retried: a failure surfaces to the caller as a typed error.
func (c *Composer) Compose(ctx context.Context, query string, contexts []domain.RetrievedContext) (*domain.Answer, error) {
	answer := &domain.Answer{
		Sources:     sourcesFrom(contexts),
		ContextUsed: len(contexts),
		Timestamp:   time.Now().UTC(),
	}

	if c.gen == nil {
		answer.Text = c.demoAnswer(query, contexts)
		return answer, nil
	}

	if len(contexts) == 0 {
		// Nothing usable was retrieved; skip the generation call rather
		// than pay for a prompt the model must refuse anyway.
		answer.Text = InsufficientAnswer
		return answer, nil
	}

	text, err := c.gen.Generate(ctx, BuildPrompt(query, contexts))
	if err != nil {
		return nil, err
	}
	answer.Text = strings.TrimSpace(text)
	return answer, nil
}

// demoAnswer answers without a generation provider: extractive from the
// top context when one exists, then canned rules, then the fixed
// insufficiency response.
func (c *Composer) demoAnswer(query string, contexts []domain.RetrievedContext) string {
	if len(contexts) > 0 {
		top := contexts[0].Chunk
		return fmt.Sprintf("Based on %s (page %d): %s",
			top.Document, top.Page, strings.TrimSpace(top.Text))
	}
	if text, ok := EvaluateCanned(c.canned, query); ok {
		return text
	}
	return InsufficientAnswer
}

// BuildPrompt assembles the grounding prompt: answer strictly from the
// supplied excerpts, state insufficiency rather than fabricate, excerpts
// in ranked order with separators that keep chunk boundaries unambiguous.
func BuildPrompt(query string, contexts []domain.RetrievedContext) string {
	var b strings.Builder
	b.WriteString("Answer the question using only the context excerpts below.\n")
	b.WriteString("If the context does not contain the answer, say that the provided documents do not contain enough information. Do not invent facts.\n\n")
	b.WriteString("Context:\n")
	for _, rc := range contexts {
		fmt.Fprintf(&b, "--- Excerpt %d (%s, page %d) ---\n", rc.Rank, rc.Chunk.Document, rc.Chunk.Page)
		b.WriteString(strings.TrimSpace(rc.Chunk.Text))
		b.WriteString("\n")
	}
	b.WriteString("--- End of context ---\n\n")
	fmt.Fprintf(&b, "Question: %s\n\nAnswer:", query)
	return b.String()
}

// sourcesFrom maps contexts to citations, preserving rank order.
func sourcesFrom(contexts []domain.RetrievedContext) []domain.Source {
	sources := make([]domain.Source, 0, len(contexts))
	for _, rc := range contexts {
		sources = append(sources, domain.Source{
			Document:       rc.Chunk.Document,
			PageNumber:     rc.Chunk.Page,
			ChunkID:        rc.Chunk.Index,
			RelevanceScore: rc.Score,
		})
	}
	return sources
}
