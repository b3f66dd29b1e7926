// Package engine orchestrates the ingestion and query pipelines and owns
// the document registry. It exposes the only two operations the outer
// API layer uses: Ingest and Query.
package engine

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/WoldamlakDebasu/Cognidoc/internal/documents"
	"github.com/WoldamlakDebasu/Cognidoc/internal/domain"
	"github.com/WoldamlakDebasu/Cognidoc/internal/index"
	"github.com/WoldamlakDebasu/Cognidoc/internal/provider"
	"github.com/WoldamlakDebasu/Cognidoc/internal/rag"
)

// Mode selects how the engine was assembled at process start.
type Mode string

const (
	ModeDemo       Mode = "demo"
	ModeProduction Mode = "production"
)

// Options wires an engine together. The vector index is injected
// explicitly so tests can swap implementations per case; there is no
// package-level index.
type Options struct {
	Mode             Mode
	Ingestor         *documents.Ingestor
	Embedder         provider.Embedder
	Index            index.VectorIndex
	Retriever        *rag.Retriever
	Composer         *rag.Composer
	MaxEmbedAttempts int
	Logger           *slog.Logger
}

// Engine drives ingestion (PDF bytes → embedded chunks → index) and
// queries (text → retrieved context → cited answer). Documents ingest in
// parallel with each other and with queries; pages of one document are
// processed sequentially so chunk indices stay deterministic.
type Engine struct {
	mode        Mode
	ingestor    *documents.Ingestor
	embedder    provider.Embedder
	idx         index.VectorIndex
	retriever   *rag.Retriever
	composer    *rag.Composer
	maxAttempts int
	log         *slog.Logger

	mu     sync.RWMutex
	docs   map[uuid.UUID]*domain.Document
	byName map[string]uuid.UUID // latest generation per filename
}

// New validates the wiring and creates an engine. An embedder whose
// dimension disagrees with the index is a fatal configuration error, not
// a per-request failure.
func New(opts Options) (*Engine, error) {
	if opts.Embedder.Dimension() != opts.Index.Dimension() {
		return nil, &domain.ConfigurationError{
			Field:  "embedding dimension",
			Reason: "embedder and vector index dimensions differ",
		}
	}
	if opts.MaxEmbedAttempts <= 0 {
		opts.MaxEmbedAttempts = provider.DefaultMaxAttempts
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Engine{
		mode:        opts.Mode,
		ingestor:    opts.Ingestor,
		embedder:    opts.Embedder,
		idx:         opts.Index,
		retriever:   opts.Retriever,
		composer:    opts.Composer,
		maxAttempts: opts.MaxEmbedAttempts,
		log:         opts.Logger,
		docs:        make(map[uuid.UUID]*domain.Document),
		byName:      make(map[string]uuid.UUID),
	}, nil
}

// Mode reports whether the engine runs in demo or production mode.
func (e *Engine) Mode() Mode { return e.mode }

// Ingest runs a document through the full pipeline. Chunks become
// searchable only after every one of them has been embedded and stored;
// any failure past validation marks the document error and leaves no
// orphan chunks in the index. Re-ingesting a filename retires the
// previous generation once the new one is fully registered.
func (e *Engine) Ingest(ctx context.Context, data []byte, filename string) (*domain.Document, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, &domain.ValidationError{Reason: "filename cannot be empty"}
	}
	if len(data) == 0 {
		return nil, &domain.ValidationError{Reason: "file is empty"}
	}

	doc := &domain.Document{
		ID:         uuid.New(),
		Filename:   filename,
		UploadedAt: time.Now().UTC(),
		ByteSize:   int64(len(data)),
		Status:     domain.StatusPending,
	}
	e.register(doc)
	e.setStatus(doc.ID, domain.StatusProcessing, "")

	res, err := e.ingestor.Ingest(data, filename, doc.ID)
	if err != nil {
		return e.fail(doc.ID, filename, err), err
	}

	entries, err := e.embedChunks(ctx, res.Chunks)
	if err != nil {
		return e.fail(doc.ID, filename, err), err
	}

	if err := e.idx.Upsert(ctx, entries); err != nil {
		// Roll back whatever part of the batch may have landed.
		if delErr := e.idx.DeleteDocument(ctx, doc.ID); delErr != nil {
			e.log.Error("failed to roll back partial upsert", "document", filename, "error", delErr)
		}
		return e.fail(doc.ID, filename, err), err
	}

	e.mu.Lock()
	d := e.docs[doc.ID]
	d.Status = domain.StatusReady
	d.PageCount = res.PageCount
	d.PageErrors = res.PageErrors
	d.ChunkCount = len(res.Chunks)
	prevID, hadPrev := e.byName[filename]
	e.byName[filename] = doc.ID
	if hadPrev {
		delete(e.docs, prevID)
	}
	e.mu.Unlock()

	// Retire the superseded generation only after the new one is live.
	if hadPrev {
		if err := e.idx.DeleteDocument(ctx, prevID); err != nil {
			e.log.Error("failed to retire previous generation", "document", filename, "error", err)
		}
	}

	e.log.Info("document ready",
		"document", filename, "pages", res.PageCount, "page_errors", res.PageErrors, "chunks", len(res.Chunks))
	return e.snapshot(doc.ID), nil
}

// embedChunks embeds every chunk, retrying transient provider failures
// with bounded backoff. Re-embedding a chunk is idempotent, so the retry
// is safe; a chunk that still fails aborts the whole document.
func (e *Engine) embedChunks(ctx context.Context, chunks []domain.Chunk) ([]index.Entry, error) {
	entries := make([]index.Entry, 0, len(chunks))
	for _, chunk := range chunks {
		var vec []float32
		err := provider.Retry(ctx, e.maxAttempts, func(ctx context.Context) error {
			var embedErr error
			vec, embedErr = e.embedder.Embed(ctx, chunk.Text)
			return embedErr
		})
		if err != nil {
			return nil, err
		}
		entries = append(entries, index.Entry{Chunk: chunk, Vector: vec})
	}
	return entries, nil
}

// Query answers a question from whatever documents are currently ready.
// It is read-only and never blocks on in-flight ingestions. Provider
// failures surface as typed errors and are not retried: a visible "try
// again" beats a silent duplicate generation call.
func (e *Engine) Query(ctx context.Context, text string, maxSources int) (*domain.Answer, error) {
	start := time.Now()
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &domain.ValidationError{Reason: "query cannot be empty"}
	}

	contexts, err := e.retriever.Retrieve(ctx, text, maxSources)
	if err != nil {
		return nil, err
	}

	answer, err := e.composer.Compose(ctx, text, contexts)
	if err != nil {
		return nil, err
	}
	answer.ProcessingTime = time.Since(start)

	e.log.Info("query answered",
		"context_used", answer.ContextUsed, "processing_time", answer.ProcessingTime)
	return answer, nil
}

// Documents returns a snapshot of the registry, most recent first.
func (e *Engine) Documents() []domain.Document {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]domain.Document, 0, len(e.docs))
	for _, d := range e.docs {
		out = append(out, *d)
	}
	sortDocuments(out)
	return out
}

// DocumentsCount reports how many documents the registry holds.
func (e *Engine) DocumentsCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.docs)
}

func (e *Engine) register(doc *domain.Document) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.docs[doc.ID] = doc
}

func (e *Engine) setStatus(id uuid.UUID, status domain.DocumentStatus, reason string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if d, ok := e.docs[id]; ok {
		d.Status = status
		d.Error = reason
	}
}

// fail marks the document error and returns its final snapshot. When an
// earlier generation of the same filename is still live, the failed
// attempt is dropped from the registry so the filename keeps a single
// authoritative entry and the live generation stays queryable.
func (e *Engine) fail(id uuid.UUID, filename string, err error) *domain.Document {
	var snap *domain.Document
	e.mu.Lock()
	if d, ok := e.docs[id]; ok {
		d.Status = domain.StatusError
		d.Error = err.Error()
		cp := *d
		snap = &cp
		if prevID, hadPrev := e.byName[filename]; hadPrev && prevID != id {
			delete(e.docs, id)
		}
	}
	e.mu.Unlock()
	e.log.Error("ingestion failed", "document", filename, "error", err)
	return snap
}

// snapshot returns a copy of the registry entry, or nil if the document
// was already retired.
func (e *Engine) snapshot(id uuid.UUID) *domain.Document {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if d, ok := e.docs[id]; ok {
		cp := *d
		return &cp
	}
	return nil
}

func sortDocuments(docs []domain.Document) {
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].UploadedAt.After(docs[j].UploadedAt)
	})
}
