package documents

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/WoldamlakDebasu/Cognidoc/internal/domain"
)

// IngestResult is the outcome of a successful ingestion: chunk records
// ready for embedding plus page-level accounting.
type IngestResult struct {
	PageCount  int
	PageErrors int
	Chunks     []domain.Chunk
}

// Ingestor validates PDF bytes, extracts per-page text and drives the
// splitter, stamping every chunk with provenance and a document-scoped
// monotonic index. Pages are processed in order so chunk indices are
// deterministic regardless of how many documents ingest concurrently.
type Ingestor struct {
	extractor PageExtractor
	splitter  *Splitter
	log       *slog.Logger
}

// NewIngestor creates an ingestor around the given extractor and splitter.
func NewIngestor(extractor PageExtractor, splitter *Splitter, log *slog.Logger) *Ingestor {
	if log == nil {
		log = slog.Default()
	}
	return &Ingestor{extractor: extractor, splitter: splitter, log: log}
}

// Ingest turns raw PDF bytes into chunk records for the given document.
// Partial page failures are tolerated; the call fails only when the file
// is not a valid PDF or no page yields any text.
func (ing *Ingestor) Ingest(data []byte, filename string, docID uuid.UUID) (*IngestResult, error) {
	if len(data) == 0 || !IsPDF(data) {
		return nil, &domain.IngestionError{Filename: filename, Reason: "not a valid PDF"}
	}

	pages, total, pageErrors, err := ing.extractor.ExtractPages(data)
	if err != nil {
		return nil, &domain.IngestionError{Filename: filename, Reason: "text extraction failed", Err: err}
	}
	if len(pages) == 0 {
		return nil, &domain.IngestionError{Filename: filename, Reason: "no extractable text"}
	}

	now := time.Now().UTC()
	var chunks []domain.Chunk
	index := 0
	for _, page := range pages {
		for _, piece := range ing.splitter.Split(page.Text, page.Number) {
			chunks = append(chunks, domain.Chunk{
				ID:          uuid.New(),
				DocumentID:  docID,
				Document:    filename,
				Index:       index,
				Page:        piece.Page,
				Text:        piece.Text,
				StartOffset: piece.Start,
				EndOffset:   piece.End,
				CreatedAt:   now,
			})
			index++
		}
	}

	ing.log.Debug("document ingested",
		"filename", filename, "pages", total, "page_errors", pageErrors, "chunks", len(chunks))

	return &IngestResult{PageCount: total, PageErrors: pageErrors, Chunks: chunks}, nil
}
