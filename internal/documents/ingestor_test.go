package documents

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WoldamlakDebasu/Cognidoc/internal/domain"
)

// fakeExtractor implements PageExtractor without touching MuPDF.
type fakeExtractor struct {
	pages      []Page
	total      int
	pageErrors int
	err        error
}

func (f *fakeExtractor) ExtractPages(_ []byte) ([]Page, int, int, error) {
	return f.pages, f.total, f.pageErrors, f.err
}

var pdfBytes = []byte("%PDF-1.4 fake body")

func TestIngestStampsProvenance(t *testing.T) {
	ext := &fakeExtractor{
		pages: []Page{
			{Number: 1, Text: "First page text."},
			{Number: 3, Text: "Third page text."},
		},
		total: 3,
	}
	ing := NewIngestor(ext, NewSplitter(1000, 200, nil), nil)
	docID := uuid.New()

	res, err := ing.Ingest(pdfBytes, "report.pdf", docID)

	require.NoError(t, err)
	assert.Equal(t, 3, res.PageCount)
	assert.Equal(t, 0, res.PageErrors)
	require.Len(t, res.Chunks, 2)
	for i, chunk := range res.Chunks {
		assert.Equal(t, docID, chunk.DocumentID)
		assert.Equal(t, "report.pdf", chunk.Document)
		assert.Equal(t, i, chunk.Index)
		assert.NotEqual(t, uuid.Nil, chunk.ID)
		assert.False(t, chunk.CreatedAt.IsZero())
	}
	assert.Equal(t, 1, res.Chunks[0].Page)
	assert.Equal(t, 3, res.Chunks[1].Page)
}

func TestIngestChunkIndicesSpanPages(t *testing.T) {
	longPage := ""
	for i := 0; i < 100; i++ {
		longPage += "some sentence about the subject matter of this document. "
	}
	ext := &fakeExtractor{
		pages: []Page{
			{Number: 1, Text: longPage},
			{Number: 2, Text: "Short second page."},
		},
		total: 2,
	}
	ing := NewIngestor(ext, NewSplitter(500, 100, nil), nil)

	res, err := ing.Ingest(pdfBytes, "long.pdf", uuid.New())

	require.NoError(t, err)
	require.Greater(t, len(res.Chunks), 2)
	for i, chunk := range res.Chunks {
		assert.Equal(t, i, chunk.Index, "indices must be document-scoped and monotonic")
	}
	last := res.Chunks[len(res.Chunks)-1]
	assert.Equal(t, 2, last.Page)
}

func TestIngestRejectsNonPDF(t *testing.T) {
	ing := NewIngestor(&fakeExtractor{}, NewSplitter(1000, 200, nil), nil)

	_, err := ing.Ingest([]byte("just some text"), "fake.pdf", uuid.New())

	var ingErr *domain.IngestionError
	require.ErrorAs(t, err, &ingErr)
	assert.Equal(t, "fake.pdf", ingErr.Filename)
}

func TestIngestRejectsEmptyBytes(t *testing.T) {
	ing := NewIngestor(&fakeExtractor{}, NewSplitter(1000, 200, nil), nil)

	_, err := ing.Ingest(nil, "empty.pdf", uuid.New())

	var ingErr *domain.IngestionError
	require.ErrorAs(t, err, &ingErr)
}

func TestIngestExtractionFailure(t *testing.T) {
	ext := &fakeExtractor{err: errors.New("broken xref table")}
	ing := NewIngestor(ext, NewSplitter(1000, 200, nil), nil)

	_, err := ing.Ingest(pdfBytes, "broken.pdf", uuid.New())

	var ingErr *domain.IngestionError
	require.ErrorAs(t, err, &ingErr)
	assert.ErrorContains(t, err, "broken xref table")
}

func TestIngestNoExtractableText(t *testing.T) {
	ext := &fakeExtractor{pages: nil, total: 5}
	ing := NewIngestor(ext, NewSplitter(1000, 200, nil), nil)

	_, err := ing.Ingest(pdfBytes, "scanned.pdf", uuid.New())

	var ingErr *domain.IngestionError
	require.ErrorAs(t, err, &ingErr)
}

func TestIngestToleratesPartialPageFailures(t *testing.T) {
	ext := &fakeExtractor{
		pages:      []Page{{Number: 2, Text: "The only readable page."}},
		total:      4,
		pageErrors: 3,
	}
	ing := NewIngestor(ext, NewSplitter(1000, 200, nil), nil)

	res, err := ing.Ingest(pdfBytes, "partial.pdf", uuid.New())

	require.NoError(t, err)
	assert.Equal(t, 3, res.PageErrors)
	require.Len(t, res.Chunks, 1)
	assert.Equal(t, 2, res.Chunks[0].Page)
}

func TestIsPDF(t *testing.T) {
	assert.True(t, IsPDF([]byte("%PDF-1.7\n...")))
	assert.False(t, IsPDF([]byte("PK\x03\x04 zip header")))
	assert.False(t, IsPDF(nil))
}
