// Package documents turns raw PDF bytes into chunk records ready for
// embedding: per-page text extraction, overlapping fixed-size splitting
// and provenance stamping.
package documents

import (
	"log/slog"
	"strings"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters
// between consecutive chunks of the same page.
const DefaultChunkOverlap = 200

// separators is the split priority: paragraph break, line break, space.
// A window with none of these is an indivisible run and passes through
// whole.
var separators = []string{"\n\n", "\n", " "}

// Piece is a span of page text produced by the splitter. Offsets are
// character positions within the page, so concatenating pieces minus the
// overlap reconstructs the page.
type Piece struct {
	Page  int
	Text  string
	Start int
	End   int
}

// Splitter cuts page text into overlapping pieces. It holds no per-call
// state; Split may be called concurrently.
type Splitter struct {
	chunkSize int
	overlap   int
	log       *slog.Logger
}

// NewSplitter creates a splitter with the given size bounds. Non-positive
// values fall back to the defaults, and overlap is capped below the chunk
// size so the window always advances.
func NewSplitter(chunkSize, overlap int, log *slog.Logger) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultChunkOverlap
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	if log == nil {
		log = slog.Default()
	}
	return &Splitter{chunkSize: chunkSize, overlap: overlap, log: log}
}

// Split cuts pageText into pieces of at most the configured chunk size,
// breaking at the highest-priority separator available inside each window.
// A run of text with no separator at all is emitted whole even when it
// exceeds the size bound, to avoid cutting a semantic unit in half.
func (s *Splitter) Split(pageText string, page int) []Piece {
	if pageText == "" {
		return nil
	}

	var pieces []Piece
	start := 0
	prevEnd := 0
	for start < len(pageText) {
		end := start + s.chunkSize
		if end >= len(pageText) {
			pieces = append(pieces, Piece{Page: page, Text: pageText[start:], Start: start, End: len(pageText)})
			break
		}

		cut := s.findCut(pageText, start, end, prevEnd)
		oversized := cut < 0
		if oversized {
			// Indivisible run: extend to the first separator past the
			// previous piece (or end of text) and emit whole.
			cut = s.runEnd(pageText, start, prevEnd)
			s.log.Warn("oversized chunk emitted whole",
				"page", page, "start", start, "length", cut-start)
		}

		pieces = append(pieces, Piece{Page: page, Text: pageText[start:cut], Start: start, End: cut})
		prevEnd = cut

		next := cut - s.overlap
		if oversized || next <= start {
			// No overlap back into a run that was already emitted whole.
			next = cut
		}
		start = next
	}
	return pieces
}

// findCut returns the best cut position in (start, end], preferring the
// latest occurrence of the highest-priority separator. A cut must land
// past prevEnd, otherwise the piece would be contained in its
// predecessor; a separator whose occurrences all fall inside the overlap
// loses to the next priority. -1 means no separator yields a valid cut.
func (s *Splitter) findCut(text string, start, end, prevEnd int) int {
	window := text[start:end]
	for _, sep := range separators {
		if idx := strings.LastIndex(window, sep); idx > 0 {
			if cut := start + idx + len(sep); cut > prevEnd {
				return cut
			}
		}
	}
	return -1
}

// runEnd returns the end of the indivisible run: the first separator
// ending past prevEnd, or the end of the text.
func (s *Splitter) runEnd(text string, start, prevEnd int) int {
	from := start
	if prevEnd > from {
		from = prevEnd
	}
	rest := text[from:]
	end := len(rest)
	for _, sep := range separators {
		if idx := strings.Index(rest, sep); idx >= 0 && idx+len(sep) < end {
			end = idx + len(sep)
		}
	}
	return from + end
}

// ChunkSize reports the configured maximum chunk size in characters.
func (s *Splitter) ChunkSize() int { return s.chunkSize }

// Overlap reports the configured overlap in characters.
func (s *Splitter) Overlap() int { return s.overlap }
