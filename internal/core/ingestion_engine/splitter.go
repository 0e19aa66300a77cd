package ingestion_engine

import (
	"strings"
	"unicode"
)

// boundaryWindow is how far back from the size limit Split will look for a
// whitespace break before cutting mid-word.
const boundaryWindow = 100

// Splitter cuts text into chunks of at most Size runes where consecutive
// chunks share an Overlap-rune tail. It is pure and deterministic.
//
// Every chunk is an exact substring of the input and every boundary decision
// depends only on the runes from the current chunk start forward. That
// property is what lets the streaming text path re-split its accumulation
// buffer and still land on the same boundaries as one pass over the whole
// document.
type Splitter struct {
	Size    int
	Overlap int
}

// Split returns the ordered chunk sequence for text, or nil for empty or
// whitespace-only input.
func (s Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	size := s.Size
	if size <= 0 {
		size = 900
	}
	overlap := s.Overlap
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	window := boundaryWindow
	if window > size-overlap-1 {
		// Keep forward progress: the cut may never move the next start
		// behind the current one.
		window = size - overlap - 1
	}

	runes := []rune(text)
	var chunks []string
	start := 0
	for {
		if len(runes)-start <= size {
			chunks = append(chunks, string(runes[start:]))
			return chunks
		}

		end := start + size
		cut := end
		for j := end - 1; j > end-1-window; j-- {
			if unicode.IsSpace(runes[j]) {
				cut = j + 1
				break
			}
		}

		chunks = append(chunks, string(runes[start:cut]))
		start = cut - overlap
	}
}
