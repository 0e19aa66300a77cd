package ingestion_engine

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// IngestText streams a plain-text source through the splitter in bounded
// reads. The accumulation buffer always retains the last chunk, because
// incoming text may still extend it; everything before it is committed as
// soon as its boundary is final. Chunk indices run document-global so keys
// stay unique and reproducible across retries.
func (i *Ingestor) IngestText(ctx context.Context, r io.Reader, docID, filename string) (int, error) {
	br := bufio.NewReaderSize(r, 64*1024)

	var (
		buf   string
		total int
		base  int
	)

	for {
		piece, err := readRunes(br, i.cfg.BatchChars)
		if piece != "" {
			buf += piece
			chunks := i.splitter.Split(buf)
			if len(chunks) > 1 {
				n, werr := i.writer.UpsertBatch(ctx, docID, filename, nil, base, chunks[:len(chunks)-1])
				if werr != nil {
					return total, werr
				}
				total += n
				base += n
				buf = chunks[len(chunks)-1]
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return total, fmt.Errorf("read source: %w", err)
		}
	}

	if strings.TrimSpace(buf) != "" {
		n, err := i.writer.UpsertBatch(ctx, docID, filename, nil, base, i.splitter.Split(buf))
		if err != nil {
			return total, err
		}
		total += n
	}

	if err := i.summarizer.Summarize(ctx, docID, filename, prefixRunes(buf, i.cfg.SummaryChars)); err != nil {
		return total, err
	}
	return total, nil
}

// readRunes reads up to n runes, never splitting a UTF-8 sequence across
// reads. Returns io.EOF alongside whatever was read last.
func readRunes(br *bufio.Reader, n int) (string, error) {
	var b strings.Builder
	for read := 0; read < n; read++ {
		r, _, err := br.ReadRune()
		if err != nil {
			return b.String(), err
		}
		b.WriteRune(r)
	}
	return b.String(), nil
}

func prefixRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
