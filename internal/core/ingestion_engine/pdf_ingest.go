package ingestion_engine

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

// introPages is how many leading pages feed the document summary.
const introPages = 2

type pageText struct {
	num  int
	text string
}

// IngestPDF processes a document page by page as a two-stage pipeline:
// one goroutine extracts page text, the other splits and commits it. Chunks
// never span pages and carry page-local indices. After every page the
// observer is notified so job progress stays current, and once all pages are
// committed the intro text of the first pages drives the summarizer.
//
// Any extraction or commit error aborts the whole document; chunks already
// committed stay in the store, which is safe because a retry reproduces the
// same keys and overwrites them.
func (i *Ingestor) IngestPDF(ctx context.Context, src PageSource, docID, filename string, obs ProgressObserver) (int, error) {
	totalPages := src.NumPages()

	g, gctx := errgroup.WithContext(ctx)
	pages := make(chan pageText, 4)

	g.Go(func() error {
		defer close(pages)
		for n := 1; n <= totalPages; n++ {
			text, err := src.PageText(n)
			if err != nil {
				return fmt.Errorf("extract page %d: %w", n, err)
			}
			select {
			case pages <- pageText{num: n, text: strings.TrimSpace(text)}:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	var (
		total int
		intro strings.Builder
	)
	g.Go(func() error {
		for p := range pages {
			if p.num <= introPages {
				intro.WriteString(p.text)
				intro.WriteString("\n")
			}
			if p.text != "" {
				page := p.num
				n, err := i.writer.UpsertBatch(gctx, docID, filename, &page, 0, i.splitter.Split(p.text))
				if err != nil {
					return err
				}
				total += n
			}
			if obs != nil {
				obs.OnPage(p.num, totalPages, total)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return total, err
	}

	if err := i.summarizer.Summarize(ctx, docID, filename, intro.String()); err != nil {
		return total, err
	}
	return total, nil
}
