package ingestion_engine

// IngestConfig tunes the streaming pipeline.
//
// ChunkSize:    target runes per chunk.
// ChunkOverlap: runes shared between consecutive chunks.
// BatchChars:   how many runes the text path reads per pass.
// SummaryChars: how much of the final buffer feeds the summarizer.
type IngestConfig struct {
	ChunkSize    int
	ChunkOverlap int
	BatchChars   int
	SummaryChars int
}

// ProgressObserver receives one notification per processed PDF page so the
// caller can surface job progress without the pipeline knowing about jobs.
type ProgressObserver interface {
	OnPage(page, totalPages, chunksIndexed int)
}

// ProgressFunc adapts a plain function to ProgressObserver.
type ProgressFunc func(page, totalPages, chunksIndexed int)

func (f ProgressFunc) OnPage(page, totalPages, chunksIndexed int) {
	f(page, totalPages, chunksIndexed)
}

// Ingestor drives the splitter over whole documents without holding them in
// memory at once, committing chunks through the ChunkWriter as it goes.
type Ingestor struct {
	writer     *ChunkWriter
	summarizer *Summarizer
	splitter   Splitter
	cfg        IngestConfig
}

func NewIngestor(writer *ChunkWriter, summarizer *Summarizer, cfg IngestConfig) *Ingestor {
	if cfg.BatchChars <= 0 {
		cfg.BatchChars = 120_000
	}
	if cfg.SummaryChars <= 0 {
		cfg.SummaryChars = 4000
	}
	return &Ingestor{
		writer:     writer,
		summarizer: summarizer,
		splitter:   Splitter{Size: cfg.ChunkSize, Overlap: cfg.ChunkOverlap},
		cfg:        cfg,
	}
}
