package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/markdave123-py/localrag/internal/core"
	"github.com/markdave123-py/localrag/internal/core/ingestion_engine"
	"github.com/markdave123-py/localrag/internal/core/jobs"
	"github.com/markdave123-py/localrag/internal/models"
)

// pdfJobTimeout bounds one background ingestion so a hung upstream call can
// never pin a job in "processing" forever.
const pdfJobTimeout = 30 * time.Minute

// IngestService accepts uploads, persists the raw bytes in the object store
// and drives the ingestion pipeline: synchronously for plain text, as a
// background job per accepted PDF.
type IngestService struct {
	objects  core.ObjectStore
	store    core.ChunkStore
	ingestor *ingestion_engine.Ingestor
	opener   ingestion_engine.PDFOpener
	jobs     *jobs.Manager
}

func NewIngestService(objects core.ObjectStore, store core.ChunkStore, ingestor *ingestion_engine.Ingestor, opener ingestion_engine.PDFOpener, jobMgr *jobs.Manager) *IngestService {
	return &IngestService{
		objects:  objects,
		store:    store,
		ingestor: ingestor,
		opener:   opener,
		jobs:     jobMgr,
	}
}

// IngestText stores the upload under "{doc_id}.txt" and ingests it within
// the calling request. On ingestion failure the stored object is removed;
// any chunks already committed stay, since a retry overwrites their keys.
func (s *IngestService) IngestText(ctx context.Context, r io.Reader, filename string) (string, int, error) {
	docID := uuid.NewString()
	key := docID + ".txt"

	if err := s.objects.Save(ctx, key, r, "text/plain"); err != nil {
		return "", 0, fmt.Errorf("store upload: %w", err)
	}

	src, err := s.objects.Open(ctx, key)
	if err != nil {
		return "", 0, fmt.Errorf("reopen upload: %w", err)
	}
	defer src.Close()

	chunks, err := s.ingestor.IngestText(ctx, src, docID, filename)
	if err != nil {
		_ = s.objects.Delete(ctx, key)
		return "", 0, err
	}
	return docID, chunks, nil
}

// EnqueuePDF stores the upload under "{doc_id}.pdf", creates a queued job
// and hands the rest to a dedicated background worker. The caller gets the
// job and document ids immediately.
func (s *IngestService) EnqueuePDF(ctx context.Context, r io.Reader, filename string) (jobID, docID string, err error) {
	docID = uuid.NewString()
	key := docID + ".pdf"

	if err := s.objects.Save(ctx, key, r, "application/pdf"); err != nil {
		return "", "", fmt.Errorf("store upload: %w", err)
	}

	jobID = s.jobs.Create(docID, filename)
	go s.runPDFJob(jobID, docID, filename)

	return jobID, docID, nil
}

// runPDFJob owns one job from start to its terminal state. Every failure
// path ends in Fail, so no error can leave the job stuck in "processing".
func (s *IngestService) runPDFJob(jobID, docID, filename string) {
	ctx, cancel := context.WithTimeout(context.Background(), pdfJobTimeout)
	defer cancel()

	if err := s.jobs.Start(jobID); err != nil {
		log.Printf("IngestService: job %s not startable: %v", jobID, err)
		return
	}

	chunks, err := s.processPDF(ctx, jobID, docID, filename)
	if err != nil {
		log.Printf("IngestService: job %s failed: %v", jobID, err)
		s.jobs.Fail(jobID, err.Error())
		return
	}

	s.jobs.Complete(jobID, models.JobResult{
		DocID:         docID,
		Filename:      filename,
		ChunksCreated: chunks,
	})
	log.Printf("IngestService: job %s done, %d chunks", jobID, chunks)
}

func (s *IngestService) processPDF(ctx context.Context, jobID, docID, filename string) (int, error) {
	rc, err := s.objects.Open(ctx, docID+".pdf")
	if err != nil {
		return 0, fmt.Errorf("open stored pdf: %w", err)
	}
	defer rc.Close()

	// The PDF reader needs a seekable file, so spool the stored object to a
	// temp path first.
	tmp, err := os.CreateTemp("", "ingest-*.pdf")
	if err != nil {
		return 0, fmt.Errorf("create temp pdf: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, rc); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("spool pdf: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("close temp pdf: %w", err)
	}

	src, err := s.opener.Open(tmp.Name())
	if err != nil {
		return 0, err
	}
	defer src.Close()

	obs := ingestion_engine.ProgressFunc(func(page, totalPages, chunksIndexed int) {
		s.jobs.UpdateProgress(jobID, page, totalPages, chunksIndexed)
	})

	return s.ingestor.IngestPDF(ctx, src, docID, filename, obs)
}

// ListDocuments returns one entry per doc_id known to the chunk store.
func (s *IngestService) ListDocuments(ctx context.Context) ([]models.DocumentRef, error) {
	return s.store.ListDocuments(ctx)
}

// OpenPDF streams the raw stored PDF for a document, or core.ErrNotFound.
func (s *IngestService) OpenPDF(ctx context.Context, docID string) (io.ReadCloser, error) {
	return s.objects.Open(ctx, docID+".pdf")
}
