package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"sync/atomic"
	"time"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/interfaces"
	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/types"
	"github.com/RafieAmandio/Teacher-RAG/pkg/service/chunker"
	"github.com/RafieAmandio/Teacher-RAG/pkg/service/extractor"
	"github.com/RafieAmandio/Teacher-RAG/pkg/service/jobs"
	"github.com/RafieAmandio/Teacher-RAG/pkg/utils/async"
	"github.com/RafieAmandio/Teacher-RAG/pkg/utils/logging"
	"github.com/RafieAmandio/Teacher-RAG/pkg/utils/safe"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"
)

// Progress checkpoints reported while a job is processing
const (
	progressExtracted = 10
	progressChunked   = 20
	progressPersisted = 30
	progressEmbedded  = 95
)

// UploadKeyPrefix is where uploads received through Upload are stored
const UploadKeyPrefix = "uploads/"

// AcceptInput starts ingestion of a file that is already in storage
type AcceptInput struct {
	CallerID string
	AgentID  model.AgentID
	Title    string
	FileKey  string
	// FileName selects the parser. Defaults to the base name of FileKey.
	FileName string
}

func (in *AcceptInput) validate() error {
	if in.CallerID == "" {
		return validationError("caller ID is required")
	}
	if in.AgentID == "" {
		return validationError("agent ID is required")
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return validationError("title is required", goerr.V(AgentIDKey, in.AgentID))
	}
	if in.FileKey == "" || model.JobIDFromFileKey(in.FileKey) == "" {
		return validationError("file key is invalid", goerr.V("file_key", in.FileKey))
	}
	if in.FileName == "" {
		in.FileName = path.Base(in.FileKey)
	}
	return nil
}

// UploadInput stores a file and starts its ingestion
type UploadInput struct {
	CallerID string
	AgentID  model.AgentID
	Title    string
	FileName string
	Body     io.Reader
}

// IngestionUseCase turns uploaded files into searchable chunk vectors in the background
type IngestionUseCase struct {
	repo      interfaces.Repository
	vectors   interfaces.VectorStore
	embedder  interfaces.Embedder
	storage   interfaces.FileStorage
	extractor interfaces.TextExtractor
	registry  *jobs.Registry
	chunker   *chunker.Chunker
	config    PipelineConfig
	status    *StatusResolver
	group     async.Group
}

func NewIngestionUseCase(
	repo interfaces.Repository,
	vectors interfaces.VectorStore,
	embedder interfaces.Embedder,
	storage interfaces.FileStorage,
	extractor interfaces.TextExtractor,
	registry *jobs.Registry,
	chunker *chunker.Chunker,
	config PipelineConfig,
) *IngestionUseCase {
	return &IngestionUseCase{
		repo:      repo,
		vectors:   vectors,
		embedder:  embedder,
		storage:   storage,
		extractor: extractor,
		registry:  registry,
		chunker:   chunker,
		config:    config.normalize(),
		status: NewStatusResolver(
			NewRegistryStatus(registry),
			NewDocumentStatus(repo.Document()),
		),
	}
}

func (uc *IngestionUseCase) ready() error {
	if uc.storage == nil {
		return goerr.Wrap(ErrNotConfigured, "file storage is not configured")
	}
	if uc.embedder == nil {
		return goerr.Wrap(ErrNotConfigured, "embedder is not configured")
	}
	return nil
}

// Upload validates the request, stores body and starts ingestion.
// Nothing is stored when validation fails.
func (uc *IngestionUseCase) Upload(ctx context.Context, in UploadInput) (*model.IngestionJob, error) {
	if in.Body == nil {
		return nil, validationError("file is required")
	}
	name := path.Base(strings.ReplaceAll(in.FileName, "\\", "/"))
	if name == "." || name == "/" || !extractor.IsSupported(name) {
		return nil, validationError("unsupported file type",
			goerr.V("file_name", in.FileName),
			goerr.V("supported", extractor.SupportedExtensions))
	}

	key := UploadKeyPrefix + uuid.New().String() + strings.ToLower(path.Ext(name))
	accept := AcceptInput{
		CallerID: in.CallerID,
		AgentID:  in.AgentID,
		Title:    in.Title,
		FileKey:  key,
		FileName: name,
	}
	if err := accept.validate(); err != nil {
		return nil, err
	}
	if err := uc.ready(); err != nil {
		return nil, err
	}
	if _, err := ownedAgent(ctx, uc.repo, accept.CallerID, accept.AgentID); err != nil {
		return nil, err
	}

	if err := uc.storage.Put(ctx, key, in.Body); err != nil {
		return nil, goerr.Wrap(err, "failed to store upload", goerr.V("file_key", key))
	}

	job, err := uc.start(ctx, accept)
	if err != nil {
		if delErr := uc.storage.Delete(ctx, key); delErr != nil {
			logging.From(ctx).Warn("failed to remove rejected upload", "file_key", key, "error", delErr)
		}
		return nil, err
	}
	return job, nil
}

// Accept validates the request, registers a processing job and returns it
// immediately. Processing continues in the background.
func (uc *IngestionUseCase) Accept(ctx context.Context, in AcceptInput) (*model.IngestionJob, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := uc.ready(); err != nil {
		return nil, err
	}
	if _, err := ownedAgent(ctx, uc.repo, in.CallerID, in.AgentID); err != nil {
		return nil, err
	}

	return uc.start(ctx, in)
}

func (uc *IngestionUseCase) start(ctx context.Context, in AcceptInput) (*model.IngestionJob, error) {
	job, err := uc.registry.Create(&model.IngestionJob{
		ID:       model.JobIDFromFileKey(in.FileKey),
		AgentID:  in.AgentID,
		Title:    in.Title,
		FileKey:  in.FileKey,
		FileName: in.FileName,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to register ingestion job", goerr.V("file_key", in.FileKey))
	}

	logging.From(ctx).Info("ingestion accepted",
		"job_id", job.ID,
		"agent_id", job.AgentID,
		"file_name", job.FileName)

	uc.group.Dispatch(ctx, func(ctx context.Context) error {
		uc.process(ctx, job)
		return nil
	})

	return job, nil
}

// Status reports the state of a job, falling back to the document store once
// the job has left the registry
func (uc *IngestionUseCase) Status(ctx context.Context, id string) (*model.JobStatusView, error) {
	if id == "" {
		return nil, validationError("job ID is required")
	}
	return uc.status.Resolve(ctx, id)
}

// Wait blocks until every dispatched ingestion finished or ctx is done
func (uc *IngestionUseCase) Wait(ctx context.Context) error {
	return uc.group.Wait(ctx)
}

// ingestionRun carries the state of one background run
type ingestionRun struct {
	job *model.IngestionJob
	doc *model.Document
}

func (uc *IngestionUseCase) process(ctx context.Context, job *model.IngestionJob) {
	logger := logging.From(ctx).With("job_id", job.ID, "agent_id", job.AgentID)
	ctx = logging.With(ctx, logger)
	run := &ingestionRun{job: job}
	started := time.Now()

	defer func() {
		if r := recover(); r != nil {
			uc.fail(ctx, run, goerr.New("ingestion panicked", goerr.V("panic", fmt.Sprint(r))))
		}
	}()

	if err := uc.run(ctx, run); err != nil {
		uc.fail(ctx, run, err)
		return
	}

	if err := uc.registry.Complete(job.ID, run.doc.ID); err != nil {
		logger.Warn("failed to mark job completed", "error", err)
	}
	logger.Info("ingestion completed",
		"document_id", run.doc.ID,
		"chunks", run.doc.ChunkCount,
		"duration", time.Since(started).String())
}

func (uc *IngestionUseCase) run(ctx context.Context, run *ingestionRun) error {
	job := run.job

	text, err := uc.extract(ctx, job)
	if err != nil {
		return &model.PipelineError{Step: types.PipelineStepExtract, Err: err}
	}
	uc.progress(ctx, job.ID, progressExtracted)

	chunks := uc.chunker.Split(text)
	if len(chunks) == 0 {
		return &model.PipelineError{Step: types.PipelineStepChunk, Err: goerr.New("document produced no chunks")}
	}
	uc.progress(ctx, job.ID, progressChunked)

	doc, err := uc.repo.Document().Create(ctx, &model.Document{
		ID:            documentIDFor(job.ID),
		AgentID:       job.AgentID,
		Title:         job.Title,
		FileName:      job.FileName,
		Content:       text,
		VectorGroupID: model.NewVectorGroupID(),
		ChunkCount:    len(chunks),
	})
	if err != nil {
		return &model.PipelineError{Step: types.PipelineStepPersist, Err: goerr.Wrap(err, "failed to create document")}
	}
	run.doc = doc
	uc.progress(ctx, job.ID, progressPersisted)

	if err := uc.embed(ctx, run, chunks); err != nil {
		return &model.PipelineError{Step: types.PipelineStepEmbed, Err: err}
	}
	if err := uc.repo.Document().MarkReady(ctx, doc.ID); err != nil {
		return &model.PipelineError{Step: types.PipelineStepPersist, Err: goerr.Wrap(err, "failed to mark document ready")}
	}
	uc.progress(ctx, job.ID, progressEmbedded)

	// the document is complete at this point, a leftover upload is only logged
	if err := uc.storage.Delete(ctx, job.FileKey); err != nil {
		logging.From(ctx).Warn("failed to delete upload after ingestion",
			"step", types.PipelineStepCleanup,
			"file_key", job.FileKey,
			"error", err)
	}

	return nil
}

func (uc *IngestionUseCase) extract(ctx context.Context, job *model.IngestionJob) (string, error) {
	r, err := uc.storage.Open(ctx, job.FileKey)
	if err != nil {
		return "", goerr.Wrap(err, "failed to open upload", goerr.V("file_key", job.FileKey))
	}
	defer safe.Close(ctx, r)

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", goerr.Wrap(err, "failed to read upload", goerr.V("file_key", job.FileKey))
	}

	text, err := uc.extractor.Extract(ctx, job.FileName, buf.Bytes())
	if err != nil {
		return "", err
	}
	return text, nil
}

// embed stores one vector per chunk. Chunks run sequentially unless
// EmbedConcurrency allows a bounded fan-out. The first failure stops new work.
func (uc *IngestionUseCase) embed(ctx context.Context, run *ingestionRun, chunks []string) error {
	doc := run.doc
	total := len(chunks)
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.config.EmbedConcurrency)

	for i, chunk := range chunks {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = goerr.New("chunk embedding panicked",
						goerr.V("chunk_index", i),
						goerr.V("panic", fmt.Sprint(r)))
				}
			}()
			if err := gctx.Err(); err != nil {
				return err
			}

			vector, err := uc.embedWithRetry(gctx, chunk)
			if err != nil {
				return goerr.Wrap(err, "failed to embed chunk", goerr.V("chunk_index", i))
			}

			record := &model.VectorRecord{
				ID:     model.ChunkVectorID(doc.VectorGroupID, i),
				Vector: vector,
				Metadata: model.VectorMetadata{
					DocumentID: doc.ID,
					AgentID:    doc.AgentID,
					Content:    chunk,
					Title:      doc.Title,
					ChunkIndex: i,
				},
			}
			if err := uc.vectors.Upsert(gctx, record); err != nil {
				return goerr.Wrap(err, "failed to store chunk vector",
					goerr.V("chunk_index", i),
					goerr.V("vector_id", record.ID))
			}

			n := done.Add(1)
			uc.progress(ctx, run.job.ID, progressPersisted+int(n)*(progressEmbedded-progressPersisted)/total)
			return nil
		})
	}

	return g.Wait()
}

// embedWithRetry retries transient provider failures with linear backoff
func (uc *IngestionUseCase) embedWithRetry(ctx context.Context, text string) ([]float32, error) {
	for attempt := 0; ; attempt++ {
		vector, err := uc.embedder.Embed(ctx, text)
		if err == nil {
			return vector, nil
		}
		if !model.IsTransient(err) || attempt >= uc.config.EmbedMaxRetries {
			return nil, err
		}

		wait := uc.config.EmbedRetryBackoff * time.Duration(attempt+1)
		logging.From(ctx).Warn("retrying embedding after transient failure",
			"attempt", attempt+1,
			"wait", wait.String(),
			"error", err)

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, goerr.Wrap(ctx.Err(), "embedding retry interrupted")
		}
	}
}

func (uc *IngestionUseCase) progress(ctx context.Context, id model.JobID, value int) {
	if err := uc.registry.UpdateProgress(id, value); err != nil {
		logging.From(ctx).Warn("failed to update job progress", "progress", value, "error", err)
	}
}

func (uc *IngestionUseCase) fail(ctx context.Context, run *ingestionRun, err error) {
	logger := logging.From(ctx)
	logger.Error("ingestion failed", "error", err)

	if markErr := uc.registry.Fail(run.job.ID, err.Error()); markErr != nil {
		logger.Warn("failed to mark job failed", "error", markErr)
	}

	if uc.config.RollbackOnFailure && run.doc != nil {
		uc.rollback(ctx, run.doc)
	}
}

// rollback removes what a failed run persisted. Failures are only logged.
func (uc *IngestionUseCase) rollback(ctx context.Context, doc *model.Document) {
	logger := logging.From(ctx).With("document_id", doc.ID)

	if err := uc.vectors.DeleteByFilter(ctx, model.VectorFilter{DocumentID: doc.ID}); err != nil {
		logger.Warn("failed to roll back chunk vectors", "error", err)
	}
	if err := uc.repo.Document().Delete(ctx, doc.ID); err != nil && !isNotFound(err) {
		logger.Warn("failed to roll back document", "error", err)
	}
	logger.Info("rolled back failed ingestion")
}

// documentIDFor reuses a UUID job ID as the document ID so a status read by
// job ID still resolves after the job left the registry. Only ready documents
// resolve as completed.
func documentIDFor(id model.JobID) model.DocumentID {
	if _, err := uuid.Parse(id.String()); err == nil {
		return model.DocumentID(id)
	}
	return model.NewDocumentID()
}
