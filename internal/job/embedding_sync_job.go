// Package job holds the periodic maintenance tasks the scheduler runs.
package job

import (
	"context"

	"github.com/warraqio/warraq/internal/service"
)

// EmbeddingSyncJob embeds chunks whose embedding is still missing, batch by
// batch until the pending set is drained. Ingestion already tries to embed
// inline; this job picks up whatever failed there or was ingested while no
// embedder was configured.
type EmbeddingSyncJob struct {
	documents *service.DocumentService
	batch     int
}

func NewEmbeddingSyncJob(documents *service.DocumentService, batch int) *EmbeddingSyncJob {
	if batch <= 0 {
		batch = 32
	}
	return &EmbeddingSyncJob{documents: documents, batch: batch}
}

func (j *EmbeddingSyncJob) Name() string {
	return "embedding_sync"
}

func (j *EmbeddingSyncJob) Run(ctx context.Context) error {
	if j.documents == nil {
		return nil
	}
	for {
		n, err := j.documents.EmbedPending(ctx, j.batch)
		if err != nil {
			return err
		}
		// A short batch means the pending set is exhausted. Failed chunks
		// do not count as embedded, so they cannot loop forever here.
		if n < j.batch {
			return nil
		}
	}
}
