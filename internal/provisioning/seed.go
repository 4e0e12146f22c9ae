package provisioning

import (
	"context"
	"time"

	"github.com/imamik/esprov/internal/platform/elastic"
	"github.com/imamik/esprov/internal/util/async"
)

// SeedDocuments writes each document under its id. Documents are written
// independently: one failure never stops the others. The result slice is in
// input order and each result is named by its document id.
func (p *Provisioner) SeedDocuments(ctx context.Context, index string, docs []Document) []ReconcileResult {
	results := async.Ordered(ctx, p.opts.SeedConcurrency, len(docs), func(ctx context.Context, i int) ReconcileResult {
		start := time.Now()
		r := p.seedDocument(ctx, index, docs[i])
		p.opts.Metrics.recordResult(r, time.Since(start))
		return r
	})

	for i, r := range results {
		LogResult(p.observer, r)
		p.observer.Progress(phaseDocuments, i+1, len(results))
	}
	return results
}

func (p *Provisioner) seedDocument(ctx context.Context, index string, doc Document) ReconcileResult {
	t := newTracker(KindDocument, doc.ID)

	if err := validateDocument(doc); err != nil {
		return t.fail("invalid document", err)
	}

	if err := t.to(StateCreating); err != nil {
		return t.fail("illegal transition", err)
	}
	res, err := p.api.IndexDocument(ctx, index, doc.ID, doc.Fields)
	if err != nil {
		return t.fail("index failed", err)
	}
	if err := t.to(StatePresent); err != nil {
		return t.fail("illegal transition", err)
	}

	switch res {
	case elastic.DocumentCreated:
		return Created(KindDocument, doc.ID)
	case elastic.DocumentUpdated:
		return AlreadyExists(KindDocument, doc.ID, Updated)
	default:
		// "noop" and anything newer leave the stored document as it was
		return AlreadyExists(KindDocument, doc.ID, Skipped)
	}
}
