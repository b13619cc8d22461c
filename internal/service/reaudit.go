package service

import (
	"context"
	"fmt"
	"log"

	"billaudit/internal/audit"
	"billaudit/internal/domain"
	"billaudit/internal/port"
)

const reauditBatchSize = 100

// ReauditSummary counts the outcome of a re-audit run.
type ReauditSummary struct {
	Scanned int
	Updated int
	// NowBlocking counts stored documents the current policies would reject.
	NowBlocking int
	Failed      int
}

// Reauditor re-evaluates stored image documents against the current policies.
type Reauditor struct {
	docRepo    port.DocumentRepository
	policyRepo port.AuditPolicyRepository
	extractor  *audit.Extractor
	engine     *audit.Engine
}

// NewReauditor creates a Reauditor. A nil extractor or engine gets the defaults.
func NewReauditor(docRepo port.DocumentRepository, policyRepo port.AuditPolicyRepository, extractor *audit.Extractor, engine *audit.Engine) *Reauditor {
	if extractor == nil {
		extractor = audit.NewExtractor()
	}
	if engine == nil {
		engine = audit.NewEngine()
	}
	return &Reauditor{docRepo: docRepo, policyRepo: policyRepo, extractor: extractor, engine: engine}
}

// Run audits every stored image document with one policy snapshot and
// writes the new results back. Documents are never deleted; ones that would
// now be rejected are only counted.
func (r *Reauditor) Run(ctx context.Context, dryRun bool) (*ReauditSummary, error) {
	policies, err := r.policyRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading policies: %w", err)
	}

	summary := &ReauditSummary{}
	for offset := 0; ; offset += reauditBatchSize {
		docs, total, err := r.docRepo.List(ctx, offset, reauditBatchSize)
		if err != nil {
			return summary, fmt.Errorf("listing documents at offset %d: %w", offset, err)
		}

		for i := range docs {
			doc := &docs[i]
			if doc.FileType != domain.FileTypeImage {
				continue
			}
			summary.Scanned++

			rep := audit.BuildReport(r.extractor, r.engine, policies, doc.AnalysisText)
			doc.FormatValid = &rep.Format.Accepted
			doc.FormatReason = &rep.Format.Reason
			doc.AuditResult = &rep.Result
			if !audit.Decide(doc.AuditResult).Accept {
				summary.NowBlocking++
			}

			if dryRun {
				continue
			}
			if err := r.docRepo.UpdateAudit(ctx, doc); err != nil {
				log.Printf("Reauditor.Run: failed to update audit for document %s: %v", doc.ID, err)
				summary.Failed++
				continue
			}
			summary.Updated++
		}

		if len(docs) < reauditBatchSize || offset+len(docs) >= total {
			break
		}
	}
	return summary, nil
}
