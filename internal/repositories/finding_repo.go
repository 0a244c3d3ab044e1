package repositories

import (
	"context"

	"sstcore/internal/models"
	"sstcore/internal/store"
)

type FindingRepository interface {
	Create(ctx context.Context, h store.Handle, finding *models.Finding) error
	ListNewestFirst(ctx context.Context, h store.Handle) ([]models.Finding, error)
}

type findingRepo struct {
	store store.Store
}

func NewFindingRepo(s store.Store) FindingRepository {
	return &findingRepo{store: s}
}

func (r *findingRepo) Create(ctx context.Context, h store.Handle, finding *models.Finding) error {
	id, err := r.store.Append(ctx, h, store.TableFindings, finding)
	if err != nil {
		return err
	}
	finding.ID = id
	return nil
}

func (r *findingRepo) ListNewestFirst(ctx context.Context, h store.Handle) ([]models.Finding, error) {
	rows, err := r.store.List(ctx, h, store.TableFindings, store.Filter{Descending: true})
	if err != nil {
		return nil, err
	}

	findings := make([]models.Finding, 0, len(rows))
	for i := range rows {
		var finding models.Finding
		if err := rows[i].Decode(&finding); err != nil {
			return nil, err
		}
		finding.ID = rows[i].ID
		findings = append(findings, finding)
	}
	return findings, nil
}
