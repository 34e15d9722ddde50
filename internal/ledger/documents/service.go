package documents

import "context"

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetOrCreate resolves the stable internal id for a (type, reference) pair.
func (s *Service) GetOrCreate(ctx context.Context, ledgerID int64, doc Document) (Record, error) {
	return s.repo.GetOrCreate(ctx, ledgerID, doc)
}

// Get fetches a document by natural key.
func (s *Service) Get(ctx context.Context, ledgerID int64, ref Ref) (Record, error) {
	return s.repo.Get(ctx, ledgerID, ref)
}
