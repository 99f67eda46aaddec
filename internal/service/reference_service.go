package service

import (
	"context"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// ReferenceService serves the read-only lookup tables.
type ReferenceService struct {
	references repository.ReferenceRepository
	policies   repository.PolicyRepository
}

// NewReferenceService constructs the service.
func NewReferenceService(references repository.ReferenceRepository, policies repository.PolicyRepository) *ReferenceService {
	return &ReferenceService{references: references, policies: policies}
}

func (s *ReferenceService) Channels(ctx context.Context) ([]domain.Channel, error) {
	items, err := s.references.ListChannels(ctx)
	return items, apperrors.MapError(err)
}

func (s *ReferenceService) Complaints(ctx context.Context) ([]domain.Complaint, error) {
	items, err := s.references.ListComplaints(ctx)
	return items, apperrors.MapError(err)
}

func (s *ReferenceService) Priorities(ctx context.Context) ([]domain.Priority, error) {
	items, err := s.references.ListPriorities(ctx)
	return items, apperrors.MapError(err)
}

func (s *ReferenceService) Divisions(ctx context.Context) ([]domain.Division, error) {
	items, err := s.references.ListDivisions(ctx)
	return items, apperrors.MapError(err)
}

func (s *ReferenceService) Sources(ctx context.Context) ([]domain.Source, error) {
	items, err := s.references.ListSources(ctx)
	return items, apperrors.MapError(err)
}

func (s *ReferenceService) Terminals(ctx context.Context) ([]domain.Terminal, error) {
	items, err := s.references.ListTerminals(ctx)
	return items, apperrors.MapError(err)
}

// Policies lists complaint policies, optionally narrowed to one complaint category.
func (s *ReferenceService) Policies(ctx context.Context, complaintID *int64) ([]domain.ComplaintPolicy, error) {
	var (
		items []domain.ComplaintPolicy
		err   error
	)
	if complaintID != nil {
		items, err = s.policies.ListByComplaint(ctx, *complaintID)
	} else {
		items, err = s.policies.List(ctx)
	}
	return items, apperrors.MapError(err)
}
