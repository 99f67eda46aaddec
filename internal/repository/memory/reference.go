package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-service/internal/domain"
)

type referenceRepository struct {
	s *Store
}

func (r *referenceRepository) ListDivisions(context.Context) ([]domain.Division, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return sortedValues(r.s.divisions), nil
}

func (r *referenceRepository) GetDivision(_ context.Context, id int64) (*domain.Division, error) {
	return lookup(r.s, r.s.divisions, id)
}

func (r *referenceRepository) ListChannels(context.Context) ([]domain.Channel, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return sortedValues(r.s.channels), nil
}

func (r *referenceRepository) GetChannel(_ context.Context, id int64) (*domain.Channel, error) {
	return lookup(r.s, r.s.channels, id)
}

func (r *referenceRepository) ListComplaints(context.Context) ([]domain.Complaint, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return sortedValues(r.s.complaints), nil
}

func (r *referenceRepository) GetComplaint(_ context.Context, id int64) (*domain.Complaint, error) {
	return lookup(r.s, r.s.complaints, id)
}

func (r *referenceRepository) ListPriorities(context.Context) ([]domain.Priority, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return sortedValues(r.s.priorities), nil
}

func (r *referenceRepository) GetPriority(_ context.Context, id int64) (*domain.Priority, error) {
	return lookup(r.s, r.s.priorities, id)
}

func (r *referenceRepository) GetPriorityByCode(_ context.Context, code string) (*domain.Priority, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.priorities {
		if strings.EqualFold(p.Code, code) {
			out := p
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *referenceRepository) ListSources(context.Context) ([]domain.Source, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return sortedValues(r.s.sources), nil
}

func (r *referenceRepository) ListTerminals(context.Context) ([]domain.Terminal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return sortedValues(r.s.terminals), nil
}

func (r *referenceRepository) GetTerminal(_ context.Context, id int64) (*domain.Terminal, error) {
	return lookup(r.s, r.s.terminals, id)
}

type policyRepository struct {
	s *Store
}

func (r *policyRepository) GetByID(_ context.Context, id int64) (*domain.ComplaintPolicy, error) {
	return lookup(r.s, r.s.policies, id)
}

func (r *policyRepository) List(context.Context) ([]domain.ComplaintPolicy, error) {
	return r.where(func(domain.ComplaintPolicy) bool { return true }), nil
}

func (r *policyRepository) ListByComplaint(_ context.Context, complaintID int64) ([]domain.ComplaintPolicy, error) {
	return r.where(func(p domain.ComplaintPolicy) bool { return p.ComplaintID == complaintID }), nil
}

func (r *policyRepository) ListByComplaintAndChannel(_ context.Context, complaintID, channelID int64) ([]domain.ComplaintPolicy, error) {
	return r.where(func(p domain.ComplaintPolicy) bool {
		return p.ComplaintID == complaintID && p.ChannelID != nil && *p.ChannelID == channelID
	}), nil
}

func (r *policyRepository) where(pred func(domain.ComplaintPolicy) bool) []domain.ComplaintPolicy {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var result []domain.ComplaintPolicy
	for _, p := range sortedValues(r.s.policies) {
		if pred(p) {
			result = append(result, p)
		}
	}
	return result
}

func lookup[T any](s *Store, items map[int64]T, id int64) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &item, nil
}

// sortedValues returns map values ordered by key, matching ORDER BY id.
func sortedValues[T any](items map[int64]T) []T {
	keys := make([]int64, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		out = append(out, items[k])
	}
	return out
}
