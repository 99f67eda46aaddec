package service

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
)

// PolicyResolver selects the complaint policy that governs a ticket's SLA and escalation target.
type PolicyResolver struct {
	policies repository.PolicyRepository
	keywords []string
	logger   *zap.Logger
}

// NewPolicyResolver builds a resolver. keywords mark a policy description as specific.
func NewPolicyResolver(policies repository.PolicyRepository, keywords []string, logger *zap.Logger) *PolicyResolver {
	upper := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.ToUpper(strings.TrimSpace(kw)); kw != "" {
			upper = append(upper, kw)
		}
	}
	return &PolicyResolver{policies: policies, keywords: upper, logger: logger.Named("policy_resolver")}
}

// Resolve returns the policy for complaintID and channelID, or nil when no policy
// covers the complaint. Exact channel matches win; otherwise any policy of the
// complaint is considered. Multiple candidates are narrowed deterministically.
func (r *PolicyResolver) Resolve(ctx context.Context, complaintID, channelID int64) (*domain.ComplaintPolicy, error) {
	candidates, err := r.policies.ListByComplaintAndChannel(ctx, complaintID, channelID)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		candidates, err = r.policies.ListByComplaint(ctx, complaintID)
		if err != nil {
			return nil, err
		}
		if len(candidates) > 0 {
			r.logger.Debug("no channel-specific policy, using complaint policies",
				zap.Int64("complaint_id", complaintID),
				zap.Int64("channel_id", channelID),
				zap.Int("candidates", len(candidates)))
		}
	}
	switch len(candidates) {
	case 0:
		return nil, nil
	case 1:
		return &candidates[0], nil
	}

	chosen := r.pick(candidates)
	ids := make([]int64, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
	}
	r.logger.Warn("ambiguous complaint policy",
		zap.Int64("complaint_id", complaintID),
		zap.Int64("channel_id", channelID),
		zap.Int64s("candidate_ids", ids),
		zap.Int64("policy_id", chosen.ID))
	return &chosen, nil
}

// pick orders by shortest SLA, then keyword specificity, then lowest uic_id, then lowest ID.
func (r *PolicyResolver) pick(candidates []domain.ComplaintPolicy) domain.ComplaintPolicy {
	sorted := make([]domain.ComplaintPolicy, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.SLADays != b.SLADays {
			return a.SLADays < b.SLADays
		}
		as, bs := r.isSpecific(a), r.isSpecific(b)
		if as != bs {
			return as
		}
		if au, bu := uicOrder(a.UICID), uicOrder(b.UICID); au != bu {
			return au < bu
		}
		return a.ID < b.ID
	})
	return sorted[0]
}

func (r *PolicyResolver) isSpecific(p domain.ComplaintPolicy) bool {
	desc := strings.ToUpper(p.Description)
	for _, kw := range r.keywords {
		if strings.Contains(desc, kw) {
			return true
		}
	}
	return false
}

// uicOrder sorts policies without a target division last.
func uicOrder(uic *int64) int64 {
	if uic == nil {
		return int64(^uint64(0) >> 1)
	}
	return *uic
}
