package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/persistence"
)

// PolicyRepository reads complaint policies.
type PolicyRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.ComplaintPolicy, error)
	List(ctx context.Context) ([]domain.ComplaintPolicy, error)
	ListByComplaint(ctx context.Context, complaintID int64) ([]domain.ComplaintPolicy, error)
	ListByComplaintAndChannel(ctx context.Context, complaintID, channelID int64) ([]domain.ComplaintPolicy, error)
}

type policyRepository struct {
	pool *pgxpool.Pool
}

// NewPolicyRepository builds repository.
func NewPolicyRepository(pool *pgxpool.Pool) PolicyRepository {
	return &policyRepository{pool: pool}
}

const policyColumns = `id, complaint_id, channel_id, sla_days, uic_id, description, created_at`

func (r *policyRepository) GetByID(ctx context.Context, id int64) (*domain.ComplaintPolicy, error) {
	const query = `SELECT ` + policyColumns + ` FROM complaint_policies WHERE id=$1`
	var policy domain.ComplaintPolicy
	if err := scanPolicy(persistence.Conn(ctx, r.pool).QueryRow(ctx, query, id), &policy); err != nil {
		return nil, err
	}
	return &policy, nil
}

func (r *policyRepository) List(ctx context.Context) ([]domain.ComplaintPolicy, error) {
	const query = `SELECT ` + policyColumns + ` FROM complaint_policies ORDER BY id`
	return r.query(ctx, query)
}

func (r *policyRepository) ListByComplaint(ctx context.Context, complaintID int64) ([]domain.ComplaintPolicy, error) {
	const query = `SELECT ` + policyColumns + ` FROM complaint_policies WHERE complaint_id=$1 ORDER BY id`
	return r.query(ctx, query, complaintID)
}

func (r *policyRepository) ListByComplaintAndChannel(ctx context.Context, complaintID, channelID int64) ([]domain.ComplaintPolicy, error) {
	const query = `SELECT ` + policyColumns + ` FROM complaint_policies WHERE complaint_id=$1 AND channel_id=$2 ORDER BY id`
	return r.query(ctx, query, complaintID, channelID)
}

func (r *policyRepository) query(ctx context.Context, query string, args ...any) ([]domain.ComplaintPolicy, error) {
	rows, err := persistence.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ComplaintPolicy
	for rows.Next() {
		var policy domain.ComplaintPolicy
		if err := scanPolicy(rows, &policy); err != nil {
			return nil, err
		}
		result = append(result, policy)
	}
	return result, rows.Err()
}

func scanPolicy(row pgx.Row, policy *domain.ComplaintPolicy) error {
	return row.Scan(
		&policy.ID,
		&policy.ComplaintID,
		&policy.ChannelID,
		&policy.SLADays,
		&policy.UICID,
		&policy.Description,
		&policy.CreatedAt,
	)
}
