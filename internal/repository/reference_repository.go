package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/persistence"
)

// ReferenceRepository reads the externally owned lookup tables.
type ReferenceRepository interface {
	ListDivisions(ctx context.Context) ([]domain.Division, error)
	GetDivision(ctx context.Context, id int64) (*domain.Division, error)
	ListChannels(ctx context.Context) ([]domain.Channel, error)
	GetChannel(ctx context.Context, id int64) (*domain.Channel, error)
	ListComplaints(ctx context.Context) ([]domain.Complaint, error)
	GetComplaint(ctx context.Context, id int64) (*domain.Complaint, error)
	ListPriorities(ctx context.Context) ([]domain.Priority, error)
	GetPriority(ctx context.Context, id int64) (*domain.Priority, error)
	GetPriorityByCode(ctx context.Context, code string) (*domain.Priority, error)
	ListSources(ctx context.Context) ([]domain.Source, error)
	ListTerminals(ctx context.Context) ([]domain.Terminal, error)
	GetTerminal(ctx context.Context, id int64) (*domain.Terminal, error)
}

type referenceRepository struct {
	pool *pgxpool.Pool
}

// NewReferenceRepository builds the repository.
func NewReferenceRepository(pool *pgxpool.Pool) ReferenceRepository {
	return &referenceRepository{pool: pool}
}

func (r *referenceRepository) ListDivisions(ctx context.Context) ([]domain.Division, error) {
	const query = `SELECT id, code, name, is_active FROM divisions ORDER BY id`
	rows, err := persistence.Conn(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Division
	for rows.Next() {
		var division domain.Division
		if err := rows.Scan(&division.ID, &division.Code, &division.Name, &division.IsActive); err != nil {
			return nil, err
		}
		result = append(result, division)
	}
	return result, rows.Err()
}

func (r *referenceRepository) GetDivision(ctx context.Context, id int64) (*domain.Division, error) {
	const query = `SELECT id, code, name, is_active FROM divisions WHERE id=$1`
	var division domain.Division
	if err := persistence.Conn(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&division.ID, &division.Code, &division.Name, &division.IsActive,
	); err != nil {
		return nil, err
	}
	return &division, nil
}

func (r *referenceRepository) ListChannels(ctx context.Context) ([]domain.Channel, error) {
	items, err := r.listCodeNamed(ctx, "channels")
	if err != nil {
		return nil, err
	}
	result := make([]domain.Channel, len(items))
	for i, item := range items {
		result[i] = domain.Channel(item)
	}
	return result, nil
}

func (r *referenceRepository) GetChannel(ctx context.Context, id int64) (*domain.Channel, error) {
	item, err := r.getCodeNamed(ctx, "channels", "id", id)
	if err != nil {
		return nil, err
	}
	channel := domain.Channel(*item)
	return &channel, nil
}

func (r *referenceRepository) ListComplaints(ctx context.Context) ([]domain.Complaint, error) {
	items, err := r.listCodeNamed(ctx, "complaints")
	if err != nil {
		return nil, err
	}
	result := make([]domain.Complaint, len(items))
	for i, item := range items {
		result[i] = domain.Complaint(item)
	}
	return result, nil
}

func (r *referenceRepository) GetComplaint(ctx context.Context, id int64) (*domain.Complaint, error) {
	item, err := r.getCodeNamed(ctx, "complaints", "id", id)
	if err != nil {
		return nil, err
	}
	complaint := domain.Complaint(*item)
	return &complaint, nil
}

func (r *referenceRepository) ListPriorities(ctx context.Context) ([]domain.Priority, error) {
	items, err := r.listCodeNamed(ctx, "priorities")
	if err != nil {
		return nil, err
	}
	result := make([]domain.Priority, len(items))
	for i, item := range items {
		result[i] = domain.Priority(item)
	}
	return result, nil
}

func (r *referenceRepository) GetPriority(ctx context.Context, id int64) (*domain.Priority, error) {
	item, err := r.getCodeNamed(ctx, "priorities", "id", id)
	if err != nil {
		return nil, err
	}
	priority := domain.Priority(*item)
	return &priority, nil
}

func (r *referenceRepository) GetPriorityByCode(ctx context.Context, code string) (*domain.Priority, error) {
	item, err := r.getCodeNamed(ctx, "priorities", "code", code)
	if err != nil {
		return nil, err
	}
	priority := domain.Priority(*item)
	return &priority, nil
}

func (r *referenceRepository) ListSources(ctx context.Context) ([]domain.Source, error) {
	items, err := r.listCodeNamed(ctx, "sources")
	if err != nil {
		return nil, err
	}
	result := make([]domain.Source, len(items))
	for i, item := range items {
		result[i] = domain.Source(item)
	}
	return result, nil
}

func (r *referenceRepository) ListTerminals(ctx context.Context) ([]domain.Terminal, error) {
	const query = `SELECT id, code, location FROM terminals ORDER BY id`
	rows, err := persistence.Conn(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Terminal
	for rows.Next() {
		var terminal domain.Terminal
		if err := rows.Scan(&terminal.ID, &terminal.Code, &terminal.Location); err != nil {
			return nil, err
		}
		result = append(result, terminal)
	}
	return result, rows.Err()
}

func (r *referenceRepository) GetTerminal(ctx context.Context, id int64) (*domain.Terminal, error) {
	const query = `SELECT id, code, location FROM terminals WHERE id=$1`
	var terminal domain.Terminal
	if err := persistence.Conn(ctx, r.pool).QueryRow(ctx, query, id).Scan(&terminal.ID, &terminal.Code, &terminal.Location); err != nil {
		return nil, err
	}
	return &terminal, nil
}

// codeNamed is the shared shape of the id/code/name lookup tables.
type codeNamed struct {
	ID   int64
	Code string
	Name string
}

func (r *referenceRepository) listCodeNamed(ctx context.Context, table string) ([]codeNamed, error) {
	query := fmt.Sprintf(`SELECT id, code, name FROM %s ORDER BY id`, table)
	rows, err := persistence.Conn(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgx.CollectRows(rows, pgx.RowToStructByPos[codeNamed])
}

func (r *referenceRepository) getCodeNamed(ctx context.Context, table, column string, arg any) (*codeNamed, error) {
	query := fmt.Sprintf(`SELECT id, code, name FROM %s WHERE %s=$1`, table, column)
	var item codeNamed
	if err := persistence.Conn(ctx, r.pool).QueryRow(ctx, query, arg).Scan(&item.ID, &item.Code, &item.Name); err != nil {
		return nil, err
	}
	return &item, nil
}
