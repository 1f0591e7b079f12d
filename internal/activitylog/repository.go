package activitylog

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/marcyhel/room-booking-backend/internal/db"
)

type Repository interface {
	Create(ctx context.Context, l *Log) error
	List(ctx context.Context, filter Filter) ([]*Log, int, error)
}

type pgxRepository struct {
	db db.Querier
}

func NewPgxRepository(q db.Querier) Repository {
	return &pgxRepository{db: q}
}

func (r *pgxRepository) Create(ctx context.Context, l *Log) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.activity_logs").
		Columns("user_id", "module", "activity", "details").
		Values(l.UserID, l.Module, l.Activity, l.Details).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create activity log query failed: %w", err)
	}

	return r.db.QueryRow(ctx, query, args...).
		Scan(&l.ID, &l.CreatedAt)
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Log, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select("id", "user_id", "module", "activity", "details", "created_at",
		"count(*) OVER() as total_count").
		From("public.activity_logs")

	if filter.UserID != "" {
		query = query.Where(squirrel.Eq{"user_id": filter.UserID})
	}
	if filter.Module != "" {
		query = query.Where(squirrel.Eq{"module": filter.Module})
	}

	query = query.OrderBy("created_at DESC")

	// Pagination
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list activity logs query failed: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list activity logs failed: %w", err)
	}
	defer rows.Close()

	var logs []*Log
	var total int

	for rows.Next() {
		var l Log
		if err := rows.Scan(&l.ID, &l.UserID, &l.Module, &l.Activity, &l.Details, &l.CreatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan activity log failed: %w", err)
		}
		logs = append(logs, &l)
	}

	return logs, total, nil
}
