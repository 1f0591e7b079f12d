package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/marcyhel/room-booking-backend/internal/db"
)

type Repository interface {
	// Create persists a new reservation. A unique violation on the slot
	// index means another request won the slot first and is surfaced as
	// ErrSlotTaken.
	Create(ctx context.Context, res *Reservation) error
	GetByID(ctx context.Context, id string) (*Reservation, error)
	List(ctx context.Context, filter Filter) ([]*Reservation, int, error)

	// FindByRoomAndDate returns the room's reservations on the given day,
	// optionally restricted to a status set and excluding one id.
	FindByRoomAndDate(ctx context.Context, roomID string, date time.Time, statuses []Status, excludeID string) ([]*Reservation, error)

	// FindCancellableForRoom returns every pending reservation for the room
	// (any date) plus every confirmed one dated fromDate or later.
	FindCancellableForRoom(ctx context.Context, roomID string, fromDate time.Time) ([]*Reservation, error)

	UpdateStatus(ctx context.Context, id string, status Status) error
	CancelMany(ctx context.Context, ids []string) (int64, error)

	// WithQuerier returns a copy of the repository bound to the given
	// querier, typically a transaction.
	WithQuerier(q db.Querier) Repository
}

type pgxRepository struct {
	db db.Querier
}

func NewPgxRepository(q db.Querier) Repository {
	return &pgxRepository{db: q}
}

func (r *pgxRepository) WithQuerier(q db.Querier) Repository {
	return &pgxRepository{db: q}
}

func (r *pgxRepository) Create(ctx context.Context, res *Reservation) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.reservations").
		Columns("date", "time", "user_id", "room_id", "status").
		Values(res.Date, res.Time, res.UserID, res.RoomID, res.Status).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create reservation query failed: %w", err)
	}

	if err := r.db.QueryRow(ctx, query, args...).
		Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt); err != nil {
		var e *pgconn.PgError
		if errors.As(err, &e) && e.Code == pgerrcode.UniqueViolation {
			// Lost the race against another booking for the same slot.
			return ErrSlotTaken
		}
		return fmt.Errorf("create reservation failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Reservation, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"r.id", "r.date", "r.time", "r.user_id", "u.name", "u.last_name",
		"r.room_id", "rm.name", "r.status", "r.created_at", "r.updated_at",
	).
		From("public.reservations r").
		Join("public.users u ON r.user_id = u.id").
		Join("public.rooms rm ON r.room_id = rm.id").
		Where(squirrel.Eq{"r.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get reservation query failed: %w", err)
	}

	row := r.db.QueryRow(ctx, query, args...)

	var res Reservation
	if err := row.Scan(
		&res.ID, &res.Date, &res.Time, &res.UserID, &res.UserName, &res.UserLastName,
		&res.RoomID, &res.RoomName, &res.Status, &res.CreatedAt, &res.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get reservation failed: %w", err)
	}
	return &res, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Reservation, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(
		"r.id", "r.date", "r.time", "r.user_id", "u.name", "u.last_name",
		"r.room_id", "rm.name", "r.status", "r.created_at", "r.updated_at",
		"count(*) OVER() as total_count",
	).
		From("public.reservations r").
		Join("public.users u ON r.user_id = u.id").
		Join("public.rooms rm ON r.room_id = rm.id")

	if filter.UserID != "" {
		query = query.Where(squirrel.Eq{"r.user_id": filter.UserID})
	}
	if filter.RoomID != "" {
		query = query.Where(squirrel.Eq{"r.room_id": filter.RoomID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"r.status": filter.Status})
	}
	if filter.Date != nil {
		query = query.Where(squirrel.Eq{"r.date": *filter.Date})
	}

	// Sorting
	orderBy := "r.date"
	switch filter.SortBy {
	case "time", "status", "created_at":
		orderBy = "r." + filter.SortBy
	}

	orderDir := "DESC"
	if filter.SortOrder == "ASC" || filter.SortOrder == "asc" {
		orderDir = "ASC"
	}

	query = query.OrderBy(orderBy+" "+orderDir, "r.time ASC")

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
		return nil, 0, fmt.Errorf("build list reservations query failed: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list reservations failed: %w", err)
	}
	defer rows.Close()

	var reservations []*Reservation
	var total int

	for rows.Next() {
		var res Reservation
		if err := rows.Scan(
			&res.ID, &res.Date, &res.Time, &res.UserID, &res.UserName, &res.UserLastName,
			&res.RoomID, &res.RoomName, &res.Status, &res.CreatedAt, &res.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan reservation failed: %w", err)
		}
		reservations = append(reservations, &res)
	}

	return reservations, total, nil
}

func (r *pgxRepository) FindByRoomAndDate(ctx context.Context, roomID string, date time.Time, statuses []Status, excludeID string) ([]*Reservation, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select("id", "date", "time", "user_id", "room_id", "status", "created_at", "updated_at").
		From("public.reservations").
		Where(squirrel.Eq{"room_id": roomID}).
		Where(squirrel.Eq{"date": date})

	if len(statuses) > 0 {
		query = query.Where(squirrel.Eq{"status": statuses})
	}
	if excludeID != "" {
		query = query.Where(squirrel.NotEq{"id": excludeID})
	}

	query = query.OrderBy("time ASC")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find reservations query failed: %w", err)
	}

	return r.queryPlain(ctx, sql, args)
}

func (r *pgxRepository) FindCancellableForRoom(ctx context.Context, roomID string, fromDate time.Time) ([]*Reservation, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select("id", "date", "time", "user_id", "room_id", "status", "created_at", "updated_at").
		From("public.reservations").
		Where(squirrel.Eq{"room_id": roomID}).
		Where(squirrel.Or{
			squirrel.Eq{"status": StatusPending},
			squirrel.And{
				squirrel.Eq{"status": StatusConfirmed},
				squirrel.GtOrEq{"date": fromDate},
			},
		}).
		OrderBy("date ASC", "time ASC")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find cancellable reservations query failed: %w", err)
	}

	return r.queryPlain(ctx, sql, args)
}

// queryPlain runs a reservation query without the user/room joins.
func (r *pgxRepository) queryPlain(ctx context.Context, sql string, args []any) ([]*Reservation, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query reservations failed: %w", err)
	}
	defer rows.Close()

	var reservations []*Reservation
	for rows.Next() {
		var res Reservation
		if err := rows.Scan(
			&res.ID, &res.Date, &res.Time, &res.UserID, &res.RoomID,
			&res.Status, &res.CreatedAt, &res.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan reservation failed: %w", err)
		}
		reservations = append(reservations, &res)
	}
	return reservations, nil
}

func (r *pgxRepository) UpdateStatus(ctx context.Context, id string, status Status) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.reservations").
		Set("status", status).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update reservation status query failed: %w", err)
	}

	ct, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		// A concurrent confirmation of the same slot trips the partial
		// unique index on confirmed reservations.
		var e *pgconn.PgError
		if errors.As(err, &e) && e.Code == pgerrcode.UniqueViolation {
			return ErrSlotTaken
		}
		return fmt.Errorf("update reservation status failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) CancelMany(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.reservations").
		Set("status", StatusCancelled).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build cancel reservations query failed: %w", err)
	}

	ct, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("cancel reservations failed: %w", err)
	}
	return ct.RowsAffected(), nil
}
