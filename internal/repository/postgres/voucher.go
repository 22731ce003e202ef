package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/summerbooks/backend/internal/domain"
	"github.com/summerbooks/backend/internal/repository"
	"github.com/summerbooks/backend/pkg/database"
	apperrors "github.com/summerbooks/backend/pkg/errors"
)

// VoucherRepository implements repository.VoucherRepository using PostgreSQL.
type VoucherRepository struct {
	pool database.DBTX
}

// NewVoucherRepository creates a new PostgreSQL-backed voucher repository.
func NewVoucherRepository(pool database.DBTX) *VoucherRepository {
	return &VoucherRepository{pool: pool}
}

const voucherColumns = `id, code, name, value, max_discount_amount, min_order_value, start_date, end_date, remain, status, created_at, updated_at`

func scanVoucher(row pgx.Row, v *domain.Voucher) error {
	return row.Scan(
		&v.ID,
		&v.Code,
		&v.Name,
		&v.Value,
		&v.MaxDiscountAmount,
		&v.MinOrderValue,
		&v.StartDate,
		&v.EndDate,
		&v.Remain,
		&v.Status,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
}

// Create inserts a new voucher. A duplicate code maps to AlreadyExists.
func (r *VoucherRepository) Create(ctx context.Context, v *domain.Voucher) error {
	query := `
		INSERT INTO vouchers (id, code, name, value, max_discount_amount, min_order_value, start_date, end_date, remain, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (code) DO NOTHING`

	ct, err := r.pool.Exec(ctx, query,
		v.ID,
		v.Code,
		v.Name,
		v.Value,
		v.MaxDiscountAmount,
		v.MinOrderValue,
		v.StartDate,
		v.EndDate,
		v.Remain,
		v.Status,
		v.CreatedAt,
		v.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert voucher: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.AlreadyExists("voucher", "code", v.Code)
	}

	return nil
}

// GetByID retrieves a voucher by its ID.
func (r *VoucherRepository) GetByID(ctx context.Context, id string) (*domain.Voucher, error) {
	query := `SELECT ` + voucherColumns + ` FROM vouchers WHERE id = $1`

	var v domain.Voucher
	if err := scanVoucher(r.pool.QueryRow(ctx, query, id), &v); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("voucher", id)
		}
		return nil, fmt.Errorf("scan voucher: %w", err)
	}

	return &v, nil
}

// GetByCode retrieves a voucher by its code.
func (r *VoucherRepository) GetByCode(ctx context.Context, code string) (*domain.Voucher, error) {
	query := `SELECT ` + voucherColumns + ` FROM vouchers WHERE code = $1`

	var v domain.Voucher
	if err := scanVoucher(r.pool.QueryRow(ctx, query, code), &v); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("voucher", code)
		}
		return nil, fmt.Errorf("scan voucher: %w", err)
	}

	return &v, nil
}

// Assign grants a voucher to a user.
func (r *VoucherRepository) Assign(ctx context.Context, a *domain.VoucherAssignment) error {
	query := `
		INSERT INTO voucher_assignments (id, voucher_id, user_id, used, used_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		a.ID,
		a.VoucherID,
		a.UserID,
		a.Used,
		a.UsedAt,
		a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert voucher assignment: %w", err)
	}

	return nil
}

const assignedVoucherColumns = `
	a.id, a.voucher_id, a.user_id, a.used, a.used_at, a.created_at,
	v.id, v.code, v.name, v.value, v.max_discount_amount, v.min_order_value, v.start_date, v.end_date, v.remain, v.status, v.created_at, v.updated_at`

func scanAssignedVoucher(row pgx.Row, av *repository.AssignedVoucher) error {
	return row.Scan(
		&av.Assignment.ID,
		&av.Assignment.VoucherID,
		&av.Assignment.UserID,
		&av.Assignment.Used,
		&av.Assignment.UsedAt,
		&av.Assignment.CreatedAt,
		&av.Voucher.ID,
		&av.Voucher.Code,
		&av.Voucher.Name,
		&av.Voucher.Value,
		&av.Voucher.MaxDiscountAmount,
		&av.Voucher.MinOrderValue,
		&av.Voucher.StartDate,
		&av.Voucher.EndDate,
		&av.Voucher.Remain,
		&av.Voucher.Status,
		&av.Voucher.CreatedAt,
		&av.Voucher.UpdatedAt,
	)
}

// GetAssignment retrieves an assignment together with its voucher.
func (r *VoucherRepository) GetAssignment(ctx context.Context, assignmentID string) (*repository.AssignedVoucher, error) {
	query := `
		SELECT ` + assignedVoucherColumns + `
		FROM voucher_assignments a
		JOIN vouchers v ON v.id = a.voucher_id
		WHERE a.id = $1`

	var av repository.AssignedVoucher
	if err := scanAssignedVoucher(r.pool.QueryRow(ctx, query, assignmentID), &av); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("voucher assignment", assignmentID)
		}
		return nil, fmt.Errorf("scan voucher assignment: %w", err)
	}

	return &av, nil
}

// ListByUser returns all assignments granted to a user, newest first.
func (r *VoucherRepository) ListByUser(ctx context.Context, userID string) ([]repository.AssignedVoucher, error) {
	query := `
		SELECT ` + assignedVoucherColumns + `
		FROM voucher_assignments a
		JOIN vouchers v ON v.id = a.voucher_id
		WHERE a.user_id = $1
		ORDER BY a.created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list voucher assignments: %w", err)
	}
	defer rows.Close()

	assigned := make([]repository.AssignedVoucher, 0)
	for rows.Next() {
		var av repository.AssignedVoucher
		if err := scanAssignedVoucher(rows, &av); err != nil {
			return nil, fmt.Errorf("scan voucher assignment row: %w", err)
		}
		assigned = append(assigned, av)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate voucher assignment rows: %w", err)
	}

	return assigned, nil
}
