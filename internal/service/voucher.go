package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/summerbooks/backend/internal/domain"
	"github.com/summerbooks/backend/internal/repository"
	apperrors "github.com/summerbooks/backend/pkg/errors"
)

// Voucher rejection errors, all surfaced under field tag "voucher". A bad
// voucher reference always fails the whole checkout; there is no silent
// full-price fallback.
var (
	ErrVoucherNotFound = apperrors.FieldError("VOUCHER_NOT_FOUND", apperrors.FieldVoucher,
		"Mã giảm giá không tồn tại")
	ErrVoucherInactive = apperrors.FieldError("VOUCHER_INACTIVE", apperrors.FieldVoucher,
		"Mã giảm giá không còn hiệu lực")
	ErrVoucherExpired = apperrors.FieldError("VOUCHER_EXPIRED", apperrors.FieldVoucher,
		"Mã giảm giá đã hết hạn")
	ErrVoucherExhausted = apperrors.FieldError("VOUCHER_EXHAUSTED", apperrors.FieldVoucher,
		"Mã giảm giá đã hết lượt sử dụng")
	ErrVoucherBelowMinimum = apperrors.FieldError("VOUCHER_BELOW_MINIMUM", apperrors.FieldVoucher,
		"Đơn hàng chưa đạt giá trị tối thiểu để áp dụng mã giảm giá")
	ErrVoucherAlreadyUsed = apperrors.FieldError("VOUCHER_ALREADY_USED", apperrors.FieldVoucher,
		"Mã giảm giá đã được sử dụng")
)

// VoucherQuote is the result of a successful resolution: which voucher
// applies and how much it takes off the subtotal.
type VoucherQuote struct {
	VoucherID      string
	AssignmentID   string
	DiscountAmount int64
}

// VoucherService implements voucher administration and resolution.
type VoucherService struct {
	repo   repository.VoucherRepository
	logger *slog.Logger
}

// NewVoucherService creates a new voucher service.
func NewVoucherService(repo repository.VoucherRepository, logger *slog.Logger) *VoucherService {
	return &VoucherService{
		repo:   repo,
		logger: logger,
	}
}

// Resolve decides whether the given assignment, applied by userID to an order
// of the given subtotal, is usable, and computes the resulting discount. It
// only computes; consuming the assignment happens in the checkout commit.
func (s *VoucherService) Resolve(ctx context.Context, assignmentID, userID string, subtotal int64, now time.Time) (*VoucherQuote, error) {
	av, err := s.repo.GetAssignment(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrVoucherNotFound
		}
		return nil, fmt.Errorf("load voucher assignment: %w", err)
	}

	// An assignment only works for the user it was granted to.
	if av.Assignment.UserID != userID {
		return nil, ErrVoucherNotFound
	}
	if av.Assignment.Used {
		return nil, ErrVoucherAlreadyUsed
	}

	v := &av.Voucher
	switch {
	case !v.IsActive():
		return nil, ErrVoucherInactive
	case !v.WithinWindow(now):
		return nil, ErrVoucherExpired
	case v.Remain <= 0:
		return nil, ErrVoucherExhausted
	case !v.MeetsMinimum(subtotal):
		return nil, ErrVoucherBelowMinimum
	}

	return &VoucherQuote{
		VoucherID:      v.ID,
		AssignmentID:   av.Assignment.ID,
		DiscountAmount: v.DiscountFor(subtotal),
	}, nil
}

// CreateVoucherInput holds the parameters for creating a voucher.
type CreateVoucherInput struct {
	Code              string    `json:"code" validate:"required,min=3,max=32"`
	Name              string    `json:"name" validate:"required,min=3,max=100"`
	Value             int       `json:"value" validate:"required,min=1,max=100"`
	MaxDiscountAmount int64     `json:"max_discount_amount" validate:"min=0"`
	MinOrderValue     int64     `json:"min_order_value" validate:"min=0"`
	StartDate         time.Time `json:"start_date" validate:"required"`
	EndDate           time.Time `json:"end_date" validate:"required"`
	Remain            int       `json:"remain" validate:"required,min=1"`
}

// CreateVoucher creates a new active voucher.
func (s *VoucherService) CreateVoucher(ctx context.Context, input CreateVoucherInput) (*domain.Voucher, error) {
	if input.Value < 1 || input.Value > 100 {
		return nil, apperrors.InvalidInput("value must be a percentage between 1 and 100")
	}
	if !input.EndDate.After(input.StartDate) {
		return nil, apperrors.InvalidInput("end_date must be after start_date")
	}
	if input.Remain < 1 {
		return nil, apperrors.InvalidInput("remain must be at least 1")
	}

	now := time.Now().UTC()
	voucher := &domain.Voucher{
		ID:                uuid.New().String(),
		Code:              strings.ToUpper(strings.TrimSpace(input.Code)),
		Name:              input.Name,
		Value:             input.Value,
		MaxDiscountAmount: input.MaxDiscountAmount,
		MinOrderValue:     input.MinOrderValue,
		StartDate:         input.StartDate.UTC(),
		EndDate:           input.EndDate.UTC(),
		Remain:            input.Remain,
		Status:            domain.VoucherStatusActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.Create(ctx, voucher); err != nil {
		return nil, fmt.Errorf("create voucher: %w", err)
	}

	s.logger.InfoContext(ctx, "voucher created",
		slog.String("voucher_id", voucher.ID),
		slog.String("code", voucher.Code),
	)

	return voucher, nil
}

// AssignVoucher grants a voucher to a user.
func (s *VoucherService) AssignVoucher(ctx context.Context, voucherID, userID string) (*domain.VoucherAssignment, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user_id is required")
	}

	if _, err := s.repo.GetByID(ctx, voucherID); err != nil {
		return nil, fmt.Errorf("load voucher: %w", err)
	}

	assignment := &domain.VoucherAssignment{
		ID:        uuid.New().String(),
		VoucherID: voucherID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Assign(ctx, assignment); err != nil {
		return nil, fmt.Errorf("assign voucher: %w", err)
	}

	s.logger.InfoContext(ctx, "voucher assigned",
		slog.String("voucher_id", voucherID),
		slog.String("user_id", userID),
		slog.String("assignment_id", assignment.ID),
	)

	return assignment, nil
}

// UserVoucher is an assignment decorated with its current usability.
type UserVoucher struct {
	Assignment domain.VoucherAssignment `json:"assignment"`
	Voucher    domain.Voucher           `json:"voucher"`
	Usable     bool                     `json:"usable"`
}

// ListUserVouchers returns a user's assignments with usability computed
// against the current time. The minimum-order rule is excluded here since
// there is no order subtotal to check against yet.
func (s *VoucherService) ListUserVouchers(ctx context.Context, userID string) ([]UserVoucher, error) {
	assigned, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user vouchers: %w", err)
	}

	now := time.Now().UTC()
	result := make([]UserVoucher, len(assigned))
	for i, av := range assigned {
		result[i] = UserVoucher{
			Assignment: av.Assignment,
			Voucher:    av.Voucher,
			Usable: !av.Assignment.Used &&
				av.Voucher.IsActive() &&
				av.Voucher.WithinWindow(now) &&
				av.Voucher.Remain > 0,
		}
	}

	return result, nil
}
