package service

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"greenmarket/internal/model"
	"greenmarket/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type voucherService struct {
	repo   repository.VoucherRepository
	logger zerolog.Logger
}

// NewVoucherService creates a new voucher service.
func NewVoucherService(repo repository.VoucherRepository, logger zerolog.Logger) VoucherService {
	return &voucherService{
		repo:   repo,
		logger: logger.With().Str("service", "voucher").Logger(),
	}
}

func (s *voucherService) Create(ctx context.Context, v *model.Voucher) error {
	if v.Code == "" {
		return model.NewDomainError(model.ErrCodeMissingField, "Voucher code is required")
	}
	if v.DiscountType != model.DiscountTypePercent && v.DiscountType != model.DiscountTypeFixed {
		return model.NewDomainError(model.ErrCodeMissingField, "discountType must be percent or fixed")
	}
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.Status == "" {
		v.Status = model.VoucherStatusActive
	}
	if v.UsageLimit == 0 {
		v.UsageLimit = model.UnlimitedUsage
	}
	if v.PerUserLimit == 0 {
		v.PerUserLimit = model.UnlimitedUsage
	}
	return s.repo.Create(ctx, v)
}

func (s *voucherService) GetByCode(ctx context.Context, code string) (*model.Voucher, error) {
	v, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, model.ErrVoucherNotFound
	}
	return v, nil
}

// ApplicableAmount returns the part of the cart the voucher can
// discount: the full subtotal for a platform voucher, the matching
// seller's share for a shop voucher.
func ApplicableAmount(v *model.Voucher, cart *model.Cart) float64 {
	if v.IsPlatformWide() {
		return cart.Subtotal()
	}
	var sum float64
	for _, item := range cart.Items {
		if item.SellerID == *v.ShopID {
			sum += item.UnitPrice * float64(item.Quantity)
		}
	}
	return sum
}

// Validate runs the eligibility checks in a fixed order so callers get
// the most specific failure: existence, active, time window, scope and
// allow-lists, minimum order, global usage limit, per-user limit,
// already-used grant. Ineligibility is reported in the validation, not
// as an error.
func (s *voucherService) Validate(ctx context.Context, userID, code string, cart *model.Cart) (*model.Voucher, *model.VoucherValidation, error) {
	ineligible := func(code, reason string) (*model.Voucher, *model.VoucherValidation, error) {
		return nil, &model.VoucherValidation{Eligible: false, Code: code, Reason: reason}, nil
	}

	v, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	if v == nil {
		return ineligible(model.ErrCodeVoucherNotFound, fmt.Sprintf("Voucher %s does not exist", code))
	}
	if v.Status != model.VoucherStatusActive {
		return ineligible(model.ErrCodeVoucherInactive, fmt.Sprintf("Voucher %s is not active", code))
	}

	now := time.Now()
	if now.Before(v.StartDate) || now.After(v.EndDate) {
		return ineligible(model.ErrCodeVoucherExpired, fmt.Sprintf("Voucher %s is outside its validity window", code))
	}

	if len(v.UserIDs) > 0 && !slices.Contains(v.UserIDs, userID) {
		return ineligible(model.ErrCodeVoucherScopeMismatch, "Voucher is not available to this user")
	}
	applicable := ApplicableAmount(v, cart)
	if !v.IsPlatformWide() && applicable == 0 {
		return ineligible(model.ErrCodeVoucherScopeMismatch, "Voucher only applies to items from its shop")
	}
	if len(v.ProductIDs) > 0 && !cartContains(cart, func(it model.CartItem) bool {
		return slices.Contains(v.ProductIDs, it.ProductID)
	}) {
		return ineligible(model.ErrCodeVoucherScopeMismatch, "Voucher does not apply to any product in the cart")
	}
	if len(v.CategoryIDs) > 0 && !cartContains(cart, func(it model.CartItem) bool {
		return slices.Contains(v.CategoryIDs, it.CategoryID)
	}) {
		return ineligible(model.ErrCodeVoucherScopeMismatch, "Voucher does not apply to any category in the cart")
	}

	if applicable < v.MinOrderAmount {
		return ineligible(model.ErrCodeVoucherMinOrder,
			fmt.Sprintf("Order amount %.0f is below the voucher minimum %.0f", applicable, v.MinOrderAmount))
	}

	if v.UsageLimit != model.UnlimitedUsage && v.UsedCount >= v.UsageLimit {
		return ineligible(model.ErrCodeVoucherLimitReached, "Voucher usage limit has been reached")
	}
	if v.PerUserLimit != model.UnlimitedUsage {
		used, err := s.repo.CountUsageByUser(ctx, userID, v.ID)
		if err != nil {
			return nil, nil, err
		}
		if used >= v.PerUserLimit {
			return ineligible(model.ErrCodeVoucherLimitReached, "You have already used this voucher the maximum number of times")
		}
	}

	grant, err := s.repo.GetUserVoucher(ctx, userID, code)
	if err != nil {
		return nil, nil, err
	}
	if grant != nil && grant.IsUsed {
		return ineligible(model.ErrCodeVoucherAlreadyUsed, "Voucher has already been used")
	}

	return v, &model.VoucherValidation{Eligible: true, Code: v.Code}, nil
}

func cartContains(cart *model.Cart, match func(model.CartItem) bool) bool {
	for _, it := range cart.Items {
		if match(it) {
			return true
		}
	}
	return false
}

// CalculateDiscount computes the discount on amount, rounded to whole
// currency units. Percent vouchers honour the optional cap; fixed
// vouchers never exceed the amount itself.
func (s *voucherService) CalculateDiscount(v *model.Voucher, amount float64) float64 {
	if amount <= 0 {
		return 0
	}

	var discount float64
	switch v.DiscountType {
	case model.DiscountTypePercent:
		discount = amount * v.DiscountValue / 100
		if v.MaxDiscountAmount != nil && discount > *v.MaxDiscountAmount {
			discount = *v.MaxDiscountAmount
		}
	case model.DiscountTypeFixed:
		discount = v.DiscountValue
	}
	if discount > amount {
		discount = amount
	}
	if discount < 0 {
		return 0
	}
	return math.Round(discount)
}

// Use redeems the voucher for a checkout. An existing usage row for
// (userID, checkoutID) means a retried checkout already consumed it, so
// the call is a no-op.
func (s *voucherService) Use(ctx context.Context, v *model.Voucher, userID string, checkoutID uuid.UUID, orderAmount, discountAmount float64) error {
	existing, err := s.repo.GetUsage(ctx, userID, checkoutID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	if _, err := s.repo.Use(ctx, v.ID, userID, checkoutID, orderAmount, discountAmount); err != nil {
		return err
	}
	if err := s.repo.MarkUserVoucherUsed(ctx, userID, v.Code, checkoutID); err != nil {
		return err
	}

	s.logger.Info().
		Str("voucher_code", v.Code).
		Str("user_id", userID).
		Str("checkout_id", checkoutID.String()).
		Float64("discount", discountAmount).
		Msg("voucher redeemed")
	return nil
}

func (s *voucherService) Refund(ctx context.Context, checkoutID uuid.UUID) error {
	return s.repo.RefundUsage(ctx, checkoutID)
}

func (s *voucherService) GrantToUser(ctx context.Context, userID, code string) (*model.UserVoucher, error) {
	v, err := s.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	uv := &model.UserVoucher{
		ID:          uuid.New(),
		UserID:      userID,
		VoucherID:   v.ID,
		VoucherCode: v.Code,
		ReceivedAt:  time.Now(),
		ExpiresAt:   v.EndDate,
	}
	if err := s.repo.GrantToUser(ctx, uv); err != nil {
		return nil, err
	}
	return uv, nil
}

func (s *voucherService) ListUserVouchers(ctx context.Context, userID string) ([]model.UserVoucher, error) {
	return s.repo.ListUserVouchers(ctx, userID)
}
