package coupons

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/angelmondragon/ecofinds-backend/pkg/errors"
)

// Service resolves codes into usable coupons.
type Service struct {
	repo Repository
}

func NewService(repo Repository) (*Service, error) {
	if repo == nil {
		return nil, errors.New("coupon repository is required")
	}
	return &Service{repo: repo}, nil
}

// Resolve returns the coupon for code when it exists, has not expired at now
// and carries a valid value.
func (s *Service) Resolve(ctx context.Context, code string, now time.Time) (*Coupon, error) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}
	coupon, err := s.repo.FindByCode(ctx, normalized)
	if errors.Is(err, ErrNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found").
			WithDetails(map[string]any{"code": normalized})
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "coupon lookup failed")
	}
	if coupon.Expired(now) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "coupon expired").
			WithDetails(map[string]any{"code": normalized, "expiresAt": coupon.ExpiresAt})
	}
	if err := coupon.Validate(); err != nil {
		return nil, err
	}
	return coupon, nil
}

// List returns every well-formed coupon ordered by code, expired ones included.
func (s *Service) List(ctx context.Context) ([]Coupon, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "coupon listing failed")
	}
	out := make([]Coupon, 0, len(all))
	for _, c := range all {
		if c.Validate() == nil {
			out = append(out, c)
		}
	}
	return out, nil
}
