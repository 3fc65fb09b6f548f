package coupons

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/angelmondragon/ecofinds-backend/pkg/db"
	"github.com/angelmondragon/ecofinds-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/ecofinds-backend/pkg/errors"
	"gorm.io/gorm"
)

// ErrNotFound is returned by repositories for unknown codes.
var ErrNotFound = errors.New("coupon not found")

// Repository looks coupons up by normalized code and lists them ordered by code.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Coupon, error)
	List(ctx context.Context) ([]Coupon, error)
}

// MemoryRepository holds coupons in process memory.
type MemoryRepository struct {
	mu     sync.RWMutex
	byCode map[string]Coupon
}

func NewMemoryRepository(seed ...Coupon) *MemoryRepository {
	repo := &MemoryRepository{byCode: make(map[string]Coupon, len(seed))}
	for _, c := range seed {
		repo.Put(c)
	}
	return repo
}

// Put inserts or replaces a coupon.
func (r *MemoryRepository) Put(c Coupon) {
	c.Code = NormalizeCode(c.Code)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byCode[c.Code] = c
}

func (r *MemoryRepository) FindByCode(_ context.Context, code string) (*Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byCode[NormalizeCode(code)]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (r *MemoryRepository) List(context.Context) ([]Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Coupon, 0, len(r.byCode))
	for _, c := range r.byCode {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b Coupon) int { return strings.Compare(a.Code, b.Code) })
	return out, nil
}

// SQLRepository reads coupons from the coupons table.
type SQLRepository struct {
	db *gorm.DB
}

func NewSQLRepository(conn *gorm.DB) *SQLRepository {
	return &SQLRepository{db: conn}
}

func (r *SQLRepository) FindByCode(ctx context.Context, code string) (*Coupon, error) {
	var row models.Coupon
	err := r.db.WithContext(ctx).
		Where("UPPER(code) = ?", NormalizeCode(code)).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find coupon: %w", err)
	}
	c := fromModel(row)
	return &c, nil
}

func (r *SQLRepository) List(ctx context.Context) ([]Coupon, error) {
	var rows []models.Coupon
	if err := r.db.WithContext(ctx).Order("code").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	out := make([]Coupon, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromModel(row))
	}
	return out, nil
}

// Create inserts a coupon. Duplicate codes return a CONFLICT error.
func (r *SQLRepository) Create(ctx context.Context, c Coupon) error {
	row := toModel(c)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "coupon code already exists").
				WithDetails(map[string]any{"code": row.Code})
		}
		return fmt.Errorf("create coupon: %w", err)
	}
	return nil
}

// Seed inserts each coupon whose code is not present yet.
func (r *SQLRepository) Seed(ctx context.Context, seed []Coupon) error {
	for _, c := range seed {
		if err := r.Create(ctx, c); err != nil && !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
			return err
		}
	}
	return nil
}

func toModel(c Coupon) models.Coupon {
	return models.Coupon{
		ID:        c.ID,
		Code:      NormalizeCode(c.Code),
		Type:      c.Type,
		Value:     c.Value,
		ExpiresAt: c.ExpiresAt,
	}
}

func fromModel(m models.Coupon) Coupon {
	return Coupon{
		ID:        m.ID,
		Code:      m.Code,
		Type:      m.Type,
		Value:     m.Value,
		ExpiresAt: m.ExpiresAt,
	}
}
