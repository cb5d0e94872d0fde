package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"skmart/backend/internal/cache"
	"skmart/backend/internal/cart"
	"skmart/backend/internal/domain"
	"skmart/backend/internal/report"
	"skmart/backend/internal/store"
)

var (
	ErrInvalidRequest    = errors.New("invalid request")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrReturnQtyExceeded = errors.New("cannot return more than purchased quantity")
	ErrDuplicateCode     = store.ErrDuplicateCode
	ErrLineNotFound      = cart.ErrLineNotFound
)

// StockSyncError is returned alongside a recorded sale when some of the stock
// adjustments that follow the ledger write failed. The sale is not rolled back.
type StockSyncError struct {
	SaleID   int64
	Failures []domain.StockSyncFailure
	errs     []error
}

func (e *StockSyncError) Error() string {
	ids := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		ids = append(ids, fmt.Sprintf("%d(%+d)", f.ProductID, f.Delta))
	}
	return fmt.Sprintf("sale %d recorded but stock update failed for products %s", e.SaleID, strings.Join(ids, ", "))
}

func (e *StockSyncError) Unwrap() []error {
	return e.errs
}

// ImageStore keeps product image assets outside the product record.
type ImageStore interface {
	Save(dataURL string) (string, error)
	Delete(ref string) error
}

type Options struct {
	Location  *time.Location
	WeekStart time.Weekday
	CartTTL   time.Duration
	Now       func() time.Time
}

type Service struct {
	repo      store.Repository
	carts     cache.CartCache
	images    ImageStore
	loc       *time.Location
	weekStart time.Weekday
	cartTTL   time.Duration
	now       func() time.Time
}

// New wires the workflows over repo. images may be nil, in which case image
// fields are stored exactly as submitted.
func New(repo store.Repository, carts cache.CartCache, images ImageStore, opts Options) *Service {
	if carts == nil {
		carts = cache.NewMemoryCartCache()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.CartTTL <= 0 {
		opts.CartTTL = 12 * time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Service{
		repo:      repo,
		carts:     carts,
		images:    images,
		loc:       opts.Location,
		weekStart: opts.WeekStart,
		cartTTL:   opts.CartTTL,
		now:       opts.Now,
	}
}

// Location is the store-local timezone used for day boundaries.
func (s *Service) Location() *time.Location {
	return s.loc
}

func (s *Service) reportOptions() report.Options {
	return report.Options{Location: s.loc, WeekStart: s.weekStart}
}

func defaultString(value string, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
