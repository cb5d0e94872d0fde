package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"skmart/backend/internal/domain"
	"skmart/backend/internal/store"
)

// Snapshot is the whole dataset, in the shape db.json stores it.
type Snapshot struct {
	Products   []domain.Product  `json:"products"`
	Categories []domain.Category `json:"categories"`
	Sales      []domain.Sale     `json:"sales"`
}

// PersistFunc is called with the post-write dataset while the write lock is
// held. An error rolls the write back.
type PersistFunc func(Snapshot) error

type Store struct {
	mu         sync.RWMutex
	products   map[int64]domain.Product
	categories []domain.Category
	sales      map[int64]domain.Sale
	persist    PersistFunc
}

func New() *Store {
	return FromSnapshot(Snapshot{}, nil)
}

func FromSnapshot(snap Snapshot, persist PersistFunc) *Store {
	s := &Store{persist: persist}
	s.loadLocked(snap)
	return s
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedProductsLocked(), nil
}

func (s *Store) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (s *Store) UpsertProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	var saved domain.Product
	err := s.mutate(func() error {
		if strings.TrimSpace(product.Name) == "" {
			return store.ErrInvalid
		}
		if store.CodeTaken(s.sortedProductsLocked(), product.Code, product.ID) {
			return store.ErrDuplicateCode
		}
		saved = store.NormalizeProduct(product)
		if saved.ID == 0 {
			saved.ID = s.nextProductIDLocked()
		}
		s.products[saved.ID] = saved
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (s *Store) AdjustStock(_ context.Context, id int64, delta int) (*domain.Product, error) {
	var updated domain.Product
	err := s.mutate(func() error {
		p, ok := s.products[id]
		if !ok {
			return store.ErrNotFound
		}
		p.Stock += delta
		s.products[id] = p
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Store) DeleteProduct(_ context.Context, id int64) error {
	return s.mutate(func() error {
		if _, ok := s.products[id]; !ok {
			return store.ErrNotFound
		}
		delete(s.products, id)
		return nil
	})
}

func (s *Store) ReplaceProducts(_ context.Context, products []domain.Product) error {
	return s.mutate(func() error {
		var nextID int64 = 1
		for _, p := range products {
			nextID = max(nextID, p.ID+1)
		}
		next := make(map[int64]domain.Product, len(products))
		for _, p := range products {
			p = store.NormalizeProduct(p)
			if p.ID == 0 {
				p.ID = nextID
				nextID++
			}
			next[p.ID] = p
		}
		s.products = next
		return nil
	})
}

func (s *Store) ListCategories(_ context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.categories), nil
}

func (s *Store) AddCategory(_ context.Context, name string) (*domain.Category, error) {
	var created domain.Category
	err := s.mutate(func() error {
		var maxID int64
		for _, c := range s.categories {
			maxID = max(maxID, c.ID)
		}
		created = domain.Category{ID: maxID + 1, Name: name}
		s.categories = append(s.categories, created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Store) DeleteCategory(_ context.Context, id int64) error {
	return s.mutate(func() error {
		idx := slices.IndexFunc(s.categories, func(c domain.Category) bool { return c.ID == id })
		if idx < 0 {
			return store.ErrNotFound
		}
		s.categories = slices.Delete(slices.Clone(s.categories), idx, idx+1)
		return nil
	})
}

func (s *Store) ListSales(_ context.Context) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedSalesLocked(), nil
}

func (s *Store) GetSale(_ context.Context, id int64) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, ok := s.sales[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := store.CloneSale(sale)
	return &out, nil
}

func (s *Store) CreateSale(_ context.Context, sale domain.Sale) (*domain.Sale, error) {
	var created domain.Sale
	err := s.mutate(func() error {
		ids := make([]int64, 0, len(s.sales))
		for id := range s.sales {
			ids = append(ids, id)
		}
		created = store.CloneSale(sale)
		created.ID = store.NextSaleID(ids)
		s.sales[created.ID] = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := store.CloneSale(created)
	return &out, nil
}

func (s *Store) UpdateSale(_ context.Context, id int64, sale domain.Sale) (*domain.Sale, error) {
	var updated domain.Sale
	err := s.mutate(func() error {
		if _, ok := s.sales[id]; !ok {
			return store.ErrNotFound
		}
		updated = store.CloneSale(sale)
		updated.ID = id
		s.sales[id] = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := store.CloneSale(updated)
	return &out, nil
}

func (s *Store) ClearSales(_ context.Context) error {
	return s.mutate(func() error {
		s.sales = make(map[int64]domain.Sale)
		return nil
	})
}

func (s *Store) ReplaceSales(_ context.Context, sales []domain.Sale) error {
	return s.mutate(func() error {
		next := make(map[int64]domain.Sale, len(sales))
		for _, sale := range sales {
			if sale.ID == 0 {
				return fmt.Errorf("%w: sale without id", store.ErrInvalid)
			}
			next[sale.ID] = store.CloneSale(sale)
		}
		s.sales = next
		return nil
	})
}

// mutate runs fn under the write lock and persists the result. fn must leave
// the state untouched when it returns an error.
func (s *Store) mutate(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var before Snapshot
	if s.persist != nil {
		before = s.snapshotLocked()
	}
	if err := fn(); err != nil {
		return err
	}
	if s.persist == nil {
		return nil
	}
	if err := s.persist(s.snapshotLocked()); err != nil {
		s.loadLocked(before)
		return fmt.Errorf("persist: %w", err)
	}
	return nil
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Products:   s.sortedProductsLocked(),
		Categories: slices.Clone(s.categories),
		Sales:      s.sortedSalesLocked(),
	}
}

func (s *Store) loadLocked(snap Snapshot) {
	s.products = make(map[int64]domain.Product, len(snap.Products))
	for _, p := range snap.Products {
		s.products[p.ID] = p
	}
	s.categories = slices.Clone(snap.Categories)
	if s.categories == nil {
		s.categories = []domain.Category{}
	}
	s.sales = make(map[int64]domain.Sale, len(snap.Sales))
	for _, sale := range snap.Sales {
		s.sales[sale.ID] = store.CloneSale(sale)
	}
}

func (s *Store) sortedProductsLocked() []domain.Product {
	products := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, p)
	}
	slices.SortFunc(products, func(a, b domain.Product) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return products
}

func (s *Store) sortedSalesLocked() []domain.Sale {
	sales := make([]domain.Sale, 0, len(s.sales))
	for _, sale := range s.sales {
		sales = append(sales, store.CloneSale(sale))
	}
	slices.SortFunc(sales, func(a, b domain.Sale) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return sales
}

func (s *Store) nextProductIDLocked() int64 {
	return nextKey(s.products)
}

func nextKey(products map[int64]domain.Product) int64 {
	var maxID int64
	for id := range products {
		maxID = max(maxID, id)
	}
	return maxID + 1
}
