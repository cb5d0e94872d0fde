package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"skmart/backend/internal/domain"
	"skmart/backend/internal/media"
	"skmart/backend/internal/store"
	"skmart/backend/internal/xid"
)

func (s *Service) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.ProductView, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	term := strings.ToLower(strings.TrimSpace(filter.Term))
	category := strings.TrimSpace(filter.Category)
	if strings.EqualFold(category, "all") {
		category = ""
	}

	views := make([]domain.ProductView, 0, len(products))
	for _, p := range products {
		if term != "" && !strings.Contains(strings.ToLower(p.Name), term) && !strings.Contains(strings.ToLower(p.Code), term) {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		views = append(views, domain.ProductView{Product: p, LowStock: p.IsLowStock()})
	}
	return views, nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	return *p, nil
}

// SaveProduct creates the product when req.ID is zero and otherwise merges req
// into the stored record. An empty image on edit keeps the current one.
func (s *Service) SaveProduct(ctx context.Context, req domain.ProductSaveRequest) (domain.Product, error) {
	req.Code = strings.TrimSpace(req.Code)
	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	if req.Name == "" {
		return domain.Product{}, fmt.Errorf("%w: product name is required", ErrInvalidRequest)
	}

	var previousImage string
	if req.ID != 0 {
		existing, err := s.repo.GetProduct(ctx, req.ID)
		if err != nil {
			return domain.Product{}, err
		}
		previousImage = existing.Image
		if req.Image == "" {
			req.Image = existing.Image
		}
	}

	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	if store.CodeTaken(products, req.Code, req.ID) {
		return domain.Product{}, ErrDuplicateCode
	}

	image := req.Image
	stored := false
	if s.images != nil && media.IsDataURL(image) {
		ref, err := s.images.Save(image)
		if err != nil {
			if errors.Is(err, media.ErrInvalidDataURL) || errors.Is(err, media.ErrUnsupportedType) {
				return domain.Product{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
			}
			return domain.Product{}, err
		}
		image = ref
		stored = true
	}

	product := store.NormalizeProduct(domain.Product{
		ID:                req.ID,
		Code:              req.Code,
		Name:              req.Name,
		Category:          defaultString(req.Category, domain.DefaultCategoryName),
		CostPrice:         req.CostPrice,
		RetailPrice:       req.RetailPrice,
		DiscountType:      req.DiscountType,
		DiscountRate:      req.DiscountRate,
		DiscountValue:     req.DiscountValue,
		Stock:             req.Stock,
		LowStockThreshold: req.LowStockThreshold,
		Image:             image,
	})

	saved, err := s.repo.UpsertProduct(ctx, product)
	if err != nil {
		if stored {
			s.deleteImage(image, product.ID)
		}
		return domain.Product{}, err
	}

	if previousImage != "" && previousImage != saved.Image {
		s.deleteImage(previousImage, saved.ID)
	}
	log.Info().Int64("product_id", saved.ID).Str("code", saved.Code).Msg("product saved")
	return *saved, nil
}

// DeleteProduct removes the product and then its image asset. A failed asset
// delete is logged and does not fail the call.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	existing, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	if existing.Image != "" {
		s.deleteImage(existing.Image, id)
	}
	return nil
}

func (s *Service) NextProductCode(ctx context.Context) (string, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return "", err
	}
	codes := make([]string, 0, len(products))
	for _, p := range products {
		codes = append(codes, p.Code)
	}
	return xid.NextCode(codes, xid.ProductPrefix), nil
}

// AdjustStock applies an additive change. Stock may go negative.
func (s *Service) AdjustStock(ctx context.Context, id int64, delta int) (domain.Product, error) {
	p, err := s.repo.AdjustStock(ctx, id, delta)
	if err != nil {
		return domain.Product{}, err
	}
	return *p, nil
}

func (s *Service) deleteImage(ref string, productID int64) {
	if s.images == nil {
		return
	}
	if err := s.images.Delete(ref); err != nil {
		log.Warn().Err(err).Int64("product_id", productID).Str("image", ref).Msg("failed to delete product image")
	}
}

// ListCategories seeds the default list the first time it finds none.
func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if len(categories) > 0 {
		return categories, nil
	}

	for _, name := range domain.DefaultCategories {
		if _, err := s.repo.AddCategory(ctx, name); err != nil {
			return nil, fmt.Errorf("seed categories: %w", err)
		}
	}
	log.Info().Int("count", len(domain.DefaultCategories)).Msg("seeded default categories")
	return s.repo.ListCategories(ctx)
}

func (s *Service) AddCategory(ctx context.Context, name string) (domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Category{}, fmt.Errorf("%w: category name is required", ErrInvalidRequest)
	}
	c, err := s.repo.AddCategory(ctx, name)
	if err != nil {
		return domain.Category{}, err
	}
	return *c, nil
}

// DeleteCategory leaves products tagged with the name untouched.
func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	return s.repo.DeleteCategory(ctx, id)
}
