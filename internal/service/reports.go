package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"skmart/backend/internal/domain"
	"skmart/backend/internal/export"
	"skmart/backend/internal/report"
)

const backupVersion = 2

func (s *Service) Report(ctx context.Context) (domain.Report, error) {
	sales, err := s.repo.ListSales(ctx)
	if err != nil {
		return domain.Report{}, err
	}
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return domain.Report{}, err
	}
	return report.Build(sales, products, s.now(), s.reportOptions()), nil
}

// ExportSalesCSV renders the whole ledger and returns it with a dated file
// name.
func (s *Service) ExportSalesCSV(ctx context.Context) ([]byte, string, error) {
	sales, err := s.repo.ListSales(ctx)
	if err != nil {
		return nil, "", err
	}
	var buf bytes.Buffer
	if err := export.WriteSales(&buf, sales, s.loc); err != nil {
		return nil, "", fmt.Errorf("export sales: %w", err)
	}
	return buf.Bytes(), export.SalesFilename(s.now().In(s.loc)), nil
}

func (s *Service) ExportInventoryCSV(ctx context.Context) ([]byte, string, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, "", err
	}
	var buf bytes.Buffer
	if err := export.WriteInventory(&buf, products); err != nil {
		return nil, "", fmt.Errorf("export inventory: %w", err)
	}
	return buf.Bytes(), export.InventoryFilename(s.now().In(s.loc)), nil
}

func (s *Service) Backup(ctx context.Context) (domain.Backup, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return domain.Backup{}, err
	}
	sales, err := s.repo.ListSales(ctx)
	if err != nil {
		return domain.Backup{}, err
	}
	if products == nil {
		products = []domain.Product{}
	}
	if sales == nil {
		sales = []domain.Sale{}
	}
	return domain.Backup{
		Version:   backupVersion,
		Timestamp: s.now().UTC(),
		Data:      domain.BackupData{Products: products, Sales: sales},
	}, nil
}

// Restore replaces whichever of products and sales the request carries.
// Categories are left alone.
func (s *Service) Restore(ctx context.Context, req domain.RestoreRequest) error {
	if req.Products == nil && req.Sales == nil {
		return fmt.Errorf("%w: backup has no products or sales", ErrInvalidRequest)
	}
	if req.Products != nil {
		if err := s.repo.ReplaceProducts(ctx, req.Products); err != nil {
			return fmt.Errorf("restore products: %w", err)
		}
	}
	if req.Sales != nil {
		if err := s.repo.ReplaceSales(ctx, req.Sales); err != nil {
			return fmt.Errorf("restore sales: %w", err)
		}
	}
	log.Warn().Int("products", len(req.Products)).Int("sales", len(req.Sales)).Msg("data restored from backup")
	return nil
}
