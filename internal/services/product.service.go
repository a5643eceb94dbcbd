package services

import (
	"context"
	"errors"

	"github.com/nimasrn/retail-ledger/internal/model"
	"github.com/nimasrn/retail-ledger/internal/repository"
)

type ProductService struct {
	commitHooks
	productRepo ProductRepository
}

func NewProductService(productRepo ProductRepository, flusher Persister) *ProductService {
	return &ProductService{
		commitHooks: commitHooks{flusher: flusher},
		productRepo: productRepo,
	}
}

func (s *ProductService) Create(ctx context.Context, req model.ProductCreateRequest) (*model.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	created, err := s.productRepo.Create(ctx, &model.Product{
		Name:        req.Name,
		PriceBuy:    req.PriceBuy,
		PriceSell:   req.PriceSell,
		Stock:       req.Stock,
		StockDanger: req.StockDanger,
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit()
	return created, nil
}

// Update rewrites a product's editable fields. Snapshots taken by earlier
// orders keep the old values.
func (s *ProductService) Update(ctx context.Context, req model.ProductUpdateRequest) (*model.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	err := s.productRepo.Update(ctx, &model.Product{
		ID:          req.ID,
		Name:        req.Name,
		PriceBuy:    req.PriceBuy,
		PriceSell:   req.PriceSell,
		Stock:       req.Stock,
		StockDanger: req.StockDanger,
	})
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	s.afterCommit()
	return s.Get(ctx, req.ID)
}

func (s *ProductService) Delete(ctx context.Context, id int64) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	s.afterCommit()
	return nil
}

func (s *ProductService) Get(ctx context.Context, id int64) (*model.Product, error) {
	product, err := s.productRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *ProductService) List(ctx context.Context, f model.ProductFilter) ([]*model.Product, int64, error) {
	return s.productRepo.List(ctx, f)
}

func (s *ProductService) Count(ctx context.Context) (int64, error) {
	return s.productRepo.Count(ctx)
}

func (s *ProductService) LowStock(ctx context.Context, limit int) ([]*model.Product, error) {
	return s.productRepo.LowStock(ctx, limit)
}
