package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fayiz2005/Kaze/internal/models"
	"github.com/fayiz2005/Kaze/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const catalogCachePrefix = "catalog:"

type ProductFilter struct {
	CategoryID *uuid.UUID
	Query      string
	Limit      int
	Offset     int
}

type VariantInput struct {
	SizeType  models.SizeType
	SizeValue string
	Stock     int32
}

type ProductInput struct {
	CategoryID  uuid.UUID
	Name        string
	Description string
	ImageURL    string
	PriceCents  int64
	Stock       int32
	Variants    []VariantInput
}

type productPage struct {
	Items []models.Product
	Total int64
}

type CatalogService struct {
	repo     *repository.Repository
	cache    CacheClient // nil: без кэша
	cacheTTL time.Duration
	log      *zap.Logger
}

func NewCatalogService(repo *repository.Repository, cache CacheClient, cacheTTL time.Duration, log *zap.Logger) *CatalogService {
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &CatalogService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.repo.Categories.List(ctx)
}

func (s *CatalogService) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	if _, _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	existing, err := s.repo.Categories.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyExists
	}

	c := &models.Category{Name: name}
	if err := s.repo.Categories.Create(ctx, c); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return c, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, _, err := requireAdmin(ctx); err != nil {
		return err
	}

	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		cnt, err := tx.Products.CountByCategory(ctx, id)
		if err != nil {
			return err
		}
		if cnt > 0 {
			return ErrInUse
		}

		deleted, err := tx.Categories.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, int64, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	f.Query = strings.TrimSpace(f.Query)

	key := productListKey(f)
	if page, ok := s.cachedPage(ctx, key); ok {
		return page.Items, page.Total, nil
	}

	list, total, err := s.repo.Products.List(ctx, repository.ProductListFilter{
		CategoryID: f.CategoryID,
		Query:      f.Query,
		Limit:      f.Limit,
		Offset:     f.Offset,
	})
	if err != nil {
		return nil, 0, err
	}

	s.storePage(ctx, key, productPage{Items: list, Total: total})
	return list, total, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.repo.Products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

func validateProductInput(in *ProductInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.ImageURL = strings.TrimSpace(in.ImageURL)

	switch {
	case in.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	case in.Description == "":
		return fmt.Errorf("%w: description is required", ErrInvalidInput)
	case in.PriceCents < 0:
		return fmt.Errorf("%w: price must be >= 0", ErrInvalidInput)
	case in.Stock < 0:
		return fmt.Errorf("%w: stock must be >= 0", ErrInvalidInput)
	case in.CategoryID == uuid.Nil:
		return fmt.Errorf("%w: categoryId is required", ErrInvalidInput)
	case len(in.Variants) == 0:
		return fmt.Errorf("%w: at least one variant is required", ErrInvalidInput)
	}

	seen := make(map[string]struct{}, len(in.Variants))
	for i := range in.Variants {
		v := &in.Variants[i]
		v.SizeValue = strings.TrimSpace(v.SizeValue)
		if v.SizeType != models.SizeStandard && v.SizeType != models.SizeWaist {
			return fmt.Errorf("%w: variant %d: sizeType must be STANDARD or WAIST", ErrInvalidInput, i)
		}
		if v.SizeValue == "" {
			return fmt.Errorf("%w: variant %d: sizeValue is required", ErrInvalidInput, i)
		}
		if v.Stock < 0 {
			return fmt.Errorf("%w: variant %d: stock must be >= 0", ErrInvalidInput, i)
		}
		k := string(v.SizeType) + "/" + strings.ToLower(v.SizeValue)
		if _, dup := seen[k]; dup {
			return fmt.Errorf("%w: duplicate variant %s %s", ErrInvalidInput, v.SizeType, v.SizeValue)
		}
		seen[k] = struct{}{}
	}
	return nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	if _, _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := validateProductInput(&in); err != nil {
		return nil, err
	}

	p := &models.Product{
		CategoryID:  in.CategoryID,
		Name:        in.Name,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		PriceCents:  in.PriceCents,
		Stock:       in.Stock,
	}
	for _, v := range in.Variants {
		p.Variants = append(p.Variants, models.ProductVariant{
			SizeType:  v.SizeType,
			SizeValue: v.SizeValue,
			Stock:     v.Stock,
		})
	}

	var created *models.Product
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		cat, err := tx.Categories.GetByID(ctx, in.CategoryID)
		if err != nil {
			return err
		}
		if cat == nil {
			return &ReferenceError{Kind: "category", ID: in.CategoryID}
		}

		if err := tx.Products.Create(ctx, p); err != nil {
			return err
		}

		created, err = tx.Products.GetByID(ctx, p.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.log.Info("товар создан", zap.String("product_id", created.ID.String()), zap.Int("variants", len(created.Variants)))
	return created, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, _, err := requireAdmin(ctx); err != nil {
		return err
	}

	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		refs, err := tx.OrderItems.CountByProduct(ctx, id)
		if err != nil {
			return err
		}
		if refs > 0 {
			return ErrInUse
		}

		deleted, err := tx.Products.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx)
	return nil
}

// SetVariantStock: ручная коррекция остатка, перезапись значения.
func (s *CatalogService) SetVariantStock(ctx context.Context, productID, variantID uuid.UUID, stock int32) (*models.ProductVariant, error) {
	if _, _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	if stock < 0 {
		return nil, fmt.Errorf("%w: stock must be >= 0", ErrInvalidInput)
	}

	ok, err := s.repo.Variants.SetStock(ctx, productID, variantID, stock)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}

	s.invalidate(ctx)
	return s.repo.Variants.GetByID(ctx, variantID)
}

func (s *CatalogService) SetProductStock(ctx context.Context, productID uuid.UUID, stock int32) (*models.Product, error) {
	if _, _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	if stock < 0 {
		return nil, fmt.Errorf("%w: stock must be >= 0", ErrInvalidInput)
	}

	ok, err := s.repo.Products.SetStock(ctx, productID, stock)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}

	s.invalidate(ctx)
	return s.GetProduct(ctx, productID)
}

func productListKey(f ProductFilter) string {
	cat := "all"
	if f.CategoryID != nil {
		cat = f.CategoryID.String()
	}
	return fmt.Sprintf("%sproducts:%s:%s:%d:%d", catalogCachePrefix, cat, strings.ToLower(f.Query), f.Limit, f.Offset)
}

func (s *CatalogService) cachedPage(ctx context.Context, key string) (productPage, bool) {
	var page productPage
	if s.cache == nil {
		return page, false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		return page, false
	}
	if err := json.Unmarshal([]byte(raw), &page); err != nil {
		s.log.Warn("битая запись в кэше каталога", zap.String("key", key), zap.Error(err))
		return page, false
	}
	return page, true
}

func (s *CatalogService) storePage(ctx context.Context, key string, page productPage) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(page)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
		s.log.Warn("не удалось записать кэш каталога", zap.Error(err))
	}
}

// invalidate сбрасывает кэш каталога после любой записи; ошибка Redis не
// ломает запись в БД, TTL всё равно ограничит устаревание.
func (s *CatalogService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DelByPrefix(ctx, catalogCachePrefix); err != nil {
		s.log.Warn("не удалось сбросить кэш каталога", zap.Error(err))
	}
}
