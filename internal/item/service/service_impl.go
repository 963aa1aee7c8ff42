package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/masarmall/leasing/internal/cache"
	"github.com/masarmall/leasing/internal/item/domain"
	"github.com/masarmall/leasing/pkg/db"
	"github.com/masarmall/leasing/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var maxPercentage = decimal.NewFromInt(100)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
	Cache cache.ItemPercentageCache `optional:"true"`
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
	cache cache.ItemPercentageCache
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("item.service"),
		genID: p.GenID,
		repo:  p.Repo,
		cache: p.Cache,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateItemRequest) (domain.Item, error) {
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return domain.Item{}, domain.ErrInvalidCode
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Item{}, domain.ErrInvalidName
	}
	if req.ServicePercentage.IsNegative() || req.ServicePercentage.GreaterThan(maxPercentage) {
		return domain.Item{}, domain.ErrInvalidServicePercentage
	}

	now := time.Now().UTC()
	item := domain.Item{
		ID:                s.genID.Generate(),
		Code:              code,
		Name:              name,
		IsStockItem:       req.IsStockItem,
		IsRentSpace:       req.IsRentSpace,
		ServicePercentage: req.ServicePercentage,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.Insert(ctx, s.db, &item); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Item{}, domain.ErrDuplicateCode
		}
		return domain.Item{}, err
	}
	// Drop cached misses for the new item.
	if s.cache != nil {
		s.cache.Invalidate(item.Code)
		s.cache.Invalidate(item.ID.String())
	}
	return item, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Item, error) {
	itemID, err := s.parseID(id)
	if err != nil {
		return domain.Item{}, err
	}
	item, err := s.repo.FindByID(ctx, s.db, itemID)
	if err != nil {
		return domain.Item{}, err
	}
	if item == nil {
		return domain.Item{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) GetByCode(ctx context.Context, code string) (domain.Item, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.Item{}, domain.ErrInvalidCode
	}
	item, err := s.repo.FindByCode(ctx, s.db, code)
	if err != nil {
		return domain.Item{}, err
	}
	if item == nil {
		return domain.Item{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListItemRequest) (domain.ListItemResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, domain.ListItemFilter{
		StockItem:       req.StockItem,
		RentSpace:       req.RentSpace,
		IncludeDisabled: req.IncludeDisabled,
		Codes:           trimCodes(req.Codes),
	}, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListItemResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(item *domain.Item) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        item.ID.String(),
			CreatedAt: item.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	out := make([]domain.Item, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		out = append(out, *item)
	}

	resp := domain.ListItemResponse{Items: out}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func trimCodes(codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		if code = strings.TrimSpace(code); code != "" {
			out = append(out, code)
		}
	}
	return out
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
