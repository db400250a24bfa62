// Package businessflow contains the core business logic and use cases for the access and property workflows
package businessflow

import (
	"context"
	"fmt"
	"time"

	"github.com/faqbnb/faqbnb-api/app/dto"
	"github.com/faqbnb/faqbnb-api/models"
	"github.com/faqbnb/faqbnb-api/repository"
	"github.com/faqbnb/faqbnb-api/utils"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// AnalyticsFlow computes visit and reaction analytics for dashboards and
// exports. Account-scoped queries only ever see the account's own items.
type AnalyticsFlow interface {
	DashboardStats(ctx context.Context, accountID uint) (*dto.DashboardStatsResponse, error)
	ItemAnalytics(ctx context.Context, accountID uint, publicID uuid.UUID) (*dto.ItemAnalyticsResponse, error)
	SystemStats(ctx context.Context) (*dto.AdminSystemStatsResponse, error)
	ExportAccountReport(ctx context.Context, accountID uint) (string, []byte, error)
}

// AnalyticsFlowImpl implements the analytics business flow
type AnalyticsFlowImpl struct {
	accountRepo  repository.AccountRepository
	userRepo     repository.UserRepository
	propertyRepo repository.PropertyRepository
	itemRepo     repository.ItemRepository
	visitRepo    repository.ItemVisitRepository
	reactionRepo repository.ItemReactionRepository
	requestRepo  repository.AccessRequestRepository
	mailingRepo  repository.MailingListRepository
}

// NewAnalyticsFlow creates a new analytics flow instance
func NewAnalyticsFlow(
	accountRepo repository.AccountRepository,
	userRepo repository.UserRepository,
	propertyRepo repository.PropertyRepository,
	itemRepo repository.ItemRepository,
	visitRepo repository.ItemVisitRepository,
	reactionRepo repository.ItemReactionRepository,
	requestRepo repository.AccessRequestRepository,
	mailingRepo repository.MailingListRepository,
) AnalyticsFlow {
	return &AnalyticsFlowImpl{
		accountRepo:  accountRepo,
		userRepo:     userRepo,
		propertyRepo: propertyRepo,
		itemRepo:     itemRepo,
		visitRepo:    visitRepo,
		reactionRepo: reactionRepo,
		requestRepo:  requestRepo,
		mailingRepo:  mailingRepo,
	}
}

// DashboardStats summarizes the account: counts, recent visit volume, top
// items over the last 30 days, and reaction totals.
func (s *AnalyticsFlowImpl) DashboardStats(ctx context.Context, accountID uint) (*dto.DashboardStatsResponse, error) {
	items, err := s.accountItems(ctx, accountID)
	if err != nil {
		return nil, err
	}

	propertyCount, err := s.propertyRepo.Count(ctx, models.PropertyFilter{AccountID: &accountID})
	if err != nil {
		return nil, NewBusinessError("STATS_FAILED", "Failed to compute dashboard stats", err)
	}

	itemIDs := make([]uint, 0, len(items))
	itemByID := make(map[uint]*models.Item, len(items))
	for _, item := range items {
		itemIDs = append(itemIDs, item.ID)
		itemByID[item.ID] = item
	}

	now := utils.UTCNow()
	var visits7d, visits30d int64
	reactionsByType := make(map[string]int64)
	for _, item := range items {
		v7, err := s.visitRepo.CountSince(ctx, item.ID, now.Add(-7*24*time.Hour))
		if err != nil {
			return nil, NewBusinessError("STATS_FAILED", "Failed to compute dashboard stats", err)
		}
		v30, err := s.visitRepo.CountSince(ctx, item.ID, now.Add(-30*24*time.Hour))
		if err != nil {
			return nil, NewBusinessError("STATS_FAILED", "Failed to compute dashboard stats", err)
		}
		visits7d += v7
		visits30d += v30

		reactions, err := s.reactionRepo.CountByType(ctx, item.ID)
		if err != nil {
			return nil, NewBusinessError("STATS_FAILED", "Failed to compute dashboard stats", err)
		}
		for t, c := range reactions {
			reactionsByType[t] += c
		}
	}

	topCounts, err := s.visitRepo.TopItemsByVisits(ctx, itemIDs, now.Add(-30*24*time.Hour), 5)
	if err != nil {
		return nil, NewBusinessError("STATS_FAILED", "Failed to compute dashboard stats", err)
	}

	topItems := make([]dto.TopItemDTO, 0, len(topCounts))
	for _, tc := range topCounts {
		item := itemByID[tc.ItemID]
		if item == nil {
			continue
		}
		topItems = append(topItems, dto.TopItemDTO{
			ItemID:   tc.ItemID,
			PublicID: item.PublicID.String(),
			Name:     item.Name,
			Visits:   tc.Count,
		})
	}

	return &dto.DashboardStatsResponse{
		Message:         "Dashboard stats retrieved",
		PropertyCount:   propertyCount,
		ItemCount:       int64(len(items)),
		VisitsLast7d:    visits7d,
		VisitsLast30d:   visits30d,
		TopItems:        topItems,
		ReactionsByType: reactionsByType,
	}, nil
}

// ItemAnalytics returns windowed visit counts, unique session count, and
// reaction totals for one item of the account.
func (s *AnalyticsFlowImpl) ItemAnalytics(ctx context.Context, accountID uint, publicID uuid.UUID) (*dto.ItemAnalyticsResponse, error) {
	item, err := s.itemRepo.ByPublicID(ctx, publicID)
	if err != nil {
		return nil, NewBusinessError("ANALYTICS_FAILED", "Failed to fetch item", err)
	}
	if item == nil {
		return nil, NewBusinessError("ITEM_NOT_FOUND", "Item not found", ErrItemNotFound)
	}

	property, err := s.propertyRepo.ByID(ctx, item.PropertyID)
	if err != nil {
		return nil, NewBusinessError("ANALYTICS_FAILED", "Failed to fetch item", err)
	}
	if property == nil || property.AccountID != accountID {
		return nil, NewBusinessError("ITEM_NOT_FOUND", "Item not found", ErrItemNotFound)
	}

	now := utils.UTCNow()
	windows := []time.Duration{24 * time.Hour, 7 * 24 * time.Hour, 30 * 24 * time.Hour}
	counts := make([]int64, len(windows))
	for i, w := range windows {
		counts[i], err = s.visitRepo.CountSince(ctx, item.ID, now.Add(-w))
		if err != nil {
			return nil, NewBusinessError("ANALYTICS_FAILED", "Failed to count visits", err)
		}
	}

	allTime, err := s.visitRepo.Count(ctx, models.ItemVisitFilter{ItemID: &item.ID})
	if err != nil {
		return nil, NewBusinessError("ANALYTICS_FAILED", "Failed to count visits", err)
	}

	uniqueSessions, err := s.visitRepo.CountUniqueSessions(ctx, item.ID)
	if err != nil {
		return nil, NewBusinessError("ANALYTICS_FAILED", "Failed to count unique sessions", err)
	}

	reactions, err := s.reactionRepo.CountByType(ctx, item.ID)
	if err != nil {
		return nil, NewBusinessError("ANALYTICS_FAILED", "Failed to count reactions", err)
	}

	return &dto.ItemAnalyticsResponse{
		Message:        "Item analytics retrieved",
		ItemID:         item.ID,
		Name:           item.Name,
		VisitsLast24h:  counts[0],
		VisitsLast7d:   counts[1],
		VisitsLast30d:  counts[2],
		VisitsAllTime:  allTime,
		UniqueSessions: uniqueSessions,
		Reactions:      reactions,
	}, nil
}

// SystemStats summarizes the whole system for the admin dashboard
func (s *AnalyticsFlowImpl) SystemStats(ctx context.Context) (*dto.AdminSystemStatsResponse, error) {
	accountCount, err := s.accountRepo.Count(ctx, models.AccountFilter{})
	if err != nil {
		return nil, NewBusinessError("STATS_FAILED", "Failed to compute system stats", err)
	}
	userCount, err := s.userRepo.Count(ctx, models.UserFilter{})
	if err != nil {
		return nil, NewBusinessError("STATS_FAILED", "Failed to compute system stats", err)
	}
	propertyCount, err := s.propertyRepo.Count(ctx, models.PropertyFilter{})
	if err != nil {
		return nil, NewBusinessError("STATS_FAILED", "Failed to compute system stats", err)
	}
	itemCount, err := s.itemRepo.Count(ctx, models.ItemFilter{})
	if err != nil {
		return nil, NewBusinessError("STATS_FAILED", "Failed to compute system stats", err)
	}
	requestCounts, err := s.requestRepo.CountByStatus(ctx)
	if err != nil {
		return nil, NewBusinessError("STATS_FAILED", "Failed to compute system stats", err)
	}
	subscriberCount, err := s.mailingRepo.Count(ctx, models.MailingListSubscriberFilter{IsSubscribed: utils.ToPtr(true)})
	if err != nil {
		return nil, NewBusinessError("STATS_FAILED", "Failed to compute system stats", err)
	}

	return &dto.AdminSystemStatsResponse{
		Message:             "System stats retrieved",
		AccountCount:        accountCount,
		UserCount:           userCount,
		PropertyCount:       propertyCount,
		ItemCount:           itemCount,
		AccessRequestCounts: requestCounts,
		SubscriberCount:     subscriberCount,
	}, nil
}

// ExportAccountReport builds an XLSX workbook with one sheet per property,
// one row per item with visit and reaction totals. Returns a filename and
// the file bytes.
func (s *AnalyticsFlowImpl) ExportAccountReport(ctx context.Context, accountID uint) (string, []byte, error) {
	account, err := s.accountRepo.ByID(ctx, accountID)
	if err != nil {
		return "", nil, NewBusinessError("EXPORT_FAILED", "Failed to fetch account", err)
	}
	if account == nil {
		return "", nil, NewBusinessError("ACCOUNT_NOT_FOUND", "Account not found", ErrAccountNotFound)
	}

	properties, err := s.propertyRepo.ListByAccount(ctx, accountID, 0, 0)
	if err != nil {
		return "", nil, NewBusinessError("EXPORT_FAILED", "Failed to fetch properties", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	usedNames := map[string]bool{}
	for i, property := range properties {
		baseName := sanitizeSheetName(property.Name)
		name := baseName
		idx := 1
		for usedNames[name] {
			idx++
			name = truncateSheetName(fmt.Sprintf("%s_%d", baseName, idx))
		}
		usedNames[name] = true
		if i == 0 {
			xl.SetSheetName(xl.GetSheetName(0), name)
		} else {
			_, _ = xl.NewSheet(name)
		}

		header := []string{"item_id", "public_id", "name", "visits_7d", "visits_30d", "visits_all_time", "unique_sessions", "likes", "dislikes", "loves", "confused"}
		for col, h := range header {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			_ = xl.SetCellValue(name, cell, h)
		}

		items, err := s.itemRepo.ListByProperty(ctx, property.ID)
		if err != nil {
			return "", nil, NewBusinessError("EXPORT_FAILED", "Failed to fetch items", err)
		}

		now := utils.UTCNow()
		for rowIdx, item := range items {
			v7, err := s.visitRepo.CountSince(ctx, item.ID, now.Add(-7*24*time.Hour))
			if err != nil {
				return "", nil, NewBusinessError("EXPORT_FAILED", "Failed to count visits", err)
			}
			v30, err := s.visitRepo.CountSince(ctx, item.ID, now.Add(-30*24*time.Hour))
			if err != nil {
				return "", nil, NewBusinessError("EXPORT_FAILED", "Failed to count visits", err)
			}
			all, err := s.visitRepo.Count(ctx, models.ItemVisitFilter{ItemID: &item.ID})
			if err != nil {
				return "", nil, NewBusinessError("EXPORT_FAILED", "Failed to count visits", err)
			}
			unique, err := s.visitRepo.CountUniqueSessions(ctx, item.ID)
			if err != nil {
				return "", nil, NewBusinessError("EXPORT_FAILED", "Failed to count unique sessions", err)
			}
			reactions, err := s.reactionRepo.CountByType(ctx, item.ID)
			if err != nil {
				return "", nil, NewBusinessError("EXPORT_FAILED", "Failed to count reactions", err)
			}

			values := []any{
				item.ID, item.PublicID.String(), item.Name, v7, v30, all, unique,
				reactions[models.ReactionTypeLike], reactions[models.ReactionTypeDislike],
				reactions[models.ReactionTypeLove], reactions[models.ReactionTypeConfused],
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, rowIdx+2)
				_ = xl.SetCellValue(name, cell, v)
			}
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXPORT_FAILED", "Failed to write workbook", err)
	}

	filename := fmt.Sprintf("account_%d_report_%s.xlsx", accountID, utils.UTCNow().Format("20060102_150405"))
	return filename, buf.Bytes(), nil
}

func (s *AnalyticsFlowImpl) accountItems(ctx context.Context, accountID uint) ([]*models.Item, error) {
	properties, err := s.propertyRepo.ListByAccount(ctx, accountID, 0, 0)
	if err != nil {
		return nil, NewBusinessError("STATS_FAILED", "Failed to fetch properties", err)
	}

	var items []*models.Item
	for _, property := range properties {
		propertyItems, err := s.itemRepo.ListByProperty(ctx, property.ID)
		if err != nil {
			return nil, NewBusinessError("STATS_FAILED", "Failed to fetch items", err)
		}
		items = append(items, propertyItems...)
	}

	return items, nil
}

// sanitizeSheetName strips characters Excel rejects in sheet names
func sanitizeSheetName(name string) string {
	if name == "" {
		return "Sheet"
	}
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			out = append(out, '_')
		default:
			out = append(out, r)
		}
	}
	return truncateSheetName(string(out))
}

// truncateSheetName enforces the 31 character sheet name limit
func truncateSheetName(name string) string {
	runes := []rune(name)
	if len(runes) <= 31 {
		return name
	}
	return string(runes[:31])
}
