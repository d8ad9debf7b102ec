package service

import (
	"context"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// RequestService owns wish-list requests and the request -> items join used
// when presenting them.
type RequestService struct {
	store  domain.Store
	logger *zerolog.Logger
	now    func() time.Time
}

func NewRequestService(store domain.Store, logger *zerolog.Logger) *RequestService {
	return &RequestService{store: store, logger: logger, now: time.Now}
}

func (s *RequestService) Create(ctx context.Context, requesterID int64, description string) (*models.Request, error) {
	if err := s.store.UserExists(ctx, requesterID); err != nil {
		return nil, err
	}
	request := &models.Request{
		Description: description,
		RequesterID: requesterID,
		CreatedAt:   s.now(),
	}
	if err := s.store.CreateRequest(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

// ListOwn returns the user's requests with the items answering them, joined
// in one batch query.
func (s *RequestService) ListOwn(ctx context.Context, requesterID int64, page models.Page) ([]models.RequestSummary, error) {
	if err := s.store.UserExists(ctx, requesterID); err != nil {
		return nil, err
	}
	requests, err := s.store.ListRequestsByRequester(ctx, requesterID, page)
	if err != nil {
		return nil, err
	}
	return s.attachItems(ctx, requests)
}

// ListOthers returns requests from all other users, so the caller can offer
// an item against one of them.
func (s *RequestService) ListOthers(ctx context.Context, userID int64, page models.Page) ([]models.RequestSummary, error) {
	if err := s.store.UserExists(ctx, userID); err != nil {
		return nil, err
	}
	requests, err := s.store.ListOtherRequests(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	return s.attachItems(ctx, requests)
}

func (s *RequestService) Get(ctx context.Context, userID, requestID int64) (*models.RequestSummary, error) {
	if err := s.store.UserExists(ctx, userID); err != nil {
		return nil, err
	}
	request, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	summaries, err := s.attachItems(ctx, []models.Request{*request})
	if err != nil {
		return nil, err
	}
	return &summaries[0], nil
}

func (s *RequestService) attachItems(ctx context.Context, requests []models.Request) ([]models.RequestSummary, error) {
	requestIDs := make([]int64, len(requests))
	for i, r := range requests {
		requestIDs[i] = r.ID
	}
	items, err := s.store.ListItemsByRequestIDs(ctx, requestIDs)
	if err != nil {
		return nil, err
	}
	itemsByRequest := make(map[int64][]models.Item)
	for _, item := range items {
		if item.RequestID == nil {
			continue
		}
		itemsByRequest[*item.RequestID] = append(itemsByRequest[*item.RequestID], item)
	}

	summaries := make([]models.RequestSummary, 0, len(requests))
	for _, r := range requests {
		itemList := itemsByRequest[r.ID]
		if itemList == nil {
			itemList = []models.Item{}
		}
		summaries = append(summaries, models.RequestSummary{Request: r, Items: itemList})
	}
	return summaries, nil
}
