package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// ItemService owns item CRUD, the owner dashboard aggregation, search and
// the comment gate.
type ItemService struct {
	store    domain.Store
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewItemService(store domain.Store, eventBus domain.EventPublisher, logger *zerolog.Logger) *ItemService {
	return &ItemService{
		store:    store,
		eventBus: eventBus,
		logger:   logger,
		now:      time.Now,
	}
}

// ItemUpdate carries a partial item patch. Nil fields are left untouched.
type ItemUpdate struct {
	Name        *string
	Description *string
	Available   *bool
}

func (s *ItemService) Create(ctx context.Context, ownerID int64, item *models.Item) (*models.Item, error) {
	if err := s.store.UserExists(ctx, ownerID); err != nil {
		return nil, err
	}
	if item.RequestID != nil {
		if _, err := s.store.GetRequest(ctx, *item.RequestID); err != nil {
			return nil, err
		}
	}
	item.OwnerID = ownerID
	if err := s.store.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ItemService) Update(ctx context.Context, ownerID, itemID int64, patch ItemUpdate) (*models.Item, error) {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != ownerID {
		return nil, fmt.Errorf("item %d does not belong to user %d: %w", itemID, ownerID, ErrForbidden)
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) != "" {
		item.Name = *patch.Name
	}
	if patch.Description != nil && strings.TrimSpace(*patch.Description) != "" {
		item.Description = *patch.Description
	}
	if patch.Available != nil {
		item.Available = *patch.Available
	}
	if err := s.store.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ItemService) Delete(ctx context.Context, ownerID, itemID int64) error {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return err
	}
	if item.OwnerID != ownerID {
		return fmt.Errorf("item %d does not belong to user %d: %w", itemID, ownerID, ErrForbidden)
	}
	return s.store.DeleteItem(ctx, itemID)
}

// ListOwnerItems builds the owner dashboard: the page of items, each with
// its nearest past and future approved bookings and its comments. Comments
// and bookings are fetched in one batch query each, never per item.
func (s *ItemService) ListOwnerItems(ctx context.Context, ownerID int64, page models.Page) ([]models.ItemSummary, error) {
	if err := s.store.UserExists(ctx, ownerID); err != nil {
		return nil, err
	}
	now := s.now()

	items, err := s.store.ListItemsByOwner(ctx, ownerID, page)
	if err != nil {
		return nil, err
	}
	itemIDs := make([]int64, len(items))
	for i, item := range items {
		itemIDs[i] = item.ID
	}

	comments, err := s.store.ListCommentsByItemIDs(ctx, itemIDs)
	if err != nil {
		return nil, err
	}
	commentsByItem := groupComments(comments)

	bookings, err := s.store.ListBookingsByItemIDs(ctx, itemIDs)
	if err != nil {
		return nil, err
	}
	bookingsByItem := make(map[int64][]models.Booking)
	for _, b := range bookings {
		bookingsByItem[b.ItemID] = append(bookingsByItem[b.ItemID], b)
	}

	summaries := make([]models.ItemSummary, 0, len(items))
	for _, item := range items {
		last, next := lastNextBooking(bookingsByItem[item.ID], now)
		summaries = append(summaries, models.ItemSummary{
			Item:        item,
			LastBooking: last,
			NextBooking: next,
			Comments:    commentsByItem[item.ID],
		})
	}
	return summaries, nil
}

// Get returns the item with its comments. Booking summaries are private to
// the owner: any other caller gets them omitted no matter what exists.
func (s *ItemService) Get(ctx context.Context, userID, itemID int64) (*models.ItemSummary, error) {
	if err := s.store.UserExists(ctx, userID); err != nil {
		return nil, err
	}
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	summary := &models.ItemSummary{Item: *item, Comments: []models.CommentSummary{}}
	comments, err := s.store.ListCommentsByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	summary.Comments = commentSummaries(comments)

	if item.OwnerID == userID {
		now := s.now()
		last, err := s.store.LastBookingForItem(ctx, itemID, now)
		if err != nil {
			return nil, err
		}
		next, err := s.store.NextBookingForItem(ctx, itemID, now)
		if err != nil {
			return nil, err
		}
		summary.LastBooking = bookingSummary(last)
		summary.NextBooking = bookingSummary(next)
	}
	return summary, nil
}

// Search finds available items whose name or description contains text,
// case-insensitively. Blank text is an explicit short-circuit to an empty
// result, not a query for everything.
func (s *ItemService) Search(ctx context.Context, userID int64, text string, page models.Page) ([]models.ItemSummary, error) {
	if err := s.store.UserExists(ctx, userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return []models.ItemSummary{}, nil
	}

	items, err := s.store.SearchItems(ctx, strings.ToLower(text), page)
	if err != nil {
		return nil, err
	}
	itemIDs := make([]int64, len(items))
	for i, item := range items {
		itemIDs[i] = item.ID
	}
	comments, err := s.store.ListCommentsByItemIDs(ctx, itemIDs)
	if err != nil {
		return nil, err
	}
	commentsByItem := groupComments(comments)

	summaries := make([]models.ItemSummary, 0, len(items))
	for _, item := range items {
		summaries = append(summaries, models.ItemSummary{
			Item:     item,
			Comments: commentsByItem[item.ID],
		})
	}
	return summaries, nil
}

// PostComment creates a comment after proving the author completed an
// approved booking of the item. A pure existence check, not a transition.
func (s *ItemService) PostComment(ctx context.Context, authorID, itemID int64, text string) (*models.CommentSummary, error) {
	author, err := s.store.GetUser(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetItem(ctx, itemID); err != nil {
		return nil, err
	}

	now := s.now()
	ok, err := s.store.HasFinishedBooking(ctx, authorID, itemID, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("user %d never finished a booking of item %d: %w", authorID, itemID, ErrCommentNotAllowed)
	}

	comment := &models.Comment{
		Text:      text,
		ItemID:    itemID,
		AuthorID:  authorID,
		CreatedAt: now,
	}
	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		payload := events.CommentPayload{CommentID: comment.ID, ItemID: itemID, AuthorID: authorID}
		if err := s.eventBus.PublishJSON(events.EventCommentPosted, payload); err != nil {
			s.logger.Error().Err(err).Msg("failed to publish comment event")
		}
	}

	return &models.CommentSummary{
		ID:         comment.ID,
		Text:       comment.Text,
		AuthorName: author.Name,
		Created:    comment.CreatedAt,
	}, nil
}

// lastNextBooking selects the approved booking with the greatest start not
// after now and the one with the smallest start after now. The input is
// sorted by (start, id) ascending, so on equal starts the most recently
// inserted booking wins.
func lastNextBooking(bookings []models.Booking, now time.Time) (last, next *models.BookingSummary) {
	var lastB, nextB *models.Booking
	for i := range bookings {
		b := &bookings[i]
		if b.Status != models.StatusApproved {
			continue
		}
		if !b.Start.After(now) {
			lastB = b
			continue
		}
		if nextB == nil || b.Start.Equal(nextB.Start) {
			nextB = b
		}
	}
	return bookingSummary(lastB), bookingSummary(nextB)
}

func bookingSummary(b *models.Booking) *models.BookingSummary {
	if b == nil {
		return nil
	}
	return &models.BookingSummary{ID: b.ID, BookerID: b.BookerID, Start: b.Start, End: b.End}
}

func commentSummaries(comments []models.Comment) []models.CommentSummary {
	summaries := make([]models.CommentSummary, 0, len(comments))
	for _, c := range comments {
		summaries = append(summaries, models.CommentSummary{
			ID:         c.ID,
			Text:       c.Text,
			AuthorName: c.AuthorName,
			Created:    c.CreatedAt,
		})
	}
	return summaries
}

func groupComments(comments []models.Comment) map[int64][]models.CommentSummary {
	grouped := make(map[int64][]models.CommentSummary)
	for _, c := range comments {
		grouped[c.ItemID] = append(grouped[c.ItemID], models.CommentSummary{
			ID:         c.ID,
			Text:       c.Text,
			AuthorName: c.AuthorName,
			Created:    c.CreatedAt,
		})
	}
	return grouped
}
