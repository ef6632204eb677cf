package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"skillswap-server/models"
	"skillswap-server/store"
	apperrors "skillswap-server/utils/errors"
)

const maxFeedbackLength = 1000

// SwapService coordinates swap requests through their lifecycle:
//
//	PENDING -> ACCEPTED -> COMPLETED (-> rating/feedback)
//	PENDING -> REJECTED
//
// Status writes are conditional on the status read at the start of the
// operation, so two racing transitions cannot both succeed.
type SwapService struct {
	swaps  store.SwapStore
	users  store.UserStore
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

func NewSwapService(swaps store.SwapStore, users store.UserStore, logger *slog.Logger) *SwapService {
	return &SwapService{
		swaps:  swaps,
		users:  users,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// CreateRequest opens a PENDING request between two existing, distinct users.
func (s *SwapService) CreateRequest(ctx context.Context, in SwapInput) (*models.SwapRequest, error) {
	s.logger.InfoContext(ctx, "creating swap request", "from_user_id", in.FromUserID, "to_user_id", in.ToUserID)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	if err := s.requireUser(ctx, in.FromUserID, "From user not found with ID: %s"); err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, in.ToUserID, "To user not found with ID: %s"); err != nil {
		return nil, err
	}
	if in.FromUserID == in.ToUserID {
		return nil, apperrors.InvalidOperation("Cannot create swap request with yourself")
	}

	now := s.now().UTC()
	swap := &models.SwapRequest{
		ID:           s.newID(),
		FromUserID:   in.FromUserID,
		ToUserID:     in.ToUserID,
		SkillOffered: in.SkillOffered,
		SkillWanted:  in.SkillWanted,
		Message:      in.Message,
		Status:       models.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.swaps.Insert(ctx, swap); err != nil {
		s.logger.ErrorContext(ctx, "failed to save swap request", "error", err)
		return nil, apperrors.Internal(err, "Failed to save swap request")
	}
	return swap, nil
}

func (s *SwapService) GetByID(ctx context.Context, id string) (*models.SwapRequest, error) {
	s.logger.InfoContext(ctx, "getting swap request by id", "swap_id", id)
	return s.load(ctx, id)
}

func (s *SwapService) ListByFromUser(ctx context.Context, fromUserID string) ([]models.SwapRequest, error) {
	s.logger.InfoContext(ctx, "getting swap requests by from user", "from_user_id", fromUserID)
	return s.find(ctx, store.SwapQuery{FromUserID: fromUserID})
}

func (s *SwapService) ListByToUser(ctx context.Context, toUserID string) ([]models.SwapRequest, error) {
	s.logger.InfoContext(ctx, "getting swap requests by to user", "to_user_id", toUserID)
	return s.find(ctx, store.SwapQuery{ToUserID: toUserID})
}

// ListByUserAndStatus returns the user's outgoing requests in status followed
// by the incoming ones. The halves are concatenated as-is.
func (s *SwapService) ListByUserAndStatus(ctx context.Context, userID string, status models.SwapStatus) ([]models.SwapRequest, error) {
	s.logger.InfoContext(ctx, "getting swap requests by status", "user_id", userID, "status", status)
	from, err := s.find(ctx, store.SwapQuery{FromUserID: userID, Status: status})
	if err != nil {
		return nil, err
	}
	to, err := s.find(ctx, store.SwapQuery{ToUserID: userID, Status: status})
	if err != nil {
		return nil, err
	}
	return append(from, to...), nil
}

func (s *SwapService) Accept(ctx context.Context, id string) (*models.SwapRequest, error) {
	s.logger.InfoContext(ctx, "accepting swap request", "swap_id", id)
	return s.transition(ctx, id, "accept", models.StatusAccepted)
}

func (s *SwapService) Reject(ctx context.Context, id string) (*models.SwapRequest, error) {
	s.logger.InfoContext(ctx, "rejecting swap request", "swap_id", id)
	return s.transition(ctx, id, "reject", models.StatusRejected)
}

func (s *SwapService) Complete(ctx context.Context, id string) (*models.SwapRequest, error) {
	s.logger.InfoContext(ctx, "completing swap request", "swap_id", id)
	return s.transition(ctx, id, "complete", models.StatusCompleted)
}

// Rate attaches a rating and optional feedback to a completed request.
// Calling it again overwrites both.
func (s *SwapService) Rate(ctx context.Context, id string, rating float64, feedback *string) (*models.SwapRequest, error) {
	s.logger.InfoContext(ctx, "adding rating and feedback to swap request", "swap_id", id, "rating", rating)
	if math.IsNaN(rating) || rating < 0 || rating > 5 {
		return nil, apperrors.Validation("Rating must be between 0 and 5")
	}
	if feedback != nil && len([]rune(*feedback)) > maxFeedbackLength {
		return nil, apperrors.Validation("Feedback must not exceed %d characters", maxFeedbackLength)
	}

	swap, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	const notCompleted = "Cannot add rating to swap request that is not completed"
	if swap.Status != models.StatusCompleted {
		return nil, apperrors.InvalidOperation(notCompleted)
	}

	swap.Rating = &rating
	swap.Feedback = feedback
	swap.UpdatedAt = s.now().UTC()
	if err := s.swaps.UpdateIfStatus(ctx, swap, models.StatusCompleted); err != nil {
		return nil, s.writeError(ctx, err, id, notCompleted)
	}
	return swap, nil
}

// Delete removes a request that is still PENDING.
func (s *SwapService) Delete(ctx context.Context, id string) error {
	s.logger.InfoContext(ctx, "deleting swap request", "swap_id", id)
	swap, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	const notPending = "Cannot delete swap request that is not pending"
	if swap.Status != models.StatusPending {
		return apperrors.InvalidOperation(notPending)
	}
	if err := s.swaps.DeleteIfStatus(ctx, id, models.StatusPending); err != nil {
		return s.writeError(ctx, err, id, notPending)
	}
	return nil
}

// transition moves the request to next if the status graph allows it from
// the current status.
func (s *SwapService) transition(ctx context.Context, id, verb string, next models.SwapStatus) (*models.SwapRequest, error) {
	swap, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	current := swap.Status
	invalid := fmt.Sprintf("Cannot %s swap request that is not %s", verb, requiredSource(next))
	if !current.CanTransitionTo(next) {
		return nil, apperrors.InvalidOperation("%s", invalid)
	}

	swap.Status = next
	swap.UpdatedAt = s.now().UTC()
	if err := s.swaps.UpdateIfStatus(ctx, swap, current); err != nil {
		return nil, s.writeError(ctx, err, id, invalid)
	}
	return swap, nil
}

// requiredSource names the status a request must be in to reach next.
func requiredSource(next models.SwapStatus) string {
	if next == models.StatusCompleted {
		return strings.ToLower(string(models.StatusAccepted))
	}
	return strings.ToLower(string(models.StatusPending))
}

func (s *SwapService) requireUser(ctx context.Context, id, notFound string) error {
	ok, err := s.users.Exists(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to check if user exists", "user_id", id, "error", err)
		return apperrors.Internal(err, "Failed to check if user exists")
	}
	if !ok {
		return apperrors.NotFound(notFound, id)
	}
	return nil
}

func (s *SwapService) load(ctx context.Context, id string) (*models.SwapRequest, error) {
	swap, err := s.swaps.FindByID(ctx, id)
	if errors.Is(err, store.ErrNoRecord) {
		return nil, apperrors.NotFound("Swap request not found with ID: %s", id)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to find swap request", "swap_id", id, "error", err)
		return nil, apperrors.Internal(err, "Failed to find swap request")
	}
	return swap, nil
}

func (s *SwapService) find(ctx context.Context, q store.SwapQuery) ([]models.SwapRequest, error) {
	swaps, err := s.swaps.Find(ctx, q)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to find swap requests", "error", err)
		return nil, apperrors.Internal(err, "Failed to find swap requests")
	}
	return swaps, nil
}

// writeError maps a failed conditional write. A status that moved on under us
// is reported the same way as one that was wrong from the start.
func (s *SwapService) writeError(ctx context.Context, err error, id, invalidMsg string) error {
	switch {
	case errors.Is(err, store.ErrNoRecord):
		return apperrors.NotFound("Swap request not found with ID: %s", id)
	case errors.Is(err, store.ErrStatusChanged):
		s.logger.WarnContext(ctx, "swap request status changed concurrently", "swap_id", id)
		return apperrors.InvalidOperation("%s", invalidMsg)
	default:
		s.logger.ErrorContext(ctx, "failed to save swap request", "swap_id", id, "error", err)
		return apperrors.Internal(err, "Failed to save swap request")
	}
}
