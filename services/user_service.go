package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"skillswap-server/models"
	"skillswap-server/store"
	apperrors "skillswap-server/utils/errors"
)

// searchSentinel is the highest BMP private-use codepoint. Names in
// [term, term+searchSentinel) approximate "starts with term".
const searchSentinel = "\uF8FF"

// UserService is the user directory: registration, profile updates,
// visibility and skill/availability discovery.
type UserService struct {
	users  store.UserStore
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

func NewUserService(users store.UserStore, logger *slog.Logger) *UserService {
	return &UserService{
		users:  users,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Register creates a user with a zero rating.
func (s *UserService) Register(ctx context.Context, in UserInput) (*models.User, error) {
	s.logger.InfoContext(ctx, "creating new user", "name", in.Name)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := &models.User{
		ID:            s.newID(),
		Name:          in.Name,
		ProfilePhoto:  in.ProfilePhoto,
		Location:      in.Location,
		Availability:  in.Availability,
		SkillsOffered: in.SkillsOffered,
		SkillsWanted:  in.SkillsWanted,
		PublicProfile: *in.PublicProfile,
		Rating:        0.0,
		About:         in.About,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to save user", "error", err)
		return nil, apperrors.Internal(err, "Failed to save user")
	}
	return user, nil
}

// Update overwrites every writable field. Rating and CreatedAt are kept.
func (s *UserService) Update(ctx context.Context, id string, in UserInput) (*models.User, error) {
	s.logger.InfoContext(ctx, "updating user", "user_id", id)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Name = in.Name
	user.ProfilePhoto = in.ProfilePhoto
	user.Location = in.Location
	user.Availability = in.Availability
	user.SkillsOffered = in.SkillsOffered
	user.SkillsWanted = in.SkillsWanted
	user.PublicProfile = *in.PublicProfile
	user.About = in.About

	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetByID returns a public profile. Private profiles are never returned,
// whoever asks.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	s.logger.InfoContext(ctx, "getting user by id", "user_id", id)
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.PublicProfile {
		return nil, apperrors.AccessDenied("User profile is private")
	}
	return user, nil
}

func (s *UserService) ListPublic(ctx context.Context) ([]models.User, error) {
	s.logger.InfoContext(ctx, "getting all public users")
	public := true
	return s.find(ctx, store.UserQuery{PublicProfile: &public})
}

// Search returns users whose name n satisfies term <= n < term+searchSentinel
// under codepoint ordering.
func (s *UserService) Search(ctx context.Context, term string) ([]models.User, error) {
	s.logger.InfoContext(ctx, "searching users", "term", term)
	return s.find(ctx, store.UserQuery{NameFrom: term, NameBefore: term + searchSentinel})
}

func (s *UserService) FindBySkillOffered(ctx context.Context, skill string) ([]models.User, error) {
	s.logger.InfoContext(ctx, "getting users by skill offered", "skill", skill)
	return s.find(ctx, store.UserQuery{SkillOffered: &skill})
}

func (s *UserService) FindBySkillWanted(ctx context.Context, skill string) ([]models.User, error) {
	s.logger.InfoContext(ctx, "getting users by skill wanted", "skill", skill)
	return s.find(ctx, store.UserQuery{SkillWanted: &skill})
}

func (s *UserService) FindByAvailability(ctx context.Context, availability string) ([]models.User, error) {
	s.logger.InfoContext(ctx, "getting users by availability", "availability", availability)
	return s.find(ctx, store.UserQuery{Availability: &availability})
}

// Delete removes the user. Swap requests referencing it are left in place.
func (s *UserService) Delete(ctx context.Context, id string) error {
	s.logger.InfoContext(ctx, "deleting user", "user_id", id)
	if err := s.users.Delete(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to delete user", "user_id", id, "error", err)
		return apperrors.Internal(err, "Failed to delete user")
	}
	return nil
}

func (s *UserService) ToggleVisibility(ctx context.Context, id string) (*models.User, error) {
	s.logger.InfoContext(ctx, "toggling profile visibility", "user_id", id)
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	user.PublicProfile = !user.PublicProfile
	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) load(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, store.ErrNoRecord) {
		return nil, apperrors.NotFound("User not found with ID: %s", id)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to find user", "user_id", id, "error", err)
		return nil, apperrors.Internal(err, "Failed to find user")
	}
	return user, nil
}

func (s *UserService) save(ctx context.Context, user *models.User) error {
	user.UpdatedAt = s.now().UTC()
	err := s.users.Replace(ctx, user)
	if errors.Is(err, store.ErrNoRecord) {
		return apperrors.NotFound("User not found with ID: %s", user.ID)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to save user", "user_id", user.ID, "error", err)
		return apperrors.Internal(err, "Failed to save user")
	}
	return nil
}

func (s *UserService) find(ctx context.Context, q store.UserQuery) ([]models.User, error) {
	users, err := s.users.Find(ctx, q)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to find users", "error", err)
		return nil, apperrors.Internal(err, "Failed to find users")
	}
	return users, nil
}
