//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks

// Package store holds the persistence collaborators of the directory: a
// capability interface per collection and the memory, Badger and Mongo
// implementations of it, plus a Redis read-through cache for users.
package store

import (
	"context"
	"errors"
	"slices"

	"skillswap-server/models"
)

var (
	// ErrNoRecord is returned when the requested id is not stored.
	ErrNoRecord = errors.New("record not found")
	// ErrStatusChanged is returned by conditional swap writes when the stored
	// status no longer matches the expected one.
	ErrStatusChanged = errors.New("swap request status changed")
)

type UserStore interface {
	Insert(ctx context.Context, user *models.User) error
	Replace(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	Exists(ctx context.Context, id string) (bool, error)
	Find(ctx context.Context, q UserQuery) ([]models.User, error)
	Delete(ctx context.Context, id string) error
}

type SwapStore interface {
	Insert(ctx context.Context, swap *models.SwapRequest) error
	FindByID(ctx context.Context, id string) (*models.SwapRequest, error)
	Find(ctx context.Context, q SwapQuery) ([]models.SwapRequest, error)
	// UpdateIfStatus replaces the stored request only while its status is still expected.
	UpdateIfStatus(ctx context.Context, swap *models.SwapRequest, expected models.SwapStatus) error
	// DeleteIfStatus removes the request only while its status is still expected.
	DeleteIfStatus(ctx context.Context, id string, expected models.SwapStatus) error
}

// UserQuery filters users. Nil or empty fields are ignored, the rest are
// ANDed. The membership filters are pointers so that "" can be matched.
type UserQuery struct {
	PublicProfile *bool
	SkillOffered  *string
	SkillWanted   *string
	Availability  *string
	// NameFrom and NameBefore bound the half-open range [NameFrom, NameBefore).
	NameFrom   string
	NameBefore string
}

func (q UserQuery) Matches(u models.User) bool {
	if q.PublicProfile != nil && u.PublicProfile != *q.PublicProfile {
		return false
	}
	if q.SkillOffered != nil && !slices.Contains(u.SkillsOffered, *q.SkillOffered) {
		return false
	}
	if q.SkillWanted != nil && !slices.Contains(u.SkillsWanted, *q.SkillWanted) {
		return false
	}
	if q.Availability != nil && !slices.Contains(u.Availability, *q.Availability) {
		return false
	}
	if q.NameFrom != "" && u.Name < q.NameFrom {
		return false
	}
	if q.NameBefore != "" && u.Name >= q.NameBefore {
		return false
	}
	return true
}

type SwapQuery struct {
	FromUserID string
	ToUserID   string
	Status     models.SwapStatus
}

func (q SwapQuery) Matches(s models.SwapRequest) bool {
	if q.FromUserID != "" && s.FromUserID != q.FromUserID {
		return false
	}
	if q.ToUserID != "" && s.ToUserID != q.ToUserID {
		return false
	}
	if q.Status != "" && s.Status != q.Status {
		return false
	}
	return true
}
