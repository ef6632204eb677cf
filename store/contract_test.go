package store

import (
	"context"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"skillswap-server/models"
)

func newTestUser(id, name string, public bool) *models.User {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &models.User{
		ID:            id,
		Name:          name,
		Location:      "Lisbon",
		Availability:  []string{"weekends"},
		SkillsOffered: []string{"Go"},
		SkillsWanted:  []string{"Guitar"},
		PublicProfile: public,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func newTestSwap(id, from, to string, status models.SwapStatus) *models.SwapRequest {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &models.SwapRequest{
		ID:           id,
		FromUserID:   from,
		ToUserID:     to,
		SkillOffered: "Go",
		SkillWanted:  "Guitar",
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func userIDs(users []models.User) []string {
	return lo.Map(users, func(u models.User, _ int) string { return u.ID })
}

func swapIDs(swaps []models.SwapRequest) []string {
	return lo.Map(swaps, func(s models.SwapRequest, _ int) string { return s.ID })
}

func runUserStoreContract(t *testing.T, newStore func(t *testing.T) UserStore) {
	ctx := context.Background()

	t.Run("should round trip an inserted user", func(t *testing.T) {
		req := require.New(t)
		s := newStore(t)
		u := newTestUser("u1", "Alice", true)
		req.NoError(s.Insert(ctx, u))

		got, err := s.FindByID(ctx, "u1")
		req.NoError(err)
		req.Equal(*u, *got)

		ok, err := s.Exists(ctx, "u1")
		req.NoError(err)
		req.True(ok)
	})

	t.Run("should report missing users", func(t *testing.T) {
		req := require.New(t)
		s := newStore(t)

		_, err := s.FindByID(ctx, "missing")
		req.ErrorIs(err, ErrNoRecord)

		ok, err := s.Exists(ctx, "missing")
		req.NoError(err)
		req.False(ok)

		req.ErrorIs(s.Replace(ctx, newTestUser("missing", "Nobody", true)), ErrNoRecord)
	})

	t.Run("should replace an existing user", func(t *testing.T) {
		req := require.New(t)
		s := newStore(t)
		u := newTestUser("u1", "Alice", true)
		req.NoError(s.Insert(ctx, u))

		u.Name = "Alicia"
		u.SkillsOffered = []string{"Rust"}
		req.NoError(s.Replace(ctx, u))

		got, err := s.FindByID(ctx, "u1")
		req.NoError(err)
		req.Equal("Alicia", got.Name)
		req.Equal([]string{"Rust"}, got.SkillsOffered)
	})

	t.Run("should filter by visibility and array membership", func(t *testing.T) {
		req := require.New(t)
		s := newStore(t)
		alice := newTestUser("u1", "Alice", true)
		bob := newTestUser("u2", "Bob", false)
		bob.SkillsOffered = []string{"Cooking", "Go"}
		bob.SkillsWanted = []string{"Go"}
		bob.Availability = []string{"evenings"}
		req.NoError(s.Insert(ctx, alice))
		req.NoError(s.Insert(ctx, bob))

		public, err := s.Find(ctx, UserQuery{PublicProfile: lo.ToPtr(true)})
		req.NoError(err)
		req.Equal([]string{"u1"}, userIDs(public))

		offered, err := s.Find(ctx, UserQuery{SkillOffered: lo.ToPtr("Go")})
		req.NoError(err)
		req.ElementsMatch([]string{"u1", "u2"}, userIDs(offered))

		partial, err := s.Find(ctx, UserQuery{SkillOffered: lo.ToPtr("Cook")})
		req.NoError(err)
		req.Empty(partial)

		wanted, err := s.Find(ctx, UserQuery{SkillWanted: lo.ToPtr("Go")})
		req.NoError(err)
		req.Equal([]string{"u2"}, userIDs(wanted))

		evenings, err := s.Find(ctx, UserQuery{Availability: lo.ToPtr("evenings")})
		req.NoError(err)
		req.Equal([]string{"u2"}, userIDs(evenings))

		blank, err := s.Find(ctx, UserQuery{Availability: lo.ToPtr("")})
		req.NoError(err)
		req.Empty(blank)
	})

	t.Run("should apply a half-open name range", func(t *testing.T) {
		req := require.New(t)
		s := newStore(t)
		req.NoError(s.Insert(ctx, newTestUser("u1", "Alice", true)))
		req.NoError(s.Insert(ctx, newTestUser("u2", "Alan", true)))
		req.NoError(s.Insert(ctx, newTestUser("u3", "Bob", true)))
		req.NoError(s.Insert(ctx, newTestUser("u4", "Al", true)))

		got, err := s.Find(ctx, UserQuery{NameFrom: "Al", NameBefore: "Al\uF8FF"})
		req.NoError(err)
		req.ElementsMatch([]string{"u1", "u2", "u4"}, userIDs(got))
	})

	t.Run("should delete users unconditionally", func(t *testing.T) {
		req := require.New(t)
		s := newStore(t)
		req.NoError(s.Insert(ctx, newTestUser("u1", "Alice", true)))

		req.NoError(s.Delete(ctx, "u1"))
		req.NoError(s.Delete(ctx, "u1"))

		_, err := s.FindByID(ctx, "u1")
		req.ErrorIs(err, ErrNoRecord)
		all, err := s.Find(ctx, UserQuery{})
		req.NoError(err)
		req.Empty(all)
	})
}

func runSwapStoreContract(t *testing.T, newStore func(t *testing.T) SwapStore) {
	ctx := context.Background()

	t.Run("should round trip an inserted request", func(t *testing.T) {
		req := require.New(t)
		s := newStore(t)
		sw := newTestSwap("s1", "a", "b", models.StatusPending)
		req.NoError(s.Insert(ctx, sw))

		got, err := s.FindByID(ctx, "s1")
		req.NoError(err)
		req.Equal(*sw, *got)

		_, err = s.FindByID(ctx, "missing")
		req.ErrorIs(err, ErrNoRecord)
	})

	t.Run("should filter by endpoints and status", func(t *testing.T) {
		req := require.New(t)
		s := newStore(t)
		req.NoError(s.Insert(ctx, newTestSwap("s1", "a", "b", models.StatusPending)))
		req.NoError(s.Insert(ctx, newTestSwap("s2", "b", "a", models.StatusPending)))
		req.NoError(s.Insert(ctx, newTestSwap("s3", "a", "c", models.StatusAccepted)))

		from, err := s.Find(ctx, SwapQuery{FromUserID: "a"})
		req.NoError(err)
		req.ElementsMatch([]string{"s1", "s3"}, swapIDs(from))

		to, err := s.Find(ctx, SwapQuery{ToUserID: "a"})
		req.NoError(err)
		req.Equal([]string{"s2"}, swapIDs(to))

		pending, err := s.Find(ctx, SwapQuery{FromUserID: "a", Status: models.StatusPending})
		req.NoError(err)
		req.Equal([]string{"s1"}, swapIDs(pending))
	})

	t.Run("should update only while the status is unchanged", func(t *testing.T) {
		req := require.New(t)
		s := newStore(t)
		sw := newTestSwap("s1", "a", "b", models.StatusPending)
		req.NoError(s.Insert(ctx, sw))

		sw.Status = models.StatusAccepted
		req.NoError(s.UpdateIfStatus(ctx, sw, models.StatusPending))

		sw.Status = models.StatusRejected
		req.ErrorIs(s.UpdateIfStatus(ctx, sw, models.StatusPending), ErrStatusChanged)

		got, err := s.FindByID(ctx, "s1")
		req.NoError(err)
		req.Equal(models.StatusAccepted, got.Status)

		req.ErrorIs(s.UpdateIfStatus(ctx, newTestSwap("missing", "a", "b", models.StatusAccepted), models.StatusPending), ErrNoRecord)
	})

	t.Run("should delete only while the status is unchanged", func(t *testing.T) {
		req := require.New(t)
		s := newStore(t)
		req.NoError(s.Insert(ctx, newTestSwap("s1", "a", "b", models.StatusAccepted)))
		req.NoError(s.Insert(ctx, newTestSwap("s2", "a", "b", models.StatusPending)))

		req.ErrorIs(s.DeleteIfStatus(ctx, "s1", models.StatusPending), ErrStatusChanged)
		req.NoError(s.DeleteIfStatus(ctx, "s2", models.StatusPending))
		req.ErrorIs(s.DeleteIfStatus(ctx, "s2", models.StatusPending), ErrNoRecord)

		all, err := s.Find(ctx, SwapQuery{})
		req.NoError(err)
		req.Equal([]string{"s1"}, swapIDs(all))
	})
}
