package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"skillswap-server/models"
	"skillswap-server/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixedClock returns a clock that advances one second per call.
func fixedClock() func() time.Time {
	t := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

type fixture struct {
	users   *store.MemoryUserStore
	swaps   *store.MemorySwapStore
	userSvc *UserService
	swapSvc *SwapService
}

func newFixture() *fixture {
	users := store.NewMemoryUserStore()
	swaps := store.NewMemorySwapStore()
	userSvc := NewUserService(users, discardLogger())
	userSvc.now = fixedClock()
	userSvc.newID = sequentialIDs("user")
	swapSvc := NewSwapService(swaps, users, discardLogger())
	swapSvc.now = fixedClock()
	swapSvc.newID = sequentialIDs("swap")
	return &fixture{users: users, swaps: swaps, userSvc: userSvc, swapSvc: swapSvc}
}

func validUserInput(name string) UserInput {
	public := true
	return UserInput{
		Name:          name,
		Location:      "Lisbon",
		Availability:  []string{"weekends"},
		SkillsOffered: []string{"Go"},
		SkillsWanted:  []string{"Guitar"},
		PublicProfile: &public,
	}
}

func (f *fixture) register(t *testing.T, name string) *models.User {
	t.Helper()
	u, err := f.userSvc.Register(context.Background(), validUserInput(name))
	require.NoError(t, err)
	return u
}

func (f *fixture) request(t *testing.T, from, to string) *models.SwapRequest {
	t.Helper()
	sw, err := f.swapSvc.CreateRequest(context.Background(), SwapInput{
		FromUserID:   from,
		ToUserID:     to,
		SkillOffered: "Go",
		SkillWanted:  "Guitar",
		Message:      "Let's trade",
	})
	require.NoError(t, err)
	return sw
}
