package storage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Varun5711/shortlinks/internal/models"
)

func strPtr(s string) *string { return &s }

func newLink(owner, code, url string) *models.Link {
	return &models.Link{
		ID:          uuid.NewString(),
		OwnerID:     owner,
		ShortCode:   code,
		OriginalURL: url,
	}
}

// runStorageContract exercises the behaviour every Storage implementation shares.
func runStorageContract(t *testing.T, newStore func(t *testing.T) Storage) {
	ctx := context.Background()

	t.Run("create and resolve", func(t *testing.T) {
		s := newStore(t)
		link := newLink("user_a", "my-link", "https://example.com")
		link.Title = strPtr("Example")

		require.NoError(t, s.Create(ctx, link))
		assert.Zero(t, link.Clicks)
		assert.False(t, link.CreatedAt.IsZero())
		assert.Equal(t, link.CreatedAt, link.UpdatedAt)

		got, err := s.GetByShortCode(ctx, "my-link")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, link.ID, got.ID)
		assert.Equal(t, "user_a", got.OwnerID)
		assert.Equal(t, "https://example.com", got.OriginalURL)
		require.NotNil(t, got.Title)
		assert.Equal(t, "Example", *got.Title)
		assert.WithinDuration(t, link.CreatedAt, got.CreatedAt, time.Millisecond)
	})

	t.Run("missing code resolves to nil", func(t *testing.T) {
		s := newStore(t)
		got, err := s.GetByShortCode(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, got)

		exists, err := s.ShortCodeExists(ctx, "nope")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("short code is unique", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, newLink("user_a", "taken", "https://a.example")))

		err := s.Create(ctx, newLink("user_b", "taken", "https://b.example"))
		assert.ErrorIs(t, err, ErrDuplicateShortCode)

		exists, err := s.ShortCodeExists(ctx, "taken")
		require.NoError(t, err)
		assert.True(t, exists)

		got, err := s.GetByShortCode(ctx, "taken")
		require.NoError(t, err)
		assert.Equal(t, "https://a.example", got.OriginalURL)
	})

	t.Run("concurrent creates of one code admit a single winner", func(t *testing.T) {
		s := newStore(t)
		const racers = 16

		var (
			wg         sync.WaitGroup
			mu         sync.Mutex
			created    int
			duplicates int
		)
		for i := 0; i < racers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := s.Create(ctx, newLink("owner", "contested", "https://example.com"))
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					created++
				case errors.Is(err, ErrDuplicateShortCode):
					duplicates++
				default:
					t.Errorf("unexpected create error: %v", err)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, created)
		assert.Equal(t, racers-1, duplicates)
	})

	t.Run("list by owner newest first", func(t *testing.T) {
		s := newStore(t)
		for _, code := range []string{"first", "second", "third"} {
			require.NoError(t, s.Create(ctx, newLink("owner", code, "https://example.com/"+code)))
			time.Sleep(2 * time.Millisecond)
		}
		require.NoError(t, s.Create(ctx, newLink("someone-else", "other", "https://example.com")))

		links, err := s.ListByOwner(ctx, "owner")
		require.NoError(t, err)
		require.Len(t, links, 3)
		assert.Equal(t, "third", links[0].ShortCode)
		assert.Equal(t, "second", links[1].ShortCode)
		assert.Equal(t, "first", links[2].ShortCode)

		empty, err := s.ListByOwner(ctx, "nobody")
		require.NoError(t, err)
		assert.NotNil(t, empty)
		assert.Empty(t, empty)
	})

	t.Run("get for owner hides foreign links", func(t *testing.T) {
		s := newStore(t)
		link := newLink("owner", "mine", "https://example.com")
		require.NoError(t, s.Create(ctx, link))

		got, err := s.GetForOwner(ctx, link.ID, "owner")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "mine", got.ShortCode)

		got, err = s.GetForOwner(ctx, link.ID, "intruder")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("update by owner", func(t *testing.T) {
		s := newStore(t)
		link := newLink("owner", "edit-me", "https://example.com")
		link.Title = strPtr("Old")
		require.NoError(t, s.Create(ctx, link))
		time.Sleep(2 * time.Millisecond)

		updated, err := s.UpdateForOwner(ctx, link.ID, "owner", "https://example.org", strPtr("New"))
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, "https://example.org", updated.OriginalURL)
		assert.Equal(t, "New", *updated.Title)
		assert.Equal(t, "edit-me", updated.ShortCode)
		assert.True(t, updated.UpdatedAt.After(link.UpdatedAt), "updated_at must move forward")
		assert.WithinDuration(t, link.CreatedAt, updated.CreatedAt, time.Millisecond)

		cleared, err := s.UpdateForOwner(ctx, link.ID, "owner", "https://example.org", nil)
		require.NoError(t, err)
		assert.Nil(t, cleared.Title)
	})

	t.Run("update by non-owner matches nothing", func(t *testing.T) {
		s := newStore(t)
		link := newLink("owner", "guarded", "https://example.com")
		require.NoError(t, s.Create(ctx, link))

		updated, err := s.UpdateForOwner(ctx, link.ID, "intruder", "https://evil.example", nil)
		require.NoError(t, err)
		assert.Nil(t, updated)

		missing, err := s.UpdateForOwner(ctx, uuid.NewString(), "owner", "https://example.org", nil)
		require.NoError(t, err)
		assert.Nil(t, missing)

		got, err := s.GetByShortCode(ctx, "guarded")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com", got.OriginalURL)
	})

	t.Run("delete by owner frees the code", func(t *testing.T) {
		s := newStore(t)
		link := newLink("owner", "reuse-me", "https://example.com")
		require.NoError(t, s.Create(ctx, link))

		deleted, err := s.DeleteForOwner(ctx, link.ID, "intruder")
		require.NoError(t, err)
		assert.Nil(t, deleted)

		deleted, err = s.DeleteForOwner(ctx, link.ID, "owner")
		require.NoError(t, err)
		require.NotNil(t, deleted)
		assert.Equal(t, "reuse-me", deleted.ShortCode)

		again, err := s.DeleteForOwner(ctx, link.ID, "owner")
		require.NoError(t, err)
		assert.Nil(t, again)

		got, err := s.GetByShortCode(ctx, "reuse-me")
		require.NoError(t, err)
		assert.Nil(t, got)

		require.NoError(t, s.Create(ctx, newLink("someone-else", "reuse-me", "https://other.example")))
	})

	t.Run("increment clicks", func(t *testing.T) {
		s := newStore(t)
		link := newLink("owner", "counted", "https://example.com")
		require.NoError(t, s.Create(ctx, link))

		require.NoError(t, s.IncrementClicks(ctx, "counted"))
		require.NoError(t, s.IncrementClicks(ctx, "counted"))

		got, err := s.GetByShortCode(ctx, "counted")
		require.NoError(t, err)
		assert.Equal(t, int64(2), got.Clicks)
		assert.WithinDuration(t, link.UpdatedAt, got.UpdatedAt, time.Millisecond, "clicks are not owner updates")

		err = s.IncrementClicks(ctx, "ghost")
		assert.True(t, errors.Is(err, ErrLinkNotFound), "got %v", err)
	})

	t.Run("concurrent increments are not lost", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, newLink("owner", "hot", "https://example.com")))

		var wg sync.WaitGroup
		for i := 0; i < 25; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, s.IncrementClicks(ctx, "hot"))
			}()
		}
		wg.Wait()

		got, err := s.GetByShortCode(ctx, "hot")
		require.NoError(t, err)
		assert.Equal(t, int64(25), got.Clicks)
	})

	t.Run("increment clicks by batch", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, newLink("owner", "aaa", "https://a.example")))
		require.NoError(t, s.Create(ctx, newLink("owner", "bbb", "https://b.example")))

		updated, err := s.IncrementClicksBy(ctx, map[string]int64{"aaa": 3, "bbb": 1, "gone": 4, "zero": 0})
		require.NoError(t, err)
		assert.Equal(t, int64(2), updated)

		a, _ := s.GetByShortCode(ctx, "aaa")
		b, _ := s.GetByShortCode(ctx, "bbb")
		assert.Equal(t, int64(3), a.Clicks)
		assert.Equal(t, int64(1), b.Clicks)

		updated, err = s.IncrementClicksBy(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, updated)
	})
}
