package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Varun5711/shortlinks/internal/cache"
	"github.com/Varun5711/shortlinks/internal/logger"
	"github.com/Varun5711/shortlinks/internal/models"
	"github.com/Varun5711/shortlinks/internal/storage"
	"github.com/Varun5711/shortlinks/internal/validation"
)

func strPtr(s string) *string { return &s }

// scriptedGenerator hands out codes in order, then fails.
type scriptedGenerator struct {
	mu    sync.Mutex
	codes []string
	calls int
}

func (g *scriptedGenerator) Next() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if len(g.codes) == 0 {
		return "", errors.New("script exhausted")
	}
	code := g.codes[0]
	g.codes = g.codes[1:]
	return code, nil
}

// constantGenerator always returns the same code.
type constantGenerator struct {
	code  string
	calls int
}

func (g *constantGenerator) Next() (string, error) {
	g.calls++
	return g.code, nil
}

// faultyStore wraps a Storage and injects errors.
type faultyStore struct {
	storage.Storage
	existsErr    error
	createErr    error
	updateErr    error
	incrementErr error
	// duplicateOnCreate makes the next N Create calls report a lost race.
	duplicateOnCreate int
	existsCalls       int
}

func (f *faultyStore) ShortCodeExists(ctx context.Context, code string) (bool, error) {
	f.existsCalls++
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.Storage.ShortCodeExists(ctx, code)
}

func (f *faultyStore) Create(ctx context.Context, link *models.Link) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.duplicateOnCreate > 0 {
		f.duplicateOnCreate--
		return storage.ErrDuplicateShortCode
	}
	return f.Storage.Create(ctx, link)
}

func (f *faultyStore) UpdateForOwner(ctx context.Context, id, owner, url string, title *string) (*models.Link, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.Storage.UpdateForOwner(ctx, id, owner, url, title)
}

func (f *faultyStore) IncrementClicks(ctx context.Context, code string) error {
	if f.incrementErr != nil {
		return f.incrementErr
	}
	return f.Storage.IncrementClicks(ctx, code)
}

func testLogger() *logger.Logger {
	return logger.NewWithWriter("link-service", io.Discard, logger.DEBUG)
}

func newTestService(t *testing.T, store storage.Storage, gen CodeGenerator) *LinkService {
	t.Helper()
	return NewLinkService(store, gen, nil, Config{MaxAttempts: 10, BaseURL: "https://sho.rt/"}, testLogger())
}

func TestCreate_CustomCodeThenResolve(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	svc := newTestService(t, store, &scriptedGenerator{})

	link, err := svc.Create(ctx, "user_a", models.CreateLinkRequest{
		OriginalURL: "https://example.com",
		ShortCode:   "my-link",
	})
	require.NoError(t, err)
	assert.Equal(t, "my-link", link.ShortCode)
	assert.Equal(t, "user_a", link.OwnerID)
	assert.Equal(t, "https://sho.rt/l/my-link", link.ShortURL)
	assert.Zero(t, link.Clicks)
	assert.Nil(t, link.Title)
	_, err = uuid.Parse(link.ID)
	assert.NoError(t, err)

	resolved, err := svc.Resolve(ctx, "my-link")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", resolved.OriginalURL)

	require.NoError(t, svc.RecordClick(ctx, "my-link"))
	stored, err := store.GetByShortCode(ctx, "my-link")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Clicks)
}

func TestCreate_GeneratedCode(t *testing.T) {
	ctx := context.Background()
	gen := &scriptedGenerator{codes: []string{"Ab3_x-9Z"}}
	svc := newTestService(t, storage.NewMemoryStorage(), gen)

	link, err := svc.Create(ctx, "user_a", models.CreateLinkRequest{OriginalURL: "https://example.com", Title: strPtr("Docs")})
	require.NoError(t, err)
	assert.Equal(t, "Ab3_x-9Z", link.ShortCode)
	require.NotNil(t, link.Title)
	assert.Equal(t, "Docs", *link.Title)
	assert.Equal(t, 1, gen.calls)
}

func TestCreate_RequiresOwnerBeforeAnythingElse(t *testing.T) {
	store := &faultyStore{Storage: storage.NewMemoryStorage()}
	gen := &scriptedGenerator{codes: []string{"abcdefgh"}}
	svc := newTestService(t, store, gen)

	_, err := svc.Create(context.Background(), "", models.CreateLinkRequest{OriginalURL: "not a url"})
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Zero(t, store.existsCalls)
	assert.Zero(t, gen.calls)
}

func TestCreate_ValidationErrors(t *testing.T) {
	svc := newTestService(t, storage.NewMemoryStorage(), &scriptedGenerator{})

	tests := []struct {
		name string
		req  models.CreateLinkRequest
	}{
		{"bad url", models.CreateLinkRequest{OriginalURL: "example.com"}},
		{"short code too short", models.CreateLinkRequest{OriginalURL: "https://example.com", ShortCode: "ab"}},
		{"short code bad chars", models.CreateLinkRequest{OriginalURL: "https://example.com", ShortCode: "a b c"}},
		{"title too long", models.CreateLinkRequest{OriginalURL: "https://example.com", Title: strPtr(string(make([]byte, 201)))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "user_a", tt.req)
			var verr *validation.Error
			assert.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
		})
	}
}

func TestCreate_CustomCodeTaken(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	svc := newTestService(t, store, &scriptedGenerator{})

	_, err := svc.Create(ctx, "user_a", models.CreateLinkRequest{OriginalURL: "https://a.example", ShortCode: "promo"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "user_a", models.CreateLinkRequest{OriginalURL: "https://a.example", ShortCode: "promo-2"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, "user_b", models.CreateLinkRequest{OriginalURL: "https://b.example", ShortCode: "promo"})
	require.ErrorIs(t, err, ErrCodeTaken)

	var taken *CodeTakenError
	require.True(t, errors.As(err, &taken))
	assert.Equal(t, "promo", taken.Code)
	assert.Equal(t, []string{"promo-1", "promo-3"}, taken.Suggestions, "suggestions skip codes that are already taken")
	assert.Equal(t, `Short code "promo" is already taken. Please choose another.`, taken.Error())

	got, err := store.GetByShortCode(ctx, "promo")
	require.NoError(t, err)
	assert.Equal(t, "https://a.example", got.OriginalURL, "existing row must be untouched")
}

func TestCreate_CustomCodeLostRace(t *testing.T) {
	store := &faultyStore{Storage: storage.NewMemoryStorage(), duplicateOnCreate: 1}
	svc := newTestService(t, store, &scriptedGenerator{})

	_, err := svc.Create(context.Background(), "user_a", models.CreateLinkRequest{OriginalURL: "https://a.example", ShortCode: "racy"})
	assert.ErrorIs(t, err, ErrCodeTaken)
}

func TestCreate_GeneratorRetriesOnCollision(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	seed := newTestService(t, store, &scriptedGenerator{})
	for _, code := range []string{"AAAAAAAA", "BBBBBBBB"} {
		_, err := seed.Create(ctx, "someone", models.CreateLinkRequest{OriginalURL: "https://x.example", ShortCode: code})
		require.NoError(t, err)
	}

	gen := &scriptedGenerator{codes: []string{"AAAAAAAA", "BBBBBBBB", "CCCCCCCC"}}
	svc := newTestService(t, store, gen)

	link, err := svc.Create(ctx, "user_a", models.CreateLinkRequest{OriginalURL: "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, "CCCCCCCC", link.ShortCode)
	assert.Equal(t, 3, gen.calls)
}

func TestCreate_InsertRaceCountsAsCollision(t *testing.T) {
	store := &faultyStore{Storage: storage.NewMemoryStorage(), duplicateOnCreate: 2}
	gen := &scriptedGenerator{codes: []string{"raceAAAA", "raceBBBB", "winCCCCC"}}
	svc := newTestService(t, store, gen)

	link, err := svc.Create(context.Background(), "user_a", models.CreateLinkRequest{OriginalURL: "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, "winCCCCC", link.ShortCode)
	assert.Equal(t, 3, gen.calls)
}

func TestCreate_GenerationExhausted(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	seed := newTestService(t, store, &scriptedGenerator{})
	_, err := seed.Create(ctx, "someone", models.CreateLinkRequest{OriginalURL: "https://x.example", ShortCode: "SAMECODE"})
	require.NoError(t, err)

	gen := &constantGenerator{code: "SAMECODE"}
	svc := newTestService(t, store, gen)

	_, err = svc.Create(ctx, "user_a", models.CreateLinkRequest{OriginalURL: "https://example.com"})
	assert.ErrorIs(t, err, ErrCodeGenerationExhausted)
	assert.Equal(t, 10, gen.calls, "generator must stop after exactly the attempt bound")

	links, err := store.ListByOwner(ctx, "user_a")
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestCreate_DatastoreErrorIsNotExhaustion(t *testing.T) {
	boom := errors.New("connection refused")
	store := &faultyStore{Storage: storage.NewMemoryStorage(), existsErr: boom}
	gen := &scriptedGenerator{codes: []string{"abcdefgh"}}
	svc := newTestService(t, store, gen)

	_, err := svc.Create(context.Background(), "user_a", models.CreateLinkRequest{OriginalURL: "https://example.com"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrCodeGenerationExhausted)
	assert.Equal(t, 1, gen.calls, "infrastructure errors are not retried")
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, storage.NewMemoryStorage(), &scriptedGenerator{})

	link, err := svc.Create(ctx, "owner", models.CreateLinkRequest{OriginalURL: "https://example.com", ShortCode: "edit-me", Title: strPtr("Old")})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "owner", models.UpdateLinkRequest{LinkID: link.ID, OriginalURL: "https://example.org", Title: strPtr("New")})
	require.NoError(t, err)
	assert.Equal(t, "https://example.org", updated.OriginalURL)
	assert.Equal(t, "New", *updated.Title)
	assert.Equal(t, "edit-me", updated.ShortCode)
	assert.Equal(t, "https://sho.rt/l/edit-me", updated.ShortURL)

	cleared, err := svc.Update(ctx, "owner", models.UpdateLinkRequest{LinkID: link.ID, OriginalURL: "https://example.org"})
	require.NoError(t, err)
	assert.Nil(t, cleared.Title, "absent title clears the stored title")

	resolved, err := svc.Resolve(ctx, "edit-me")
	require.NoError(t, err)
	assert.Equal(t, "https://example.org", resolved.OriginalURL)
}

func TestUpdate_NotOwnedLooksLikeMissing(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, storage.NewMemoryStorage(), &scriptedGenerator{})

	link, err := svc.Create(ctx, "owner", models.CreateLinkRequest{OriginalURL: "https://example.com", ShortCode: "guarded"})
	require.NoError(t, err)

	_, foreignErr := svc.Update(ctx, "intruder", models.UpdateLinkRequest{LinkID: link.ID, OriginalURL: "https://evil.example"})
	_, missingErr := svc.Update(ctx, "owner", models.UpdateLinkRequest{LinkID: uuid.NewString(), OriginalURL: "https://example.org"})

	assert.ErrorIs(t, foreignErr, ErrNotFound)
	assert.ErrorIs(t, missingErr, ErrNotFound)
	assert.Equal(t, foreignErr.Error(), missingErr.Error())

	resolved, err := svc.Resolve(ctx, "guarded")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", resolved.OriginalURL)
}

func TestUpdate_Errors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk on fire")
	svc := newTestService(t, &faultyStore{Storage: storage.NewMemoryStorage(), updateErr: boom}, &scriptedGenerator{})

	_, err := svc.Update(ctx, "", models.UpdateLinkRequest{LinkID: uuid.NewString(), OriginalURL: "https://example.org"})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.Update(ctx, "owner", models.UpdateLinkRequest{LinkID: "42", OriginalURL: "https://example.org"})
	var verr *validation.Error
	assert.True(t, errors.As(err, &verr))

	_, err = svc.Update(ctx, "owner", models.UpdateLinkRequest{LinkID: uuid.NewString(), OriginalURL: "https://example.org"})
	assert.ErrorIs(t, err, boom)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, storage.NewMemoryStorage(), &scriptedGenerator{})

	link, err := svc.Create(ctx, "owner", models.CreateLinkRequest{OriginalURL: "https://example.com", ShortCode: "bye"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, "intruder", link.ID), ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "", link.ID), ErrUnauthenticated)

	var verr *validation.Error
	assert.True(t, errors.As(svc.Delete(ctx, "owner", "not-a-uuid"), &verr))

	require.NoError(t, svc.Delete(ctx, "owner", link.ID))
	assert.ErrorIs(t, svc.Delete(ctx, "owner", link.ID), ErrNotFound)

	_, err = svc.Resolve(ctx, "bye")
	assert.ErrorIs(t, err, ErrNotFound)

	reused, err := svc.Create(ctx, "someone-else", models.CreateLinkRequest{OriginalURL: "https://other.example", ShortCode: "bye"})
	require.NoError(t, err)
	assert.Equal(t, "someone-else", reused.OwnerID)
}

func TestGetAndList(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, storage.NewMemoryStorage(), &scriptedGenerator{})

	link, err := svc.Create(ctx, "owner", models.CreateLinkRequest{OriginalURL: "https://example.com", ShortCode: "mine"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "other", models.CreateLinkRequest{OriginalURL: "https://example.com", ShortCode: "theirs"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, "owner", link.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://sho.rt/l/mine", got.ShortURL)

	_, err = svc.Get(ctx, "other", link.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	links, err := svc.List(ctx, "owner")
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "mine", links[0].ShortCode)
	assert.Equal(t, "https://sho.rt/l/mine", links[0].ShortURL)

	_, err = svc.List(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, storage.NewMemoryStorage(), &scriptedGenerator{})

	_, err := svc.Create(ctx, "user_39mKH9KgwsiREDdXMthQQKUUUQL", models.CreateLinkRequest{OriginalURL: "https://github.com", ShortCode: "gh2024"})
	require.NoError(t, err)

	link, err := svc.Resolve(ctx, "gh2024")
	require.NoError(t, err)
	assert.Equal(t, "https://github.com", link.OriginalURL)
	assert.Zero(t, link.Clicks, "resolve must not count clicks")

	for _, code := range []string{"unknown", "", "no/slash", "x"} {
		_, err := svc.Resolve(ctx, code)
		assert.ErrorIs(t, err, ErrNotFound, "code %q", code)
	}
}

func TestResolve_UsesAndInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	linkCache := cache.NewLinkCache(100, 0, nil, 0)
	svc := NewLinkService(store, &scriptedGenerator{}, linkCache, Config{}, testLogger())

	link, err := svc.Create(ctx, "owner", models.CreateLinkRequest{OriginalURL: "https://example.com", ShortCode: "cached"})
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, "cached")
	require.NoError(t, err)
	_, found := linkCache.Get(ctx, "cached")
	assert.True(t, found, "resolve should populate the cache")

	_, err = svc.Update(ctx, "owner", models.UpdateLinkRequest{LinkID: link.ID, OriginalURL: "https://example.org"})
	require.NoError(t, err)
	_, found = linkCache.Get(ctx, "cached")
	assert.False(t, found, "update should invalidate the cache")

	resolved, err := svc.Resolve(ctx, "cached")
	require.NoError(t, err)
	assert.Equal(t, "https://example.org", resolved.OriginalURL)

	require.NoError(t, svc.Delete(ctx, "owner", link.ID))
	_, err = svc.Resolve(ctx, "cached")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordClick(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	svc := newTestService(t, store, &scriptedGenerator{})

	_, err := svc.Create(ctx, "owner", models.CreateLinkRequest{OriginalURL: "https://example.com", ShortCode: "clicky"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.RecordClick(ctx, "clicky"))
		}()
	}
	wg.Wait()

	stored, err := store.GetByShortCode(ctx, "clicky")
	require.NoError(t, err)
	assert.Equal(t, int64(20), stored.Clicks)

	assert.ErrorIs(t, svc.RecordClick(ctx, "ghost"), ErrNotFound)

	boom := errors.New("timeout")
	failing := newTestService(t, &faultyStore{Storage: store, incrementErr: boom}, &scriptedGenerator{})
	assert.ErrorIs(t, failing.RecordClick(ctx, "clicky"), boom)
}

// interleavingStore runs afterRead once, between loading a row and returning it.
type interleavingStore struct {
	storage.Storage
	once      sync.Once
	afterRead func()
}

func (s *interleavingStore) GetByShortCode(ctx context.Context, code string) (*models.Link, error) {
	link, err := s.Storage.GetByShortCode(ctx, code)
	if s.afterRead != nil {
		s.once.Do(s.afterRead)
	}
	return link, err
}

func TestResolve_UpdateDuringReadIsNotCachedStale(t *testing.T) {
	ctx := context.Background()
	store := &interleavingStore{Storage: storage.NewMemoryStorage()}
	linkCache := cache.NewLinkCache(100, time.Minute, nil, 0)
	svc := NewLinkService(store, &scriptedGenerator{}, linkCache, Config{}, testLogger())

	link, err := svc.Create(ctx, "owner", models.CreateLinkRequest{OriginalURL: "https://old.example", ShortCode: "racy"})
	require.NoError(t, err)

	store.afterRead = func() {
		_, err := svc.Update(ctx, "owner", models.UpdateLinkRequest{LinkID: link.ID, OriginalURL: "https://new.example"})
		require.NoError(t, err)
	}

	first, err := svc.Resolve(ctx, "racy")
	require.NoError(t, err)
	assert.Equal(t, "https://old.example", first.OriginalURL, "the in-flight resolve returns what it read")

	_, cached := linkCache.Get(ctx, "racy")
	assert.False(t, cached, "the pre-update row must not be cached")

	second, err := svc.Resolve(ctx, "racy")
	require.NoError(t, err)
	assert.Equal(t, "https://new.example", second.OriginalURL)
}

func TestCreate_ConcurrentSameCustomCode(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewSQLiteStorage(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	svc := newTestService(t, store, &scriptedGenerator{})

	const racers = 16
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		winner []*models.Link
		taken  int
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			link, err := svc.Create(ctx, "user_a", models.CreateLinkRequest{OriginalURL: "https://example.com", ShortCode: "my-link"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winner = append(winner, link)
			case errors.Is(err, ErrCodeTaken):
				taken++
			default:
				t.Errorf("unexpected create error: %v", err)
			}
		}()
	}
	wg.Wait()

	require.Len(t, winner, 1)
	assert.Equal(t, racers-1, taken)

	stored, err := store.GetByShortCode(ctx, "my-link")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, winner[0].ID, stored.ID)
}
