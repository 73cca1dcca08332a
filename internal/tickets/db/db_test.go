package db_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"ms-rsvp/internal/config"
	"ms-rsvp/internal/database"
	"ms-rsvp/internal/models"
	"ms-rsvp/internal/tickets/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

// stepClock advances one second on every call so ordering by timestamp is
// deterministic.
type stepClock struct {
	current time.Time
}

func (c *stepClock) Now() time.Time {
	c.current = c.current.Add(time.Second)
	return c.current
}

func setupTestDB(t *testing.T) (*db.DB, *bun.DB) {
	bunDB, err := database.OpenInMemory(context.Background())
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { bunDB.Close() })

	clock := &stepClock{current: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	ticketDB := db.New(bunDB)
	ticketDB.Now = clock.Now
	return ticketDB, bunDB
}

func veganFish() models.Preferences {
	return models.Preferences{
		DietaryNeeds: []models.DietaryNeed{models.DietaryVegan},
		MealChoice:   models.MealFish,
	}
}

func TestCreateAndGetTicket(t *testing.T) {
	ticketDB, _ := setupTestDB(t)
	ctx := context.Background()

	created, err := ticketDB.CreateTicket(ctx, "ABC12345", models.CategoryRegular, 12000)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "ABC12345", created.Code)
	assert.Equal(t, models.CategoryRegular, created.Category)
	assert.Equal(t, int64(12000), created.Price)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Nil(t, created.DietaryNeeds)
	assert.Nil(t, created.MealChoice)
	assert.Nil(t, created.SubmittedAt)

	byCode, err := ticketDB.GetTicketByCode(ctx, "ABC12345")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byCode.ID)

	byID, err := ticketDB.GetTicketByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "ABC12345", byID.Code)
}

func TestGetUnknownTicket(t *testing.T) {
	ticketDB, _ := setupTestDB(t)
	ctx := context.Background()

	ticket, err := ticketDB.GetTicketByCode(ctx, "ZZZ99999")
	assert.ErrorIs(t, err, models.ErrTicketNotFound)
	assert.Nil(t, ticket)

	ticket, err = ticketDB.GetTicketByID(ctx, 42)
	assert.ErrorIs(t, err, models.ErrTicketNotFound)
	assert.Nil(t, ticket)
}

func TestCreateDuplicateCode(t *testing.T) {
	ticketDB, _ := setupTestDB(t)
	ctx := context.Background()

	_, err := ticketDB.CreateTicket(ctx, "ABC12345", models.CategoryRegular, 12000)
	require.NoError(t, err)

	_, err = ticketDB.CreateTicket(ctx, "ABC12345", models.CategoryVIP, 20000)
	assert.ErrorIs(t, err, models.ErrDuplicateCode)
	assert.False(t, errors.Is(err, models.ErrStoreUnavailable))
}

func TestCreateRejectsUnknownCategory(t *testing.T) {
	ticketDB, _ := setupTestDB(t)

	_, err := ticketDB.CreateTicket(context.Background(), "ABC12345", models.Category("student"), 1)
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
	assert.False(t, errors.Is(err, models.ErrDuplicateCode))
}

func TestSubmitThenFetchRoundTrip(t *testing.T) {
	ticketDB, _ := setupTestDB(t)
	ctx := context.Background()

	created, err := ticketDB.CreateTicket(ctx, "ABC12345", models.CategoryRegular, 12000)
	require.NoError(t, err)

	ok, err := ticketDB.SetPreferencesIfUnsubmitted(ctx, "ABC12345", veganFish())
	require.NoError(t, err)
	assert.True(t, ok)

	ticket, err := ticketDB.GetTicketByCode(ctx, "ABC12345")
	require.NoError(t, err)
	assert.Equal(t, []models.DietaryNeed{models.DietaryVegan}, ticket.DietaryNeeds)
	require.NotNil(t, ticket.MealChoice)
	assert.Equal(t, models.MealFish, *ticket.MealChoice)
	require.NotNil(t, ticket.SubmittedAt)
	assert.False(t, ticket.SubmittedAt.Before(created.CreatedAt))
}

func TestSetPreferencesIfUnsubmittedOnlyOnce(t *testing.T) {
	ticketDB, _ := setupTestDB(t)
	ctx := context.Background()

	_, err := ticketDB.CreateTicket(ctx, "ABC12345", models.CategoryVIP, 20000)
	require.NoError(t, err)

	ok, err := ticketDB.SetPreferencesIfUnsubmitted(ctx, "ABC12345", veganFish())
	require.NoError(t, err)
	assert.True(t, ok)

	second := models.Preferences{
		DietaryNeeds: []models.DietaryNeed{models.DietaryNoRestrictions},
		MealChoice:   models.MealBeef,
	}
	ok, err = ticketDB.SetPreferencesIfUnsubmitted(ctx, "ABC12345", second)
	require.NoError(t, err)
	assert.False(t, ok)

	ticket, err := ticketDB.GetTicketByCode(ctx, "ABC12345")
	require.NoError(t, err)
	assert.Equal(t, []models.DietaryNeed{models.DietaryVegan}, ticket.DietaryNeeds)
	assert.Equal(t, models.MealFish, *ticket.MealChoice)

	ok, err = ticketDB.SetPreferencesIfUnsubmitted(ctx, "ZZZ99999", veganFish())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetPreferencesReplacesAndAdvances(t *testing.T) {
	ticketDB, _ := setupTestDB(t)
	ctx := context.Background()

	_, err := ticketDB.CreateTicket(ctx, "ABC12345", models.CategoryRegular, 12000)
	require.NoError(t, err)

	ok, err := ticketDB.SetPreferences(ctx, "ABC12345", veganFish())
	require.NoError(t, err)
	require.True(t, ok)

	first, err := ticketDB.GetTicketByCode(ctx, "ABC12345")
	require.NoError(t, err)

	replacement := models.Preferences{
		DietaryNeeds: []models.DietaryNeed{models.DietaryGlutenFree, models.DietaryDairyFree},
		MealChoice:   models.MealChicken,
	}
	ok, err = ticketDB.SetPreferences(ctx, "ABC12345", replacement)
	require.NoError(t, err)
	require.True(t, ok)

	second, err := ticketDB.GetTicketByCode(ctx, "ABC12345")
	require.NoError(t, err)
	assert.Equal(t, replacement.DietaryNeeds, second.DietaryNeeds)
	assert.Equal(t, models.MealChicken, *second.MealChoice)
	assert.True(t, second.SubmittedAt.After(*first.SubmittedAt))

	ok, err = ticketDB.SetPreferences(ctx, "ZZZ99999", replacement)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListOrdering(t *testing.T) {
	ticketDB, _ := setupTestDB(t)
	ctx := context.Background()

	for _, code := range []string{"AAA00001", "AAA00002", "AAA00003"} {
		_, err := ticketDB.CreateTicket(ctx, code, models.CategoryRegular, 12000)
		require.NoError(t, err)
	}

	all, err := ticketDB.ListTickets(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "AAA00003", all[0].Code)
	assert.Equal(t, "AAA00001", all[2].Code)

	submitted, err := ticketDB.ListSubmittedTickets(ctx)
	require.NoError(t, err)
	assert.Empty(t, submitted)

	for _, code := range []string{"AAA00002", "AAA00001"} {
		ok, err := ticketDB.SetPreferences(ctx, code, veganFish())
		require.NoError(t, err)
		require.True(t, ok)
	}

	submitted, err = ticketDB.ListSubmittedTickets(ctx)
	require.NoError(t, err)
	require.Len(t, submitted, 2)
	assert.Equal(t, "AAA00001", submitted[0].Code)
	assert.Equal(t, "AAA00002", submitted[1].Code)
}

func TestCountTickets(t *testing.T) {
	ticketDB, _ := setupTestDB(t)
	ctx := context.Background()

	counts, err := ticketDB.CountTickets(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.TicketCounts{}, counts)

	for _, code := range []string{"AAA00001", "AAA00002"} {
		_, err := ticketDB.CreateTicket(ctx, code, models.CategoryVIP, 20000)
		require.NoError(t, err)
	}
	_, err = ticketDB.SetPreferences(ctx, "AAA00001", veganFish())
	require.NoError(t, err)

	counts, err = ticketDB.CountTickets(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts.Total)
	assert.Equal(t, 1, counts.Submitted)
}

func TestMalformedDietaryNeeds(t *testing.T) {
	ticketDB, bunDB := setupTestDB(t)
	ctx := context.Background()

	for _, code := range []string{"AAA00001", "AAA00002"} {
		_, err := ticketDB.CreateTicket(ctx, code, models.CategoryRegular, 12000)
		require.NoError(t, err)
		_, err = ticketDB.SetPreferences(ctx, code, veganFish())
		require.NoError(t, err)
	}

	_, err := bunDB.NewRaw("UPDATE tickets SET dietary_needs = ? WHERE code = ?", "not-json", "AAA00001").Exec(ctx)
	require.NoError(t, err)

	// Detail lookups refuse to serve a broken row.
	ticket, err := ticketDB.GetTicketByCode(ctx, "AAA00001")
	assert.ErrorIs(t, err, models.ErrMalformedPreferences)
	assert.Nil(t, ticket)

	// Listings return every row and flag the broken ones.
	submitted, err := ticketDB.ListSubmittedTickets(ctx)
	require.Len(t, submitted, 2)
	var malformed *db.MalformedRowsError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, []string{"AAA00001"}, malformed.Codes)
	assert.ErrorIs(t, err, models.ErrMalformedPreferences)

	for _, tk := range submitted {
		if tk.Code == "AAA00001" {
			assert.Nil(t, tk.DietaryNeeds)
			assert.NotNil(t, tk.MealChoice)
		} else {
			assert.Equal(t, []models.DietaryNeed{models.DietaryVegan}, tk.DietaryNeeds)
		}
	}
}

func TestPing(t *testing.T) {
	ticketDB, _ := setupTestDB(t)
	assert.NoError(t, ticketDB.Ping(context.Background()))
}

func TestConcurrentWritesOnFileStore(t *testing.T) {
	ctx := context.Background()
	cfg := config.Load().Database
	cfg.Path = filepath.Join(t.TempDir(), "rsvp.db")
	cfg.AutoMigrate = true

	bunDB, err := database.Open(ctx, cfg, nil)
	require.NoError(t, err)
	defer bunDB.Close()
	ticketDB := db.New(bunDB)

	const workers, perWorker = 8, 25
	errs := make(chan error, workers*perWorker*2)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				code := fmt.Sprintf("CON%05d", w*perWorker+i)
				if _, err := ticketDB.CreateTicket(ctx, code, models.CategoryRegular, 12000); err != nil {
					errs <- err
					continue
				}
				if _, err := ticketDB.SetPreferences(ctx, code, veganFish()); err != nil {
					errs <- err
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent write failed: %v", err)
	}

	counts, err := ticketDB.CountTickets(ctx)
	require.NoError(t, err)
	assert.Equal(t, workers*perWorker, counts.Total)
	assert.Equal(t, workers*perWorker, counts.Submitted)
}
