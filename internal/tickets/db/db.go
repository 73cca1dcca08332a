package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"ms-rsvp/internal/models"
)

// DB persists tickets. Dietary needs are stored as a JSON array in a single
// text column; the encoding never leaves this package.
type DB struct {
	Bun *bun.DB
	// Now stamps created_at and submitted_at. Defaults to time.Now in UTC.
	Now func() time.Time
}

func New(bunDB *bun.DB) *DB {
	return &DB{Bun: bunDB}
}

type ticketRow struct {
	bun.BaseModel `bun:"table:tickets,alias:t"`

	ID           int64          `bun:"id,pk,autoincrement"`
	Code         string         `bun:"code,notnull,unique"`
	Type         string         `bun:"type,notnull"`
	Price        int64          `bun:"price,notnull"`
	DietaryNeeds sql.NullString `bun:"dietary_needs"`
	MealChoice   sql.NullString `bun:"meal_choice"`
	SubmittedAt  bun.NullTime   `bun:"submitted_at"`
	CreatedAt    time.Time      `bun:"created_at,notnull"`
}

// MalformedRowsError is returned next to a complete result by the list
// operations when some rows carry dietary needs that do not decode. Those rows
// are returned with nil DietaryNeeds.
type MalformedRowsError struct {
	Codes []string
}

func (e *MalformedRowsError) Error() string {
	return fmt.Sprintf("%s for %d ticket(s): %s", models.ErrMalformedPreferences, len(e.Codes), strings.Join(e.Codes, ", "))
}

func (e *MalformedRowsError) Unwrap() error {
	return models.ErrMalformedPreferences
}

func (d *DB) now() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}

// CreateTicket inserts a ticket and returns the stored row. A code collision
// yields models.ErrDuplicateCode.
func (d *DB) CreateTicket(ctx context.Context, code string, category models.Category, price int64) (*models.Ticket, error) {
	row := &ticketRow{
		Code:      code,
		Type:      string(category),
		Price:     price,
		CreatedAt: d.now(),
	}

	_, err := d.Bun.NewInsert().Model(row).Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", models.ErrDuplicateCode, code)
		}
		return nil, storeError("insert ticket", err)
	}

	return d.GetTicketByID(ctx, row.ID)
}

func (d *DB) GetTicketByCode(ctx context.Context, code string) (*models.Ticket, error) {
	var row ticketRow
	err := d.Bun.NewSelect().
		Model(&row).
		Where("code = ?", code).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFoundOr("get ticket by code", err)
	}
	return row.toModel()
}

func (d *DB) GetTicketByID(ctx context.Context, id int64) (*models.Ticket, error) {
	var row ticketRow
	err := d.Bun.NewSelect().
		Model(&row).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFoundOr("get ticket by id", err)
	}
	return row.toModel()
}

// ListTickets returns every ticket, newest first.
func (d *DB) ListTickets(ctx context.Context) ([]models.Ticket, error) {
	var rows []ticketRow
	err := d.Bun.NewSelect().
		Model(&rows).
		OrderExpr("created_at DESC, id DESC").
		Scan(ctx)
	if err != nil {
		return nil, storeError("list tickets", err)
	}
	return toModels(rows)
}

// ListSubmittedTickets returns tickets with preferences on file, most recent
// submission first.
func (d *DB) ListSubmittedTickets(ctx context.Context) ([]models.Ticket, error) {
	var rows []ticketRow
	err := d.Bun.NewSelect().
		Model(&rows).
		Where("submitted_at IS NOT NULL").
		OrderExpr("submitted_at DESC, id DESC").
		Scan(ctx)
	if err != nil {
		return nil, storeError("list submitted tickets", err)
	}
	return toModels(rows)
}

// SetPreferencesIfUnsubmitted records the first submission. It reports false
// when the code is unknown or preferences were already submitted.
func (d *DB) SetPreferencesIfUnsubmitted(ctx context.Context, code string, prefs models.Preferences) (bool, error) {
	return d.setPreferences(ctx, code, prefs, true)
}

// SetPreferences replaces preferences regardless of prior state. It reports
// false only when the code is unknown.
func (d *DB) SetPreferences(ctx context.Context, code string, prefs models.Preferences) (bool, error) {
	return d.setPreferences(ctx, code, prefs, false)
}

func (d *DB) setPreferences(ctx context.Context, code string, prefs models.Preferences, onlyUnsubmitted bool) (bool, error) {
	encoded, err := json.Marshal(prefs.DietaryNeeds)
	if err != nil {
		return false, fmt.Errorf("failed to encode dietary needs: %w", err)
	}

	query := d.Bun.NewUpdate().
		Model((*ticketRow)(nil)).
		Set("dietary_needs = ?", string(encoded)).
		Set("meal_choice = ?", string(prefs.MealChoice)).
		Set("submitted_at = ?", d.now()).
		Where("code = ?", code)
	if onlyUnsubmitted {
		query = query.Where("submitted_at IS NULL")
	}

	res, err := query.Exec(ctx)
	if err != nil {
		return false, storeError("update preferences", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, storeError("update preferences", err)
	}
	return affected > 0, nil
}

// CountTickets returns how many tickets exist and how many were submitted.
func (d *DB) CountTickets(ctx context.Context) (models.TicketCounts, error) {
	var counts models.TicketCounts

	total, err := d.Bun.NewSelect().
		Model((*ticketRow)(nil)).
		Count(ctx)
	if err != nil {
		return counts, storeError("count tickets", err)
	}

	submitted, err := d.Bun.NewSelect().
		Model((*ticketRow)(nil)).
		Where("submitted_at IS NOT NULL").
		Count(ctx)
	if err != nil {
		return counts, storeError("count submitted tickets", err)
	}

	counts.Total = total
	counts.Submitted = submitted
	return counts, nil
}

func (d *DB) Ping(ctx context.Context) error {
	if err := d.Bun.PingContext(ctx); err != nil {
		return storeError("ping", err)
	}
	return nil
}

func (r *ticketRow) toModel() (*models.Ticket, error) {
	ticket, err := r.decode()
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// decode always returns a ticket; on malformed dietary JSON the ticket has
// nil DietaryNeeds and the error is set.
func (r *ticketRow) decode() (*models.Ticket, error) {
	ticket := &models.Ticket{
		ID:        r.ID,
		Code:      r.Code,
		Category:  models.Category(r.Type),
		Price:     r.Price,
		CreatedAt: r.CreatedAt.UTC(),
	}
	if r.MealChoice.Valid {
		meal := models.MealChoice(r.MealChoice.String)
		ticket.MealChoice = &meal
	}
	if !r.SubmittedAt.IsZero() {
		submittedAt := r.SubmittedAt.Time.UTC()
		ticket.SubmittedAt = &submittedAt
	}
	if r.DietaryNeeds.Valid {
		var needs []models.DietaryNeed
		if err := json.Unmarshal([]byte(r.DietaryNeeds.String), &needs); err != nil {
			return ticket, fmt.Errorf("%w: ticket %s: %v", models.ErrMalformedPreferences, r.Code, err)
		}
		ticket.DietaryNeeds = needs
	}
	return ticket, nil
}

func toModels(rows []ticketRow) ([]models.Ticket, error) {
	tickets := make([]models.Ticket, 0, len(rows))
	var malformed []string
	for i := range rows {
		ticket, err := rows[i].decode()
		if err != nil {
			malformed = append(malformed, rows[i].Code)
		}
		tickets = append(tickets, *ticket)
	}
	if len(malformed) > 0 {
		return tickets, &MalformedRowsError{Codes: malformed}
	}
	return tickets, nil
}

func isUniqueViolation(err error) bool {
	// modernc and mattn drivers both report "UNIQUE constraint failed: <table>.<column>".
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func notFoundOr(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrTicketNotFound
	}
	return storeError(op, err)
}

func storeError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, models.ErrStoreUnavailable, err)
}
