package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"github.com/thankyoudiscord/waitlist/pkg/waitlist"
)

const (
	positionCounter   = "position"
	pgUniqueViolation = "23505"
)

// Ledger is the gorm backed waitlist.Ledger. It runs against Postgres in
// production and SQLite in tests; both need the embedded migrations applied.
type Ledger struct {
	db  *gorm.DB
	now func() time.Time
}

func NewLedger(d *gorm.DB) *Ledger {
	return &Ledger{db: d, now: time.Now}
}

// Insert advances the position counter and writes the row in one transaction.
// The counter row lock serialises concurrent inserts on Postgres.
func (l *Ledger) Insert(ctx context.Context, s *waitlist.Signup) error {
	row := Signup{
		ID:           uuid.NewString(),
		Email:        s.Email,
		ReferralCode: s.ReferralCode,
		ReferredBy:   s.ReferredBy,
		CreatedAt:    l.now().UTC(),
	}

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var position int64
		res := tx.Raw(
			`UPDATE ledger_counters SET value = value + 1 WHERE name = ? RETURNING value`,
			positionCounter,
		).Scan(&position)
		if res.Error != nil {
			return fmt.Errorf("advance position counter: %w", res.Error)
		}
		if position == 0 {
			return errors.New("position counter row is missing")
		}

		row.Position = position
		return tx.Create(&row).Error
	})
	if err != nil {
		return classify(err)
	}

	*s = row.toSignup()
	return nil
}

func (l *Ledger) GetByEmail(ctx context.Context, email string) (waitlist.Signup, error) {
	var row Signup
	err := l.db.WithContext(ctx).Where("email = ?", email).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return waitlist.Signup{}, waitlist.ErrNotFound
		}
		return waitlist.Signup{}, err
	}
	return row.toSignup(), nil
}

func (l *Ledger) IncrementReferralCount(ctx context.Context, code string) error {
	res := l.db.WithContext(ctx).
		Model(&Signup{}).
		Where("referral_code = ?", code).
		UpdateColumn("referral_count", gorm.Expr("referral_count + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return waitlist.ErrNotFound
	}
	return nil
}

func (l *Ledger) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := l.db.WithContext(ctx).Model(&Signup{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (l *Ledger) TopByReferralCount(ctx context.Context, limit int) ([]waitlist.Signup, error) {
	if limit <= 0 {
		return []waitlist.Signup{}, nil
	}

	var rows []Signup
	err := l.db.WithContext(ctx).
		Order("referral_count DESC").
		Order("created_at ASC").
		Order("position ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]waitlist.Signup, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toSignup())
	}
	return out, nil
}

func (l *Ledger) Ping(ctx context.Context) error {
	sqlDB, err := l.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// classify maps driver unique violations onto the ledger's duplicate errors.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return duplicate(pgErr.ConstraintName, err)
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return duplicate(sqliteErr.Error(), err)
	}

	return err
}

func duplicate(detail string, err error) error {
	if strings.Contains(detail, "referral_code") {
		return fmt.Errorf("%w: %w", waitlist.ErrDuplicateReferralCode, err)
	}
	return fmt.Errorf("%w: %w", waitlist.ErrDuplicateEmail, err)
}
