package waitlist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultLeaderboardSize = 5
	DefaultStoreTimeout    = 5 * time.Second
	DefaultMaxCodeAttempts = 5
	DefaultPublishTimeout  = 2 * time.Second
)

type Options struct {
	// LeaderboardSize is K in the top-K referrers query.
	LeaderboardSize int
	// StoreTimeout bounds every individual ledger call.
	StoreTimeout    time.Duration
	MaxCodeAttempts int
	// PublishTimeout bounds each event publish so a stalled broker cannot hold up a join.
	PublishTimeout time.Duration

	Logger    *zerolog.Logger
	Publisher Publisher
	// NewCode overrides referral code generation; tests use it to force collisions.
	NewCode func() (string, error)
}

// Service turns join requests into ledger mutations. It keeps no state of its
// own between calls; every read goes to the ledger.
type Service struct {
	ledger          Ledger
	leaderboardSize int
	storeTimeout    time.Duration
	maxCodeAttempts int
	publishTimeout  time.Duration
	logger          zerolog.Logger
	publisher       Publisher
	newCode         func() (string, error)
	tracer          trace.Tracer
}

func NewService(ledger Ledger, opts Options) (*Service, error) {
	if ledger == nil {
		return nil, errors.New("ledger is required")
	}

	s := &Service{
		ledger:          ledger,
		leaderboardSize: opts.LeaderboardSize,
		storeTimeout:    opts.StoreTimeout,
		maxCodeAttempts: opts.MaxCodeAttempts,
		publishTimeout:  opts.PublishTimeout,
		logger:          zerolog.Nop(),
		publisher:       opts.Publisher,
		newCode:         opts.NewCode,
		tracer:          otel.Tracer("github.com/thankyoudiscord/waitlist/pkg/waitlist"),
	}
	if s.leaderboardSize <= 0 {
		s.leaderboardSize = DefaultLeaderboardSize
	}
	if s.storeTimeout <= 0 {
		s.storeTimeout = DefaultStoreTimeout
	}
	if s.maxCodeAttempts <= 0 {
		s.maxCodeAttempts = DefaultMaxCodeAttempts
	}
	if s.publishTimeout <= 0 {
		s.publishTimeout = DefaultPublishTimeout
	}
	if opts.Logger != nil {
		s.logger = *opts.Logger
	}
	if s.newCode == nil {
		s.newCode = NewReferralCode
	}

	return s, nil
}

// Join registers email on the waitlist, crediting referralCode's owner when set.
//
// A known email yields AlreadyRegistered without touching the ledger. The
// referral increment runs after the insert is durable; its failure is reported
// in Outcome.AttributionErr and never undoes the signup.
func (s *Service) Join(ctx context.Context, email, referralCode string) (Outcome, error) {
	ctx, span := s.tracer.Start(ctx, "waitlist.Join")
	defer span.End()

	email, err := normalizeAndValidate(email)
	if err != nil {
		joinsTotal.WithLabelValues(outcomeInvalid).Inc()
		return Outcome{}, err
	}

	existing, err := s.getByEmail(ctx, email)
	if err == nil {
		return s.alreadyRegistered(span, existing), nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Outcome{}, s.failJoin(span, err)
	}

	var referredBy *string
	if ref := strings.TrimSpace(referralCode); ref != "" {
		referredBy = &ref
	}

	signup, err := s.insert(ctx, email, referredBy)
	if errors.Is(err, ErrDuplicateEmail) {
		// Another request inserted this email between our lookup and insert.
		existing, err := s.getByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				err = storeErr("get_by_email", err)
			}
			return Outcome{}, s.failJoin(span, err)
		}
		return s.alreadyRegistered(span, existing), nil
	}
	if err != nil {
		return Outcome{}, s.failJoin(span, err)
	}

	out := Outcome{Kind: Created, Signup: signup}
	joinsTotal.WithLabelValues(Created.String()).Inc()
	span.SetAttributes(
		attribute.String("waitlist.outcome", Created.String()),
		attribute.Int64("waitlist.position", signup.Position),
	)
	s.logger.Info().
		Str("signup_id", signup.ID).
		Int64("position", signup.Position).
		Bool("referred", referredBy != nil).
		Msg("signup created")

	// The signup is durable from here on. Credit the referrer and emit events
	// even if the caller has gone away; each call keeps its own timeout.
	ctx = context.WithoutCancel(ctx)

	if referredBy != nil {
		out.AttributionErr = s.attribute(ctx, *referredBy)
		if out.AttributionErr != nil {
			span.RecordError(out.AttributionErr)
		}
	}

	s.publish(ctx, SubjectSignupCreated, SignupCreated{
		ID:         signup.ID,
		Email:      signup.Email,
		Position:   signup.Position,
		ReferredBy: signup.ReferredBy,
	})
	if referredBy != nil && out.AttributionErr == nil {
		s.publish(ctx, SubjectReferralAttributed, ReferralAttributed{ReferralCode: *referredBy, ReferredEmail: email})
	}

	return out, nil
}

// Stats returns the total signup count and the top referrers. Equal counts
// are ordered by earlier signup first.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	ctx, span := s.tracer.Start(ctx, "waitlist.Stats")
	defer span.End()

	total, err := s.TotalSignups(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Stats{}, err
	}

	var top []Signup
	err = s.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		top, err = s.ledger.TopByReferralCount(ctx, s.leaderboardSize)
		return err
	})
	if err != nil {
		storeErrorsTotal.WithLabelValues("top_by_referral_count").Inc()
		span.SetStatus(codes.Error, err.Error())
		return Stats{}, storeErr("top_by_referral_count", err)
	}

	leaders := make([]Leader, 0, len(top))
	for _, signup := range top {
		leaders = append(leaders, Leader{Email: signup.Email, ReferralCount: signup.ReferralCount})
	}

	return Stats{TotalSignups: total, ReferralLeaders: leaders}, nil
}

// TotalSignups returns the ledger count alone, for progress figures that do
// not need the leaderboard.
func (s *Service) TotalSignups(ctx context.Context) (int64, error) {
	var total int64
	err := s.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		total, err = s.ledger.Count(ctx)
		return err
	})
	if err != nil {
		storeErrorsTotal.WithLabelValues("count").Inc()
		return 0, storeErr("count", err)
	}
	return total, nil
}

// Recall looks up an existing signup. Malformed addresses return
// ErrInvalidEmail, unknown ones ErrNotFound.
func (s *Service) Recall(ctx context.Context, email string) (Signup, error) {
	ctx, span := s.tracer.Start(ctx, "waitlist.Recall")
	defer span.End()

	email, err := normalizeAndValidate(email)
	if err != nil {
		return Signup{}, err
	}
	return s.getByEmail(ctx, email)
}

func (s *Service) getByEmail(ctx context.Context, email string) (Signup, error) {
	var signup Signup
	err := s.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		signup, err = s.ledger.GetByEmail(ctx, email)
		return err
	})
	switch {
	case err == nil:
		return signup, nil
	case errors.Is(err, ErrNotFound):
		return Signup{}, ErrNotFound
	default:
		storeErrorsTotal.WithLabelValues("get_by_email").Inc()
		return Signup{}, storeErr("get_by_email", err)
	}
}

func (s *Service) insert(ctx context.Context, email string, referredBy *string) (Signup, error) {
	for attempt := 1; attempt <= s.maxCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return Signup{}, fmt.Errorf("generate referral code: %w", err)
		}

		signup := Signup{Email: email, ReferralCode: code, ReferredBy: referredBy}
		err = s.withTimeout(ctx, func(ctx context.Context) error {
			return s.ledger.Insert(ctx, &signup)
		})
		switch {
		case err == nil:
			return signup, nil
		case errors.Is(err, ErrDuplicateReferralCode):
			s.logger.Debug().Int("attempt", attempt).Msg("referral code collision, regenerating")
			continue
		case errors.Is(err, ErrDuplicateEmail):
			return Signup{}, err
		default:
			storeErrorsTotal.WithLabelValues("insert").Inc()
			return Signup{}, storeErr("insert", err)
		}
	}
	return Signup{}, ErrReferralCodeExhausted
}

func (s *Service) attribute(ctx context.Context, code string) error {
	err := s.withTimeout(ctx, func(ctx context.Context) error {
		return s.ledger.IncrementReferralCount(ctx, code)
	})
	if err != nil {
		result := attributionFailed
		if errors.Is(err, ErrNotFound) {
			result = attributionUnknownCode
		} else {
			storeErrorsTotal.WithLabelValues("increment_referral_count").Inc()
		}
		attributionsTotal.WithLabelValues(result).Inc()
		s.logger.Warn().Err(err).Str("referral_code", code).Msg("referral attribution failed")
		return fmt.Errorf("%w: code %s: %w", ErrReferralAttributionFailed, code, err)
	}

	attributionsTotal.WithLabelValues(attributionOK).Inc()
	return nil
}

func (s *Service) alreadyRegistered(span trace.Span, existing Signup) Outcome {
	joinsTotal.WithLabelValues(AlreadyRegistered.String()).Inc()
	span.SetAttributes(attribute.String("waitlist.outcome", AlreadyRegistered.String()))
	return Outcome{Kind: AlreadyRegistered, Signup: existing}
}

func (s *Service) failJoin(span trace.Span, err error) error {
	joinsTotal.WithLabelValues(outcomeFailed).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.logger.Error().Err(err).Msg("join failed")
	return err
}

func (s *Service) publish(ctx context.Context, subject string, v any) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(ctx, subject, v); err != nil {
		s.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish event")
	}
}

func (s *Service) withTimeout(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	return fn(ctx)
}
