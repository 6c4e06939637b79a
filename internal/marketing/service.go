package marketing

import (
	"context"
	"strings"
	"time"

	"github.com/The-WildNuts/The-Wild-Nuts/internal/sheets"
	pkgerrors "github.com/The-WildNuts/The-Wild-Nuts/pkg/errors"
	"github.com/The-WildNuts/The-Wild-Nuts/pkg/logger"
	"github.com/The-WildNuts/The-Wild-Nuts/pkg/mailer"
)

const (
	worksheetSubscribers = "Subscribers"
	cacheKeySubscribers  = "Subscribers"
)

var subscribersHeader = []string{"Email", "Joined_At"}

// Subscriber is one newsletter signup.
type Subscriber struct {
	Email    string `json:"Email"`
	JoinedAt string `json:"Joined_At"`
}

// ServiceParams groups dependencies for the marketing service.
type ServiceParams struct {
	Store  sheets.API
	Cache  *sheets.Cache
	Mailer mailer.Mailer
	Logger *logger.Logger
	Clock  func() time.Time
}

// Service manages newsletter subscriptions and campaign sends.
type Service interface {
	Subscribe(ctx context.Context, email string) error
	Subscribers(ctx context.Context) ([]Subscriber, error)
	// SendCampaign mails every subscriber and returns the sent count.
	// In test mode only the first subscriber receives it.
	SendCampaign(ctx context.Context, subject, content string, testMode bool) (int, error)
}

type service struct {
	store sheets.API
	cache *sheets.Cache
	mail  mailer.Mailer
	logg  *logger.Logger
	clock func() time.Time
}

// NewService builds a marketing service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sheet store is required")
	}
	if params.Cache == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cache is required")
	}
	if params.Mailer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mailer is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	if params.Clock == nil {
		params.Clock = time.Now
	}
	return &service{
		store: params.Store,
		cache: params.Cache,
		mail:  params.Mailer,
		logg:  params.Logger,
		clock: params.Clock,
	}, nil
}

// Subscribe appends the email unless it is already on the list.
// Re-subscribing is a silent no-op.
func (s *service) Subscribe(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if err := s.store.EnsureWorksheet(ctx, worksheetSubscribers, subscribersHeader); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ensure subscribers sheet")
	}

	rows, err := s.store.Rows(ctx, worksheetSubscribers)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscribers sheet")
	}
	target := strings.ToLower(email)
	for _, row := range rows {
		if strings.ToLower(strings.TrimSpace(row["Email"])) == target {
			return nil
		}
	}

	now := s.clock().Format(sheets.TimeLayout)
	if err := s.store.AppendRow(ctx, worksheetSubscribers, []string{email, now}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append subscriber row")
	}
	s.cache.Invalidate(cacheKeySubscribers)
	return nil
}

// Subscribers lists the signups, served from cache while fresh.
func (s *service) Subscribers(ctx context.Context) ([]Subscriber, error) {
	return sheets.Fetch(ctx, s.cache, cacheKeySubscribers, func(ctx context.Context) ([]Subscriber, error) {
		rows, err := s.store.Rows(ctx, worksheetSubscribers)
		if err != nil {
			if sheets.NotFound(err) {
				return nil, nil
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscribers sheet")
		}
		subs := make([]Subscriber, 0, len(rows))
		for _, row := range rows {
			if row["Email"] == "" {
				continue
			}
			subs = append(subs, Subscriber{Email: row["Email"], JoinedAt: row["Joined_At"]})
		}
		return subs, nil
	})
}

// SendCampaign walks the subscriber list. Individual send failures are
// logged and skipped so one bad address cannot stall a blast.
func (s *service) SendCampaign(ctx context.Context, subject, content string, testMode bool) (int, error) {
	if subject == "" || content == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "subject and content are required")
	}
	subs, err := s.Subscribers(ctx)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, sub := range subs {
		if testMode && sent >= 1 {
			break
		}
		if err := s.mail.SendMarketing(ctx, sub.Email, subject, content); err != nil {
			s.logg.Error(s.logg.WithUserEmail(ctx, sub.Email), "marketing mail failed", err)
			continue
		}
		sent++
	}
	return sent, nil
}
