package otp

import (
	"context"
	"time"

	"github.com/The-WildNuts/The-Wild-Nuts/internal/sheets"
	pkgerrors "github.com/The-WildNuts/The-Wild-Nuts/pkg/errors"
	"github.com/The-WildNuts/The-Wild-Nuts/pkg/logger"
)

const (
	worksheetOTP = "OTP_Codes"

	// Validity is how long a stored code stays redeemable.
	Validity = 10 * time.Minute

	colUsed = 5
)

var otpHeader = []string{"Email", "OTP_Code", "Created_At", "Expires_At", "Used"}

// ServiceParams groups dependencies for the OTP service.
type ServiceParams struct {
	Store  sheets.API
	Logger *logger.Logger
	Clock  func() time.Time
}

// Service stores and redeems single-use reset codes. Codes are
// append-only rows; redeeming flips the Used cell rather than deleting,
// so the sheet doubles as an audit trail.
type Service interface {
	Store(ctx context.Context, email, code string) error
	Verify(ctx context.Context, email, code string) error
}

type service struct {
	store sheets.API
	logg  *logger.Logger
	clock func() time.Time
}

// NewService builds an OTP service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sheet store is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	if params.Clock == nil {
		params.Clock = time.Now
	}
	return &service{store: params.Store, logg: params.Logger, clock: params.Clock}, nil
}

// Store appends a fresh code. Earlier codes for the same email remain
// individually redeemable until they expire or get used.
func (s *service) Store(ctx context.Context, email, code string) error {
	if email == "" || code == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email and code are required")
	}
	if err := s.store.EnsureWorksheet(ctx, worksheetOTP, otpHeader); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ensure otp sheet")
	}

	now := s.clock()
	record := []string{
		email,
		code,
		now.Format(sheets.TimeLayout),
		now.Add(Validity).Format(sheets.TimeLayout),
		"false",
	}
	if err := s.store.AppendRow(ctx, worksheetOTP, record); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append otp row")
	}
	return nil
}

// Verify redeems the newest unused code matching email+code. A match
// past its expiry reports expired without consuming it; no match at all
// reports invalid. On success the Used cell flips exactly once.
func (s *service) Verify(ctx context.Context, email, code string) error {
	if email == "" || code == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email and code are required")
	}
	rows, err := s.store.Rows(ctx, worksheetOTP)
	if err != nil {
		if sheets.NotFound(err) {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid otp")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load otp sheet")
	}

	now := s.clock()
	// Newest first, so re-requesting a code never resurrects an old one.
	for idx := len(rows) - 1; idx >= 0; idx-- {
		row := rows[idx]
		if row["Email"] != email || row["OTP_Code"] != code || row["Used"] != "false" {
			continue
		}

		expires, err := time.ParseInLocation(sheets.TimeLayout, row["Expires_At"], now.Location())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "parse otp expiry")
		}
		if now.After(expires) {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "otp expired")
		}

		sheetRow := idx + 2
		if err := s.store.UpdateCell(ctx, worksheetOTP, sheetRow, colUsed, "true"); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark otp used")
		}
		s.logg.Info(s.logg.WithUserEmail(ctx, email), "otp redeemed")
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid otp")
}
