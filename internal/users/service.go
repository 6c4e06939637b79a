package users

import (
	"context"
	"strings"
	"time"

	"github.com/The-WildNuts/The-Wild-Nuts/internal/sheets"
	pkgerrors "github.com/The-WildNuts/The-Wild-Nuts/pkg/errors"
	"github.com/The-WildNuts/The-Wild-Nuts/pkg/logger"
)

const (
	worksheetUsers = "Users"
	cacheKeyUsers  = "Users"

	// The dashboard stats view aggregates this sheet too, so its derived
	// entry must drop whenever a user row changes. Must stay in sync with
	// the key the orders service caches stats under.
	cacheKeyOrderStats = "orders_stats_derived"
)

// 1-based column positions of the Users worksheet.
const (
	colUsername        = 2
	colPasswordHash    = 3
	colFullName        = 4
	colPhone           = 5
	colAddress         = 6
	colCity            = 7
	colState           = 8
	colPincode         = 9
	colLastLogin       = 11
	colSessionToken    = 12
	colProfileComplete = 13
)

var usersHeader = []string{
	"Email", "Username", "Password_Hash", "Full_Name", "Phone",
	"Address", "City", "State", "Pincode", "Created_At",
	"Last_Login", "Session_Token", "Profile_Complete",
}

// ServiceParams groups dependencies for the user service.
type ServiceParams struct {
	Store  sheets.API
	Cache  *sheets.Cache
	Logger *logger.Logger
	Clock  func() time.Time
}

// Service owns the Users worksheet: lookups, account creation and the
// per-column mutations the auth flows need.
type Service interface {
	ByEmail(ctx context.Context, email string) (User, error)
	ByUsername(ctx context.Context, username string) (User, error)
	All(ctx context.Context) ([]User, error)
	Create(ctx context.Context, email, passwordHash string) (User, error)
	UpdateProfile(ctx context.Context, email string, update ProfileUpdate) error
	UpdatePasswordHash(ctx context.Context, email, passwordHash string) error
	RecordLogin(ctx context.Context, email, sessionToken string) error
	ClearSession(ctx context.Context, email string) error

	LegacyAuthenticate(ctx context.Context, email, password string) (LegacyUser, error)
	LegacyRegister(ctx context.Context, email, password string) (LegacyUser, error)
	LegacyResetPassword(ctx context.Context, email, newPassword string) error
	LegacyUpdateProfile(ctx context.Context, email string, update LegacyProfileUpdate) error
}

type service struct {
	store sheets.API
	cache *sheets.Cache
	logg  *logger.Logger
	clock func() time.Time
}

// NewService builds a user service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sheet store is required")
	}
	if params.Cache == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cache is required")
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
		logg:  params.Logger,
		clock: params.Clock,
	}, nil
}

func normalizeUser(row sheets.Row) User {
	return User{
		Email:           row["Email"],
		Username:        row["Username"],
		PasswordHash:    row["Password_Hash"],
		FullName:        row["Full_Name"],
		Phone:           row["Phone"],
		Address:         row["Address"],
		City:            row["City"],
		State:           row["State"],
		Pincode:         row["Pincode"],
		CreatedAt:       row["Created_At"],
		LastLogin:       row["Last_Login"],
		SessionToken:    row["Session_Token"],
		ProfileComplete: strings.EqualFold(row["Profile_Complete"], "true"),
	}
}

// All returns every user record, served from cache while fresh.
func (s *service) All(ctx context.Context) ([]User, error) {
	return sheets.Fetch(ctx, s.cache, cacheKeyUsers, func(ctx context.Context) ([]User, error) {
		rows, err := s.store.Rows(ctx, worksheetUsers)
		if err != nil {
			if sheets.NotFound(err) {
				return nil, nil
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user sheet")
		}
		all := make([]User, 0, len(rows))
		for _, row := range rows {
			all = append(all, normalizeUser(row))
		}
		return all, nil
	})
}

// ByEmail scans for the first row matching the email, case-insensitive.
// Duplicate emails are a known data hazard of the sheet: the first
// match wins and later rows are unreachable, which is why Create
// rejects duplicates up front.
func (s *service) ByEmail(ctx context.Context, email string) (User, error) {
	target := strings.ToLower(strings.TrimSpace(email))
	if target == "" {
		return User{}, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	all, err := s.All(ctx)
	if err != nil {
		return User{}, err
	}
	for _, user := range all {
		if strings.ToLower(strings.TrimSpace(user.Email)) == target {
			return user, nil
		}
	}
	return User{}, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
}

// ByUsername scans for the first row matching the username,
// case-insensitive.
func (s *service) ByUsername(ctx context.Context, username string) (User, error) {
	target := strings.ToLower(strings.TrimSpace(username))
	if target == "" {
		return User{}, pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}
	all, err := s.All(ctx)
	if err != nil {
		return User{}, err
	}
	for _, user := range all {
		if strings.ToLower(user.Username) == target {
			return user, nil
		}
	}
	return User{}, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
}

// Create appends a user row after a fresh duplicate scan. The scan and
// append are not atomic, so a concurrent register for the same email can
// still slip through; the first-match-wins read rule keeps such rows
// inert.
func (s *service) Create(ctx context.Context, email, passwordHash string) (User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return User{}, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if passwordHash == "" {
		return User{}, pkgerrors.New(pkgerrors.CodeValidation, "password hash is required")
	}

	if err := s.store.EnsureWorksheet(ctx, worksheetUsers, usersHeader); err != nil {
		return User{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ensure user sheet")
	}

	// Scan the live sheet, not the cache, so a row created within the
	// cache TTL is still seen.
	rows, err := s.store.Rows(ctx, worksheetUsers)
	if err != nil {
		return User{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user sheet")
	}
	target := strings.ToLower(email)
	for _, row := range rows {
		if strings.ToLower(strings.TrimSpace(row["Email"])) == target {
			return User{}, pkgerrors.New(pkgerrors.CodeConflict, "user already exists")
		}
	}

	now := s.clock().Format(sheets.TimeLayout)
	record := []string{
		email, "", passwordHash, "", "",
		"", "", "", "", now,
		now, "", "false",
	}
	if err := s.store.AppendRow(ctx, worksheetUsers, record); err != nil {
		return User{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append user row")
	}

	s.cache.Invalidate(cacheKeyUsers, cacheKeyOrderStats)
	s.logg.Info(s.logg.WithUserEmail(ctx, email), "user created")
	return User{Email: email, PasswordHash: passwordHash, CreatedAt: now, LastLogin: now}, nil
}

// findUserRow re-scans for the user's sheet row immediately before a
// mutation.
func (s *service) findUserRow(ctx context.Context, email string) (int, error) {
	row, err := s.store.FindRow(ctx, worksheetUsers, email)
	if err != nil {
		if sheets.NotFound(err) {
			return 0, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "user not found")
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "locate user row")
	}
	return row, nil
}

// UpdateProfile writes the provided fields in one batch. Setting a
// username also marks the profile complete.
func (s *service) UpdateProfile(ctx context.Context, email string, update ProfileUpdate) error {
	row, err := s.findUserRow(ctx, email)
	if err != nil {
		return err
	}

	var updates []sheets.CellUpdate
	add := func(col int, value *string) {
		if value != nil {
			updates = append(updates, sheets.CellUpdate{Row: row, Col: col, Value: *value})
		}
	}
	add(colUsername, update.Username)
	add(colFullName, update.FullName)
	add(colPhone, update.Phone)
	add(colAddress, update.Address)
	add(colCity, update.City)
	add(colState, update.State)
	add(colPincode, update.Pincode)
	if update.Username != nil && *update.Username != "" {
		updates = append(updates, sheets.CellUpdate{Row: row, Col: colProfileComplete, Value: "true"})
	}
	if len(updates) == 0 {
		return nil
	}

	if err := s.store.BatchUpdate(ctx, worksheetUsers, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile cells")
	}
	s.cache.Invalidate(cacheKeyUsers, cacheKeyOrderStats)
	return nil
}

func (s *service) UpdatePasswordHash(ctx context.Context, email, passwordHash string) error {
	if passwordHash == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "password hash is required")
	}
	row, err := s.findUserRow(ctx, email)
	if err != nil {
		return err
	}
	if err := s.store.UpdateCell(ctx, worksheetUsers, row, colPasswordHash, passwordHash); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update password hash")
	}
	s.cache.Invalidate(cacheKeyUsers, cacheKeyOrderStats)
	return nil
}

// RecordLogin stamps Last_Login and stores the session token.
func (s *service) RecordLogin(ctx context.Context, email, sessionToken string) error {
	row, err := s.findUserRow(ctx, email)
	if err != nil {
		return err
	}
	updates := []sheets.CellUpdate{
		{Row: row, Col: colLastLogin, Value: s.clock().Format(sheets.TimeLayout)},
		{Row: row, Col: colSessionToken, Value: sessionToken},
	}
	if err := s.store.BatchUpdate(ctx, worksheetUsers, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record login")
	}
	s.cache.Invalidate(cacheKeyUsers, cacheKeyOrderStats)
	return nil
}

func (s *service) ClearSession(ctx context.Context, email string) error {
	row, err := s.findUserRow(ctx, email)
	if err != nil {
		return err
	}
	if err := s.store.UpdateCell(ctx, worksheetUsers, row, colSessionToken, ""); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear session token")
	}
	s.cache.Invalidate(cacheKeyUsers, cacheKeyOrderStats)
	return nil
}
