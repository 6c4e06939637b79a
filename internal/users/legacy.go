package users

import (
	"context"
	"strings"

	"github.com/The-WildNuts/The-Wild-Nuts/internal/sheets"
	pkgerrors "github.com/The-WildNuts/The-Wild-Nuts/pkg/errors"
)

// The legacy endpoints predate hashed credentials and operate on the
// original column layout: Email, Password, Name, Phone, Address,
// Gender, Age, JoinedAt, LastLogin. They stay wired until the last
// storefront clients move to the token flow.

const (
	legacyColPassword = 2
	legacyColName     = 3
	legacyColPhone    = 4
	legacyColAddress  = 5
	legacyColGender   = 6
	legacyColAge      = 7
)

var legacyHeader = []string{
	"Email", "Password", "Name", "Phone", "Address",
	"Gender", "Age", "JoinedAt", "LastLogin",
}

func normalizeLegacyUser(row sheets.Row) LegacyUser {
	return LegacyUser{
		Email:     row["Email"],
		Name:      row["Name"],
		Phone:     row["Phone"],
		Address:   row["Address"],
		Gender:    row["Gender"],
		Age:       row["Age"],
		JoinedAt:  row["JoinedAt"],
		LastLogin: row["LastLogin"],
	}
}

// LegacyAuthenticate checks a plaintext password against the stored
// cell. Email comparison is case-insensitive, the password exact.
func (s *service) LegacyAuthenticate(ctx context.Context, email, password string) (LegacyUser, error) {
	rows, err := s.store.Rows(ctx, worksheetUsers)
	if err != nil {
		if sheets.NotFound(err) {
			return LegacyUser{}, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return LegacyUser{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user sheet")
	}
	target := strings.ToLower(strings.TrimSpace(email))
	for _, row := range rows {
		if strings.ToLower(strings.TrimSpace(row["Email"])) != target {
			continue
		}
		if row["Password"] != password {
			return LegacyUser{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid password")
		}
		return normalizeLegacyUser(row), nil
	}
	return LegacyUser{}, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
}

// LegacyRegister appends a plain-password row after a duplicate scan.
func (s *service) LegacyRegister(ctx context.Context, email, password string) (LegacyUser, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return LegacyUser{}, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}
	if err := s.store.EnsureWorksheet(ctx, worksheetUsers, legacyHeader); err != nil {
		return LegacyUser{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ensure user sheet")
	}

	rows, err := s.store.Rows(ctx, worksheetUsers)
	if err != nil {
		return LegacyUser{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user sheet")
	}
	target := strings.ToLower(email)
	for _, row := range rows {
		if strings.ToLower(strings.TrimSpace(row["Email"])) == target {
			return LegacyUser{}, pkgerrors.New(pkgerrors.CodeConflict, "user already exists")
		}
	}

	now := s.clock().Format(sheets.TimeLayout)
	record := []string{email, password, "", "", "", "", "", now, now}
	if err := s.store.AppendRow(ctx, worksheetUsers, record); err != nil {
		return LegacyUser{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append user row")
	}
	s.cache.Invalidate(cacheKeyUsers, cacheKeyOrderStats)
	return LegacyUser{Email: email, JoinedAt: now, LastLogin: now}, nil
}

// LegacyResetPassword overwrites the plaintext password cell.
func (s *service) LegacyResetPassword(ctx context.Context, email, newPassword string) error {
	if newPassword == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "new password is required")
	}
	row, err := s.findUserRow(ctx, email)
	if err != nil {
		return err
	}
	if err := s.store.UpdateCell(ctx, worksheetUsers, row, legacyColPassword, newPassword); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset password")
	}
	s.cache.Invalidate(cacheKeyUsers, cacheKeyOrderStats)
	return nil
}

// LegacyUpdateProfile writes the provided legacy columns in one batch.
func (s *service) LegacyUpdateProfile(ctx context.Context, email string, update LegacyProfileUpdate) error {
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
	add(legacyColName, update.Name)
	add(legacyColPhone, update.Phone)
	add(legacyColAddress, update.Address)
	add(legacyColGender, update.Gender)
	add(legacyColAge, update.Age)
	if len(updates) == 0 {
		return nil
	}

	if err := s.store.BatchUpdate(ctx, worksheetUsers, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile cells")
	}
	s.cache.Invalidate(cacheKeyUsers, cacheKeyOrderStats)
	return nil
}
