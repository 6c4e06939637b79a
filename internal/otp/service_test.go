package otp

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/The-WildNuts/The-Wild-Nuts/internal/sheets"
	pkgerrors "github.com/The-WildNuts/The-Wild-Nuts/pkg/errors"
	"github.com/The-WildNuts/The-Wild-Nuts/pkg/logger"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func newTestService(t *testing.T) (Service, *sheets.Memory, *testClock) {
	t.Helper()
	store := sheets.NewMemory()
	clock := &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	logg := logger.New(logger.Options{ServiceName: "otp-test", Output: io.Discard})
	svc, err := NewService(ServiceParams{Store: store, Logger: logg, Clock: clock.Now})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, store, clock
}

func TestStoreAndVerify(t *testing.T) {
	svc, store, _ := newTestService(t)

	if err := svc.Store(context.Background(), "a@example.com", "123456"); err != nil {
		t.Fatalf("Store: %v", err)
	}
	rows, err := store.Rows(context.Background(), "OTP_Codes")
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(rows) != 1 || rows[0]["Used"] != "false" {
		t.Fatalf("unexpected stored row: %v", rows)
	}
	if rows[0]["Expires_At"] != "2025-06-01 12:10:00" {
		t.Fatalf("expiry should be ten minutes out, got %q", rows[0]["Expires_At"])
	}

	if err := svc.Verify(context.Background(), "a@example.com", "123456"); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	rows, _ = store.Rows(context.Background(), "OTP_Codes")
	if rows[0]["Used"] != "true" {
		t.Fatal("verify must mark the code used")
	}
}

func TestVerifyIsSingleUse(t *testing.T) {
	svc, _, _ := newTestService(t)

	if err := svc.Store(context.Background(), "a@example.com", "123456"); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := svc.Verify(context.Background(), "a@example.com", "123456"); err != nil {
		t.Fatalf("first Verify: %v", err)
	}
	err := svc.Verify(context.Background(), "a@example.com", "123456")
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) || !strings.Contains(err.Error(), "invalid otp") {
		t.Fatalf("second redeem must be rejected as invalid, got %v", err)
	}
}

func TestVerifyExpired(t *testing.T) {
	svc, store, clock := newTestService(t)

	if err := svc.Store(context.Background(), "a@example.com", "123456"); err != nil {
		t.Fatalf("Store: %v", err)
	}
	clock.now = clock.now.Add(10*time.Minute + time.Second)

	err := svc.Verify(context.Background(), "a@example.com", "123456")
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) || !strings.Contains(err.Error(), "expired") {
		t.Fatalf("expected expiry rejection, got %v", err)
	}
	rows, _ := store.Rows(context.Background(), "OTP_Codes")
	if rows[0]["Used"] != "false" {
		t.Fatal("expired code must not be consumed")
	}
}

func TestVerifyPrefersNewestCode(t *testing.T) {
	svc, store, clock := newTestService(t)

	if err := svc.Store(context.Background(), "a@example.com", "111111"); err != nil {
		t.Fatalf("Store: %v", err)
	}
	clock.now = clock.now.Add(time.Minute)
	if err := svc.Store(context.Background(), "a@example.com", "111111"); err != nil {
		t.Fatalf("Store second: %v", err)
	}

	if err := svc.Verify(context.Background(), "a@example.com", "111111"); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	rows, _ := store.Rows(context.Background(), "OTP_Codes")
	if rows[0]["Used"] != "false" || rows[1]["Used"] != "true" {
		t.Fatalf("newest matching row should be consumed first: %v", rows)
	}
}

func TestOutstandingCodesStayValid(t *testing.T) {
	svc, _, _ := newTestService(t)

	if err := svc.Store(context.Background(), "a@example.com", "111111"); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := svc.Store(context.Background(), "a@example.com", "222222"); err != nil {
		t.Fatalf("Store: %v", err)
	}

	if err := svc.Verify(context.Background(), "a@example.com", "222222"); err != nil {
		t.Fatalf("Verify newest: %v", err)
	}
	if err := svc.Verify(context.Background(), "a@example.com", "111111"); err != nil {
		t.Fatalf("older outstanding code must still redeem: %v", err)
	}
}

func TestVerifyUnknownSheet(t *testing.T) {
	svc, _, _ := newTestService(t)
	if err := svc.Verify(context.Background(), "a@example.com", "123456"); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("missing sheet should read as invalid otp, got %v", err)
	}
}
