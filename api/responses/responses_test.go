package responses

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/The-WildNuts/The-Wild-Nuts/pkg/errors"
	"github.com/The-WildNuts/The-Wild-Nuts/pkg/logger"
	"github.com/The-WildNuts/The-Wild-Nuts/pkg/types"
)

func TestWriteSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccess(rec, map[string]string{"status": "ok"})

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var envelope types.SuccessEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	data, ok := envelope.Data.(map[string]any)
	if !ok || data["status"] != "ok" {
		t.Fatalf("unexpected envelope: %+v", envelope)
	}
}

func TestWriteErrorUsesCodeMetadata(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "responses-test", Output: io.Discard})

	cases := []struct {
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{pkgerrors.New(pkgerrors.CodeNotFound, "order not found"), 404, "NOT_FOUND", "order not found"},
		{pkgerrors.New(pkgerrors.CodeConflict, "user already exists"), 409, "CONFLICT", "user already exists"},
		{pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials"), 401, "UNAUTHORIZED", "invalid credentials"},
		{errors.New("boom"), 500, "INTERNAL_ERROR", "internal server error"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		WriteError(context.Background(), logg, rec, tc.err)

		if rec.Code != tc.wantStatus {
			t.Errorf("%v: status %d, want %d", tc.err, rec.Code, tc.wantStatus)
		}
		var envelope types.ErrorEnvelope
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if envelope.Error.Code != tc.wantCode || envelope.Error.Message != tc.wantMsg {
			t.Errorf("%v: got %+v", tc.err, envelope.Error)
		}
	}
}

func TestWriteErrorHidesInternalMessages(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec, pkgerrors.New(pkgerrors.CodeInternal, "sheet credentials invalid"))

	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Error.Message != "internal server error" {
		t.Fatalf("internal detail must not leak: %+v", envelope.Error)
	}
}
