package errors

import (
	"fmt"
	"net/http"
	"testing"

	"google.golang.org/api/googleapi"
)

func TestMetadataForKnownCodes(t *testing.T) {
	if got := MetadataFor(CodeNotFound).HTTPStatus; got != http.StatusNotFound {
		t.Fatalf("expected 404 for NOT_FOUND, got %d", got)
	}
	if got := MetadataFor(CodeDependency).HTTPStatus; got != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for DEPENDENCY_ERROR, got %d", got)
	}
	if !MetadataFor(CodeDependency).Retryable {
		t.Fatal("dependency errors should be retryable")
	}
}

func TestMetadataForUnknownCodeFallsBackToInternal(t *testing.T) {
	if got := MetadataFor(Code("NOPE")).HTTPStatus; got != http.StatusInternalServerError {
		t.Fatalf("expected 500 fallback, got %d", got)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("socket closed")
	err := Wrap(CodeDependency, cause, "fetch worksheet")

	if err.Unwrap() != cause {
		t.Fatal("expected wrapped cause to unwrap")
	}
	if !IsCode(err, CodeDependency) {
		t.Fatal("expected IsCode to match DEPENDENCY_ERROR")
	}
	if IsCode(err, CodeNotFound) {
		t.Fatal("IsCode matched the wrong code")
	}
}

func TestAsFindsTypedErrorInChain(t *testing.T) {
	inner := New(CodeConflict, "duplicate email")
	wrapped := fmt.Errorf("registering: %w", inner)

	typed := As(wrapped)
	if typed == nil || typed.Code() != CodeConflict {
		t.Fatalf("expected CONFLICT in chain, got %v", typed)
	}
}

func TestDumpExtractsGoogleAPIError(t *testing.T) {
	apiErr := &googleapi.Error{Code: 404, Message: "Requested entity was not found."}
	err := Wrap(CodeNotFound, apiErr, "open worksheet")

	dump := Dump(err)
	if dump.Code != CodeNotFound {
		t.Fatalf("expected NOT_FOUND code, got %s", dump.Code)
	}
	if dump.SheetsStatus != 404 {
		t.Fatalf("expected sheets status 404, got %d", dump.SheetsStatus)
	}
	if len(dump.Chain) < 2 {
		t.Fatalf("expected full error chain, got %v", dump.Chain)
	}
}
