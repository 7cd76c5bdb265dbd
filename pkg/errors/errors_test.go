package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForDomainCodes(t *testing.T) {
	cases := []struct {
		code   Code
		status int
	}{
		{CodeNotOwner, http.StatusForbidden},
		{CodeInvalidWithdrawalAmount, http.StatusUnprocessableEntity},
		{CodeInvalidQuantity, http.StatusUnprocessableEntity},
		{CodeInsufficientInventory, http.StatusConflict},
		{CodeInsufficientPayment, http.StatusPaymentRequired},
		{CodeInvalidPrice, http.StatusBadRequest},
		{CodeInvalidSupply, http.StatusBadRequest},
		{CodeItemNotListed, http.StatusConflict},
		{CodeSupplyExceeded, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		if got := MetadataFor(tc.code).HTTPStatus; got != tc.status {
			t.Fatalf("code %s: expected status %d got %d", tc.code, tc.status, got)
		}
		if MetadataFor(tc.code).Retryable {
			t.Fatalf("code %s should not be retryable", tc.code)
		}
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	meta := MetadataFor(Code("SOMETHING_ELSE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal fallback, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("row locked")
	err := Wrap(CodeDependency, cause, "lock store")
	if !stdErrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to survive errors.Is")
	}
	if typed := As(fmt.Errorf("outer: %w", err)); typed == nil || typed.Code() != CodeDependency {
		t.Fatalf("expected typed error through wrapping, got %v", typed)
	}
}

func TestDumpCollectsChain(t *testing.T) {
	err := Wrap(CodeInsufficientInventory, stdErrors.New("available=2 requested=5"), "decrease available")
	dump := Dump(err)
	if dump.Code != CodeInsufficientInventory {
		t.Fatalf("unexpected code %s", dump.Code)
	}
	if len(dump.Chain) < 2 {
		t.Fatalf("expected chain of at least 2, got %d", len(dump.Chain))
	}
}
