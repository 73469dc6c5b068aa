package types

import (
	"errors"
	"testing"
)

func TestCoreErrorIs(t *testing.T) {
	underlying := errors.New("boom")
	err := WrapError(ErrNotEnoughFunds, underlying)

	if !errors.Is(err, NewError(ErrNotEnoughFunds)) {
		t.Fatal("expected errors.Is to match on code regardless of wrapped cause")
	}
	if errors.Is(err, NewError(ErrViewWallet)) {
		t.Fatal("expected errors.Is to reject a different code")
	}
	if !errors.Is(err, underlying) {
		t.Fatal("expected errors.Is to reach the wrapped cause via Unwrap")
	}
}

func TestCoreErrorMessage(t *testing.T) {
	plain := NewError(ErrViewWallet)
	if plain.Error() != string(ErrViewWallet) {
		t.Fatalf("got %q, want %q", plain.Error(), ErrViewWallet)
	}

	wrapped := WrapError(ErrViewWallet, errors.New("detail"))
	if wrapped.Error() == plain.Error() {
		t.Fatal("expected a wrapped error's message to include the cause")
	}
}
