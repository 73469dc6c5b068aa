package types

import (
	"fmt"
)

// ErrorCode is a stable, switchable identifier for every error condition the
// wallet core can surface, per the taxonomy of error kinds the public API
// promises to a caller (RPC adapters in particular need something more
// structured than an error string to switch on).
type ErrorCode string

// The full taxonomy of error kinds the wallet core can return. Grouped the
// same way as the design documentation: input/format, wallet file, semantic,
// runtime/transport.
const (
	ErrAddressNotBase58     ErrorCode = "ADDRESS_NOT_BASE58"
	ErrAddressWrongPrefix   ErrorCode = "ADDRESS_WRONG_PREFIX"
	ErrAddressWrongLength   ErrorCode = "ADDRESS_WRONG_LENGTH"
	ErrAddressNotValid      ErrorCode = "ADDRESS_NOT_VALID"
	ErrWrongKeyFormat       ErrorCode = "WRONG_KEY_FORMAT"
	ErrWrongPaymentIDFormat ErrorCode = "WRONG_PAYMENT_ID_FORMAT"
	ErrWrongHashFormat      ErrorCode = "WRONG_HASH_FORMAT"
	ErrBadTransactionExtra  ErrorCode = "BAD_TRANSACTION_EXTRA"
	ErrInvalidMnemonic      ErrorCode = "INVALID_MNEMONIC"
	ErrConflictingPaymentID ErrorCode = "CONFLICTING_PAYMENT_IDS"

	ErrFilenameNonExistent    ErrorCode = "FILENAME_NON_EXISTENT"
	ErrInvalidWalletFilename  ErrorCode = "INVALID_WALLET_FILENAME"
	ErrNotAWalletFile         ErrorCode = "NOT_A_WALLET_FILE"
	ErrWalletFileCorrupted    ErrorCode = "WALLET_FILE_CORRUPTED"
	ErrWrongPassword          ErrorCode = "WRONG_PASSWORD"
	ErrUnsupportedFileVersion ErrorCode = "UNSUPPORTED_WALLET_FILE_FORMAT_VERSION"
	ErrWalletFileAlreadyExist ErrorCode = "WALLET_FILE_ALREADY_EXISTS"

	ErrAddressNotFound       ErrorCode = "ADDRESS_NOT_FOUND"
	ErrNotEnoughFunds        ErrorCode = "NOT_ENOUGH_FUNDS"
	ErrKeysNotDeterministic  ErrorCode = "KEYS_NOT_DETERMINISTIC"
	ErrKeyAlreadyExists      ErrorCode = "KEY_ALREADY_EXISTS"
	ErrTxPrivateKeyNotFound  ErrorCode = "TX_PRIVATE_KEY_NOT_FOUND"
	ErrMixinAboveThreshold   ErrorCode = "MIXIN_ABOVE_THRESHOLD"
	ErrMixinBelowThreshold   ErrorCode = "MIXIN_BELOW_THRESHOLD"
	ErrMixinCountTooBig      ErrorCode = "MIXIN_COUNT_TOO_BIG"
	ErrViewWallet            ErrorCode = "VIEW_WALLET"

	ErrNodeBusy           ErrorCode = "NODE_BUSY"
	ErrInternalNodeError  ErrorCode = "INTERNAL_NODE_ERROR"
	ErrConnectError       ErrorCode = "CONNECT_ERROR"
	ErrNetworkError       ErrorCode = "NETWORK_ERROR"
	ErrTimeout            ErrorCode = "TIMEOUT"
	ErrOperationCancelled ErrorCode = "OPERATION_CANCELLED"
	ErrNotInitialized     ErrorCode = "NOT_INITIALIZED"
	ErrAlreadyInitialized ErrorCode = "ALREADY_INITIALIZED"
)

// CoreError is the typed error returned by every wallet-core operation that
// can fail for a reason in the taxonomy above. It wraps an optional
// underlying error so that callers can still reach the original cause with
// errors.Unwrap, while switching on Code for behavior.
type CoreError struct {
	Code ErrorCode
	Err  error
}

// NewError builds a CoreError for a code with no further wrapped cause.
func NewError(code ErrorCode) *CoreError {
	return &CoreError{Code: code}
}

// WrapError builds a CoreError for a code, wrapping an underlying cause.
func WrapError(code ErrorCode, err error) *CoreError {
	return &CoreError{Code: code, Err: err}
}

func (e *CoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return string(e.Code)
}

func (e *CoreError) Unwrap() error {
	return e.Err
}

// Is allows errors.Is(err, types.NewError(code)) to match any CoreError with
// the same code, regardless of its wrapped cause.
func (e *CoreError) Is(target error) bool {
	t, ok := target.(*CoreError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}
