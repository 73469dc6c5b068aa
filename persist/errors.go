package persist

import "errors"

var (
	// ErrBadHeader is returned when the header of a persisted file or
	// database does not match the header that was expected.
	ErrBadHeader = errors.New("wrong header")

	// ErrBadVersion is returned when the version of a persisted file or
	// database does not match the version that was expected.
	ErrBadVersion = errors.New("incompatible version")
)

// Metadata contains the header and version of a persisted object, used to
// identify the type and format of data stored in a file or database.
type Metadata struct {
	Header  string
	Version string
}
