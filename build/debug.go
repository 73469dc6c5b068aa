package build

import (
	"fmt"
	"os"
	"strings"
)

// Critical should be called when a sanity check has failed, indicating a
// developer error or on-disk corruption that the program cannot safely
// continue past. In a debug build it panics; in a release build it logs to
// stderr via the standard logger conventions used throughout the codebase.
func Critical(v ...interface{}) {
	msg := "Critical error: " + fmt.Sprintln(v...)
	if DEBUG {
		panic(msg)
	}
	fmt.Fprint(os.Stderr, msg)
}

// Severe is like Critical but for conditions that are unexpected but not
// fatal to the process - it only panics in debug builds, allowing release
// builds to log and continue.
func Severe(v ...interface{}) {
	msg := "Severe error: " + fmt.Sprintln(v...)
	if DEBUG {
		panic(msg)
	}
	fmt.Print(msg)
}

// JoinErrors combines any non-nil errors in errs into a single error,
// separated by sep. It returns nil if every error in errs is nil.
func JoinErrors(errs []error, sep string) error {
	var strs []string
	for _, err := range errs {
		if err != nil {
			strs = append(strs, err.Error())
		}
	}
	if len(strs) == 0 {
		return nil
	}
	return fmt.Errorf("%s", strings.Join(strs, sep))
}

// ComposeErrors is an alias of JoinErrors using "; " as the separator,
// matching the call pattern used across the wallet package.
func ComposeErrors(errs ...error) error {
	return JoinErrors(errs, "; ")
}
