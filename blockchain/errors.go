// Copyright (c) 2014-2014 PPCD developers.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import "fmt"

// ErrorKind identifies the class of a KernelError. Consensus logic never
// branches on the free-text Description, only on Kind.
type ErrorKind int

const (
	// ErrChainCorruption indicates a consistency failure that a
	// well-formed chain should never trigger: a missing generated
	// modifier ancestor, or a candidate block hash absent from the
	// index during selection.
	ErrChainCorruption ErrorKind = iota

	// ErrInvalidBlock indicates a block fails one of the PoS validity
	// checks: empty signature, unknown staked-tx block, unsupported
	// script shape, bad signature, or modifier mismatch in check mode.
	ErrInvalidBlock

	// ErrInvalidStakeAttempt indicates a stake attempt violates an
	// eligibility precondition: insufficient value, age violation, or
	// a try-time earlier than the block it stakes from.
	ErrInvalidStakeAttempt

	// ErrNoStakeFound indicates search mode exhausted its drift window
	// without finding a hash under target. Not a hard failure. Never
	// actually constructed: search mode reports this case as (false,
	// nil), per spec §7's "Not an error" policy. Kept for taxonomy
	// completeness with spec.md's four-member error enum.
	ErrNoStakeFound
)

func (k ErrorKind) String() string {
	switch k {
	case ErrChainCorruption:
		return "chain corruption"
	case ErrInvalidBlock:
		return "invalid block"
	case ErrInvalidStakeAttempt:
		return "invalid stake attempt"
	case ErrNoStakeFound:
		return "no stake found"
	default:
		return "unknown kernel error"
	}
}

// KernelError is the error type returned by every kernel entry point that
// can fail. The Kind is the only thing consensus code should ever switch
// on; Description is a diagnostic for logs.
type KernelError struct {
	Kind        ErrorKind
	Description string
}

func (e KernelError) Error() string {
	return e.Description
}

// kernelError creates a KernelError for the given kind and formatted
// description, mirroring the teacher's ruleError convention.
func kernelError(kind ErrorKind, format string, args ...interface{}) error {
	return KernelError{Kind: kind, Description: fmt.Sprintf(format, args...)}
}

// IsErrorKind reports whether err is a KernelError of the given kind.
func IsErrorKind(err error, kind ErrorKind) bool {
	kerr, ok := err.(KernelError)
	return ok && kerr.Kind == kind
}
