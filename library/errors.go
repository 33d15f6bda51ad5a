package library

import "errors"

// Sentinel errors reported by Library's Borrow and Return. The boolean
// BorrowBook/ReturnBook wrappers collapse all of these to false; callers who
// need to tell the cases apart use errors.Is against these.
var (
	ErrMemberNotFound       = errors.New("member not found")
	ErrBookNotFound         = errors.New("book not found")
	ErrBookUnavailable      = errors.New("book unavailable")
	ErrBorrowLimitExceeded  = errors.New("borrow limit exceeded")
	ErrBookAlreadyAvailable = errors.New("book already available")
)
