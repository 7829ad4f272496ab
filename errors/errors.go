package errors

import "errors"

// Sentinel errors for the failure classes handlers have to tell apart.
// Services wrap these with New so handlers can map them to status codes
// with errors.Is instead of comparing message strings.
var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrVerificationFailed = errors.New("payment verification failed")
	ErrUpstream           = errors.New("upstream provider error")
	ErrConflict           = errors.New("already exists")
)

// Error couples a taxonomy class with the exact message shown to the user.
// errors.Is against the sentinels above picks the status code; Error() is
// what goes in the response body.
type Error struct {
	kind    error
	message string
}

func (e *Error) Error() string { return e.message }

func (e *Error) Unwrap() error { return e.kind }

func New(kind error, message string) error {
	return &Error{kind: kind, message: message}
}

const (
	ListingNotFound         = "Listing you requested for does not exist!"
	ReviewNotFound          = "Review not found"
	UserNotFound            = "User not found! Please enter a valid email"
	InvalidCredentials      = "Invalid username or password"
	NotListingOwner         = "You don't have permission to edit this listing!"
	NotReviewAuthor         = "You are not the author of the review!"
	OwnListingAction        = "You cannot perform this action on your own listing!"
	LoginRequired           = "You must be logged in to book."
	EmailAlreadyRegistered  = "Email already registered."
	ProfileAlreadyExists    = "Email or username already exists!"
	InvalidOrExpiredCode    = "Invalid or expired OTP!"
	PasswordsDoNotMatch     = "Passwords do not match!"
	PaymentVerifyFailed     = "Payment verification failed"
	UserOrListingNotFound   = "User or Listing not found"
	InvalidRequestFormat    = "Invalid request format"
	InternalServerError     = "Internal Server Error"
)
