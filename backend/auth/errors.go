package auth

import "github.com/pkg/errors"

// The texts are shown to users verbatim.
var (
	ErrUserNotFound        = errors.New("No account found with this email")
	ErrWrongPassword       = errors.New("Incorrect password")
	ErrInvalidEmail        = errors.New("Invalid email address")
	ErrTooManyAttempts     = errors.New("Too many failed attempts. Please try again later")
	ErrEmailInUse          = errors.New("An account with this email already exists")
	ErrWeakPassword        = errors.New("Password should be at least 6 characters")
	ErrInvalidCredentials  = errors.New("Invalid email or password")
	ErrUnavailable         = errors.New("Authentication service is temporarily unavailable. Please try again.")
	ErrNotSignedIn         = errors.New("Not signed in")
	ErrSignInCancelled     = errors.New("Sign in was cancelled")
	ErrEmailNotVerified    = errors.New("Please verify your Google account email before signing in")
	ErrGoogleNotConfigured = errors.New("Google sign-in is not configured for this domain. Please use email/password login or contact support.")
)

var userFacing = []error{
	ErrUserNotFound,
	ErrWrongPassword,
	ErrInvalidEmail,
	ErrTooManyAttempts,
	ErrEmailInUse,
	ErrWeakPassword,
	ErrInvalidCredentials,
	ErrUnavailable,
	ErrNotSignedIn,
	ErrSignInCancelled,
	ErrEmailNotVerified,
	ErrGoogleNotConfigured,
}

// Message returns the user-facing text for err. Errors that are not one of
// the auth sentinels read as the service being unavailable.
func Message(err error) string {
	if err == nil {
		return ""
	}
	for _, known := range userFacing {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return ErrUnavailable.Error()
}

// IsUserError reports whether err is caused by the caller rather than by
// the backend.
func IsUserError(err error) bool {
	for _, known := range userFacing {
		if known != ErrUnavailable && errors.Is(err, known) {
			return true
		}
	}
	return false
}
