package gateway

import (
	"errors"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Sentinel errors for generation failures
var (
	// ErrNoCredential means no generation credential is configured at
	// all; the caller can recover by providing one.
	ErrNoCredential = goerr.New("no generation credential configured")

	// ErrInvalidCredential means the provider rejected the configured
	// credential.
	ErrInvalidCredential = goerr.New("generation credential rejected")
)

// ErrorClass is the small taxonomy of provider failures. Each class
// maps to a distinct user-facing message.
type ErrorClass string

const (
	ClassMissingCredential ErrorClass = "missing_credential"
	ClassInvalidCredential ErrorClass = "invalid_credential"
	ClassProvider          ErrorClass = "provider_error"
)

var userMessages = map[ErrorClass]string{
	ClassMissingCredential: "The assistant is not configured with a generation credential yet. Please try again later.",
	ClassInvalidCredential: "The assistant's generation credential was rejected by the provider. Please contact the site owner.",
	ClassProvider:          "The assistant hit a temporary problem while generating the answer. Please try again in a moment.",
}

// Classify maps a provider error onto the gateway taxonomy
func Classify(err error) ErrorClass {
	if errors.Is(err, ErrNoCredential) {
		return ClassMissingCredential
	}
	if errors.Is(err, ErrInvalidCredential) {
		return ClassInvalidCredential
	}

	switch status.Code(err) {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ClassInvalidCredential
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"api key", "invalid key", "unauthenticated", "unauthorized", "permission denied"} {
		if strings.Contains(msg, marker) {
			return ClassInvalidCredential
		}
	}

	return ClassProvider
}

// UserMessage returns the user-facing message for an error class
func UserMessage(class ErrorClass) string {
	return userMessages[class]
}
