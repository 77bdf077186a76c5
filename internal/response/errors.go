package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionActive      ErrCode = "SESSION_ALREADY_ACTIVE"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden       ErrCode = "FORBIDDEN"
	ErrAdminAccessOnly ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Bank / paper ──────────────────────────────────────────────────
	ErrBankNotFound   ErrCode = "BANK_NOT_FOUND"
	ErrBankUnreadable ErrCode = "BANK_UNREADABLE"
	ErrEmptyPool      ErrCode = "EMPTY_POOL"
	ErrPoolTooSmall   ErrCode = "POOL_TOO_SMALL"

	// ─── Exam session ──────────────────────────────────────────────────
	ErrUnknownCertType  ErrCode = "UNKNOWN_CERT_TYPE"
	ErrInvalidExamSpec  ErrCode = "INVALID_EXAM_SPEC"
	ErrNoActiveAttempt  ErrCode = "NO_ACTIVE_ATTEMPT"
	ErrAttemptActive    ErrCode = "ATTEMPT_ALREADY_ACTIVE"
	ErrSectionNotActive ErrCode = "SECTION_NOT_ACTIVE"
	ErrSectionsRemain   ErrCode = "SECTIONS_REMAIN"
	ErrQuestionOffPaper ErrCode = "QUESTION_NOT_ON_PAPER"

	// ─── AI ────────────────────────────────────────────────────────────
	ErrAIDisabled    ErrCode = "AI_DISABLED"
	ErrAIUnavailable ErrCode = "AI_UNAVAILABLE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Employee ID or password is incorrect."
	case ErrSessionActive:
		return "You are already signed in on another device."
	case ErrSessionInvalidated:
		return "Your session has ended. Please sign in again."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrTokenExpired:
		return "The authentication token has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrAdminAccessOnly:
		return "This resource is restricted to administrators."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."

	// ─── Bank / paper ──────────────────────────────────────────────────
	case ErrBankNotFound:
		return "No question bank is loaded for this certification."
	case ErrBankUnreadable:
		return "The question bank workbook could not be read."
	case ErrEmptyPool:
		return "The question pool is empty after filtering."
	case ErrPoolTooSmall:
		return "The question pool is too small for the requested paper."

	// ─── Exam session ──────────────────────────────────────────────────
	case ErrUnknownCertType:
		return "Unknown certification type."
	case ErrInvalidExamSpec:
		return "The exam specification is invalid."
	case ErrNoActiveAttempt:
		return "You have no exam attempt in progress."
	case ErrAttemptActive:
		return "An exam attempt is already in progress. Reset it first."
	case ErrSectionNotActive:
		return "No section is currently in progress."
	case ErrSectionsRemain:
		return "Sections remain before the exam can be finalized."
	case ErrQuestionOffPaper:
		return "That question is not on the current paper."

	// ─── AI ────────────────────────────────────────────────────────────
	case ErrAIDisabled:
		return "AI assistance is not enabled on this server."
	case ErrAIUnavailable:
		return "AI assistance is temporarily unavailable."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
