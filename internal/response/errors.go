package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrEmailTaken         ErrCode = "EMAIL_TAKEN"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"
	ErrWrongPassword      ErrCode = "WRONG_PASSWORD"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrStudentAccessOnly ErrCode = "STUDENT_ACCESS_ONLY"
	ErrAdminAccessOnly   ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Paper generation ──────────────────────────────────────────────
	ErrNoCandidates    ErrCode = "NO_CANDIDATES"
	ErrUnknownExamType ErrCode = "UNKNOWN_EXAM_TYPE"
	ErrPaperNotFound   ErrCode = "PAPER_NOT_FOUND"

	// ─── Tutor ─────────────────────────────────────────────────────────
	ErrTutorDisabled    ErrCode = "TUTOR_DISABLED"
	ErrTutorUnavailable ErrCode = "TUTOR_UNAVAILABLE"

	// ─── Uploads ───────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"

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
		return "Email or password is incorrect."
	case ErrEmailTaken:
		return "An account with this email already exists."
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid."
	case ErrTokenExpired:
		return "Authentication token has expired."
	case ErrWrongPassword:
		return "Current password is incorrect."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrStudentAccessOnly:
		return "This resource is restricted to students."
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

	// ─── Paper generation ──────────────────────────────────────────────
	case ErrNoCandidates:
		return "No questions match the requested filters. Broaden the filters and try again."
	case ErrUnknownExamType:
		return "Unknown exam type. Supported: JEE_MAIN, JEE_ADVANCED, NEET."
	case ErrPaperNotFound:
		return "Paper not found or expired."

	// ─── Tutor ─────────────────────────────────────────────────────────
	case ErrTutorDisabled:
		return "The AI tutor is not enabled on this server."
	case ErrTutorUnavailable:
		return "The AI tutor is temporarily unavailable. Please try again later."

	// ─── Uploads ───────────────────────────────────────────────────────
	case ErrFileRequired:
		return "A file is required for this request."
	case ErrUnsupportedFile:
		return "Unsupported file type. Only JPEG, PNG, GIF and WebP images are accepted."
	case ErrFileTooLarge:
		return "The uploaded file exceeds the maximum allowed size."

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
