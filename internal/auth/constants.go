package auth

import "time"

const (
	ContextKeySession    = "session"
	ContextKeyAuthSource = "auth_source"

	headerAuthorization = "Authorization"
	headerCSRFToken     = "X-CSRF-Token"

	bearerScheme    = "bearer"
	authHeaderParts = 2

	csrfContextPrefix = "csrf:"
)

// AuthSource records how the session token reached the server.
type AuthSource string

const (
	AuthSourceCookie AuthSource = "cookie"
	AuthSourceBearer AuthSource = "bearer"
)

const (
	msgMissingSession          = "authentication required"
	msgInvalidOrExpiredSession = "session is invalid or has expired"
	msgCSRFTokenRequired       = "CSRF token required"
	msgCSRFTokenInvalid        = "invalid CSRF token"
	msgUnexpectedSigningMethod = "unexpected signing method: %v"
	msgTokenParseFailed        = "failed to parse token: %w"
	msgInvalidTokenClaims      = "invalid token claims"
	msgTokenSubjectMissing     = "token has no subject"
	msgSignTokenFailed         = "failed to sign token: %w"
	msgCredentialStoreDown     = "credential store unavailable"
	msgHashPasswordFailed      = "failed to hash password"
	msgCreateUserFailed        = "failed to create user"
	msgDefaultRoleInvalid      = "default role is not configured"
	msgTokenExpired            = "token has expired"

	reasonUnknownEmail  = "unknown_email"
	reasonWrongPassword = "wrong_password"
	reasonInactive      = "inactive"
)

const cookiePath = "/"

// tokenLeeway tolerates clock skew between replicas on iat. Expiry is exact.
const tokenLeeway = 5 * time.Second
