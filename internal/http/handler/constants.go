package handler

const (
	contentTypeJSON = "application/json"

	// maxStrictBodyBytes keeps the parser bound aligned with the global body limit.
	maxStrictBodyBytes int64 = 1 << 20

	msgContentTypeJSONRequired = "Content-Type must be application/json"
	msgInvalidRequestBody      = "invalid request body"
	msgAuthenticationRequired  = "authentication required"
	msgInsufficientRoles       = "insufficient permissions for this operation"
)
