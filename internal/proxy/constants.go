package proxy

const (
	headerContentType   = "Content-Type"
	headerAuthorization = "Authorization"
	headerRequestID     = "X-Request-ID"

	contentTypeJSON = "application/json"
	bearerPrefix    = "Bearer "

	paramID = "id"

	// maxUpstreamBodyBytes bounds how much of an upstream response is buffered.
	maxUpstreamBodyBytes int64 = 10 << 20

	msgUpstreamTimeoutFmt     = "%s service did not respond in time"
	msgUpstreamUnavailableFmt = "%s service is unavailable"
	msgMalformedUpstream      = "malformed upstream response"
	msgInsufficientRoles      = "insufficient permissions for this operation"
	msgBodyMustBeObject       = "request body must be a JSON object"
	msgReadBodyFailed         = "failed to read request body"
	msgBuildRequestFailed     = "failed to build upstream request"
	msgUnknownServiceFmt      = "unknown upstream service %q"
	msgAuthenticationRequired = "authentication required"
)
