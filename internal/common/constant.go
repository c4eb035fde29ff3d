package common

const (
	// AuthorizationHeader carries the bearer token on HTTP requests.
	AuthorizationHeader = "Authorization"

	// AuthorizationMetadataKey is the gRPC metadata key for the bearer token
	// (metadata keys are lower-case).
	AuthorizationMetadataKey = "authorization"

	// BearerScheme is the only accepted authorization scheme.
	BearerScheme = "Bearer"

	// RequestIDHeader is echoed on every HTTP response.
	RequestIDHeader = "X-Request-ID"
)
