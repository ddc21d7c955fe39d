package constants

import "time"

// Service identity reported by the health endpoint
const (
	ServiceName    = "Hotel Booking Mock API"
	ServiceVersion = "1.0.0"
	HealthStatusOK = "OK"
)

// Environment variable constants
const (
	EnvPort             = "PORT"
	EnvHost             = "HOST"
	EnvEnvironment      = "HOTEL_MOCK_ENV"
	EnvConfigFile       = "HOTEL_MOCK_CONFIG"
	EnvLogLevel         = "HOTEL_MOCK_LOG_LEVEL"
	EnvLogFormat        = "HOTEL_MOCK_LOG_FORMAT"
	EnvMaxBodySize      = "HOTEL_MOCK_MAX_BODY_SIZE"
	EnvMetricsPort      = "HOTEL_MOCK_METRICS_PORT"
	EnvShutdownTimeout  = "HOTEL_MOCK_SHUTDOWN_TIMEOUT"
	EnvJWTSecret        = "HOTEL_MOCK_JWT_SECRET"
	EnvJWTTTL           = "HOTEL_MOCK_JWT_TTL"
	EnvCatalogFile      = "HOTEL_MOCK_CATALOG_FILE"
	EnvHotReload        = "HOTEL_MOCK_HOT_RELOAD"
	EnvRateLimitEnabled = "HOTEL_MOCK_RATE_LIMIT_ENABLED"
	EnvRateLimitRPS     = "HOTEL_MOCK_RATE_LIMIT_RPS"
	EnvTracingEnabled   = "HOTEL_MOCK_TRACING_ENABLED"
	EnvTLSCertFile      = "HOTEL_MOCK_TLS_CERT_FILE"
	EnvTLSKeyFile       = "HOTEL_MOCK_TLS_KEY_FILE"
)

// Runtime environments
const (
	EnvironmentProd = "production"
	EnvironmentDev  = "development"
)

// Defaults applied when no configuration source sets a value
const (
	DefaultPort          = "3000"
	DefaultHost          = "0.0.0.0"
	DefaultMaxBodySize   = 10 * 1024 * 1024
	DefaultMaxFormSize   = 100 * 1024
	DefaultPrebookTTL    = 15 * time.Minute
	DefaultJWTTTL        = 24 * time.Hour
	DefaultJWTSecret     = "hotel-booking-mock-dev-secret"
	DefaultShutdownGrace = 30 * time.Second
)

// HTTP method constants
const (
	MethodGET     = "GET"
	MethodHEAD    = "HEAD"
	MethodPOST    = "POST"
	MethodPUT     = "PUT"
	MethodDELETE  = "DELETE"
	MethodPATCH   = "PATCH"
	MethodOPTIONS = "OPTIONS"
)

// HTTP header constants
const (
	HeaderAuthorization  = "Authorization"
	HeaderContentType    = "Content-Type"
	HeaderContentLength  = "Content-Length"
	HeaderAccept         = "Accept"
	HeaderXRequestedWith = "X-Requested-With"
	HeaderXRequestID     = "X-Request-ID"
	HeaderOrigin         = "Origin"
	HeaderVary           = "Vary"
	HeaderXForwardedFor  = "X-Forwarded-For"
	HeaderXRealIP        = "X-Real-IP"
)

// Content type constants
const (
	ContentTypeJSON = "application/json"
	ContentTypeForm = "application/x-www-form-urlencoded"
)

// CORS headers
const (
	HeaderAccessControlAllowOrigin      = "Access-Control-Allow-Origin"
	HeaderAccessControlAllowMethods     = "Access-Control-Allow-Methods"
	HeaderAccessControlAllowHeaders     = "Access-Control-Allow-Headers"
	HeaderAccessControlRequestHeaders   = "Access-Control-Request-Headers"
	HeaderAccessControlAllowCredentials = "Access-Control-Allow-Credentials"
	HeaderAccessControlMaxAge           = "Access-Control-Max-Age"
)

// Authentication constants
const (
	BearerPrefix = "Bearer "
)

// Rate limiting strategy constants
const (
	RateLimitStrategyIP = "ip"
)

// Rate limiting headers
const (
	HeaderXRateLimitLimit     = "X-RateLimit-Limit"
	HeaderXRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderXRateLimitReset     = "X-RateLimit-Reset"
	HeaderRetryAfter          = "Retry-After"
)

// Rate limiter internal constants
const (
	// RateLimitCleanupInterval is the interval for cleaning up rate limit cache
	RateLimitCleanupInterval = 5 * time.Minute
	// RateLimitMaxCacheSize is the maximum size of the rate limit cache
	RateLimitMaxCacheSize = 10000
)

// Server timeout constants
const (
	ServerReadTimeout       = 15 * time.Second
	ServerReadHeaderTimeout = 5 * time.Second
	ServerWriteTimeout      = 15 * time.Second
	ServerIdleTimeout       = 60 * time.Second
	ServerMaxHeaderBytes    = 1 << 20
)

// Error code constants
const (
	ErrorCodeNotFound          = "NOT_FOUND"
	ErrorCodeInternal          = "INTERNAL_ERROR"
	ErrorCodeBadRequest        = "BAD_REQUEST"
	ErrorCodeInvalidJSON       = "INVALID_JSON"
	ErrorCodeValidation        = "VALIDATION_FAILED"
	ErrorCodePayloadTooLarge   = "PAYLOAD_TOO_LARGE"
	ErrorCodeUnauthorized      = "UNAUTHORIZED"
	ErrorCodeForbidden         = "FORBIDDEN"
	ErrorCodeConflict          = "CONFLICT"
	ErrorCodeGone              = "GONE"
	ErrorCodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrorCodeHostNotAllowed    = "HOST_NOT_ALLOWED"
)

// Path constants
const (
	PathRoot    = "/"
	PathHealth  = "/health"
	PathReady   = "/ready"
	PathMetrics = "/metrics"
	PathOpenAPI = "/openapi.json"
	PrefixAPI   = "/api/"
	PrefixHotel = "/api/hotel"
	PrefixAuth  = "/api/auth"
)

// Query parameter constants
const (
	QueryParamDelay = "__delay"
)

// MaxDelayDuration caps the simulated latency a client may request
const MaxDelayDuration = 30 * time.Second
