package errorx

type Code int

var Unknown = Error{Code: 100000, Message: "Request failed"}

const (
	// Common codes
	BadRequest       Code = 100001
	BadResponse      Code = 100002
	PermissionDenied Code = 100003
	NotFound         Code = 100004
	Unauthenticated  Code = 100005
	AlreadyExists    Code = 100006
	Internal         Code = 100007
	Unavailable      Code = 100008
	NotImplemented   Code = 100009
	TooManyRequests  Code = 100010

	// Token codes
	TokenExpired Code = 200002

	// Ledger codes
	InvalidState      Code = 300001
	InsufficientFunds Code = 300002
	AlreadyClaimed    Code = 300003
	LimitReached      Code = 300004
	TooEarly          Code = 300005
	NothingToClaim    Code = 300006
	Paused            Code = 300007
	TransferFailed    Code = 300008
	Reentrant         Code = 300009
)

// Aliases matching the ledger error taxonomy.
const (
	Unauthorized    = PermissionDenied
	InvalidArgument = BadRequest
)
