package middlewares

const (
	ctxPrincipalKey = "auth.principal"

	// CtxRequestID is shared with the request logger and respond helpers.
	CtxRequestID = "request_id"
)
