package middlewares

const (
	CtxRequestID = "request_id"

	ctxPrincipalKey = "auth.principal"
)
