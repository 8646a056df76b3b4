package httpx

import "context"

type ctxKey string

// CtxKeySubject carries the authenticated principal's subject (login name)
// once the bearer middleware has validated the request. It is also what
// per-user rate limiting keys on.
const CtxKeySubject ctxKey = "subject"

// SubjectFromContext returns the authenticated subject, or "" when the
// request is unauthenticated.
func SubjectFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeySubject).(string); ok {
		return v
	}
	return ""
}

// ContextWithSubject stamps the authenticated subject onto the context.
func ContextWithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, CtxKeySubject, subject)
}
