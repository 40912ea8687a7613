package authtransport

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-kit/kit/endpoint"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/twinj/uuid"

	"github.com/taskstash/taskstash"
	"github.com/taskstash/taskstash/pkg/authservice"
)

// TokenToContext moves a bearer token from the Authorization header into the
// request context. A missing or malformed header leaves the context
// untouched; rejecting the request is the verifier's job.
func TokenToContext() httptransport.RequestFunc {
	return func(ctx context.Context, r *http.Request) context.Context {
		header := r.Header.Get("Authorization")
		if header == "" {
			return ctx
		}

		fields := strings.SplitN(header, " ", 2)
		if len(fields) != 2 || !strings.EqualFold(fields[0], "Bearer") {
			return ctx
		}

		return context.WithValue(ctx, taskstash.TokenContextKey, fields[1])
	}
}

// RequestIDToContext assigns each inbound request an ID for log correlation.
func RequestIDToContext() httptransport.RequestFunc {
	return func(ctx context.Context, r *http.Request) context.Context {
		return context.WithValue(ctx, taskstash.RequestIDContextKey, uuid.NewV4().String())
	}
}

// NewVerifier gates an endpoint behind token verification. On success the
// authenticated account ID travels down through the context; on any failure
// the request is rejected as unauthorized with no further detail.
func NewVerifier(t authservice.Tokenizer) endpoint.Middleware {
	return func(next endpoint.Endpoint) endpoint.Endpoint {
		return func(ctx context.Context, request interface{}) (response interface{}, err error) {
			token, ok := ctx.Value(taskstash.TokenContextKey).(string)
			if !ok {
				return nil, taskstash.ErrUnauthorized
			}

			accountID, err := t.Verify(token)
			if err != nil {
				return nil, err
			}

			ctx = context.WithValue(ctx, taskstash.AccountIDContextKey, accountID)

			return next(ctx, request)
		}
	}
}
