package authservice

import (
	"context"

	"github.com/go-kit/kit/log"
)

type Middleware func(Service) Service

func LoggingMiddleware(logger log.Logger) Middleware {
	return func(next Service) Service {
		return loggingMiddleware{logger, next}
	}
}

type loggingMiddleware struct {
	logger log.Logger
	next   Service
}

// Passwords and hashes never reach the log fields.

func (mw loggingMiddleware) Register(ctx context.Context, email, password string) (id uint64, token string, err error) {
	defer func() {
		mw.logger.Log("method", "Register", "email", email, "account_id", id, "err", err)
	}()
	return mw.next.Register(ctx, email, password)
}

func (mw loggingMiddleware) Login(ctx context.Context, email, password string) (token string, err error) {
	defer func() {
		mw.logger.Log("method", "Login", "email", email, "err", err)
	}()
	return mw.next.Login(ctx, email, password)
}
