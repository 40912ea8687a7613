package noteservice

import (
	"context"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/metrics"

	"github.com/taskstash/taskstash"
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

func (mw loggingMiddleware) CreateNote(ctx context.Context, accountID uint64, input taskstash.NewNote) (n taskstash.Note, err error) {
	defer func() {
		mw.logger.Log(
			"method", "CreateNote",
			"account_id", accountID,
			"title", input.Title,
			"err", err,
		)
	}()
	return mw.next.CreateNote(ctx, accountID, input)
}

func (mw loggingMiddleware) Notes(ctx context.Context, accountID uint64, limit, offset int) (p taskstash.NotePage, err error) {
	defer func() {
		mw.logger.Log(
			"method", "Notes",
			"account_id", accountID,
			"limit", limit,
			"offset", offset,
			"has_more", p.HasMore,
			"err", err,
		)
	}()
	return mw.next.Notes(ctx, accountID, limit, offset)
}

func (mw loggingMiddleware) UpdateNote(ctx context.Context, accountID uint64, input taskstash.EditNote) (n taskstash.Note, err error) {
	defer func() {
		mw.logger.Log(
			"method", "UpdateNote",
			"account_id", accountID,
			"note_id", input.ID,
			"err", err,
		)
	}()
	return mw.next.UpdateNote(ctx, accountID, input)
}

func (mw loggingMiddleware) DeleteNote(ctx context.Context, accountID, noteID uint64) (result bool, err error) {
	defer func() {
		mw.logger.Log(
			"method", "DeleteNote",
			"account_id", accountID,
			"note_id", noteID,
			"result", result,
			"err", err,
		)
	}()
	return mw.next.DeleteNote(ctx, accountID, noteID)
}

func InstrumentingMiddleware(counter metrics.Counter, latency metrics.Histogram) Middleware {
	return func(next Service) Service {
		return instrumentingMiddleware{counter, latency, next}
	}
}

type instrumentingMiddleware struct {
	requestCount   metrics.Counter
	requestLatency metrics.Histogram
	next           Service
}

func (mw instrumentingMiddleware) CreateNote(ctx context.Context, accountID uint64, input taskstash.NewNote) (n taskstash.Note, err error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "create_note").Add(1)
		mw.requestLatency.With("method", "create_note").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.CreateNote(ctx, accountID, input)
}

func (mw instrumentingMiddleware) Notes(ctx context.Context, accountID uint64, limit, offset int) (p taskstash.NotePage, err error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "notes").Add(1)
		mw.requestLatency.With("method", "notes").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.Notes(ctx, accountID, limit, offset)
}

func (mw instrumentingMiddleware) UpdateNote(ctx context.Context, accountID uint64, input taskstash.EditNote) (n taskstash.Note, err error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "update_note").Add(1)
		mw.requestLatency.With("method", "update_note").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.UpdateNote(ctx, accountID, input)
}

func (mw instrumentingMiddleware) DeleteNote(ctx context.Context, accountID, noteID uint64) (result bool, err error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "delete_note").Add(1)
		mw.requestLatency.With("method", "delete_note").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.DeleteNote(ctx, accountID, noteID)
}
