package taskservice

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

func (mw loggingMiddleware) CreateTask(ctx context.Context, accountID uint64, input taskstash.NewTask) (t taskstash.Task, err error) {
	defer func() {
		mw.logger.Log(
			"method", "CreateTask",
			"account_id", accountID,
			"title", input.Title,
			"err", err,
		)
	}()
	return mw.next.CreateTask(ctx, accountID, input)
}

func (mw loggingMiddleware) Tasks(ctx context.Context, accountID uint64, limit, offset int) (p taskstash.TaskPage, err error) {
	defer func() {
		mw.logger.Log(
			"method", "Tasks",
			"account_id", accountID,
			"limit", limit,
			"offset", offset,
			"has_more", p.HasMore,
			"err", err,
		)
	}()
	return mw.next.Tasks(ctx, accountID, limit, offset)
}

func (mw loggingMiddleware) UpdateTask(ctx context.Context, accountID uint64, input taskstash.EditTask) (t taskstash.Task, err error) {
	defer func() {
		mw.logger.Log(
			"method", "UpdateTask",
			"account_id", accountID,
			"task_id", input.ID,
			"err", err,
		)
	}()
	return mw.next.UpdateTask(ctx, accountID, input)
}

func (mw loggingMiddleware) DeleteTask(ctx context.Context, accountID, taskID uint64) (result bool, err error) {
	defer func() {
		mw.logger.Log(
			"method", "DeleteTask",
			"account_id", accountID,
			"task_id", taskID,
			"result", result,
			"err", err,
		)
	}()
	return mw.next.DeleteTask(ctx, accountID, taskID)
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

func (mw instrumentingMiddleware) CreateTask(ctx context.Context, accountID uint64, input taskstash.NewTask) (t taskstash.Task, err error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "create_task").Add(1)
		mw.requestLatency.With("method", "create_task").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.CreateTask(ctx, accountID, input)
}

func (mw instrumentingMiddleware) Tasks(ctx context.Context, accountID uint64, limit, offset int) (p taskstash.TaskPage, err error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "tasks").Add(1)
		mw.requestLatency.With("method", "tasks").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.Tasks(ctx, accountID, limit, offset)
}

func (mw instrumentingMiddleware) UpdateTask(ctx context.Context, accountID uint64, input taskstash.EditTask) (t taskstash.Task, err error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "update_task").Add(1)
		mw.requestLatency.With("method", "update_task").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.UpdateTask(ctx, accountID, input)
}

func (mw instrumentingMiddleware) DeleteTask(ctx context.Context, accountID, taskID uint64) (result bool, err error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "delete_task").Add(1)
		mw.requestLatency.With("method", "delete_task").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.DeleteTask(ctx, accountID, taskID)
}
