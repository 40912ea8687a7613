package main

import (
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/go-kit/kit/log"
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/oklog/oklog/pkg/group"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	libgorm "gorm.io/gorm"

	"github.com/taskstash/taskstash/db/gorm"
	"github.com/taskstash/taskstash/pkg/authendpoint"
	"github.com/taskstash/taskstash/pkg/authservice"
	"github.com/taskstash/taskstash/pkg/authtransport"
	"github.com/taskstash/taskstash/pkg/noteendpoint"
	"github.com/taskstash/taskstash/pkg/noteservice"
	"github.com/taskstash/taskstash/pkg/notetransport"
	"github.com/taskstash/taskstash/pkg/taskendpoint"
	"github.com/taskstash/taskstash/pkg/taskservice"
	"github.com/taskstash/taskstash/pkg/tasktransport"
)

const devSecret = "development-signing-secret"

func main() {
	godotenv.Load()

	fs := flag.NewFlagSet("taskstash", flag.ExitOnError)
	var (
		httpAddr = fs.String(
			"http.addr",
			getEnv("HTTP_ADDR", ":8000"),
			"HTTP listen address",
		)
		databaseURL = fs.String(
			"database.url",
			getEnv("DATABASE_URL", ""),
			"Postgres URL; a local sqlite file is used when empty",
		)
		secret = fs.String(
			"app.secret",
			getEnv("APP_SECRET", ""),
			"token signing secret",
		)
		appEnv = fs.String(
			"app.env",
			getEnv("APP_ENV", ""),
			"deployment environment",
		)
	)

	fs.Usage = usageFor(fs, os.Args[0]+" [flags]")
	fs.Parse(os.Args[1:])

	var logger log.Logger
	{
		logger = log.NewLogfmtLogger(os.Stderr)
		logger = log.With(logger, "ts", log.DefaultTimestampUTC)
		logger = log.With(logger, "caller", log.DefaultCaller)
	}

	// A missing signing secret is a configuration error, not something to
	// paper over with a silent default.
	if *secret == "" {
		if *appEnv != "development" {
			logger.Log("err", "APP_SECRET is required")
			os.Exit(1)
		}
		*secret = devSecret
		logger.Log("msg", "using the development signing secret, do not run this in production")
	}

	var db *libgorm.DB
	var err error
	{
		if *databaseURL != "" {
			db, err = libgorm.Open(postgres.Open(*databaseURL), &libgorm.Config{})
		} else {
			db, err = libgorm.Open(sqlite.Open("taskstash.db"), &libgorm.Config{})
			if err == nil {
				err = db.Exec("PRAGMA foreign_keys = ON").Error
			}
		}
		if err != nil {
			logger.Log("err", err)
			os.Exit(1)
		}
	}

	if err := gorm.AutoMigrate(db); err != nil {
		logger.Log("err", err)
		os.Exit(1)
	}

	var (
		accounts  = gorm.NewAccountRepository(db)
		tasks     = gorm.NewTaskRepository(db)
		notes     = gorm.NewNoteRepository(db)
		tokenizer = authservice.NewTokenizer(authservice.NewSigner(*secret))
	)

	var authEndpoints authendpoint.Set
	{
		svc := authservice.New(accounts, tokenizer, logger)
		authEndpoints = authendpoint.New(svc, logger)
	}

	var taskEndpoints taskendpoint.Set
	{
		fieldKeys := []string{"method"}
		requestCount := kitprometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: "taskstash",
			Subsystem: "task_service",
			Name:      "request_count",
			Help:      "Number of requests received.",
		}, fieldKeys)
		requestLatency := kitprometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
			Namespace: "taskstash",
			Subsystem: "task_service",
			Name:      "request_latency_seconds",
			Help:      "Total duration of requests in seconds.",
		}, fieldKeys)

		var svc taskservice.Service
		{
			svc = taskservice.New(tasks, logger)
			svc = taskservice.InstrumentingMiddleware(requestCount, requestLatency)(svc)
		}

		taskEndpoints = taskendpoint.New(svc, logger)
	}

	var noteEndpoints noteendpoint.Set
	{
		fieldKeys := []string{"method"}
		requestCount := kitprometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: "taskstash",
			Subsystem: "note_service",
			Name:      "request_count",
			Help:      "Number of requests received.",
		}, fieldKeys)
		requestLatency := kitprometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
			Namespace: "taskstash",
			Subsystem: "note_service",
			Name:      "request_latency_seconds",
			Help:      "Total duration of requests in seconds.",
		}, fieldKeys)

		var svc noteservice.Service
		{
			svc = noteservice.New(notes, logger)
			svc = noteservice.InstrumentingMiddleware(requestCount, requestLatency)(svc)
		}

		noteEndpoints = noteendpoint.New(svc, logger)
	}

	r := mux.NewRouter()
	r.PathPrefix("/auth").Handler(
		http.StripPrefix("/auth", authtransport.NewHTTPHandler(authEndpoints, logger)),
	)
	r.PathPrefix("/notes").Handler(
		notetransport.NewHTTPHandler(noteEndpoints, tokenizer, logger),
	)
	r.PathPrefix("/").Handler(
		tasktransport.NewHTTPHandler(taskEndpoints, tokenizer, logger),
	)

	var g group.Group
	{
		httpListener, err := net.Listen("tcp", *httpAddr)
		if err != nil {
			logger.Log("transport", "HTTP", "during", "Listen", "err", err)
			os.Exit(1)
		}
		g.Add(func() error {
			logger.Log("transport", "HTTP", "addr", *httpAddr)
			return http.Serve(httpListener, r)
		}, func(error) {
			httpListener.Close()
		})
	}
	{
		// This function just sits and waits for ctrl-C.
		cancelInterrupt := make(chan struct{})
		g.Add(func() error {
			c := make(chan os.Signal, 1)
			signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
			select {
			case sig := <-c:
				return fmt.Errorf("received signal %s", sig)
			case <-cancelInterrupt:
				return nil
			}
		}, func(error) {
			close(cancelInterrupt)
		})
	}
	logger.Log("exit", g.Run())
}

func usageFor(fs *flag.FlagSet, short string) func() {
	return func() {
		fmt.Fprintf(os.Stderr, "USAGE\n")
		fmt.Fprintf(os.Stderr, "  %s\n", short)
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "FLAGS\n")
		w := tabwriter.NewWriter(os.Stderr, 0, 2, 2, ' ', 0)
		fs.VisitAll(func(f *flag.Flag) {
			fmt.Fprintf(w, "\t-%s %s\t%s\n", f.Name, f.DefValue, f.Usage)
		})
		w.Flush()
		fmt.Fprintf(os.Stderr, "\n")
	}
}

func getEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = fallback
	}
	return value
}
