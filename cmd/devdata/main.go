// Command devdata fills the backend with synthetic appointments for test
// users.  It talks to the backend directly and needs no database.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/bqomis-portal/internal/backend"
	"github.com/iliyamo/bqomis-portal/internal/config"
	"github.com/iliyamo/bqomis-portal/internal/devdata"
	"github.com/iliyamo/bqomis-portal/pkg/logging"
)

func main() {
	os.Exit(run())
}

// run returns the exit code: 2 for a bad configuration, 1 when the run
// fails and 3 when the backend rejected some records.
func run() int {
	envErr := godotenv.Load()

	def := devdata.DefaultConfig()
	var (
		cfg      devdata.Config
		token    string
		logLevel string
		timeout  time.Duration
	)
	flag.IntVar(&cfg.TotalAppointments, "total", def.TotalAppointments, "number of appointments to generate")
	flag.BoolVar(&cfg.SkewServicePopularity, "skew", def.SkewServicePopularity, "favour Kigali branches")
	flag.IntVar(&cfg.PercentPast, "past", def.PercentPast, "percent of appointments in the past")
	flag.IntVar(&cfg.PercentToday, "today", def.PercentToday, "percent of appointments today")
	flag.IntVar(&cfg.PercentFuture, "future", def.PercentFuture, "percent of appointments in the future")
	flag.IntVar(&cfg.MaxPastDays, "max-past-days", def.MaxPastDays, "furthest day back for past appointments")
	flag.IntVar(&cfg.MaxFutureDays, "max-future-days", def.MaxFutureDays, "furthest day ahead for future appointments")
	flag.StringVar(&token, "token", os.Getenv("BACKEND_TOKEN"), "bearer token for the backend (default $BACKEND_TOKEN)")
	flag.StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	flag.DurationVar(&timeout, "timeout", 2*time.Minute, "overall run timeout")
	flag.Parse()

	logger := logging.New(logLevel)
	if envErr != nil {
		logger.Debug("no .env file loaded", "error", envErr)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "devdata:", err)
		return 2
	}

	baseURL, backendTimeout := config.LoadBackend()
	api := backend.NewClient(baseURL, backend.WithTimeout(backendTimeout), backend.WithLogger(logger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(backend.WithToken(ctx, token), timeout)
	defer cancel()

	rep, err := devdata.NewRunner(api, logger, nil).Run(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "devdata:", err)
		return 1
	}

	out := json.NewEncoder(os.Stdout)
	out.SetIndent("", "  ")
	_ = out.Encode(struct {
		*devdata.Report
		Mismatches []devdata.Mismatch `json:"mismatches"`
	}{rep, rep.Mismatches()})

	if rep.Result != nil && rep.Result.FailedCount > 0 {
		return 3
	}
	return 0
}
