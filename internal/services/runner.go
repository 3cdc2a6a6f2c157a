package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"
	"github.com/pterm/pterm"

	"fitbitexport/clients/fitbit"
	"fitbitexport/internal/auth"
	"fitbitexport/internal/config"
	"fitbitexport/internal/export"
	"fitbitexport/internal/history"
	"fitbitexport/internal/ratelimit"
)

// resourceCount is the number of API requests made per exported day.
const resourceCount = 6

// metricFetcher is the slice of the Fitbit client the fetch loop needs.
type metricFetcher interface {
	Steps(date string) (fitbit.StepsResponse, error)
	Calories(date string) (fitbit.CaloriesResponse, error)
	HeartRate(date string) (fitbit.HeartResponse, error)
	IntradayHeartRate(date string) (fitbit.HeartResponse, error)
	Sleep(date string) (fitbit.SleepResponse, error)
	SpO2(date string) (fitbit.SpO2Response, error)
}

// Runner processes the configured accounts one after another: authorize,
// fetch, export, record.
type Runner struct {
	cfg     config.Config
	logger  *log.Logger
	tracker *ratelimit.Tracker
	hist    history.Service
}

func NewRunner(cfg config.Config, logger *log.Logger, tracker *ratelimit.Tracker, hist history.Service) *Runner {
	return &Runner{cfg: cfg, logger: logger, tracker: tracker, hist: hist}
}

// Run exports every account for the given range. A failing account does not
// stop the remaining ones; the error reports which accounts failed.
func (r *Runner) Run(ctx context.Context, dr DateRange) error {
	var failed []string
	for _, acct := range r.cfg.Accounts {
		r.logger.Info("starting export",
			"email", acct.Email,
			"start", dr.Start.Format(dateFmt),
			"end", dr.End.Format(dateFmt),
		)
		if err := r.runAccount(ctx, acct, dr); err != nil {
			r.logger.Error("export failed", "email", acct.Email, "err", err)
			failed = append(failed, acct.Email)
			continue
		}
		r.logger.Info("export complete", "email", acct.Email)
	}
	if len(failed) > 0 {
		return fmt.Errorf("export failed for: %s", strings.Join(failed, ", "))
	}
	return nil
}

func (r *Runner) runAccount(ctx context.Context, acct config.Account, dr DateRange) error {
	started := time.Now()

	sess, err := auth.NewAuthorizer(acct, r.cfg.Port, ".", r.logger).Authorize(ctx)
	if err != nil {
		return err
	}

	client := fitbit.NewClient(sess.Client, sess.UserID, r.tracker)
	devices, err := client.Devices()
	if err != nil {
		return fmt.Errorf("error listing devices: %w", err)
	}
	if len(devices) == 0 {
		return fmt.Errorf("no devices paired to %s", acct.Email)
	}
	device := devices[0]
	r.logger.Info("selected device", "device", device.DeviceVersion, "id", device.ID)

	if err := r.tracker.CheckBudget(resourceCount, dr.Days()); err != nil {
		return err
	}

	bar, _ := pterm.DefaultProgressbar.
		WithTotal(dr.Days() * resourceCount).
		WithTitle("Fetching " + acct.Email).
		Start()
	bundle, err := fetchBundle(client, acct.Email, sess.UserID, device.ID, dr, func() {
		bar.Increment()
	})
	_, _ = bar.Stop()
	if err != nil {
		return err
	}

	storage, err := export.NewStorage(r.cfg.DataDir, acct.Dir())
	if err != nil {
		return err
	}
	rows, err := WriteExport(storage, bundle)
	if err != nil {
		return err
	}
	r.logger.Info("export written", "dir", storage.Dir(), "rows", rows)

	run := history.Run{
		Email:       acct.Email,
		StartDate:   dr.Start.Format(dateFmt),
		EndDate:     dr.End.Format(dateFmt),
		Days:        dr.Days(),
		RowsWritten: rows,
		Seconds:     time.Since(started).Seconds(),
	}
	if err := r.hist.Record(run); err != nil {
		r.logger.Warn("could not record run history", "err", err)
	}

	r.printSummary(acct.Email, storage.Dir(), rows, time.Since(started))
	return nil
}

// fetchBundle walks the range day by day, one request per resource, calling
// progress after each request. The first error aborts the fetch.
func fetchBundle(f metricFetcher, email, userID, deviceID string, dr DateRange, progress func()) (*export.Bundle, error) {
	b := &export.Bundle{
		Email:     email,
		UserID:    userID,
		DeviceID:  deviceID,
		StartDate: dr.Start.Format(dateFmt),
		EndDate:   dr.End.Format(dateFmt),
	}

	for _, date := range dr.Dates() {
		steps, err := f.Steps(date)
		if err != nil {
			return nil, fmt.Errorf("steps for %s: %w", date, err)
		}
		b.Steps = append(b.Steps, steps)
		progress()

		heart, err := f.HeartRate(date)
		if err != nil {
			return nil, fmt.Errorf("heart rate for %s: %w", date, err)
		}
		b.Heart = append(b.Heart, heart)
		progress()

		calories, err := f.Calories(date)
		if err != nil {
			return nil, fmt.Errorf("calories for %s: %w", date, err)
		}
		b.Calories = append(b.Calories, calories)
		progress()

		sleep, err := f.Sleep(date)
		if err != nil {
			return nil, fmt.Errorf("sleep for %s: %w", date, err)
		}
		b.Sleep = append(b.Sleep, sleep)
		progress()

		spo2, err := f.SpO2(date)
		if err != nil {
			return nil, fmt.Errorf("spo2 for %s: %w", date, err)
		}
		b.SpO2 = append(b.SpO2, spo2)
		progress()

		rate, err := f.IntradayHeartRate(date)
		if err != nil {
			return nil, fmt.Errorf("intraday heart rate for %s: %w", date, err)
		}
		b.Rate = append(b.Rate, rate)
		progress()
	}
	return b, nil
}

// WriteExport serializes a bundle to all three formats and returns the total
// per-category CSV row count.
func WriteExport(storage *export.Storage, b *export.Bundle) (int, error) {
	if err := storage.WriteJSON(b); err != nil {
		return 0, err
	}
	if err := storage.WriteText(b); err != nil {
		return 0, err
	}

	tables := export.Tables(b)
	total := 0
	for _, t := range tables {
		n, err := storage.WriteCSV(t)
		if err != nil {
			return 0, err
		}
		total += n
	}

	complete, incomplete := export.Merge(tables)
	if _, err := storage.WriteCSV(complete); err != nil {
		return 0, err
	}
	if _, err := storage.WriteCSV(incomplete); err != nil {
		return 0, err
	}
	return total, nil
}

// Process re-extracts the CSV tables from a previously written bundle.
func (r *Runner) Process(dir string) error {
	bundle, err := export.ReadBundle(dir)
	if err != nil {
		return err
	}
	storage, err := export.OpenStorage(dir)
	if err != nil {
		return err
	}
	rows, err := WriteExport(storage, bundle)
	if err != nil {
		return err
	}
	r.logger.Info("data processed", "dir", dir, "rows", rows)
	return nil
}

func (r *Runner) printSummary(email, dir string, rows int, elapsed time.Duration) {
	snap := r.tracker.Snapshot()
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Rows(
			[]string{"Account", email},
			[]string{"Output", dir},
			[]string{"CSV rows", strconv.Itoa(rows)},
			[]string{"Elapsed", elapsed.Round(time.Second).String()},
			[]string{"Rate limit", fmt.Sprintf("%d/%d remaining, resets in %ds",
				snap.Remaining, snap.Limit, snap.Reset)},
		).
		Render()
	fmt.Println(t)
}
