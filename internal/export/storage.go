package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const (
	jsonFilename = "fitbit_data.json"
	textFilename = "fitbit_data.txt"
	csvDirname   = "csvs"
)

// Storage writes one account's export under <baseDir>/<accountDir>/ with the
// CSV tables in a csvs/ subdirectory.
type Storage struct {
	dir string
}

func NewStorage(baseDir, accountDir string) (*Storage, error) {
	dir := filepath.Join(baseDir, accountDir)
	if err := os.MkdirAll(filepath.Join(dir, csvDirname), 0o755); err != nil {
		return nil, fmt.Errorf("error creating data directory %s: %w", dir, err)
	}
	return &Storage{dir: dir}, nil
}

// OpenStorage reuses an existing export directory, for reprocessing.
func OpenStorage(dir string) (*Storage, error) {
	if err := os.MkdirAll(filepath.Join(dir, csvDirname), 0o755); err != nil {
		return nil, fmt.Errorf("error opening data directory %s: %w", dir, err)
	}
	return &Storage{dir: dir}, nil
}

func (s *Storage) Dir() string { return s.dir }

// WriteJSON writes the consolidated bundle.
func (s *Storage) WriteJSON(b *Bundle) error {
	path := filepath.Join(s.dir, jsonFilename)
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", path, err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "    ")
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("error encoding bundle: %w", err)
	}
	return nil
}

// WriteText writes the flattened per-day report.
func (s *Storage) WriteText(b *Bundle) error {
	path := filepath.Join(s.dir, textFilename)
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", path, err)
	}
	defer file.Close()

	fmt.Fprintf(file, "email: %s\n", b.Email)
	fmt.Fprintf(file, "user_id: %s\n", b.UserID)
	fmt.Fprintf(file, "device_id: %s\n", b.DeviceID)
	fmt.Fprintf(file, "date_range: %s to %s\n", b.StartDate, b.EndDate)
	fmt.Fprintf(file, "days: %d\n\n", b.Days())

	for _, day := range DailySummaries(b) {
		fmt.Fprintf(file,
			"%s  steps: %d  calories: %d  resting_heart_rate: %s  minutes_asleep: %d  spo2_avg: %s\n",
			day.Date, day.Steps, day.Calories,
			orNA(day.RestingHeartRate), day.MinutesAsleep, orNA(day.SpO2Avg),
		)
	}
	return nil
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// WriteCSV writes one table under csvs/ and returns the data row count.
func (s *Storage) WriteCSV(t Table) (int, error) {
	path := filepath.Join(s.dir, csvDirname, t.Name+".csv")
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("error creating %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(t.Header); err != nil {
		return 0, fmt.Errorf("error writing %s header: %w", t.Name, err)
	}
	for _, row := range t.Rows {
		if err := w.Write(row); err != nil {
			return 0, fmt.Errorf("error writing %s row: %w", t.Name, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, fmt.Errorf("error flushing %s: %w", t.Name, err)
	}
	return len(t.Rows), nil
}

// ReadBundle loads a previously exported bundle for reprocessing.
func ReadBundle(dir string) (*Bundle, error) {
	path := filepath.Join(dir, jsonFilename)
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening %s: %w", path, err)
	}
	defer file.Close()

	var b Bundle
	if err := json.NewDecoder(file).Decode(&b); err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", path, err)
	}
	if b.DeviceID == "" {
		return nil, fmt.Errorf("%s is missing a device id", path)
	}
	return &b, nil
}

// DailySummary is one flattened day for the text report.
type DailySummary struct {
	Date             string
	Steps            int
	Calories         int
	RestingHeartRate string
	MinutesAsleep    int
	SpO2Avg          string
}

// DailySummaries flattens a bundle into per-day headline metrics, in the
// order the days were fetched.
func DailySummaries(b *Bundle) []DailySummary {
	byDate := make(map[string]*DailySummary)
	var order []string

	day := func(date string) *DailySummary {
		if d, ok := byDate[date]; ok {
			return d
		}
		d := &DailySummary{Date: date}
		byDate[date] = d
		order = append(order, date)
		return d
	}

	for _, resp := range b.Steps {
		for _, entry := range resp.ActivitiesSteps {
			day(entry.DateTime).Steps, _ = strconv.Atoi(entry.Value)
		}
	}
	for _, resp := range b.Calories {
		for _, entry := range resp.ActivitiesCalories {
			day(entry.DateTime).Calories, _ = strconv.Atoi(entry.Value)
		}
	}
	for _, resp := range b.Rate {
		for _, hd := range resp.ActivitiesHeart {
			if hd.Value.RestingHeartRate != 0 {
				day(hd.DateTime).RestingHeartRate = strconv.Itoa(hd.Value.RestingHeartRate)
			}
		}
	}
	for _, resp := range b.Sleep {
		for _, entry := range resp.Sleep {
			if entry.IsMainSleep {
				day(entry.DateOfSleep).MinutesAsleep = entry.MinutesAsleep
			}
		}
	}
	for _, resp := range b.SpO2 {
		if resp.DateTime != "" {
			day(resp.DateTime).SpO2Avg = formatFloat(resp.Value.Avg)
		}
	}

	out := make([]DailySummary, 0, len(order))
	for _, date := range order {
		out = append(out, *byDate[date])
	}
	return out
}
