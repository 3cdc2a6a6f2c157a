package fitbit

// TimeSeriesEntry is one day of an activities time series. Values come back
// as strings from the API.
type TimeSeriesEntry struct {
	DateTime string `json:"dateTime"`
	Value    string `json:"value"`
}

type StepsResponse struct {
	ActivitiesSteps []TimeSeriesEntry `json:"activities-steps"`
}

type CaloriesResponse struct {
	ActivitiesCalories []TimeSeriesEntry `json:"activities-calories"`
}

type HeartResponse struct {
	ActivitiesHeart []HeartDay      `json:"activities-heart"`
	Intraday        *IntradaySeries `json:"activities-heart-intraday,omitempty"`
}

type HeartDay struct {
	DateTime string     `json:"dateTime"`
	Value    HeartValue `json:"value"`
}

type HeartValue struct {
	RestingHeartRate int             `json:"restingHeartRate,omitempty"`
	HeartRateZones   []HeartRateZone `json:"heartRateZones"`
}

type HeartRateZone struct {
	Name        string  `json:"name"`
	Min         int     `json:"min"`
	Max         int     `json:"max"`
	Minutes     int     `json:"minutes"`
	CaloriesOut float64 `json:"caloriesOut"`
}

// IntradaySeries holds the 1-second heart rate dataset for one day.
type IntradaySeries struct {
	Dataset         []IntradayPoint `json:"dataset"`
	DatasetInterval int             `json:"datasetInterval"`
	DatasetType     string          `json:"datasetType"`
}

type IntradayPoint struct {
	Time  string `json:"time"`
	Value int    `json:"value"`
}

type SleepResponse struct {
	Sleep   []SleepEntry `json:"sleep"`
	Summary SleepSummary `json:"summary"`
}

type SleepEntry struct {
	LogID         int64       `json:"logId"`
	DateOfSleep   string      `json:"dateOfSleep"`
	StartTime     string      `json:"startTime"`
	EndTime       string      `json:"endTime"`
	Duration      int64       `json:"duration"`
	Efficiency    int         `json:"efficiency"`
	MinutesAsleep int         `json:"minutesAsleep"`
	MinutesAwake  int         `json:"minutesAwake"`
	TimeInBed     int         `json:"timeInBed"`
	IsMainSleep   bool        `json:"isMainSleep"`
	Type          string      `json:"type"`
	Levels        SleepLevels `json:"levels"`
}

// SleepLevels summary is keyed by stage name: deep, light, rem, wake for
// "stages" type logs, or asleep, awake, restless for "classic" ones.
type SleepLevels struct {
	Summary map[string]SleepStage `json:"summary"`
}

type SleepStage struct {
	Minutes             int `json:"minutes"`
	Count               int `json:"count"`
	ThirtyDayAvgMinutes int `json:"thirtyDayAvgMinutes"`
}

type SleepSummary struct {
	TotalMinutesAsleep int `json:"totalMinutesAsleep"`
	TotalSleepRecords  int `json:"totalSleepRecords"`
	TotalTimeInBed     int `json:"totalTimeInBed"`
}

type SleepLogListResponse struct {
	Sleep      []SleepEntry `json:"sleep"`
	Pagination struct {
		Next string `json:"next"`
	} `json:"pagination"`
}

type SpO2Response struct {
	DateTime string    `json:"dateTime"`
	Value    SpO2Value `json:"value"`
}

type SpO2Value struct {
	Avg float64 `json:"avg"`
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type Device struct {
	ID            string `json:"id"`
	DeviceVersion string `json:"deviceVersion"`
	Type          string `json:"type"`
	Battery       string `json:"battery"`
	LastSyncTime  string `json:"lastSyncTime"`
}

type ProfileResponse struct {
	User Profile `json:"user"`
}

type Profile struct {
	EncodedID   string `json:"encodedId"`
	DisplayName string `json:"displayName"`
	FullName    string `json:"fullName"`
	MemberSince string `json:"memberSince"`
	Timezone    string `json:"timezone"`
}

type errorsEnvelope struct {
	Errors []struct {
		ErrorType string `json:"errorType"`
		Message   string `json:"message"`
	} `json:"errors"`
}
