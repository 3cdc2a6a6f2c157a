package fitbit

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitbitexport/internal/ratelimit"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *ratelimit.Tracker) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	tracker := ratelimit.NewTracker()
	c := NewClient(srv.Client(), "ABC123", tracker)
	c.baseURL = srv.URL
	return c, tracker
}

func TestSteps(t *testing.T) {
	var gotPath, gotLang string
	c, tracker := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotLang = r.Header.Get("Accept-Language")
		w.Header().Set("Fitbit-Rate-Limit-Remaining", "149")
		fmt.Fprint(w, `{"activities-steps":[{"dateTime":"2024-06-01","value":"8421"}]}`)
	}))

	resp, err := c.Steps("2024-06-01")
	require.NoError(t, err)

	assert.Equal(t, "/1/user/ABC123/activities/steps/date/2024-06-01/1d.json", gotPath)
	assert.Equal(t, "en_US", gotLang)
	require.Len(t, resp.ActivitiesSteps, 1)
	assert.Equal(t, "8421", resp.ActivitiesSteps[0].Value)
	assert.Equal(t, 149, tracker.Snapshot().Remaining)
}

func TestSleep(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/1.2/user/ABC123/sleep/date/2024-06-01.json", r.URL.Path)
		fmt.Fprint(w, `{
			"sleep":[{
				"logId":101,"dateOfSleep":"2024-06-01","isMainSleep":true,
				"minutesAsleep":420,"levels":{"summary":{"deep":{"minutes":80,"count":4}}}
			}],
			"summary":{"totalMinutesAsleep":420}
		}`)
	}))

	resp, err := c.Sleep("2024-06-01")
	require.NoError(t, err)
	require.Len(t, resp.Sleep, 1)
	assert.Equal(t, int64(101), resp.Sleep[0].LogID)
	assert.True(t, resp.Sleep[0].IsMainSleep)
	assert.Equal(t, 80, resp.Sleep[0].Levels.Summary["deep"].Minutes)
}

func TestIntradayHeartRate(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/1/user/ABC123/activities/heart/date/2024-06-01/1d/1sec.json", r.URL.Path)
		fmt.Fprint(w, `{
			"activities-heart":[{"dateTime":"2024-06-01","value":{"restingHeartRate":61}}],
			"activities-heart-intraday":{"dataset":[{"time":"08:00:00","value":65}],"datasetInterval":1,"datasetType":"second"}
		}`)
	}))

	resp, err := c.IntradayHeartRate("2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, 61, resp.ActivitiesHeart[0].Value.RestingHeartRate)
	require.NotNil(t, resp.Intraday)
	assert.Equal(t, 65, resp.Intraday.Dataset[0].Value)
}

func TestAPIErrorEnvelope(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"errors":[{"errorType":"expired_token","message":"Access token expired"}]}`)
	}))

	_, err := c.Steps("2024-06-01")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "Access token expired")
}

func TestAPIErrorRateLimited(t *testing.T) {
	c, tracker := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Fitbit-Rate-Limit-Remaining", "0")
		w.Header().Set("Fitbit-Rate-Limit-Reset", "522")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"errors":[{"errorType":"rate_limit","message":"Too Many Requests"}]}`)
	}))

	_, err := c.SpO2("2024-06-01")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, 522, apiErr.ResetSeconds)
	assert.Contains(t, apiErr.Error(), "522 seconds")
	assert.Equal(t, 0, tracker.Snapshot().Remaining)
}

func TestDevices(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/1/user/ABC123/devices.json", r.URL.Path)
		fmt.Fprint(w, `[{"id":"DEV1","deviceVersion":"Charge 5"},{"id":"DEV2","deviceVersion":"Aria"}]`)
	}))

	devices, err := c.Devices()
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, "DEV1", devices[0].ID)
	assert.Equal(t, "Charge 5", devices[0].DeviceVersion)
}

func TestSleepLogListQuery(t *testing.T) {
	var gotQuery string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, `{"sleep":[],"pagination":{"next":""}}`)
	}))

	_, err := c.SleepLogList(SleepLogListOptions{
		AfterDate: "2024-06-01",
		Sort:      "asc",
		Limit:     10,
	})
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "afterDate=2024-06-01")
	assert.Contains(t, gotQuery, "sort=asc")
	assert.Contains(t, gotQuery, "limit=10")
	assert.Contains(t, gotQuery, "offset=0")
}
