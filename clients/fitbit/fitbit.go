package fitbit

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/go-querystring/query"

	"fitbitexport/internal/ratelimit"
)

const defaultBaseURL = "https://api.fitbit.com"

// Client issues authenticated requests against the Fitbit Web API for a
// single user. The http.Client is expected to carry an OAuth2 token source.
type Client struct {
	client  *http.Client
	userID  string
	baseURL string
	tracker *ratelimit.Tracker
}

// APIError is a non-200 response from the Fitbit API. ResetSeconds is set on
// 429 responses from the Fitbit-Rate-Limit-Reset header.
type APIError struct {
	StatusCode   int
	Message      string
	ResetSeconds int
}

func (e *APIError) Error() string {
	if e.StatusCode == http.StatusTooManyRequests {
		return fmt.Sprintf("fitbit: rate limited (429), try again in %d seconds: %s", e.ResetSeconds, e.Message)
	}
	return fmt.Sprintf("fitbit: %d %s", e.StatusCode, e.Message)
}

func NewClient(httpClient *http.Client, userID string, tracker *ratelimit.Tracker) *Client {
	return &Client{
		client:  httpClient,
		userID:  userID,
		baseURL: defaultBaseURL,
		tracker: tracker,
	}
}

func (c *Client) newRequest(method, path string) (*http.Request, error) {
	req, err := http.NewRequest(method, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Add("Accept-Language", "en_US")
	return req, nil
}

func (c *Client) get(path string, out any) error {
	req, err := c.newRequest(http.MethodGet, path)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("error making request to fitbit: %w", err)
	}
	defer resp.Body.Close()

	c.tracker.UpdateFromHeaders(resp.Header)

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding fitbit response: %w", err)
	}
	return nil
}

func apiError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var envelope errorsEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Errors) > 0 {
		msgs := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			msgs = append(msgs, e.Message)
		}
		apiErr.Message = strings.Join(msgs, ", ")
	} else {
		apiErr.Message = string(body)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		apiErr.ResetSeconds, _ = strconv.Atoi(resp.Header.Get("Fitbit-Rate-Limit-Reset"))
	}
	return apiErr
}

// Steps returns the daily step total for one date (YYYY-MM-DD).
func (c *Client) Steps(date string) (StepsResponse, error) {
	var out StepsResponse
	err := c.get(fmt.Sprintf("/1/user/%s/activities/steps/date/%s/1d.json", c.userID, date), &out)
	return out, err
}

// Calories returns the daily calories-out total for one date.
func (c *Client) Calories(date string) (CaloriesResponse, error) {
	var out CaloriesResponse
	err := c.get(fmt.Sprintf("/1/user/%s/activities/calories/date/%s/1d.json", c.userID, date), &out)
	return out, err
}

// HeartRate returns the daily heart rate zone summary for one date.
func (c *Client) HeartRate(date string) (HeartResponse, error) {
	var out HeartResponse
	err := c.get(fmt.Sprintf("/1/user/%s/activities/heart/date/%s/1d.json", c.userID, date), &out)
	return out, err
}

// IntradayHeartRate returns the 1-second heart rate series for one date,
// including the resting heart rate for the day.
func (c *Client) IntradayHeartRate(date string) (HeartResponse, error) {
	var out HeartResponse
	err := c.get(fmt.Sprintf("/1/user/%s/activities/heart/date/%s/1d/1sec.json", c.userID, date), &out)
	return out, err
}

// Sleep returns the sleep logs for one date.
func (c *Client) Sleep(date string) (SleepResponse, error) {
	var out SleepResponse
	err := c.get(fmt.Sprintf("/1.2/user/%s/sleep/date/%s.json", c.userID, date), &out)
	return out, err
}

// SpO2 returns the blood oxygen saturation summary for one date.
func (c *Client) SpO2(date string) (SpO2Response, error) {
	var out SpO2Response
	err := c.get(fmt.Sprintf("/1/user/%s/spo2/date/%s.json", c.userID, date), &out)
	return out, err
}

// Devices lists the trackers paired to the account.
func (c *Client) Devices() ([]Device, error) {
	var out []Device
	err := c.get(fmt.Sprintf("/1/user/%s/devices.json", c.userID), &out)
	return out, err
}

// Profile returns the account profile.
func (c *Client) Profile() (ProfileResponse, error) {
	var out ProfileResponse
	err := c.get(fmt.Sprintf("/1/user/%s/profile.json", c.userID), &out)
	return out, err
}

// SleepLogListOptions filter the sleep log list endpoint. Exactly one of
// AfterDate and BeforeDate must be set.
type SleepLogListOptions struct {
	AfterDate  string `url:"afterDate,omitempty"`
	BeforeDate string `url:"beforeDate,omitempty"`
	Sort       string `url:"sort,omitempty"`
	Limit      int    `url:"limit,omitempty"`
	Offset     int    `url:"offset"`
}

// SleepLogList returns sleep logs around a date, newest or oldest first.
func (c *Client) SleepLogList(opts SleepLogListOptions) (SleepLogListResponse, error) {
	var out SleepLogListResponse
	v, err := query.Values(opts)
	if err != nil {
		return out, fmt.Errorf("unable to encode sleep list options: %w", err)
	}
	path := fmt.Sprintf("/1.2/user/%s/sleep/list.json?%s", c.userID, v.Encode())
	err = c.get(path, &out)
	return out, err
}
