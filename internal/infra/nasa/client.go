package nasa

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/yanqian/mars-recycler/internal/domain/marsdata"
	"github.com/yanqian/mars-recycler/pkg/metrics"
)

const (
	defaultBaseURL = "https://api.nasa.gov"
	defaultAPIKey  = "DEMO_KEY"
	defaultTimeout = 10 * time.Second
	errorBodyLimit = 4 << 10
)

// StatusError reports a non-success HTTP status from NASA.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// Is lets callers match any status failure against marsdata.ErrUpstreamStatus.
func (e *StatusError) Is(target error) bool {
	return target == marsdata.ErrUpstreamStatus
}

// Client talks to the NASA open APIs.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds an API client. Empty values fall back to the public defaults.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	base := strings.TrimSpace(baseURL)
	if base == "" {
		base = defaultBaseURL
	}
	key := strings.TrimSpace(apiKey)
	if key == "" {
		key = defaultAPIKey
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		apiKey:  key,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchWeather retrieves the InSight weather feed.
func (c *Client) FetchWeather(ctx context.Context) (marsdata.WeatherReport, error) {
	query := url.Values{}
	query.Set("api_key", c.apiKey)
	query.Set("feedtype", "json")
	query.Set("ver", "1.0")
	endpoint := c.baseURL + "/insight_weather/?" + query.Encode()

	body, err := c.get(ctx, "weather", endpoint)
	if err != nil {
		return marsdata.WeatherReport{}, err
	}
	report, err := decodeWeather(body)
	if err != nil {
		return marsdata.WeatherReport{}, fmt.Errorf("decode weather response: %w", err)
	}
	return report, nil
}

// FetchPhotos retrieves Curiosity photos taken on a given sol.
func (c *Client) FetchPhotos(ctx context.Context, sol int) ([]marsdata.RoverPhoto, error) {
	query := url.Values{}
	query.Set("sol", strconv.Itoa(sol))
	query.Set("api_key", c.apiKey)
	endpoint := fmt.Sprintf("%s/mars-photos/api/v1/rovers/%s/photos?%s", c.baseURL, marsdata.Rover, query.Encode())

	body, err := c.get(ctx, "photos", endpoint)
	if err != nil {
		return nil, err
	}
	photos, err := decodePhotos(body)
	if err != nil {
		return nil, fmt.Errorf("decode photos response: %w", err)
	}
	return photos, nil
}

func (c *Client) get(ctx context.Context, name, endpoint string) ([]byte, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", name, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstream(name, "error", time.Since(start))
		return nil, fmt.Errorf("%s request failed: %w", name, redact(err, c.apiKey))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		metrics.RecordUpstream(name, "status", time.Since(start))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(payload)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordUpstream(name, "error", time.Since(start))
		return nil, fmt.Errorf("read %s response: %w", name, err)
	}
	metrics.RecordUpstream(name, "success", time.Since(start))
	return body, nil
}

// redact keeps the API key out of error text that ends up in responses and logs.
func redact(err error, apiKey string) error {
	if apiKey == "" || apiKey == defaultAPIKey {
		return err
	}
	msg := err.Error()
	if !strings.Contains(msg, apiKey) {
		return err
	}
	return errors.New(strings.ReplaceAll(msg, apiKey, "REDACTED"))
}

type solWire struct {
	FirstUTC *string      `json:"First_UTC"`
	AT       *measurement `json:"AT"`
	HWS      *measurement `json:"HWS"`
	PRE      *measurement `json:"PRE"`
}

type measurement struct {
	Av *float64 `json:"av"`
}

func (m *measurement) average() *float64 {
	if m == nil {
		return nil
	}
	return m.Av
}

func decodeWeather(body []byte) (marsdata.WeatherReport, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return marsdata.WeatherReport{}, err
	}

	keys := solKeys(raw["sol_keys"])
	report := marsdata.WeatherReport{
		SolKeys: keys,
		Sols:    make(map[string]marsdata.SolWeather, len(keys)),
	}
	for _, key := range keys {
		payload, ok := raw[key]
		if !ok {
			continue
		}
		var sol solWire
		if err := json.Unmarshal(payload, &sol); err != nil {
			// a sol that is not an object projects to all-null fields
			continue
		}
		report.Sols[key] = marsdata.SolWeather{
			FirstUTC:    sol.FirstUTC,
			AirTemp:     sol.AT.average(),
			WindSpeed:   sol.HWS.average(),
			AirPressure: sol.PRE.average(),
		}
	}
	return report, nil
}

// solKeys reads sol_keys leniently: anything that is not a list counts as empty.
func solKeys(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	keys := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			keys = append(keys, s)
			continue
		}
		var n float64
		if err := json.Unmarshal(item, &n); err == nil {
			keys = append(keys, strconv.FormatFloat(n, 'f', -1, 64))
		}
	}
	return keys
}

type photoWire struct {
	ID     int64  `json:"id"`
	ImgSrc string `json:"img_src"`
}

func decodePhotos(body []byte) ([]marsdata.RoverPhoto, error) {
	var raw struct {
		Photos json.RawMessage `json:"photos"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	list := bytes.TrimSpace(raw.Photos)
	if len(list) == 0 || list[0] != '[' {
		return nil, nil
	}
	var wire []photoWire
	if err := json.Unmarshal(list, &wire); err != nil {
		return nil, err
	}
	photos := make([]marsdata.RoverPhoto, 0, len(wire))
	for _, p := range wire {
		photos = append(photos, marsdata.RoverPhoto{ID: p.ID, ImgSrc: p.ImgSrc})
	}
	return photos, nil
}
