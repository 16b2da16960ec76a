package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"HypeChart/internal/align"
	"HypeChart/internal/model"
)

// DefaultTrendsURL is the Google Trends host.
const DefaultTrendsURL = "https://trends.google.com/trends"

// PartialColumn flags rows whose interval was still in progress.
const PartialColumn = "isPartial"

// GoogleTrendsFetcher implements TrendsFetcher using the explore and
// multiline widget endpoints of Google Trends.
type GoogleTrendsFetcher struct {
	BaseURL string
	HL      string
	TZ      int
	Client  *http.Client

	once   sync.Once
	cookie *http.Cookie
}

// NewGoogleTrendsFetcher creates a new fetcher with optional proxy support.
func NewGoogleTrendsFetcher(baseURL, hl string, tz int, proxyURL string, timeout time.Duration) *GoogleTrendsFetcher {
	if baseURL == "" {
		baseURL = DefaultTrendsURL
	}
	if hl == "" {
		hl = "en-US"
	}
	return &GoogleTrendsFetcher{
		BaseURL: baseURL,
		HL:      hl,
		TZ:      tz,
		Client:  NewHTTPClient(proxyURL, timeout),
	}
}

func (f *GoogleTrendsFetcher) Name() string { return "google-trends" }

type comparisonItem struct {
	Keyword string `json:"keyword"`
	Time    string `json:"time"`
	Geo     string `json:"geo"`
}

type exploreRequest struct {
	ComparisonItem []comparisonItem `json:"comparisonItem"`
	Category       int              `json:"category"`
	Property       string           `json:"property"`
}

type exploreResponse struct {
	Widgets []struct {
		ID      string          `json:"id"`
		Token   string          `json:"token"`
		Request json.RawMessage `json:"request"`
	} `json:"widgets"`
}

type multilineResponse struct {
	Default struct {
		TimelineData []struct {
			Time      string `json:"time"`
			Value     []int  `json:"value"`
			IsPartial bool   `json:"isPartial"`
		} `json:"timelineData"`
	} `json:"default"`
}

// FetchInterest returns daily interest for the keywords over timeframe.
// Each call is normalized independently by the upstream service.
func (f *GoogleTrendsFetcher) FetchInterest(ctx context.Context, keywords []string, timeframe align.Window, geo string) (*model.Table, error) {
	if len(keywords) == 0 {
		return nil, fmt.Errorf("trends: no keywords")
	}
	f.once.Do(func() { f.cookie = f.fetchCookie(ctx, geo) })

	tf := timeframe.Start.Format("2006-01-02") + " " + timeframe.End.Format("2006-01-02")
	req := exploreRequest{}
	for _, kw := range keywords {
		req.ComparisonItem = append(req.ComparisonItem, comparisonItem{Keyword: kw, Time: tf, Geo: geo})
	}
	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal explore request: %w", err)
	}

	var explore exploreResponse
	if err := f.getJSON(ctx, "/api/explore", url.Values{"req": {string(reqJSON)}}, &explore); err != nil {
		return nil, fmt.Errorf("trends explore: %w", err)
	}

	var token string
	var widgetReq json.RawMessage
	for _, w := range explore.Widgets {
		if w.ID == "TIMESERIES" {
			token, widgetReq = w.Token, w.Request
			break
		}
	}
	if token == "" {
		return nil, fmt.Errorf("trends explore: no TIMESERIES widget: %w", ErrEmptyResult)
	}

	var ml multilineResponse
	params := url.Values{"req": {string(widgetReq)}, "token": {token}}
	if err := f.getJSON(ctx, "/api/widgetdata/multiline", params, &ml); err != nil {
		return nil, fmt.Errorf("trends multiline: %w", err)
	}

	t := model.NewTable("date", append(append([]string{}, keywords...), PartialColumn)...)
	for _, td := range ml.Default.TimelineData {
		sec, err := strconv.ParseInt(td.Time, 10, 64)
		if err != nil {
			continue
		}
		values := make([]float64, len(keywords)+1)
		for i := range keywords {
			if i < len(td.Value) {
				values[i] = float64(td.Value[i])
			}
		}
		if td.IsPartial {
			values[len(keywords)] = 1
		}
		t.Append(align.Naive(time.Unix(sec, 0)), values...)
	}
	t.SortByDate()
	return t, nil
}

// fetchCookie obtains the NID cookie the API expects. Failure is not fatal.
func (f *GoogleTrendsFetcher) fetchCookie(ctx context.Context, geo string) *http.Cookie {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+"/explore/?geo="+url.QueryEscape(geo), nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	for _, c := range resp.Cookies() {
		if c.Name == "NID" {
			return c
		}
	}
	return nil
}

func (f *GoogleTrendsFetcher) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	params.Set("hl", f.HL)
	params.Set("tz", strconv.Itoa(f.TZ))
	var cookies []*http.Cookie
	if f.cookie != nil {
		cookies = append(cookies, f.cookie)
	}
	status, body, err := getBody(ctx, f.Client, f.BaseURL+path+"?"+params.Encode(), cookies...)
	if err != nil {
		return err
	}
	if status == http.StatusTooManyRequests {
		return fmt.Errorf("rate limited (status %d)", status)
	}
	if status != http.StatusOK {
		return fmt.Errorf("status %d", status)
	}
	// Responses carry an anti-JSON-hijacking prefix such as )]}'
	i := bytes.IndexByte(body, '{')
	if i < 0 {
		return fmt.Errorf("decode: no JSON object in response")
	}
	if err := json.Unmarshal(body[i:], out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// SplitRange cuts w into consecutive windows of at most maxDays days each.
func SplitRange(w align.Window, maxDays int) []align.Window {
	if maxDays <= 0 || w.IsEmpty() {
		return []align.Window{w}
	}
	var out []align.Window
	for start := align.TruncateDay(w.Start); !start.After(w.End); {
		end := start.AddDate(0, 0, maxDays-1)
		if end.After(w.End) {
			end = w.End
		}
		out = append(out, align.Window{Start: start, End: end})
		start = end.AddDate(0, 0, 1)
	}
	return out
}
