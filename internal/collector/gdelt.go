package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"HypeChart/internal/align"
	"HypeChart/internal/model"
)

// DefaultGDELTURL is the GDELT DOC 2.0 API endpoint.
const DefaultGDELTURL = "https://api.gdeltproject.org/api/v2/doc/doc"

// GDELTFetcher implements NewsFetcher using the GDELT DOC 2.0 timeline API.
type GDELTFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewGDELTFetcher creates a new fetcher with optional proxy support.
func NewGDELTFetcher(baseURL, proxyURL string, timeout time.Duration) *GDELTFetcher {
	if baseURL == "" {
		baseURL = DefaultGDELTURL
	}
	return &GDELTFetcher{
		BaseURL: baseURL,
		Client:  NewHTTPClient(proxyURL, timeout),
	}
}

func (f *GDELTFetcher) Name() string { return "gdelt" }

// gdeltRecord is one entry of a TimelineVolRaw series.
type gdeltRecord struct {
	Date  *string `json:"date"`
	Value float64 `json:"value"`
	Norm  float64 `json:"norm"`
}

// gdeltTimeline is the expected JSON shape from the timeline modes.
type gdeltTimeline struct {
	Timeline []struct {
		Series string        `json:"series"`
		Data   []gdeltRecord `json:"data"`
	} `json:"timeline"`
}

// FetchVolume returns the raw article-count timeline for keyword. Zero start
// or end leaves the range to the API default.
func (f *GDELTFetcher) FetchVolume(ctx context.Context, keyword string, start, end time.Time) ([]model.VolumePoint, error) {
	q := url.Values{}
	q.Set("query", keyword)
	q.Set("mode", "TimelineVolRaw")
	q.Set("format", "json")
	if !start.IsZero() {
		q.Set("startdatetime", start.UTC().Format("20060102150405"))
	}
	if !end.IsZero() {
		q.Set("enddatetime", end.UTC().Format("20060102150405"))
	}
	endpoint := f.BaseURL + "?" + q.Encode()

	status, body, err := getBody(ctx, f.Client, endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch timeline: %w", err)
	}
	if status != http.StatusOK || !bytes.HasPrefix(bytes.TrimSpace(body), []byte("{")) {
		return nil, fmt.Errorf("%w for %s: status %d", ErrInvalidResponse, keyword, status)
	}

	var tl gdeltTimeline
	if err := json.Unmarshal(body, &tl); err != nil {
		return nil, fmt.Errorf("%w for %s: %v", ErrMalformedJSON, keyword, err)
	}
	if len(tl.Timeline) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoTimeline, keyword)
	}
	data := tl.Timeline[0].Data
	if len(data) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoData, keyword)
	}

	points := make([]model.VolumePoint, 0, len(data))
	dated := false
	for _, d := range data {
		if d.Date == nil {
			continue
		}
		dated = true
		t, err := align.ParseDate(*d.Date)
		if err != nil {
			continue
		}
		points = append(points, model.VolumePoint{Date: t, Value: d.Value, Norm: d.Norm})
	}
	if !dated {
		return nil, fmt.Errorf("%w for %s", ErrMissingDate, keyword)
	}

	// Ensure chronological order
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points, nil
}
