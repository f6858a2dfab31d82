package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/noah-isme/beauty-booking-api/internal/models"
	"github.com/noah-isme/beauty-booking-api/pkg/config"
	"github.com/noah-isme/beauty-booking-api/pkg/timerange"
)

// ErrUnknownCity is returned when no coordinates are configured for a city.
var ErrUnknownCity = errors.New("unknown city")

const ramadanMonth = 9

// PrayerTimeClient talks to an Aladhan compatible prayer time API.
type PrayerTimeClient struct {
	baseURL string
	method  int
	cities  map[string]config.City
	client  *http.Client
}

// NewPrayerTimeClient builds a client using the configured base URL, method and cities.
func NewPrayerTimeClient(cfg config.PrayerConfig, client *http.Client) *PrayerTimeClient {
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 3 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	cities := make(map[string]config.City, len(cfg.Cities))
	for _, city := range cfg.Cities {
		cities[strings.ToLower(city.Name)] = city
	}
	return &PrayerTimeClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		method:  cfg.CalculationMethod,
		cities:  cities,
		client:  client,
	}
}

type aladhanEnvelope struct {
	Code   int             `json:"code"`
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

type aladhanTimings struct {
	Timings map[string]string `json:"timings"`
}

type aladhanCalendarDay struct {
	Gregorian struct {
		Date string `json:"date"`
	} `json:"gregorian"`
}

// Timings fetches the prayer schedule of a city on a date.
func (c *PrayerTimeClient) Timings(ctx context.Context, city string, date time.Time) (*models.PrayerTimes, error) {
	key := strings.ToLower(strings.TrimSpace(city))
	coords, ok := c.cities[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCity, city)
	}

	query := url.Values{}
	query.Set("latitude", fmt.Sprintf("%.4f", coords.Latitude))
	query.Set("longitude", fmt.Sprintf("%.4f", coords.Longitude))
	query.Set("method", fmt.Sprintf("%d", c.method))
	endpoint := fmt.Sprintf("%s/timings/%s?%s", c.baseURL, date.Format("02-01-2006"), query.Encode())

	var payload aladhanTimings
	if err := c.get(ctx, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("fetch prayer timings for %s: %w", key, err)
	}

	times := &models.PrayerTimes{City: key, Date: date.Format(timerange.DateLayout)}
	targets := map[string]*timerange.Clock{
		"Fajr":    &times.Fajr,
		"Dhuhr":   &times.Dhuhr,
		"Asr":     &times.Asr,
		"Maghrib": &times.Maghrib,
		"Isha":    &times.Isha,
	}
	for name, target := range targets {
		raw, ok := payload.Timings[name]
		if !ok {
			return nil, fmt.Errorf("prayer timings for %s missing %s", key, name)
		}
		parsed, err := timerange.ParseClock(stripZoneSuffix(raw))
		if err != nil {
			return nil, fmt.Errorf("parse %s time: %w", name, err)
		}
		*target = parsed
	}
	return times, nil
}

// RamadanRanges resolves every Ramadan whose Gregorian span touches the given year, oldest
// first. A Gregorian year can hold the tail of one Ramadan and the start of the next.
func (c *PrayerTimeClient) RamadanRanges(ctx context.Context, year int) ([]models.RamadanRange, error) {
	fetched := make(map[int]*models.RamadanRange)
	fetch := func(hijri int) (*models.RamadanRange, error) {
		if rng, ok := fetched[hijri]; ok {
			return rng, nil
		}
		rng, err := c.ramadanOfHijriYear(ctx, hijri)
		if err != nil {
			return nil, err
		}
		fetched[hijri] = rng
		return rng, nil
	}

	hijri := int(math.Floor(float64(year-622) * 1.030684))
	current, err := fetch(hijri)
	if err != nil {
		return nil, err
	}
	for current.Start.Year() >= year {
		prev, err := fetch(hijri - 1)
		if err != nil {
			return nil, err
		}
		if prev.End.Year() < year {
			break
		}
		hijri--
		current = prev
	}

	var ranges []models.RamadanRange
	for current.Start.Year() <= year {
		if current.End.Year() >= year {
			ranges = append(ranges, *current)
		}
		hijri++
		if current, err = fetch(hijri); err != nil {
			return nil, err
		}
	}
	if len(ranges) == 0 {
		return nil, fmt.Errorf("no ramadan overlaps %d", year)
	}
	return ranges, nil
}

func (c *PrayerTimeClient) ramadanOfHijriYear(ctx context.Context, hijriYear int) (*models.RamadanRange, error) {
	endpoint := fmt.Sprintf("%s/hToGCalendar/%d/%d", c.baseURL, ramadanMonth, hijriYear)
	var days []aladhanCalendarDay
	if err := c.get(ctx, endpoint, &days); err != nil {
		return nil, fmt.Errorf("fetch ramadan %d calendar: %w", hijriYear, err)
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("ramadan %d calendar is empty", hijriYear)
	}

	var start, end time.Time
	for _, day := range days {
		parsed, err := time.Parse("02-01-2006", day.Gregorian.Date)
		if err != nil {
			return nil, fmt.Errorf("parse ramadan date %q: %w", day.Gregorian.Date, err)
		}
		if start.IsZero() || parsed.Before(start) {
			start = parsed
		}
		if parsed.After(end) {
			end = parsed
		}
	}
	return &models.RamadanRange{Year: start.Year(), Start: start, End: end}, nil
}

func (c *PrayerTimeClient) get(ctx context.Context, endpoint string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var envelope aladhanEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if envelope.Code != http.StatusOK {
		return fmt.Errorf("upstream status %d %s", envelope.Code, envelope.Status)
	}
	if err := json.Unmarshal(envelope.Data, dest); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

// stripZoneSuffix turns "12:37 (+03)" into "12:37".
func stripZoneSuffix(raw string) string {
	raw = strings.TrimSpace(raw)
	if idx := strings.IndexByte(raw, ' '); idx > 0 {
		return raw[:idx]
	}
	return raw
}
