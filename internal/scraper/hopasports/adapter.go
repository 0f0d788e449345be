// Package hopasports implements the API-embedded-in-HTML organiser
// strategy: the event page carries a quoted component attribute whose
// payload is a JSON array of race descriptors, each fetched separately.
package hopasports

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/raceops/resultsync/internal/checkpoint"
	"github.com/raceops/resultsync/internal/fetch"
	"github.com/raceops/resultsync/internal/scraper"
	"github.com/raceops/resultsync/internal/validator"
)

// descriptorAttr matches the quoted component attribute embedding the
// race descriptor call, e.g. data-races="[{&quot;race_id&quot;:...}]".
var descriptorAttr = regexp.MustCompile(`data-races=(?:"|&quot;)(\[.*?\])(?:"|&quot;)`)

var baseURLAttr = regexp.MustCompile(`data-api-base=(?:"|&quot;)([^"&]+)(?:"|&quot;)`)

// Descriptor is one race entry embedded in the host page.
type Descriptor struct {
	RaceID string `json:"race_id"`
	PT     string `json:"pt"`
	Title  string `json:"title"`
}

// fieldAliases maps a logical result field to the ordered list of source
// keys a payload might use for it. The first key present wins.
var fieldAliases = map[string][]string{
	"position":          {"pos", "position", "overall_pos", "place"},
	"bib":               {"bib", "bib_number", "number"},
	"name":              {"name", "full_name", "athlete_name", "display_name"},
	"gender":            {"sex", "gender"},
	"category":          {"category", "cat", "age_group"},
	"finish":            {"finish", "finish_time", "net_time", "total_time"},
	"gun":               {"gun", "gun_time"},
	"chip":              {"chip", "chip_time"},
	"pace":              {"pace", "avg_pace"},
	"gender_position":   {"gender_pos", "gender_place", "sex_pos"},
	"category_position": {"cat_pos", "category_place", "ag_pos"},
	"country":           {"country", "nat", "nationality"},
	"club":              {"club", "team"},
	"age":               {"age"},
	"status":            {"status", "result_status"},
	"time_behind":       {"behind", "time_behind", "gap"},
}

// Adapter is the HopasportsLike scraper.
type Adapter struct {
	client *fetch.Client
	logger *logrus.Logger
}

// New builds a Hopasports-strategy scraper.
func New(client *fetch.Client, logger *logrus.Logger) *Adapter {
	return &Adapter{client: client, logger: logger}
}

func (a *Adapter) Name() string { return "hopasports" }

func (a *Adapter) Matches(url string) bool {
	return strings.Contains(strings.ToLower(url), "hopasports")
}

func (a *Adapter) Capabilities() scraper.Capabilities {
	return scraper.Capabilities{
		SupportsHeadless:          false,
		SupportsPagination:        false,
		SupportsMultipleDistances: true,
		SupportsCheckpoints:       true,
		ExpectedCheckpoints:       map[string][]string{},
	}
}

func (a *Adapter) AnalyzeURL(ctx context.Context, url string) (scraper.AnalyzeResult, error) {
	body, status, err := a.client.Get(ctx, url, fetch.Options{UserAgent: fetch.DefaultUserAgent})
	if err != nil {
		return scraper.AnalyzeResult{}, fmt.Errorf("analyze %s: %w", url, err)
	}
	if status >= 400 {
		return scraper.AnalyzeResult{Valid: false}, nil
	}

	descriptors, _, ok := extractDescriptors(string(body))
	if !ok {
		return scraper.AnalyzeResult{Valid: true, DetectedOrganiser: a.Name(), RequiresHeadless: false}, nil
	}

	names := make([]string, 0, len(descriptors))
	for _, d := range descriptors {
		names = append(names, d.Title)
	}

	return scraper.AnalyzeResult{
		Valid:                true,
		DetectedOrganiser:    a.Name(),
		EstimatedDistances:   names,
		EstimatedResultCount: 0,
		RequiresHeadless:     false,
	}, nil
}

// extractDescriptors finds and parses the embedded component attribute.
// The captured array is still HTML-entity-quoted when the host page used
// &quot; instead of a raw double quote, so it must be unescaped before
// the JSON decoder ever sees it.
func extractDescriptors(rawHTML string) (descriptors []Descriptor, baseURL string, ok bool) {
	m := descriptorAttr.FindStringSubmatch(rawHTML)
	if m == nil {
		return nil, "", false
	}
	if err := json.Unmarshal([]byte(html.UnescapeString(m[1])), &descriptors); err != nil {
		return nil, "", false
	}

	if b := baseURLAttr.FindStringSubmatch(rawHTML); b != nil {
		baseURL = html.UnescapeString(b[1])
	}
	return descriptors, baseURL, true
}

func (a *Adapter) ScrapeEvent(ctx context.Context, url string, opts scraper.Options, onProgress scraper.ProgressFunc) (scraper.ScrapedResults, error) {
	started := time.Now()
	emit := func(p scraper.Progress) {
		if onProgress != nil {
			onProgress(p)
		}
	}
	emit(scraper.Progress{Stage: scraper.StageInitializing})

	body, status, err := a.client.Get(ctx, url, fetch.Options{UserAgent: fetch.DefaultUserAgent})
	if err != nil {
		emit(scraper.Progress{Stage: scraper.StageError, Errors: []string{err.Error()}})
		return scraper.ScrapedResults{}, fmt.Errorf("scrape %s: %w", url, err)
	}
	if status >= 400 {
		err := fmt.Errorf("event page returned status %d", status)
		emit(scraper.Progress{Stage: scraper.StageError, Errors: []string{err.Error()}})
		return scraper.ScrapedResults{}, err
	}

	emit(scraper.Progress{Stage: scraper.StageConnecting})

	descriptors, baseURL, ok := extractDescriptors(string(body))
	if !ok {
		return scraper.ScrapedResults{}, fmt.Errorf("scrape %s: no race descriptors embedded in page", url)
	}

	var out scraper.ScrapedResults
	out.Metadata.StartedAt = started
	out.Metadata.TotalPages = len(descriptors)

	emit(scraper.Progress{Stage: scraper.StageScraping, TotalPages: len(descriptors)})

	for i, d := range descriptors {
		apiURL := fmt.Sprintf("%s?race_id=%s&pt=%s", baseURL, d.RaceID, d.PT)
		raceBody, raceStatus, err := a.client.Get(ctx, apiURL, fetch.Options{UserAgent: fetch.DefaultUserAgent})
		if err != nil {
			out.Metadata.Errors = append(out.Metadata.Errors, fmt.Sprintf("race %s: %v", d.RaceID, err))
			continue
		}
		if raceStatus >= 400 {
			out.Metadata.Errors = append(out.Metadata.Errors, fmt.Sprintf("race %s: status %d", d.RaceID, raceStatus))
			continue
		}

		results, err := parseRacePayload(raceBody)
		if err != nil {
			out.Metadata.Warnings = append(out.Metadata.Warnings, fmt.Sprintf("race %s: %v", d.RaceID, err))
			continue
		}

		distanceName := d.Title
		for i := range results {
			results[i].DistanceName = distanceName
		}
		out.Results = append(out.Results, results...)
		out.Distances = append(out.Distances, scraper.RawDistance{
			Name:             distanceName,
			DistanceMeters:   checkpoint.DistanceMetersFor(distanceName),
			ParticipantCount: len(results),
		})

		emit(scraper.Progress{
			Stage:          scraper.StageScraping,
			ResultsScraped: len(out.Results),
			TotalPages:     len(descriptors),
			CurrentPage:    i + 1,
		})
	}

	out.Metadata.TotalResults = len(out.Results)
	out.Metadata.CompletedAt = time.Now()
	emit(scraper.Progress{Stage: scraper.StageComplete, ResultsScraped: len(out.Results)})

	return out, nil
}

// parseRacePayload decodes the per-race API response, trying the known
// envelope keys before assuming the top level is the list itself.
func parseRacePayload(body []byte) ([]scraper.RawResult, error) {
	var top interface{}
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, fmt.Errorf("payload is not JSON, html fallback not implemented for this body shape")
	}

	var rows []map[string]interface{}

	switch v := top.(type) {
	case []interface{}:
		for _, item := range v {
			if m, ok := item.(map[string]interface{}); ok {
				rows = append(rows, m)
			}
		}
	case map[string]interface{}:
		for _, key := range []string{"results", "data", "items", "athletes"} {
			if list, ok := v[key].([]interface{}); ok {
				for _, item := range list {
					if m, ok := item.(map[string]interface{}); ok {
						rows = append(rows, m)
					}
				}
				break
			}
		}
	}

	out := make([]scraper.RawResult, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapRow(row))
	}
	return out, nil
}

func mapRow(row map[string]interface{}) scraper.RawResult {
	var provided []string
	get := func(field string) (string, bool) {
		for _, key := range fieldAliases[field] {
			if v, ok := row[key]; ok && v != nil {
				provided = append(provided, field)
				return fmt.Sprintf("%v", v), true
			}
		}
		return "", false
	}

	r := scraper.RawResult{}
	if v, ok := get("name"); ok {
		r.DisplayName = v
	}
	if v, ok := get("bib"); ok {
		r.Bib = v
	}
	if v, ok := get("gender"); ok {
		r.Gender = v
	}
	if v, ok := get("category"); ok {
		r.Category = v
	}
	if v, ok := get("finish"); ok {
		r.FinishTime = v
	}
	if v, ok := get("gun"); ok {
		r.GunTime = v
	}
	if v, ok := get("chip"); ok {
		r.ChipTime = v
	}
	if v, ok := get("pace"); ok {
		r.Pace = v
	}
	if v, ok := get("country"); ok {
		r.Country = v
	}
	if v, ok := get("club"); ok {
		r.Club = v
	}
	if v, ok := get("status"); ok {
		r.Status = v
	}
	if v, ok := get("time_behind"); ok {
		r.TimeBehind = v
	}
	if v, ok := get("position"); ok {
		r.Position = parsePositiveInt(v)
	}
	if v, ok := get("gender_position"); ok {
		r.GenderPosition = parsePositiveInt(v)
	}
	if v, ok := get("category_position"); ok {
		r.CategoryPosition = parsePositiveInt(v)
	}
	if v, ok := get("age"); ok {
		r.Age = parsePositiveInt(v)
	}
	r.FieldsProvided = provided
	return r
}

// parsePositiveInt accepts only positive integers; "-" and "" are absent.
func parsePositiveInt(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}

func (a *Adapter) ValidateResults(results scraper.ScrapedResults) scraper.ValidationReport {
	return validator.Validate(results)
}
