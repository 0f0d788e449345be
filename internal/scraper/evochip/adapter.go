// Package evochip implements the paginated-HTML-table organiser
// strategy: results live in a table located by heading text, walked page
// by page via "page=N" links, with a headless fallback for JS pagination.
package evochip

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/raceops/resultsync/internal/checkpoint"
	"github.com/raceops/resultsync/internal/fetch"
	"github.com/raceops/resultsync/internal/render"
	"github.com/raceops/resultsync/internal/scraper"
	"github.com/raceops/resultsync/internal/validator"
)

var pageLinkRe = regexp.MustCompile(`[?&]page=(\d+)`)

// columnAliases maps a logical column to the header labels that identify
// it. Matching is by substring containment on the lower-cased header text.
var columnAliases = map[string][]string{
	"bib":               {"bib"},
	"name":              {"name"},
	"country":           {"country", "nat"},
	"finish":            {"finish", "net time", "total time"},
	"5km":               {"5km", "5 km"},
	"10km":              {"10km", "10 km"},
	"13km":              {"13km", "13 km"},
	"15km":              {"15km", "15 km"},
	"gender_position":   {"gender rank", "sex rank", "gender pos"},
	"category_position": {"category rank", "cat rank", "category pos"},
}

// Adapter is the EvoChipLike scraper.
type Adapter struct {
	client   *fetch.Client
	logger   *logrus.Logger
	renderer *render.Renderer // optional; nil disables headless fallback
}

// New builds an EvoChip-strategy scraper. renderer may be nil.
func New(client *fetch.Client, logger *logrus.Logger, renderer *render.Renderer) *Adapter {
	return &Adapter{client: client, logger: logger, renderer: renderer}
}

func (a *Adapter) Name() string { return "evochip" }

func (a *Adapter) Matches(url string) bool {
	return strings.Contains(strings.ToLower(url), "evochip")
}

func (a *Adapter) Capabilities() scraper.Capabilities {
	return scraper.Capabilities{
		SupportsHeadless:          a.renderer != nil,
		SupportsPagination:        true,
		SupportsMultipleDistances: false,
		SupportsCheckpoints:       true,
		ExpectedCheckpoints:       map[string][]string{},
	}
}

func (a *Adapter) AnalyzeURL(ctx context.Context, pageURL string) (scraper.AnalyzeResult, error) {
	body, status, err := a.client.Get(ctx, pageURL, fetch.Options{UserAgent: fetch.DefaultUserAgent})
	if err != nil {
		return scraper.AnalyzeResult{}, fmt.Errorf("analyze %s: %w", pageURL, err)
	}
	if status >= 400 {
		return scraper.AnalyzeResult{Valid: false}, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return scraper.AnalyzeResult{}, fmt.Errorf("analyze %s: %w", pageURL, err)
	}

	table, columns := locateResultsTable(doc)
	if table == nil {
		return scraper.AnalyzeResult{Valid: true, DetectedOrganiser: a.Name(), RequiresHeadless: true}, nil
	}

	rows := table.Find("tbody tr")
	totalPages := discoverTotalPages(doc)
	requiresHeadless := totalPages == 1 && rows.Length()%100 == 0 && rows.Length() > 0

	_ = columns
	return scraper.AnalyzeResult{
		Valid:                true,
		DetectedOrganiser:    a.Name(),
		EstimatedResultCount: rows.Length() * totalPages,
		RequiresHeadless:     requiresHeadless,
	}, nil
}

// locateResultsTable finds the table whose header row contains both "bib"
// and "name", and returns the selection plus its column index map.
func locateResultsTable(doc *goquery.Document) (*goquery.Selection, map[string]int) {
	var found *goquery.Selection
	var columns map[string]int

	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		headerText := strings.ToLower(table.Find("thead").Text())
		if headerText == "" {
			headerText = strings.ToLower(table.Find("tr").First().Text())
		}
		if !strings.Contains(headerText, "bib") || !strings.Contains(headerText, "name") {
			return true
		}

		headers := table.Find("thead th")
		if headers.Length() == 0 {
			headers = table.Find("tr").First().Find("th, td")
		}

		cols := make(map[string]int)
		headers.Each(func(i int, h *goquery.Selection) {
			label := strings.ToLower(strings.TrimSpace(h.Text()))
			for field, aliases := range columnAliases {
				for _, alias := range aliases {
					if strings.Contains(label, alias) {
						cols[field] = i
					}
				}
			}
		})

		t := table
		found = t
		columns = cols
		return false
	})

	return found, columns
}

// discoverTotalPages scans pagination anchors for the maximum "page=N"
// value, or falls back to a literal "Last" link's page parameter.
func discoverTotalPages(doc *goquery.Document) int {
	max := 1
	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		if m := pageLinkRe.FindStringSubmatch(href); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > max {
				max = n
			}
		}
		if strings.EqualFold(strings.TrimSpace(a.Text()), "last") {
			if m := pageLinkRe.FindStringSubmatch(href); m != nil {
				if n, err := strconv.Atoi(m[1]); err == nil && n > max {
					max = n
				}
			}
		}
	})
	return max
}

// extractDistanceName picks a label for the single distance an EvoChip
// event page exposes: the page's <h1>, falling back to <title>, falling
// back to a generic label when neither is present.
func extractDistanceName(doc *goquery.Document) string {
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	return "Overall"
}

func setPageParam(rawURL string, page int) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (a *Adapter) ScrapeEvent(ctx context.Context, eventURL string, opts scraper.Options, onProgress scraper.ProgressFunc) (scraper.ScrapedResults, error) {
	started := time.Now()
	emit := func(p scraper.Progress) {
		if onProgress != nil {
			onProgress(p)
		}
	}
	emit(scraper.Progress{Stage: scraper.StageInitializing})

	politeness := opts.PolitenessGap
	if politeness <= 0 {
		politeness = 500 * time.Millisecond
	}

	body, status, err := a.client.Get(ctx, eventURL, fetch.Options{UserAgent: fetch.DefaultUserAgent})
	if err != nil {
		return scraper.ScrapedResults{}, fmt.Errorf("scrape %s: %w", eventURL, err)
	}
	if status >= 400 {
		return scraper.ScrapedResults{}, fmt.Errorf("scrape %s: status %d", eventURL, status)
	}

	emit(scraper.Progress{Stage: scraper.StageDetectingPages})

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return scraper.ScrapedResults{}, fmt.Errorf("scrape %s: %w", eventURL, err)
	}

	table, columns := locateResultsTable(doc)
	if table == nil {
		return scraper.ScrapedResults{}, fmt.Errorf("scrape %s: no results table located (missing bib/name headers)", eventURL)
	}

	distanceName := extractDistanceName(doc)
	totalPages := discoverTotalPages(doc)
	firstPageRows := parseRows(table, columns)
	usedHeadless := false

	if totalPages == 1 && len(firstPageRows)%100 == 0 && len(firstPageRows) > 0 && opts.AllowHeadless && a.renderer != nil {
		headlessRows, headlessPages, err := a.scrapeHeadless(ctx, eventURL)
		if err == nil && len(headlessRows) >= len(firstPageRows) {
			firstPageRows = headlessRows
			totalPages = headlessPages
			usedHeadless = true
		} else if err != nil {
			a.logger.WithError(err).Warn("evochip headless fallback failed, keeping static-page results")
		}
	}

	var out scraper.ScrapedResults
	out.Metadata.StartedAt = started
	out.Metadata.TotalPages = totalPages
	out.Metadata.UsedHeadlessBrowser = usedHeadless
	out.Results = append(out.Results, firstPageRows...)

	emit(scraper.Progress{Stage: scraper.StageScraping, ResultsScraped: len(out.Results), TotalPages: totalPages, CurrentPage: 1})

	if !usedHeadless {
		for page := 2; page <= totalPages; page++ {
			time.Sleep(politeness)

			pageURL, err := setPageParam(eventURL, page)
			if err != nil {
				out.Metadata.Errors = append(out.Metadata.Errors, fmt.Sprintf("page %d: %v", page, err))
				continue
			}

			pageBody, pageStatus, err := a.client.Get(ctx, pageURL, fetch.Options{UserAgent: fetch.DefaultUserAgent})
			if err != nil {
				out.Metadata.Errors = append(out.Metadata.Errors, fmt.Sprintf("page %d: %v", page, err))
				continue
			}
			if pageStatus >= 400 {
				out.Metadata.Errors = append(out.Metadata.Errors, fmt.Sprintf("page %d: status %d", page, pageStatus))
				continue
			}

			pageDoc, err := goquery.NewDocumentFromReader(strings.NewReader(string(pageBody)))
			if err != nil {
				out.Metadata.Errors = append(out.Metadata.Errors, fmt.Sprintf("page %d: %v", page, err))
				continue
			}

			pageTable, pageColumns := locateResultsTable(pageDoc)
			if pageTable == nil {
				out.Metadata.Warnings = append(out.Metadata.Warnings, fmt.Sprintf("page %d: results table not found", page))
				continue
			}

			rows := parseRows(pageTable, pageColumns)
			out.Results = append(out.Results, rows...)

			emit(scraper.Progress{
				Stage:          scraper.StageScraping,
				ResultsScraped: len(out.Results),
				TotalPages:     totalPages,
				CurrentPage:    page,
			})
		}
	}

	for i := range out.Results {
		out.Results[i].DistanceName = distanceName
	}
	out.Distances = append(out.Distances, scraper.RawDistance{
		Name:             distanceName,
		DistanceMeters:   checkpoint.DistanceMetersFor(distanceName),
		RaceType:         string(checkpoint.DetectRaceType(distanceName)),
		ParticipantCount: len(out.Results),
		ExpectedCheckpoints: checkpoint.ExpectedCheckpoints(
			checkpoint.DetectRaceType(distanceName),
			checkpoint.DistanceMetersFor(distanceName),
		),
	})

	out.Metadata.TotalResults = len(out.Results)
	out.Metadata.CompletedAt = time.Now()
	emit(scraper.Progress{Stage: scraper.StageComplete, ResultsScraped: len(out.Results)})

	return out, nil
}

// scrapeHeadless re-scrapes the event via the Headless Renderer, reading
// the rows of the first rendered table only; further pages are not
// followed. The page count returned is whatever WaitForPagination reports.
func (a *Adapter) scrapeHeadless(ctx context.Context, eventURL string) ([]scraper.RawResult, int, error) {
	page, err := a.renderer.AcquirePage(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire headless page: %w", err)
	}
	defer page.Release()

	if err := page.NavigateAndWait("table", eventURL); err != nil {
		return nil, 0, fmt.Errorf("navigate %s: %w", eventURL, err)
	}

	extract, err := page.ExtractTable("table")
	if err != nil {
		return nil, 0, fmt.Errorf("extract table: %w", err)
	}

	columns := make(map[string]int)
	for i, h := range extract.Headers {
		label := strings.ToLower(strings.TrimSpace(h))
		for field, aliases := range columnAliases {
			for _, alias := range aliases {
				if strings.Contains(label, alias) {
					columns[field] = i
				}
			}
		}
	}

	rows := make([]scraper.RawResult, 0, len(extract.Rows))
	for _, cells := range extract.Rows {
		rows = append(rows, mapCells(cells, columns))
	}

	pagination, err := page.WaitForPagination()
	if err != nil {
		return rows, 1, nil
	}
	return rows, pagination.TotalPages, nil
}

func parseRows(table *goquery.Selection, columns map[string]int) []scraper.RawResult {
	var out []scraper.RawResult
	table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		cells := make([]string, tr.Find("td").Length())
		tr.Find("td").Each(func(i int, td *goquery.Selection) {
			cells[i] = strings.TrimSpace(td.Text())
		})
		out = append(out, mapCells(cells, columns))
	})
	return out
}

func mapCells(cells []string, columns map[string]int) scraper.RawResult {
	cell := func(field string) (string, bool) {
		idx, ok := columns[field]
		if !ok || idx >= len(cells) {
			return "", false
		}
		v := strings.TrimSpace(cells[idx])
		return v, v != ""
	}

	var provided []string
	r := scraper.RawResult{}
	if v, ok := cell("bib"); ok {
		r.Bib = v
		provided = append(provided, "bib")
	}
	if v, ok := cell("name"); ok {
		r.DisplayName = v
		provided = append(provided, "name")
	}
	if v, ok := cell("country"); ok {
		r.Country = v
		provided = append(provided, "country")
	}
	if v, ok := cell("finish"); ok {
		r.FinishTime = v
		provided = append(provided, "finish")
	}
	if v, ok := cell("gender_position"); ok {
		r.GenderPosition = parsePositiveInt(v)
		provided = append(provided, "gender_position")
	}
	if v, ok := cell("category_position"); ok {
		r.CategoryPosition = parsePositiveInt(v)
		provided = append(provided, "category_position")
	}

	for _, split := range []string{"5km", "10km", "13km", "15km"} {
		if v, ok := cell(split); ok {
			r.Checkpoints = append(r.Checkpoints, scraper.RawCheckpoint{
				Name:           split,
				Order:          len(r.Checkpoints) + 1,
				CumulativeTime: v,
			})
			provided = append(provided, split)
		}
	}

	r.FieldsProvided = provided
	return r
}

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
