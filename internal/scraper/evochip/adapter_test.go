package evochip

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

const sampleTableHTML = `
<html><body>
<table>
<thead><tr><th>Bib</th><th>Name</th><th>Country</th><th>5km</th><th>Finish</th></tr></thead>
<tbody>
<tr><td>101</td><td>Jane Doe</td><td>USA</td><td>25:00</td><td>1:45:00</td></tr>
<tr><td>102</td><td>John Roe</td><td>GBR</td><td>26:00</td><td>1:50:00</td></tr>
</tbody>
</table>
<div class="pagination">
<a href="?page=1">1</a>
<a href="?page=2">2</a>
<a href="?page=3">Last</a>
</div>
</body></html>`

func TestMatches(t *testing.T) {
	a := &Adapter{}
	if !a.Matches("https://results.evochip.com/event/55") {
		t.Error("expected evochip URL to match")
	}
	if a.Matches("https://otherprovider.com/event/55") {
		t.Error("expected unrelated URL not to match")
	}
}

func TestLocateResultsTable(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sampleTableHTML))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	table, columns := locateResultsTable(doc)
	if table == nil {
		t.Fatal("expected to locate the results table")
	}
	for _, field := range []string{"bib", "name", "country", "finish", "5km"} {
		if _, ok := columns[field]; !ok {
			t.Errorf("expected column mapping for %q, got %v", field, columns)
		}
	}
}

func TestLocateResultsTable_NoMatch(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<html><body><table><tr><th>Foo</th><th>Bar</th></tr></table></body></html>`))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	table, _ := locateResultsTable(doc)
	if table != nil {
		t.Error("expected no table to be located when headers lack bib/name")
	}
}

func TestDiscoverTotalPages(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sampleTableHTML))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	if got := discoverTotalPages(doc); got != 3 {
		t.Errorf("discoverTotalPages() = %d, want 3", got)
	}
}

func TestDiscoverTotalPages_NoLinks(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<html><body>no pagination here</body></html>`))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	if got := discoverTotalPages(doc); got != 1 {
		t.Errorf("discoverTotalPages() with no links = %d, want 1", got)
	}
}

func TestSetPageParam(t *testing.T) {
	got, err := setPageParam("https://results.evochip.com/event/55?lang=en", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "page=3") {
		t.Errorf("expected page=3 in %q", got)
	}
	if !strings.Contains(got, "lang=en") {
		t.Errorf("expected existing query params preserved in %q", got)
	}
}

func TestParseRowsAndMapCells(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sampleTableHTML))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	table, columns := locateResultsTable(doc)
	if table == nil {
		t.Fatal("expected to locate the results table")
	}

	rows := parseRows(table, columns)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	first := rows[0]
	if first.Bib != "101" || first.DisplayName != "Jane Doe" || first.Country != "USA" || first.FinishTime != "1:45:00" {
		t.Errorf("unexpected first row: %+v", first)
	}
	if len(first.Checkpoints) != 1 || first.Checkpoints[0].Name != "5km" || first.Checkpoints[0].CumulativeTime != "25:00" {
		t.Errorf("unexpected checkpoints: %+v", first.Checkpoints)
	}
}

func TestExtractDistanceName_FromH1(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<html><head><title>Event Results</title></head><body><h1>  Marathon  </h1></body></html>`))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	if got := extractDistanceName(doc); got != "Marathon" {
		t.Errorf("extractDistanceName() = %q, want %q", got, "Marathon")
	}
}

func TestExtractDistanceName_FallsBackToTitle(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<html><head><title>City 10k Results</title></head><body></body></html>`))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	if got := extractDistanceName(doc); got != "City 10k Results" {
		t.Errorf("extractDistanceName() = %q, want %q", got, "City 10k Results")
	}
}

func TestExtractDistanceName_FallsBackToOverall(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<html><body></body></html>`))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	if got := extractDistanceName(doc); got != "Overall" {
		t.Errorf("extractDistanceName() = %q, want %q", got, "Overall")
	}
}

func TestMapCells_MissingColumnsSkipped(t *testing.T) {
	r := mapCells([]string{"101"}, map[string]int{"bib": 0, "name": 5})
	if r.Bib != "101" {
		t.Errorf("expected bib to be mapped, got %q", r.Bib)
	}
	if r.DisplayName != "" {
		t.Errorf("expected name to be absent when index is out of range, got %q", r.DisplayName)
	}
	for _, f := range r.FieldsProvided {
		if f == "name" {
			t.Error("name should not appear in FieldsProvided when absent")
		}
	}
}
