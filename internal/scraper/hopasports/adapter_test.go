package hopasports

import "testing"

func TestMatches(t *testing.T) {
	a := &Adapter{}
	if !a.Matches("https://results.hopasports.com/event/123") {
		t.Error("expected hopasports URL to match")
	}
	if !a.Matches("HTTPS://HOPASPORTS.COM/event/123") {
		t.Error("Matches should be case-insensitive")
	}
	if a.Matches("https://otherprovider.com/event/123") {
		t.Error("expected unrelated URL not to match")
	}
}

func TestExtractDescriptors(t *testing.T) {
	html := `<div data-races="[{&quot;race_id&quot;:&quot;42&quot;,&quot;pt&quot;:&quot;r&quot;,&quot;title&quot;:&quot;10K&quot;}]" data-api-base="https://api.hopasports.com/results"></div>`

	descriptors, baseURL, ok := extractDescriptors(html)
	if !ok {
		t.Fatal("expected descriptors to be found")
	}
	if len(descriptors) != 1 {
		t.Fatalf("expected 1 descriptor, got %d", len(descriptors))
	}
	if descriptors[0].RaceID != "42" || descriptors[0].PT != "r" || descriptors[0].Title != "10K" {
		t.Errorf("unexpected descriptor: %+v", descriptors[0])
	}
	if baseURL != "https://api.hopasports.com/results" {
		t.Errorf("unexpected baseURL: %q", baseURL)
	}
}

func TestExtractDescriptors_Absent(t *testing.T) {
	_, _, ok := extractDescriptors("<html><body>no component here</body></html>")
	if ok {
		t.Error("expected no descriptors to be found")
	}
}

func TestParseRacePayload_ArrayEnvelope(t *testing.T) {
	body := []byte(`[{"pos":"1","bib":"101","name":"Jane Doe","finish_time":"1:45:00"}]`)

	results, err := parseRacePayload(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].DisplayName != "Jane Doe" || results[0].Bib != "101" {
		t.Errorf("unexpected result: %+v", results[0])
	}
	if results[0].Position == nil || *results[0].Position != 1 {
		t.Errorf("expected position 1, got %v", results[0].Position)
	}
}

func TestParseRacePayload_WrappedEnvelope(t *testing.T) {
	body := []byte(`{"results":[{"pos":"2","bib":"102","full_name":"John Roe"}]}`)

	results, err := parseRacePayload(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].DisplayName != "John Roe" {
		t.Errorf("unexpected result: %+v", results)
	}
}

func TestParseRacePayload_NotJSON(t *testing.T) {
	if _, err := parseRacePayload([]byte("<html>not json</html>")); err == nil {
		t.Error("expected an error for a non-JSON payload")
	}
}

func TestMapRow_FieldAliasPrecedence(t *testing.T) {
	row := map[string]interface{}{
		"pos":      "3",
		"position": "99", // should lose to "pos", which is tried first
		"name":     "Alex Lee",
	}
	result := mapRow(row)
	if result.Position == nil || *result.Position != 3 {
		t.Errorf("expected position 3 from first-matching alias, got %v", result.Position)
	}
	if result.DisplayName != "Alex Lee" {
		t.Errorf("unexpected display name: %q", result.DisplayName)
	}

	found := false
	for _, f := range result.FieldsProvided {
		if f == "position" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected FieldsProvided to include position, got %v", result.FieldsProvided)
	}
}

func TestParsePositiveInt(t *testing.T) {
	tests := []struct {
		input string
		want  *int
	}{
		{"5", intPtr(5)},
		{"", nil},
		{"-", nil},
		{"0", nil},
		{"-3", nil},
		{"not a number", nil},
	}

	for _, tt := range tests {
		got := parsePositiveInt(tt.input)
		if (tt.want == nil) != (got == nil) {
			t.Errorf("parsePositiveInt(%q) = %v, want %v", tt.input, got, tt.want)
			continue
		}
		if tt.want != nil && *got != *tt.want {
			t.Errorf("parsePositiveInt(%q) = %d, want %d", tt.input, *got, *tt.want)
		}
	}
}

func intPtr(n int) *int { return &n }
