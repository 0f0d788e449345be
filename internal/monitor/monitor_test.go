package monitor

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/raceops/resultsync/internal/fetch"
)

func TestProbeDescriptor_NoComponent(t *testing.T) {
	m := &Monitor{client: fetch.New()}
	if got := m.probeDescriptor(context.Background(), "<html>nothing here</html>"); got {
		t.Error("expected no descriptor to report no results")
	}
}

func TestProbeDescriptor_FollowsAPIAndFindsResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[{"pos":"1","bib":"101","name":"Jane Doe"}]}`+string(make([]byte, 120)))
	}))
	defer srv.Close()

	html := fmt.Sprintf(`<div data-races="[{&quot;race_id&quot;:&quot;42&quot;,&quot;pt&quot;:&quot;r&quot;}]" data-api-base="%s"></div>`, srv.URL)

	m := &Monitor{client: fetch.New()}
	if got := m.probeDescriptor(context.Background(), html); !got {
		t.Error("expected descriptor follow-through to report results present")
	}
}

func TestProbeDescriptor_APIReturnsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":"not found"}`)
	}))
	defer srv.Close()

	html := fmt.Sprintf(`<div data-races="[{&quot;race_id&quot;:&quot;42&quot;,&quot;pt&quot;:&quot;r&quot;}]" data-api-base="%s"></div>`, srv.URL)

	m := &Monitor{client: fetch.New()}
	if got := m.probeDescriptor(context.Background(), html); got {
		t.Error("expected an error-bearing API response to report no results")
	}
}

func TestProbeDescriptor_MissingRaceID(t *testing.T) {
	m := &Monitor{client: fetch.New()}
	html := `<div data-races="[{&quot;pt&quot;:&quot;r&quot;}]" data-api-base="https://example.com"></div>`
	if got := m.probeDescriptor(context.Background(), html); got {
		t.Error("expected missing race_id to short-circuit to no results")
	}
}
