package ichef

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	logx "fairybot/pkg/logx"
)

func newMenuServer(t *testing.T, hoursBody, categoriesBody string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		var req gqlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		op := r.URL.Query().Get("op")
		if req.OperationName != op {
			t.Errorf("operationName %q != op param %q", req.OperationName, op)
		}

		w.Header().Set("Content-Type", "application/json")
		switch op {
		case "menuHoursSnapshotQuery":
			_, _ = w.Write([]byte(hoursBody))
		case "restaurantMenuItemCategoriesQuery":
			if _, ok := req.Variables["categoriesSnapshotUuids"]; !ok {
				t.Error("categories query missing snapshot uuids")
			}
			_, _ = w.Write([]byte(categoriesBody))
		default:
			t.Errorf("unexpected operation %q", op)
		}
	}))
}

const hoursWithSnapshot = `{"data":{"restaurant":{"onlineOrderingMenu":{"menuHoursSnapshot":[{"categorySnapshotUuids":["u1","u2"]}]}}}}`

func TestFetchRoster(t *testing.T) {
	t.Parallel()
	categories := `{"data":{"restaurant":{"menu":{"categoriesSnapshot":[
		{"name":"20240615午安","menuItemSnapshot":[{"name":"Alice"}]},
		{"name":"20240615晚安","menuItemSnapshot":[{"name":"Bob"},{"name":"Ben"}]}
	]}}}}`
	srv := newMenuServer(t, hoursWithSnapshot, categories)
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL}, logx.Nop())
	cats, err := c.FetchRoster(context.Background())
	if err != nil {
		t.Fatalf("FetchRoster: %v", err)
	}
	if len(cats) != 2 {
		t.Fatalf("len(cats) = %d, want 2", len(cats))
	}
	if cats[0].Name != "20240615午安" || len(cats[0].Items) != 1 || cats[0].Items[0] != "Alice" {
		t.Fatalf("first category = %+v", cats[0])
	}
	if cats[1].Name != "20240615晚安" || len(cats[1].Items) != 2 {
		t.Fatalf("second category = %+v", cats[1])
	}
}

func TestFetchRosterNoSnapshot(t *testing.T) {
	t.Parallel()
	srv := newMenuServer(t, `{"data":{"restaurant":{"onlineOrderingMenu":{"menuHoursSnapshot":[]}}}}`, "")
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL}, logx.Nop())
	cats, err := c.FetchRoster(context.Background())
	if err != nil {
		t.Fatalf("FetchRoster: %v", err)
	}
	if len(cats) != 0 {
		t.Fatalf("cats = %v, want empty", cats)
	}
}

func TestFetchRosterServerError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL}, logx.Nop())
	if _, err := c.FetchRoster(context.Background()); err == nil {
		t.Fatal("expected error for HTTP 500")
	}
}

func TestFetchRosterMalformedBody(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": not-json`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL}, logx.Nop())
	if _, err := c.FetchRoster(context.Background()); err == nil {
		t.Fatal("expected error for malformed response")
	}
}

func TestFetchRosterMissingFields(t *testing.T) {
	t.Parallel()
	// Well-formed JSON with the expected keys absent decodes to an empty
	// snapshot, which reads as "no data".
	srv := newMenuServer(t, `{"data":{}}`, "")
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL}, logx.Nop())
	cats, err := c.FetchRoster(context.Background())
	if err != nil || len(cats) != 0 {
		t.Fatalf("FetchRoster = (%v, %v), want empty without error", cats, err)
	}
}
