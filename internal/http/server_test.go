package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"nutrisight/internal/core"
	"nutrisight/internal/dashboard"
	"nutrisight/internal/kv"
	"nutrisight/internal/ledger"
	"nutrisight/internal/plan"
)

func newTestServer(t *testing.T) (*httptest.Server, *dashboard.Service) {
	t.Helper()
	svc := dashboard.New(ledger.NewStore(kv.NewMemoryStore()), nil, nil)
	s := NewServer(":0", svc)
	ts := httptest.NewServer(s.Server.Handler)
	t.Cleanup(func() {
		ts.Close()
		s.rateLimiter.stop()
	})
	return ts, svc
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		buf = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func TestHealthEndpoints(t *testing.T) {
	ts, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, resp.StatusCode)
		}
	}
}

func TestLogEntryAndSummary(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/budget/entries", map[string]any{
		"dish":     "Paneer Tikka",
		"category": "dinner",
		"price":    "120.50",
		"calories": 320,
		"diet":     "veg",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	var created struct {
		Entry  core.SpendingEntry `json:"entry"`
		Notice string             `json:"notice"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Entry.Price.Paise != 12050 {
		t.Errorf("price = %d, want 12050", created.Entry.Price.Paise)
	}
	if created.Entry.ID == "" {
		t.Error("entry id should be generated")
	}
	if created.Notice != "" {
		t.Errorf("explicit price should not produce a notice, got %q", created.Notice)
	}

	sResp, err := http.Get(ts.URL + "/api/budget/summary")
	if err != nil {
		t.Fatalf("GET summary: %v", err)
	}
	defer sResp.Body.Close()
	var sum struct {
		Summary core.BudgetSummary   `json:"summary"`
		Entries []core.SpendingEntry `json:"entries"`
	}
	if err := json.NewDecoder(sResp.Body).Decode(&sum); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if sum.Summary.Total.Paise != 12050 {
		t.Errorf("total = %d, want 12050", sum.Summary.Total.Paise)
	}
	if sum.Summary.Wallet.Paise != ledger.DefaultWalletPaise {
		t.Errorf("wallet = %d, want default %d", sum.Summary.Wallet.Paise, ledger.DefaultWalletPaise)
	}
	if len(sum.Entries) != 1 {
		t.Errorf("entries = %d, want 1", len(sum.Entries))
	}
}

func TestLogEntryFallbackNotice(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/budget/entries", map[string]any{
		"dish": "Mystery Curry",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	var created struct {
		Entry  core.SpendingEntry `json:"entry"`
		Notice string             `json:"notice"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Entry.Price.Paise != dashboard.FallbackPricePaise {
		t.Errorf("price = %d, want fallback %d", created.Entry.Price.Paise, dashboard.FallbackPricePaise)
	}
	if created.Notice == "" {
		t.Error("fallback price should produce a notice")
	}
}

func TestLogEntryValidation(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/budget/entries", map[string]any{"dish": "  "})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty dish status = %d, want 400", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/budget/entries", map[string]any{
		"dish":  "Idli",
		"price": "not-a-number",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("bad price status = %d, want 422", resp.StatusCode)
	}
}

func TestRemoveEntryAlwaysNoContent(t *testing.T) {
	ts, svc := newTestServer(t)

	entry, _, err := svc.LogMeal(context.Background(), core.MealCandidate{Dish: "Idli", PricePaise: 3000})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	for _, id := range []string{entry.ID, "never-existed"} {
		resp := doJSON(t, http.MethodDelete, ts.URL+"/api/budget/entries/"+id, nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusNoContent {
			t.Errorf("DELETE %s status = %d, want 204", id, resp.StatusCode)
		}
	}
}

func TestClear(t *testing.T) {
	ts, svc := newTestServer(t)
	svc.LogMeal(context.Background(), core.MealCandidate{Dish: "Idli", PricePaise: 3000})

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/budget/clear", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}

	snap, _ := svc.Snapshot(context.Background())
	if len(snap.Entries) != 0 {
		t.Errorf("entries after clear = %+v", snap.Entries)
	}
}

func TestSetWallet(t *testing.T) {
	ts, svc := newTestServer(t)

	resp := doJSON(t, http.MethodPut, ts.URL+"/api/budget/wallet", map[string]string{"amount": "5000.00"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body struct {
		Summary core.BudgetSummary `json:"summary"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Summary.Wallet.Paise != 500000 {
		t.Errorf("wallet = %d, want 500000", body.Summary.Wallet.Paise)
	}

	// Invalid amount leaves the wallet untouched.
	resp = doJSON(t, http.MethodPut, ts.URL+"/api/budget/wallet", map[string]string{"amount": "abc"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("bad amount status = %d, want 422", resp.StatusCode)
	}
	snap, _ := svc.Snapshot(context.Background())
	if snap.Summary.Wallet.Paise != 500000 {
		t.Errorf("wallet mutated by rejected update: %d", snap.Summary.Wallet.Paise)
	}
}

type stubFetcher struct {
	gotCredential string
}

func (f *stubFetcher) FetchAll(_ context.Context, credential string) (plan.Weekly, plan.Prices) {
	f.gotCredential = credential
	weekly := plan.Weekly{Days: []plan.Day{{
		Meals: map[core.MealSlot]*plan.Meal{
			core.Breakfast: {DishName: "Idli", Category: "breakfast", PriceINR: 30},
		},
	}}}
	return weekly, plan.Prices{"Idli": 3000}
}

func TestMealsFetchesPlanOnFirstCall(t *testing.T) {
	fetcher := &stubFetcher{}
	svc := dashboard.New(ledger.NewStore(kv.NewMemoryStore()), fetcher, nil)
	s := NewServer(":0", svc)
	ts := httptest.NewServer(s.Server.Handler)
	t.Cleanup(func() {
		ts.Close()
		s.rateLimiter.stop()
	})

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/budget/meals", nil)
	req.Header.Set("Authorization", "Bearer tok")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET meals: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		PlanReady  bool                  `json:"plan_ready"`
		Candidates []dashboard.Candidate `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.PlanReady {
		t.Error("plan should be ready after the first meals call")
	}
	if len(body.Candidates) != 1 || body.Candidates[0].Dish != "Idli" {
		t.Errorf("candidates = %+v", body.Candidates)
	}
	if fetcher.gotCredential != "Bearer tok" {
		t.Errorf("credential = %q, want the Authorization header", fetcher.gotCredential)
	}
}

func TestRateLimitOnMutations(t *testing.T) {
	ts, _ := newTestServer(t)

	var limited bool
	for i := 0; i < 70; i++ {
		resp := doJSON(t, http.MethodPost, ts.URL+"/api/budget/entries", map[string]any{
			"dish":  "Idli",
			"price": "30",
		})
		resp.Body.Close()
		if resp.StatusCode == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	if !limited {
		t.Error("expected rate limiting to kick in for rapid mutations")
	}
}
