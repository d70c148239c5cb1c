// Package planclient talks to the meal recommendation service: the weekly
// plan and price endpoints consumed by the dashboard, and the preference
// feedback endpoint fed by the worker.
//
// Fetching degrades gracefully by contract: meal recommendations are an
// enhancement, so a failed or malformed response yields an empty plan and
// empty price map instead of an error.
package planclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"nutrisight/internal/core"
	"nutrisight/internal/plan"
)

const defaultTimeout = 8 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// wire shape of GET /api/meal-prices
type pricesResponse struct {
	Prices map[string]float64 `json:"prices"`
	Count  int                `json:"count"`
}

// FetchAll retrieves the weekly plan and the dish price map as two
// independent concurrent requests joined before return. A failure in either
// request does not abort the other; each failed leg simply comes back
// empty. The credential is the caller's session token, forwarded untouched
// as the Authorization header.
func (c *Client) FetchAll(ctx context.Context, credential string) (plan.Weekly, plan.Prices) {
	var (
		weekly plan.Weekly
		prices = plan.Prices{}
	)

	// errgroup joins the two legs; neither returns an error, so the group
	// only propagates context cancellation.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		w, err := c.fetchWeeklyPlan(gctx, credential)
		if err != nil {
			slog.WarnContext(gctx, "Weekly plan fetch failed, degrading to empty plan", "error", err)
			return nil
		}
		weekly = w
		return nil
	})

	g.Go(func() error {
		p, err := c.fetchPrices(gctx, credential)
		if err != nil {
			slog.WarnContext(gctx, "Meal price fetch failed, degrading to empty prices", "error", err)
			return nil
		}
		prices = p
		return nil
	})

	_ = g.Wait()
	return weekly, prices
}

func (c *Client) fetchWeeklyPlan(ctx context.Context, credential string) (plan.Weekly, error) {
	var weekly plan.Weekly
	if err := c.getJSON(ctx, "/api/weekly-plan", credential, &weekly); err != nil {
		return plan.Weekly{}, err
	}
	return weekly, nil
}

func (c *Client) fetchPrices(ctx context.Context, credential string) (plan.Prices, error) {
	var resp pricesResponse
	if err := c.getJSON(ctx, "/api/meal-prices", credential, &resp); err != nil {
		return nil, err
	}
	prices := make(plan.Prices, len(resp.Prices))
	for dish, inr := range resp.Prices {
		prices[dish] = plan.RupeesToPaise(inr)
	}
	return prices, nil
}

func (c *Client) getJSON(ctx context.Context, path, credential string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if credential != "" {
		req.Header.Set("Authorization", credential)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// Feedback is the preference signal the worker pushes back to the
// recommender after a meal is actually logged.
type Feedback struct {
	UserID    string  `json:"user_id"`
	DishName  string  `json:"dish_name"`
	Calories  float64 `json:"calories_kcal"`
	Protein   float64 `json:"protein_g"`
	Carbs     float64 `json:"carbs_g"`
	Fats      float64 `json:"fats_g"`
	Category  string  `json:"category"`
	VegNonVeg string  `json:"veg_nonveg"`
}

// FeedbackFromEntry builds the preference payload from a logged entry.
func FeedbackFromEntry(userID string, e core.SpendingEntry) Feedback {
	return Feedback{
		UserID:    userID,
		DishName:  e.Dish,
		Calories:  e.Calories,
		Category:  string(e.Category),
		VegNonVeg: e.Diet,
	}
}

// SendFeedback upserts a like for a logged meal. Unlike the fetches this
// returns an error: the worker retries via its queue, so failures must
// surface.
func (c *Client) SendFeedback(ctx context.Context, credential string, fb Feedback) error {
	body, err := json.Marshal(fb)
	if err != nil {
		return fmt.Errorf("marshal feedback: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/preferences/like", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if credential != "" {
		req.Header.Set("Authorization", credential)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("POST /api/preferences/like: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("POST /api/preferences/like: unexpected status %d", resp.StatusCode)
	}

	slog.InfoContext(ctx, "Preference feedback sent", "dish", fb.DishName, "category", fb.Category)
	return nil
}
