package transcribe

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Pricing per hour of audio by ElevenLabs plan.
var Pricing = map[string]float64{
	"free":       0.0,
	"starter":    0.40,
	"creator":    0.35,
	"pro":        0.33,
	"scale":      0.30,
	"enterprise": 0.25,
}

// DefaultPricePerHour is the pro-plan rate, used when the tier is unknown.
const DefaultPricePerHour = 0.33

// CostEntry records the spend of one transcription.
type CostEntry struct {
	Timestamp       time.Time `json:"timestamp"`
	DurationSeconds float64   `json:"duration_seconds"`
	CostUSD         float64   `json:"cost_usd"`
	MeetingID       string    `json:"meeting_id,omitempty"`
	MeetingName     string    `json:"meeting_name,omitempty"`
}

// CostSummary aggregates spend over a period.
type CostSummary struct {
	TotalCostUSD         float64    `json:"total_cost_usd"`
	TotalDurationSeconds float64    `json:"total_duration_seconds"`
	TranscriptionCount   int        `json:"transcription_count"`
	PeriodStart          *time.Time `json:"period_start,omitempty"`
	PeriodEnd            *time.Time `json:"period_end,omitempty"`
}

// TotalDurationHours returns the summarized audio time in hours.
func (s CostSummary) TotalDurationHours() float64 {
	return s.TotalDurationSeconds / 3600
}

// AverageCostPerHour returns the effective hourly rate over the period.
func (s CostSummary) AverageCostPerHour() float64 {
	hours := s.TotalDurationHours()
	if hours == 0 {
		return 0
	}
	return s.TotalCostUSD / hours
}

// CostCalculator prices transcriptions and keeps a JSON history file so spend
// can be reviewed across runs.
type CostCalculator struct {
	pricePerHour float64
	historyPath  string

	mu      sync.Mutex
	history []CostEntry
}

// NewCostCalculator creates a calculator for the given hourly price. History
// is loaded from historyPath when the file exists; a missing or unreadable
// history starts empty.
func NewCostCalculator(pricePerHour float64, historyPath string) *CostCalculator {
	if pricePerHour < 0 {
		pricePerHour = DefaultPricePerHour
	}
	c := &CostCalculator{
		pricePerHour: pricePerHour,
		historyPath:  historyPath,
	}
	c.loadHistory()
	return c
}

// Calculate returns the cost in USD for the given audio duration.
func (c *CostCalculator) Calculate(durationSeconds float64) float64 {
	return durationSeconds * c.pricePerHour / 3600
}

// Log appends one transcription to the history and persists it.
func (c *CostCalculator) Log(durationSeconds, costUSD float64, meetingID, meetingName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.history = append(c.history, CostEntry{
		Timestamp:       time.Now(),
		DurationSeconds: durationSeconds,
		CostUSD:         costUSD,
		MeetingID:       meetingID,
		MeetingName:     meetingName,
	})
	return c.saveHistory()
}

// Summary aggregates entries within [start, end]; nil bounds are open.
func (c *CostCalculator) Summary(start, end *time.Time) CostSummary {
	c.mu.Lock()
	defer c.mu.Unlock()

	summary := CostSummary{PeriodStart: start, PeriodEnd: end}
	for _, entry := range c.history {
		if start != nil && entry.Timestamp.Before(*start) {
			continue
		}
		if end != nil && entry.Timestamp.After(*end) {
			continue
		}
		summary.TotalCostUSD += entry.CostUSD
		summary.TotalDurationSeconds += entry.DurationSeconds
		summary.TranscriptionCount++
	}
	return summary
}

// MonthSummary aggregates one calendar month.
func (c *CostCalculator) MonthSummary(year int, month time.Month) CostSummary {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return c.Summary(&start, &end)
}

// CurrentMonthSummary aggregates the month containing now.
func (c *CostCalculator) CurrentMonthSummary() CostSummary {
	now := time.Now()
	return c.MonthSummary(now.Year(), now.Month())
}

// EstimateMonthlyCost projects the cost of the given monthly audio volume.
func (c *CostCalculator) EstimateMonthlyCost(hoursPerMonth float64) float64 {
	return hoursPerMonth * c.pricePerHour
}

// PlanRecommendation suggests the cheapest ElevenLabs plan covering the given
// monthly usage.
type PlanRecommendation struct {
	Plan              string  `json:"recommended_plan"`
	PlanPriceUSD      float64 `json:"plan_price"`
	IncludedHours     float64 `json:"included_hours"`
	YourHours         float64 `json:"your_hours"`
	OverageCostUSD    float64 `json:"overage_cost"`
	TotalEstimatedUSD float64 `json:"total_estimated_cost"`
}

// RecommendPlan picks a plan for the given monthly hours of audio.
func (c *CostCalculator) RecommendPlan(monthlyHours float64) PlanRecommendation {
	plans := []struct {
		name    string
		price   float64
		hours   float64
		perHour float64
	}{
		{"Free", 0, 0.5, 0},
		{"Starter ($5)", 5, 12.5, 0.40},
		{"Creator ($22)", 22, 63, 0.35},
		{"Pro ($99)", 99, 300, 0.33},
		{"Scale ($330)", 330, 1100, 0.30},
	}

	for _, plan := range plans {
		if monthlyHours <= plan.hours {
			return PlanRecommendation{
				Plan:              plan.name,
				PlanPriceUSD:      plan.price,
				IncludedHours:     plan.hours,
				YourHours:         monthlyHours,
				TotalEstimatedUSD: plan.price,
			}
		}
	}

	last := plans[len(plans)-1]
	overage := (monthlyHours - last.hours) * last.perHour
	return PlanRecommendation{
		Plan:              last.name,
		PlanPriceUSD:      last.price,
		IncludedHours:     last.hours,
		YourHours:         monthlyHours,
		OverageCostUSD:    overage,
		TotalEstimatedUSD: last.price + overage,
	}
}

func (c *CostCalculator) loadHistory() {
	if c.historyPath == "" {
		return
	}
	data, err := os.ReadFile(c.historyPath)
	if err != nil {
		return
	}
	var history []CostEntry
	if err := json.Unmarshal(data, &history); err != nil {
		return
	}
	c.history = history
}

func (c *CostCalculator) saveHistory() error {
	if c.historyPath == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.historyPath), 0755); err != nil {
		return fmt.Errorf("failed to create cost history directory: %w", err)
	}
	data, err := json.MarshalIndent(c.history, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cost history: %w", err)
	}
	if err := os.WriteFile(c.historyPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write cost history: %w", err)
	}
	return nil
}
