package loadtest

import "time"

// Config holds configuration for the load test
type Config struct {
	BaseURL       string        // Base URL of the service
	NumQuotations int           // Number of quotation requests to submit
	Workers       int           // Number of concurrent workers
	Timeout       time.Duration // HTTP request timeout
	LegacyPercent int           // Share of requests sent in the legacy shape
	ReplayPercent int           // Share of requests resubmitted with the same Idempotency-Key
	OutputFile    string        // Output file for created quotations
	LogFile       string        // Log file for test output
	Verbose       bool          // Enable verbose logging
}

// Request is one generated submission.
type Request struct {
	IdempotencyKey string
	Legacy         bool
	Replay         bool
	Body           map[string]any
}

// Pricing mirrors the /debug/pricing response.
type Pricing struct {
	Version            string                        `json:"version"`
	Base               map[string]float64            `json:"base"`
	Flooring           map[string]float64            `json:"flooring"`
	CourtSizes         map[string]map[string]float64 `json:"courtSizes"`
	Equipment          map[string]float64            `json:"equipment"`
	AdditionalFeatures map[string]float64            `json:"additionalFeatures"`
	Lighting           map[string]float64            `json:"lighting"`
	Roof               map[string]float64            `json:"roof"`
}

// Breakdown mirrors the pricing block of a stored quotation.
type Breakdown struct {
	BaseCost       float64 `json:"baseCost"`
	FlooringCost   float64 `json:"flooringCost"`
	EquipmentCost  float64 `json:"equipmentCost"`
	DrainageCost   float64 `json:"drainageCost"`
	FencingCost    float64 `json:"fencingCost"`
	LightingCost   float64 `json:"lightingCost"`
	ShedCost       float64 `json:"shedCost"`
	AdditionalCost float64 `json:"additionalCost"`
	TotalCost      float64 `json:"totalCost"`
}

// LineSum adds the eight cost lines.
func (b Breakdown) LineSum() float64 {
	return b.BaseCost + b.FlooringCost + b.EquipmentCost + b.DrainageCost +
		b.FencingCost + b.LightingCost + b.ShedCost + b.AdditionalCost
}

// Quotation is the part of a stored quotation the test checks.
type Quotation struct {
	ID              string    `json:"id"`
	QuotationNumber string    `json:"quotationNumber"`
	Status          string    `json:"status"`
	Pricing         Breakdown `json:"pricing"`
}

// Result records the outcome of one submission.
type Result struct {
	IdempotencyKey string
	Replay         bool
	StatusCode     int
	Quotation      Quotation
	Err            error
}

// Stats holds test statistics
type Stats struct {
	RequestsGenerated int
	RequestsSubmitted int
	Created           int
	Replayed          int
	Failed            int
	Listed            int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
