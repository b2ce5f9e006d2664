package model

import "time"

// Status is the lifecycle state of a quotation.
type Status string

// StatusPending is the only state assigned on creation.
const StatusPending Status = "pending"

// Quotation is a persisted, numbered quotation.
type Quotation struct {
	ID              string       `json:"id"`
	QuotationNumber string       `json:"quotationNumber"`
	CreatedAt       time.Time    `json:"createdAt"`
	Status          Status       `json:"status"`
	CatalogVersion  string       `json:"catalogVersion,omitempty"`
	ClientInfo      ClientInfo   `json:"clientInfo"`
	ProjectInfo     ProjectInfo  `json:"projectInfo"`
	Requirements    Requirements `json:"requirements"`
	Pricing         Breakdown    `json:"pricing"`
}

// RenderJob asks a worker to pre-render a quotation document.
type RenderJob struct {
	QuotationNumber string
	Format          string
	EnqueuedAt      time.Time
}
