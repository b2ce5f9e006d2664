// Package model contains domain models passed between layers.
package model

import "encoding/json"

// RawRequest is a quotation submission as sent by a client. Every block is
// optional so the normalizer can report exactly what is missing.
type RawRequest struct {
	ClientInfo   *RawClientInfo   `json:"clientInfo"`
	ProjectInfo  *RawProjectInfo  `json:"projectInfo"`
	Requirements *RawRequirements `json:"requirements"`
}

// RawClientInfo is the contact block of a submission.
type RawClientInfo struct {
	Name    Text `json:"name"`
	Email   Text `json:"email"`
	Phone   Text `json:"phone"`
	Address Text `json:"address"`
}

// RawProjectInfo is the project block of a submission. Older clients send
// gameType instead of sport.
type RawProjectInfo struct {
	ConstructionType Text   `json:"constructionType"`
	Sport            Text   `json:"sport"`
	GameType         Text   `json:"gameType"`
	CourtSize        Text   `json:"courtSize"`
	CustomArea       Number `json:"customArea"`
	CourtType        Text   `json:"courtType"`
}

// RawRequirements is the requirements block of a submission.
// AdditionalFeatures is kept raw because it is either an object of named
// features or an array of priced extras depending on the client generation.
type RawRequirements struct {
	Base               *RawSurface        `json:"base"`
	Flooring           *RawSurface        `json:"flooring"`
	Equipment          []RawEquipmentItem `json:"equipment"`
	AdditionalFeatures json.RawMessage    `json:"additionalFeatures"`
	Lighting           *RawFeature        `json:"lighting"`
	Roof               *RawFeature        `json:"roof"`
}

// RawSurface is a base or flooring selection.
type RawSurface struct {
	Type Text   `json:"type"`
	Area Number `json:"area"`
}

// RawEquipmentItem is one equipment line chosen by the client.
type RawEquipmentItem struct {
	ID        Text   `json:"id"`
	Name      Text   `json:"name"`
	Quantity  Number `json:"quantity"`
	UnitCost  Number `json:"unitCost"`
	TotalCost Number `json:"totalCost"`
}

// RawFeature is an optional add-on in either the current or legacy shape.
type RawFeature struct {
	Required Flag   `json:"required"`
	Type     Text   `json:"type"`
	Area     Number `json:"area"`
	Length   Number `json:"length"`
	Quantity Number `json:"quantity"`
}

// RawFeatureSet is the object form of additionalFeatures.
type RawFeatureSet struct {
	Drainage *RawFeature `json:"drainage"`
	Fencing  *RawFeature `json:"fencing"`
	Lighting *RawFeature `json:"lighting"`
	Shed     *RawFeature `json:"shed"`
}

// RawLegacyFeature is one element of the array form of additionalFeatures.
type RawLegacyFeature struct {
	ID   Text   `json:"id"`
	Name Text   `json:"name"`
	Type Text   `json:"type"`
	Cost Number `json:"cost"`
}

// FeatureShape records which add-on representation a request used.
type FeatureShape string

// Feature shapes.
const (
	ShapeNone    FeatureShape = "none"
	ShapeCurrent FeatureShape = "current"
	ShapeLegacy  FeatureShape = "legacy"
)

// Request is a validated, canonical quotation request.
type Request struct {
	ClientInfo   ClientInfo   `json:"clientInfo"`
	ProjectInfo  ProjectInfo  `json:"projectInfo"`
	Requirements Requirements `json:"requirements"`
}

// ClientInfo holds trimmed contact details.
type ClientInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// ProjectInfo describes the court being quoted. GameType always equals Sport.
type ProjectInfo struct {
	ConstructionType string  `json:"constructionType"`
	Sport            string  `json:"sport"`
	GameType         string  `json:"gameType"`
	CourtSize        string  `json:"courtSize"`
	CustomArea       float64 `json:"customArea"`
	CourtType        string  `json:"courtType"`
}

// Surface is a base or flooring selection.
type Surface struct {
	Type string  `json:"type"`
	Area float64 `json:"area"`
}

// EquipmentItem is one priced equipment line.
type EquipmentItem struct {
	ID        string  `json:"id,omitempty"`
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	UnitCost  float64 `json:"unitCost"`
	TotalCost float64 `json:"totalCost"`
}

// Feature is an optional add-on.
type Feature struct {
	Required bool    `json:"required"`
	Type     string  `json:"type,omitempty"`
	Area     float64 `json:"area,omitempty"`
	Length   float64 `json:"length,omitempty"`
	Quantity float64 `json:"quantity,omitempty"`
}

// Active reports whether the feature is required and names a type.
func (f Feature) Active() bool { return f.Required && f.Type != "" }

// FeatureSet is the named add-on block.
type FeatureSet struct {
	Drainage Feature `json:"drainage"`
	Fencing  Feature `json:"fencing"`
	Lighting Feature `json:"lighting"`
	Shed     Feature `json:"shed"`
}

// LegacyFeature is a client-priced extra from older clients.
type LegacyFeature struct {
	ID   string  `json:"id,omitempty"`
	Name string  `json:"name,omitempty"`
	Type string  `json:"type,omitempty"`
	Cost float64 `json:"cost"`
}

// Requirements is the canonical requirements block. Both add-on families
// are always populated; FeatureShape says which one prices the quotation.
type Requirements struct {
	Base               Surface         `json:"base"`
	Flooring           Surface         `json:"flooring"`
	Equipment          []EquipmentItem `json:"equipment"`
	AdditionalFeatures FeatureSet      `json:"additionalFeatures"`
	LegacyFeatures     []LegacyFeature `json:"legacyFeatures"`
	Lighting           Feature         `json:"lighting"`
	Roof               Feature         `json:"roof"`
	FeatureShape       FeatureShape    `json:"featureShape"`
}
