// Package normalize validates client submissions and maps both generations
// of the request format onto model.Request.
package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/okian/courtquote/internal/domain/model"
)

// Defaults applied to optional project fields.
const (
	DefaultConstructionType = "standard"
	DefaultCourtSize        = "standard"
	DefaultCourtType        = "outdoor"
)

// Decode parses a request body. Unknown fields are ignored.
func Decode(data []byte) (model.RawRequest, error) {
	var raw model.RawRequest
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return raw, ErrMalformedRequest
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return raw, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}
	return raw, nil
}

// Normalize validates raw and returns the canonical request. Checks run in
// a fixed order and the first failure is returned.
func Normalize(raw model.RawRequest) (model.Request, error) {
	client, err := clientInfo(raw.ClientInfo)
	if err != nil {
		return model.Request{}, err
	}
	project, err := projectInfo(raw.ProjectInfo)
	if err != nil {
		return model.Request{}, err
	}
	reqs, err := requirements(raw.Requirements)
	if err != nil {
		return model.Request{}, err
	}
	return model.Request{
		ClientInfo:   client,
		ProjectInfo:  project,
		Requirements: reqs,
	}, nil
}

func clientInfo(raw *model.RawClientInfo) (model.ClientInfo, error) {
	if raw == nil {
		return model.ClientInfo{}, ErrMissingClientInfo
	}
	c := model.ClientInfo{
		Name:    raw.Name.Trimmed(),
		Email:   raw.Email.Trimmed(),
		Phone:   raw.Phone.Trimmed(),
		Address: raw.Address.Trimmed(),
	}
	if c.Name == "" || c.Email == "" || c.Phone == "" || c.Address == "" {
		return model.ClientInfo{}, ErrMissingClientInfo
	}
	return c, nil
}

func projectInfo(raw *model.RawProjectInfo) (model.ProjectInfo, error) {
	if raw == nil {
		return model.ProjectInfo{}, ErrMissingSport
	}
	sport := raw.Sport.Trimmed()
	if sport == "" {
		sport = raw.GameType.Trimmed()
	}
	if sport == "" {
		return model.ProjectInfo{}, ErrMissingSport
	}
	return model.ProjectInfo{
		ConstructionType: orDefault(raw.ConstructionType.Trimmed(), DefaultConstructionType),
		Sport:            sport,
		GameType:         sport,
		CourtSize:        orDefault(raw.CourtSize.Trimmed(), DefaultCourtSize),
		CustomArea:       raw.CustomArea.Float(),
		CourtType:        orDefault(raw.CourtType.Trimmed(), DefaultCourtType),
	}, nil
}

func requirements(raw *model.RawRequirements) (model.Requirements, error) {
	if raw == nil || raw.Base == nil || raw.Flooring == nil {
		return model.Requirements{}, ErrMissingRequirements
	}
	base, flooring := surface(raw.Base), surface(raw.Flooring)
	if base.Type == "" || flooring.Type == "" {
		return model.Requirements{}, ErrMissingRequirements
	}

	r := model.Requirements{
		Base:           base,
		Flooring:       flooring,
		Equipment:      equipment(raw.Equipment),
		LegacyFeatures: []model.LegacyFeature{},
	}
	if err := features(raw, &r); err != nil {
		return model.Requirements{}, err
	}
	return r, nil
}

func surface(raw *model.RawSurface) model.Surface {
	return model.Surface{Type: raw.Type.Trimmed(), Area: raw.Area.Float()}
}

func equipment(raw []model.RawEquipmentItem) []model.EquipmentItem {
	items := make([]model.EquipmentItem, 0, len(raw))
	for _, it := range raw {
		items = append(items, model.EquipmentItem{
			ID:        it.ID.Trimmed(),
			Name:      it.Name.Trimmed(),
			Quantity:  it.Quantity.Float(),
			UnitCost:  it.UnitCost.Float(),
			TotalCost: it.TotalCost.Float(),
		})
	}
	return items
}

// features detects the add-on shape and fills both families. The object
// form wins over the legacy lighting and roof blocks when both are sent.
func features(raw *model.RawRequirements, r *model.Requirements) error {
	lighting, roof := feature(raw.Lighting), feature(raw.Roof)

	switch detectShape(raw) {
	case model.ShapeCurrent:
		var set model.RawFeatureSet
		if err := json.Unmarshal(raw.AdditionalFeatures, &set); err != nil {
			return fmt.Errorf("%w: additionalFeatures: %v", ErrMalformedRequest, err)
		}
		r.FeatureShape = model.ShapeCurrent
		r.AdditionalFeatures = model.FeatureSet{
			Drainage: feature(set.Drainage),
			Fencing:  feature(set.Fencing),
			Lighting: feature(set.Lighting),
			Shed:     feature(set.Shed),
		}
		if raw.Lighting == nil {
			lighting = r.AdditionalFeatures.Lighting
		}
		if raw.Roof == nil {
			roof = r.AdditionalFeatures.Shed
		}
	case model.ShapeLegacy:
		r.FeatureShape = model.ShapeLegacy
		if isArray(raw.AdditionalFeatures) {
			var extras []model.RawLegacyFeature
			if err := json.Unmarshal(raw.AdditionalFeatures, &extras); err != nil {
				return fmt.Errorf("%w: additionalFeatures: %v", ErrMalformedRequest, err)
			}
			for _, e := range extras {
				r.LegacyFeatures = append(r.LegacyFeatures, model.LegacyFeature{
					ID:   e.ID.Trimmed(),
					Name: e.Name.Trimmed(),
					Type: e.Type.Trimmed(),
					Cost: e.Cost.Float(),
				})
			}
		}
		r.AdditionalFeatures = model.FeatureSet{Lighting: lighting, Shed: roof}
	default:
		r.FeatureShape = model.ShapeNone
	}

	r.Lighting, r.Roof = lighting, roof
	return nil
}

func detectShape(raw *model.RawRequirements) model.FeatureShape {
	af := bytes.TrimSpace(raw.AdditionalFeatures)
	switch {
	case len(af) > 0 && af[0] == '{':
		return model.ShapeCurrent
	case len(af) > 0 && af[0] == '[':
		return model.ShapeLegacy
	case raw.Lighting != nil || raw.Roof != nil:
		return model.ShapeLegacy
	default:
		return model.ShapeNone
	}
}

func isArray(b json.RawMessage) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '['
}

func feature(raw *model.RawFeature) model.Feature {
	if raw == nil {
		return model.Feature{}
	}
	return model.Feature{
		Required: bool(raw.Required),
		Type:     raw.Type.Trimmed(),
		Area:     raw.Area.Float(),
		Length:   raw.Length.Float(),
		Quantity: raw.Quantity.Float(),
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
