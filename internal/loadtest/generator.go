package loadtest

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/okian/courtquote/pkg/logger"
)

// Ranges for generated quantities.
const (
	customAreaMin   = 100
	customAreaRange = 900
	fenceLengthMin  = 40
	fenceLengthSpan = 160
	maxLights       = 8
	maxKitItems     = 2
	maxItemQuantity = 3
	legacyExtraCost = 5000
)

// randomInt returns a uniform value in [0, n) using crypto/rand.
func randomInt(n int) int {
	if n <= 0 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

// chance reports true with the given percentage.
func chance(percent int) bool {
	return randomInt(PercentageMultiplier) < percent
}

func pick(keys []string) string {
	if len(keys) == 0 {
		return ""
	}
	return keys[randomInt(len(keys))]
}

func sortedKeys(m map[string]float64) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func keysWithSuffix(m map[string]float64, suffix string) []string {
	var out []string
	for _, k := range sortedKeys(m) {
		if strings.HasSuffix(k, suffix) {
			out = append(out, k)
		}
	}
	return out
}

// generateRequests builds the submissions for a run. Replays reuse the key
// and body of an earlier request and are placed after all originals.
func generateRequests(ctx context.Context, config *Config, pricing Pricing, sports []string, stats *Stats) ([]Request, error) {
	if len(sports) == 0 {
		return nil, fmt.Errorf("no sports offered")
	}
	logger.Get().Info(ctx, "generating quotation requests", logger.Int("count", config.NumQuotations))

	requests := make([]Request, 0, config.NumQuotations)
	for i := 0; i < config.NumQuotations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during generation: %w", err)
		}
		legacy := chance(config.LegacyPercent)
		requests = append(requests, Request{
			IdempotencyKey: uuid.NewString(),
			Legacy:         legacy,
			Body:           generateBody(i, pick(sports), legacy, pricing),
		})
	}

	originals := len(requests)
	for i := 0; i < originals; i++ {
		if chance(config.ReplayPercent) {
			replay := requests[i]
			replay.Replay = true
			requests = append(requests, replay)
		}
	}

	stats.RequestsGenerated = len(requests)
	logger.Get().Info(ctx, "generated requests",
		logger.Int("originals", originals),
		logger.Int("replays", len(requests)-originals))
	return requests, nil
}

// generateBody creates one request body priced against the live catalog.
func generateBody(index int, sport string, legacy bool, pricing Pricing) map[string]any {
	project := map[string]any{"constructionType": "standard"}
	if chance(20) {
		project["constructionType"] = "custom"
		project["customArea"] = customAreaMin + randomInt(customAreaRange)
	}
	if legacy {
		project["gameType"] = sport
	} else {
		project["sport"] = sport
	}

	requirements := map[string]any{
		"base":      map[string]any{"type": pick(sortedKeys(pricing.Base))},
		"flooring":  map[string]any{"type": pick(sortedKeys(pricing.Flooring))},
		"equipment": generateEquipment(sport, pricing),
	}
	if chance(50) {
		requirements["lighting"] = map[string]any{
			"required": true,
			"type":     pick(sortedKeys(pricing.Lighting)),
			"quantity": 1 + randomInt(maxLights),
		}
	}
	if chance(30) {
		requirements["roof"] = map[string]any{
			"required": true,
			"type":     pick(sortedKeys(pricing.Roof)),
		}
	}

	body := map[string]any{
		"clientInfo": map[string]any{
			"name":    fmt.Sprintf("Load Test Client %d", index),
			"email":   fmt.Sprintf("client%d@example.com", index),
			"phone":   fmt.Sprintf("9%09d", index),
			"address": fmt.Sprintf("%d Test Street, Bangalore", index+1),
		},
		"projectInfo":  project,
		"requirements": requirements,
	}

	if legacy {
		requirements["additionalFeatures"] = []map[string]any{
			{"id": "drainage", "name": "Drainage", "type": "drainage-system", "cost": 0},
			{"id": "custom", "name": "Site Levelling", "type": "custom", "cost": legacyExtraCost},
		}
		return body
	}

	features := map[string]any{"drainage": map[string]any{"required": chance(50)}}
	if fences := keysWithSuffix(pricing.AdditionalFeatures, "-fencing"); len(fences) > 0 && chance(50) {
		features["fencing"] = map[string]any{
			"required": true,
			"type":     pick(fences),
			"length":   fenceLengthMin + randomInt(fenceLengthSpan),
		}
	}
	if sheds := keysWithSuffix(pricing.AdditionalFeatures, "-shed"); len(sheds) > 0 && chance(20) {
		features["shed"] = map[string]any{"required": true, "type": pick(sheds)}
	}
	requirements["additionalFeatures"] = features
	return body
}

// generateEquipment picks catalog items whose key starts with the sport name.
func generateEquipment(sport string, pricing Pricing) []map[string]any {
	prefix := strings.SplitN(sport, "-", 2)[0]
	var candidates []string
	for _, k := range sortedKeys(pricing.Equipment) {
		if strings.HasPrefix(k, prefix) {
			candidates = append(candidates, k)
		}
	}

	items := []map[string]any{}
	for i := 0; i < maxKitItems && i < len(candidates); i++ {
		id := candidates[i]
		qty := 1 + randomInt(maxItemQuantity)
		unit := pricing.Equipment[id]
		items = append(items, map[string]any{
			"id":        id,
			"name":      id,
			"quantity":  qty,
			"unitCost":  unit,
			"totalCost": unit * float64(qty),
		})
	}
	return items
}
