package search

import (
	"fmt"
	"strings"

	"github.com/wrenchwise/autosearch/models"
)

// intentScope fixes the source domains and result budget for one intent.
type intentScope struct {
	domains    []string
	maxResults int
}

var intentScopes = map[models.Intent]intentScope{
	models.IntentParts: {
		domains: []string{
			"autozone.com", "oreillyauto.com", "rockauto.com",
			"partsgeek.com", "advanceautoparts.com", "napaonline.com",
		},
		maxResults: 5,
	},
	models.IntentLaborRates: {
		domains: []string{
			"repairpal.com", "yourmechanic.com", "fixd.com",
		},
		maxResults: 3,
	},
	models.IntentProcedures: {
		domains: []string{
			"youtube.com", "ifixit.com", "2carpros.com", "charm.li",
		},
		maxResults: 4,
	},
	models.IntentVINLookup: {
		domains: []string{
			"vehiclehistory.com", "vindecoderz.com", "nhtsa.gov",
		},
		maxResults: 3,
	},
}

// scopeFor returns the scope for an intent, defaulting to the parts scope
// for unknown values so a bad intent degrades instead of failing.
func scopeFor(intent models.Intent) intentScope {
	if scope, ok := intentScopes[intent]; ok {
		return scope
	}
	return intentScopes[models.IntentParts]
}

// ComposeQuery enriches free-form query text with vehicle context when
// available. Unscoped queries measurably hurt downstream relevance, so a
// generic automotive qualifier is applied when no vehicle is known.
func ComposeQuery(queryText string, vehicle models.VehicleContext) string {
	queryText = strings.TrimSpace(queryText)
	if vehicle.Empty() {
		return fmt.Sprintf("%s automotive car repair", queryText)
	}

	parts := make([]string, 0, 4)
	if vehicle.Year > 0 {
		parts = append(parts, fmt.Sprintf("%d", vehicle.Year))
	}
	if vehicle.Make != "" {
		parts = append(parts, vehicle.Make)
	}
	if vehicle.Model != "" {
		parts = append(parts, vehicle.Model)
	}
	parts = append(parts, queryText)
	return strings.Join(parts, " ")
}
