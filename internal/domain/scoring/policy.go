package scoring

import (
	"github.com/riskibarqy/fantasy-cycling/internal/domain/result"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/roster"
)

// SettlementPolicy lists the result sets that must be final before a race
// can be settled. Junior sets are tracked but only gate settlement when listed.
type SettlementPolicy struct {
	RequiredSets []result.SetKey
}

func DefaultSettlementPolicy() SettlementPolicy {
	return SettlementPolicy{
		RequiredSets: []result.SetKey{
			{Category: result.CategoryElite, Gender: roster.GenderMale},
			{Category: result.CategoryElite, Gender: roster.GenderFemale},
		},
	}
}

// Missing returns required sets without a final import, in policy order.
func (p SettlementPolicy) Missing(imports []result.Import) []result.SetKey {
	final := make(map[result.SetKey]struct{}, len(imports))
	for _, item := range imports {
		if item.IsFinal {
			final[item.Key()] = struct{}{}
		}
	}

	missing := make([]result.SetKey, 0)
	for _, key := range p.RequiredSets {
		if _, ok := final[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}

func (p SettlementPolicy) Complete(imports []result.Import) bool {
	return len(p.Missing(imports)) == 0
}
