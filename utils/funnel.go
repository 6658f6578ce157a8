package utils

// FunnelStats are the simulated delivery counts for a campaign run
type FunnelStats struct {
	Delivered int `json:"delivered"`
	Opened    int `json:"opened"`
	Clicked   int `json:"clicked"`
	Responded int `json:"responded"`
	Converted int `json:"converted"`
}

// Funnel stage fractions, each applied to the previous stage
const (
	deliveryRate   = 0.95
	openRate       = 0.40
	clickRate      = 0.20
	responseRate   = 0.30
	conversionRate = 0.10
)

// SimulateFunnel produces the delivery funnel for a prospect count. Each
// stage is a fixed fraction of the previous one, floored, so the stages are
// non-increasing and a zero input yields all zeros.
func SimulateFunnel(totalProspects int) FunnelStats {
	if totalProspects <= 0 {
		return FunnelStats{}
	}

	delivered := int(float64(totalProspects) * deliveryRate)
	opened := int(float64(delivered) * openRate)
	clicked := int(float64(opened) * clickRate)
	responded := int(float64(clicked) * responseRate)
	converted := int(float64(responded) * conversionRate)

	return FunnelStats{
		Delivered: delivered,
		Opened:    opened,
		Clicked:   clicked,
		Responded: responded,
		Converted: converted,
	}
}
