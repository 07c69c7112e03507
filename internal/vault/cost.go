package vault

import "math"

// Pricing configures storage cost estimation. Zero values fall back to the
// defaults below.
type Pricing struct {
	StorageUSDPerGBMonth  float64 `yaml:"storage_usd_per_gb_month" json:"storage_usd_per_gb_month"`
	RequestUSDPer10K      float64 `yaml:"request_usd_per_10k" json:"request_usd_per_10k"`
	EstimatedRequestsPerM int     `yaml:"estimated_requests_per_month" json:"estimated_requests_per_month"`
}

// DefaultPricing mirrors commodity object-storage list prices.
func DefaultPricing() Pricing {
	return Pricing{
		StorageUSDPerGBMonth:  0.023,
		RequestUSDPer10K:      0.05,
		EstimatedRequestsPerM: 1000,
	}
}

// CostEstimate is the monthly cost breakdown for one stored payload.
type CostEstimate struct {
	Bytes               int64   `json:"bytes"`
	Redundancy          int     `json:"redundancy"`
	MonthlyStorageUSD   float64 `json:"monthly_storage_usd"`
	EstimatedRequestUSD float64 `json:"estimated_request_usd"`
	TotalEstimatedUSD   float64 `json:"total_estimated_usd"`
}

// EstimateStorageCost is pure arithmetic over a byte count: no side effects,
// no I/O. redundancy defaults to 3 replicas.
func EstimateStorageCost(bytes int64, redundancy int, pricing Pricing) CostEstimate {
	if redundancy <= 0 {
		redundancy = 3
	}
	def := DefaultPricing()
	if pricing.StorageUSDPerGBMonth == 0 {
		pricing.StorageUSDPerGBMonth = def.StorageUSDPerGBMonth
	}
	if pricing.RequestUSDPer10K == 0 {
		pricing.RequestUSDPer10K = def.RequestUSDPer10K
	}
	if pricing.EstimatedRequestsPerM == 0 {
		pricing.EstimatedRequestsPerM = def.EstimatedRequestsPerM
	}

	gb := float64(bytes) / (1024 * 1024 * 1024)
	storage := gb * float64(redundancy) * pricing.StorageUSDPerGBMonth
	requests := float64(pricing.EstimatedRequestsPerM) / 10000 * pricing.RequestUSDPer10K

	return CostEstimate{
		Bytes:               bytes,
		Redundancy:          redundancy,
		MonthlyStorageUSD:   round6(storage),
		EstimatedRequestUSD: round6(requests),
		TotalEstimatedUSD:   round6(storage + requests),
	}
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
