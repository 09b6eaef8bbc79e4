package data

// MarketInfo describes an electricity market available for simulation.
type MarketInfo struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	DayAheadDataset string `json:"day_ahead_dataset"`
	RealTimeDataset string `json:"real_time_dataset"`
	Resolution      string `json:"resolution"`
}

// SupportedMarkets returns the curated list of markets the simulation can
// run against. PJM is the only market wired up today; the list exists so
// the API shape doesn't change when more ISOs are added.
func SupportedMarkets() []MarketInfo {
	return []MarketInfo{
		{
			Name:            "PJM",
			Description:     "PJM Interconnection (Western Hub)",
			DayAheadDataset: "pjm_lmp_day_ahead_hourly",
			RealTimeDataset: "pjm_lmp_real_time_5_min",
			Resolution:      "hourly DA / 5-minute RT",
		},
	}
}
