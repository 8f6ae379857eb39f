package model

// Sector 热门板块
type Sector struct {
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	ChangePercent float64 `json:"change_percent"`
	Amount        float64 `json:"amount"`
}

// SectorStock 板块成分股
type SectorStock struct {
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	Current       float64 `json:"current"`
	ChangePercent float64 `json:"change_percent"`
	Volume        int64   `json:"volume"`
	Amount        float64 `json:"amount"`
	SectorName    string  `json:"sector_name"`
	SectorChange  float64 `json:"sector_change"`
}

// IndexQuote 大盘指数
type IndexQuote struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Current       float64 `json:"current"`
	PrevClose     float64 `json:"prev_close"`
	ChangePercent float64 `json:"change_percent"`
}
