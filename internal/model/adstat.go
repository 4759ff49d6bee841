package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdCampaign is an advertising campaign on the external ad platform.
type AdCampaign struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Status    string    `json:"status" db:"status"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// AdStatistic holds one day of click and cost figures for a campaign.
type AdStatistic struct {
	CampaignID  int64           `json:"campaignId" db:"campaign_id"`
	Date        time.Time       `json:"date" db:"date"`
	Impressions int64           `json:"impressions" db:"impressions"`
	Clicks      int64           `json:"clicks" db:"clicks"`
	Cost        decimal.Decimal `json:"cost" db:"cost"`
}
