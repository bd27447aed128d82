package model

type ShortageStatus string

const (
	ShortageCritical ShortageStatus = "critical"
	ShortageModerate ShortageStatus = "moderate"
	ShortageResolved ShortageStatus = "resolved"
)

func (s ShortageStatus) Valid() bool {
	switch s {
	case ShortageCritical, ShortageModerate, ShortageResolved:
		return true
	}
	return false
}

// Shortage is a reported supply problem. DrugName is free text and is not
// resolved against the drug collection.
type Shortage struct {
	ID             string         `json:"id,omitempty"`
	DrugID         string         `json:"drugId,omitempty"`
	DrugName       string         `json:"drugName"`
	Reason         string         `json:"reason"`
	Status         ShortageStatus `json:"status"`
	ReportDate     string         `json:"reportDate"`
	LastUpdateDate string         `json:"lastUpdateDate"`
	ReportedBy     string         `json:"reportedBy,omitempty"`
}

type ShortageUpdate struct {
	DrugName       *string         `json:"drugName,omitempty"`
	Reason         *string         `json:"reason,omitempty"`
	Status         *ShortageStatus `json:"status,omitempty"`
	ReportedBy     *string         `json:"reportedBy,omitempty"`
	LastUpdateDate string          `json:"lastUpdateDate"`
}

type LocalShortage struct {
	ID             string         `json:"id"`
	DrugName       string         `json:"drugName"`
	Reason         string         `json:"reason"`
	Status         ShortageStatus `json:"status"`
	ReportDate     string         `json:"reportDate"`
	LastUpdateDate string         `json:"lastUpdateDate"`
}
