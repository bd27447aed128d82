package model

// RawRecord is an untyped RemoteStore object, as decoded from JSON.
type RawRecord = map[string]any

// Drug is the canonical display record produced from a RemoteStore entry.
type Drug struct {
	ID                     string   `json:"id"`
	Name                   string   `json:"name"`
	NewPrice               float64  `json:"newPrice"`
	OldPrice               float64  `json:"oldPrice"`
	No                     string   `json:"no"`
	UpdateDate             string   `json:"updateDate"`
	PriceChange            float64  `json:"priceChange"`
	PriceChangePercent     float64  `json:"priceChangePercent"`
	OriginalOrder          int      `json:"originalOrder"`
	ActiveIngredient       *string  `json:"activeIngredient,omitempty"`
	AverageDiscountPercent *float64 `json:"averageDiscountPercent,omitempty"`
	DrugDetails
}

// DrugDetails are the optional descriptive fields of the extended record.
type DrugDetails struct {
	Manufacturer      *string  `json:"manufacturer,omitempty"`
	Category          *string  `json:"category,omitempty"`
	Description       *string  `json:"description,omitempty"`
	Dosage            *string  `json:"dosage,omitempty"`
	SideEffects       *string  `json:"sideEffects,omitempty"`
	Contraindications *string  `json:"contraindications,omitempty"`
	Interactions      *string  `json:"interactions,omitempty"`
	StorageConditions *string  `json:"storageConditions,omitempty"`
	ExpiryWarning     *float64 `json:"expiryWarning,omitempty"`
	ImageURL          *string  `json:"imageUrl,omitempty"`
	Barcode           *string  `json:"barcode,omitempty"`
	IsAvailable       *bool    `json:"isAvailable,omitempty"`
	PharmacyNotes     *string  `json:"pharmacyNotes,omitempty"`
}

func (d *Drug) IsIncrease() bool {
	return d.PriceChange > 0
}

func (d *Drug) IsDecrease() bool {
	return d.PriceChange < 0
}

// LocalDrug is the slim drug shape kept in the Local Mirror.
type LocalDrug struct {
	ID                     string   `json:"id"`
	Name                   string   `json:"name"`
	NewPrice               float64  `json:"newPrice"`
	OldPrice               float64  `json:"oldPrice"`
	No                     string   `json:"no"`
	UpdateDate             string   `json:"updateDate"`
	ActiveIngredient       *string  `json:"activeIngredient,omitempty"`
	AverageDiscountPercent *float64 `json:"averageDiscountPercent,omitempty"`
}
