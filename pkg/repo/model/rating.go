package model

type RatingKind string

const (
	RatingDrug    RatingKind = "drug"
	RatingWebsite RatingKind = "website"
)

func (k RatingKind) Valid() bool {
	return k == RatingDrug || k == RatingWebsite
}

// RatingInput is what a user submits. Timestamp, device id and verification
// are stamped on write.
type RatingInput struct {
	Rating            int    `json:"rating"`
	Comment           string `json:"comment"`
	UserName          string `json:"userName"`
	Governorate       string `json:"governorate"`
	IsPharmacist      bool   `json:"isPharmacist"`
	PharmacyName      string `json:"pharmacyName,omitempty"`
	ProfilePictureURL string `json:"profilePictureUrl,omitempty"`
}

type Rating struct {
	ID     string `json:"id,omitempty"`
	DrugID string `json:"drugId,omitempty"`
	RatingInput
	Timestamp  string `json:"timestamp"`
	DeviceID   string `json:"deviceId"`
	IsVerified bool   `json:"isVerified"`
}

// RatingUpdate is an admin patch; nil fields are left untouched.
type RatingUpdate struct {
	IsVerified *bool   `json:"isVerified,omitempty"`
	Comment    *string `json:"comment,omitempty"`
	Rating     *int    `json:"rating,omitempty"`
}
