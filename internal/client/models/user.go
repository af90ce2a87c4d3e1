// Package models defines the client-side data models of the ordering API.
package models

import "fmt"

// Tier is the pricing tier of an account.
type Tier string

const (
	TierStandard Tier = "standard"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierStandard, TierGold, TierPlatinum:
		return true
	}
	return false
}

// Identity is the user profile returned by login and signup.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Tier  Tier   `json:"tier"`
}

func (i Identity) String() string {
	return fmt.Sprintf("%s (%s)", i.Email, i.Tier)
}

// SignupProfile is the registration payload.
type SignupProfile struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	CompanyName   string `json:"companyName"`
	LicenseNumber string `json:"licenseNumber"`
}
