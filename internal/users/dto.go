package users

import (
	"strings"
	"time"
)

// UserDTO is the transport shape of a user record. Field names match the
// stored document so data written by earlier deployments stays readable.
type UserDTO struct {
	UID              string           `json:"uid"`
	Email            string           `json:"email"`
	DisplayName      string           `json:"displayName"`
	IngredientCounts map[string]int64 `json:"ingredientCounts"`
	ScanHistory      []ScanSummary    `json:"scanHistory"`
}

// ScanSummary is one append-only scan-history entry. The timestamp is
// server-assigned at append time, never client-supplied.
type ScanSummary struct {
	ScanID          string    `json:"scanId"`
	Timestamp       time.Time `json:"timestamp"`
	IngredientNames []string  `json:"ingredientNames"`
}

// TopIngredient pairs an ingredient name with its accumulated scan count.
type TopIngredient struct {
	IngredientName string `json:"ingredientName"`
	Count          int64  `json:"count"`
}

// NewProfile builds a fresh record for a verified identity. The display name
// defaults to the local part of the email address.
func NewProfile(uid, email string) *UserDTO {
	return &UserDTO{
		UID:              uid,
		Email:            email,
		DisplayName:      displayNameFromEmail(email),
		IngredientCounts: map[string]int64{},
		ScanHistory:      []ScanSummary{},
	}
}

func displayNameFromEmail(email string) string {
	local, _, found := strings.Cut(email, "@")
	if !found || local == "" {
		return email
	}
	return local
}
