package team

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors
var (
	ErrEmptyName       = errors.New("team name cannot be empty")
	ErrInvalidOrdinal  = errors.New("team ordinal must be positive")
	ErrInvalidDivision = errors.New("division must be a known division code")
	ErrInvalidPackage  = errors.New("package must be a known package code")
)

// Division codes for the race series.
const (
	DivisionOpen  = "open"
	DivisionWomen = "women"
	DivisionMixed = "mixed"
	DivisionFun   = "fun"
)

// ValidDivisions lists the accepted division codes.
var ValidDivisions = []string{DivisionOpen, DivisionWomen, DivisionMixed, DivisionFun}

// Package codes: what the entry fee includes.
const (
	PackageBasic    = "basic"
	PackageStandard = "standard"
	PackagePremium  = "premium"
)

// ValidPackages lists the accepted package codes.
var ValidPackages = []string{PackageBasic, PackageStandard, PackagePremium}

// MaxTeamsPerRegistration caps how many teams one registration may enter.
const MaxTeamsPerRegistration = 10

// Team is one roster entry in a registration. Teams are created when the
// user sets a team count and are only ever cleared as a whole set, never
// deleted individually.
type Team struct {
	Ordinal  int
	Name     string
	Division string
	Package  string
}

// Key derives the short identifier scoping all practice data to this team.
// PRE: Ordinal >= 1
func (t Team) Key() string {
	return Key(t.Ordinal)
}

// Key builds a team key from a 1-based ordinal.
func Key(ordinal int) string {
	return fmt.Sprintf("t%d", ordinal)
}

// Validate checks if the Team has valid data.
// PRE: Team struct is populated
// POST: Returns nil if valid, error otherwise
func (t Team) Validate() error {
	if t.Ordinal < 1 {
		return ErrInvalidOrdinal
	}
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if !contains(ValidDivisions, t.Division) {
		return ErrInvalidDivision
	}
	if !contains(ValidPackages, t.Package) {
		return ErrInvalidPackage
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
