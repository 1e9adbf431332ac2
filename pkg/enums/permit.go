package enums

import (
	"fmt"
	"strings"
)

// PermitType distinguishes tree cutting permits from transport permits.
type PermitType string

const (
	PermitTypeCut       PermitType = "cut"
	PermitTypeTransport PermitType = "transport"
)

// IsValid reports whether the value is a known permit type.
func (p PermitType) IsValid() bool {
	return p == PermitTypeCut || p == PermitTypeTransport
}

// ParsePermitType converts raw input into PermitType.
func ParsePermitType(value string) (PermitType, error) {
	candidate := PermitType(strings.ToLower(strings.TrimSpace(value)))
	if candidate.IsValid() {
		return candidate, nil
	}
	return "", fmt.Errorf("invalid permit type %q", value)
}

// Municipality is the closed set of municipalities served by the regional office.
type Municipality string

const (
	MunicipalityBoac       Municipality = "Boac"
	MunicipalityBuenavista Municipality = "Buenavista"
	MunicipalityGasan      Municipality = "Gasan"
	MunicipalityMogpog     Municipality = "Mogpog"
	MunicipalitySantaCruz  Municipality = "Santa Cruz"
	MunicipalityTorrijos   Municipality = "Torrijos"
)

var validMunicipalities = []Municipality{
	MunicipalityBoac,
	MunicipalityBuenavista,
	MunicipalityGasan,
	MunicipalityMogpog,
	MunicipalitySantaCruz,
	MunicipalityTorrijos,
}

// IsValid reports whether the value is a served municipality.
func (m Municipality) IsValid() bool {
	for _, candidate := range validMunicipalities {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMunicipality matches case-insensitively and returns the canonical spelling.
func ParseMunicipality(value string) (Municipality, error) {
	trimmed := strings.TrimSpace(value)
	for _, candidate := range validMunicipalities {
		if strings.EqualFold(string(candidate), trimmed) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid municipality %q", value)
}

// Municipalities returns the served municipalities in display order.
func Municipalities() []Municipality {
	out := make([]Municipality, len(validMunicipalities))
	copy(out, validMunicipalities)
	return out
}
