package enums

import (
	"fmt"
	"strings"
)

// ApplicationType distinguishes first-time registrations from renewals.
type ApplicationType string

const (
	ApplicationTypeNew     ApplicationType = "new"
	ApplicationTypeRenewal ApplicationType = "renewal"
)

func (a ApplicationType) IsValid() bool {
	return a == ApplicationTypeNew || a == ApplicationTypeRenewal
}

// ParseApplicationType converts raw input into ApplicationType; empty means new.
func ParseApplicationType(value string) (ApplicationType, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return ApplicationTypeNew, nil
	}
	candidate := ApplicationType(trimmed)
	if candidate.IsValid() {
		return candidate, nil
	}
	return "", fmt.Errorf("invalid application type %q", value)
}
