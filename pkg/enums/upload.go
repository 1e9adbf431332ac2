package enums

import (
	"fmt"
	"strings"
)

// UploadKind says what an uploaded file will be attached to.
type UploadKind string

const (
	UploadKindIdentity UploadKind = "identity"
	UploadKindQRCode   UploadKind = "qr"
	UploadKindProduct  UploadKind = "product"
	UploadKindChat     UploadKind = "chat"
)

func (k UploadKind) IsValid() bool {
	switch k {
	case UploadKindIdentity, UploadKindQRCode, UploadKindProduct, UploadKindChat:
		return true
	}
	return false
}

// ParseUploadKind converts raw input into UploadKind.
func ParseUploadKind(value string) (UploadKind, error) {
	candidate := UploadKind(strings.ToLower(strings.TrimSpace(value)))
	if candidate.IsValid() {
		return candidate, nil
	}
	return "", fmt.Errorf("invalid upload kind %q", value)
}

// Role is the actor role carried in bearer tokens.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleSeller Role = "seller"
	RoleBuyer  Role = "buyer"
)

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleSeller || r == RoleBuyer
}
