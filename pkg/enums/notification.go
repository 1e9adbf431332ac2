package enums

import "fmt"

// NotificationType classifies in-app notifications.
type NotificationType string

const (
	NotificationTypeProductApproved    NotificationType = "product_approved"
	NotificationTypeProductRejected    NotificationType = "product_rejected"
	NotificationTypeRegistrationUpdate NotificationType = "registration_update"
	NotificationTypeSystem             NotificationType = "system"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeProductApproved,
	NotificationTypeProductRejected,
	NotificationTypeRegistrationUpdate,
	NotificationTypeSystem,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
