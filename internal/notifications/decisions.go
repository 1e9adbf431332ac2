package notifications

import (
	"fmt"
	"strings"

	"github.com/agriportal/agriportal-backend/pkg/db/models"
	"github.com/agriportal/agriportal-backend/pkg/enums"
)

// ForProductDecision builds the owner notification for a reviewed listing.
// It returns nil for statuses that carry no notice (Pending).
func ForProductDecision(product models.Product) *models.Notification {
	id := product.ID
	n := &models.Notification{
		UserEmail: strings.ToLower(product.OwnerEmail),
		ProductID: &id,
	}
	switch product.Status {
	case enums.ApplicationStatusApproved:
		n.Type = enums.NotificationTypeProductApproved
		n.Title = "Product approved"
		n.Message = fmt.Sprintf("Your product %q has been approved and is now visible in the marketplace.", product.Name)
	case enums.ApplicationStatusRejected:
		n.Type = enums.NotificationTypeProductRejected
		n.Title = "Product rejected"
		n.Message = fmt.Sprintf("Your product %q was not approved. Review the listing details and submit it again.", product.Name)
	default:
		return nil
	}
	return n
}
