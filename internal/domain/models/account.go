package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Auth providers. ProviderEmail is the local email+password path; the
// provider_id for it is the email address itself.
const (
	ProviderGoogle = "GOOGLE"
	ProviderEmail  = "EMAIL"
)

// AccountProviders is the canonical provider list, in display order.
var AccountProviders = []string{ProviderGoogle, ProviderEmail}

// Account links a User to one authentication provider's identifier.
// Exactly one document per (provider, provider_id); a user gets one at
// signup and the system never attaches more afterward (first provider
// wins on repeated federated logins with the same email).
type Account struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"user_id" json:"user_id"`
	Provider   string             `bson:"provider" json:"provider"`
	ProviderID string             `bson:"provider_id" json:"provider_id"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}
