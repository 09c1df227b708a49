package tokens

import "context"

// Store is the durable home of the single credential record.
type Store interface {
	// Load returns the stored record, or (nil, nil) when not connected.
	Load(ctx context.Context) (*Record, error)

	// Save overwrites the stored record.
	Save(ctx context.Context, rec *Record) error

	// Delete removes the stored record, forcing re-authorization. Deleting
	// an absent record is not an error.
	Delete(ctx context.Context) error

	// CheckHealth verifies the store is operational.
	CheckHealth(ctx context.Context) error
}
