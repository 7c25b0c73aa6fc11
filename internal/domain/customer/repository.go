package customer

import "context"

// Repository resolves billing targets for the tenant in ctx
type Repository interface {
	// GetClient resolves a client by ID
	GetClient(ctx context.Context, id string) (*Client, error)

	// GetPostSite resolves a post site by ID
	GetPostSite(ctx context.Context, id string) (*PostSite, error)
}
