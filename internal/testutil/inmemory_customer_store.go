package testutil

import (
	"context"

	"github.com/guardpost/console/internal/domain/customer"
	ierr "github.com/guardpost/console/internal/errors"
)

var _ customer.Repository = (*InMemoryCustomerStore)(nil)

// InMemoryCustomerStore implements customer.Repository
type InMemoryCustomerStore struct {
	clients   *InMemoryStore[*customer.Client]
	postSites *InMemoryStore[*customer.PostSite]
}

// NewInMemoryCustomerStore creates a new in-memory customer store
func NewInMemoryCustomerStore() *InMemoryCustomerStore {
	return &InMemoryCustomerStore{
		clients:   NewInMemoryStore[*customer.Client](),
		postSites: NewInMemoryStore[*customer.PostSite](),
	}
}

// AddClient seeds a client
func (s *InMemoryCustomerStore) AddClient(ctx context.Context, c *customer.Client) error {
	return s.clients.Create(ctx, c.ID, c)
}

// AddPostSite seeds a post site
func (s *InMemoryCustomerStore) AddPostSite(ctx context.Context, site *customer.PostSite) error {
	return s.postSites.Create(ctx, site.ID, site)
}

func (s *InMemoryCustomerStore) GetClient(ctx context.Context, id string) (*customer.Client, error) {
	c, err := s.clients.Get(ctx, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Client %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return c, nil
}

func (s *InMemoryCustomerStore) GetPostSite(ctx context.Context, id string) (*customer.PostSite, error) {
	site, err := s.postSites.Get(ctx, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Post site %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return site, nil
}

// Clear resets all stored data
func (s *InMemoryCustomerStore) Clear() {
	s.clients.Clear()
	s.postSites.Clear()
}
