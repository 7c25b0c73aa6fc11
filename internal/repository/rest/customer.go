package rest

import (
	"context"
	"net/http"

	"github.com/guardpost/console/internal/domain/customer"
)

type customerRepository struct {
	client *Client
}

func NewCustomerRepository(client *Client) customer.Repository {
	return &customerRepository{client: client}
}

func (r *customerRepository) GetClient(ctx context.Context, id string) (*customer.Client, error) {
	var out customer.Client
	err := r.client.doJSON(ctx, call{
		op:     "customer.get_client",
		method: http.MethodGet,
		path:   "/clients/" + escape(id),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *customerRepository) GetPostSite(ctx context.Context, id string) (*customer.PostSite, error) {
	var out customer.PostSite
	err := r.client.doJSON(ctx, call{
		op:     "customer.get_post_site",
		method: http.MethodGet,
		path:   "/post-sites/" + escape(id),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
