package customer

// Client is the billed party of an invoice. Owned by the backend; the console
// only resolves it.
type Client struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// PostSite is a billing/service location of a client, distinct from the
// client's own address
type PostSite struct {
	ID       string `json:"id"`
	ClientID string `json:"client_id"`
	Name     string `json:"name"`
	Address  string `json:"address,omitempty"`
	City     string `json:"city,omitempty"`
}

// BelongsTo reports whether the site is attached to the given client. Sites
// the backend returns without an owner are accepted for any client.
func (s *PostSite) BelongsTo(clientID string) bool {
	return s.ClientID == "" || s.ClientID == clientID
}
