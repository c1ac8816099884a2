// Package domain defines authentication and authorization domain models.
//
// Clients authenticate with an id and a secret and receive a short-lived bearer
// token. Authorization is group based: an AccessPolicy lists the groups allowed
// to reach the secret document.
package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client is an authentication principal loaded from the clients file.
type Client struct {
	ID       uuid.UUID
	Name     string
	Secret   string //nolint:gosec // hashed client secret (not plaintext)
	IsActive bool
	Groups   []string
}

// InGroup reports whether the client belongs to group. Group names compare case-insensitively.
func (c *Client) InGroup(group string) bool {
	return slices.ContainsFunc(c.Groups, func(g string) bool {
		return strings.EqualFold(g, group)
	})
}

// AccessPolicy restricts access to clients in at least one of RequiredGroups.
// The zero value allows every authenticated client.
type AccessPolicy struct {
	RequiredGroups []string
}

// Allows reports whether client satisfies the policy.
func (p AccessPolicy) Allows(client *Client) bool {
	if client == nil {
		return false
	}
	if len(p.RequiredGroups) == 0 {
		return true
	}
	return slices.ContainsFunc(p.RequiredGroups, client.InGroup)
}

// CreateClientInput contains the parameters for provisioning a new client.
type CreateClientInput struct {
	Name     string
	IsActive bool
	Groups   []string
}

// CreateClientOutput is a freshly provisioned client.
// SECURITY: PlainSecret is shown once and never stored.
type CreateClientOutput struct {
	Client      *Client
	PlainSecret string
}

// IssueTokenInput contains the client credentials exchanged for a token.
type IssueTokenInput struct {
	ClientID     uuid.UUID
	ClientSecret string
}

// IssueTokenOutput is an issued token. PlainToken is returned once.
type IssueTokenOutput struct {
	PlainToken string
	ExpiresAt  time.Time
	Client     *Client
}
