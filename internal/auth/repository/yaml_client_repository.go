// Package repository provides the stores behind authentication: clients are
// declared in a YAML file, issued tokens live in process memory.
package repository

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	authDomain "github.com/allisson/blueprint-secrets/internal/auth/domain"
)

// ClientsFile is the on-disk layout of the clients file.
//
//	clients:
//	  - id: 0190a6f4-...
//	    name: deployer
//	    secret_hash: $argon2id$v=19$...
//	    active: true
//	    groups: [DEPLOYER]
type ClientsFile struct {
	Clients []ClientEntry `yaml:"clients"`
}

// ClientEntry is one client of the clients file.
type ClientEntry struct {
	ID         string   `yaml:"id"`
	Name       string   `yaml:"name"`
	SecretHash string   `yaml:"secret_hash"`
	Active     bool     `yaml:"active"`
	Groups     []string `yaml:"groups,omitempty"`
}

// NewClientEntry converts a domain client to its file representation.
func NewClientEntry(client *authDomain.Client) ClientEntry {
	return ClientEntry{
		ID:         client.ID.String(),
		Name:       client.Name,
		SecretHash: client.Secret,
		Active:     client.IsActive,
		Groups:     client.Groups,
	}
}

// MarshalClientsFile renders clients as a clients file document.
func MarshalClientsFile(clients ...*authDomain.Client) ([]byte, error) {
	file := ClientsFile{Clients: make([]ClientEntry, 0, len(clients))}
	for _, client := range clients {
		file.Clients = append(file.Clients, NewClientEntry(client))
	}
	return yaml.Marshal(file)
}

// YAMLClientRepository serves clients parsed once from a clients file. It is read only.
type YAMLClientRepository struct {
	clients map[uuid.UUID]*authDomain.Client
}

// NewYAMLClientRepository builds a repository from the given clients.
func NewYAMLClientRepository(file ClientsFile) (*YAMLClientRepository, error) {
	clients := make(map[uuid.UUID]*authDomain.Client, len(file.Clients))
	for i, entry := range file.Clients {
		id, err := uuid.Parse(entry.ID)
		if err != nil {
			return nil, fmt.Errorf("clients[%d]: invalid id %q: %w", i, entry.ID, err)
		}
		if entry.SecretHash == "" {
			return nil, fmt.Errorf("clients[%d]: secret_hash is required", i)
		}
		if _, dup := clients[id]; dup {
			return nil, fmt.Errorf("clients[%d]: duplicate id %s", i, id)
		}
		clients[id] = &authDomain.Client{
			ID:       id,
			Name:     entry.Name,
			Secret:   entry.SecretHash,
			IsActive: entry.Active,
			Groups:   entry.Groups,
		}
	}
	return &YAMLClientRepository{clients: clients}, nil
}

// LoadYAMLClientRepository reads and parses the clients file at path.
func LoadYAMLClientRepository(path string) (*YAMLClientRepository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read clients file: %w", err)
	}

	var file ClientsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse clients file %s: %w", path, err)
	}
	return NewYAMLClientRepository(file)
}

// Get returns a copy of the client so callers cannot mutate the loaded set.
func (r *YAMLClientRepository) Get(_ context.Context, clientID uuid.UUID) (*authDomain.Client, error) {
	client, ok := r.clients[clientID]
	if !ok {
		return nil, authDomain.ErrClientNotFound
	}
	clone := *client
	clone.Groups = append([]string(nil), client.Groups...)
	return &clone, nil
}

// Len returns the number of loaded clients.
func (r *YAMLClientRepository) Len() int {
	return len(r.clients)
}
