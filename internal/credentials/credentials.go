package credentials

import (
	"context"
	"errors"
	"fmt"
)

// Credentials is the flat credential material for the venue API.
// The JSON field names match the on-disk template created by Init.
type Credentials struct {
	Key        string `json:"key"`
	Secret     string `json:"secret"`
	Passphrase string `json:"passphrase"`
	APIURI     string `json:"api_uri"`
}

// ErrNotConfigured signals that credentials have not been provisioned yet.
// It is distinct from I/O or permission failures: the fix is `coinbuy --init`
// (or creating the secret), not debugging the machine.
var ErrNotConfigured = errors.New("credentials not configured")

// Source loads credential material from a backing store.
type Source interface {
	Load(ctx context.Context) (*Credentials, error)
}

// Validate checks that every required field is present.
func (c *Credentials) Validate() error {
	if c.Key == "" || c.Secret == "" || c.Passphrase == "" {
		return fmt.Errorf("credentials incomplete: key, secret and passphrase are all required")
	}
	return nil
}
