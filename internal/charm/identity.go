// ABOUTME: Charm account identity for scoping field documents
// ABOUTME: Resolves the linked account's user id via the charm client

package charm

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/charm/client"
)

// Identity resolves the signed-in user from the linked Charm account.
type Identity struct {
	// Host overrides CHARM_HOST when set.
	Host string
}

// UserID returns the Charm account id, or an error when this device is not linked.
func (i Identity) UserID(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if i.Host != "" {
		if err := os.Setenv("CHARM_HOST", i.Host); err != nil {
			return "", err
		}
	}

	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("charm client: %w", err)
	}
	id, err := cc.ID()
	if err != nil {
		return "", fmt.Errorf("charm account: %w", err)
	}
	return id, nil
}
