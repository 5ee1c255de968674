// Package wallet provides WalletConnector implementations for callers that
// receive the wallet address from the client rather than negotiating it.
package wallet

import (
	"context"
	"strings"
	"sync"

	"github.com/kalakrut/portal/internal/core/domain"
)

// Provided hands back an address the client already resolved. An empty
// address behaves like a rejected connection.
type Provided struct {
	mu        sync.Mutex
	address   string
	connected bool
}

func NewProvided(address string) *Provided {
	return &Provided{address: strings.TrimSpace(address)}
}

func (p *Provided) Connect(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.address == "" {
		return "", domain.ErrWalletUnavailable
	}
	p.connected = true
	return p.address, nil
}

func (p *Provided) Disconnect(context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.connected = false
}

// Connected reports whether Connect has succeeded since the last Disconnect.
func (p *Provided) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.connected
}
