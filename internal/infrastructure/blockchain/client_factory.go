package blockchain

import (
	"fmt"
	"sync"

	"payroll-chain.backend/internal/config"
	domainerrors "payroll-chain.backend/internal/domain/errors"
)

// ClientFactory hands out one lazily dialed EVM client per configured chain.
type ClientFactory struct {
	chains  map[string]config.ChainConfig
	clients map[string]*EVMClient
	mu      sync.RWMutex
}

// NewClientFactory creates a factory over the configured chain set.
func NewClientFactory(chains map[string]config.ChainConfig) *ClientFactory {
	return &ClientFactory{
		chains:  chains,
		clients: make(map[string]*EVMClient),
	}
}

// ChainConfig returns the static configuration for a chain.
func (f *ClientFactory) ChainConfig(chain string) (config.ChainConfig, error) {
	cfg, ok := f.chains[chain]
	if !ok {
		return config.ChainConfig{}, fmt.Errorf("%w: %s", domainerrors.ErrUnsupportedChain, chain)
	}
	return cfg, nil
}

// GetClient returns the EVM client for a chain, dialing on first use.
func (f *ClientFactory) GetClient(chain string) (*EVMClient, error) {
	f.mu.RLock()
	client, ok := f.clients[chain]
	f.mu.RUnlock()
	if ok {
		return client, nil
	}

	cfg, err := f.ChainConfig(chain)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	// Double check
	if client, ok := f.clients[chain]; ok {
		return client, nil
	}

	newClient, err := NewEVMClient(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create EVM client for %s: %w", chain, err)
	}

	f.clients[chain] = newClient
	return newClient, nil
}

// RegisterClient injects a client for a chain, for tests.
func (f *ClientFactory) RegisterClient(chain string, client *EVMClient) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clients[chain] = client
}

// Close releases every dialed client.
func (f *ClientFactory) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, client := range f.clients {
		client.Close()
	}
	f.clients = make(map[string]*EVMClient)
}
