package valueobjects

import "fmt"

// Network is the chain environment the ledger runs against.
type Network string

const (
	NetworkTestnet Network = "testnet"
	NetworkMainnet Network = "mainnet"
)

// NewNetwork creates a Network from its configuration string
func NewNetwork(network string) (Network, error) {
	n := Network(network)
	if !n.IsValid() {
		return "", fmt.Errorf("invalid network: %s", network)
	}
	return n, nil
}

func (n Network) IsValid() bool {
	return n == NetworkTestnet || n == NetworkMainnet
}

func (n Network) IsTestnet() bool {
	return n == NetworkTestnet
}

func (n Network) String() string {
	return string(n)
}
