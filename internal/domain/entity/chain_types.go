package entity

// Chain describes one configured network: its identity, native currency and the
// ordered list of candidate RPC endpoints. It is immutable once loaded.
type Chain struct {
	Name      string
	ChainID   uint64
	ShortName string
	NetworkID uint64
	Currency  Currency
	RPC       []string
}

// Currency defines the native currency details of a chain.
type Currency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// Key returns the registry lookup key of the chain.
func (c Chain) Key() string {
	return c.ShortName
}

// TokenFileName is the conventional name of the chain's token list file.
func (c Chain) TokenFileName() string {
	return c.ShortName + "-tokens.json"
}

// ChainSummary is the public view of a registered chain.
type ChainSummary struct {
	Key        string   `json:"key"`
	Name       string   `json:"name"`
	ChainID    uint64   `json:"chainId"`
	NetworkID  uint64   `json:"networkId"`
	Currency   Currency `json:"nativeCurrency"`
	RPC        RPCURL   `json:"rpc"`
	TokenCount int      `json:"tokenCount"`
}
