package chainlist_dto

// ChainRaw represents a chain descriptor as found in chainlist-format JSON or in YAML chain files.
// Fields beyond the ones the wallet needs are ignored.
type ChainRaw struct {
	Name      string      `json:"name" yaml:"name"`
	Chain     string      `json:"chain,omitempty" yaml:"chain,omitempty"`
	RPC       []string    `json:"rpc" yaml:"rpc"`
	Currency  CurrencyRaw `json:"nativeCurrency" yaml:"nativeCurrency"`
	ShortName string      `json:"shortName" yaml:"shortName"`
	ChainID   uint64      `json:"chainId" yaml:"chainId"`
	NetworkID uint64      `json:"networkId" yaml:"networkId"`
}

// CurrencyRaw defines the native currency details of a chain from raw data.
type CurrencyRaw struct {
	Name     string `json:"name" yaml:"name"`
	Symbol   string `json:"symbol" yaml:"symbol"`
	Decimals int    `json:"decimals" yaml:"decimals"`
}
