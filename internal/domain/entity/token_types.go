package entity

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Token is a tracked fungible-token contract on one chain.
//
// The JSON shape matches the {shortName}-tokens.json files:
// [{"name": "USD Coin", "address": "0x...", "symbol": "USDC", "decimals": 6}]
type Token struct {
	Name     string         `json:"name"`
	Address  common.Address `json:"address"`
	Symbol   string         `json:"symbol"`
	Decimals uint8          `json:"decimals"`
}

// TokenBalance pairs a token with the balance queried for one holder.
// It is computed per request and never stored.
type TokenBalance struct {
	Token   Token
	Balance *big.Int
}
