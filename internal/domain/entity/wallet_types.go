package entity

import "math/big"

// WalletSummary is a single chain's view of one address: its native balance and
// the non-zero balances of tracked tokens.
type WalletSummary struct {
	ChainKey      string
	Address       string
	Currency      Currency
	NativeBalance *big.Int
	Tokens        []TokenBalance
}
