package http

import (
	"math/big"

	"wallet-aggregator/internal/domain/entity"
	"wallet-aggregator/internal/pkg/units"
)

// AmountResponse is a raw integer amount with its human-readable form.
type AmountResponse struct {
	Balance   string `json:"balance"`
	Formatted string `json:"formatted"`
	Symbol    string `json:"symbol"`
	Decimals  uint8  `json:"decimals"`
}

// TokenBalanceResponse is one token holding.
type TokenBalanceResponse struct {
	Name      string `json:"name"`
	Symbol    string `json:"symbol"`
	Address   string `json:"address"`
	Decimals  uint8  `json:"decimals"`
	Balance   string `json:"balance"`
	Formatted string `json:"formatted"`
}

// PaginationResponse describes the position of a transaction page.
type PaginationResponse struct {
	Page     uint64  `json:"page"`
	Offset   uint64  `json:"offset"`
	HasMore  bool    `json:"has_more"`
	NextPage *uint64 `json:"next_page"`
}

// TransactionPageResponse is one page of a chain's transactions.
type TransactionPageResponse struct {
	Transactions []entity.Transaction `json:"transactions"`
	Pagination   PaginationResponse   `json:"pagination"`
}

// BalanceResponse is a single chain's native balance.
type BalanceResponse struct {
	Chain   string `json:"chain"`
	Address string `json:"address"`
	AmountResponse
}

// TokensResponse is a single chain's token holdings.
type TokensResponse struct {
	Chain   string                 `json:"chain"`
	Address string                 `json:"address"`
	Tokens  []TokenBalanceResponse `json:"tokens"`
}

// TransactionsResponse is a single chain's transaction page.
type TransactionsResponse struct {
	Chain   string `json:"chain"`
	Address string `json:"address"`
	TransactionPageResponse
}

// WalletResponse is a single chain's wallet summary.
type WalletResponse struct {
	Chain   string                 `json:"chain"`
	Address string                 `json:"address"`
	Native  AmountResponse         `json:"native"`
	Tokens  []TokenBalanceResponse `json:"tokens"`
}

// AllBalancesResponse holds native balances keyed by chain.
type AllBalancesResponse struct {
	Address  string                    `json:"address"`
	Balances map[string]AmountResponse `json:"balances"`
}

// AllTokensResponse holds token holdings keyed by chain.
type AllTokensResponse struct {
	Address string                            `json:"address"`
	Tokens  map[string][]TokenBalanceResponse `json:"tokens"`
}

// AllTransactionsResponse holds transaction pages keyed by chain.
type AllTransactionsResponse struct {
	Address      string                             `json:"address"`
	Transactions map[string]TransactionPageResponse `json:"transactions"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func toAmount(balance *big.Int, currency entity.Currency) AmountResponse {
	if balance == nil {
		balance = new(big.Int)
	}
	return AmountResponse{
		Balance:   balance.String(),
		Formatted: units.Format(balance, currency.Decimals),
		Symbol:    currency.Symbol,
		Decimals:  currency.Decimals,
	}
}

func toTokenBalances(balances []entity.TokenBalance) []TokenBalanceResponse {
	out := make([]TokenBalanceResponse, 0, len(balances))
	for _, b := range balances {
		out = append(out, TokenBalanceResponse{
			Name:      b.Token.Name,
			Symbol:    b.Token.Symbol,
			Address:   b.Token.Address.Hex(),
			Decimals:  b.Token.Decimals,
			Balance:   b.Balance.String(),
			Formatted: units.Format(b.Balance, b.Token.Decimals),
		})
	}
	return out
}

func toTransactionPage(p entity.TransactionPage) TransactionPageResponse {
	txs := p.Transactions
	if txs == nil {
		txs = []entity.Transaction{}
	}
	return TransactionPageResponse{
		Transactions: txs,
		Pagination: PaginationResponse{
			Page:     p.Page,
			Offset:   p.Offset,
			HasMore:  p.HasMore,
			NextPage: p.NextPage,
		},
	}
}
