package entity

import "regexp"

// SortOrder is the explorer sort direction by block number.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// TxListParams are the paging parameters of an explorer transaction-list query.
type TxListParams struct {
	Address    string
	StartBlock uint64
	EndBlock   uint64
	Page       uint64
	Offset     uint64
	Sort       SortOrder
}

// Transaction is a normal transaction record as reported by the block explorer.
// Numeric fields are kept as the decimal strings the explorer returns.
type Transaction struct {
	BlockNumber       string `json:"blockNumber"`
	TimeStamp         string `json:"timeStamp"`
	Hash              string `json:"hash"`
	Nonce             string `json:"nonce"`
	BlockHash         string `json:"blockHash"`
	TransactionIndex  string `json:"transactionIndex"`
	From              string `json:"from"`
	To                string `json:"to"`
	Value             string `json:"value"`
	Gas               string `json:"gas"`
	GasPrice          string `json:"gasPrice"`
	IsError           string `json:"isError"`
	TxReceiptStatus   string `json:"txreceipt_status"`
	Input             string `json:"input"`
	ContractAddress   string `json:"contractAddress"`
	CumulativeGasUsed string `json:"cumulativeGasUsed"`
	GasUsed           string `json:"gasUsed"`
	Confirmations     string `json:"confirmations"`
	MethodID          string `json:"methodId,omitempty"`
	FunctionName      string `json:"functionName,omitempty"`
}

var txHashPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// HasValidHash reports whether the record carries a real transaction hash.
// Genesis allocations are reported with synthetic hashes and fail this check.
func (t Transaction) HasValidHash() bool {
	return txHashPattern.MatchString(t.Hash)
}

// TransactionPage is one page of a single chain's transaction history.
type TransactionPage struct {
	Transactions []Transaction `json:"transactions"`
	Page         uint64        `json:"page"`
	Offset       uint64        `json:"offset"`
	HasMore      bool          `json:"has_more"`
	NextPage     *uint64       `json:"next_page"`
}

// NewTransactionPage builds a page, setting NextPage only when more records exist.
func NewTransactionPage(txs []Transaction, page, offset uint64, hasMore bool) TransactionPage {
	p := TransactionPage{
		Transactions: txs,
		Page:         page,
		Offset:       offset,
		HasMore:      hasMore,
	}
	if p.Transactions == nil {
		p.Transactions = []Transaction{}
	}
	if hasMore {
		next := page + 1
		p.NextPage = &next
	}
	return p
}
