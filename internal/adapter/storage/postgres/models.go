package postgres

import (
	"time"

	"wallet-aggregator/internal/domain/entity"
)

// TransactionRecord is a persisted explorer transaction.
type TransactionRecord struct {
	Hash              string    `gorm:"column:hash;primaryKey;size:66"`
	Chain             string    `gorm:"column:chain;index;not null"`
	BlockNumber       string    `gorm:"column:block_number"`
	TimeStamp         string    `gorm:"column:time_stamp"`
	Nonce             string    `gorm:"column:nonce"`
	BlockHash         string    `gorm:"column:block_hash"`
	TransactionIndex  string    `gorm:"column:transaction_index"`
	From              string    `gorm:"column:from_address;index"`
	To                string    `gorm:"column:to_address;index"`
	Value             string    `gorm:"column:value"`
	Gas               string    `gorm:"column:gas"`
	GasPrice          string    `gorm:"column:gas_price"`
	IsError           string    `gorm:"column:is_error"`
	TxReceiptStatus   string    `gorm:"column:txreceipt_status"`
	Input             string    `gorm:"column:input"`
	ContractAddress   string    `gorm:"column:contract_address"`
	CumulativeGasUsed string    `gorm:"column:cumulative_gas_used"`
	GasUsed           string    `gorm:"column:gas_used"`
	Confirmations     string    `gorm:"column:confirmations"`
	MethodID          string    `gorm:"column:method_id"`
	FunctionName      string    `gorm:"column:function_name"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName overrides the gorm default.
func (TransactionRecord) TableName() string {
	return "transactions"
}

func toRecord(chainKey string, tx entity.Transaction) TransactionRecord {
	return TransactionRecord{
		Hash:              tx.Hash,
		Chain:             chainKey,
		BlockNumber:       tx.BlockNumber,
		TimeStamp:         tx.TimeStamp,
		Nonce:             tx.Nonce,
		BlockHash:         tx.BlockHash,
		TransactionIndex:  tx.TransactionIndex,
		From:              tx.From,
		To:                tx.To,
		Value:             tx.Value,
		Gas:               tx.Gas,
		GasPrice:          tx.GasPrice,
		IsError:           tx.IsError,
		TxReceiptStatus:   tx.TxReceiptStatus,
		Input:             tx.Input,
		ContractAddress:   tx.ContractAddress,
		CumulativeGasUsed: tx.CumulativeGasUsed,
		GasUsed:           tx.GasUsed,
		Confirmations:     tx.Confirmations,
		MethodID:          tx.MethodID,
		FunctionName:      tx.FunctionName,
	}
}
