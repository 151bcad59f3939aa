package models

// Account is the stored form of an account row. Balances are exact decimal
// text and times are epoch milliseconds.
type Account struct {
	Identity               string `db:"identity"`
	DisplayName            string `db:"display_name"`
	CurrencyID             string `db:"currency_id"`
	BalanceText            string `db:"balance_text"`
	CreatedEpochMs         int64  `db:"created_epoch_ms"`
	LastTransactionEpochMs int64  `db:"last_transaction_epoch_ms"`
	Version                int64  `db:"version"`
}

// Transaction is the stored form of an append-only transaction record.
type Transaction struct {
	ID               string  `db:"id"`
	Kind             string  `db:"kind"`
	FromIdentity     *string `db:"from_identity"` // Nullable
	ToIdentity       *string `db:"to_identity"`   // Nullable
	CurrencyID       string  `db:"currency_id"`
	AmountText       string  `db:"amount_text"`
	TimestampEpochMs int64   `db:"timestamp_epoch_ms"`
}
