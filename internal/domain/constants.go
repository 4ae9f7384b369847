package domain

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Statuses shared by wallet and gift card transactions. Transitions are
// forward only: PENDING -> COMPLETED | REJECTED, both terminal.
const (
	StatusPending   = "PENDING"
	StatusCompleted = "COMPLETED"
	StatusRejected  = "REJECTED"
)

// Wallet transaction types. Completed FUND/REFUND credit the balance;
// completed PURCHASE/WITHDRAWAL debit it.
const (
	WalletTxFund       = "FUND"
	WalletTxPurchase   = "PURCHASE"
	WalletTxWithdrawal = "WITHDRAWAL"
	WalletTxRefund     = "REFUND"
)

const (
	OrderTypeBuy  = "BUY"
	OrderTypeSell = "SELL"
)

const (
	MethodWallet         = "WALLET"
	MethodManualTransfer = "MANUAL_TRANSFER"
	MethodGateway        = "GATEWAY"
)

const Currency = "NGN"

// Domain events handed to the notification dispatcher.
const (
	EventTransactionCompleted = "transaction.completed"
	EventTransactionRejected  = "transaction.rejected"
	EventWalletFunded         = "wallet.funded"
)
