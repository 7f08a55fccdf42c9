package apistrings

const (
	/// Basic User Related Strings
	UserNotFound = "user or account does not exist"
	NotAdmin     = "you are not allowed to access this resource"

	/// Core Functionality Error
	ServerError = "a server error occurred, please try again later"

	/// Wallet Related Strings
	UserNoWallet       = "user does not have a wallet created"
	InvalidWalletInput = "check 'currency' key, invalid request"
	InsufficientFunds  = "insufficient available balance"

	/// Transaction Related Strings
	InvalidTransactionInput = "check 'amount' or 'currency' keys, invalid request"
	InvalidTransactionID    = "entered ID is invalid"
	TransactionNotFound     = "transaction does not exist"
	WithdrawalBelowMinimum  = "withdrawal amount is below the configured minimum"

	/// Mining Related Strings
	InvalidPurchaseInput = "check 'package_id' key, invalid request"
	PackageNotFound      = "mining package does not exist or is inactive"
	HoldingNotFound      = "mining holding does not exist"
)
