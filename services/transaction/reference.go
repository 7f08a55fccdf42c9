package transaction

import (
	"fmt"
	"time"

	"github.com/MineVault/MineVault-Backend/utils"
)

const (
	TypeDeposit            = "deposit"
	TypeWithdrawal         = "withdrawal"
	TypePurchase           = "purchase"
	TypeMiningReward       = "mining_reward"
	TypeReferralCommission = "referral_commission"
)

var referencePrefixes = map[string]string{
	TypeDeposit:            "DEP",
	TypeWithdrawal:         "WDL",
	TypePurchase:           "PUR",
	TypeMiningReward:       "MNR",
	TypeReferralCommission: "REF",
}

// NewReference builds a client-facing reference: type prefix, unix timestamp,
// six random hex characters. Uniqueness is ultimately the database's job; a
// collision surfaces as a duplicate-key error and callers regenerate.
func NewReference(txType string) string {
	prefix, ok := referencePrefixes[txType]
	if !ok {
		prefix = "TXN"
	}
	return fmt.Sprintf("%s%d%s", prefix, time.Now().Unix(), utils.RandomHex(3))
}
