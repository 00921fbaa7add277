package domain

// Account is one of the five ledger accounts the posting engine writes to.
type Account string

// Chart of accounts.
const (
	AccountCash              Account = "1000 - Cash"
	AccountReceivable        Account = "1200 - Accounts Receivable (AR)"
	AccountContractAsset     Account = "1300 - Contract Asset"
	AccountContractLiability Account = "2600 - Contract Liability"
	AccountRevenue           Account = "4000 - Revenue"
)

// Accounts returns the chart of accounts in identifier order.
func Accounts() []Account {
	return []Account{
		AccountCash,
		AccountReceivable,
		AccountContractAsset,
		AccountContractLiability,
		AccountRevenue,
	}
}

// IsValid reports whether the account belongs to the chart of accounts.
func (a Account) IsValid() bool {
	switch a {
	case AccountCash, AccountReceivable, AccountContractAsset, AccountContractLiability, AccountRevenue:
		return true
	default:
		return false
	}
}

// Nature is the side on which an account's balance increases.
type Nature string

const (
	NatureDebit  Nature = "debit"
	NatureCredit Nature = "credit"
)

// ParseNature parses a nature name. An empty string yields NatureDebit.
func ParseNature(s string) (Nature, error) {
	switch Nature(s) {
	case "", NatureDebit:
		return NatureDebit, nil
	case NatureCredit:
		return NatureCredit, nil
	default:
		return "", &InvalidNatureError{Value: s}
	}
}

// natureByEntryType classifies the entry types of external ledger feeds.
var natureByEntryType = map[string]Nature{
	"revenue":            NatureCredit,
	"deferred_revenue":   NatureCredit,
	"contract_liability": NatureCredit,
	"financing_income":   NatureCredit,
	"receivable":         NatureDebit,
	"contract_asset":     NatureDebit,
	"cash":               NatureDebit,
	"commission_expense": NatureDebit,
}

// NatureOf returns the nature of a feed entry type, or fallback when the type is unlisted.
func NatureOf(entryType string, fallback Nature) Nature {
	if n, ok := natureByEntryType[entryType]; ok {
		return n
	}
	return fallback
}
