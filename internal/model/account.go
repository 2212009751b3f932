package model

import "time"

// AccountType categorizes a financial account.
type AccountType string

const (
	AccountChecking   AccountType = "checking"
	AccountSavings    AccountType = "savings"
	AccountCredit     AccountType = "credit"
	AccountCash       AccountType = "cash"
	AccountInvestment AccountType = "investment"
)

// FinancialAccount is a money-holding account in the ledger.
type FinancialAccount struct {
	CreatedAt time.Time
	ID        string
	Name      string
	Type      AccountType
	Icon      string
	Balance   float64
}

// Goal is a savings goal with a target and accumulated amount.
type Goal struct {
	CreatedAt     time.Time
	TargetDate    *time.Time
	ID            string
	Name          string
	Icon          string
	TargetAmount  float64
	CurrentAmount float64
}

// Progress returns percentage of target reached, clamped to [0, 100].
func (g Goal) Progress() float64 {
	if g.TargetAmount <= 0 {
		return 0
	}
	pct := g.CurrentAmount / g.TargetAmount * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// LiabilityType categorizes a liability.
type LiabilityType string

const (
	LiabilityLoan     LiabilityType = "loan"
	LiabilityMortgage LiabilityType = "mortgage"
	LiabilityCard     LiabilityType = "credit_card"
	LiabilityOther    LiabilityType = "other"
)

// Liability is an outstanding debt.
type Liability struct {
	CreatedAt time.Time
	DueDate   *time.Time
	ID        string
	Name      string
	Type      LiabilityType
	Icon      string
	Amount    float64
}

// AccountIcon maps an account type to its display icon. Unknown types get
// a generic wallet.
func AccountIcon(t AccountType) string {
	switch t {
	case AccountChecking:
		return "🏦"
	case AccountSavings:
		return "💰"
	case AccountCredit:
		return "💳"
	case AccountCash:
		return "💵"
	case AccountInvestment:
		return "📈"
	default:
		return "👛"
	}
}

// GoalIcon returns the display icon for savings goals.
func GoalIcon() string {
	return "🎯"
}

// LiabilityIcon maps a liability type to its display icon.
func LiabilityIcon(t LiabilityType) string {
	switch t {
	case LiabilityLoan:
		return "🏛️"
	case LiabilityMortgage:
		return "🏠"
	case LiabilityCard:
		return "💳"
	default:
		return "📉"
	}
}
