package models

type AccountType string

const (
	AccountCash       AccountType = "cash"
	AccountDebitCard  AccountType = "debit_card"
	AccountCreditCard AccountType = "credit_card"
	AccountDeposit    AccountType = "deposit"
	AccountInvestment AccountType = "investment"
)

func (t AccountType) Valid() bool {
	switch t {
	case AccountCash, AccountDebitCard, AccountCreditCard, AccountDeposit, AccountInvestment:
		return true
	}
	return false
}

type TransactionType string

const (
	TransactionIncome   TransactionType = "income"
	TransactionExpense  TransactionType = "expense"
	TransactionTransfer TransactionType = "transfer"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionIncome, TransactionExpense, TransactionTransfer:
		return true
	}
	return false
}

type CategoryType string

const (
	CategoryIncome  CategoryType = "income"
	CategoryExpense CategoryType = "expense"
)

func (t CategoryType) Valid() bool {
	return t == CategoryIncome || t == CategoryExpense
}

type BudgetPeriod string

const (
	PeriodMonth BudgetPeriod = "month"
	PeriodYear  BudgetPeriod = "year"
)

func (p BudgetPeriod) Valid() bool {
	return p == PeriodMonth || p == PeriodYear
}
