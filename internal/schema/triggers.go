package schema

const raiseSealedDebt = "SELECT RAISE (FAIL, 'attempt to update sealed debt');"

const debtSealedTrigger = `
CREATE TRIGGER sealed_debt_update
BEFORE UPDATE OF date, label, amount, currency, description ON debts WHEN old.sealed = 1
BEGIN ` + raiseSealedDebt + ` END`

const transactionSealedDebtInsertTrigger = `
CREATE TRIGGER sealed_debt_transaction_insert
BEFORE INSERT ON transactions WHEN (SELECT sealed FROM debts WHERE _id = new.debt_id) = 1
BEGIN ` + raiseSealedDebt + ` END`

const transactionSealedDebtUpdateTrigger = `
CREATE TRIGGER sealed_debt_transaction_update
BEFORE UPDATE ON transactions WHEN (SELECT max(sealed) FROM debts WHERE _id IN (new.debt_id, old.debt_id)) = 1
BEGIN ` + raiseSealedDebt + ` END`

const transactionSealedDebtDeleteTrigger = `
CREATE TRIGGER sealed_debt_transaction_delete
BEFORE DELETE ON transactions WHEN (SELECT sealed FROM debts WHERE _id = old.debt_id) = 1
BEGIN ` + raiseSealedDebt + ` END`

const accountRemapTransferTrigger = `
CREATE TRIGGER account_remap_transfer_transaction_update
AFTER UPDATE ON transactions WHEN new.account_id != old.account_id
BEGIN
	UPDATE transactions SET transfer_account = new.account_id WHERE _id = new.transfer_peer;
END`

type trigger struct {
	name   string
	create string
}

var debtTriggers = []trigger{
	{"sealed_debt_update", debtSealedTrigger},
	{"sealed_debt_transaction_insert", transactionSealedDebtInsertTrigger},
	{"sealed_debt_transaction_update", transactionSealedDebtUpdateTrigger},
	{"sealed_debt_transaction_delete", transactionSealedDebtDeleteTrigger},
}

var remapTrigger = trigger{"account_remap_transfer_transaction_update", accountRemapTransferTrigger}
