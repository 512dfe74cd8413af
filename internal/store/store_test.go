package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/hance08/tally/internal/constants"
	"github.com/hance08/tally/internal/model"
	"github.com/hance08/tally/internal/schema"
	"github.com/hance08/tally/internal/store"
	"github.com/hance08/tally/internal/store/storetest"
	"github.com/hance08/tally/internal/telemetry"
)

type StoreTestSuite struct {
	suite.Suite
	ctx   context.Context
	store *store.Store
	path  string
	cash  int64
}

func (suite *StoreTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.store, suite.path = storetest.Open(suite.T())
	_, err := schema.NewMigrator(suite.store, telemetry.Nop{}, storetest.Logger()).Upgrade(suite.ctx, constants.BaselineVersion)
	suite.Require().NoError(err)

	suite.cash, err = suite.store.CreateAccount(suite.ctx, &model.Account{Label: "Cash", Currency: "EUR", Type: constants.AccountTypeCash})
	suite.Require().NoError(err)
}

func (suite *StoreTestSuite) insert(amount int64, parentID *int64) int64 {
	id, err := suite.store.InsertTransaction(suite.ctx, &model.Transaction{
		AccountID: suite.cash, Amount: amount, Date: 1513339200, CrStatus: constants.CrUnreconciled, ParentID: parentID,
	})
	suite.Require().NoError(err)
	return id
}

func (suite *StoreTestSuite) TestAccountLookups() {
	acc, err := suite.store.GetAccountByLabel(suite.ctx, "Cash")
	suite.Require().NoError(err)
	suite.Equal(suite.cash, acc.ID)
	suite.Equal("EUR", acc.Currency)
	suite.False(acc.IsSealed())

	_, err = suite.store.GetAccountByID(suite.ctx, 999)
	suite.ErrorIs(err, store.ErrRecordNotFound)

	_, err = suite.store.GetAccountByLabel(suite.ctx, "Missing")
	suite.ErrorIs(err, store.ErrRecordNotFound)
}

func (suite *StoreTestSuite) TestSealedAccountRejectsNewTransactions() {
	id := suite.insert(-100, nil)
	suite.Require().NoError(suite.store.SetAccountSealed(suite.ctx, suite.cash, constants.Sealed))

	_, err := suite.store.InsertTransaction(suite.ctx, &model.Transaction{
		AccountID: suite.cash, Amount: -1, Date: 1, CrStatus: constants.CrUnreconciled,
	})
	suite.ErrorIs(err, store.ErrIntegrityViolation)
	suite.ErrorIs(suite.store.DeleteTransaction(suite.ctx, id), store.ErrIntegrityViolation)

	// exporting only touches status, which sealing does not protect
	suite.NoError(suite.store.UpdateTransactionStatus(suite.ctx, id, constants.StatusExported))
}

func (suite *StoreTestSuite) TestDuplicateMapping() {
	_, err := suite.store.CreateTag(suite.ctx, "Holiday")
	suite.Require().NoError(err)
	_, err = suite.store.CreateTag(suite.ctx, "Holiday")
	suite.ErrorIs(err, store.ErrDuplicate)

	suite.ErrorIs(suite.store.InsertCurrency(suite.ctx, "EUR"), store.ErrDuplicate)
}

func (suite *StoreTestSuite) TestPayeeAndMethod() {
	first, err := suite.store.FindOrCreatePayee(suite.ctx, "N.N.")
	suite.Require().NoError(err)
	again, err := suite.store.FindOrCreatePayee(suite.ctx, " N.N. ")
	suite.Require().NoError(err)
	suite.Equal(first, again)

	_, err = suite.store.FindMethod(suite.ctx, "CHEQUE")
	suite.NoError(err)
	_, err = suite.store.FindMethod(suite.ctx, "BARTER")
	suite.ErrorIs(err, store.ErrRecordNotFound)
}

func (suite *StoreTestSuite) TestTagLabelsInInsertionOrder() {
	id := suite.insert(-100, nil)
	one, err := suite.store.CreateTag(suite.ctx, "Tag One")
	suite.Require().NoError(err)
	two, err := suite.store.CreateTag(suite.ctx, "Tags, Tags, Tags")
	suite.Require().NoError(err)
	suite.Require().NoError(suite.store.LinkTags(suite.ctx, id, []int64{two, one, one}))

	labels, err := suite.store.TagLabels(suite.ctx, suite.cash)
	suite.Require().NoError(err)
	suite.Equal([]string{"Tag One", "Tags, Tags, Tags"}, labels[id])
}

func (suite *StoreTestSuite) TestCorruptedSplitIDs() {
	good := suite.insert(70, nil)
	suite.insert(40, &good)
	suite.insert(30, &good)

	bad := suite.insert(70, nil)
	suite.insert(40, &bad)

	ids, err := suite.store.CorruptedSplitIDs(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal([]int64{bad}, ids)
}

func (suite *StoreTestSuite) TestMarkExportedSkipsSealedDebts() {
	plain := suite.insert(-100, nil)
	linked := suite.insert(-200, nil)
	debtID, err := suite.store.CreateDebt(suite.ctx, &model.Debt{Date: 1, Label: "Loan", Amount: 200, Currency: "EUR"})
	suite.Require().NoError(err)
	suite.Require().NoError(suite.store.SetTransactionDebt(suite.ctx, linked, &debtID))
	suite.Require().NoError(suite.store.SetDebtSealed(suite.ctx, debtID, true))

	marked, err := suite.store.MarkExported(suite.ctx, []int64{plain, linked})
	suite.Require().NoError(err)
	suite.Equal(int64(1), marked)

	tx, err := suite.store.GetTransactionByID(suite.ctx, plain)
	suite.Require().NoError(err)
	suite.Equal(constants.StatusExported, tx.Status)
}

func (suite *StoreTestSuite) TestMarkExportedChunks() {
	ids := make([]int64, 0, 1001)
	for range 1001 {
		ids = append(ids, suite.insert(-1, nil))
	}
	marked, err := suite.store.MarkExported(suite.ctx, ids)
	suite.Require().NoError(err)
	suite.Equal(int64(1001), marked)
}

func (suite *StoreTestSuite) TestEachExportRowFilters() {
	first := suite.insert(-100, nil)
	second := suite.insert(50, nil)
	uncommitted, err := suite.store.InsertTransaction(suite.ctx, &model.Transaction{
		AccountID: suite.cash, Amount: 10, Date: 1, CrStatus: constants.CrUnreconciled, Status: constants.StatusUncommitted,
	})
	suite.Require().NoError(err)
	suite.Require().NoError(suite.store.UpdateTransactionStatus(suite.ctx, first, constants.StatusExported))

	collect := func(onlyNew bool) []int64 {
		var ids []int64
		suite.Require().NoError(suite.store.EachExportRow(suite.ctx, suite.cash, onlyNew, func(r *store.ExportRow) error {
			ids = append(ids, r.ID)
			return nil
		}))
		return ids
	}
	suite.Equal([]int64{first, second}, collect(false))
	suite.Equal([]int64{second}, collect(true))
	suite.NotContains(collect(false), uncommitted)
}

func (suite *StoreTestSuite) TestBudgetDefaults() {
	budgetID, err := suite.store.CreateBudget(suite.ctx, &model.Budget{Title: "Monthly", Grouping: "MONTH", AccountID: &suite.cash})
	suite.Require().NoError(err)

	n, err := suite.store.MarkDefaultBudget(suite.ctx, budgetID, store.BudgetScope{Grouping: "WEEK", AccountID: suite.cash})
	suite.Require().NoError(err)
	suite.Equal(int64(0), n)

	n, err = suite.store.MarkDefaultBudget(suite.ctx, budgetID, store.BudgetScope{Grouping: "MONTH", AccountID: suite.cash})
	suite.Require().NoError(err)
	suite.Equal(int64(1), n)

	isDefault, err := suite.store.IsDefaultBudget(suite.ctx, budgetID)
	suite.Require().NoError(err)
	suite.True(isDefault)
}

func (suite *StoreTestSuite) TestPeekVersion() {
	version, err := store.PeekVersion(suite.ctx, suite.path)
	suite.Require().NoError(err)
	suite.Equal(constants.SchemaVersion, version)

	version, err = store.PeekVersion(suite.ctx, filepath.Join(suite.T().TempDir(), "absent.db"))
	suite.Require().NoError(err)
	suite.Equal(0, version)
}

func (suite *StoreTestSuite) TestExecTxRollsBack() {
	err := suite.store.ExecTx(suite.ctx, func(tx *store.Store) error {
		if _, err := tx.CreateAccount(suite.ctx, &model.Account{Label: "Temp", Currency: "EUR", Type: constants.AccountTypeCash}); err != nil {
			return err
		}
		return store.ErrConstraintViolation
	})
	suite.ErrorIs(err, store.ErrConstraintViolation)

	_, err = suite.store.GetAccountByLabel(suite.ctx, "Temp")
	suite.ErrorIs(err, store.ErrRecordNotFound)
}

func (suite *StoreTestSuite) TestGetDebt() {
	id, err := suite.store.CreateDebt(suite.ctx, &model.Debt{
		Date: 1513339200, Label: "Loan", Amount: 5000, Currency: "EUR", Description: "from Anna",
	})
	suite.Require().NoError(err)

	debt, err := suite.store.GetDebt(suite.ctx, id)
	suite.Require().NoError(err)
	suite.Equal(&model.Debt{
		ID: id, Date: 1513339200, Label: "Loan", Amount: 5000, Currency: "EUR", Description: "from Anna",
	}, debt)

	suite.Require().NoError(suite.store.SetDebtSealed(suite.ctx, id, true))
	debt, err = suite.store.GetDebt(suite.ctx, id)
	suite.Require().NoError(err)
	suite.True(debt.Sealed)

	_, err = suite.store.GetDebt(suite.ctx, 999)
	suite.ErrorIs(err, store.ErrRecordNotFound)
}

func (suite *StoreTestSuite) TestUnlinkTransferPeers() {
	leg := suite.insert(-100, nil)
	peer := suite.insert(100, nil)
	suite.Require().NoError(suite.store.LinkTransferPeer(suite.ctx, leg, peer))
	suite.Require().NoError(suite.store.LinkTransferPeer(suite.ctx, peer, leg))

	suite.Error(suite.store.DeleteTransaction(suite.ctx, leg))

	suite.Require().NoError(suite.store.UnlinkTransferPeers(suite.ctx, []int64{leg}))
	for _, id := range []int64{leg, peer} {
		tx, err := suite.store.GetTransactionByID(suite.ctx, id)
		suite.Require().NoError(err)
		suite.Nil(tx.TransferPeer)
	}
	suite.NoError(suite.store.DeleteTransaction(suite.ctx, leg))
	suite.NoError(suite.store.UnlinkTransferPeers(suite.ctx, nil))
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func TestBaselineRowsScanAfterUpgrade(t *testing.T) {
	ctx := context.Background()
	s, path := storetest.Open(t)
	raw := storetest.Raw(t, path)

	account := storetest.InsertID(t, raw, "INSERT INTO accounts (label, currency, type) VALUES ('Bank', 'EUR', 'BANK')")
	parent := storetest.InsertID(t, raw,
		"INSERT INTO transactions (account_id, amount, date, comment) VALUES (?, -300, 1513339200, 'rent')", account)
	storetest.InsertID(t, raw,
		"INSERT INTO transactions (account_id, amount, date, parent_id) VALUES (?, -300, 1513339200, ?)", account, parent)

	_, err := schema.NewMigrator(s, telemetry.Nop{}, storetest.Logger()).Upgrade(ctx, constants.BaselineVersion)
	require.NoError(t, err)

	tx, err := s.GetTransactionByID(ctx, parent)
	require.NoError(t, err)
	assert.Equal(t, int64(1513339200), tx.Date)
	assert.Equal(t, "rent", tx.Comment)

	var rows []*store.ExportRow
	require.NoError(t, s.EachExportRow(ctx, account, false, func(r *store.ExportRow) error {
		rows = append(rows, r)
		return nil
	}))
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1513339200), rows[0].Date)

	parts, err := s.ExportSplitParts(ctx, account)
	require.NoError(t, err)
	require.Len(t, parts[parent], 1)
	assert.Equal(t, int64(1513339200), parts[parent][0].Date)
}
