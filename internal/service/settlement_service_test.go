package service

import (
	"context"
	"testing"
	"time"

	"backend/internal/model"
	"backend/internal/notification"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create sqlmock")
	t.Cleanup(func() { mockDB.Close() })

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err, "Failed to open GORM connection")

	return gormDB, mock
}

func newSettlementService(db *gorm.DB) SettlementService {
	return NewSettlementService(
		db,
		repository.NewSettlementRepository(db),
		repository.NewBranchRepository(db),
		repository.NewAuditRepository(db),
		repository.NewTransactionManager(db),
		notification.NewDispatcher(),
	)
}

func settlementRows(id, tenantID, from, to uuid.UUID, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "tenant_id", "settlement_no", "from_branch_id", "to_branch_id", "amount", "status"}).
		AddRow(id, tenantID, "STL-20250514-00001", from, to, "2500", status)
}

func TestTransitionPayRequiresPaymentMethod(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newSettlementService(db)

	_, err := svc.Transition(context.Background(), uuid.New(), uuid.New(), nil, SettlementTransitionRequest{
		Action: model.SettlementActionPay,
	})

	require.Error(t, err)
	assert.Equal(t, apperror.KindInvalidParameter, apperror.KindOf(err))
	// Rejected before any database work
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionUnknownActionRejected(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newSettlementService(db)

	_, err := svc.Transition(context.Background(), uuid.New(), uuid.New(), nil, SettlementTransitionRequest{
		Action: "archive",
	})

	require.Error(t, err)
	assert.Equal(t, apperror.KindInvalidParameter, apperror.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionPayOnPendingRejectedWithoutMutation(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newSettlementService(db)

	tenantID := uuid.New()
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "settlements" .*FOR UPDATE`).
		WillReturnRows(settlementRows(id, tenantID, uuid.New(), uuid.New(), model.SettlementPending))
	mock.ExpectRollback()

	_, err := svc.Transition(context.Background(), tenantID, id, nil, SettlementTransitionRequest{
		Action:        model.SettlementActionPay,
		PaymentMethod: "bank_transfer",
	})

	require.Error(t, err)
	assert.Equal(t, apperror.KindInvalidStateTransition, apperror.KindOf(err))
	// The rollback proves nothing was written: no UPDATE, no ledger rows,
	// no history row
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionMarkOverdueBeforeDueDateRejected(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newSettlementService(db)

	tenantID := uuid.New()
	id := uuid.New()
	due := time.Now().Add(48 * time.Hour)

	rows := sqlmock.NewRows([]string{"id", "tenant_id", "settlement_no", "from_branch_id", "to_branch_id", "amount", "status", "due_date"}).
		AddRow(id, tenantID, "STL-20250514-00001", uuid.New(), uuid.New(), "2500", model.SettlementApproved, due)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "settlements" .*FOR UPDATE`).WillReturnRows(rows)
	mock.ExpectRollback()

	_, err := svc.Transition(context.Background(), tenantID, id, nil, SettlementTransitionRequest{
		Action: model.SettlementActionMarkOverdue,
	})

	require.Error(t, err)
	assert.Equal(t, apperror.KindInvalidStateTransition, apperror.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionPayPostsPairedLedgerEntries(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newSettlementService(db)

	tenantID := uuid.New()
	id := uuid.New()
	fromBranch := uuid.New()
	toBranch := uuid.New()
	actor := uuid.New()

	// Preload queries after commit arrive in gorm's own order
	mock.MatchExpectationsInOrder(false)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "settlements" .*FOR UPDATE`).
		WillReturnRows(settlementRows(id, tenantID, fromBranch, toBranch, model.SettlementApproved))
	mock.ExpectExec(`UPDATE "settlements" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Exactly two ledger rows: expense on payer, income on receiver
	mock.ExpectQuery(`INSERT INTO "ledger_entries"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))
	mock.ExpectQuery(`INSERT INTO "ledger_entries"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))
	mock.ExpectQuery(`INSERT INTO "settlement_histories"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))
	mock.ExpectQuery(`INSERT INTO "audit_logs"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))
	mock.ExpectCommit()

	// Reload with preloads after the transaction commits
	mock.ExpectQuery(`SELECT \* FROM "settlements"`).
		WillReturnRows(settlementRows(id, tenantID, fromBranch, toBranch, model.SettlementPaid))
	mock.ExpectQuery(`SELECT \* FROM "branches"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "code"}).AddRow(fromBranch, "Downtown", "DT01"))
	mock.ExpectQuery(`SELECT \* FROM "branches"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "code"}).AddRow(toBranch, "Airport", "AP01"))
	mock.ExpectQuery(`SELECT \* FROM "settlement_histories"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "settlement_id", "from_status", "to_status", "action"}).
			AddRow(uuid.New(), id, model.SettlementApproved, model.SettlementPaid, model.SettlementActionPay))

	settlement, err := svc.Transition(context.Background(), tenantID, id, &actor, SettlementTransitionRequest{
		Action:        model.SettlementActionPay,
		PaymentMethod: "bank_transfer",
	})

	require.NoError(t, err)
	assert.Equal(t, model.SettlementPaid, settlement.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSettlementValidation(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newSettlementService(db)

	tenantID := uuid.New()
	branch := uuid.New()

	tests := []struct {
		name string
		req  CreateSettlementRequest
	}{
		{"same branch", CreateSettlementRequest{FromBranchID: branch.String(), ToBranchID: branch.String(), Amount: "100"}},
		{"bad from id", CreateSettlementRequest{FromBranchID: "nope", ToBranchID: uuid.New().String(), Amount: "100"}},
		{"zero amount", CreateSettlementRequest{FromBranchID: branch.String(), ToBranchID: uuid.New().String(), Amount: "0"}},
		{"negative amount", CreateSettlementRequest{FromBranchID: branch.String(), ToBranchID: uuid.New().String(), Amount: "-50"}},
		{"bad amount", CreateSettlementRequest{FromBranchID: branch.String(), ToBranchID: uuid.New().String(), Amount: "lots"}},
		{"bad due date", CreateSettlementRequest{FromBranchID: branch.String(), ToBranchID: uuid.New().String(), Amount: "100", DueDate: "tomorrow"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tenantID, nil, tt.req)
			require.Error(t, err)
			assert.Equal(t, apperror.KindInvalidParameter, apperror.KindOf(err))
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListSettlementsRejectsBadBranchID(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newSettlementService(db)

	_, _, err := svc.List(context.Background(), uuid.New(), SettlementListQuery{BranchID: "not-a-uuid"})
	require.Error(t, err)
	assert.Equal(t, apperror.KindInvalidParameter, apperror.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
