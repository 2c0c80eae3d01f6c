package postgres_test

import (
	"context"
	"testing"
	"time"

	postgresadapter "orderflow/internal/adapters/out/postgres"
	"orderflow/internal/adapters/out/postgres/orderrepo"
	"orderflow/internal/adapters/out/postgres/paymentrepo"
	"orderflow/internal/adapters/out/postgres/stockrepo"
	"orderflow/internal/adapters/out/postgres/taskrepo"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/stock"
	"orderflow/internal/core/ports"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// UnitOfWorkIntegrationTestSuite provides integration testing for the
// GORM-based Unit of Work implementation with a real PostgreSQL database.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	factory   ports.UnitOfWorkFactory
}

// SetupSuite initializes PostgreSQL container and database connection for all tests.
// Runs database migrations to prepare schema for unit of work operations.
func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{TranslateError: true})
	suite.Require().NoError(err)
	suite.db = db

	err = db.AutoMigrate(
		&orderrepo.OrderDTO{},
		&stockrepo.StockDTO{},
		&paymentrepo.PaymentDTO{},
		&taskrepo.TaskDTO{},
	)
	suite.Require().NoError(err)

	suite.factory = postgresadapter.NewGormUnitOfWorkFactory(db)
}

// SetupTest ensures clean database state before each test.
func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE orders, stocks, payments, tasks").Error
	suite.Require().NoError(err)
}

// TearDownSuite cleans up PostgreSQL container after all tests complete.
func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

// TestUnitOfWorkFactory_Create verifies factory creates unit of work instances
// with proper initialization and isolation between instances.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWorkFactory_Create() {
	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()

	suite.NotSame(uow1, uow2, "Factory should create separate instances")

	suite.NotNil(uow1.OrderRepository(), "First instance should provide order repository")
	suite.NotNil(uow1.StockRepository(), "First instance should provide stock repository")
	suite.NotNil(uow2.PaymentRepository(), "Second instance should provide payment repository")
	suite.NotNil(uow2.TaskRepository(), "Second instance should provide task repository")
}

// TestUnitOfWork_TransactionLifecycle verifies proper transaction management
// including begin, commit, and rollback operations.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionLifecycle() {
	ctx := context.Background()
	uow := suite.factory.Create()

	err := uow.Begin(ctx)
	suite.Require().NoError(err, "Should begin transaction successfully")

	err = uow.Begin(ctx)
	suite.Require().NoError(err, "Multiple begin calls should be safe")

	err = uow.Commit(ctx)
	suite.Require().NoError(err, "Should commit transaction successfully")

	err = uow.Begin(ctx)
	suite.Require().NoError(err)

	err = uow.Rollback(ctx)
	suite.Require().NoError(err, "Should rollback transaction successfully")
}

// TestUnitOfWork_CommitWithoutBegin verifies commit and rollback fail cleanly
// when no transaction is active.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_CommitWithoutBegin() {
	ctx := context.Background()
	uow := suite.factory.Create()

	suite.Require().ErrorIs(uow.Commit(ctx), gorm.ErrInvalidTransaction)
	suite.Require().ErrorIs(uow.Rollback(ctx), gorm.ErrInvalidTransaction)
}

// TestUnitOfWork_CommitPersistsAcrossRepositories verifies that writes to
// multiple repositories within one unit of work land atomically.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_CommitPersistsAcrossRepositories() {
	ctx := context.Background()
	uow := suite.factory.Create()

	testOrder := suite.createTestOrder("uow-commit")
	record, err := stock.NewStock(testOrder.Items()[0].ProductID(), testOrder.StoreID(), 10)
	suite.Require().NoError(err)
	suite.Require().NoError(record.Reserve(2))

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.StockRepository().Add(ctx, record))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, testOrder))
	suite.Require().NoError(uow.Commit(ctx))

	persistedOrder, err := suite.factory.Create().OrderRepository().Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(testOrder.ID(), persistedOrder.ID())

	persistedStock, err := suite.factory.Create().StockRepository().
		Get(ctx, record.StoreID(), record.ProductID())
	suite.Require().NoError(err)
	suite.Equal(2, persistedStock.Reserved())
}

// TestUnitOfWork_RollbackDiscardsAllWrites verifies that rollback leaves no
// partial state behind.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_RollbackDiscardsAllWrites() {
	ctx := context.Background()
	uow := suite.factory.Create()

	testOrder := suite.createTestOrder("uow-rollback")
	record, err := stock.NewStock(testOrder.Items()[0].ProductID(), testOrder.StoreID(), 10)
	suite.Require().NoError(err)

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.StockRepository().Add(ctx, record))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, testOrder))
	suite.Require().NoError(uow.Rollback(ctx))

	var orderCount, stockCount int64
	suite.Require().NoError(suite.db.Model(&orderrepo.OrderDTO{}).Count(&orderCount).Error)
	suite.Require().NoError(suite.db.Model(&stockrepo.StockDTO{}).Count(&stockCount).Error)
	suite.Zero(orderCount)
	suite.Zero(stockCount)
}

// TestUnitOfWork_RepositoriesOutsideTransaction verifies repositories fall
// back to the root connection when no transaction is active.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_RepositoriesOutsideTransaction() {
	ctx := context.Background()
	uow := suite.factory.Create()

	testOrder := suite.createTestOrder("uow-no-tx")
	suite.Require().NoError(uow.OrderRepository().Add(ctx, testOrder))

	persisted, err := suite.factory.Create().OrderRepository().Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(testOrder.ID(), persisted.ID())
}

// createTestOrder creates a prepaid order with a single line.
func (suite *UnitOfWorkIntegrationTestSuite) createTestOrder(idempotencyKey string) *order.Order {
	price, err := kernel.NewMoney(450)
	suite.Require().NoError(err)
	item, err := order.NewItem(kernel.NewUUID(), 2, price)
	suite.Require().NoError(err)

	deliveryFee, err := kernel.NewMoney(199)
	suite.Require().NoError(err)

	location, err := kernel.NewLocation(52.37, 4.89)
	suite.Require().NoError(err)
	address, err := order.NewAddress(location, "Damrak 1, Amsterdam")
	suite.Require().NoError(err)

	testOrder, err := order.NewOrder(
		kernel.NewUUID(),
		kernel.NewUUID(),
		kernel.NewUUID(),
		[]order.Item{item},
		deliveryFee,
		order.PaymentMethodCard,
		address,
		idempotencyKey,
	)
	suite.Require().NoError(err)
	return testOrder
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}
