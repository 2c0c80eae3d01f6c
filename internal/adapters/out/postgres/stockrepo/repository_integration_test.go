package stockrepo_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"orderflow/internal/adapters/out/postgres/stockrepo"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/stock"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/sync/errgroup"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// MockAggregateTracker is a mock implementation of aggregateTracker interface.
type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate interface{}) {
	m.Called(id, aggregate)
}

// StockRepositoryIntegrationTestSuite provides integration tests for StockRepository
// using PostgreSQL containers to verify database persistence behavior.
type StockRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *stockrepo.GormStockRepository
	tracker    *MockAggregateTracker
}

func (suite *StockRepositoryIntegrationTestSuite) SetupSuite() {
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

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{TranslateError: true})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&stockrepo.StockDTO{}))
}

func (suite *StockRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE stocks").Error)

	suite.tracker = new(MockAggregateTracker)
	suite.repository = stockrepo.NewGormStockRepository(suite.db, suite.tracker)
}

func (suite *StockRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *StockRepositoryIntegrationTestSuite) TestAdd_ValidStock_Success() {
	ctx := context.Background()

	record := suite.createStock(kernel.NewUUID(), 25)
	suite.tracker.On("TrackAggregate", record.ProductID(), record).Once()

	err := suite.repository.Add(ctx, record)
	suite.Require().NoError(err)

	suite.assertStockCount(1)
	suite.tracker.AssertExpectations(suite.T())
}

func (suite *StockRepositoryIntegrationTestSuite) TestGet_ExistingStock_ReturnsRecord() {
	ctx := context.Background()

	record := suite.createStock(kernel.NewUUID(), 40)
	suite.tracker.On("TrackAggregate", record.ProductID(), record).Once()
	suite.Require().NoError(suite.repository.Add(ctx, record))

	retrieved, err := suite.repository.Get(ctx, record.StoreID(), record.ProductID())
	suite.Require().NoError(err)
	suite.Equal(record.ProductID(), retrieved.ProductID())
	suite.Equal(record.StoreID(), retrieved.StoreID())
	suite.Equal(40, retrieved.Quantity())
	suite.Equal(0, retrieved.Reserved())

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *StockRepositoryIntegrationTestSuite) TestGet_NonExistentStock_ReturnsNotFoundError() {
	ctx := context.Background()

	retrieved, err := suite.repository.Get(ctx, kernel.NewUUID(), kernel.NewUUID())

	suite.Nil(retrieved)
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *StockRepositoryIntegrationTestSuite) TestUpdate_PersistsReservation() {
	ctx := context.Background()

	record := suite.createStock(kernel.NewUUID(), 10)
	suite.tracker.On("TrackAggregate", record.ProductID(), record).Twice()
	suite.Require().NoError(suite.repository.Add(ctx, record))

	suite.Require().NoError(record.Reserve(4))
	suite.Require().NoError(suite.repository.Update(ctx, record))

	retrieved, err := suite.repository.Get(ctx, record.StoreID(), record.ProductID())
	suite.Require().NoError(err)
	suite.Equal(10, retrieved.Quantity())
	suite.Equal(4, retrieved.Reserved())
	suite.Equal(6, retrieved.Available())

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *StockRepositoryIntegrationTestSuite) TestUpdate_CommitToZero_PersistsZeroCounts() {
	ctx := context.Background()

	record := suite.createStock(kernel.NewUUID(), 3)
	suite.tracker.On("TrackAggregate", record.ProductID(), record).Twice()
	suite.Require().NoError(suite.repository.Add(ctx, record))

	suite.Require().NoError(record.Reserve(3))
	suite.Require().NoError(record.Commit(3))
	suite.Require().NoError(suite.repository.Update(ctx, record))

	retrieved, err := suite.repository.Get(ctx, record.StoreID(), record.ProductID())
	suite.Require().NoError(err)
	suite.Equal(0, retrieved.Quantity())
	suite.Equal(0, retrieved.Reserved())

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *StockRepositoryIntegrationTestSuite) TestUpdate_NonExistentStock_ReturnsError() {
	ctx := context.Background()

	record := suite.createStock(kernel.NewUUID(), 5)

	err := suite.repository.Update(ctx, record)
	suite.Require().ErrorIs(err, gorm.ErrRecordNotFound)
	suite.tracker.AssertExpectations(suite.T())
}

func (suite *StockRepositoryIntegrationTestSuite) TestGetForUpdate_AllRecordsExist_ReturnsInRequestOrder() {
	ctx := context.Background()

	storeID := kernel.NewUUID()
	first := suite.createStockForStore(storeID, kernel.NewUUID(), 5)
	second := suite.createStockForStore(storeID, kernel.NewUUID(), 8)
	suite.tracker.On("TrackAggregate", mock.AnythingOfType("kernel.UUID"), mock.Anything).Times(2)
	suite.Require().NoError(suite.repository.Add(ctx, first))
	suite.Require().NoError(suite.repository.Add(ctx, second))

	tx := suite.db.Begin()
	suite.Require().NoError(tx.Error)
	defer tx.Rollback()

	txRepository := stockrepo.NewGormStockRepository(tx, suite.tracker)
	stocks, err := txRepository.GetForUpdate(ctx, storeID,
		[]kernel.UUID{second.ProductID(), first.ProductID()})
	suite.Require().NoError(err)
	suite.Require().Len(stocks, 2)
	suite.Equal(second.ProductID(), stocks[0].ProductID())
	suite.Equal(first.ProductID(), stocks[1].ProductID())

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *StockRepositoryIntegrationTestSuite) TestGetForUpdate_MissingRecord_ReturnsNotFoundError() {
	ctx := context.Background()

	storeID := kernel.NewUUID()
	existing := suite.createStockForStore(storeID, kernel.NewUUID(), 5)
	suite.tracker.On("TrackAggregate", existing.ProductID(), existing).Once()
	suite.Require().NoError(suite.repository.Add(ctx, existing))

	missingID := kernel.NewUUID()
	stocks, err := suite.repository.GetForUpdate(ctx, storeID,
		[]kernel.UUID{existing.ProductID(), missingID})

	suite.Nil(stocks)
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
	suite.Contains(err.Error(), missingID.String())

	suite.tracker.AssertExpectations(suite.T())
}

// TestConcurrentReservations_NeverOversell runs many racing single-unit
// reservations against one stock row and verifies that row locking keeps
// the number of successful reservations at the available quantity.
func (suite *StockRepositoryIntegrationTestSuite) TestConcurrentReservations_NeverOversell() {
	ctx := context.Background()

	const available = 5
	const contenders = 12

	record := suite.createStock(kernel.NewUUID(), available)
	suite.tracker.On("TrackAggregate", record.ProductID(), record).Once()
	suite.Require().NoError(suite.repository.Add(ctx, record))
	suite.tracker.On("TrackAggregate", record.ProductID(), mock.Anything).Maybe()

	var reserved atomic.Int32
	var group errgroup.Group
	for range contenders {
		group.Go(func() error {
			tx := suite.db.Begin()
			if tx.Error != nil {
				return tx.Error
			}
			defer tx.Rollback()

			txRepository := stockrepo.NewGormStockRepository(tx, suite.tracker)
			stocks, err := txRepository.GetForUpdate(ctx, record.StoreID(),
				[]kernel.UUID{record.ProductID()})
			if err != nil {
				return err
			}

			if err := stocks[0].Reserve(1); err != nil {
				if errors.Is(err, stock.ErrInsufficientStock) {
					return nil
				}
				return err
			}

			if err := txRepository.Update(ctx, stocks[0]); err != nil {
				return err
			}
			if err := tx.Commit().Error; err != nil {
				return err
			}

			reserved.Add(1)
			return nil
		})
	}
	suite.Require().NoError(group.Wait())

	suite.Equal(int32(available), reserved.Load())

	retrieved, err := suite.repository.Get(ctx, record.StoreID(), record.ProductID())
	suite.Require().NoError(err)
	suite.Equal(available, retrieved.Reserved())
	suite.Equal(0, retrieved.Available())
}

// createStock creates a stock record for a fresh store.
func (suite *StockRepositoryIntegrationTestSuite) createStock(productID kernel.UUID, quantity int) *stock.Stock {
	return suite.createStockForStore(kernel.NewUUID(), productID, quantity)
}

// createStockForStore creates a stock record bound to a specific store.
func (suite *StockRepositoryIntegrationTestSuite) createStockForStore(
	storeID kernel.UUID, productID kernel.UUID, quantity int,
) *stock.Stock {
	record, err := stock.NewStock(productID, storeID, quantity)
	suite.Require().NoError(err)
	return record
}

// assertStockCount verifies the number of stock records in the database.
func (suite *StockRepositoryIntegrationTestSuite) assertStockCount(expected int) {
	var count int64
	err := suite.db.Model(&stockrepo.StockDTO{}).Count(&count).Error
	suite.Require().NoError(err)
	suite.Equal(int64(expected), count)
}

func TestStockRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(StockRepositoryIntegrationTestSuite))
}
