//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/EcoSphere-Campus/service-rewards/internal/adapter"
	"github.com/EcoSphere-Campus/service-rewards/internal/application"
	claimDomain "github.com/EcoSphere-Campus/service-rewards/internal/domain/claim"
	rewardDomain "github.com/EcoSphere-Campus/service-rewards/internal/domain/reward"
	"github.com/EcoSphere-Campus/service-rewards/internal/events"
	"github.com/EcoSphere-Campus/service-rewards/internal/kafka"
	"github.com/EcoSphere-Campus/service-rewards/internal/repository"
	"github.com/EcoSphere-Campus/service-rewards/internal/saga"
	"github.com/EcoSphere-Campus/service-rewards/internal/sweeper"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// rewardsStack holds wired-up rewards service components.
type rewardsStack struct {
	Catalog         *application.CatalogService
	Redemption      *application.RedemptionService
	Sweeper         *sweeper.ExpirySweeper
	Wallet          *adapter.MockWalletAdapter
	CleanupProducer func()
}

// setupContainers starts PostgreSQL and Kafka testcontainers and returns a connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_rewards",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_rewards sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.AutoMigrate(&repository.RewardModel{}, &repository.ClaimModel{}))

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers, events.TopicRewardEvents)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupRewardsStack wires up the full rewards service stack against real
// Postgres and Kafka.
func setupRewardsStack(t *testing.T, db *gorm.DB, brokers []string) *rewardsStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	catalogRepo := repository.NewGormCatalogRepository(db)
	ledgerRepo := repository.NewGormLedgerRepository(db)
	wallet := adapter.NewMockWalletAdapter(1250, logger)

	producer := kafka.NewProducer(brokers, logger)
	publisher := events.NewKafkaPublisher(producer, logger)

	sagaSvc := saga.NewRedemptionSagaService(catalogRepo, ledgerRepo, wallet, logger)
	catalogSvc := application.NewCatalogService(catalogRepo, ledgerRepo, logger)
	redemptionSvc := application.NewRedemptionService(catalogRepo, ledgerRepo, sagaSvc, publisher, logger)
	expirySweeper := sweeper.NewExpirySweeper(ledgerRepo, publisher, time.Minute, logger)

	return &rewardsStack{
		Catalog:         catalogSvc,
		Redemption:      redemptionSvc,
		Sweeper:         expirySweeper,
		Wallet:          wallet,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// seedReward inserts a catalog entry directly into the rewards table.
func seedReward(t *testing.T, db *gorm.DB, name string, rewardType string, pointsCost int64, available int) uuid.UUID {
	t.Helper()
	now := time.Now().UTC()
	model := repository.RewardModel{
		ID:             uuid.New(),
		Name:           name,
		Description:    "integration test reward",
		RewardType:     rewardType,
		PointsCost:     pointsCost,
		Category:       "food",
		Availability:   available,
		TotalAvailable: available,
		ExpiryDate:     now.AddDate(1, 0, 0),
		Provider:       "Campus Dining Services",
		Terms:          []string{"Valid for one-time use"},
		Status:         string(rewardDomain.StatusAvailable),
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, db.Create(&model).Error, "failed to seed reward")
	return model.ID
}

// seedStaleClaim inserts an active ledger entry whose expiry already passed.
func seedStaleClaim(t *testing.T, db *gorm.DB, name string, expiresAt time.Time) uuid.UUID {
	t.Helper()
	model := repository.ClaimModel{
		ID: uuid.Must(uuid.NewV7()),
		Reward: rewardDomain.Snapshot{
			RewardID:   uuid.New(),
			Name:       name,
			RewardType: rewardDomain.TypeCoupon,
			PointsCost: 150,
		},
		ClaimedAt: expiresAt.Add(-30 * 24 * time.Hour),
		Code:      "CAMP-123456-ABC",
		Status:    string(claimDomain.StatusActive),
		ExpiresAt: expiresAt,
		Version:   1,
	}
	require.NoError(t, db.Create(&model).Error, "failed to seed claim")
	return model.ID
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
