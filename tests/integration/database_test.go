//go:build integration

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/inboxpilot/inboxpilot-backend/internal/models"
	"github.com/inboxpilot/inboxpilot-backend/internal/repository"
	"github.com/inboxpilot/inboxpilot-backend/tests/fixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DatabaseIntegrationTestSuite tests repository behavior against real PostgreSQL.
// The sqlite-backed unit tests cover the same paths; this suite verifies the
// upsert and aggregation SQL against the production driver.
type DatabaseIntegrationTestSuite struct {
	suite.Suite
	container   testcontainers.Container
	db          *gorm.DB
	messageRepo repository.MessageRepository
	senderRepo  repository.SenderRepository
}

// SetupSuite starts PostgreSQL container and initializes database
func (s *DatabaseIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "inboxpilot_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(s.T(), err)
	s.container = container

	host, err := container.Host(ctx)
	require.NoError(s.T(), err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(s.T(), err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=inboxpilot_test sslmode=disable",
		host, port.Port())

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(s.T(), err)
	s.db = db

	err = db.AutoMigrate(&models.Sender{}, &models.Message{})
	require.NoError(s.T(), err)

	s.messageRepo = repository.NewMessageRepository(db)
	s.senderRepo = repository.NewSenderRepository(db)
}

// TearDownSuite stops the PostgreSQL container
func (s *DatabaseIntegrationTestSuite) TearDownSuite() {
	if s.container != nil {
		s.container.Terminate(context.Background())
	}
}

// SetupTest cleans up data before each test
func (s *DatabaseIntegrationTestSuite) SetupTest() {
	s.db.Exec("TRUNCATE TABLE messages, senders")
}

// TestDatabaseIntegrationTestSuite runs the test suite
func TestDatabaseIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	suite.Run(t, new(DatabaseIntegrationTestSuite))
}

// ==================== Upsert Tests ====================

func (s *DatabaseIntegrationTestSuite) TestMessage_UpsertIsIdempotent() {
	ctx := context.Background()

	batch := fixtures.CreateMessages("user-1", 5)
	err := s.messageRepo.Upsert(ctx, batch)
	require.NoError(s.T(), err)

	// A second pass over the same IDs must not create new rows
	err = s.messageRepo.Upsert(ctx, batch)
	require.NoError(s.T(), err)

	total, err := s.messageRepo.CountByUser(ctx, "user-1")
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), int64(5), total)
}

func (s *DatabaseIntegrationTestSuite) TestMessage_UpsertRefreshesExistingRow() {
	ctx := context.Background()

	original := fixtures.NewMessageBuilder().WithID("msg-1").WithSubject("before").BuildValue()
	require.NoError(s.T(), s.messageRepo.Upsert(ctx, []models.Message{original}))

	updated := original
	updated.Subject = "after"
	updated.LabelIDs = models.StringList{"INBOX", "IMPORTANT"}
	require.NoError(s.T(), s.messageRepo.Upsert(ctx, []models.Message{updated}))

	retrieved, err := s.messageRepo.GetByID(ctx, "user-1", "msg-1")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "after", retrieved.Subject)
	assert.Equal(s.T(), models.StringList{"INBOX", "IMPORTANT"}, retrieved.LabelIDs)
}

// ==================== List Tests ====================

func (s *DatabaseIntegrationTestSuite) TestMessage_ListFiltersAndPaginates() {
	ctx := context.Background()

	require.NoError(s.T(), s.messageRepo.Upsert(ctx, fixtures.CreateMessages("user-1", 25)))
	require.NoError(s.T(), s.messageRepo.Upsert(ctx, []models.Message{
		fixtures.NewMessageBuilder().WithID("other-1").WithUserID("user-2").BuildValue(),
	}))

	page, total, err := s.messageRepo.List(ctx, "user-1", repository.ListOptions{
		Limit:     10,
		SortBy:    "date",
		SortOrder: "desc",
	})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(25), total)
	assert.Len(s.T(), page, 10)

	// Rows from other users never leak in
	for _, m := range page {
		assert.Equal(s.T(), "user-1", m.UserID)
	}

	second, _, err := s.messageRepo.List(ctx, "user-1", repository.ListOptions{
		Limit:     10,
		Offset:    20,
		SortBy:    "date",
		SortOrder: "desc",
	})
	require.NoError(s.T(), err)
	assert.Len(s.T(), second, 5)
}

func (s *DatabaseIntegrationTestSuite) TestMessage_ListSearchMatchesSubject() {
	ctx := context.Background()

	require.NoError(s.T(), s.messageRepo.Upsert(ctx, []models.Message{
		fixtures.NewMessageBuilder().WithID("m1").WithSubject("Quarterly Invoice").BuildValue(),
		fixtures.NewMessageBuilder().WithID("m2").WithSubject("Team lunch").BuildValue(),
	}))

	matches, total, err := s.messageRepo.List(ctx, "user-1", repository.ListOptions{
		Limit:  10,
		Search: "invoice",
	})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(1), total)
	require.Len(s.T(), matches, 1)
	assert.Equal(s.T(), "m1", matches[0].ID)
}

func (s *DatabaseIntegrationTestSuite) TestMessage_ListLabelOverlap() {
	ctx := context.Background()

	require.NoError(s.T(), s.messageRepo.Upsert(ctx, []models.Message{
		fixtures.NewMessageBuilder().WithID("m1").WithLabels("INBOX").BuildValue(),
		fixtures.NewMessageBuilder().WithID("m2").WithLabels("SPAM").BuildValue(),
		fixtures.NewMessageBuilder().WithID("m3").WithLabels("INBOX", "IMPORTANT").BuildValue(),
	}))

	matches, total, err := s.messageRepo.List(ctx, "user-1", repository.ListOptions{
		Limit:  10,
		Labels: []string{"IMPORTANT", "SPAM"},
	})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(2), total)
	require.Len(s.T(), matches, 2)
}

// ==================== Aggregation Tests ====================

func (s *DatabaseIntegrationTestSuite) TestMessage_GroupBySender() {
	ctx := context.Background()

	messages := []models.Message{
		fixtures.NewMessageBuilder().WithID("a1").WithFrom("order@amazon.com").BuildValue(),
		fixtures.NewMessageBuilder().WithID("a2").WithFrom("order@amazon.com").BuildValue(),
		fixtures.NewMessageBuilder().WithID("c1").WithFrom("alerts@chase.com").BuildValue(),
	}
	require.NoError(s.T(), s.messageRepo.Upsert(ctx, messages))

	groups, err := s.messageRepo.GroupBySender(ctx, "user-1")
	require.NoError(s.T(), err)
	require.Len(s.T(), groups, 2)

	// Highest-volume address first
	assert.Equal(s.T(), "order@amazon.com", groups[0].From)
	assert.Equal(s.T(), int64(2), groups[0].MessageCount)
	assert.NotEmpty(s.T(), groups[0].LatestDate)
}

// ==================== Sender Tests ====================

func (s *DatabaseIntegrationTestSuite) TestSender_FindOrCreateIsStable() {
	ctx := context.Background()

	first, err := s.senderRepo.FindOrCreate(ctx, "user-1", "Amazon")
	require.NoError(s.T(), err)
	require.NotEmpty(s.T(), first.ID)

	second, err := s.senderRepo.FindOrCreate(ctx, "user-1", "Amazon")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), first.ID, second.ID)

	// Same organization for a different user gets its own row
	other, err := s.senderRepo.FindOrCreate(ctx, "user-2", "Amazon")
	require.NoError(s.T(), err)
	assert.NotEqual(s.T(), first.ID, other.ID)
}

func (s *DatabaseIntegrationTestSuite) TestSender_UniqueConstraint() {
	ctx := context.Background()

	err := s.db.WithContext(ctx).Create(&models.Sender{ID: "s1", UserID: "user-1", OrgName: "GitHub"}).Error
	require.NoError(s.T(), err)

	err = s.db.WithContext(ctx).Create(&models.Sender{ID: "s2", UserID: "user-1", OrgName: "GitHub"}).Error
	assert.Error(s.T(), err)

	// FindOrCreate resolves to the surviving row instead of failing
	got, err := s.senderRepo.FindOrCreate(ctx, "user-1", "GitHub")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "s1", got.ID)
}
