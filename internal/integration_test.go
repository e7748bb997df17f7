package internal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"hallpass-backend/config"
	"hallpass-backend/internal/model"
	"hallpass-backend/internal/pass"
	"hallpass-backend/internal/policy"
	"hallpass-backend/internal/store"
)

type noopNotifier struct{}

func (noopNotifier) Notify(passID, studentID, destination string, violations []string) {}

func setupManager(t *testing.T) (*pass.Manager, *gorm.DB) {
	t.Helper()

	testDB, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, _ := testDB.DB()
	// Each connection to :memory: is its own database; pin the pool to a
	// single connection so every query sees the migrated schema.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	err = testDB.AutoMigrate(&model.Destination{}, &model.PassArchive{}, &model.PushSubscription{})
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.ApplyDefaults()

	manager := pass.NewManager(
		cfg,
		policy.NewTable(&cfg.Passes),
		store.NewMemoryActiveStore(),
		store.NewGormHistoryStore(testDB),
		noopNotifier{},
	)
	t.Cleanup(manager.Close)

	return manager, testDB
}

// TestPassLifecycle walks a pass from admission through a violation to
// completion and verifies the database archive at each step.
func TestPassLifecycle(t *testing.T) {
	manager, testDB := setupManager(t)
	ctx := context.Background()

	// --- Admission ---
	created, err := manager.Create(ctx, "student-1", "teacher-1", "RESTROOM", "restroom")
	require.NoError(t, err)
	require.True(t, created.Approved)
	assert.Equal(t, 5*time.Minute, created.ExpectedDuration)

	// Nothing archived while the pass is active.
	var archived int64
	testDB.Model(&model.PassArchive{}).Count(&archived)
	assert.Equal(t, int64(0), archived)

	// --- Movement with a violation ---
	updated, err := manager.UpdateLocation(ctx, created.PassID, "hallway")
	require.NoError(t, err)
	assert.True(t, updated.Updated)
	assert.Empty(t, updated.Violations)

	updated, err = manager.UpdateLocation(ctx, created.PassID, "gymnasium")
	require.NoError(t, err)
	assert.Equal(t, []string{"Unauthorized location: gymnasium"}, updated.Violations)

	// --- Completion ---
	completed, err := manager.Complete(ctx, created.PassID)
	require.NoError(t, err)
	assert.True(t, completed.Completed)
	assert.Equal(t, []string{"Unauthorized location: gymnasium"}, completed.Violations)

	var row model.PassArchive
	err = testDB.Where("pass_id = ?", created.PassID).First(&row).Error
	require.NoError(t, err, "Expected the completed pass in pass_archives")
	assert.Equal(t, "student-1", row.StudentID)
	assert.Equal(t, "RESTROOM", row.PassType)
	assert.Equal(t, 300, row.ExpectedSeconds)
	assert.Equal(t, 1, row.ViolationCount)
	assert.Equal(t, "hallway\ngymnasium", row.Route)

	// --- Reporting over the archive ---
	rep, err := manager.Report(ctx, "student-1")
	require.NoError(t, err)
	assert.Equal(t, 1, rep.TotalPasses)
	assert.Equal(t, 1, rep.TotalViolations)
	require.Len(t, rep.Records, 1)
	assert.Equal(t, []string{"hallway", "gymnasium"}, rep.Records[0].Route)
}

// TestRateLimitFromArchivedHistory verifies the rolling-window rate limit
// is enforced against the database-backed archive.
func TestRateLimitFromArchivedHistory(t *testing.T) {
	manager, _ := setupManager(t)
	ctx := context.Background()

	// Three immediate create/complete cycles, all inside the window.
	for i := 0; i < 3; i++ {
		created, err := manager.Create(ctx, "student-1", "teacher-1", "RESTROOM", "restroom")
		require.NoError(t, err)
		require.True(t, created.Approved)

		completed, err := manager.Complete(ctx, created.PassID)
		require.NoError(t, err)
		require.True(t, completed.Completed)
	}

	denied, err := manager.Create(ctx, "student-1", "teacher-1", "RESTROOM", "restroom")
	require.NoError(t, err)
	assert.False(t, denied.Approved)
	assert.Equal(t, pass.ReasonRateLimitExceeded, denied.Reason)

	// Other students are unaffected.
	other, err := manager.Create(ctx, "student-2", "teacher-1", "RESTROOM", "restroom")
	require.NoError(t, err)
	assert.True(t, other.Approved)
}

// TestDestinationCapacityAcrossStudents fills a destination to its limit
// and verifies admission reopens after a completion.
func TestDestinationCapacityAcrossStudents(t *testing.T) {
	manager, _ := setupManager(t)
	ctx := context.Background()

	ids := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		created, err := manager.Create(ctx, string(rune('a'+i)), "teacher-1", "LIBRARY", "library")
		require.NoError(t, err)
		require.True(t, created.Approved)
		ids = append(ids, created.PassID)
	}

	denied, err := manager.Create(ctx, "late", "teacher-1", "LIBRARY", "library")
	require.NoError(t, err)
	assert.Equal(t, pass.ReasonDestinationAtCapacity, denied.Reason)

	_, err = manager.Complete(ctx, ids[0])
	require.NoError(t, err)

	reopened, err := manager.Create(ctx, "late", "teacher-1", "LIBRARY", "library")
	require.NoError(t, err)
	assert.True(t, reopened.Approved)
}
