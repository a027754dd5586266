package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/intervue-api/internal/models"
)

func setupRepoTestDB(t *testing.T, entities ...interface{}) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(entities...))
	return db
}

func TestEvaluationJobRepositoryClaimIsExclusive(t *testing.T) {
	db := setupRepoTestDB(t, &models.EvaluationJob{})
	repo := NewEvaluationJobRepository(db)

	job := models.EvaluationJob{SessionID: "sess-1", TechStack: "React"}
	require.NoError(t, repo.Enqueue(context.Background(), &job))
	require.Equal(t, models.JobStatusPending, job.Status)

	claimed, err := repo.Claim(context.Background(), job.ID)
	require.NoError(t, err)
	require.True(t, claimed)

	// A second claim must lose the race and report it without error.
	claimed, err = repo.Claim(context.Background(), job.ID)
	require.NoError(t, err)
	require.False(t, claimed)

	var stored models.EvaluationJob
	require.NoError(t, db.First(&stored, job.ID).Error)
	require.Equal(t, models.JobStatusProcessing, stored.Status)
}

func TestEvaluationJobRepositoryListPendingHonorsLimitAndOrder(t *testing.T) {
	db := setupRepoTestDB(t, &models.EvaluationJob{})
	repo := NewEvaluationJobRepository(db)

	for _, session := range []string{"s1", "s2", "s3"} {
		job := models.EvaluationJob{SessionID: session, TechStack: "Go"}
		require.NoError(t, repo.Enqueue(context.Background(), &job))
	}

	done := models.EvaluationJob{SessionID: "s4", TechStack: "Go"}
	require.NoError(t, repo.Enqueue(context.Background(), &done))
	require.NoError(t, repo.UpdateStatus(context.Background(), done.ID, models.JobStatusDone))

	jobs, err := repo.ListPending(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	require.Equal(t, "s1", jobs[0].SessionID)
	require.Equal(t, "s2", jobs[1].SessionID)

	pending, err := repo.CountByStatus(context.Background(), models.JobStatusPending)
	require.NoError(t, err)
	require.Equal(t, int64(3), pending)
}
