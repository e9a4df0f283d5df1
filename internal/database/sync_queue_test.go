package database

import (
	"context"
	"testing"
	"time"

	"trailmarket/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncQueue_CreateAndFetch(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	task := &models.SyncTask{
		TaskType:  "upsert",
		BookingID: 1,
		Payload:   `{"id":1}`,
		Status:    "pending",
	}
	require.NoError(t, db.CreateSyncTask(ctx, task))
	require.NotZero(t, task.ID)

	tasks, err := db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "upsert", tasks[0].TaskType)
}

func TestSyncQueue_RetryBackoff(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	task := &models.SyncTask{TaskType: "update_status", BookingID: 2, Payload: `{}`, Status: "pending"}
	require.NoError(t, db.CreateSyncTask(ctx, task))

	// A retry scheduled in the future must not be picked up.
	future := time.Now().Add(time.Hour)
	require.NoError(t, db.UpdateSyncTaskStatus(ctx, task.ID, "retry", "sheets unavailable", &future))

	tasks, err := db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	// Once the retry time has passed it becomes eligible again.
	past := time.Now().Add(-time.Minute)
	require.NoError(t, db.UpdateSyncTaskStatus(ctx, task.ID, "retry", "sheets unavailable", &past))

	tasks, err = db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, 2, tasks[0].RetryCount)
	assert.Equal(t, "sheets unavailable", tasks[0].LastError)
}

func TestSyncQueue_Completed(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	task := &models.SyncTask{TaskType: "delete", BookingID: 3, Payload: `{}`, Status: "pending"}
	require.NoError(t, db.CreateSyncTask(ctx, task))

	require.NoError(t, db.UpdateSyncTaskStatus(ctx, task.ID, "completed", "", nil))

	tasks, err := db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}
