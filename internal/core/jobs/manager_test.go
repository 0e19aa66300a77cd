package jobs

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/localrag/internal/core"
	"github.com/markdave123-py/localrag/internal/models"
)

func TestCreateStartsQueued(t *testing.T) {
	m := NewManager()

	id := m.Create("doc-1", "paper.pdf")
	require.NotEmpty(t, id)

	j, err := m.Get(id)
	require.NoError(t, err)
	assert.Equal(t, id, j.JobID)
	assert.Equal(t, "doc-1", j.DocID)
	assert.Equal(t, "paper.pdf", j.Filename)
	assert.Equal(t, models.JobQueued, j.Status)
	assert.Nil(t, j.Result)
	assert.Nil(t, j.Progress.TotalPages)
}

func TestGetUnknownJob(t *testing.T) {
	m := NewManager()

	_, err := m.Get("nope")
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.ErrorIs(t, m.Start("nope"), core.ErrNotFound)
}

func TestLifecycleHappyPath(t *testing.T) {
	m := NewManager()
	id := m.Create("doc-1", "paper.pdf")

	require.NoError(t, m.Start(id))
	m.UpdateProgress(id, 3, 10, 42)

	j, err := m.Get(id)
	require.NoError(t, err)
	assert.Equal(t, models.JobProcessing, j.Status)
	assert.Equal(t, 3, j.Progress.Page)
	require.NotNil(t, j.Progress.TotalPages)
	assert.Equal(t, 10, *j.Progress.TotalPages)
	assert.Equal(t, 42, j.Progress.ChunksIndexed)

	m.Complete(id, models.JobResult{DocID: "doc-1", Filename: "paper.pdf", ChunksCreated: 57})

	j, err = m.Get(id)
	require.NoError(t, err)
	assert.Equal(t, models.JobDone, j.Status)
	require.NotNil(t, j.Result)
	assert.Equal(t, 57, j.Result.ChunksCreated)
	assert.Empty(t, j.Error)
}

func TestStartOnlyFromQueued(t *testing.T) {
	m := NewManager()
	id := m.Create("doc-1", "paper.pdf")

	require.NoError(t, m.Start(id))
	assert.Error(t, m.Start(id), "second start must be rejected")

	m.Fail(id, "boom")
	assert.Error(t, m.Start(id))
}

func TestTerminalStatesAbsorb(t *testing.T) {
	m := NewManager()

	id := m.Create("doc-1", "a.pdf")
	require.NoError(t, m.Start(id))
	m.Fail(id, "extract page 3: bad xref")

	// Nothing moves a job out of "error".
	m.Complete(id, models.JobResult{DocID: "doc-1"})
	m.UpdateProgress(id, 9, 9, 99)

	j, err := m.Get(id)
	require.NoError(t, err)
	assert.Equal(t, models.JobError, j.Status)
	assert.Equal(t, "extract page 3: bad xref", j.Error)
	assert.Nil(t, j.Result)
	assert.Zero(t, j.Progress.ChunksIndexed)

	// And the same the other way around.
	id2 := m.Create("doc-2", "b.pdf")
	require.NoError(t, m.Start(id2))
	m.Complete(id2, models.JobResult{DocID: "doc-2", ChunksCreated: 5})
	m.Fail(id2, "too late")

	j2, err := m.Get(id2)
	require.NoError(t, err)
	assert.Equal(t, models.JobDone, j2.Status)
	assert.Empty(t, j2.Error)
}

func TestProgressDroppedUnlessProcessing(t *testing.T) {
	m := NewManager()
	id := m.Create("doc-1", "a.pdf")

	// Still queued: progress is dropped.
	m.UpdateProgress(id, 1, 5, 3)
	j, err := m.Get(id)
	require.NoError(t, err)
	assert.Nil(t, j.Progress.TotalPages)
	assert.Zero(t, j.Progress.Page)

	// Unknown job: silently ignored.
	m.UpdateProgress("nope", 1, 5, 3)
}

func TestProgressLastWriteWins(t *testing.T) {
	m := NewManager()
	id := m.Create("doc-1", "a.pdf")
	require.NoError(t, m.Start(id))

	for p := 1; p <= 7; p++ {
		m.UpdateProgress(id, p, 7, p*10)
	}

	j, err := m.Get(id)
	require.NoError(t, err)
	assert.Equal(t, 7, j.Progress.Page)
	assert.Equal(t, 70, j.Progress.ChunksIndexed)
}

func TestGetReturnsCopy(t *testing.T) {
	m := NewManager()
	id := m.Create("doc-1", "a.pdf")
	require.NoError(t, m.Start(id))
	m.UpdateProgress(id, 2, 4, 8)
	m.Complete(id, models.JobResult{DocID: "doc-1", ChunksCreated: 8})

	j, err := m.Get(id)
	require.NoError(t, err)

	// Mutating the snapshot must not leak back into the table.
	*j.Progress.TotalPages = 999
	j.Result.ChunksCreated = 999

	again, err := m.Get(id)
	require.NoError(t, err)
	assert.Equal(t, 4, *again.Progress.TotalPages)
	assert.Equal(t, 8, again.Result.ChunksCreated)
}

func TestConcurrentWorkersAndPollers(t *testing.T) {
	m := NewManager()

	var wg sync.WaitGroup
	ids := make([]string, 20)
	for i := range ids {
		ids[i] = m.Create(fmt.Sprintf("doc-%d", i), "f.pdf")
	}

	for _, id := range ids {
		wg.Add(2)
		go func(id string) {
			defer wg.Done()
			if err := m.Start(id); err != nil {
				return
			}
			for p := 1; p <= 50; p++ {
				m.UpdateProgress(id, p, 50, p)
			}
			m.Complete(id, models.JobResult{ChunksCreated: 50})
		}(id)
		go func(id string) {
			defer wg.Done()
			for n := 0; n < 100; n++ {
				if _, err := m.Get(id); err != nil {
					t.Error(err)
					return
				}
			}
		}(id)
	}
	wg.Wait()

	for _, id := range ids {
		j, err := m.Get(id)
		require.NoError(t, err)
		assert.Equal(t, models.JobDone, j.Status)
	}
}
