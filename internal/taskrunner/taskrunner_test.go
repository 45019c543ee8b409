package taskrunner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movie-recap/internal/appcore"
	"movie-recap/internal/progress"
)

type blockingBatch struct {
	release chan struct{}
	calls   int
	result  appcore.BatchResult
	err     error
	ring    *progress.Ring
}

func (b *blockingBatch) Run(context.Context) (appcore.BatchResult, error) {
	b.calls++
	if b.ring != nil {
		b.ring.Push("[INFO] batch: started")
	}
	<-b.release
	return b.result, b.err
}

func TestStartIsNoOpWhileRunning(t *testing.T) {
	ring := progress.NewRing(10, 100)
	b := &blockingBatch{release: make(chan struct{}), result: appcore.BatchResult{RunID: "run-1", Processed: 2}, ring: ring}
	r := New(b, ring)

	require.True(t, r.Start())
	assert.False(t, r.Start())
	assert.True(t, r.Status().Running)

	close(b.release)
	r.Wait()

	st := r.Status()
	assert.False(t, st.Running)
	require.NotNil(t, st.Last)
	assert.Equal(t, "run-1", st.Last.RunID)
	assert.Empty(t, st.LastError)
	assert.Equal(t, 1, b.calls)
	assert.Equal(t, []string{"[INFO] batch: started"}, r.Progress().Lines())
}

func TestStartAgainAfterCompletion(t *testing.T) {
	b := &blockingBatch{release: make(chan struct{})}
	close(b.release)
	r := New(b, nil)

	require.True(t, r.Start())
	r.Wait()
	require.True(t, r.Start())
	r.Wait()

	assert.Equal(t, 2, b.calls)
}

func TestStatusKeepsBatchError(t *testing.T) {
	b := &blockingBatch{release: make(chan struct{}), err: errors.New("movies dir missing")}
	close(b.release)
	r := New(b, nil)

	require.True(t, r.Start())
	r.Wait()

	assert.Equal(t, "movies dir missing", r.Status().LastError)
}

type panickingBatch struct{}

func (panickingBatch) Run(context.Context) (appcore.BatchResult, error) {
	panic("boom")
}

func TestPanicIsContained(t *testing.T) {
	ring := progress.NewRing(10, 100)
	r := New(panickingBatch{}, ring)

	require.True(t, r.Start())
	r.Wait()

	assert.False(t, r.Running())
	assert.Equal(t, errPanic.Error(), r.Status().LastError)
	assert.Contains(t, ring.Lines(), "[FATAL] batch: internal error")
}
