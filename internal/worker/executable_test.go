package worker

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wmerrors "github.com/felixgeelhaar/wavemaker/internal/errors"
	"github.com/felixgeelhaar/wavemaker/internal/tier"
)

// writeScript creates an executable shell script to stand in for a worker.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "worker.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestExecutableInvokeSuccess(t *testing.T) {
	script := writeScript(t, `cat > /dev/null
echo '{"task_id":"t1","final_status":"completed","commit_ref":"abc123"}'`)

	inv := NewExecutable([]string{script}, 5*time.Second, t.TempDir())
	result, err := inv.Invoke(context.Background(), Payload{TaskID: "t1", Title: "demo"}, tier.Baseline)
	require.NoError(t, err)
	assert.Equal(t, "t1", result.TaskID)
	assert.True(t, result.Completed())
	assert.Equal(t, "abc123", result.CommitRef)
}

func TestExecutableInvokePassesTierFlag(t *testing.T) {
	script := writeScript(t, `cat > /dev/null
for arg in "$@"; do last="$arg"; done
echo "{\"task_id\":\"t1\",\"final_status\":\"failed\",\"error_detail\":\"tier=$last\"}"`)

	inv := NewExecutable([]string{script}, 5*time.Second, t.TempDir())
	result, err := inv.Invoke(context.Background(), Payload{TaskID: "t1"}, tier.Maximal)
	require.NoError(t, err)
	assert.Equal(t, "tier=maximal", result.ErrorDetail)
	assert.False(t, result.Completed())
}

func TestExecutableInvokeTimeout(t *testing.T) {
	script := writeScript(t, `sleep 5`)

	inv := NewExecutable([]string{script}, 100*time.Millisecond, t.TempDir())
	_, err := inv.Invoke(context.Background(), Payload{TaskID: "t1"}, tier.Baseline)
	require.Error(t, err)

	var werr *wmerrors.WavemakerError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, wmerrors.ErrCodeWorkerTimeout, werr.Code)
}

func TestExecutableInvokeCrash(t *testing.T) {
	script := writeScript(t, `cat > /dev/null
echo "something broke" >&2
exit 3`)

	inv := NewExecutable([]string{script}, 5*time.Second, t.TempDir())
	_, err := inv.Invoke(context.Background(), Payload{TaskID: "t1"}, tier.Baseline)
	require.Error(t, err)

	var werr *wmerrors.WavemakerError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, wmerrors.ErrCodeWorkerCrashed, werr.Code)
	assert.Contains(t, werr.Message, "something broke")
}

func TestExecutableInvokeCapacityFailure(t *testing.T) {
	script := writeScript(t, `cat > /dev/null
echo "provider rate limit exceeded" >&2
exit 1`)

	inv := NewExecutable([]string{script}, 5*time.Second, t.TempDir())
	_, err := inv.Invoke(context.Background(), Payload{TaskID: "t1"}, tier.Baseline)
	require.Error(t, err)

	var werr *wmerrors.WavemakerError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, wmerrors.ErrCodeWorkerCapacity, werr.Code)
}

func TestExecutableInvokeBadOutput(t *testing.T) {
	script := writeScript(t, `cat > /dev/null
echo 'not json at all'`)

	inv := NewExecutable([]string{script}, 5*time.Second, t.TempDir())
	_, err := inv.Invoke(context.Background(), Payload{TaskID: "t1"}, tier.Baseline)
	require.Error(t, err)

	var werr *wmerrors.WavemakerError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, wmerrors.ErrCodeWorkerBadOutput, werr.Code)
}

func TestExecutableInvokeMismatchedTaskID(t *testing.T) {
	script := writeScript(t, `cat > /dev/null
echo '{"task_id":"other","final_status":"completed"}'`)

	inv := NewExecutable([]string{script}, 5*time.Second, t.TempDir())
	_, err := inv.Invoke(context.Background(), Payload{TaskID: "t1"}, tier.Baseline)
	require.Error(t, err)

	var werr *wmerrors.WavemakerError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, wmerrors.ErrCodeWorkerBadOutput, werr.Code)
}

func TestExecutableInvokeNoCommand(t *testing.T) {
	inv := NewExecutable(nil, time.Second, t.TempDir())
	_, err := inv.Invoke(context.Background(), Payload{TaskID: "t1"}, tier.Baseline)
	require.Error(t, err)

	var werr *wmerrors.WavemakerError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, wmerrors.ErrCodeWorkerNotFound, werr.Code)
}
