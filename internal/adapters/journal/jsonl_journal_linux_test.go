//go:build linux

package journal_test

import (
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/kinesiogame/encuesta/internal/adapters/journal"
	apperrors "github.com/kinesiogame/encuesta/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// limitFileSize caps the size of files this process may write. The Go
// runtime ignores SIGXFSZ, so an oversized write fails with EFBIG.
func limitFileSize(t *testing.T, size uint64) (restore func()) {
	t.Helper()
	var previous syscall.Rlimit
	require.NoError(t, syscall.Getrlimit(syscall.RLIMIT_FSIZE, &previous))
	if previous.Cur < size {
		t.Skipf("file size limit %d already below %d", previous.Cur, size)
	}

	limited := previous
	limited.Cur = size
	require.NoError(t, syscall.Setrlimit(syscall.RLIMIT_FSIZE, &limited))

	restored := false
	restore = func() {
		if restored {
			return
		}
		restored = true
		require.NoError(t, syscall.Setrlimit(syscall.RLIMIT_FSIZE, &previous))
	}
	t.Cleanup(restore)
	return restore
}

func TestJSONLJournal_FailedAppendLeavesNoPartialRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "respuestas.jsonl")
	j := journal.NewJSONLJournal(path)
	ctx := context.Background()

	require.NoError(t, j.Append(ctx, newSubmission("first", 15, "4")))
	info, err := os.Stat(path)
	require.NoError(t, err)
	sizeAfterFirst := info.Size()

	restore := limitFileSize(t, uint64(sizeAfterFirst)+100)
	err = j.Append(ctx, newSubmission("second", 15, "5"))
	restore()

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternal))

	info, err = os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, sizeAfterFirst, info.Size())

	require.NoError(t, j.Append(ctx, newSubmission("third", 15, "3")))

	read, err := j.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, read, 2)
	assert.Equal(t, "first", read[0].Respondent().Name)
	assert.Equal(t, "third", read[1].Respondent().Name)
}
