package journal

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/kinesiogame/encuesta/internal/domain/entities"
	"github.com/kinesiogame/encuesta/internal/domain/repositories"
	apperrors "github.com/kinesiogame/encuesta/pkg/errors"
)

// Form bodies are capped at 1 MiB; JSON escaping can grow a record past that.
const maxRecordSize = 4 << 20

// JSONLJournal appends submissions as newline-delimited JSON to a local file.
type JSONLJournal struct {
	path string
	mu   sync.Mutex
}

// NewJSONLJournal creates a journal writing to path. Nothing is touched on
// disk until the first append.
func NewJSONLJournal(path string) *JSONLJournal {
	return &JSONLJournal{path: path}
}

var _ repositories.SubmissionJournal = (*JSONLJournal)(nil)

// Path returns the journal file location
func (j *JSONLJournal) Path() string {
	return j.path
}

// Append writes one record with a single write on an O_APPEND descriptor,
// then syncs it. Concurrent appends are serialized.
func (j *JSONLJournal) Append(ctx context.Context, submission *entities.Submission) error {
	if submission == nil {
		return apperrors.NewInternalError("submission is nil", fmt.Errorf("submission is nil"))
	}

	line, err := encodeLine(submission)
	if err != nil {
		return apperrors.NewInternalError("failed to encode submission", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(j.path), 0o755); err != nil {
		return apperrors.NewInternalError("failed to create journal directory", err)
	}

	f, err := os.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return apperrors.NewInternalError("failed to open journal", err)
	}

	defer f.Close()

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return apperrors.NewInternalError("failed to stat journal", err)
	}

	n, err := f.Write(line)
	if err == nil && n < len(line) {
		err = io.ErrShortWrite
	}
	if err == nil {
		err = f.Sync()
	}
	if err != nil {
		// A partial record would be glued onto the next accepted one.
		if truncErr := f.Truncate(size); truncErr != nil {
			err = errors.Join(err, fmt.Errorf("truncate to %d bytes: %w", size, truncErr))
		}
		return apperrors.NewInternalError("failed to append submission", err)
	}

	if err := f.Close(); err != nil {
		return apperrors.NewInternalError("failed to close journal", err)
	}
	return nil
}

// ReadAll decodes every record in append order. A missing journal is empty.
func (j *JSONLJournal) ReadAll(ctx context.Context) ([]*entities.Submission, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.Open(j.path)
	if errors.Is(err, os.ErrNotExist) {
		return []*entities.Submission{}, nil
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to open journal", err)
	}
	defer f.Close()

	submissions := make([]*entities.Submission, 0)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(scanner.Bytes()) == 0 {
			continue
		}

		var rec record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			return nil, apperrors.NewInternalError(fmt.Sprintf("malformed journal record on line %d", lineNo), err)
		}
		submission, err := rec.toSubmission()
		if err != nil {
			return nil, apperrors.NewInternalError(fmt.Sprintf("malformed journal record on line %d", lineNo), err)
		}
		submissions = append(submissions, submission)
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read journal", err)
	}

	return submissions, nil
}
