package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Joseda-hg/distributor/internal/db"
	"github.com/Joseda-hg/distributor/internal/journal"
	"github.com/Joseda-hg/distributor/internal/model"
	"github.com/Joseda-hg/distributor/internal/status"
)

func sampleTask() model.Task {
	return model.Task{
		Name:     "Consegna",
		Copies:   40,
		Type:     "delivery",
		Magazine: "Topolino",
		Release:  "3410",
		Business: "Edicola Centrale",
		Worker:   "Mario-Rossi",
		Job:      "Morning",
		JobDate:  day(2024, 1, 3),
	}
}

func TestBuildUpsertInsert(t *testing.T) {
	upsert := BuildUpsert(sampleTask(), model.Insert())
	assert.Equal(t, db.TaskUpsert{
		Name:          "Consegna",
		Copies:        "40",
		Type:          "delivery",
		Magazine:      "Topolino",
		Release:       "3410",
		Business:      "Edicola Centrale",
		WorkerName:    "Mario",
		WorkerSurname: "Rossi",
		Job:           "Morning",
		JobDate:       "2024-01-03",
		Mode:          "insert",
		TaskID:        "0",
	}, upsert)
}

func TestBuildUpsertUpdateSendsID(t *testing.T) {
	upsert := BuildUpsert(sampleTask(), model.Update(17))
	assert.Equal(t, "update", upsert.Mode)
	assert.Equal(t, "17", upsert.TaskID)
}

func TestBuildUpsertNormalizesWorker(t *testing.T) {
	cases := []struct {
		name    string
		worker  string
		first   string
		surname string
		job     string
	}{
		{"pair", "Anna-Bianchi", "Anna", "Bianchi", "Morning"},
		{"single name", "Cher", "Cher", "Cher", "Morning"},
		{"empty clears job", "", "", "", ""},
		{"extra tokens dropped", "Anna-Maria-Bianchi", "Anna", "Maria", "Morning"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			task := sampleTask()
			task.Worker = tc.worker
			upsert := BuildUpsert(task, model.Insert())
			assert.Equal(t, tc.first, upsert.WorkerName)
			assert.Equal(t, tc.surname, upsert.WorkerSurname)
			assert.Equal(t, tc.job, upsert.Job)
		})
	}
}

func TestNewSubmitterRejectsBadMode(t *testing.T) {
	_, err := NewSubmitter(&fakeUpserter{}, model.Update(0))
	assert.Error(t, err)

	_, err = NewSubmitter(nil, model.Insert())
	assert.Error(t, err)
}

func TestSubmitTranslatesCodes(t *testing.T) {
	cases := []struct {
		raw      string
		category status.Category
		ref      status.Reference
	}{
		{"1", status.CategorySuccess, status.RefNone},
		{"8", status.CategorySuccess, status.RefNone},
		{"0", status.CategoryRejected, status.RefNone},
		{"5", status.CategoryRejected, status.RefJob},
		{"-1", status.CategoryError, status.RefNone},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			submitter, err := NewSubmitter(&fakeUpserter{code: tc.raw}, model.Insert())
			require.NoError(t, err)

			outcome, err := submitter.Submit(context.Background(), sampleTask())
			require.NoError(t, err)
			assert.Equal(t, tc.category, outcome.Category)
			assert.Equal(t, tc.ref, outcome.Reference)
		})
	}
}

func TestSubmitUnrecognizedCode(t *testing.T) {
	rec := &fakeRecorder{}
	submitter, err := NewSubmitter(&fakeUpserter{code: "9"}, model.Insert(), WithJournal(rec))
	require.NoError(t, err)

	outcome, err := submitter.Submit(context.Background(), sampleTask())
	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrUnrecognized)
	assert.Equal(t, status.CategoryError, outcome.Category)
	assert.Equal(t, status.ReasonUnrecognized, outcome.Reason)
	assert.Equal(t, "9", outcome.Raw)

	require.Len(t, rec.entries, 1)
	assert.Equal(t, "9", rec.entries[0].RawCode)
	assert.NotEmpty(t, rec.entries[0].Error)
}

func TestSubmitDatabaseError(t *testing.T) {
	rec := &fakeRecorder{}
	failure := errors.New("dial tcp: connection refused")
	submitter, err := NewSubmitter(&fakeUpserter{err: failure}, model.Update(3), WithJournal(rec))
	require.NoError(t, err)

	outcome, err := submitter.Submit(context.Background(), sampleTask())
	assert.ErrorIs(t, err, failure)
	assert.Equal(t, status.Outcome{}, outcome)

	require.Len(t, rec.entries, 1)
	assert.Equal(t, "update", rec.entries[0].Mode)
	assert.Equal(t, int64(3), rec.entries[0].TaskID)
	assert.Equal(t, failure.Error(), rec.entries[0].Error)
	assert.Equal(t, "error(call)", rec.entries[0].Outcome)
	assert.Equal(t, "ERROR: database call failed", rec.entries[0].Message)
}

func TestSubmitRecordsOutcome(t *testing.T) {
	rec := &fakeRecorder{}
	store := &fakeUpserter{code: "3"}
	submitter, err := NewSubmitter(store, model.Insert(), WithJournal(rec))
	require.NoError(t, err)

	_, err = submitter.Submit(context.Background(), sampleTask())
	require.NoError(t, err)

	require.Len(t, store.calls, 1)
	assert.Equal(t, "Topolino", store.calls[0].Magazine)

	require.Len(t, rec.entries, 1)
	entry := rec.entries[0]
	assert.Equal(t, "insert", entry.Mode)
	assert.Equal(t, "Consegna", entry.TaskName)
	assert.Equal(t, "3", entry.RawCode)
	assert.Equal(t, "rejected(missing-reference:release)", entry.Outcome)
	assert.Equal(t, "magazine release does not exist", entry.Message)
	assert.Empty(t, entry.Error)
}

func TestSubmitIgnoresJournalFailure(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("disk full")}
	submitter, err := NewSubmitter(&fakeUpserter{code: "1"}, model.Insert(), WithJournal(rec))
	require.NoError(t, err)

	outcome, err := submitter.Submit(context.Background(), sampleTask())
	require.NoError(t, err)
	assert.True(t, outcome.OK())
}

type fakeUpserter struct {
	code  string
	err   error
	calls []db.TaskUpsert
}

func (f *fakeUpserter) UpsertTask(_ context.Context, upsert db.TaskUpsert) (string, error) {
	f.calls = append(f.calls, upsert)
	if f.err != nil {
		return "", f.err
	}
	return f.code, nil
}

type fakeRecorder struct {
	err     error
	entries []journal.Entry
}

func (f *fakeRecorder) Record(_ context.Context, entry journal.Entry) (journal.Entry, error) {
	if f.err != nil {
		return journal.Entry{}, f.err
	}
	entry.ID = int64(len(f.entries) + 1)
	f.entries = append(f.entries, entry)
	return entry, nil
}
