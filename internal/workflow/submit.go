// Package workflow turns form selections into routine calls: the selection
// cascade that keeps dependent lists consistent, and the task submission.
package workflow

import (
	"context"
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/Joseda-hg/distributor/internal/db"
	"github.com/Joseda-hg/distributor/internal/journal"
	"github.com/Joseda-hg/distributor/internal/model"
	"github.com/Joseda-hg/distributor/internal/status"
)

type Upserter interface {
	UpsertTask(ctx context.Context, upsert db.TaskUpsert) (string, error)
}

type Recorder interface {
	Record(ctx context.Context, entry journal.Entry) (journal.Entry, error)
}

type Submitter struct {
	store   Upserter
	mode    model.Mode
	journal Recorder
}

type Option func(*Submitter)

// WithJournal records every submission, failed or not.
func WithJournal(r Recorder) Option {
	return func(s *Submitter) {
		s.journal = r
	}
}

// NewSubmitter fixes the mode for the submitter's lifetime.
func NewSubmitter(store Upserter, mode model.Mode, opts ...Option) (*Submitter, error) {
	if store == nil {
		return nil, fmt.Errorf("submitter needs a store")
	}
	if err := mode.Validate(); err != nil {
		return nil, err
	}
	s := &Submitter{store: store, mode: mode}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Submitter) Mode() model.Mode {
	return s.mode
}

// Submit issues one upsert call. Business rejections come back as an outcome
// with a nil error; connection and execution failures, and codes outside the
// known set, come back as errors.
func (s *Submitter) Submit(ctx context.Context, task model.Task) (status.Outcome, error) {
	upsert := BuildUpsert(task, s.mode)
	fields := log.Fields{"mode": s.mode.String(), "task": task.Name, "task_id": s.mode.ID()}

	raw, err := s.store.UpsertTask(ctx, upsert)
	if err != nil {
		log.WithFields(fields).WithError(err).Error("submit task")
		s.record(ctx, upsert, raw, status.CallFailed(), err)
		return status.Outcome{}, err
	}

	outcome, err := status.Interpret(raw)
	s.record(ctx, upsert, raw, outcome, err)
	if err != nil {
		log.WithFields(fields).WithError(err).Error("submit task")
		return outcome, fmt.Errorf("submit task %q: %w", task.Name, err)
	}

	log.WithFields(fields).WithField("outcome", outcome.Label()).Info("task submitted")
	return outcome, nil
}

// BuildUpsert converts a task into the upsert argument list.
func BuildUpsert(task model.Task, mode model.Mode) db.TaskUpsert {
	assignment := model.NormalizeWorker(task.Worker, task.Job)
	return db.TaskUpsert{
		Name:          task.Name,
		Copies:        db.FormatCopies(task.Copies),
		Type:          task.Type,
		Magazine:      task.Magazine,
		Release:       task.Release,
		Business:      task.Business,
		WorkerName:    assignment.WorkerName,
		WorkerSurname: assignment.WorkerSurname,
		Job:           assignment.Job,
		JobDate:       model.FormatDate(task.JobDate),
		Mode:          mode.String(),
		TaskID:        strconv.FormatInt(mode.ID(), 10),
	}
}

func (s *Submitter) record(ctx context.Context, upsert db.TaskUpsert, raw string, outcome status.Outcome, callErr error) {
	if s.journal == nil {
		return
	}

	entry := journal.Entry{
		Mode:     upsert.Mode,
		TaskID:   s.mode.ID(),
		TaskName: upsert.Name,
		Magazine: upsert.Magazine,
		Release:  upsert.Release,
		Business: upsert.Business,
		JobDate:  upsert.JobDate,
		RawCode:  raw,
		Outcome:  outcome.Label(),
		Message:  outcome.Message(),
	}
	if callErr != nil {
		entry.Error = callErr.Error()
	}
	if _, err := s.journal.Record(ctx, entry); err != nil {
		log.WithError(err).Warn("journal submission")
	}
}
