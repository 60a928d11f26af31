package model

import (
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

type Task struct {
	Name     string
	Copies   int
	Type     string
	Magazine string
	Release  string
	Business string
	Worker   string
	Job      string
	JobDate  time.Time
}

type modeKind int

const (
	modeInsert modeKind = iota
	modeUpdate
)

// Mode selects whether a submission creates a task or rewrites an existing one.
// The zero value is Insert.
type Mode struct {
	kind modeKind
	id   int64
}

func Insert() Mode {
	return Mode{kind: modeInsert}
}

func Update(id int64) Mode {
	return Mode{kind: modeUpdate, id: id}
}

func (m Mode) IsUpdate() bool {
	return m.kind == modeUpdate
}

// ID is the task being updated, zero in insert mode.
func (m Mode) ID() int64 {
	if m.kind != modeUpdate {
		return 0
	}
	return m.id
}

func (m Mode) Validate() error {
	if m.kind == modeUpdate && m.id <= 0 {
		return fmt.Errorf("update mode requires a positive task id, got %d", m.id)
	}
	return nil
}

func (m Mode) String() string {
	if m.kind == modeUpdate {
		return "update"
	}
	return "insert"
}

// Assignment is the worker/job triple sent with a task.
type Assignment struct {
	WorkerName    string
	WorkerSurname string
	Job           string
}

// NormalizeWorker expands the single worker field into the two name slots.
//
// "First-Last" splits on the hyphen (tokens past the second are dropped).
// A single name fills both slots and keeps the job. An empty field clears
// the job as well.
func NormalizeWorker(worker, job string) Assignment {
	if strings.Contains(worker, "-") {
		parts := strings.Split(worker, "-")
		return Assignment{WorkerName: parts[0], WorkerSurname: parts[1], Job: job}
	}
	if worker != "" {
		return Assignment{WorkerName: worker, WorkerSurname: worker, Job: job}
	}
	return Assignment{}
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func ParseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	parsed, err := time.Parse(DateLayout, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", trimmed)
	}
	return parsed, nil
}
