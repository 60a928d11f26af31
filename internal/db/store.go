package db

import (
	"context"
	"strconv"
	"time"

	"github.com/Joseda-hg/distributor/internal/model"
)

// Routine names of the distribution schema.
const (
	procTaskTypes       = "allTaskTypes"
	procMagazines       = "allMagazinesName"
	procReleases        = "relaseNumbersByMagName"
	procBusinesses      = "allBusinessName"
	procOwners          = "allOwners"
	procJobsByDate      = "allJobsByDate"
	procShowTask        = "showtask"
	procSoldCopies      = "showSoldCopies"
	funcInsertTask      = "insertTask"
	funcInsertLocation  = "insertLocation"
	funcInsertPhone     = "insertPhoneNumber"
	queryAllTasks       = "SELECT * FROM tasks"
	queryAllLocations   = "SELECT * FROM locations"
	queryAllPhones      = "SELECT * FROM phoneNumbers"
	queryConnectionTest = "SELECT 'hello!'"
)

// Store is the fixed set of calls the application makes.
type Store struct {
	exec *Executor
}

func NewStore(exec *Executor) *Store {
	return &Store{exec: exec}
}

func (s *Store) TaskTypes(ctx context.Context) (Table, error) {
	return s.exec.Procedure(ctx, procTaskTypes)
}

func (s *Store) Magazines(ctx context.Context) (Table, error) {
	return s.exec.Procedure(ctx, procMagazines)
}

func (s *Store) Releases(ctx context.Context, magazine string) (Table, error) {
	return s.exec.Procedure(ctx, procReleases, Named("magName", magazine))
}

func (s *Store) Businesses(ctx context.Context) (Table, error) {
	return s.exec.Procedure(ctx, procBusinesses)
}

// Owners returns the worker rows; callers pair the columns into "First-Last".
func (s *Store) Owners(ctx context.Context) (Table, error) {
	return s.exec.Procedure(ctx, procOwners)
}

func (s *Store) Jobs(ctx context.Context, date time.Time) (Table, error) {
	return s.exec.Procedure(ctx, procJobsByDate, Named("jobDate", model.FormatDate(date)))
}

// TaskUpsert is the argument list of the insertTask function, already in
// its wire form.
type TaskUpsert struct {
	Name          string
	Copies        string
	Type          string
	Magazine      string
	Release       string
	Business      string
	WorkerName    string
	WorkerSurname string
	Job           string
	JobDate       string
	Mode          string
	TaskID        string
}

func (u TaskUpsert) params() []Param {
	return []Param{
		Named("taskName", u.Name),
		Named("nCopies", u.Copies),
		Named("taskType", u.Type),
		Named("magTitle", u.Magazine),
		Named("relaseNumber", u.Release),
		Named("businessName", u.Business),
		Named("workerName", u.WorkerName),
		Named("workerSurname", u.WorkerSurname),
		Named("jobName", u.Job),
		Named("jobDate", u.JobDate),
		Named("updateType", u.Mode),
		Named("taskId", u.TaskID),
	}
}

// UpsertTask returns the raw status code text.
func (s *Store) UpsertTask(ctx context.Context, upsert TaskUpsert) (string, error) {
	return s.exec.Scalar(ctx, funcInsertTask, upsert.params()...)
}

func (s *Store) InsertLocation(ctx context.Context, country, region, province string) (string, error) {
	return s.exec.Scalar(ctx, funcInsertLocation,
		Named("country", country),
		Named("region", region),
		Named("province", province),
	)
}

func (s *Store) InsertPhoneNumber(ctx context.Context, number string) (string, error) {
	return s.exec.Scalar(ctx, funcInsertPhone, Named("phoneN", number))
}

func (s *Store) ShowTask(ctx context.Context, taskType string) (Table, error) {
	return s.exec.Procedure(ctx, procShowTask, Named("typetask", taskType))
}

func (s *Store) SoldCopies(ctx context.Context) (Table, error) {
	return s.exec.Procedure(ctx, procSoldCopies)
}

func (s *Store) AllTasks(ctx context.Context) (Table, error) {
	return s.exec.Query(ctx, queryAllTasks)
}

func (s *Store) AllLocations(ctx context.Context) (Table, error) {
	return s.exec.Query(ctx, queryAllLocations)
}

func (s *Store) AllPhones(ctx context.Context) (Table, error) {
	return s.exec.Query(ctx, queryAllPhones)
}

// Ping runs the connection test query and returns its greeting.
func (s *Store) Ping(ctx context.Context) (string, error) {
	table, err := s.exec.Query(ctx, queryConnectionTest)
	if err != nil {
		return "", err
	}
	values := table.Values()
	if len(values) == 0 {
		return "", newError(KindExecute, "query", errEmptyResult)
	}
	return values[0], nil
}

// FormatCopies renders a copy count the way the upsert routine expects it.
func FormatCopies(copies int) string {
	return strconv.Itoa(copies)
}
