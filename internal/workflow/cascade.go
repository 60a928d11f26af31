package workflow

import (
	"context"
	"fmt"
	"slices"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Joseda-hg/distributor/internal/db"
	"github.com/Joseda-hg/distributor/internal/model"
)

type ReferenceLoader interface {
	TaskTypes(ctx context.Context) (db.Table, error)
	Magazines(ctx context.Context) (db.Table, error)
	Releases(ctx context.Context, magazine string) (db.Table, error)
	Businesses(ctx context.Context) (db.Table, error)
	Owners(ctx context.Context) (db.Table, error)
	Jobs(ctx context.Context, date time.Time) (db.Table, error)
}

// Set names a reference list that a sibling dialog can add to.
type Set int

const (
	SetMagazines Set = iota
	SetReleases
	SetBusinesses
	SetWorkers
	SetJobs
)

func (s Set) String() string {
	switch s {
	case SetMagazines:
		return "magazines"
	case SetReleases:
		return "releases"
	case SetBusinesses:
		return "businesses"
	case SetWorkers:
		return "workers"
	case SetJobs:
		return "jobs"
	default:
		return fmt.Sprintf("set(%d)", int(s))
	}
}

type Lists struct {
	TaskTypes  []string
	Magazines  []string
	Releases   []string
	Businesses []string
	Workers    []string
	Jobs       []string
}

type Selection struct {
	TaskType string
	Magazine string
	Release  string
	Business string
	Worker   string
	Job      string
	Date     time.Time
}

// Cascade holds the reference lists of one form and the current selection.
// Dependent lists are reloaded whenever the selection that scopes them
// changes. It is not safe for concurrent use.
type Cascade struct {
	loader ReferenceLoader
	lists  Lists
	sel    Selection
}

func NewCascade(loader ReferenceLoader) *Cascade {
	return &Cascade{loader: loader}
}

// Load fetches every list for a fresh form.
func (c *Cascade) Load(ctx context.Context, date time.Time) error {
	c.sel.Date = date
	steps := []func(context.Context) error{
		c.loadWorkers,
		c.loadTaskTypes,
		c.loadMagazines,
		c.loadReleases,
		c.loadBusinesses,
		c.loadJobs,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// SelectMagazine replaces the release list with the releases of title.
func (c *Cascade) SelectMagazine(ctx context.Context, title string) error {
	c.sel.Magazine = title
	return c.loadReleases(ctx)
}

// SelectDate replaces the job list with the jobs scheduled on date.
func (c *Cascade) SelectDate(ctx context.Context, date time.Time) error {
	c.sel.Date = date
	return c.loadJobs(ctx)
}

func (c *Cascade) SelectRelease(release string) error {
	if release != "" && !slices.Contains(c.lists.Releases, release) {
		return fmt.Errorf("release %q is not available for magazine %q", release, c.sel.Magazine)
	}
	c.sel.Release = release
	return nil
}

func (c *Cascade) SelectJob(job string) error {
	if job != "" && !slices.Contains(c.lists.Jobs, job) {
		return fmt.Errorf("job %q is not scheduled on %s", job, model.FormatDate(c.sel.Date))
	}
	c.sel.Job = job
	return nil
}

func (c *Cascade) SelectTaskType(taskType string) {
	c.sel.TaskType = taskType
}

func (c *Cascade) SelectBusiness(business string) {
	c.sel.Business = business
}

// SelectWorker takes the free-form worker field, "First-Last" or a single name.
func (c *Cascade) SelectWorker(worker string) {
	c.sel.Worker = worker
}

// Refresh reloads the list a sibling dialog just added to. A new business
// can bring new owners, so it reloads workers as well.
func (c *Cascade) Refresh(ctx context.Context, set Set) error {
	switch set {
	case SetMagazines:
		return c.loadMagazines(ctx)
	case SetReleases:
		return c.loadReleases(ctx)
	case SetBusinesses:
		if err := c.loadBusinesses(ctx); err != nil {
			return err
		}
		return c.loadWorkers(ctx)
	case SetWorkers:
		return c.loadWorkers(ctx)
	case SetJobs:
		return c.loadJobs(ctx)
	default:
		return fmt.Errorf("unknown reference set %s", set)
	}
}

func (c *Cascade) Lists() Lists {
	return Lists{
		TaskTypes:  slices.Clone(c.lists.TaskTypes),
		Magazines:  slices.Clone(c.lists.Magazines),
		Releases:   slices.Clone(c.lists.Releases),
		Businesses: slices.Clone(c.lists.Businesses),
		Workers:    slices.Clone(c.lists.Workers),
		Jobs:       slices.Clone(c.lists.Jobs),
	}
}

func (c *Cascade) Selection() Selection {
	return c.sel
}

// Task assembles submission material from the current selection.
func (c *Cascade) Task(name string, copies int) model.Task {
	return model.Task{
		Name:     name,
		Copies:   copies,
		Type:     c.sel.TaskType,
		Magazine: c.sel.Magazine,
		Release:  c.sel.Release,
		Business: c.sel.Business,
		Worker:   c.sel.Worker,
		Job:      c.sel.Job,
		JobDate:  c.sel.Date,
	}
}

func (c *Cascade) loadTaskTypes(ctx context.Context) error {
	table, err := c.loader.TaskTypes(ctx)
	if err != nil {
		return fmt.Errorf("load task types: %w", err)
	}
	c.lists.TaskTypes = table.Values()
	return nil
}

func (c *Cascade) loadMagazines(ctx context.Context) error {
	table, err := c.loader.Magazines(ctx)
	if err != nil {
		return fmt.Errorf("load magazines: %w", err)
	}
	c.lists.Magazines = table.Values()
	return nil
}

func (c *Cascade) loadReleases(ctx context.Context) error {
	table, err := c.loader.Releases(ctx, c.sel.Magazine)
	if err != nil {
		c.lists.Releases = nil
		c.sel.Release = ""
		return fmt.Errorf("load releases for %q: %w", c.sel.Magazine, err)
	}
	c.lists.Releases = table.Values()
	if !slices.Contains(c.lists.Releases, c.sel.Release) {
		c.sel.Release = ""
	}
	return nil
}

func (c *Cascade) loadBusinesses(ctx context.Context) error {
	table, err := c.loader.Businesses(ctx)
	if err != nil {
		return fmt.Errorf("load businesses: %w", err)
	}
	c.lists.Businesses = table.Values()
	return nil
}

func (c *Cascade) loadWorkers(ctx context.Context) error {
	table, err := c.loader.Owners(ctx)
	if err != nil {
		return fmt.Errorf("load workers: %w", err)
	}
	if len(table.Columns) > 2 {
		log.WithField("columns", table.Columns).Warn("owners result has more than two columns, worker names will include unrelated pairs")
	}
	c.lists.Workers = table.Pairs()
	return nil
}

func (c *Cascade) loadJobs(ctx context.Context) error {
	table, err := c.loader.Jobs(ctx, c.sel.Date)
	if err != nil {
		c.lists.Jobs = nil
		c.sel.Job = ""
		return fmt.Errorf("load jobs for %s: %w", model.FormatDate(c.sel.Date), err)
	}
	c.lists.Jobs = table.Values()
	if !slices.Contains(c.lists.Jobs, c.sel.Job) {
		c.sel.Job = ""
	}
	return nil
}
