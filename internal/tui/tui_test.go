package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Joseda-hg/distributor/internal/db"
	"github.com/Joseda-hg/distributor/internal/journal"
	"github.com/Joseda-hg/distributor/internal/model"
	"github.com/Joseda-hg/distributor/internal/workflow"
	"github.com/jesseduffield/gocui"
)

func TestLoadFillsForm(t *testing.T) {
	ui, _, _ := newTestUI(t, "1")

	if got := ui.form.fields[fieldDate].Value; got != "2024-01-03" {
		t.Fatalf("expected date field 2024-01-03, got %q", got)
	}
	options := ui.fieldOptions(fieldMagazine)
	if len(options) != 3 || options[0] != "" || options[1] != "Topolino" {
		t.Fatalf("unexpected magazine options %v", options)
	}
	if got := ui.fieldOptions(fieldWorker); len(got) != 2 || got[1] != "Mario-Rossi" {
		t.Fatalf("unexpected worker options %v", got)
	}
}

func TestMagazineChoiceReloadsReleases(t *testing.T) {
	ui, _, _ := newTestUI(t, "1")

	ui.form.index = fieldMagazine
	if !ui.formEditor.Edit(nil, gocui.KeySpace, 0, gocui.ModNone) {
		t.Fatalf("expected choice field to handle space")
	}
	if got := ui.form.fields[fieldMagazine].Value; got != "Topolino" {
		t.Fatalf("expected Topolino, got %q", got)
	}

	ui.form.index = fieldRelease
	ui.formEditor.Edit(nil, gocui.KeyArrowRight, 0, gocui.ModNone)
	if got := ui.form.fields[fieldRelease].Value; got != "3410" {
		t.Fatalf("expected release 3410, got %q", got)
	}

	ui.form.index = fieldMagazine
	ui.formEditor.Edit(nil, gocui.KeyArrowRight, 0, gocui.ModNone)
	if got := ui.form.fields[fieldMagazine].Value; got != "Paperino" {
		t.Fatalf("expected Paperino, got %q", got)
	}
	if got := ui.form.fields[fieldRelease].Value; got != "" {
		t.Fatalf("expected release to be cleared, got %q", got)
	}
	releases := ui.fieldOptions(fieldRelease)
	if len(releases) != 2 || releases[1] != "77" {
		t.Fatalf("expected only Paperino releases, got %v", releases)
	}
}

func TestLeavingDateFieldReloadsJobs(t *testing.T) {
	ui, loader, _ := newTestUI(t, "1")

	ui.form.index = fieldDate
	ui.form.fields[fieldDate].Value = "2024-02-09"
	if err := ui.nextFormField(nil, nil); err != nil {
		t.Fatalf("next field: %v", err)
	}
	if ui.form.index != fieldJob {
		t.Fatalf("expected job field to be focused, got %d", ui.form.index)
	}
	if loader.jobDates[len(loader.jobDates)-1] != "2024-02-09" {
		t.Fatalf("expected jobs reloaded for 2024-02-09, got %v", loader.jobDates)
	}
	if jobs := ui.fieldOptions(fieldJob); len(jobs) != 3 || jobs[1] != "Evening" {
		t.Fatalf("unexpected jobs %v", jobs)
	}
}

func TestInvalidDateIsReported(t *testing.T) {
	ui, _, _ := newTestUI(t, "1")

	ui.form.index = fieldDate
	ui.form.fields[fieldDate].Value = "03/01/2024"
	if err := ui.nextFormField(nil, nil); err != nil {
		t.Fatalf("next field: %v", err)
	}
	if ui.statusSeverity != severityError || !strings.Contains(ui.status, "invalid date") {
		t.Fatalf("expected date error, got %q", ui.status)
	}
}

func TestSubmitFormRecordsHistory(t *testing.T) {
	ui, _, store := newTestUI(t, "1")
	fillForm(ui)

	if err := ui.submitForm(nil, nil); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if ui.statusSeverity != severitySuccess || ui.status != "insert succeeded" {
		t.Fatalf("unexpected status %q (%d)", ui.status, ui.statusSeverity)
	}
	if len(store.calls) != 1 {
		t.Fatalf("expected 1 upsert call, got %d", len(store.calls))
	}
	call := store.calls[0]
	if call.Name != "Consegna" || call.Copies != "40" || call.WorkerName != "Mario" || call.WorkerSurname != "Rossi" {
		t.Fatalf("unexpected upsert %+v", call)
	}
	if len(ui.history) != 1 || ui.history[0].TaskName != "Consegna" {
		t.Fatalf("expected submission in history, got %+v", ui.history)
	}
}

func TestSubmitFormShowsRejection(t *testing.T) {
	ui, _, _ := newTestUI(t, "5")
	fillForm(ui)

	if err := ui.submitForm(nil, nil); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if ui.statusSeverity != severityWarning || ui.status != "job does not exist" {
		t.Fatalf("unexpected status %q (%d)", ui.status, ui.statusSeverity)
	}
}

func TestSubmitFormShowsUnrecognizedCode(t *testing.T) {
	ui, _, _ := newTestUI(t, "9")
	fillForm(ui)

	if err := ui.submitForm(nil, nil); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if ui.statusSeverity != severityError || !strings.Contains(ui.status, "unrecognized") {
		t.Fatalf("unexpected status %q (%d)", ui.status, ui.statusSeverity)
	}
}

func TestSubmitFormRejectsBadCopies(t *testing.T) {
	ui, _, store := newTestUI(t, "1")
	fillForm(ui)
	ui.form.fields[fieldCopies].Value = "forty"

	if err := ui.submitForm(nil, nil); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(store.calls) != 0 {
		t.Fatalf("expected no upsert call, got %d", len(store.calls))
	}
	if ui.statusSeverity != severityError {
		t.Fatalf("expected error status, got %q", ui.status)
	}
}

func TestRefreshBusinessFieldReloadsWorkers(t *testing.T) {
	ui, loader, _ := newTestUI(t, "1")
	loader.owners.Rows = append(loader.owners.Rows, []any{"Anna", "Bianchi"})
	loader.calls = nil

	ui.form.index = fieldBusiness
	if err := ui.refreshField(nil, nil); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if strings.Join(loader.calls, ",") != "businesses,owners" {
		t.Fatalf("expected businesses then owners, got %v", loader.calls)
	}
	if workers := ui.fieldOptions(fieldWorker); len(workers) != 3 {
		t.Fatalf("expected refreshed workers, got %v", workers)
	}
}

func TestTextEditing(t *testing.T) {
	ui, _, _ := newTestUI(t, "1")
	ui.form.index = fieldName

	for _, ch := range "Ab" {
		ui.formEditor.Edit(nil, 0, ch, gocui.ModNone)
	}
	ui.formEditor.Edit(nil, gocui.KeyBackspace2, 0, gocui.ModNone)
	if got := ui.form.fields[fieldName].Value; got != "A" {
		t.Fatalf("expected A, got %q", got)
	}
	if ui.formEditor.Edit(nil, gocui.KeyCtrlR, 0, gocui.ModNone) {
		t.Fatalf("expected ctrl-r to fall through to the global binding")
	}
}

func TestWorkerFieldTakesTypedName(t *testing.T) {
	ui, _, store := newTestUI(t, "1")
	fillForm(ui)

	ui.form.index = fieldWorker
	if !ui.formEditor.Edit(nil, gocui.KeyCtrlU, 0, gocui.ModNone) {
		t.Fatalf("expected worker field to handle ctrl-u")
	}
	for _, ch := range "Mario" {
		if !ui.formEditor.Edit(nil, 0, ch, gocui.ModNone) {
			t.Fatalf("expected worker field to take %q", ch)
		}
	}
	if got := ui.form.fields[fieldWorker].Value; got != "Mario" {
		t.Fatalf("expected worker field Mario, got %q", got)
	}
	if got := ui.cascade.Selection().Worker; got != "Mario" {
		t.Fatalf("expected selected worker Mario, got %q", got)
	}

	if err := ui.submitForm(nil, nil); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(store.calls) != 1 {
		t.Fatalf("expected 1 upsert call, got %d", len(store.calls))
	}
	call := store.calls[0]
	if call.WorkerName != "Mario" || call.WorkerSurname != "Mario" || call.Job != "Morning" {
		t.Fatalf("unexpected worker slots %q %q job %q", call.WorkerName, call.WorkerSurname, call.Job)
	}
}

func TestWorkerFieldStillCycles(t *testing.T) {
	ui, _, _ := newTestUI(t, "1")

	ui.form.index = fieldWorker
	ui.formEditor.Edit(nil, gocui.KeyArrowRight, 0, gocui.ModNone)
	if got := ui.form.fields[fieldWorker].Value; got != "Mario-Rossi" {
		t.Fatalf("expected Mario-Rossi, got %q", got)
	}
	ui.formEditor.Edit(nil, gocui.KeyBackspace2, 0, gocui.ModNone)
	if got := ui.cascade.Selection().Worker; got != "Mario-Ross" {
		t.Fatalf("expected edited worker Mario-Ross, got %q", got)
	}
	if ui.formEditor.Edit(nil, gocui.KeyCtrlR, 0, gocui.ModNone) {
		t.Fatalf("expected ctrl-r to fall through to the global binding")
	}
}

func TestLocationDialog(t *testing.T) {
	ui, _, _ := newTestUI(t, "1")
	master := &fakeMaster{}
	ui.master = master

	if err := ui.openLocationDialog(nil, nil); err != nil {
		t.Fatalf("open dialog: %v", err)
	}
	if err := ui.saveDialogValue("Italia, Lazio"); err == nil {
		t.Fatalf("expected incomplete location to fail")
	}
	if err := ui.saveDialogValue(" Italia , Lazio , Roma "); err != nil {
		t.Fatalf("save location: %v", err)
	}
	if strings.Join(master.location, "|") != "Italia|Lazio|Roma" {
		t.Fatalf("unexpected location %v", master.location)
	}
	if err := ui.closeDialog(nil); err != nil {
		t.Fatalf("close dialog: %v", err)
	}
	if ui.inputActive() {
		t.Fatalf("expected dialog to be closed")
	}
}

func TestPhoneDialog(t *testing.T) {
	ui, _, _ := newTestUI(t, "1")
	master := &fakeMaster{}
	ui.master = master

	_ = ui.openPhoneDialog(nil, nil)
	if err := ui.saveDialogValue(""); err == nil {
		t.Fatalf("expected empty phone to fail")
	}
	if err := ui.saveDialogValue("+39 06 1234"); err != nil {
		t.Fatalf("save phone: %v", err)
	}
	if master.phone != "+39 06 1234" || !strings.Contains(ui.status, "phone number saved") {
		t.Fatalf("unexpected phone %q status %q", master.phone, ui.status)
	}
}

func fillForm(ui *UI) {
	ui.form.fields[fieldName].Value = "Consegna"
	ui.form.fields[fieldCopies].Value = "40"
	ui.applyChoice(fieldType, "delivery")
	ui.applyChoice(fieldMagazine, "Topolino")
	ui.applyChoice(fieldRelease, "3410")
	ui.applyChoice(fieldBusiness, "Edicola Centrale")
	ui.applyChoice(fieldWorker, "Mario-Rossi")
	ui.applyChoice(fieldJob, "Morning")
}

func newTestUI(t *testing.T, code string) (*UI, *fakeLoader, *fakeStore) {
	t.Helper()

	loader := newFakeLoader()
	cascade := workflow.NewCascade(loader)
	store := &fakeStore{code: code}

	dbConn, err := journal.Open(":memory:")
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { _ = dbConn.Close() })
	jrnl := journal.New(dbConn)

	submitter, err := workflow.NewSubmitter(store, model.Insert(), workflow.WithJournal(jrnl))
	if err != nil {
		t.Fatalf("new submitter: %v", err)
	}

	ui := newUI(Options{Cascade: cascade, Submitter: submitter, Journal: jrnl, Target: "localhost:3306"})
	ui.formEditor = &formEditor{ui: ui}
	if err := ui.load(time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("load: %v", err)
	}
	return ui, loader, store
}

type fakeStore struct {
	code  string
	calls []db.TaskUpsert
}

func (f *fakeStore) UpsertTask(_ context.Context, upsert db.TaskUpsert) (string, error) {
	f.calls = append(f.calls, upsert)
	return f.code, nil
}

type fakeMaster struct {
	location []string
	phone    string
}

func (f *fakeMaster) InsertLocation(_ context.Context, country, region, province string) (string, error) {
	f.location = []string{country, region, province}
	return "1", nil
}

func (f *fakeMaster) InsertPhoneNumber(_ context.Context, number string) (string, error) {
	if number == "" {
		return "", errors.New("empty number")
	}
	f.phone = number
	return "1", nil
}

type fakeLoader struct {
	owners   db.Table
	jobDates []string
	calls    []string
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{
		owners: db.Table{Columns: []string{"name", "surname"}, Rows: [][]any{{"Mario", "Rossi"}}},
	}
}

func column(values ...string) db.Table {
	table := db.Table{Columns: []string{"value"}}
	for _, v := range values {
		table.Rows = append(table.Rows, []any{v})
	}
	return table
}

func (f *fakeLoader) TaskTypes(context.Context) (db.Table, error) {
	f.calls = append(f.calls, "taskTypes")
	return column("delivery", "return"), nil
}

func (f *fakeLoader) Magazines(context.Context) (db.Table, error) {
	f.calls = append(f.calls, "magazines")
	return column("Topolino", "Paperino"), nil
}

func (f *fakeLoader) Releases(_ context.Context, magazine string) (db.Table, error) {
	f.calls = append(f.calls, "releases")
	switch magazine {
	case "Topolino":
		return column("3410", "3411"), nil
	case "Paperino":
		return column("77"), nil
	}
	return column(), nil
}

func (f *fakeLoader) Businesses(context.Context) (db.Table, error) {
	f.calls = append(f.calls, "businesses")
	return column("Edicola Centrale"), nil
}

func (f *fakeLoader) Owners(context.Context) (db.Table, error) {
	f.calls = append(f.calls, "owners")
	return f.owners, nil
}

func (f *fakeLoader) Jobs(_ context.Context, date time.Time) (db.Table, error) {
	f.calls = append(f.calls, "jobs")
	key := model.FormatDate(date)
	f.jobDates = append(f.jobDates, key)
	if key == "2024-02-09" {
		return column("Evening", "Night"), nil
	}
	return column("Morning"), nil
}
