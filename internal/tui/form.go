package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jesseduffield/gocui"

	"github.com/Joseda-hg/distributor/internal/model"
	"github.com/Joseda-hg/distributor/internal/workflow"
)

type fieldKind int

const (
	kindText fieldKind = iota
	kindChoice
	// kindCombo takes typed text and also cycles through its options.
	kindCombo
)

type formField struct {
	Label string
	Value string
	kind  fieldKind
}

const (
	fieldName = iota
	fieldCopies
	fieldType
	fieldMagazine
	fieldRelease
	fieldBusiness
	fieldWorker
	fieldDate
	fieldJob
)

func buildFormFields(sel workflow.Selection) []formField {
	fields := []formField{
		{Label: "Task name"},
		{Label: "Copies"},
		{Label: "Type (space/←→)", kind: kindChoice},
		{Label: "Magazine (space/←→)", kind: kindChoice},
		{Label: "Release (space/←→)", kind: kindChoice},
		{Label: "Newsstand (space/←→)", kind: kindChoice},
		{Label: "Worker (type or space/←→)", kind: kindCombo},
		{Label: "Date (YYYY-MM-DD)"},
		{Label: "Job (space/←→)", kind: kindChoice},
	}
	fields[fieldType].Value = sel.TaskType
	fields[fieldMagazine].Value = sel.Magazine
	fields[fieldRelease].Value = sel.Release
	fields[fieldBusiness].Value = sel.Business
	fields[fieldWorker].Value = sel.Worker
	fields[fieldJob].Value = sel.Job
	if !sel.Date.IsZero() {
		fields[fieldDate].Value = model.FormatDate(sel.Date)
	}
	return fields
}

func parseCopies(value string) (int, error) {
	trimmed := strings.TrimSpace(value)
	copies, err := strconv.Atoi(trimmed)
	if err != nil || copies < 0 {
		return 0, fmt.Errorf("invalid copies %q, want a whole number", trimmed)
	}
	return copies, nil
}

// fieldOptions lists the choices of a choice field. The leading empty entry
// lets the operator leave a field unset.
func (u *UI) fieldOptions(index int) []string {
	lists := u.cascade.Lists()
	var values []string
	switch index {
	case fieldType:
		values = lists.TaskTypes
	case fieldMagazine:
		values = lists.Magazines
	case fieldRelease:
		values = lists.Releases
	case fieldBusiness:
		values = lists.Businesses
	case fieldWorker:
		values = lists.Workers
	case fieldJob:
		values = lists.Jobs
	default:
		return nil
	}
	return append([]string{""}, values...)
}

// applyChoice pushes a choice into the cascade and pulls back the fields the
// cascade may have reset.
func (u *UI) applyChoice(index int, value string) {
	var err error
	switch index {
	case fieldType:
		u.cascade.SelectTaskType(value)
	case fieldMagazine:
		err = u.cascade.SelectMagazine(context.Background(), value)
	case fieldRelease:
		err = u.cascade.SelectRelease(value)
	case fieldBusiness:
		u.cascade.SelectBusiness(value)
	case fieldWorker:
		u.cascade.SelectWorker(value)
	case fieldJob:
		err = u.cascade.SelectJob(value)
	}
	if err != nil {
		u.setError(err)
	}
	u.syncFields()
}

// commitDate reloads jobs when the date field differs from the selection.
func (u *UI) commitDate() error {
	value := strings.TrimSpace(u.form.fields[fieldDate].Value)
	date, err := model.ParseDate(value)
	if err != nil {
		return err
	}
	if date.Equal(u.cascade.Selection().Date) {
		return nil
	}
	err = u.cascade.SelectDate(context.Background(), date)
	u.syncFields()
	return err
}

// syncFields copies the cascade's selection into the choice fields.
func (u *UI) syncFields() {
	if u.form == nil {
		return
	}
	sel := u.cascade.Selection()
	u.form.fields[fieldType].Value = sel.TaskType
	u.form.fields[fieldMagazine].Value = sel.Magazine
	u.form.fields[fieldRelease].Value = sel.Release
	u.form.fields[fieldBusiness].Value = sel.Business
	u.form.fields[fieldWorker].Value = sel.Worker
	u.form.fields[fieldJob].Value = sel.Job
}

func (u *UI) nextFormField(gui *gocui.Gui, view *gocui.View) error {
	return u.moveFormField(view, 1)
}

func (u *UI) prevFormField(gui *gocui.Gui, view *gocui.View) error {
	return u.moveFormField(view, -1)
}

func (u *UI) moveFormField(view *gocui.View, delta int) error {
	if u.form == nil {
		return nil
	}
	if u.form.index == fieldDate {
		if err := u.commitDate(); err != nil {
			u.setError(err)
		}
	}
	next := u.form.index + delta
	if next >= 0 && next < len(u.form.fields) {
		u.form.index = next
	}
	u.renderForm(view)
	return nil
}

func (u *UI) submitForm(gui *gocui.Gui, view *gocui.View) error {
	if u.form == nil || u.submitter == nil {
		return nil
	}

	if err := u.commitDate(); err != nil {
		u.setError(err)
		return nil
	}
	copies, err := parseCopies(u.form.fields[fieldCopies].Value)
	if err != nil {
		u.setError(err)
		return nil
	}

	task := u.cascade.Task(strings.TrimSpace(u.form.fields[fieldName].Value), copies)
	outcome, err := u.submitter.Submit(context.Background(), task)
	switch {
	case err != nil && outcome.Reason == "":
		u.setError(err)
	case err != nil:
		u.setStatus(severityError, outcome.Message())
	default:
		u.setStatus(severityFor(outcome), outcome.Message())
	}

	u.renderForm(view)
	return u.loadHistory()
}

func (u *UI) renderForm(view *gocui.View) {
	if u.form == nil || view == nil {
		return
	}
	view.Clear()
	for index, field := range u.form.fields {
		prefix := "  "
		if index == u.form.index {
			prefix = "> "
		}
		value := field.Value
		if field.kind != kindText && value == "" {
			value = "-"
		}
		fmt.Fprintf(view, "%s%s: %s\n", prefix, field.Label, value)
	}
	field := u.form.fields[u.form.index]
	cursorX := len([]rune(field.Label+": ")) + len([]rune(field.Value)) + 2
	view.SetCursor(cursorX, u.form.index)
}

type formEditor struct {
	ui *UI
}

func (e *formEditor) Edit(view *gocui.View, key gocui.Key, ch rune, mod gocui.Modifier) bool {
	ui := e.ui
	if ui == nil || ui.form == nil {
		return false
	}
	index := ui.form.index
	field := &ui.form.fields[index]

	if field.kind != kindText {
		switch key {
		case gocui.KeyArrowRight, gocui.KeySpace:
			ui.applyChoice(index, cycleOption(ui.fieldOptions(index), field.Value, 1))
		case gocui.KeyArrowLeft:
			ui.applyChoice(index, cycleOption(ui.fieldOptions(index), field.Value, -1))
		default:
			if field.kind == kindChoice || !editText(field, key, ch, mod) {
				return false
			}
			ui.applyChoice(index, field.Value)
		}
		ui.renderForm(view)
		return true
	}

	if !editText(field, key, ch, mod) {
		return false
	}
	ui.renderForm(view)
	return true
}

func editText(field *formField, key gocui.Key, ch rune, mod gocui.Modifier) bool {
	switch {
	case key == gocui.KeyBackspace || key == gocui.KeyBackspace2:
		runes := []rune(field.Value)
		if len(runes) > 0 {
			field.Value = string(runes[:len(runes)-1])
		}
	case key == gocui.KeySpace:
		field.Value += " "
	case key == gocui.KeyCtrlU:
		field.Value = ""
	case ch != 0 && ch != '\n' && ch != '\r' && mod == 0:
		field.Value += string(ch)
	default:
		return false
	}
	return true
}

func cycleOption(options []string, current string, delta int) string {
	if len(options) == 0 {
		return ""
	}
	value := strings.TrimSpace(current)
	index := 0
	for i, option := range options {
		if option == value {
			index = i
			break
		}
	}
	index = (index + delta + len(options)) % len(options)
	return options[index]
}
