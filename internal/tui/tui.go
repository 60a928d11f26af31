package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/go-errors/errors"
	"github.com/jesseduffield/gocui"
	log "github.com/sirupsen/logrus"

	"github.com/Joseda-hg/distributor/internal/journal"
	"github.com/Joseda-hg/distributor/internal/status"
	"github.com/Joseda-hg/distributor/internal/workflow"
)

const (
	viewHeader  = "header"
	viewFooter  = "footer"
	viewForm    = "form"
	viewOptions = "options"
	viewHistory = "history"
	viewHelp    = "help"
	viewDialog  = "dialog"
)

const historyLimit = 100

type HistoryLister interface {
	List(ctx context.Context, limit int) ([]journal.Entry, error)
}

// MasterData inserts the records the task form does not cover.
type MasterData interface {
	InsertLocation(ctx context.Context, country, region, province string) (string, error)
	InsertPhoneNumber(ctx context.Context, number string) (string, error)
}

type Options struct {
	Cascade   *workflow.Cascade
	Submitter *workflow.Submitter
	Journal   HistoryLister
	Master    MasterData
	// Target is the database address shown in the header.
	Target string
	Date   time.Time
}

type severity int

const (
	severityInfo severity = iota
	severitySuccess
	severityWarning
	severityError
)

func severityFor(outcome status.Outcome) severity {
	switch outcome.Category {
	case status.CategorySuccess:
		return severitySuccess
	case status.CategoryRejected:
		return severityWarning
	default:
		return severityError
	}
}

type UI struct {
	cascade   *workflow.Cascade
	submitter *workflow.Submitter
	journal   HistoryLister
	master    MasterData
	target    string
	gui       *gocui.Gui

	form       *formState
	formEditor *formEditor

	history         []journal.Entry
	selectedHistory int
	focus           string

	dialog     dialogKind
	helpActive bool

	status         string
	statusSeverity severity
}

type formState struct {
	fields []formField
	index  int
}

func Run(opts Options) error {
	if opts.Cascade == nil || opts.Submitter == nil {
		return fmt.Errorf("task form needs a cascade and a submitter")
	}

	gui, err := gocui.NewGui(gocui.NewGuiOpts{OutputMode: gocui.OutputNormal})
	if err != nil {
		return err
	}
	defer gui.Close()

	ui := newUI(opts)
	ui.gui = gui
	ui.formEditor = &formEditor{ui: ui}

	gui.SetManagerFunc(ui.layout)
	if err := ui.bindKeys(gui); err != nil {
		return err
	}
	if err := ui.load(opts.Date); err != nil {
		ui.setError(err)
	}
	if err := ui.loadHistory(); err != nil {
		ui.setError(err)
	}

	if err := gui.MainLoop(); err != nil && !goerrors.Is(err, gocui.ErrQuit) {
		return err
	}

	return nil
}

func newUI(opts Options) *UI {
	return &UI{
		cascade:   opts.Cascade,
		submitter: opts.Submitter,
		journal:   opts.Journal,
		master:    opts.Master,
		target:    opts.Target,
		focus:     viewForm,
		form:      &formState{fields: buildFormFields(opts.Cascade.Selection())},
	}
}

// load fills every list and rebuilds the form, keeping typed text fields.
func (u *UI) load(date time.Time) error {
	err := u.cascade.Load(context.Background(), date)
	name := u.form.fields[fieldName].Value
	copies := u.form.fields[fieldCopies].Value
	u.form.fields = buildFormFields(u.cascade.Selection())
	u.form.fields[fieldName].Value = name
	u.form.fields[fieldCopies].Value = copies
	return err
}

func (u *UI) bindKeys(gui *gocui.Gui) error {
	bindings := []struct {
		view    string
		key     any
		handler func(*gocui.Gui, *gocui.View) error
	}{
		{"", gocui.KeyCtrlC, u.quit},
		{"", gocui.KeyF1, u.toggleHelp},
		{"", gocui.KeyF2, u.switchFocus},
		{"", gocui.KeyCtrlR, u.reloadLists},
		{"", gocui.KeyF5, u.refreshField},
		{"", gocui.KeyCtrlL, u.openLocationDialog},
		{"", gocui.KeyCtrlP, u.openPhoneDialog},
		{viewForm, gocui.KeyEnter, u.submitForm},
		{viewForm, gocui.KeyTab, u.nextFormField},
		{viewForm, gocui.KeyArrowDown, u.nextFormField},
		{viewForm, gocui.KeyArrowUp, u.prevFormField},
		{viewHistory, gocui.KeyArrowDown, u.moveDown},
		{viewHistory, 'j', u.moveDown},
		{viewHistory, gocui.KeyArrowUp, u.moveUp},
		{viewHistory, 'k', u.moveUp},
		{viewHistory, 'q', u.quit},
		{viewHistory, 'r', u.refreshHistory},
		{viewHistory, gocui.KeyEsc, u.switchFocus},
		{viewDialog, gocui.KeyEnter, u.submitDialog},
		{viewDialog, gocui.KeyEsc, u.cancelDialog},
		{viewHelp, gocui.KeyEsc, u.closeHelp},
		{viewHelp, 'q', u.closeHelp},
	}
	for _, b := range bindings {
		if err := gui.SetKeybinding(b.view, b.key, gocui.ModNone, b.handler); err != nil {
			return err
		}
	}
	return nil
}

func (u *UI) layout(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	if maxX <= 0 || maxY <= 0 {
		return nil
	}

	headerView, err := gui.SetView(viewHeader, 0, 0, maxX-1, 0, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	headerView.Frame = false
	headerView.Wrap = true
	u.renderHeader(headerView)

	footerY1 := max(maxY-2, 1)
	footerY0 := max(footerY1-2, 1)
	footerView, err := gui.SetView(viewFooter, 0, footerY0, maxX-1, footerY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	footerView.Frame = false
	footerView.Wrap = true
	u.renderFooter(footerView)

	bodyTop := 1
	bodyBottom := footerY0 - 1
	if bodyBottom < bodyTop {
		return nil
	}

	l := computeLayout(maxX, bodyBottom-bodyTop+1)
	leftX1 := l.formWidth - 1
	rightX0 := min(leftX1+1, maxX-1)
	optionsY1 := bodyTop + l.optionsHeight - 1

	formView, err := gui.SetView(viewForm, 0, bodyTop, leftX1, bodyBottom, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		formView.Wrap = false
	}
	formView.Title = u.formTitle()
	formView.Editable = true
	formView.KeybindOnEdit = true
	formView.Editor = u.formEditor
	applyViewStyle(formView, u.focus == viewForm, false)
	u.renderForm(formView)

	optionsView, err := gui.SetView(viewOptions, rightX0, bodyTop, maxX-1, optionsY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		optionsView.TitleColor = gocui.ColorYellow
	}
	optionsView.Title = "Choices"
	applyViewStyle(optionsView, false, false)
	u.renderOptions(optionsView)

	historyView, err := gui.SetView(viewHistory, rightX0, optionsY1+1, maxX-1, bodyBottom, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		historyView.Title = "Submissions"
	}
	applyViewStyle(historyView, u.focus == viewHistory, true)
	u.renderHistory(historyView, u.focus == viewHistory)

	if u.dialog != dialogNone {
		if err := u.showDialog(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewDialog)
	}

	if u.helpActive {
		if err := u.showHelp(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewHelp)
	}

	if gui.CurrentView() == nil {
		_, _ = gui.SetCurrentView(u.focus)
	}
	gui.Cursor = u.focus == viewForm || u.dialog != dialogNone

	return nil
}

type layout struct {
	formWidth     int
	optionsHeight int
}

func computeLayout(width, height int) layout {
	safeWidth := max(width-2, 20)
	safeHeight := max(height, 8)

	formWidth := safeWidth / 2
	if formWidth < 44 {
		formWidth = 44
	}
	if formWidth > safeWidth-18 {
		formWidth = safeWidth / 2
	}

	optionsHeight := max(int(float64(safeHeight)*0.45), 4)
	if safeHeight-optionsHeight < 4 {
		optionsHeight = safeHeight - 4
	}

	return layout{formWidth: formWidth, optionsHeight: optionsHeight}
}

func (u *UI) formTitle() string {
	if u.submitter.Mode().IsUpdate() {
		return fmt.Sprintf("Update Task #%d", u.submitter.Mode().ID())
	}
	return "New Task"
}

func (u *UI) renderHeader(view *gocui.View) {
	view.Clear()
	target := u.target
	if target == "" {
		target = "-"
	}
	fmt.Fprintf(view, "Database: %s | Mode: %s | Date: %s", target, u.submitter.Mode(), u.form.fields[fieldDate].Value)
}

func (u *UI) renderFooter(view *gocui.View) {
	view.Clear()
	view.SetOrigin(0, 0)
	view.SetCursor(0, 0)

	fmt.Fprintln(view, "enter submit | tab/↑↓ field | space/←→ choose | F5 refresh list | ctrl-r reload all")
	fmt.Fprintln(view, "ctrl-l location | ctrl-p phone | F2 submissions | F1 help | ctrl-c quit")
	if u.status != "" {
		fmt.Fprint(view, colorize(u.statusSeverity, u.status))
	}
}

func colorize(level severity, text string) string {
	switch level {
	case severitySuccess:
		return "\x1b[32m" + text + "\x1b[0m"
	case severityWarning:
		return "\x1b[33m" + text + "\x1b[0m"
	case severityError:
		return "\x1b[31m" + text + "\x1b[0m"
	default:
		return text
	}
}

// renderOptions lists the choices of the focused field.
func (u *UI) renderOptions(view *gocui.View) {
	view.Clear()
	if u.form == nil {
		return
	}
	field := u.form.fields[u.form.index]
	if field.kind == kindText {
		fmt.Fprint(view, "  (free text)")
		return
	}
	if field.kind == kindCombo {
		fmt.Fprintln(view, "  (type a name or pick one)")
	}
	for _, option := range u.fieldOptions(u.form.index)[1:] {
		prefix := " "
		if option == field.Value {
			prefix = ">"
		}
		fmt.Fprintf(view, "%s %s\n", prefix, option)
	}
}

func (u *UI) renderHistory(view *gocui.View, focused bool) {
	view.Clear()
	for index, entry := range u.history {
		prefix := " "
		if index == u.selectedHistory {
			if focused {
				prefix = ">"
			} else {
				prefix = "*"
			}
		}
		fmt.Fprintf(view, "%s %s\n", prefix, entry.Summary())
	}
	if focused && len(u.history) > 0 {
		view.SetCursor(0, min(u.selectedHistory, len(u.history)-1))
	}
}

func (u *UI) loadHistory() error {
	if u.journal == nil {
		u.history = nil
		return nil
	}
	history, err := u.journal.List(context.Background(), historyLimit)
	if err != nil {
		return err
	}
	u.history = history
	if u.selectedHistory >= len(u.history) {
		u.selectedHistory = max(len(u.history)-1, 0)
	}
	return nil
}

func (u *UI) setStatus(level severity, text string) {
	u.status = text
	u.statusSeverity = level
}

func (u *UI) setError(err error) {
	log.WithError(err).Warn("task form")
	u.setStatus(severityError, "ERROR: "+err.Error())
}

func (u *UI) switchFocus(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if u.focus == viewForm {
		u.focus = viewHistory
	} else {
		u.focus = viewForm
	}
	if gui != nil {
		_, _ = gui.SetCurrentView(u.focus)
	}
	return nil
}

func (u *UI) moveDown(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if u.selectedHistory < len(u.history)-1 {
		u.selectedHistory++
	}
	return nil
}

func (u *UI) moveUp(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if u.selectedHistory > 0 {
		u.selectedHistory--
	}
	return nil
}

func (u *UI) refreshHistory(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if err := u.loadHistory(); err != nil {
		u.setError(err)
	}
	return nil
}

// reloadLists refetches every list for the date currently in the form.
func (u *UI) reloadLists(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	date := u.cascade.Selection().Date
	if value := strings.TrimSpace(u.form.fields[fieldDate].Value); value != "" {
		if err := u.commitDate(); err != nil {
			u.setError(err)
			return nil
		}
		date = u.cascade.Selection().Date
	}
	if err := u.load(date); err != nil {
		u.setError(err)
		return nil
	}
	u.setStatus(severityInfo, "lists reloaded")
	return nil
}

// refreshField reloads the list behind the focused field, as after a sibling
// dialog added to it elsewhere.
func (u *UI) refreshField(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	set, ok := refreshSet(u.form.index)
	if !ok {
		return u.reloadLists(gui, nil)
	}
	if err := u.cascade.Refresh(context.Background(), set); err != nil {
		u.setError(err)
	} else {
		u.setStatus(severityInfo, set.String()+" reloaded")
	}
	u.syncFields()
	return nil
}

func refreshSet(index int) (workflow.Set, bool) {
	switch index {
	case fieldMagazine:
		return workflow.SetMagazines, true
	case fieldRelease:
		return workflow.SetReleases, true
	case fieldBusiness:
		return workflow.SetBusinesses, true
	case fieldWorker:
		return workflow.SetWorkers, true
	case fieldJob:
		return workflow.SetJobs, true
	default:
		return 0, false
	}
}

func (u *UI) toggleHelp(gui *gocui.Gui, _ *gocui.View) error {
	if u.dialog != dialogNone {
		return nil
	}
	if u.helpActive {
		return u.closeHelp(gui, nil)
	}
	u.helpActive = true
	return nil
}

func (u *UI) closeHelp(gui *gocui.Gui, _ *gocui.View) error {
	u.helpActive = false
	if gui != nil {
		_ = gui.DeleteView(viewHelp)
		_, _ = gui.SetCurrentView(u.focus)
	}
	return nil
}

func (u *UI) showHelp(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(60, maxX/2)
	height := 16
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewHelp, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Title = "Help"
		view.Wrap = true
	}
	view.Clear()
	fmt.Fprint(view, helpText())
	_, _ = gui.SetCurrentView(viewHelp)
	return nil
}

func (u *UI) inputActive() bool {
	return u.dialog != dialogNone || u.helpActive
}

func (u *UI) quit(_ *gocui.Gui, _ *gocui.View) error {
	return gocui.ErrQuit
}

func helpText() string {
	return strings.Join([]string{
		"Form:",
		"  tab or arrows move between fields",
		"  space/left/right cycle the choices of a list field",
		"  changing the magazine reloads its releases",
		"  leaving the date field reloads the jobs of that day",
		"  enter submits the task",
		"",
		"Lists:",
		"  F5 reload the list of the focused field",
		"  ctrl-r reload every list",
		"",
		"Other:",
		"  ctrl-l add location | ctrl-p add phone number",
		"  F2 focus submissions (j/k move, r refresh)",
		"  F1/esc close help | ctrl-c quit",
	}, "\n")
}

func applyViewStyle(view *gocui.View, focused bool, highlight bool) {
	view.Frame = true
	view.Highlight = focused && highlight
	view.HighlightInactive = false
	view.SelBgColor = gocui.ColorBlue
	view.SelFgColor = gocui.ColorBlack
	view.InactiveViewSelBgColor = gocui.ColorDefault
	if focused {
		view.FrameColor = gocui.ColorCyan
		view.TitleColor = gocui.ColorCyan
	} else {
		view.FrameColor = gocui.ColorDefault
	}
}
