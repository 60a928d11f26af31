package tui

import (
	"context"
	"fmt"
	"strings"

	goerrors "github.com/go-errors/errors"
	"github.com/jesseduffield/gocui"
)

type dialogKind int

const (
	dialogNone dialogKind = iota
	dialogLocation
	dialogPhone
)

func (k dialogKind) title() string {
	switch k {
	case dialogLocation:
		return "New Location (country, region, province)"
	case dialogPhone:
		return "New Phone Number"
	default:
		return ""
	}
}

func parseLocation(value string) (country, region, province string, err error) {
	parts := strings.Split(value, ",")
	if len(parts) != 3 {
		return "", "", "", fmt.Errorf("location needs country, region and province separated by commas")
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
		if parts[i] == "" {
			return "", "", "", fmt.Errorf("location parts must not be empty")
		}
	}
	return parts[0], parts[1], parts[2], nil
}

func (u *UI) openLocationDialog(gui *gocui.Gui, _ *gocui.View) error {
	return u.openDialog(dialogLocation)
}

func (u *UI) openPhoneDialog(gui *gocui.Gui, _ *gocui.View) error {
	return u.openDialog(dialogPhone)
}

func (u *UI) openDialog(kind dialogKind) error {
	if u.dialog != dialogNone || u.helpActive || u.master == nil {
		return nil
	}
	u.dialog = kind
	return nil
}

func (u *UI) submitDialog(gui *gocui.Gui, view *gocui.View) error {
	if u.dialog == dialogNone || view == nil {
		return nil
	}
	if err := u.saveDialogValue(strings.TrimSpace(view.Buffer())); err != nil {
		u.setError(err)
		return nil
	}
	return u.closeDialog(gui)
}

// saveDialogValue calls the scalar insert behind the open dialog.
func (u *UI) saveDialogValue(value string) error {
	ctx := context.Background()
	switch u.dialog {
	case dialogLocation:
		country, region, province, err := parseLocation(value)
		if err != nil {
			return err
		}
		result, err := u.master.InsertLocation(ctx, country, region, province)
		if err != nil {
			return err
		}
		u.setStatus(severitySuccess, fmt.Sprintf("location saved (%s)", result))
	case dialogPhone:
		if value == "" {
			return fmt.Errorf("phone number must not be empty")
		}
		result, err := u.master.InsertPhoneNumber(ctx, value)
		if err != nil {
			return err
		}
		u.setStatus(severitySuccess, fmt.Sprintf("phone number saved (%s)", result))
	}
	return nil
}

func (u *UI) cancelDialog(gui *gocui.Gui, _ *gocui.View) error {
	if u.dialog == dialogNone {
		return nil
	}
	return u.closeDialog(gui)
}

func (u *UI) closeDialog(gui *gocui.Gui) error {
	u.dialog = dialogNone
	if gui != nil {
		_ = gui.DeleteView(viewDialog)
		_, _ = gui.SetCurrentView(u.focus)
	}
	return nil
}

func (u *UI) showDialog(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(48, maxX/3)
	height := 3
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2
	x1 := x0 + width
	y1 := y0 + height

	view, err := gui.SetView(viewDialog, x0, y0, x1, y1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Wrap = true
		view.Clear()
	}
	view.Title = u.dialog.title()
	view.Editable = true
	view.Editor = gocui.DefaultEditor
	_, _ = gui.SetCurrentView(viewDialog)
	return nil
}
