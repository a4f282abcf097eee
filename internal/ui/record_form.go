package ui

import (
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/stockdesk/internal/apperr"
	"github.com/ytget/stockdesk/internal/forms"
	"github.com/ytget/stockdesk/internal/model"
)

// formInput binds one schema field to its widget.
type formInput struct {
	field  forms.Field
	entry  *widget.Entry
	sel    *widget.Select
	choice *widget.SelectEntry
	// labels maps option labels back to values for fixed choices.
	labels map[string]string
}

func newFormInput(f forms.Field, current string) *formInput {
	in := &formInput{field: f}
	switch {
	case f.Kind == forms.Password:
		in.entry = widget.NewPasswordEntry()
	case f.Kind == forms.Choice && len(f.Options) > 0:
		in.labels = make(map[string]string, len(f.Options))
		opts := make([]string, len(f.Options))
		selected := ""
		for i, o := range f.Options {
			opts[i] = o.Label
			in.labels[o.Label] = o.Value
			if o.Value == current {
				selected = o.Label
			}
		}
		in.sel = widget.NewSelect(opts, nil)
		if selected != "" {
			in.sel.SetSelected(selected)
		}
		return in
	case f.Kind == forms.Choice:
		in.choice = widget.NewSelectEntry(nil)
		in.choice.SetText(current)
		return in
	default:
		in.entry = widget.NewEntry()
	}
	in.entry.SetText(current)
	if f.Kind == forms.Readonly {
		in.entry.Disable()
	}
	return in
}

func (in *formInput) widget() fyne.CanvasObject {
	switch {
	case in.sel != nil:
		return in.sel
	case in.choice != nil:
		return in.choice
	default:
		return in.entry
	}
}

func (in *formInput) value() string {
	switch {
	case in.sel != nil:
		return in.labels[in.sel.Selected]
	case in.choice != nil:
		return strings.TrimSpace(in.choice.Text)
	default:
		return in.entry.Text
	}
}

// showRecordForm opens the create or edit dialog. orig is nil when creating;
// values pre-fill the inputs when a rejected form is reopened.
func (rs *ResourceScreen) showRecordForm(orig, values model.Record, problem string) {
	l := rs.app.localization
	editing := orig != nil
	if editing && !rs.schema.Editable(orig) {
		rs.app.toast.Warn(rs.title(), l.GetText(KeyOrderLocked))
		return
	}
	if values == nil {
		values = orig
	}

	var (
		inputs []*formInput
		items  []*widget.FormItem
	)
	for _, f := range rs.schema.Fields {
		if editing && f.CreateOnly {
			continue
		}
		if !editing && f.Kind == forms.Readonly {
			continue
		}
		in := newFormInput(f, values.String(f.Key))
		inputs = append(inputs, in)

		item := widget.NewFormItem(l.Field(f.Key, f.Label), in.widget())
		if f.Required {
			item.HintText = "*"
		}
		items = append(items, item)

		if f.Source != "" && in.choice != nil {
			rs.fillChoice(in.choice, f.Source)
		}
	}
	if problem != "" {
		msg := widget.NewLabel(problem)
		msg.Importance = widget.DangerImportance
		msg.Wrapping = fyne.TextWrapWord
		items = append([]*widget.FormItem{widget.NewFormItem("", msg)}, items...)
	}

	title := l.GetText(KeyNewRecord)
	if editing {
		title = l.GetText(KeyEditRecord)
	}

	d := dialog.NewForm(title, l.GetText(KeySave), l.GetText(KeyCancel), items, func(ok bool) {
		if !ok {
			return
		}
		entered := model.Record{}
		for _, in := range inputs {
			entered[in.field.Key] = in.value()
		}
		if err := rs.schema.Validate(entered); err != nil {
			rs.showRecordForm(orig, entered, apperr.Message(err))
			return
		}
		rs.submit(orig, numeric(rs.schema, rs.schema.Payload(entered)))
	}, rs.app.window)
	d.Resize(fyne.NewSize(FormDialogWidth, FormDialogHeight))
	d.Show()
}

func (rs *ResourceScreen) submit(orig, payload model.Record) {
	if orig == nil {
		go func() { _ = rs.ctrl.Create(payload) }()
		return
	}
	id := rs.desc.ID(orig)
	go func() { _ = rs.ctrl.Update(id, payload) }()
}

// fillChoice loads a lookup list into a free-text choice input.
func (rs *ResourceScreen) fillChoice(choice *widget.SelectEntry, source string) {
	go func() {
		opts, err := rs.app.svc.Lookup.Options(source)
		if err != nil {
			rs.app.logger.Warn("lookup failed", "source", source, "error", err)
			return
		}
		fyne.Do(func() { choice.SetOptions(opts) })
	}()
}

// numeric converts validated Integer and Decimal inputs to numbers. Empty
// optional values are dropped.
func numeric(s *forms.Schema, rec model.Record) model.Record {
	for _, f := range s.Fields {
		raw, ok := rec[f.Key].(string)
		if !ok {
			continue
		}
		switch f.Kind {
		case forms.Integer:
			if raw == "" {
				delete(rec, f.Key)
			} else if n, err := strconv.Atoi(raw); err == nil {
				rec[f.Key] = n
			}
		case forms.Decimal:
			if raw == "" {
				delete(rec, f.Key)
			} else if x, err := strconv.ParseFloat(raw, 64); err == nil {
				rec[f.Key] = x
			}
		case forms.Password:
			if raw == "" {
				delete(rec, f.Key)
			}
		}
	}
	return rec
}
