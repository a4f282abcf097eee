package ui

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/stockdesk/internal/apperr"
	"github.com/ytget/stockdesk/internal/catalog"
	"github.com/ytget/stockdesk/internal/forms"
	"github.com/ytget/stockdesk/internal/listview"
	"github.com/ytget/stockdesk/internal/model"
	"github.com/ytget/stockdesk/internal/platform"
	"github.com/ytget/stockdesk/internal/transfer"
)

// ResourceScreen is the table, toolbar and pager of one resource. The
// controller does the work; the screen only renders snapshots and forwards
// operator actions to it on background goroutines.
type ResourceScreen struct {
	app    *App
	desc   *catalog.Descriptor
	ctrl   *listview.Controller
	schema *forms.Schema

	// snap is the last published snapshot. UI goroutine only.
	snap listview.Snapshot

	table          *widget.Table
	search         *searchBar
	filterSelect   *widget.Select
	selectAllCheck *widget.Check
	progress       *widget.ProgressBarInfinite
	countLabel     *widget.Label
	pageLabel      *widget.Label
	pageEntry      *widget.Entry
	prevBtn        *widget.Button
	nextBtn        *widget.Button
	actionBtns     []*widget.Button

	content fyne.CanvasObject
}

func newResourceScreen(a *App, desc *catalog.Descriptor, ctrl *listview.Controller) *ResourceScreen {
	rs := &ResourceScreen{app: a, desc: desc, ctrl: ctrl}
	if s, err := forms.For(desc.Name); err == nil {
		rs.schema = s
	}
	rs.snap = ctrl.Snapshot()
	rs.createUI()
	ctrl.OnChange(func(s listview.Snapshot) {
		fyne.Do(func() { rs.apply(s) })
	})
	return rs
}

// Container returns the screen content.
func (rs *ResourceScreen) Container() fyne.CanvasObject {
	return rs.content
}

// Start loads the first page and the option lists of the search inputs.
func (rs *ResourceScreen) Start() {
	go func() { _ = rs.ctrl.Load(1, nil) }()

	sources := rs.search.Sources()
	if rs.desc.FilterKey != "" {
		sources = append(sources, forms.SourceCategories)
	}
	for _, source := range dedupe(sources) {
		source := source
		go func() {
			opts, err := rs.app.svc.Lookup.Options(source)
			if err != nil {
				rs.app.logger.Warn("lookup failed", "source", source, "error", err)
				return
			}
			fyne.Do(func() {
				rs.search.SetOptions(source, opts)
				if rs.filterSelect != nil && source == forms.SourceCategories {
					rs.filterSelect.Options = append([]string{rs.app.localization.GetText(KeyAll)}, opts...)
					rs.filterSelect.Refresh()
				}
			})
		}()
	}
}

func (rs *ResourceScreen) createUI() {
	l := rs.app.localization

	rs.table = widget.NewTableWithHeaders(
		func() (int, int) { return len(rs.snap.Items), len(rs.desc.Columns) + 1 },
		func() fyne.CanvasObject {
			lbl := widget.NewLabel("")
			lbl.Truncation = fyne.TextTruncateEllipsis
			return lbl
		},
		rs.updateCell,
	)
	rs.table.ShowHeaderColumn = false
	rs.table.CreateHeader = func() fyne.CanvasObject {
		lbl := widget.NewLabel("")
		lbl.TextStyle = fyne.TextStyle{Bold: true}
		return lbl
	}
	rs.table.UpdateHeader = func(id widget.TableCellID, obj fyne.CanvasObject) {
		lbl := obj.(*widget.Label)
		if id.Col == 0 {
			lbl.SetText("")
			return
		}
		col := rs.desc.Columns[id.Col-1]
		lbl.SetText(l.Field(col.Key, col.Title))
	}
	rs.table.OnSelected = func(id widget.TableCellID) {
		rs.table.Unselect(id)
		if id.Row < 0 || id.Row >= len(rs.snap.Items) {
			return
		}
		recID := rs.desc.ID(rs.snap.Items[id.Row])
		on := !rs.snap.IsSelected(recID)
		go rs.ctrl.Select(recID, on)
	}
	rs.table.SetColumnWidth(0, SelectColumnWidth)
	for i, col := range rs.desc.Columns {
		rs.table.SetColumnWidth(i+1, columnWidth(col.Key))
	}

	rs.search = newSearchBar(rs.desc, l)
	searchBtn := widget.NewButton(l.GetText(KeySearch), rs.onSearch)
	searchBtn.Importance = widget.HighImportance
	clearBtn := widget.NewButton(l.GetText(KeyClear), rs.onClearSearch)
	searchRow := rs.search.Container(searchBtn, clearBtn)

	rs.progress = widget.NewProgressBarInfinite()
	rs.progress.Hide()

	top := container.NewVBox(rs.createToolbar(), searchRow, rs.progress)
	rs.content = container.NewBorder(top, rs.createPager(), nil, nil, rs.table)
}

func (rs *ResourceScreen) createToolbar() fyne.CanvasObject {
	l := rs.app.localization
	can := rs.desc.Can

	rs.selectAllCheck = widget.NewCheck(l.GetText(KeySelectAll), func(on bool) {
		go rs.ctrl.SelectAll(on)
	})

	items := []fyne.CanvasObject{rs.selectAllCheck}
	add := func(key string, enabled bool, fn func()) {
		if !enabled {
			return
		}
		btn := widget.NewButton(l.GetText(key), fn)
		rs.actionBtns = append(rs.actionBtns, btn)
		items = append(items, btn)
	}
	add(KeyAdd, can.Create && rs.schema != nil, func() { rs.showRecordForm(nil, nil, "") })
	add(KeyEdit, can.Update && rs.schema != nil, rs.onEdit)
	add(KeyDelete, can.Delete, rs.onDelete)
	add(KeyRefresh, true, func() { go func() { _ = rs.ctrl.Reload() }() })
	add(KeyExport, can.Export, rs.onExport)
	add(KeyImport, can.Import, rs.onImport)
	add(KeyReceipt, can.Receipt, rs.onReceipt)

	if rs.desc.FilterKey != "" {
		rs.filterSelect = widget.NewSelect([]string{l.GetText(KeyAll)}, rs.onFilterChanged)
		rs.filterSelect.PlaceHolder = l.Field(rs.desc.FilterKey, rs.desc.FilterKey)
		items = append(items, widget.NewSeparator(), rs.filterSelect)
	}
	return container.NewHBox(items...)
}

func (rs *ResourceScreen) createPager() fyne.CanvasObject {
	l := rs.app.localization

	rs.prevBtn = widget.NewButton(IconPrev, func() { go func() { _ = rs.ctrl.PrevPage() }() })
	rs.nextBtn = widget.NewButton(IconNext, func() { go func() { _ = rs.ctrl.NextPage() }() })
	rs.pageLabel = widget.NewLabel("")
	rs.countLabel = widget.NewLabel("")

	rs.pageEntry = widget.NewEntry()
	rs.pageEntry.SetPlaceHolder("#")
	rs.pageEntry.OnSubmitted = func(string) { rs.onGoToPage() }
	goBtn := widget.NewButton(l.GetText(KeyGo), rs.onGoToPage)
	entry := container.NewGridWrap(fyne.NewSize(PageEntryWidth, rs.pageEntry.MinSize().Height), rs.pageEntry)

	rs.apply(rs.snap)
	return container.NewHBox(rs.countLabel, widget.NewSeparator(), rs.prevBtn, rs.pageLabel, rs.nextBtn, entry, goBtn)
}

func (rs *ResourceScreen) updateCell(id widget.TableCellID, obj fyne.CanvasObject) {
	lbl := obj.(*widget.Label)
	if id.Row >= len(rs.snap.Items) {
		lbl.SetText("")
		return
	}
	rec := rs.snap.Items[id.Row]
	if id.Col == 0 {
		mark := IconBlank
		if rs.snap.IsSelected(rs.desc.ID(rec)) {
			mark = IconChecked
		}
		if rs.schema != nil && !rs.schema.Editable(rec) {
			mark += IconLocked
		}
		lbl.SetText(mark)
		return
	}
	lbl.SetText(rs.desc.Cell(rec, rs.desc.Columns[id.Col-1]))
}

// apply renders a snapshot. It must run on the UI goroutine.
func (rs *ResourceScreen) apply(s listview.Snapshot) {
	rs.snap = s
	l := rs.app.localization

	if s.State.IsBusy() {
		rs.progress.Show()
		for _, b := range rs.actionBtns {
			b.Disable()
		}
	} else {
		rs.progress.Hide()
		for _, b := range rs.actionBtns {
			b.Enable()
		}
	}

	rs.selectAllCheck.Checked = s.AllSelected()
	rs.selectAllCheck.Refresh()

	switch {
	case s.State.IsBusy():
		rs.countLabel.SetText(l.GetText(KeyLoading))
	case s.Page.Empty():
		rs.countLabel.SetText(l.GetText(KeyNoRecords))
	default:
		rs.countLabel.SetText(fmt.Sprintf(l.GetText(KeyRecordsCount), s.Page.Count))
	}
	rs.pageLabel.SetText(fmt.Sprintf(PageLabelFormat, s.Page.Page, s.Page.TotalPages))
	setEnabled(rs.prevBtn, s.Page.HasPrev() && !s.State.IsBusy())
	setEnabled(rs.nextBtn, s.Page.HasNext() && !s.State.IsBusy())

	if rs.table != nil {
		rs.table.Refresh()
	}
}

func (rs *ResourceScreen) onGoToPage() {
	n, err := strconv.Atoi(strings.TrimSpace(rs.pageEntry.Text))
	if err != nil || n < 1 || n > rs.snap.Page.TotalPages {
		rs.app.toast.Warn(rs.title(), fmt.Sprintf(PageLabelFormat, rs.snap.Page.Page, rs.snap.Page.TotalPages))
		return
	}
	rs.pageEntry.SetText("")
	go func() { _ = rs.ctrl.GoToPage(n) }()
}

func (rs *ResourceScreen) onFilterChanged(label string) {
	filter := url.Values{}
	if label != "" && label != rs.app.localization.GetText(KeyAll) {
		filter.Set(rs.desc.FilterKey, label)
	}
	go func() { _ = rs.ctrl.SetFilter(filter) }()
}

func (rs *ResourceScreen) onSearch() {
	criteria := rs.search.Values()
	if rs.desc.Name == catalog.History {
		q, err := forms.HistoryQuery(rs.search.Get("year"), rs.search.Get("month"))
		if err != nil {
			rs.app.toast.Warn(rs.title(), apperr.Message(err))
			return
		}
		criteria = q
	}
	go func() { _ = rs.ctrl.Search(criteria) }()
}

func (rs *ResourceScreen) onClearSearch() {
	rs.search.Reset()
	filter := rs.snap.Filter
	go func() { _ = rs.ctrl.Load(1, filter) }()
}

func (rs *ResourceScreen) onEdit() {
	ids := rs.selectedIDs()
	if len(ids) != 1 {
		rs.app.toast.Warn(rs.title(), rs.app.localization.GetText(KeySelectOne))
		return
	}
	rs.ctrl.FetchAsync(ids[0], func(rec model.Record, err error) {
		fyne.Do(func() {
			if err != nil {
				rs.app.toast.Warn(rs.title(), apperr.Message(err))
				return
			}
			rs.showRecordForm(rec, nil, "")
		})
	})
}

func (rs *ResourceScreen) onDelete() {
	ids := rs.selectedIDs()
	l := rs.app.localization
	if len(ids) == 0 {
		rs.app.toast.Warn(rs.title(), l.GetText(KeySelectSome))
		return
	}
	msg := fmt.Sprintf(l.GetText(KeyConfirmDelete), len(ids))
	dialog.ShowConfirm(l.GetText(KeyDelete), msg, func(ok bool) {
		if !ok {
			return
		}
		go func() { _, _ = rs.ctrl.Delete(ids) }()
	}, rs.app.window)
}

// exportSource picks what an export writes: the selected rows, the held
// search results, or everything under the active filter.
func (rs *ResourceScreen) exportSource() transfer.Source {
	src := transfer.Source{IDs: rs.selectedIDs(), Filter: rs.snap.Filter}
	if rs.snap.Searching() {
		src.Filter = rs.snap.Criteria
		if len(src.IDs) == 0 && rs.desc.Paging != catalog.CriteriaOnly {
			src.Records = rs.ctrl.Records()
		}
	}
	return src
}

func (rs *ResourceScreen) onExport() {
	src := rs.exportSource()
	name := rs.desc.Name + transfer.CSVExtension
	rs.saveFile(name, transfer.CSVExtension, func(path string) {
		if _, err := rs.app.svc.Transfer.Export(rs.desc, src, path); err != nil {
			rs.app.toast.Warn(rs.title(), apperr.Message(err))
		}
	})
}

func (rs *ResourceScreen) onImport() {
	d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil || r == nil {
			return
		}
		path := r.URI().Path()
		_ = r.Close()
		if _, err := rs.app.svc.Transfer.Import(rs.desc, path); err != nil {
			rs.app.toast.Warn(rs.title(), apperr.Message(err))
		}
	}, rs.app.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{transfer.CSVExtension}))
	rs.setDialogLocation(d)
	d.Show()
}

func (rs *ResourceScreen) onReceipt() {
	ids := rs.selectedIDs()
	if len(ids) != 1 {
		rs.app.toast.Warn(rs.title(), rs.app.localization.GetText(KeySelectOne))
		return
	}
	orderID := ids[0]
	rs.saveFile(platform.SafeFileName(orderID)+transfer.PDFExtension, transfer.PDFExtension, func(path string) {
		if _, err := rs.app.svc.Transfer.SaveReceipt(orderID, path); err != nil {
			rs.app.toast.Warn(rs.title(), apperr.Message(err))
		}
	})
}

// saveFile asks for a destination and hands its path to fn.
func (rs *ResourceScreen) saveFile(name, ext string, fn func(path string)) {
	d := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil || w == nil {
			return
		}
		path := w.URI().Path()
		_ = w.Close()
		fn(path)
	}, rs.app.window)
	d.SetFileName(name)
	d.SetFilter(storage.NewExtensionFileFilter([]string{ext}))
	rs.setDialogLocation(d)
	d.Show()
}

type locatable interface {
	SetLocation(fyne.ListableURI)
}

func (rs *ResourceScreen) setDialogLocation(d locatable) {
	dir := rs.app.settings.GetExportDirectory()
	if dir == "" {
		return
	}
	if err := platform.CreateDirectoryIfNotExists(dir); err != nil {
		return
	}
	lister, err := storage.ListerForURI(storage.NewFileURI(filepath.Clean(dir)))
	if err != nil {
		return
	}
	d.SetLocation(lister)
}

func (rs *ResourceScreen) title() string {
	return rs.app.localization.Resource(rs.desc.Name, rs.desc.Title)
}

// selectedIDs returns the selected ids of the last snapshot in display order.
func (rs *ResourceScreen) selectedIDs() []string {
	var out []string
	for _, rec := range rs.snap.Items {
		if id := rs.desc.ID(rec); rs.snap.IsSelected(id) {
			out = append(out, id)
		}
	}
	return out
}

func columnWidth(key string) float32 {
	switch {
	case strings.HasSuffix(key, "_name"), strings.HasSuffix(key, "_at"), key == "model":
		return WideColumnWidth
	default:
		return DefaultColumnWidth
	}
}

func setEnabled(b *widget.Button, on bool) {
	if on {
		b.Enable()
	} else {
		b.Disable()
	}
}

func dedupe(in []string) []string {
	seen := map[string]bool{}
	out := in[:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
