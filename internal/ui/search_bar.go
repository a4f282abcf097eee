package ui

import (
	"net/url"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/stockdesk/internal/catalog"
	"github.com/ytget/stockdesk/internal/forms"
	"github.com/ytget/stockdesk/internal/model"
)

// criterion is one search input. Select-backed criteria map display labels
// back to backend codes.
type criterion struct {
	key    string
	entry  *widget.Entry
	sel    *widget.Select
	values map[string]string
	// source is the lookup list that fills sel, if any.
	source string
}

func (c *criterion) value() string {
	if c.entry != nil {
		return strings.TrimSpace(c.entry.Text)
	}
	if c.sel.Selected == "" {
		return ""
	}
	if v, ok := c.values[c.sel.Selected]; ok {
		return v
	}
	return c.sel.Selected
}

func (c *criterion) reset() {
	if c.entry != nil {
		c.entry.SetText("")
		return
	}
	c.sel.ClearSelected()
}

func (c *criterion) widget() fyne.CanvasObject {
	if c.entry != nil {
		return c.entry
	}
	return c.sel
}

// setOptions replaces the choices of a select-backed criterion.
func (c *criterion) setOptions(labels []string) {
	if c.sel == nil {
		return
	}
	c.sel.Options = labels
	c.sel.Refresh()
}

// searchBar holds the search inputs of one resource.
type searchBar struct {
	desc     *catalog.Descriptor
	criteria []*criterion
	// idEntry looks a single record up by id; it overrides the other inputs.
	idEntry *widget.Entry
}

func newSearchBar(desc *catalog.Descriptor, l *Localization) *searchBar {
	sb := &searchBar{desc: desc}
	for _, key := range desc.SearchKeys {
		sb.criteria = append(sb.criteria, newCriterion(key, l))
	}
	if desc.Name == catalog.Orders {
		sb.idEntry = widget.NewEntry()
		sb.idEntry.SetPlaceHolder(l.Field(desc.IDField, desc.IDField))
	}
	return sb
}

func newCriterion(key string, l *Localization) *criterion {
	c := &criterion{key: key}
	label := l.Field(key, key)

	switch column(key) {
	case "categories", "category":
		c.sel = widget.NewSelect(nil, nil)
		c.source = forms.SourceCategories
	case "order_type":
		c.sel, c.values = codeSelect(model.OrderTypeCodes(), model.OrderTypeLabel)
	case "status":
		c.sel, c.values = codeSelect(model.OrderStatusCodes(), model.OrderStatusLabel)
	default:
		c.entry = widget.NewEntry()
		c.entry.SetPlaceHolder(label)
		return c
	}
	c.sel.PlaceHolder = label
	return c
}

func codeSelect(codes []string, label func(string) string) (*widget.Select, map[string]string) {
	values := make(map[string]string, len(codes))
	labels := make([]string, len(codes))
	for i, code := range codes {
		labels[i] = label(code)
		values[labels[i]] = code
	}
	return widget.NewSelect(labels, nil), values
}

// column strips a table alias such as "o." from a search key.
func column(key string) string {
	if i := strings.LastIndexByte(key, '.'); i >= 0 {
		return key[i+1:]
	}
	return key
}

// Values returns the filled criteria. A filled id entry wins over the rest.
func (sb *searchBar) Values() url.Values {
	if sb.idEntry != nil {
		if id := strings.TrimSpace(sb.idEntry.Text); id != "" {
			return url.Values{sb.desc.IDField: {id}}
		}
	}
	out := url.Values{}
	for _, c := range sb.criteria {
		if v := c.value(); v != "" {
			out.Set(c.key, v)
		}
	}
	return out
}

// Get returns the raw input of key.
func (sb *searchBar) Get(key string) string {
	for _, c := range sb.criteria {
		if c.key == key {
			return c.value()
		}
	}
	return ""
}

// Reset clears every input.
func (sb *searchBar) Reset() {
	for _, c := range sb.criteria {
		c.reset()
	}
	if sb.idEntry != nil {
		sb.idEntry.SetText("")
	}
}

// SetOptions fills the selects bound to a lookup source.
func (sb *searchBar) SetOptions(source string, labels []string) {
	for _, c := range sb.criteria {
		if c.source == source {
			c.setOptions(labels)
		}
	}
}

// Sources lists the lookup lists the bar needs.
func (sb *searchBar) Sources() []string {
	var out []string
	for _, c := range sb.criteria {
		if c.source != "" {
			out = append(out, c.source)
		}
	}
	return out
}

// Container lays the inputs out in a row followed by the actions.
func (sb *searchBar) Container(actions ...fyne.CanvasObject) fyne.CanvasObject {
	var cells []fyne.CanvasObject
	if sb.idEntry != nil {
		cells = append(cells, sb.idEntry)
	}
	for _, c := range sb.criteria {
		cells = append(cells, c.widget())
	}
	inputs := container.NewGridWithColumns(len(cells), cells...)
	return container.NewBorder(nil, nil, nil, container.NewHBox(actions...), inputs)
}
