// Package catalog describes the backend resources the client manages. A
// Descriptor is the only per-resource input the generic list controller, the
// CSV transfer service and the UI screens need.
package catalog

import (
	"strings"

	"github.com/ytget/stockdesk/internal/model"
)

// Paging selects where a resource is paged.
type Paging int

const (
	// ServerPaged resources expose /count and /page/{n}.
	ServerPaged Paging = iota
	// ClientPaged resources are fetched with /all and paged locally.
	ClientPaged
	// CriteriaOnly resources have no listing endpoint and load only through search.
	CriteriaOnly
)

// Column is one displayed field.
type Column struct {
	Key   string
	Title string
	// Format renders the cell; nil shows the raw value.
	Format func(model.Record) string
}

// Capabilities lists the operations a resource supports.
type Capabilities struct {
	Create bool
	Update bool
	Delete bool
	Import bool
	Export bool
	// Receipt marks resources with a printable document per record.
	Receipt bool
}

// Descriptor configures one resource.
type Descriptor struct {
	Name  string
	Title string
	// Path is the backend path segment.
	Path    string
	IDField string
	// ItemKey and ListKey name the payload keys used when the backend does
	// not answer under "data".
	ItemKey string
	ListKey string
	Paging  Paging
	Columns []Column
	// FilterKey is the query parameter accepted by /count and /page.
	FilterKey string
	// SearchKeys are the query parameters accepted by /search.
	SearchKeys []string
	// NameField rows holding the "null" placeholder are hidden.
	NameField string
	AdminOnly bool
	Can       Capabilities
	// CSVColumns is the header written on export and expected on import.
	CSVColumns []string
	// ImportFields are the CSV columns submitted on import.
	ImportFields []string
	// ImportRequired rows missing any of these are skipped locally.
	ImportRequired []string
}

// ID returns the record identifier.
func (d *Descriptor) ID(rec model.Record) string {
	return rec.String(d.IDField)
}

// Cell renders one column of a record.
func (d *Descriptor) Cell(rec model.Record, col Column) string {
	if col.Format != nil {
		return col.Format(rec)
	}
	return rec.String(col.Key)
}

// Row renders every column of a record.
func (d *Descriptor) Row(rec model.Record) []string {
	out := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		out[i] = d.Cell(rec, c)
	}
	return out
}

// Keep reports whether a fetched record should be shown.
func (d *Descriptor) Keep(rec model.Record) bool {
	if d.NameField == "" {
		return true
	}
	return !rec.IsNullName(d.NameField)
}

// Filter drops records Keep rejects. The input slice is not modified.
func (d *Descriptor) Filter(recs []model.Record) []model.Record {
	if d.NameField == "" {
		return recs
	}
	out := make([]model.Record, 0, len(recs))
	for _, r := range recs {
		if d.Keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// ListKeys returns the payload keys to try for list responses.
func (d *Descriptor) ListKeys() []string {
	keys := []string{}
	if d.ListKey != "" {
		keys = append(keys, d.ListKey)
	}
	return append(keys, d.Name, d.Path)
}

// ItemKeys returns the payload keys to try for single-record responses.
func (d *Descriptor) ItemKeys() []string {
	keys := []string{}
	if d.ItemKey != "" {
		keys = append(keys, d.ItemKey)
	}
	return append(keys, strings.TrimSuffix(d.Name, "s"))
}

// IsSearchKey reports whether key is accepted by the resource's /search.
func (d *Descriptor) IsSearchKey(key string) bool {
	for _, k := range d.SearchKeys {
		if k == key {
			return true
		}
	}
	return false
}
