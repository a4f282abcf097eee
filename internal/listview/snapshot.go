package listview

import (
	"net/url"

	"github.com/ytget/stockdesk/internal/model"
)

// Snapshot is an immutable view of a controller at one point in time.
type Snapshot struct {
	Resource string
	State    model.ListState
	Page     model.PageInfo
	Items    []model.Record
	// Selected holds the ids of selected rows on the visible page.
	Selected map[string]bool
	Filter   url.Values
	Criteria url.Values
}

// Searching reports whether the snapshot shows search results.
func (s Snapshot) Searching() bool {
	return len(s.Criteria) > 0
}

// IsSelected reports whether the row with id is selected.
func (s Snapshot) IsSelected(id string) bool {
	return s.Selected[id]
}

// AllSelected reports whether every visible row is selected.
func (s Snapshot) AllSelected() bool {
	return len(s.Items) > 0 && len(s.Selected) == len(s.Items)
}

func cloneValues(v url.Values) url.Values {
	if v == nil {
		return nil
	}
	out := make(url.Values, len(v))
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}

// compact drops keys whose values are all empty.
func compact(v url.Values) url.Values {
	out := url.Values{}
	for k, vs := range v {
		for _, s := range vs {
			if s != "" {
				out.Add(k, s)
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
