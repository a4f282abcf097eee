package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ytget/stockdesk/internal/model"
)

// Backend path segments per resource.
const (
	PathInventory = "inventory"
	PathOrders    = "orders"
	PathEmployees = "employees"
	PathProviders = "providers"
	PathProjects  = "project"
	PathUsers     = "users"
	PathHistory   = "history"
	PathLogs      = "logs"
)

func resourcePath(resource string, parts ...string) string {
	segs := make([]string, 0, len(parts)+1)
	segs = append(segs, resource)
	for _, p := range parts {
		segs = append(segs, url.PathEscape(p))
	}
	return "/" + strings.Join(segs, "/")
}

// All lists every record of a resource.
func All(resource string, query url.Values) Request {
	return Request{Method: http.MethodGet, Path: resourcePath(resource, "all"), Query: query}
}

// Page fetches server page n (1-based).
func Page(resource string, n int, query url.Values) Request {
	return Request{Method: http.MethodGet, Path: resourcePath(resource, "page", strconv.Itoa(n)), Query: query}
}

// Count fetches the number of records matching query.
func Count(resource string, query url.Values) Request {
	return Request{Method: http.MethodGet, Path: resourcePath(resource, "count"), Query: query}
}

// Search runs a filtered query.
func Search(resource string, query url.Values) Request {
	return Request{Method: http.MethodGet, Path: resourcePath(resource, "search"), Query: query}
}

// Get fetches a single record.
func Get(resource, id string) Request {
	return Request{Method: http.MethodGet, Path: resourcePath(resource, id)}
}

// Create posts a new record.
func Create(resource string, rec model.Record) Request {
	return Request{Method: http.MethodPost, Path: resourcePath(resource, "create"), Body: rec}
}

// Update posts changes to the record identified by id.
func Update(resource, id string, rec model.Record) Request {
	return Request{Method: http.MethodPost, Path: resourcePath(resource, "update", id), Body: rec}
}

// Delete removes the records with the given ids in one call.
func Delete(resource string, ids []string) Request {
	return Request{Method: http.MethodDelete, Path: resourcePath(resource, "delete"), Body: map[string]any{"ids": ids}}
}

// Import uploads a dataset of records.
func Import(resource string, rows []model.Record) Request {
	if rows == nil {
		rows = []model.Record{}
	}
	return Request{Method: http.MethodPost, Path: resourcePath(resource, "import"), Body: map[string]any{"dataset": rows}}
}

// BatchQuery fetches the records with the given ids.
func BatchQuery(resource string, ids []string) Request {
	return Request{Method: http.MethodPost, Path: resourcePath(resource, "batch_query"), Body: map[string]any{"ids": ids}}
}

// PrintOrder streams the receipt document for an order.
func PrintOrder(id string) Request {
	return Request{Method: http.MethodGet, Path: resourcePath(PathOrders, "print", id), Stream: true}
}

// Categories lists the distinct inventory categories.
func Categories() Request {
	return Request{Method: http.MethodGet, Path: resourcePath(PathInventory, "categories", "get")}
}

// HistorySearch lists the monthly stock snapshot for year and month.
func HistorySearch(year, month int) Request {
	q := url.Values{}
	q.Set("year", strconv.Itoa(year))
	q.Set("month", strconv.Itoa(month))
	return Search(PathHistory, q)
}

// LogFiles lists the backend operation log files.
func LogFiles() Request {
	return Request{Method: http.MethodGet, Path: resourcePath(PathLogs, "getfiles")}
}

// LogContent fetches one operation log file.
func LogContent(name string) Request {
	return Request{Method: http.MethodGet, Path: resourcePath(PathLogs, "content", name)}
}

// Login exchanges credentials for a token.
func Login(username, password string) Request {
	return Request{
		Method: http.MethodPost,
		Path:   resourcePath(PathUsers, "login"),
		Body:   map[string]string{"username": username, "password": password},
	}
}

// Logout ends the session the bearer token belongs to.
func Logout() Request {
	return Request{Method: http.MethodPost, Path: resourcePath(PathUsers, "logout"), Timeout: LogoutTimeout}
}
