package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ytget/stockdesk/internal/api"
	"github.com/ytget/stockdesk/internal/model"
)

// Resource names.
const (
	Inventory = "inventory"
	Orders    = "orders"
	Employees = "employees"
	Providers = "providers"
	Projects  = "projects"
	Users     = "users"
	History   = "history"
)

func orderType(r model.Record) string {
	return model.OrderTypeLabel(r.String("order_type"))
}

func orderStatus(r model.Record) string {
	return model.OrderStatusLabel(r.String("status"))
}

func masked(model.Record) string {
	return "********"
}

func dateOnly(key string) func(model.Record) string {
	return func(r model.Record) string {
		s := r.String(key)
		if i := strings.IndexAny(s, "T "); i == 10 {
			return s[:10]
		}
		return s
	}
}

func nullable(key string) func(model.Record) string {
	return func(r model.Record) string {
		if r.IsNullName(key) {
			return ""
		}
		return r.String(key)
	}
}

var registry = map[string]*Descriptor{
	Inventory: {
		Name:    Inventory,
		Title:   "Inventory",
		Path:    api.PathInventory,
		IDField: "cargo_id",
		ItemKey: "inventory",
		Paging:  ServerPaged,
		Columns: []Column{
			{Key: "cargo_id", Title: "ID"},
			{Key: "cargo_name", Title: "Name"},
			{Key: "model", Title: "Model"},
			{Key: "categories", Title: "Category"},
			{Key: "count", Title: "Count"},
			{Key: "price", Title: "Unit price"},
			{Key: "total_price", Title: "Total"},
		},
		FilterKey:      "category",
		SearchKeys:     []string{"cargo_name", "model", "category"},
		Can:            Capabilities{Create: true, Update: true, Delete: true, Import: true, Export: true},
		CSVColumns:     []string{"cargo_id", "cargo_name", "model", "categories", "count", "price", "total_price"},
		ImportFields:   []string{"cargo_name", "model", "categories", "count", "price"},
		ImportRequired: []string{"cargo_name", "model", "categories", "count", "price"},
	},
	Orders: {
		Name:    Orders,
		Title:   "Orders",
		Path:    api.PathOrders,
		IDField: "order_id",
		ItemKey: "order",
		Paging:  ServerPaged,
		Columns: []Column{
			{Key: "order_id", Title: "Order"},
			{Key: "order_type", Title: "Type", Format: orderType},
			{Key: "cargo_id", Title: "Cargo ID"},
			{Key: "cargo_name", Title: "Name"},
			{Key: "model", Title: "Model"},
			{Key: "categories", Title: "Category"},
			{Key: "price", Title: "Unit price"},
			{Key: "provider", Title: "Provider", Format: nullable("provider")},
			{Key: "project", Title: "Project", Format: nullable("project")},
			{Key: "status", Title: "Status", Format: orderStatus},
			{Key: "employee_name", Title: "Handler"},
			{Key: "published_at", Title: "Submitted", Format: dateOnly("published_at")},
			{Key: "processed_at", Title: "Processed", Format: dateOnly("processed_at")},
			{Key: "count", Title: "Count"},
		},
		SearchKeys: []string{"i.categories", "o.order_type", "o.status"},
		Can:        Capabilities{Create: true, Update: true, Import: true, Export: true, Receipt: true},
		CSVColumns: []string{
			"order_id", "order_type", "cargo_id", "cargo_name", "model", "categories",
			"provider", "project", "status", "employee_name", "published_at", "processed_at",
			"price", "count", "specification", "total_price",
		},
		ImportFields: []string{
			"order_id", "order_type", "cargo_id", "cargo_name", "model", "categories",
			"provider", "project", "status", "employee_name", "published_at", "processed_at",
			"price", "count",
		},
		ImportRequired: []string{
			"order_id", "order_type", "cargo_id", "cargo_name", "model", "categories",
			"status", "employee_name", "price", "count",
		},
	},
	Employees: {
		Name:    Employees,
		Title:   "Employees",
		Path:    api.PathEmployees,
		IDField: "employee_id",
		ItemKey: "employee",
		Paging:  ClientPaged,
		Columns: []Column{
			{Key: "employee_id", Title: "ID"},
			{Key: "employee_name", Title: "Name"},
			{Key: "gender", Title: "Gender"},
			{Key: "position", Title: "Position"},
		},
		SearchKeys: []string{"condition"},
		AdminOnly:  true,
		Can:        Capabilities{Create: true, Update: true, Delete: true},
	},
	Providers: {
		Name:    Providers,
		Title:   "Providers",
		Path:    api.PathProviders,
		IDField: "provider_name",
		ItemKey: "provider",
		Paging:  ClientPaged,
		Columns: []Column{
			{Key: "provider_name", Title: "Provider"},
		},
		SearchKeys: []string{"name"},
		NameField:  "provider_name",
		Can:        Capabilities{Create: true, Update: true},
	},
	Projects: {
		Name:    Projects,
		Title:   "Projects",
		Path:    api.PathProjects,
		IDField: "project_name",
		ItemKey: "project",
		Paging:  ClientPaged,
		Columns: []Column{
			{Key: "project_name", Title: "Project"},
		},
		SearchKeys: []string{"name"},
		NameField:  "project_name",
		Can:        Capabilities{Create: true, Update: true},
	},
	Users: {
		Name:    Users,
		Title:   "Users",
		Path:    api.PathUsers,
		IDField: "user_id",
		ItemKey: "user",
		ListKey: "users",
		Paging:  ClientPaged,
		Columns: []Column{
			{Key: "user_id", Title: "ID"},
			{Key: "username", Title: "Username"},
			{Key: "password", Title: "Password", Format: masked},
			{Key: "employee_id", Title: "Employee"},
			{Key: "created_at", Title: "Created", Format: dateOnly("created_at")},
			{Key: "status", Title: "Status", Format: model.UserStatusLabel},
			{Key: "privilege", Title: "Privilege"},
		},
		SearchKeys: []string{"condition"},
		AdminOnly:  true,
		Can:        Capabilities{Create: true, Update: true},
	},
	History: {
		Name:    History,
		Title:   "History",
		Path:    api.PathHistory,
		IDField: "id",
		Paging:  CriteriaOnly,
		Columns: []Column{
			{Key: "id", Title: "ID"},
			{Key: "cargo_name", Title: "Name"},
			{Key: "model", Title: "Model"},
			{Key: "specification", Title: "Spec"},
			{Key: "categories", Title: "Category"},
			{Key: "starting_price", Title: "Opening price"},
			{Key: "starting_count", Title: "Opening count"},
			{Key: "starting_total_price", Title: "Opening total"},
			{Key: "closing_price", Title: "Closing price"},
			{Key: "closing_count", Title: "Closing count"},
			{Key: "closing_total_price", Title: "Closing total"},
		},
		SearchKeys: []string{"year", "month"},
		Can:        Capabilities{Import: true, Export: true},
		CSVColumns: []string{
			"id", "year", "month", "cargo_name", "model", "specification", "categories",
			"starting_price", "starting_count", "starting_total_price",
			"closing_price", "closing_count", "closing_total_price",
		},
		ImportFields: []string{
			"year", "month", "cargo_name", "model", "specification", "categories",
			"starting_price", "starting_count", "starting_total_price",
			"closing_price", "closing_count", "closing_total_price",
		},
		ImportRequired: []string{
			"year", "month", "cargo_name", "model", "specification", "categories",
			"starting_price", "starting_count", "starting_total_price",
			"closing_price", "closing_count", "closing_total_price",
		},
	},
}

// order is the navigation order of the management screens.
var order = []string{Inventory, Orders, History, Providers, Projects, Employees, Users}

// Get returns the descriptor for name.
func Get(name string) (*Descriptor, error) {
	d, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown resource %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return d, nil
}

// MustGet returns the descriptor for a known resource name.
func MustGet(name string) *Descriptor {
	d, err := Get(name)
	if err != nil {
		panic(err)
	}
	return d
}

// Names returns every resource name, sorted.
func Names() []string {
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Visible returns the descriptors shown to a user, in navigation order.
func Visible(admin bool) []*Descriptor {
	out := make([]*Descriptor, 0, len(order))
	for _, n := range order {
		d := registry[n]
		if d.AdminOnly && !admin {
			continue
		}
		out = append(out, d)
	}
	return out
}
