package forms

import (
	"strings"

	"github.com/ytget/stockdesk/internal/catalog"
	"github.com/ytget/stockdesk/internal/model"
)

var schemas = map[string]*Schema{
	catalog.Inventory: {
		Resource: catalog.Inventory,
		Fields: []Field{
			{Key: "cargo_name", Label: "Name", Required: true},
			{Key: "model", Label: "Model", Required: true},
			{Key: "categories", Label: "Category", Kind: Choice, Source: SourceCategories},
			{Key: "count", Label: "Count", Kind: Integer, Required: true},
			{Key: "price", Label: "Unit price", Kind: Decimal, Required: true},
		},
	},
	catalog.Orders: {
		Resource: catalog.Orders,
		Fields: []Field{
			{Key: "order_id", Label: "Order", Kind: Readonly},
			{Key: "order_type", Label: "Type", Kind: Choice, Required: true,
				Options: codeOptions(model.OrderTypeCodes(), model.OrderTypeLabel)},
			{Key: "cargo_name", Label: "Name", Required: true},
			{Key: "model", Label: "Model", Required: true},
			{Key: "price", Label: "Unit price", Kind: Decimal, Required: true},
			{Key: "count", Label: "Count", Kind: Integer, Required: true},
			{Key: "provider", Label: "Provider", Kind: Choice, Source: SourceProviders},
			{Key: "project", Label: "Project", Kind: Choice, Source: SourceProjects},
			{Key: "status", Label: "Status", Kind: Choice, Required: true,
				Options: codeOptions(model.OrderStatusCodes(), model.OrderStatusLabel)},
			{Key: "employee_name", Label: "Handler", Required: true},
			{Key: "published_at", Label: "Submitted", Kind: Readonly},
			{Key: "processed_at", Label: "Processed", Kind: Readonly},
		},
		rules: []func(model.Record) []string{providerOrProject},
	},
	catalog.Employees: {
		Resource: catalog.Employees,
		Fields: []Field{
			{Key: "employee_name", Label: "Name", Required: true},
			{Key: "gender", Label: "Gender", Kind: Choice,
				Options: []Option{{Value: "男", Label: "Male"}, {Value: "女", Label: "Female"}}},
			{Key: "position", Label: "Position", Required: true},
		},
	},
	catalog.Providers: {
		Resource: catalog.Providers,
		Fields: []Field{
			{Key: "provider_name", Label: "Provider", Required: true},
		},
	},
	catalog.Projects: {
		Resource: catalog.Projects,
		Fields: []Field{
			{Key: "project_name", Label: "Project", Required: true},
		},
	},
	catalog.Users: {
		Resource: catalog.Users,
		Fields: []Field{
			{Key: "username", Label: "Username", Required: true},
			{Key: "employee_name", Label: "Employee", Kind: Choice, Required: true, Source: SourceEmployees},
			{Key: "status", Label: "Status", Kind: Choice,
				Options: []Option{{Value: "1", Label: "Enabled"}, {Value: "0", Label: "Disabled"}}},
			{Key: "privilege", Label: "Privilege", Kind: Choice,
				Options: []Option{{Value: "A", Label: "A"}, {Value: "B", Label: "B"}, {Value: "C", Label: "C"}, {Value: "D", Label: "D"}}},
			{Key: "password", Label: "Password", Kind: Password},
			{Key: "confirm_password", Label: "Confirm password", Kind: Password, Transient: true},
		},
		rules: []func(model.Record) []string{passwordsMatch},
	},
}

func providerOrProject(values model.Record) []string {
	if values.IsNullName("provider") && values.IsNullName("project") {
		return []string{"Provider or Project is required"}
	}
	return nil
}

func passwordsMatch(values model.Record) []string {
	if strings.TrimSpace(values.String("password")) != strings.TrimSpace(values.String("confirm_password")) {
		return []string{"Passwords do not match"}
	}
	return nil
}
