// Package forms holds the editable field layout of each resource and the
// local checks run before a record is submitted. The backend remains the
// authority; these rules only catch what the operator can fix on the spot.
package forms

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ytget/stockdesk/internal/apperr"
	"github.com/ytget/stockdesk/internal/catalog"
	"github.com/ytget/stockdesk/internal/model"
)

// Kind is the input widget a field needs.
type Kind int

const (
	Text Kind = iota
	Password
	Integer
	Decimal
	Choice
	// Readonly fields are shown but never edited.
	Readonly
)

// Option list names resolved by the lookup service.
const (
	SourceCategories = "categories"
	SourceProviders  = "providers"
	SourceProjects   = "projects"
	SourceEmployees  = "employees"
)

// Field is one input on a record form.
type Field struct {
	Key      string
	Label    string
	Kind     Kind
	Required bool
	// Options are fixed choices; Source names a dynamic option list.
	Options []Option
	Source  string
	// Transient fields are validated but never submitted.
	Transient bool
	// CreateOnly fields are hidden when editing.
	CreateOnly bool
}

// Option is a choice value with its display label.
type Option struct {
	Value string
	Label string
}

// Schema is the form for one resource.
type Schema struct {
	Resource string
	Fields   []Field
	rules    []func(model.Record) []string
}

// For returns the schema of resource.
func For(resource string) (*Schema, error) {
	s, ok := schemas[resource]
	if !ok {
		return nil, fmt.Errorf("no form for resource %q", resource)
	}
	return s, nil
}

// Field returns the field with key.
func (s *Schema) Field(key string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// Validate checks values and returns a validation error listing every problem.
func (s *Schema) Validate(values model.Record) error {
	var problems []string
	for _, f := range s.Fields {
		v := strings.TrimSpace(values.String(f.Key))
		if f.Required && v == "" {
			problems = append(problems, f.Label+" is required")
			continue
		}
		if v == "" {
			continue
		}
		switch f.Kind {
		case Integer:
			n, err := strconv.Atoi(v)
			if err != nil {
				problems = append(problems, f.Label+" must be a whole number")
			} else if n < 0 {
				problems = append(problems, f.Label+" must not be negative")
			}
		case Decimal:
			x, err := strconv.ParseFloat(v, 64)
			if err != nil || x < 0 {
				problems = append(problems, f.Label+" must be a non-negative number")
			}
		case Choice:
			if len(f.Options) > 0 && !hasOption(f.Options, v) {
				problems = append(problems, f.Label+" has an unknown value")
			}
		}
	}
	for _, rule := range s.rules {
		problems = append(problems, rule(values)...)
	}
	if len(problems) > 0 {
		return apperr.Validation(problems...)
	}
	return nil
}

// Payload returns the record to submit: trimmed text, no transient or
// read-only fields. Keys outside the schema are kept untouched.
func (s *Schema) Payload(values model.Record) model.Record {
	out := values.Clone()
	for _, f := range s.Fields {
		if f.Transient || f.Kind == Readonly {
			delete(out, f.Key)
			continue
		}
		if str, ok := out[f.Key].(string); ok {
			out[f.Key] = strings.TrimSpace(str)
		}
	}
	return out
}

// Editable reports whether an existing record may still be changed.
func (s *Schema) Editable(rec model.Record) bool {
	if s.Resource == catalog.Orders {
		return !model.OrderLocked(rec.String("status"))
	}
	return true
}

func hasOption(opts []Option, v string) bool {
	for _, o := range opts {
		if o.Value == v {
			return true
		}
	}
	return false
}

func codeOptions(codes []string, label func(string) string) []Option {
	out := make([]Option, len(codes))
	for i, c := range codes {
		out[i] = Option{Value: c, Label: label(c)}
	}
	return out
}
