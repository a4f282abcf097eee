// Package lookup loads the option lists offered by record forms: inventory
// categories, provider and project names, employee names. Concurrent requests
// for the same list share one backend call.
package lookup

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/ytget/stockdesk/internal/api"
	"github.com/ytget/stockdesk/internal/dispatch"
	"github.com/ytget/stockdesk/internal/forms"
	"github.com/ytget/stockdesk/internal/model"
)

// Service resolves option lists by name.
type Service struct {
	runner dispatch.Runner
	group  singleflight.Group
	logger *slog.Logger
}

// NewService creates a lookup service.
func NewService(runner dispatch.Runner, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{runner: runner, logger: logger}
}

// Options returns the named list (see forms.Source*). Values are distinct,
// non-empty, without the backend's "null" placeholder, and sorted.
func (s *Service) Options(source string) ([]string, error) {
	v, err, shared := s.group.Do(source, func() (any, error) {
		return s.fetch(source)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("lookup shared", "source", source)
	}
	list := v.([]string)
	out := make([]string, len(list))
	copy(out, list)
	return out, nil
}

// Categories returns the distinct inventory categories.
func (s *Service) Categories() ([]string, error) {
	return s.Options(forms.SourceCategories)
}

// Providers returns the provider names.
func (s *Service) Providers() ([]string, error) {
	return s.Options(forms.SourceProviders)
}

// Projects returns the project names.
func (s *Service) Projects() ([]string, error) {
	return s.Options(forms.SourceProjects)
}

// Employees returns the employee names.
func (s *Service) Employees() ([]string, error) {
	return s.Options(forms.SourceEmployees)
}

func (s *Service) fetch(source string) ([]string, error) {
	var (
		req   api.Request
		field string
		keys  []string
	)
	switch source {
	case forms.SourceCategories:
		req, field, keys = api.Categories(), "categories", []string{"categories"}
	case forms.SourceProviders:
		req, field, keys = api.All(api.PathProviders, nil), "provider_name", []string{"providers"}
	case forms.SourceProjects:
		req, field, keys = api.All(api.PathProjects, nil), "project_name", []string{"projects", "project"}
	case forms.SourceEmployees:
		req, field, keys = api.All(api.PathEmployees, nil), "employee_name", []string{"employees"}
	default:
		return nil, fmt.Errorf("unknown option list %q", source)
	}

	resp, err := s.runner.Dispatch(req).Resolve()
	if err != nil {
		s.logger.Warn("lookup failed", "source", source, "error", err)
		return nil, err
	}
	recs, err := resp.Envelope.Records(keys...)
	if err != nil {
		return nil, err
	}
	return distinct(recs, field), nil
}

func distinct(recs []model.Record, field string) []string {
	seen := make(map[string]struct{}, len(recs))
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		v := strings.TrimSpace(r.String(field))
		if v == "" || v == model.NullName {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
