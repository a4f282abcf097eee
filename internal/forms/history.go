package forms

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/ytget/stockdesk/internal/apperr"
)

// HistoryQuery validates a year and month typed by the operator. The year must
// be four digits and the month a number from 1 to 12.
func HistoryQuery(year, month string) (url.Values, error) {
	year, month = strings.TrimSpace(year), strings.TrimSpace(month)

	var problems []string
	y, err := strconv.Atoi(year)
	if len(year) != 4 || err != nil || y < 1000 {
		problems = append(problems, "Year must be four digits")
	}
	m, err := strconv.Atoi(month)
	if len(month) == 0 || len(month) > 2 || err != nil || m < 1 || m > 12 {
		problems = append(problems, "Month must be between 1 and 12")
	}
	if len(problems) > 0 {
		return nil, apperr.Validation(problems...)
	}

	q := url.Values{}
	q.Set("year", strconv.Itoa(y))
	q.Set("month", strconv.Itoa(m))
	return q, nil
}
