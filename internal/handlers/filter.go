package handlers

import (
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/ui/templates"
)

const queryDateLayout = "2006-01-02"

var validate = validator.New()

// FilterQuery is the wire form of FilterCriteria. A nil Categories or Regions
// means the parameter was absent and the full set applies; a non-nil empty
// slice is an explicit empty selection.
type FilterQuery struct {
	Start      string   `validate:"omitempty,datetime=2006-01-02"`
	End        string   `validate:"omitempty,datetime=2006-01-02"`
	Categories []string `validate:"omitempty,max=1000,dive,max=256"`
	Regions    []string `validate:"omitempty,max=1000,dive,max=256"`
	Weekend    bool
	Holiday    bool
}

// ParseFilterQuery reads start, end, category, region, weekend and holiday.
// "category=" with no value selects nothing.
func ParseFilterQuery(q url.Values) (FilterQuery, error) {
	fq := FilterQuery{
		Start:      q.Get("start"),
		End:        q.Get("end"),
		Categories: selection(q, "category"),
		Regions:    selection(q, "region"),
	}

	var err error
	if fq.Weekend, err = parseFlag(q.Get("weekend")); err != nil {
		return FilterQuery{}, errors.BadRequestWrap(err, "invalid weekend flag")
	}
	if fq.Holiday, err = parseFlag(q.Get("holiday")); err != nil {
		return FilterQuery{}, errors.BadRequestWrap(err, "invalid holiday flag")
	}

	return fq, nil
}

func FilterQueryFromSignals(s templates.FilterSignals) FilterQuery {
	return FilterQuery{
		Start:      s.Start,
		End:        s.End,
		Categories: s.Categories,
		Regions:    s.Regions,
		Weekend:    s.Weekend,
		Holiday:    s.Holiday,
	}
}

// Criteria validates fq and fills anything absent from defaults.
func (fq FilterQuery) Criteria(defaults models.FilterCriteria) (models.FilterCriteria, error) {
	if err := validate.Struct(fq); err != nil {
		return models.FilterCriteria{}, errors.ValidationWrap(err, "invalid filter parameters")
	}

	c := defaults
	c.WeekendOnly = fq.Weekend
	c.HolidayOnly = fq.Holiday

	if fq.Start != "" {
		c.Start, _ = time.Parse(queryDateLayout, fq.Start)
	}
	if fq.End != "" {
		c.End, _ = time.Parse(queryDateLayout, fq.End)
	}
	if fq.Categories != nil {
		c.Categories = fq.Categories
	}
	if fq.Regions != nil {
		c.Regions = fq.Regions
	}

	return c, nil
}

func selection(q url.Values, key string) []string {
	values, ok := q[key]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func parseFlag(v string) (bool, error) {
	if v == "" {
		return false, nil
	}
	return services.ParseBool(v)
}
