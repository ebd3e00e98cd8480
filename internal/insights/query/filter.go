package query

import (
	"net/url"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/customer-insights/pkg/database"
)

// Filter maps a recognized query-string key to the column it constrains.
type Filter struct {
	Param  string
	Column string
}

// Filters lists the keys /api/all understands, in the order their
// predicates are appended.
var Filters = []Filter{
	{Param: "gender", Column: "c.gender"},
	{Param: "education_id", Column: "c.education_id"},
	{Param: "home_owner", Column: "c.home_owner"},
	{Param: "insurance_segment_id", Column: "c.insurance_segment_id"},
	{Param: "race_code", Column: "c.race_code"},
	{Param: "state", Column: "c.state"},
}

// Builder appends bound equality predicates for the recognized filters to
// the customer listing. Columns only ever come from Filters; request values
// are only ever bound.
type Builder struct {
	dialect database.Dialect
}

func NewBuilder(dialect database.Dialect) *Builder {
	return &Builder{dialect: dialect}
}

// Build returns the /api/all query for the given request values. A key that
// is present with an empty value still filters (on the empty string); a
// repeated key uses its first value; unknown keys are ignored.
func (b *Builder) Build(values url.Values) Query {
	var sb strings.Builder
	sb.WriteString(allCustomersSQL)

	q := Query{Name: All, dialect: b.dialect}
	for _, f := range Filters {
		if !values.Has(f.Param) {
			continue
		}
		q.Params = append(q.Params, Param{Name: f.Param, Value: values.Get(f.Param)})
		sb.WriteString("\n\tAND ")
		sb.WriteString(f.Column)
		sb.WriteString(" = ")
		sb.WriteString(b.dialect.Placeholder(f.Param, len(q.Params)))
	}
	q.SQL = sb.String()
	return q
}

// Applied returns the recognized filters present in values, keyed by
// parameter name.
func Applied(values url.Values) map[string]string {
	applied := make(map[string]string)
	for _, f := range Filters {
		if values.Has(f.Param) {
			applied[f.Param] = values.Get(f.Param)
		}
	}
	return applied
}
