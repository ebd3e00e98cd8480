// Package query holds the fixed SQL behind each API endpoint and the filter
// builder that narrows the row-level customer listing.
package query

import "github.com/Adithya-Monish-Kumar-K/customer-insights/pkg/database"

// Param is one bound value of a Query.
type Param struct {
	Name  string
	Value string
}

// Query is SQL text plus the parameters its placeholders refer to, in
// placeholder order.
type Query struct {
	Name    string
	SQL     string
	Params  []Param
	dialect database.Dialect
}

// Args returns the parameters bound for the query's dialect, ready for
// QueryContext.
func (q Query) Args() []any {
	args := make([]any, 0, len(q.Params))
	for _, p := range q.Params {
		args = append(args, q.dialect.Bind(p.Name, p.Value))
	}
	return args
}

// Fixed builds an unparameterized Query.
func Fixed(name, sql string) Query {
	return Query{Name: name, SQL: sql}
}

// Endpoint names double as metric labels, cache keys and event names.
const (
	GenderIncomeSpending  = "gender-income-spending"
	RaceEconomicStability = "race-economic-stability"
	StateSocial           = "state-social"
	All                   = "all"
)

const genderIncomeSpendingSQL = `
SELECT gender,
	MAX(income) AS income_max,
	CAST(AVG(income) AS DOUBLE PRECISION) AS income_avg,
	MIN(income) AS income_min,
	MAX(travel_spending) AS travel_spending_max,
	CAST(AVG(travel_spending) AS DOUBLE PRECISION) AS travel_spending_avg,
	MIN(travel_spending) AS travel_spending_min,
	MAX(sports_leisure_spending) AS sports_leisure_spending_max,
	CAST(AVG(sports_leisure_spending) AS DOUBLE PRECISION) AS sports_leisure_spending_avg,
	MIN(sports_leisure_spending) AS sports_leisure_spending_min
FROM customer
GROUP BY gender`

// The race display value is what clients see as race_code.
const raceEconomicStabilitySQL = `
SELECT race.value AS race_code, customer.economic_stability AS economic_stability, COUNT(*) AS customer_count
FROM customer
INNER JOIN race ON customer.race_code = race.code
GROUP BY race.value, customer.economic_stability
ORDER BY race.value, customer.economic_stability`

const stateSocialSQL = `
SELECT state,
	MAX(youtube_user_rank) AS youtube_user_rank_max,
	CAST(AVG(youtube_user_rank) AS DOUBLE PRECISION) AS youtube_user_rank_avg,
	MIN(youtube_user_rank) AS youtube_user_rank_min,
	MAX(facebook_user_rank) AS facebook_user_rank_max,
	CAST(AVG(facebook_user_rank) AS DOUBLE PRECISION) AS facebook_user_rank_avg,
	MIN(facebook_user_rank) AS facebook_user_rank_min
FROM (
	SELECT state,
		CAST(youtube_user_rank AS INTEGER) AS youtube_user_rank,
		CAST(facebook_user_rank AS INTEGER) AS facebook_user_rank
	FROM customer
) ranks
GROUP BY state`

const allCustomersSQL = `
SELECT c.*, r.value AS race, e.value AS education, i.value AS insurance_segment
FROM customer c
LEFT JOIN education e ON c.education_id = e.id
LEFT JOIN insurance_segment i ON c.insurance_segment_id = i.id
LEFT JOIN race r ON c.race_code = r.code
WHERE 1 = 1`

// Aggregates returns the fixed, unfiltered endpoint queries by name.
func Aggregates() map[string]Query {
	return map[string]Query{
		GenderIncomeSpending:  Fixed(GenderIncomeSpending, genderIncomeSpendingSQL),
		RaceEconomicStability: Fixed(RaceEconomicStability, raceEconomicStabilitySQL),
		StateSocial:           Fixed(StateSocial, stateSocialSQL),
	}
}
