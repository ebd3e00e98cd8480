package executor

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/customer-insights/internal/insights/insightstest"
	"github.com/Adithya-Monish-Kumar-K/customer-insights/internal/insights/query"
	"github.com/Adithya-Monish-Kumar-K/customer-insights/pkg/database"
	apperrors "github.com/Adithya-Monish-Kumar-K/customer-insights/pkg/errors"
)

func TestRunReturnsRecordsInProjectionOrder(t *testing.T) {
	db := insightstest.New(t, insightstest.Sample())
	exec := New(db.Client)

	records, err := exec.Run(context.Background(), query.NewBuilder(database.SQLite).Build(url.Values{}))
	require.NoError(t, err)
	require.Len(t, records, len(insightstest.Sample()))

	cols := records[0].Columns()
	assert.Equal(t, "customer_id", cols[0])
	assert.Equal(t, []string{"race", "education", "insurance_segment"}, cols[len(cols)-3:])
}

func TestRunLeftJoinYieldsNullLookup(t *testing.T) {
	db := insightstest.New(t, insightstest.Sample())
	values := url.Values{}
	values.Set("race_code", "H")
	values.Set("gender", "M")

	records, err := New(db.Client).Run(context.Background(), query.NewBuilder(database.SQLite).Build(values))
	require.NoError(t, err)
	require.Len(t, records, 1)

	education, ok := records[0].Value("education")
	assert.True(t, ok)
	assert.Nil(t, education)
	race, _ := records[0].Value("race")
	assert.Equal(t, "Hispanic", race)
}

func TestRunEmptyTableReturnsEmptySlice(t *testing.T) {
	db := insightstest.New(t, nil)

	for name, q := range query.Aggregates() {
		records, err := New(db.Client).Run(context.Background(), q)
		require.NoError(t, err, name)
		assert.NotNil(t, records, name)
		assert.Empty(t, records, name)
	}
}

func TestRunBrokenTableReturnsQueryError(t *testing.T) {
	db := insightstest.New(t, insightstest.Sample())
	db.Exec(t, "DROP TABLE customer")

	records, err := New(db.Client).Run(context.Background(), query.Aggregates()[query.StateSocial])
	assert.Nil(t, records)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrQueryFailed)

	var qe *apperrors.QueryError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, query.StateSocial, qe.Query)
	assert.Contains(t, qe.Message(), "no such table")
}

func TestRunReleasesConnectionOnEveryPath(t *testing.T) {
	db := insightstest.New(t, insightstest.Sample())
	exec := New(db.Client)

	_, err := exec.Run(context.Background(), query.Aggregates()[query.GenderIncomeSpending])
	require.NoError(t, err)
	assert.Zero(t, db.Client.DB.Stats().InUse)

	_, err = exec.Run(context.Background(), query.Fixed("bad", "SELECT * FROM missing_table"))
	require.Error(t, err)
	assert.Zero(t, db.Client.DB.Stats().InUse)
}

func TestRunCancelledContext(t *testing.T) {
	db := insightstest.New(t, insightstest.Sample())
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	_, err := New(db.Client).Run(ctx, query.Aggregates()[query.GenderIncomeSpending])
	assert.ErrorIs(t, err, apperrors.ErrQueryFailed)
	assert.Zero(t, db.Client.DB.Stats().InUse)
}

func TestRecordMarshalJSONKeepsColumnOrder(t *testing.T) {
	r := NewRecord([]string{"state", "count", "avg", "missing"}, []any{"CA", int64(3), 1.5, nil})
	b, err := r.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"state":"CA","count":3,"avg":1.5,"missing":null}`, string(b))

	_, ok := r.Value("nope")
	assert.False(t, ok)
}

func TestRecordRepeatedColumnKeepsFirstPositionAndLastValue(t *testing.T) {
	r := NewRecord(
		[]string{"customer_id", "state", "customer_id", "race"},
		[]any{int64(1), "CA", nil, "Asian"},
	)
	b, err := r.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"customer_id":null,"state":"CA","race":"Asian"}`, string(b))

	v, ok := r.Value("customer_id")
	assert.True(t, ok)
	assert.Nil(t, v)
}
