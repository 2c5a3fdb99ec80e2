package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/quantedge/internal/contracts"
)

// decimalArg matches a decimal.Decimal argument by value
type decimalArg string

func (d decimalArg) Match(v interface{}) bool {
	dec, ok := v.(decimal.Decimal)
	return ok && dec.Equal(decimal.RequireFromString(string(d)))
}

func TestRecordCloses(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock)
	tradeDate := time.Date(2026, 1, 5, 15, 35, 0, 0, time.FixedZone("IST", 19800))
	day := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO market.quote_history").
		WithArgs("TCS", day, decimalArg("4010.13"), 0.25).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO market.quote_history").
		WithArgs("M&M", day, decimalArg("2950.5"), 1.74).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	written, err := repo.RecordCloses(context.Background(), tradeDate, []contracts.Quote{
		{Symbol: "TCS", LastPrice: 4010.129, ChangePercent: 0.25},
		{Symbol: "NOPRICE", LastPrice: 0},
		{Symbol: "M&M", LastPrice: 2950.5, ChangePercent: 1.74},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, written)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordClosesRollsBackOnError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO market.quote_history").
		WithArgs("TCS", pgxmock.AnyArg(), decimalArg("4000"), 0.0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO market.quote_history").
		WithArgs("INFY", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	written, err := NewRepository(mock).RecordCloses(context.Background(), time.Now(), []contracts.Quote{
		{Symbol: "TCS", LastPrice: 4000},
		{Symbol: "INFY", LastPrice: 1500},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INFY")
	assert.Zero(t, written)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordClosesRollsBackOnCommitError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO market.quote_history").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit().WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err = NewRepository(mock).RecordCloses(context.Background(), time.Now(), []contracts.Quote{
		{Symbol: "TCS", LastPrice: 4000},
	})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordClosesEmpty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	written, err := NewRepository(mock).RecordCloses(context.Background(), time.Now(), nil)
	require.NoError(t, err)
	assert.Zero(t, written)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClosesOldestFirst(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT close FROM").
		WithArgs("RELIANCE", 3).
		WillReturnRows(pgxmock.NewRows([]string{"close"}).
			AddRow(1280.0).
			AddRow(1291.5).
			AddRow(1300.0))

	closes, err := NewRepository(mock).Closes(context.Background(), "RELIANCE", 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{1280, 1291.5, 1300}, closes)
	assert.NoError(t, mock.ExpectationsWereMet())

	_, err = NewRepository(mock).Closes(context.Background(), "RELIANCE", 0)
	assert.ErrorIs(t, err, contracts.ErrInvalidArgument)
}

func TestEnsureSchema(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS market.quote_history").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, NewRepository(mock).EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

type stubHistory []float64

func (s stubHistory) History(context.Context, string, float64) ([]float64, error) {
	return s, nil
}

func TestProviderFallsBackWhenHistoryIsShort(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT close FROM").
		WithArgs("TCS", 30).
		WillReturnRows(pgxmock.NewRows([]string{"close"}).AddRow(4000.0))
	mock.ExpectQuery("SELECT close FROM").
		WithArgs("TCS", 30).
		WillReturnRows(pgxmock.NewRows([]string{"close"}))

	repo := NewRepository(mock)

	withFallback := NewProvider(repo, 0, zerolog.Nop()).WithFallback(stubHistory{1, 2, 3})
	got, err := withFallback.History(context.Background(), "TCS", 4000)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, got)

	_, err = NewProvider(repo, 30, zerolog.Nop()).History(context.Background(), "TCS", 4000)
	assert.ErrorIs(t, err, contracts.ErrNoHistory)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProviderReturnsRecordedCloses(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT close FROM").
		WithArgs("INFY", 5).
		WillReturnRows(pgxmock.NewRows([]string{"close"}).AddRow(1500.0).AddRow(1510.0))

	got, err := NewProvider(NewRepository(mock), 5, zerolog.Nop()).
		WithFallback(stubHistory{9}).
		History(context.Background(), "INFY", 1512)
	require.NoError(t, err)
	assert.Equal(t, []float64{1500, 1510}, got)
}
