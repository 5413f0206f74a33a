package usecase

import (
	"testing"
	"time"

	"PairView/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validForm() models.SubmitForm {
	return models.SubmitForm{
		Symbol1:   "BTCUSDT",
		Symbol2:   "ETHUSDT",
		StartDate: "2024-01-01",
		EndDate:   "2024-02-01",
	}
}

func TestValidator_Valid(t *testing.T) {
	pair, rng, verr := NewValidator().Validate(validForm())
	require.Nil(t, verr)

	assert.Equal(t, "BTCUSDT_ETHUSDT", pair.Key())
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), rng.Start)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), rng.End)
}

func TestValidator_MissingFields(t *testing.T) {
	v := NewValidator()
	cases := []func(*models.SubmitForm){
		func(f *models.SubmitForm) { f.Symbol1 = "" },
		func(f *models.SubmitForm) { f.Symbol2 = "" },
		func(f *models.SubmitForm) { f.StartDate = "" },
		func(f *models.SubmitForm) { f.EndDate = "" },
		func(f *models.SubmitForm) { *f = models.SubmitForm{} },
	}
	for i, mutate := range cases {
		f := validForm()
		mutate(&f)
		_, _, verr := v.Validate(f)
		require.NotNil(t, verr, "case %d", i)
		assert.Equal(t, models.MissingFields, verr.Kind, "case %d", i)
		assert.Equal(t, "All fields are required", verr.Message())
	}
}

func TestValidator_DuplicateSymbolsAnyCase(t *testing.T) {
	v := NewValidator()
	pairs := [][2]string{
		{"BTCUSDT", "BTCUSDT"},
		{"btcusdt", "BTCUSDT"},
		{"ethUSDT", "ETHusdt"},
		{"foo", "FOO"},
	}
	for _, p := range pairs {
		f := validForm()
		f.Symbol1, f.Symbol2 = p[0], p[1]
		f.StartDate, f.EndDate = "2024-03-01", "2024-01-01"

		_, _, verr := v.Validate(f)
		require.NotNil(t, verr)
		assert.Equal(t, models.DuplicateSymbols, verr.Kind, "%v", p)
	}
}

func TestValidator_InvalidSymbolFormat(t *testing.T) {
	v := NewValidator()
	bad := []string{"BTC", "USDT", "btcusdt", "BTCUSD", "BTC-USDT", "BTCUSDT ", "1INCHUSDT", "BTCUSDTX", "ÄUSDT"}
	for _, s := range bad {
		f := validForm()
		f.Symbol1, f.Symbol2 = "SOLUSDT", s
		_, _, verr := v.Validate(f)
		require.NotNil(t, verr, s)
		assert.Equal(t, models.InvalidSymbolFormat, verr.Kind, s)

		f = validForm()
		f.Symbol1, f.Symbol2 = s, "SOLUSDT"
		_, _, verr = v.Validate(f)
		require.NotNil(t, verr, s)
		assert.Equal(t, models.InvalidSymbolFormat, verr.Kind, s)
	}
}

func TestValidator_InvalidDateOrder(t *testing.T) {
	v := NewValidator()
	cases := [][2]string{
		{"2024-02-01", "2024-01-01"},
		{"2024-01-01", "2024-01-01"},
		{"2024-12-31", "2023-01-01"},
		{"01/01/2024", "2024-02-01"},
		{"2024-01-01", "2024-13-01"},
	}
	for _, c := range cases {
		f := validForm()
		f.StartDate, f.EndDate = c[0], c[1]
		_, _, verr := v.Validate(f)
		require.NotNil(t, verr, "%v", c)
		assert.Equal(t, models.InvalidDateOrder, verr.Kind, "%v", c)
	}
}

func TestValidator_RuleOrder(t *testing.T) {
	v := NewValidator()

	f := validForm()
	f.Symbol1, f.Symbol2 = "btc", "btc"
	_, _, verr := v.Validate(f)
	require.NotNil(t, verr)
	assert.Equal(t, models.DuplicateSymbols, verr.Kind, "duplicate wins over format")

	f = validForm()
	f.Symbol1 = "btc"
	f.StartDate, f.EndDate = "2024-03-01", "2024-01-01"
	_, _, verr = v.Validate(f)
	require.NotNil(t, verr)
	assert.Equal(t, models.InvalidSymbolFormat, verr.Kind, "format wins over dates")
}
