package usecase

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"PairView/internal/domain/models"
	"PairView/pkg/util"

	"github.com/go-playground/validator/v10"
)

var usdtSymbolRe = regexp.MustCompile(`^[A-Z]+USDT$`)

var (
	errDuplicate         = errors.New("symbols are equal")
	errStartNotBeforeEnd = errors.New("start is not before end")
)

// Validator gates a raw form before any fetch. It is pure and safe for concurrent use.
type Validator struct {
	v *validator.Validate
}

// NewValidator builds a Validator with the usdtsymbol tag registered.
func NewValidator() *Validator {
	v := validator.New()
	_ = v.RegisterValidation("usdtsymbol", func(fl validator.FieldLevel) bool {
		return usdtSymbolRe.MatchString(fl.Field().String())
	})
	return &Validator{v: v}
}

// Validate checks, in order: all fields present, symbols differ, symbols end with USDT,
// start date before end date. The first failing rule decides the error kind.
func (val *Validator) Validate(form models.SubmitForm) (models.SymbolPair, models.DateRange, *models.ViewError) {
	var (
		pair models.SymbolPair
		rng  models.DateRange
	)

	if err := val.v.Struct(form); err != nil {
		return pair, rng, models.NewViewError(models.MissingFields, fieldList(err))
	}

	if strings.EqualFold(form.Symbol1, form.Symbol2) {
		return pair, rng, models.NewViewError(models.DuplicateSymbols, errDuplicate)
	}

	for _, s := range []string{form.Symbol1, form.Symbol2} {
		if err := val.v.Var(s, "usdtsymbol"); err != nil {
			return pair, rng, models.NewViewError(models.InvalidSymbolFormat, fmt.Errorf("symbol %q: %w", s, err))
		}
	}

	for _, d := range []string{form.StartDate, form.EndDate} {
		if err := val.v.Var(d, "datetime="+util.DateLayout); err != nil {
			return pair, rng, models.NewViewError(models.InvalidDateOrder, fmt.Errorf("date %q: %w", d, err))
		}
	}
	start, _ := util.ParseDate(form.StartDate)
	end, _ := util.ParseDate(form.EndDate)
	if !start.Before(end) {
		return pair, rng, models.NewViewError(models.InvalidDateOrder,
			fmt.Errorf("%s >= %s: %w", form.StartDate, form.EndDate, errStartNotBeforeEnd))
	}

	pair = models.SymbolPair{Symbol1: form.Symbol1, Symbol2: form.Symbol2}
	rng = models.DateRange{Start: start, End: end}
	return pair, rng, nil
}

func fieldList(err error) error {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}
	names := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		names = append(names, fe.Field())
	}
	return fmt.Errorf("missing %s", strings.Join(names, ", "))
}
