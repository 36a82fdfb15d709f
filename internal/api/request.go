package api

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/tenders-api/pkg/query"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Query parameter names. Lookup is case-insensitive.
const (
	paramMinPrice   = "MinPriceEur"
	paramMaxPrice   = "MaxPriceEur"
	paramDateFrom   = "DateFrom"
	paramDateTo     = "DateTo"
	paramSupplierID = "SupplierId"
	paramSortBy     = "SortBy"
	paramSortOrder  = "SortOrder"
	paramPageNumber = "PageNumber"
	paramPageSize   = "PageSize"
	paramID         = "Id"
)

// dateLayouts accepted for DateFrom and DateTo.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// listRequest is the parsed, not yet validated, list query.
// Field names reported in validation errors come from the param tag.
type listRequest struct {
	MinPriceEur *decimal.Decimal `param:"MinPriceEur" validate:"-"`
	MaxPriceEur *decimal.Decimal `param:"MaxPriceEur" validate:"-"`
	DateFrom    *time.Time       `param:"DateFrom" validate:"-"`
	DateTo      *time.Time       `param:"DateTo" validate:"-"`
	SupplierID  *int             `param:"SupplierId" validate:"omitempty,gt=0"`
	SortBy      string           `param:"SortBy"`
	SortOrder   string           `param:"SortOrder"`
	PageNumber  int              `param:"PageNumber" validate:"gt=0,lte=1000000"`
	PageSize    int              `param:"PageSize" validate:"gte=1,lte=100"`
}

type getRequest struct {
	ID int `param:"Id" validate:"gt=0"`
}

// messages maps "<param>.<tag>" to the message reported to clients.
var messages = map[string]string{
	paramMinPrice + ".gte":     "MinPriceEur must be greater than or equal to 0",
	paramMaxPrice + ".gte":     "MaxPriceEur must be greater than or equal to 0",
	paramMaxPrice + ".gtfield": "MaxPriceEur must be greater than MinPriceEur",
	paramDateTo + ".gtefield":  "DateTo must be greater than or equal to DateFrom",
	paramSupplierID + ".gt":    "SupplierId must be greater than 0",
	paramPageNumber + ".gt":    "PageNumber must be greater than 0",
	paramPageNumber + ".lte":   "PageNumber must be less than or equal to 1000000",
	paramPageSize + ".gte":     "PageSize must be between 1 and 100",
	paramPageSize + ".lte":     "PageSize must be between 1 and 100",
	paramID + ".gt":            "Id must be greater than 0",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("param")
	})
	v.RegisterStructValidation(listRequestRules, listRequest{})
	return v
}

// listRequestRules holds the rules validator tags cannot express on
// decimal and time pointers.
func listRequestRules(sl validator.StructLevel) {
	req := sl.Current().Interface().(listRequest)

	if req.MinPriceEur != nil && req.MinPriceEur.IsNegative() {
		sl.ReportError(req.MinPriceEur, paramMinPrice, "MinPriceEur", "gte", "0")
	}
	if req.MaxPriceEur != nil && req.MaxPriceEur.IsNegative() {
		sl.ReportError(req.MaxPriceEur, paramMaxPrice, "MaxPriceEur", "gte", "0")
	}
	if req.MinPriceEur != nil && req.MaxPriceEur != nil && !req.MaxPriceEur.GreaterThan(*req.MinPriceEur) {
		sl.ReportError(req.MaxPriceEur, paramMaxPrice, "MaxPriceEur", "gtfield", "MinPriceEur")
	}
	if req.DateFrom != nil && req.DateTo != nil && req.DateTo.Before(*req.DateFrom) {
		sl.ReportError(req.DateTo, paramDateTo, "DateTo", "gtefield", "DateFrom")
	}
}

// fieldErrors collects parse and validation failures per parameter.
type fieldErrors map[string][]string

func (fe fieldErrors) add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

func (fe fieldErrors) invalidValue(field, raw string) {
	fe.add(field, fmt.Sprintf("The value '%s' is not valid for %s.", raw, field))
}

// addValidation converts validator errors into client messages.
func (fe fieldErrors) addValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, e := range verrs {
		msg, ok := messages[e.Field()+"."+e.Tag()]
		if !ok {
			msg = fmt.Sprintf("%s is invalid (%s)", e.Field(), e.Tag())
		}
		fe.add(e.Field(), msg)
	}
	return nil
}

// params gives case-insensitive access to query parameters.
type params map[string]string

func newParams(values url.Values) params {
	p := make(params, len(values))
	for key, vals := range values {
		k := strings.ToLower(key)
		if _, seen := p[k]; seen || len(vals) == 0 {
			continue
		}
		p[k] = strings.TrimSpace(vals[0])
	}
	return p
}

func (p params) get(name string) (string, bool) {
	v, ok := p[strings.ToLower(name)]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (p params) decimalValue(name string, errs fieldErrors) *decimal.Decimal {
	raw, ok := p.get(name)
	if !ok {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		errs.invalidValue(name, raw)
		return nil
	}
	return &d
}

func (p params) timeValue(name string, errs fieldErrors) *time.Time {
	raw, ok := p.get(name)
	if !ok {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	errs.invalidValue(name, raw)
	return nil
}

func (p params) intValue(name string, errs fieldErrors) (int, bool) {
	raw, ok := p.get(name)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		errs.invalidValue(name, raw)
		return 0, false
	}
	return n, true
}

// parseListRequest turns query parameters into a query spec.
// It returns a validation problem when any parameter is malformed or out of range.
func parseListRequest(values url.Values) (query.Spec, error) {
	p := newParams(values)
	errs := fieldErrors{}

	req := listRequest{
		MinPriceEur: p.decimalValue(paramMinPrice, errs),
		MaxPriceEur: p.decimalValue(paramMaxPrice, errs),
		DateFrom:    p.timeValue(paramDateFrom, errs),
		DateTo:      p.timeValue(paramDateTo, errs),
		PageNumber:  query.DefaultPageNumber,
		PageSize:    query.DefaultPageSize,
	}
	req.SortBy, _ = p.get(paramSortBy)
	req.SortOrder, _ = p.get(paramSortOrder)
	if id, ok := p.intValue(paramSupplierID, errs); ok {
		req.SupplierID = &id
	}
	if n, ok := p.intValue(paramPageNumber, errs); ok {
		req.PageNumber = n
	}
	if n, ok := p.intValue(paramPageSize, errs); ok {
		req.PageSize = n
	}

	if err := errs.addValidation(validate.Struct(req)); err != nil {
		return query.Spec{}, fmt.Errorf("validate list request: %w", err)
	}
	if len(errs) > 0 {
		return query.Spec{}, ValidationProblem(errs)
	}

	return query.Spec{
		MinPrice:   req.MinPriceEur,
		MaxPrice:   req.MaxPriceEur,
		DateFrom:   req.DateFrom,
		DateTo:     req.DateTo,
		SupplierID: req.SupplierID,
		SortBy:     req.SortBy,
		SortOrder:  req.SortOrder,
		PageNumber: req.PageNumber,
		PageSize:   req.PageSize,
	}, nil
}

// parseID validates the {id} path segment.
func parseID(raw string) (int, error) {
	errs := fieldErrors{}
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		errs.invalidValue(paramID, raw)
		return 0, ValidationProblem(errs)
	}

	if err := errs.addValidation(validate.Struct(getRequest{ID: id})); err != nil {
		return 0, fmt.Errorf("validate id: %w", err)
	}
	if len(errs) > 0 {
		return 0, ValidationProblem(errs)
	}
	return id, nil
}
