package search

import (
	"fmt"
	"net/url"
	"reflect"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("query")
	})
}

// rawQuery mirrors the inbound parameters. Optional numeric parameters are
// pointers so that an absent value differs from an empty one.
type rawQuery struct {
	Key        string  `query:"key" validate:"required"`
	Q          *string `query:"q"`
	StartIndex *string `query:"startIndex" validate:"omitnil,numeric"`
	MaxResults *string `query:"maxResults" validate:"omitnil,numeric"`
}

func lookup(values url.Values, name string) *string {
	if !values.Has(name) {
		return nil
	}
	v := values.Get(name)
	return &v
}

// ParseQuery validates values and applies defaults. defaultKey is used when
// the request carries no key. The first failing field, in declaration order,
// is reported.
func ParseQuery(values url.Values, defaultKey string) (Query, error) {
	raw := rawQuery{
		Key:        values.Get("key"),
		Q:          lookup(values, "q"),
		StartIndex: lookup(values, "startIndex"),
		MaxResults: lookup(values, "maxResults"),
	}
	if raw.Key == "" {
		raw.Key = defaultKey
	}

	if err := validate.Struct(raw); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok || len(verrs) == 0 {
			return Query{}, err
		}
		return Query{}, newValidationError(verrs[0])
	}

	q := Query{
		Key:        raw.Key,
		StartIndex: DefaultStartIndex,
		MaxResults: DefaultMaxResults,
	}
	if raw.Q != nil {
		q.Keyword = *raw.Q
	}
	if raw.StartIndex != nil {
		q.StartIndex = *raw.StartIndex
	}
	if raw.MaxResults != nil {
		q.MaxResults = *raw.MaxResults
	}
	return q, nil
}

func newValidationError(fe validator.FieldError) *ValidationError {
	field := fe.Field()

	var message string
	switch fe.Tag() {
	case "required":
		message = fmt.Sprintf("%q is required", field)
	case "numeric":
		message = fmt.Sprintf("%q must be a number", field)
	default:
		message = fmt.Sprintf("%q is invalid", field)
	}
	return &ValidationError{Field: field, Message: message}
}
