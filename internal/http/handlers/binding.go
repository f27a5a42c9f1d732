package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/tbourn/go-chai-catalog/internal/domain"
	"github.com/tbourn/go-chai-catalog/internal/rating"
)

var registerOnce sync.Once

// RegisterValidators installs the catalog's custom rules on Gin's validator:
//
//	category      one of the chai category codes or labels
//	price_bucket  a price_range token (0-50, 50-100, 100-200, 200+, all, aliases)
//	rating        an integer star rating in [1,5]
//
// Field names in validation errors follow the json (else form) tag. Safe to
// call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(wireName)
		_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
			_, ok := domain.ParseCategory(fl.Field().String())
			return ok
		})
		_ = v.RegisterValidation("price_bucket", func(fl validator.FieldLevel) bool {
			_, ok := domain.ParsePriceBucket(fl.Field().String())
			return ok
		})
		_ = v.RegisterValidation("rating", func(fl validator.FieldLevel) bool {
			switch fl.Field().Kind() {
			case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
				return rating.Valid(int(fl.Field().Int()))
			}
			return false
		})
	})
}

func wireName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// bindingMessage turns a binding error into a client-safe message naming the
// first offending field.
func bindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request body"
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "rating":
		return fe.Field() + ": rating must be between 1 and 5"
	case "category":
		return fe.Field() + ": unknown category"
	case "price_bucket":
		return fe.Field() + ": unknown price range"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fe.Field() + " is invalid"
	}
}
