// Discograph - Music Catalog and Social Graph API
// Copyright 2026 Discograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/discograph/discograph

// Package validation provides struct validation using
// go-playground/validator v10 with a thread-safe singleton instance.
//
// Validation failures translate directly into the domain error taxonomy:
// a missing required field becomes PropertyNotProvided naming the JSON
// field, and an out-of-range rating becomes InvalidRating. Handlers
// declare their request shapes with validate tags and call Validate.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/discograph/discograph/internal/apperr"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the singleton validator instance. Field names in
// errors come from the json tag, matching what clients actually sent.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// Validate checks a request struct and translates the first failure into
// the matching domain error. Required fields map to PropertyNotProvided;
// rating bounds map to InvalidRating; anything else maps to
// PropertyNotProvided on the offending field, which is the closest
// client-facing contract for a malformed value.
func Validate(s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperr.NoValidFields()
	}

	fe := fieldErrs[0]
	switch {
	case fe.Tag() == "required":
		return apperr.PropertyNotProvided(fe.Field())
	case fe.Field() == "rating":
		value, _ := fe.Value().(int)
		return apperr.InvalidRating(float64(value))
	default:
		return apperr.PropertyNotProvided(fe.Field())
	}
}
