// validate.go: Parameter validation rules shared by setters and config sources.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package pbecrypt

import (
	"strconv"
	"strings"

	validation "github.com/jellydator/validation"
)

// Rules are checked the moment a value is supplied, so a bad value never
// reaches initialization. Threshold rules skip zero values, hence Required.
var (
	iterationsRules = []validation.Rule{
		validation.Required.Error("must be positive"),
		validation.Min(1).Error("must be positive"),
	}
	saltSizeRules = []validation.Rule{
		validation.Min(0).Error("must not be negative"),
	}
	poolSizeRules = []validation.Rule{
		validation.Required.Error("must be positive"),
		validation.Min(1).Error("must be positive"),
	}
	nameRules = []validation.Rule{
		validation.Required.Error("cannot be empty"),
		validation.By(notBlank),
	}
	outputEncodingRules = []validation.Rule{
		validation.Required.Error("cannot be empty"),
		validation.In(string(Base64Encoding), string(HexEncoding)).Error("must be base64 or hexadecimal"),
	}
)

func notBlank(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_not_blank_type", "must be a string")
	}
	if s != "" && strings.TrimSpace(s) == "" {
		return validation.NewError("validation_not_blank", "cannot be blank")
	}
	return nil
}

func validateIterations(n int) error {
	if err := validation.Validate(n, iterationsRules...); err != nil {
		return invalidParameter("iterations", err)
	}
	return nil
}

func validateSaltSize(n int) error {
	if err := validation.Validate(n, saltSizeRules...); err != nil {
		return invalidParameter("salt size", err)
	}
	return nil
}

func validatePoolSize(n int) error {
	if err := validation.Validate(n, poolSizeRules...); err != nil {
		return invalidParameter("pool size", err)
	}
	return nil
}

func validateName(param, value string) error {
	if err := validation.Validate(value, nameRules...); err != nil {
		return invalidParameter(param, err)
	}
	return nil
}

func validateOutputEncoding(value string) error {
	if err := validation.Validate(strings.ToLower(value), outputEncodingRules...); err != nil {
		return invalidParameter("string output type", err)
	}
	return nil
}

// parseInt converts DI-style text input ("1000") into an int.
func parseInt(param, text string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, invalidParameter(param, err)
	}
	return n, nil
}

// parseBool converts DI-style text input ("true") into a bool.
func parseBool(param, text string) (bool, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(text))
	if err != nil {
		return false, invalidParameter(param, err)
	}
	return b, nil
}
