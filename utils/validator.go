package utils

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
)

// Minimal internal validator to avoid external dependency. Supports:
// - required (non-empty string, non-zero number)
// - oneof=a b c (string must be one of the listed values; empty passes unless required)
// - min=N (numeric minimum, or minimum length for strings)
//
// Errors are collected per field, keyed by the json tag when present, so they
// can be returned as a 422 field-error map.

// ValidateStruct inspects struct tags `validate:"..."` and returns a map of
// field errors, empty when the struct is valid.
func ValidateStruct(s interface{}) (map[string]string, error) {
	v := reflect.ValueOf(s)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, errors.New("ValidateStruct expects a struct or pointer to struct")
	}
	errs := map[string]string{}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" {
			continue
		}
		name := fieldName(field)
		fv := v.Field(i)
		if fv.Kind() == reflect.Ptr {
			if fv.IsNil() {
				if hasRule(tag, "required") {
					errs[name] = "The " + name + " field is required"
				}
				continue
			}
			fv = fv.Elem()
		}
		for _, p := range strings.Split(tag, ",") {
			p = strings.TrimSpace(p)
			switch {
			case p == "required":
				if isZeroValue(fv) {
					errs[name] = "The " + name + " field is required"
				}
			case strings.HasPrefix(p, "oneof="):
				if fv.Kind() != reflect.String || fv.String() == "" {
					continue
				}
				allowed := strings.Fields(strings.TrimPrefix(p, "oneof="))
				ok := false
				for _, a := range allowed {
					if fv.String() == a {
						ok = true
						break
					}
				}
				if !ok {
					errs[name] = "The " + name + " must be one of: " + strings.Join(allowed, ", ")
				}
			case strings.HasPrefix(p, "min="):
				min, convErr := strconv.ParseFloat(strings.TrimPrefix(p, "min="), 64)
				if convErr != nil {
					continue
				}
				switch fv.Kind() {
				case reflect.String:
					if fv.String() != "" && float64(len(fv.String())) < min {
						errs[name] = "The " + name + " must be at least " + strconv.Itoa(int(min)) + " characters"
					}
				case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
					if float64(fv.Int()) < min {
						errs[name] = "The " + name + " must be at least " + strconv.FormatFloat(min, 'f', -1, 64)
					}
				case reflect.Float32, reflect.Float64:
					if fv.Float() < min {
						errs[name] = "The " + name + " must be at least " + strconv.FormatFloat(min, 'f', -1, 64)
					}
				}
			}
		}
	}
	return errs, nil
}

func fieldName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" || tag == "-" {
		return f.Name
	}
	if idx := strings.Index(tag, ","); idx >= 0 {
		tag = tag[:idx]
	}
	if tag == "" {
		return f.Name
	}
	return tag
}

func isZeroValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	default:
		return v.IsZero()
	}
}

func hasRule(tag, rule string) bool {
	for _, p := range strings.Split(tag, ",") {
		if strings.TrimSpace(p) == rule {
			return true
		}
	}
	return false
}
