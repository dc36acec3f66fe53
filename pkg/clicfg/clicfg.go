// Package clicfg binds urfave/cli flag values onto a flag-tagged struct, so
// services depend on one typed config instead of the command object.
package clicfg

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/urfave/cli/v3"
)

var ErrCannotParseFlags = errors.New("cannot parse flags")

var durationType = reflect.TypeOf(time.Duration(0))

// ParseFlags copies flag values from c into s, matching fields by their
// `flag:"name"` tag. s must be a pointer to a struct; untagged and
// unexported fields are skipped.
func ParseFlags(c *cli.Command, s any) error {
	v := reflect.ValueOf(s)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w: expected pointer to struct, got %T", ErrCannotParseFlags, s)
	}
	v = v.Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)

		if !fieldValue.CanSet() {
			continue
		}

		flagName := field.Tag.Get("flag")
		if flagName == "" {
			continue
		}

		switch {
		case field.Type == durationType:
			fieldValue.SetInt(int64(c.Duration(flagName)))
		case field.Type == reflect.TypeOf([]string(nil)):
			fieldValue.Set(reflect.ValueOf(c.StringSlice(flagName)))
		case field.Type.Kind() == reflect.String:
			fieldValue.SetString(c.String(flagName))
		case field.Type.Kind() == reflect.Bool:
			fieldValue.SetBool(c.Bool(flagName))
		case field.Type.Kind() == reflect.Int || field.Type.Kind() == reflect.Int64:
			fieldValue.SetInt(int64(c.Int(flagName)))
		case field.Type.Kind() == reflect.Uint || field.Type.Kind() == reflect.Uint64:
			fieldValue.SetUint(uint64(c.Uint(flagName)))
		case field.Type.Kind() == reflect.Float64:
			fieldValue.SetFloat(c.Float64(flagName))
		default:
			return fmt.Errorf("%w: unsupported field type %s for flag %q",
				ErrCannotParseFlags, field.Type, flagName)
		}
	}

	return nil
}
