package config

import (
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
)

// decimalHook decodes strings and numbers from yaml or env into decimal.Decimal
// and keeps viper's default duration parsing.
func decimalHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
			if to != reflect.TypeOf(decimal.Decimal{}) {
				return data, nil
			}
			switch v := data.(type) {
			case string:
				if v == "" {
					return decimal.Zero, nil
				}
				return decimal.NewFromString(v)
			case int:
				return decimal.NewFromInt(int64(v)), nil
			case float64:
				return decimal.NewFromFloat(v), nil
			default:
				return data, nil
			}
		},
	)
}
