package snowflake

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/healthintel/snowbridge/pkg/errors"
)

// coerceValue converts one driver value into a transport-safe type. The
// agent transport cannot carry warehouse-native decimal or timestamp
// types, so conversion here is mandatory, not cosmetic.
func coerceValue(value interface{}, dbType string) (interface{}, error) {
	if value == nil {
		return nil, nil
	}

	switch v := value.(type) {
	case time.Time:
		if strings.EqualFold(dbType, "DATE") {
			return v.Format("2006-01-02"), nil
		}
		return v.Format(time.RFC3339), nil
	case []byte:
		return coerceString(string(v), dbType)
	case string:
		return coerceString(v, dbType)
	case float64, float32, int64, int32, int, bool:
		return v, nil
	default:
		return nil, apperrors.NewSerializationError(
			fmt.Sprintf("unsupported %s value of type %T", dbType, value), nil)
	}
}

// Numeric results arrive from the driver as strings; anything declared
// numeric is parsed to float64 so fractional parts survive transport.
func coerceString(s, dbType string) (interface{}, error) {
	if !isNumericType(dbType) {
		return s, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, apperrors.NewSerializationError(
			fmt.Sprintf("could not parse %s value %q as number", dbType, s), err)
	}
	return f, nil
}

func isNumericType(dbType string) bool {
	switch strings.ToUpper(dbType) {
	case "FIXED", "NUMBER", "DECIMAL", "NUMERIC", "INT", "INTEGER", "BIGINT",
		"REAL", "FLOAT", "DOUBLE", "DOUBLE PRECISION":
		return true
	}
	return false
}
