// utils/quantity.go
package utils

import (
	"encoding/json"
	"strconv"

	"github.com/sabbirsolid/asset-management-system-server/apperr"
)

// CoerceQuantity turns a decoded JSON value into an integer quantity.
// Clients send quantities as numbers or numeric strings; anything
// else, and any fractional value, is InvalidQuantity. The engine never
// sees a quantity that did not pass this.
func CoerceQuantity(v interface{}) (int64, error) {
	switch q := v.(type) {
	case float64:
		n := int64(q)
		if float64(n) != q {
			return 0, apperr.New(apperr.KindInvalidQuantity, "quantity must be a whole number")
		}
		return n, nil
	case string:
		n, err := strconv.ParseInt(q, 10, 64)
		if err != nil {
			return 0, apperr.Newf(apperr.KindInvalidQuantity, "quantity %q is not numeric", q)
		}
		return n, nil
	case json.Number:
		n, err := q.Int64()
		if err != nil {
			return 0, apperr.New(apperr.KindInvalidQuantity, "quantity must be a whole number")
		}
		return n, nil
	case nil:
		return 0, apperr.New(apperr.KindInvalidQuantity, "quantity is required")
	}
	return 0, apperr.New(apperr.KindInvalidQuantity, "quantity must be a number")
}
