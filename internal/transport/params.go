package transport

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/service"
)

// orderIDKeys are the query keys accepted for an order id, in lookup order.
var orderIDKeys = []string{"orderId", "orderid", "orderID"}

func orderIDParam(r *http.Request) string {
	query := r.URL.Query()
	for _, key := range orderIDKeys {
		if v := strings.TrimSpace(query.Get(key)); v != "" {
			return v
		}
	}
	return ""
}

func int64Param(r *http.Request, key string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, fmt.Errorf("%w: query parameter %q is required", service.ErrInvalidArgument, key)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: query parameter %q must be an integer", service.ErrInvalidArgument, key)
	}
	return v, nil
}

func intParam(r *http.Request, key string) (int, error) {
	v, err := int64Param(r, key)
	if err != nil {
		return 0, err
	}
	if v != int64(int(v)) {
		return 0, fmt.Errorf("%w: query parameter %q is out of range", service.ErrInvalidArgument, key)
	}
	return int(v), nil
}
