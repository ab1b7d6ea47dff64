// Package errors provides the error taxonomy of the analytics service.
package errors

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument reports a malformed identifier, date or paging parameter.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrUpstreamUnavailable wraps every failure of the data store.
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

var ErrCreateOrder = errors.New("failed to create order")
var ErrCreateProduct = errors.New("failed to create product")

var ErrCustomerSpending = errors.New("failed to aggregate customer spending")
var ErrTopSellingProducts = errors.New("failed to aggregate top selling products")
var ErrSalesAnalytics = errors.New("failed to aggregate sales analytics")

// InvalidArgument returns an error matching ErrInvalidArgument with a formatted detail.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// Upstream marks a store failure of the given operation as ErrUpstreamUnavailable, keeping the cause for logs.
func Upstream(op error, cause error) error {
	return fmt.Errorf("%w: %w: %w", ErrUpstreamUnavailable, op, cause)
}
