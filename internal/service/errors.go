package service

import (
	"github.com/dukerupert/nahl/internal/domain"
)

// Storefront errors. Not-found causes share the ENOTFOUND code and differ
// only in the message shown to the shopper.
var (
	ErrDataUnavailable  = domain.ErrDataUnavailable
	ErrMissingProductID = domain.ErrMissingProductID
	ErrProductNotFound  = domain.ErrProductNotFound
	ErrProductInactive  = domain.ErrProductInactive
)
