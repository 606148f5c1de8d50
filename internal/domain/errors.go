package domain

import "errors"

var ErrUnknownProductType = errors.New("unknown product type")
