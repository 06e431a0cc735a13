package model

import "errors"

// Error kinds. Concrete errors wrap one of these so the top level can tell them apart with errors.Is.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrDataFetch     = errors.New("data fetch error")
	ErrRender        = errors.New("render error")
	ErrDelivery      = errors.New("delivery error")
)
