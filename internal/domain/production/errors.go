package production

import "errors"

var (
	ErrInvalidRange      = errors.New("start date must not be after end date")
	ErrDatasetNotFound   = errors.New("dataset source not found")
	ErrUnknownSourceKind = errors.New("unknown dataset source kind")
	ErrMissingColumn     = errors.New("required column missing from dataset header")
	ErrMalformedRow      = errors.New("malformed dataset row")
)
