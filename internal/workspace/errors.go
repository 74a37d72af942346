package workspace

import "errors"

var ErrInvalidArgument = errors.New("invalid argument")
