package main

import (
	"errors"
)

var (
	ERR_INVALID_CONFIG       error = errors.New("Can't run with this configuration")
	ERR_BAD_INPUT            error = errors.New("Can't open input")
	ERR_BAD_OUTPUT           error = errors.New("Can't open output")
	ERR_OUTPUT_CLOSED        error = errors.New("Output closed")
	ERR_INTERRUPTED_BY_USER  error = errors.New("Interrupted by user")
)
