package core

import "errors"

// Errors returned by the registry and the service. Match them with errors.Is.
var (
	ErrQueryNotFound     = errors.New("query not found")
	ErrArgCount          = errors.New("wrong number of arguments")
	ErrInvalidArg        = errors.New("invalid argument")
	ErrInvalidDefinition = errors.New("invalid query definition")
)
