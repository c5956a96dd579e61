package domain

import "errors"

var (
	// ErrTokenNotFound means the address matched nothing in any explore list.
	ErrTokenNotFound = errors.New("token not found")

	// ErrNoFile means the upload form carried no "file" field.
	ErrNoFile = errors.New("no file provided")

	// ErrFileTooLarge means the upload exceeded the size limit.
	ErrFileTooLarge = errors.New("file too large")
)
