package reports

import "errors"

var (
	ErrReportNotFound   = errors.New("report not found")
	ErrUserNotFound     = errors.New("reported user not found")
	ErrNotACreator      = errors.New("reported user is not a creator")
	ErrNotCreator       = errors.New("creator role required")
	ErrNotAdmin         = errors.New("admin role required")
	ErrSelfReport       = errors.New("cannot report yourself")
	ErrEmptyDescription = errors.New("description is required")
)
