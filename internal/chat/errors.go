package chat

import "errors"

var (
	ErrBusy                 = errors.New("another request is in progress")
	ErrEmptyInput           = errors.New("empty input")
	ErrUnexpectedUpload     = errors.New("resume upload is not expected now")
	ErrUnsupportedDocument  = errors.New("only PDF documents are accepted")
	ErrUnknownHistoryRecord = errors.New("unknown history record")
	ErrInvalidState         = errors.New("invalid conversation state")
	ErrNotStarted           = errors.New("conversation is not started")
)
