package jobsearch

import "errors"

var (
	// ErrDocumentUnreadable is returned when the backend could not extract text from the document.
	ErrDocumentUnreadable = errors.New("document unreadable")
	// ErrSearchUnavailable is returned when the job search could not be completed.
	ErrSearchUnavailable = errors.New("search unavailable")
	// ErrHistoryUnavailable is returned when past searches could not be loaded.
	ErrHistoryUnavailable = errors.New("history unavailable")
)
