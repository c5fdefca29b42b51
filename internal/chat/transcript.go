package chat

import (
	"sync"

	"github.com/google/uuid"

	"github.com/spigell/pathfinder/internal/jobsearch"
)

type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

type Kind string

const (
	KindPlain        Kind = "plain"
	KindUploadPrompt Kind = "upload_prompt"
	KindResultsTable Kind = "results_table"
)

// Payload is the auxiliary data of a non plain entry.
// Only UploadPrompt and ResultsTable implement it.
type Payload interface {
	kind() Kind
}

// UploadPrompt asks the user for a document of the accepted type.
type UploadPrompt struct {
	Accept string
}

func (UploadPrompt) kind() Kind { return KindUploadPrompt }

// ResultsTable carries ranked jobs. HistoryTag is set only for replayed searches.
type ResultsTable struct {
	Jobs       []jobsearch.JobMatch
	HistoryTag *int
}

func (ResultsTable) kind() Kind { return KindResultsTable }

// Tagged reports whether the table was replayed from the given history record.
func (r ResultsTable) Tagged(id int) bool {
	return r.HistoryTag != nil && *r.HistoryTag == id
}

type Entry struct {
	ID      uuid.UUID
	Speaker Speaker
	Body    string
	payload Payload
}

func newEntry(speaker Speaker, body string, payload Payload) Entry {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}

	return Entry{ID: id, Speaker: speaker, Body: body, payload: payload}
}

func userEntry(body string) Entry {
	return newEntry(SpeakerUser, body, nil)
}

func assistantEntry(body string) Entry {
	return newEntry(SpeakerAssistant, body, nil)
}

func uploadPromptEntry(body, accept string) Entry {
	return newEntry(SpeakerAssistant, body, UploadPrompt{Accept: accept})
}

func resultsEntry(body string, jobs []jobsearch.JobMatch, tag *int) Entry {
	copied := make([]jobsearch.JobMatch, len(jobs))
	copy(copied, jobs)
	return newEntry(SpeakerAssistant, body, ResultsTable{Jobs: copied, HistoryTag: tag})
}

func (e Entry) Kind() Kind {
	if e.payload == nil {
		return KindPlain
	}
	return e.payload.kind()
}

// Payload returns nil for plain entries.
func (e Entry) Payload() Payload {
	return e.payload
}

// Results returns a copy of the table of a results entry.
func (e Entry) Results() (ResultsTable, bool) {
	table, ok := e.payload.(ResultsTable)
	if !ok {
		return ResultsTable{}, false
	}
	table.Jobs = append([]jobsearch.JobMatch(nil), table.Jobs...)
	return table, true
}

// Transcript is the ordered log of a conversation.
// Entries are only appended, except for Replace on session start.
type Transcript struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewTranscript() *Transcript {
	return &Transcript{}
}

func (t *Transcript) Append(entries ...Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, entries...)
}

// Replace drops every entry and starts over with the provided ones.
func (t *Transcript) Replace(entries ...Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(make([]Entry, 0, len(entries)), entries...)
}

// Entries returns a copy of the log.
func (t *Transcript) Entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Entry(nil), t.entries...)
}

func (t *Transcript) Last() (Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.entries) == 0 {
		return Entry{}, false
	}
	return t.entries[len(t.entries)-1], true
}

func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
