package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/pathfinder/internal/jobsearch"
	"github.com/spigell/pathfinder/internal/logger"
)

const DefaultLocale = "USA"

// Gateway is the backend doing the actual work.
type Gateway interface {
	ParseDocument(ctx context.Context, doc *jobsearch.Document) (string, error)
	SearchJobs(ctx context.Context, params *jobsearch.SearchParams) ([]jobsearch.JobMatch, error)
	ListHistory(ctx context.Context) ([]jobsearch.HistoryRecord, error)
	FetchHistoryItem(ctx context.Context, id int) ([]jobsearch.JobMatch, error)
}

// Greeter produces the opening message of a conversation.
type Greeter interface {
	Greeting(ctx context.Context) (string, error)
}

// Presenter is notified after every change of the transcript or the busy flag.
type Presenter interface {
	Replaced(entries []Entry)
	Appended(entry Entry)
	Busy(busy bool)
}

type Deps struct {
	Gateway   Gateway
	Greeter   Greeter
	Presenter Presenter
	Logger    *zap.Logger
}

// Controller drives one conversation through its states.
// All operations run in the caller goroutine; the busy flag rejects
// any operation that overlaps an outstanding remote call.
type Controller struct {
	gateway   Gateway
	greeter   Greeter
	presenter Presenter
	logger    *zap.Logger
	locale    string

	mu         sync.Mutex
	started    bool
	busy       bool
	degraded   bool
	state      State
	session    *Session
	transcript *Transcript
	history    *HistoryCache
}

func New(deps Deps, locale string) *Controller {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Presenter == nil {
		deps.Presenter = nopPresenter{}
	}

	locale = strings.TrimSpace(locale)
	if locale == "" {
		locale = DefaultLocale
	}

	return &Controller{
		gateway:    deps.Gateway,
		greeter:    deps.Greeter,
		presenter:  deps.Presenter,
		logger:     deps.Logger,
		locale:     locale,
		session:    newSession(),
		transcript: NewTranscript(),
		history:    NewHistoryCache(),
	}
}

// Start greets the user and loads the search history.
func (c *Controller) Start(ctx context.Context) error {
	if err := c.acquire(); err != nil {
		return err
	}
	defer c.release()

	c.history.Load(ctx, c.gateway, c.logger)
	c.begin(c.greeting(ctx))

	return nil
}

// Reset throws the current conversation away and starts a new one.
// The history is fetched again so the search that just finished shows up.
func (c *Controller) Reset(ctx context.Context) error {
	if err := c.acquire(); err != nil {
		return err
	}
	defer c.release()

	c.history.Reload(ctx, c.gateway, c.logger)
	c.begin(c.greeting(ctx))

	return nil
}

// Submit handles free text typed by the user.
func (c *Controller) Submit(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyInput
	}

	c.mu.Lock()
	if err := c.guard(); err != nil {
		c.mu.Unlock()
		return err
	}

	reaction, err := c.state.react(triggerText)
	if err != nil {
		c.mu.Unlock()
		return err
	}

	var reply Entry
	switch reaction {
	case reactStartFlow:
		c.session.RoleQuery = text
		c.state = StateAwaitingResume
		reply = uploadPromptEntry(msgUploadPrompt, jobsearch.PDFMimeType)
	case reactHint:
		reply = assistantEntry(hintFor(c.state))
	default:
		c.mu.Unlock()
		return fmt.Errorf("%w: text in %s", ErrInvalidState, c.state)
	}

	entries := []Entry{userEntry(text), reply}
	c.transcript.Append(entries...)
	log := c.sessionLogger()
	state := c.state
	c.mu.Unlock()

	log.Info("user message", zap.Stringer("state", state), zap.String("text", logger.TruncateForLog(text, 80)))
	c.notify(entries...)

	return nil
}

// Upload parses the resume and runs the search with it.
// Remote failures end up in the transcript and are not returned.
func (c *Controller) Upload(ctx context.Context, doc *jobsearch.Document) error {
	if !doc.IsPDF() {
		return ErrUnsupportedDocument
	}

	c.mu.Lock()
	if err := c.guard(); err != nil {
		c.mu.Unlock()
		return err
	}

	reaction, err := c.state.react(triggerUpload)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	if reaction != reactParse {
		c.mu.Unlock()
		return fmt.Errorf("%w: upload in %s", ErrInvalidState, c.state)
	}

	echo := userEntry(uploadEcho(doc.Name))
	c.transcript.Append(echo)
	c.busy = true
	role := c.session.RoleQuery
	log := c.sessionLogger()
	c.mu.Unlock()

	c.notify(echo)
	c.presenter.Busy(true)
	defer c.release()

	log.Info("parsing resume", zap.String("file", doc.Name), zap.Int("size", len(doc.Content)))

	text, err := c.gateway.ParseDocument(ctx, doc)
	if err != nil {
		log.Warn("resume parsing failed", zap.String("file", doc.Name), zap.Error(err))
		c.append(func() {}, assistantEntry(msgUnreadableFile))
		return nil
	}

	c.append(func() {
		c.session.ResumeText = text
		c.state = StateSearching
	}, assistantEntry(msgAnalyzing))

	log.Debug("resume parsed", zap.String("resume_preview", logger.TruncateForLog(text, 120)))

	c.search(ctx, log, role, text)

	return nil
}

func (c *Controller) search(ctx context.Context, log *zap.Logger, role, resume string) {
	log.Info("starting the search", zap.String("roles", role), zap.String("locale", c.locale))

	jobs, err := c.gateway.SearchJobs(ctx, &jobsearch.SearchParams{
		Roles:      role,
		Country:    c.locale,
		ResumeText: resume,
	})

	degraded := false
	var reply Entry
	switch {
	case err != nil:
		log.Warn("search failed", zap.Error(err))
		degraded = true
		reply = assistantEntry(msgSearchFailed)
	case len(jobs) == 0:
		log.Info("search finished", zap.String("reason", "no matches found"))
		reply = assistantEntry(msgNoMatches)
	default:
		log.Info("search finished", zap.Int("count", len(jobs)))
		reply = resultsEntry(foundMessage(len(jobs)), jobs, nil)
	}

	c.append(func() {
		c.state = StateResultsShown
		c.degraded = degraded
	}, reply)
}

// OpenHistory replays a past search into the transcript.
// Opening the record that is already displayed last does nothing.
func (c *Controller) OpenHistory(ctx context.Context, id int) error {
	c.mu.Lock()
	if err := c.guard(); err != nil {
		c.mu.Unlock()
		return err
	}

	record, ok := c.history.Find(id)
	if !ok {
		c.mu.Unlock()
		return ErrUnknownHistoryRecord
	}

	if last, ok := c.transcript.Last(); ok {
		if table, ok := last.Results(); ok && table.Tagged(id) {
			c.mu.Unlock()
			c.logger.Debug("history record is already displayed", zap.Int("history_id", id))
			return nil
		}
	}

	c.busy = true
	log := c.sessionLogger().With(zap.Int("history_id", id))
	c.mu.Unlock()

	c.presenter.Busy(true)
	defer c.release()

	jobs, err := c.gateway.FetchHistoryItem(ctx, id)
	if err != nil {
		log.Error("failed to load search results", zap.Error(err))
		return nil
	}

	tag := id
	c.append(func() {},
		userEntry(historyRequestMessage(record.Query)),
		resultsEntry(historyFoundMessage(len(jobs), record.Query), jobs, &tag),
	)

	log.Info("history replayed", zap.Int("count", len(jobs)))

	return nil
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Degraded reports whether the last search ended with a failure.
func (c *Controller) Degraded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.degraded
}

func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return *c.session
}

func (c *Controller) Entries() []Entry {
	return c.transcript.Entries()
}

func (c *Controller) History() []jobsearch.HistoryRecord {
	return c.history.Records()
}

func (c *Controller) greeting(ctx context.Context) string {
	if c.greeter == nil {
		return DefaultGreeting
	}

	text, err := c.greeter.Greeting(ctx)
	if err != nil {
		c.logger.Warn("falling back to default greeting", zap.Error(err))
		return DefaultGreeting
	}

	if text = strings.TrimSpace(text); text == "" {
		return DefaultGreeting
	}

	return text
}

// begin resets the conversation. The caller holds the busy flag.
func (c *Controller) begin(greeting string) {
	entry := assistantEntry(greeting)

	c.mu.Lock()
	c.session = newSession()
	c.state = StateIdle
	c.degraded = false
	c.started = true
	c.transcript.Replace(entry)
	entries := c.transcript.Entries()
	log := c.sessionLogger()
	c.mu.Unlock()

	log.Info("conversation started")
	c.presenter.Replaced(entries)
}

// guard must be called with the mutex held.
func (c *Controller) guard() error {
	if !c.started {
		return ErrNotStarted
	}
	if c.busy {
		return ErrBusy
	}
	return nil
}

func (c *Controller) acquire() error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	c.busy = true
	c.mu.Unlock()

	c.presenter.Busy(true)
	return nil
}

func (c *Controller) release() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()

	c.presenter.Busy(false)
}

// append applies mutate and appends entries atomically, then notifies the presenter.
func (c *Controller) append(mutate func(), entries ...Entry) {
	c.mu.Lock()
	mutate()
	c.transcript.Append(entries...)
	c.mu.Unlock()

	c.notify(entries...)
}

func (c *Controller) notify(entries ...Entry) {
	for _, entry := range entries {
		c.presenter.Appended(entry)
	}
}

// sessionLogger must be called with the mutex held.
func (c *Controller) sessionLogger() *zap.Logger {
	return logger.WithSessionFields(c.logger, c.session.ID.String(), c.state.String())
}

type nopPresenter struct{}

func (nopPresenter) Replaced([]Entry) {}
func (nopPresenter) Appended(Entry)   {}
func (nopPresenter) Busy(bool)        {}
