package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/olekukonko/tablewriter"

	"github.com/spigell/pathfinder/internal/chat"
	"github.com/spigell/pathfinder/internal/jobsearch"
)

const (
	assistantName = "Pathfinder"
	userName      = "You"
	topMatchLabel = "⭐ Top Match"
	busyLine      = "Analyzing..."
	noHistory     = "No searches yet"
	rationaleWrap = 60
)

// Terminal prints the conversation as plain text.
type Terminal struct {
	mu  sync.Mutex
	out io.Writer
	// UploadHint is shown under every upload prompt.
	UploadHint string
}

func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out, UploadHint: "Type /upload <path> to send your resume (PDF only)."}
}

func (t *Terminal) Replaced(entries []chat.Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, entry := range entries {
		t.entry(entry)
	}
}

func (t *Terminal) Appended(entry chat.Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entry(entry)
}

func (t *Terminal) Busy(busy bool) {
	if !busy {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "  %s\n", busyLine)
}

func (t *Terminal) entry(entry chat.Entry) {
	name := userName
	if entry.Speaker == chat.SpeakerAssistant {
		name = assistantName
	}

	fmt.Fprintf(t.out, "\n%s: %s\n", name, entry.Body)

	switch payload := entry.Payload().(type) {
	case chat.UploadPrompt:
		if t.UploadHint != "" {
			fmt.Fprintf(t.out, "  %s\n", t.UploadHint)
		}
	case chat.ResultsTable:
		Jobs(t.out, payload.Jobs)
	}
}

// Jobs prints the matches as a table.
func Jobs(out io.Writer, jobs []jobsearch.JobMatch) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Position", "Why it matches", "Link"})
	table.SetAutoWrapText(true)
	table.SetColWidth(rationaleWrap)
	table.SetRowLine(true)

	for _, job := range jobs {
		table.Append([]string{position(job), job.Rationale, job.ApplyURL})
	}

	table.Render()
}

func position(job jobsearch.JobMatch) string {
	lines := []string{job.Title, job.Employer}
	if job.IsTopMatch() {
		lines = append(lines, topMatchLabel)
	}
	return strings.Join(lines, "\n")
}

// History prints the recent searches the way the sidebar lists them.
func History(out io.Writer, records []jobsearch.HistoryRecord) {
	if len(records) == 0 {
		fmt.Fprintln(out, noHistory)
		return
	}

	fmt.Fprintln(out, "Recent:")
	for _, record := range records {
		fmt.Fprintf(out, "  #%d %s (%d)\n", record.ID, record.Query, record.JobCount)
	}
}

// HistoryLabel is the text of a record in pickers.
func HistoryLabel(record jobsearch.HistoryRecord) string {
	return fmt.Sprintf("#%d %s (%d matches found)", record.ID, record.Query, record.JobCount)
}
