package jobsearch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const (
	ParseResumePath = "/parse-resume"
	PDFMimeType     = "application/pdf"
	binaryMimeType  = "application/octet-stream"
)

// Document is a resume file picked by the user.
type Document struct {
	Name    string
	Content []byte
	// Mime is the content type detected from Content.
	Mime string
}

func (d *Document) MIMEType() string {
	if d.Mime == "" {
		return binaryMimeType
	}
	return d.Mime
}

// IsPDF reports whether the document is a PDF by both name and content type.
func (d *Document) IsPDF() bool {
	if d == nil {
		return false
	}
	return strings.EqualFold(filepath.Ext(d.Name), ".pdf") && d.Mime == PDFMimeType
}

type parseResponse struct {
	Text string `json:"text"`
}

// ParseDocument uploads the document and returns the extracted text.
func (c *Client) ParseDocument(ctx context.Context, doc *Document) (string, error) {
	if doc == nil || len(doc.Content) == 0 {
		return "", fmt.Errorf("%w: empty document", ErrDocumentUnreadable)
	}

	var response parseResponse
	if err := c.postFile(ctx, c.APIURL+ParseResumePath, doc, &response); err != nil {
		return "", fmt.Errorf("%w: %w", ErrDocumentUnreadable, err)
	}

	text := strings.TrimSpace(response.Text)
	if text == "" {
		return "", fmt.Errorf("%w: no text extracted from %s", ErrDocumentUnreadable, doc.Name)
	}

	c.logger.Debug("parsed resume", zap.String("file", doc.Name), zap.Int("text_length", len(text)))

	return text, nil
}
