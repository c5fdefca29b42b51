package gemini

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/pathfinder/internal/logger"
)

const (
	DefaultSystemPrompt = "You are a helpful job search assistant."
	greetingRequest     = "Generate a warm, professional, and concise greeting. Introduce yourself as Pathfinder and ask what kind of role the user is looking for."
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
}

// Greeter asks the model for the opening message of a conversation.
type Greeter struct {
	generator contentGenerator
	system    string
	logger    *zap.Logger
}

func NewGreeter(generator contentGenerator, system string, log *zap.Logger) *Greeter {
	if system = strings.TrimSpace(system); system == "" {
		system = DefaultSystemPrompt
	}

	return &Greeter{
		generator: generator,
		system:    system,
		logger:    logger.WithFields(log),
	}
}

func (g *Greeter) Greeting(ctx context.Context) (string, error) {
	text, err := g.generator.GenerateContent(ctx, g.system, greetingRequest)
	if err != nil {
		return "", err
	}

	g.logger.Debug("generated greeting",
		zap.Int("length", utf8.RuneCountInString(text)),
		zap.String("preview", logger.TruncateForLog(text, 60)),
	)

	return text, nil
}
