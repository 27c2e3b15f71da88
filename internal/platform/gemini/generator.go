package gemini

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"text/template"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/prept/prept-api/internal/config"
	"github.com/prept/prept-api/internal/domain"
	"github.com/prept/prept-api/internal/generation"
	"github.com/prept/prept-api/internal/platform/logger"
)

//go:embed prompt.tmpl
var defaultPromptTemplate string

// Generator implements generation.Generator on top of Google's Gemini
// API. Calls are retried with exponential backoff and jitter for
// transient failures; safety blocks and unparseable responses are
// permanent and returned immediately.
type Generator struct {
	logger         *slog.Logger
	config         config.LLMConfig
	promptTemplate *template.Template
	client         *genai.Client
	model          string
}

// NewGenerator creates a Generator from the LLM configuration. The
// embedded prompt template is used unless PromptTemplatePath points at an
// override file.
func NewGenerator(ctx context.Context, log *slog.Logger, cfg config.LLMConfig) (*Generator, error) {
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	templateContent := defaultPromptTemplate
	if cfg.PromptTemplatePath != "" {
		data, err := os.ReadFile(cfg.PromptTemplatePath)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read prompt template from %s: %v",
				generation.ErrInvalidConfig, cfg.PromptTemplatePath, err)
		}
		templateContent = string(data)
	}

	promptTemplate, err := template.New("questions").Parse(templateContent)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v",
			generation.ErrInvalidConfig, err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return &Generator{
		logger:         log.With("component", "gemini_generator"),
		config:         cfg,
		promptTemplate: promptTemplate,
		client:         client,
		model:          cfg.ModelName,
	}, nil
}

// GenerateQuestions generates up to count interview questions for the
// given profile.
func (g *Generator) GenerateQuestions(
	ctx context.Context,
	profile *domain.Profile,
	count int,
) ([]*domain.Question, error) {
	if profile == nil {
		return nil, ErrNilProfile
	}
	if count <= 0 {
		return nil, ErrInvalidCount
	}

	log := logger.FromContextOrDefault(ctx, g.logger)

	prompt, err := g.buildPrompt(profile, count)
	if err != nil {
		return nil, err
	}

	response, err := g.callWithRetry(ctx, log, prompt)
	if err != nil {
		return nil, err
	}

	return g.parseResponse(log, response, profile.UserID)
}

// buildPrompt renders the prompt template for the given profile.
func (g *Generator) buildPrompt(profile *domain.Profile, count int) (string, error) {
	data := promptData{
		JobTitle:          profile.JobTitle,
		YearsOfExperience: profile.YearsOfExperience,
		KeySkills:         profile.KeySkills,
		ProfessionalGoal:  profile.ProfessionalGoal,
		QuestionCount:     count,
	}

	var buf bytes.Buffer
	if err := g.promptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}

	return buf.String(), nil
}

// callWithRetry calls the Gemini API, retrying transient failures with
// exponential backoff and jitter up to the configured retry budget.
func (g *Generator) callWithRetry(ctx context.Context, log *slog.Logger, prompt string) (*ResponseSchema, error) {
	maxRetries := g.config.MaxRetries
	if maxRetries < 0 {
		maxRetries = 3
	}

	baseDelaySeconds := g.config.RetryDelaySeconds
	if baseDelaySeconds < 1 {
		baseDelaySeconds = 2
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for attempt := 0; ; attempt++ {
		log.Info("calling Gemini API",
			"attempt", attempt+1,
			"max_attempts", maxRetries+1,
			"model", g.model)

		response, err := g.callOnce(ctx, prompt)
		if err == nil {
			return response, nil
		}

		log.Error("Gemini API call failed",
			"attempt", attempt+1,
			"error", err)

		// Permanent failures are never retried.
		if errors.Is(err, generation.ErrContentBlocked) || errors.Is(err, generation.ErrInvalidResponse) {
			return nil, err
		}

		if attempt >= maxRetries {
			return nil, fmt.Errorf("%w: exhausted %d attempts: %v",
				generation.ErrGenerationFailed, maxRetries+1, err)
		}

		// delay = baseDelay * 2^attempt * jitter in [0.5, 1.0)
		backoffSeconds := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		jitter := 0.5 + rng.Float64()*0.5
		delay := time.Duration(backoffSeconds * jitter * float64(time.Second))

		log.Info("retrying after backoff", "delay", delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
	}
}

// callOnce performs a single Gemini request and parses the JSON payload.
func (g *Generator) callOnce(ctx context.Context, prompt string) (*ResponseSchema, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return nil, fmt.Errorf("%w: response blocked by safety filters", generation.ErrContentBlocked)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("%w: empty response text", generation.ErrInvalidResponse)
	}

	var parsed ResponseSchema
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v", generation.ErrInvalidResponse, err)
	}

	return &parsed, nil
}

// parseResponse converts the API response into domain questions. Entries
// with invalid fields are dropped with a warning; if nothing valid
// remains the whole response is rejected.
func (g *Generator) parseResponse(log *slog.Logger, response *ResponseSchema, ownerID uuid.UUID) ([]*domain.Question, error) {
	if len(response.Questions) == 0 {
		return nil, fmt.Errorf("%w: no questions in response", generation.ErrInvalidResponse)
	}

	questions := make([]*domain.Question, 0, len(response.Questions))
	for i, schema := range response.Questions {
		question, err := domain.NewQuestion(
			ownerID,
			schema.Text,
			domain.QuestionCategory(schema.Category),
			domain.QuestionDifficulty(schema.Difficulty),
		)
		if err != nil {
			log.Warn("dropping invalid question from response",
				"index", i,
				"category", schema.Category,
				"difficulty", schema.Difficulty,
				"error", err)
			continue
		}

		question.Explanation = schema.Explanation
		question.Example = schema.Example
		for _, term := range schema.TechnicalTerms {
			if term.Term == "" {
				continue
			}
			question.TechnicalTerms = append(question.TechnicalTerms, domain.TechnicalTerm{
				Term:       term.Term,
				Definition: term.Definition,
			})
		}

		questions = append(questions, question)
	}

	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no valid questions in response", generation.ErrInvalidResponse)
	}

	log.Info("parsed generated questions",
		"received", len(response.Questions),
		"valid", len(questions))

	return questions, nil
}
