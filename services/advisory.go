package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/princinho/o3dstudio/logger"
	"github.com/princinho/o3dstudio/metrics"
	"github.com/princinho/o3dstudio/models"
)

const (
	promptTemplate = `Analyze this project description and provide technical advice regarding 3D modeling complexity and printing feasibility: "%s"`
	personaFormat  = "You are a professional 3D printing and modeling consultant for %s in %s."
)

// AdvisoryClient turns a free-text project description into structured advice.
type AdvisoryClient struct {
	generator   Generator
	credentials CredentialProvider
	model       string
	persona     string
	log         *logger.Logger
	metrics     *metrics.Metrics
}

type AdvisoryOptions struct {
	Model       string
	StudioName  string
	StudioCity  string
	Generator   Generator
	Credentials CredentialProvider
	Logger      *logger.Logger
	Metrics     *metrics.Metrics
}

func NewAdvisoryClient(opts AdvisoryOptions) *AdvisoryClient {
	if opts.Generator == nil {
		opts.Generator = GeminiGenerator{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Model == "" {
		opts.Model = "gemini-3-flash-preview"
	}
	if opts.StudioName == "" {
		opts.StudioName = "O3D Creative Services"
	}
	if opts.StudioCity == "" {
		opts.StudioCity = "London"
	}
	return &AdvisoryClient{
		generator:   opts.Generator,
		credentials: opts.Credentials,
		model:       opts.Model,
		persona:     fmt.Sprintf(personaFormat, opts.StudioName, opts.StudioCity),
		log:         opts.Logger,
		metrics:     opts.Metrics,
	}
}

// RequestAdvisory performs exactly one completion call for the description.
// It returns ErrEmptyInput, *UpstreamError or *MalformedResponseError on failure
// and never a partially filled result.
func (a *AdvisoryClient) RequestAdvisory(ctx context.Context, description string) (*models.AdvisoryResult, error) {
	if strings.TrimSpace(description) == "" {
		a.metrics.ObserveAdvisory(metrics.OutcomeEmpty, 0)
		return nil, ErrEmptyInput
	}

	start := time.Now()
	result, err := a.request(ctx, description)
	a.metrics.ObserveAdvisory(outcomeOf(err), time.Since(start))
	return result, err
}

func (a *AdvisoryClient) request(ctx context.Context, description string) (*models.AdvisoryResult, error) {
	if a.credentials == nil {
		return nil, &UpstreamError{Err: ErrMissingCredential}
	}
	apiKey, err := a.credentials.APIKey(ctx)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}

	text, err := a.generator.Generate(ctx, apiKey, a.model, BuildAdvisoryContents(description), a.generationConfig())
	if err != nil {
		a.log.Error(ctx, "advisory.upstream_failed", err)
		return nil, &UpstreamError{Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return nil, &UpstreamError{Err: ErrNoText}
	}

	advisory, err := ParseAdvisory(text)
	if err != nil {
		a.log.Error(a.log.WithField(ctx, "raw", text), "advisory.malformed_response", err)
		return nil, err
	}
	return advisory, nil
}

func BuildAdvisoryContents(description string) []*genai.Content {
	return genai.Text(fmt.Sprintf(promptTemplate, description))
}

func (a *AdvisoryClient) generationConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: a.persona}}},
		ResponseMIMEType:  "application/json",
		ResponseSchema:    AdvisorySchema(),
	}
}

// AdvisorySchema is the structured-output contract handed to the model.
func AdvisorySchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"analysis": {
				Type:        genai.TypeString,
				Description: "A professional design analysis and printing feasibility advice.",
			},
			"complexity": {
				Type:        genai.TypeString,
				Description: "Complexity level: Low, Medium, or High.",
			},
			"suggestedMaterials": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "List of recommended materials for this specific use case.",
			},
		},
		Required: []string{"analysis", "complexity", "suggestedMaterials"},
	}
}

type advisoryPayload struct {
	Analysis           *string    `json:"analysis"`
	Complexity         *string    `json:"complexity"`
	SuggestedMaterials *[]*string `json:"suggestedMaterials"`
}

// ParseAdvisory decodes the model output strictly: all three fields present
// with the right types, a known complexity, and nothing after the object.
func ParseAdvisory(raw string) (*models.AdvisoryResult, error) {
	malformed := func(err error) error {
		return &MalformedResponseError{Raw: raw, Err: err}
	}

	var p advisoryPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, malformed(fmt.Errorf("decode json: %w", err))
	}

	var missing []string
	if p.Analysis == nil {
		missing = append(missing, "analysis")
	}
	if p.Complexity == nil {
		missing = append(missing, "complexity")
	}
	if p.SuggestedMaterials == nil {
		missing = append(missing, "suggestedMaterials")
	}
	if len(missing) > 0 {
		return nil, malformed(fmt.Errorf("missing required fields: %s", strings.Join(missing, ", ")))
	}

	complexity, ok := models.ParseComplexity(*p.Complexity)
	if !ok {
		return nil, malformed(fmt.Errorf("unknown complexity %q", *p.Complexity))
	}

	materials := make([]string, 0, len(*p.SuggestedMaterials))
	for i, m := range *p.SuggestedMaterials {
		if m == nil {
			return nil, malformed(fmt.Errorf("suggestedMaterials[%d] is null", i))
		}
		materials = append(materials, *m)
	}

	return &models.AdvisoryResult{
		Analysis:           *p.Analysis,
		Complexity:         complexity,
		SuggestedMaterials: materials,
	}, nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrEmptyInput):
		return metrics.OutcomeEmpty
	case IsMalformed(err):
		return metrics.OutcomeMalformed
	default:
		return metrics.OutcomeUpstream
	}
}
