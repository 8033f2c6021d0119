package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/siteforge/internal/cost"
	"github.com/sells-group/siteforge/internal/model"
	"github.com/sells-group/siteforge/internal/resilience"
	"github.com/sells-group/siteforge/pkg/anthropic"
)

const systemPrompt = `You write concise, friendly website copy for small businesses.
Reply with a single JSON object and nothing else, using exactly these string keys:
"headline" (max 120 chars), "tagline" (max 160), "about" (max 2000), "ctaText" (max 40),
"servicesIntro" (max 600), "seoTitle" (max 70), "seoDescription" (max 170).
Never invent prices, awards, phone numbers or addresses.`

// AnthropicGenerator writes copy with a Claude model. Each field of the
// model's reply is checked against GeneratedContent's validation rules;
// fields that are missing, mistyped or invalid are filled from the template.
type AnthropicGenerator struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	policy    resilience.Policy
	breaker   *resilience.Breaker
	costs     *cost.Calculator
	validate  *validator.Validate
}

// AnthropicOption configures an AnthropicGenerator.
type AnthropicOption func(*AnthropicGenerator)

// WithModel overrides the model ID.
func WithModel(m string) AnthropicOption {
	return func(g *AnthropicGenerator) {
		if m != "" {
			g.model = m
		}
	}
}

// WithMaxTokens overrides the response token limit.
func WithMaxTokens(n int64) AnthropicOption {
	return func(g *AnthropicGenerator) {
		if n > 0 {
			g.maxTokens = n
		}
	}
}

// WithRetryPolicy overrides the retry policy.
func WithRetryPolicy(p resilience.Policy) AnthropicOption {
	return func(g *AnthropicGenerator) { g.policy = p }
}

// WithBreaker overrides the circuit breaker.
func WithBreaker(b *resilience.Breaker) AnthropicOption {
	return func(g *AnthropicGenerator) { g.breaker = b }
}

// WithCostTracker records token usage and price of every reply on c.
func WithCostTracker(c *cost.Calculator) AnthropicOption {
	return func(g *AnthropicGenerator) { g.costs = c }
}

// NewAnthropicGenerator creates a generator that calls client.
func NewAnthropicGenerator(client anthropic.Client, opts ...AnthropicOption) *AnthropicGenerator {
	g := &AnthropicGenerator{
		client:    client,
		model:     anthropic.DefaultModel,
		maxTokens: 1500,
		policy:    resilience.DefaultPolicy("anthropic.generate"),
		breaker:   resilience.NewBreaker("anthropic", 5, 0),
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Generate implements Generator.
func (g *AnthropicGenerator) Generate(ctx context.Context, in Input) (*model.GeneratedContent, error) {
	prompt, err := json.Marshal(in)
	if err != nil {
		return nil, eris.Wrap(err, "generator: marshal input")
	}
	req := anthropic.MessageRequest{
		Model:     g.model,
		MaxTokens: g.maxTokens,
		System:    anthropic.CachedSystem(systemPrompt),
		Messages: []anthropic.Message{{
			Role:    "user",
			Content: "Write website copy for this business:\n" + string(prompt),
		}},
	}

	resp, err := resilience.Retry(ctx, g.policy, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return resilience.Call(ctx, g.breaker, func(ctx context.Context) (*anthropic.MessageResponse, error) {
			return g.client.CreateMessage(ctx, req)
		})
	})
	if err != nil {
		return nil, eris.Wrap(err, "generator: create message")
	}
	if g.costs != nil {
		usd := g.costs.Record(g.model, resp.Usage)
		zap.L().Debug("generator: usage recorded",
			zap.String("model", g.model),
			zap.Float64("cost_usd", usd),
		)
	}

	out, err := g.decode(resp.Joined(), in)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// decode maps the model's JSON reply onto GeneratedContent field by field.
func (g *AnthropicGenerator) decode(text string, in Input) (*model.GeneratedContent, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleanJSON(text)), &raw); err != nil {
		return nil, eris.Wrap(err, "generator: parse model reply")
	}

	fallback := templateContent(in)
	out := &model.GeneratedContent{}
	fields := []struct {
		key string
		dst *string
		def string
	}{
		{"headline", &out.Headline, fallback.Headline},
		{"tagline", &out.Tagline, fallback.Tagline},
		{"about", &out.About, fallback.About},
		{"ctaText", &out.CTAText, fallback.CTAText},
		{"servicesIntro", &out.ServicesIntro, fallback.ServicesIntro},
		{"seoTitle", &out.SEOTitle, fallback.SEOTitle},
		{"seoDescription", &out.SEODescription, fallback.SEODescription},
	}

	var defaulted []string
	for _, f := range fields {
		var s string
		if v, ok := raw[f.key]; ok && json.Unmarshal(v, &s) == nil {
			*f.dst = strings.TrimSpace(s)
			continue
		}
		*f.dst = f.def
		defaulted = append(defaulted, f.key)
	}

	// Replace anything that fails the struct's validation rules.
	if err := g.validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, eris.Wrap(err, "generator: validate content")
		}
		byField := map[string]int{}
		for i, f := range fields {
			byField[fieldName(f.key)] = i
		}
		for _, fe := range verrs {
			if i, ok := byField[fe.StructField()]; ok {
				*fields[i].dst = fields[i].def
				defaulted = append(defaulted, fmt.Sprintf("%s(%s)", fields[i].key, fe.Tag()))
			}
		}
	}

	if len(defaulted) > 0 {
		zap.L().Info("generator: defaulted fields from template",
			zap.String("name", in.Name),
			zap.Strings("fields", defaulted),
		)
	}
	return out, nil
}

// fieldName maps a JSON key to its GeneratedContent struct field.
func fieldName(key string) string {
	switch key {
	case "ctaText":
		return "CTAText"
	case "seoTitle":
		return "SEOTitle"
	case "seoDescription":
		return "SEODescription"
	}
	return strings.ToUpper(key[:1]) + key[1:]
}

// cleanJSON extracts a JSON object from text that may be wrapped in markdown
// code fences or surrounding prose.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if i := strings.LastIndex(text, "```"); i >= 0 {
			text = text[:i]
		}
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}
