// Package gemini implements the budget advisor against the Gemini API.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	generativelanguage "google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/option"

	"foyer/internal/core"
)

const DefaultModel = "gemini-3-flash-preview"

type Client struct {
	service *generativelanguage.Service
	model   string
}

// NewClient builds a Gemini-backed advisor. An empty model falls back to
// DefaultModel.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is empty")
	}
	if model == "" {
		model = DefaultModel
	}

	service, err := generativelanguage.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create generative language service: %w", err)
	}

	return &Client{service: service, model: model}, nil
}

// Analyze sends the dataset to the model and returns its assessment in
// French.
func (c *Client) Analyze(ctx context.Context, input core.AdvisoryInput) (string, error) {
	prompt, err := buildPrompt(input)
	if err != nil {
		return "", fmt.Errorf("build prompt: %w", err)
	}

	req := &generativelanguage.GenerateContentRequest{
		Contents: []*generativelanguage.Content{
			{
				Role:  "user",
				Parts: []*generativelanguage.Part{{Text: prompt}},
			},
		},
	}

	resp, err := c.service.Models.GenerateContent("models/"+c.model, req).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := extractText(resp)
	if text == "" {
		return "", fmt.Errorf("empty response from model %s", c.model)
	}
	return text, nil
}

func buildPrompt(input core.AdvisoryInput) (string, error) {
	transactions, err := json.Marshal(input.Transactions)
	if err != nil {
		return "", err
	}
	budgets, err := json.Marshal(input.Budgets)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("En tant qu'expert en finances familiales à Madagascar, analyse ces données :\n")
	fmt.Fprintf(&b, "Transactions: %s\n", transactions)
	fmt.Fprintf(&b, "Budgets limites: %s\n", budgets)
	b.WriteString("La monnaie utilisée est l'Ariary (Ar).\n\n")
	b.WriteString("Fournis un résumé concis comprenant :\n")
	b.WriteString("1. Un bilan global (revenus vs dépenses).\n")
	b.WriteString("2. Les 3 catégories où la famille pourrait économiser.\n")
	b.WriteString("3. Une suggestion concrète pour réduire les dépenses le mois prochain.\n")
	b.WriteString("4. Un message d'encouragement personnalisé.\n")
	return b.String(), nil
}

func extractText(resp *generativelanguage.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var parts []string
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part != nil && part.Text != "" {
				parts = append(parts, part.Text)
			}
		}
		if len(parts) > 0 {
			break
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}
