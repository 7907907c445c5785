// Package generation produces policy document text through a chat
// completion provider.
package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const systemPrompt = "You are a professional policy writer with expertise in creating clear, comprehensive, and compliant policies. Format the response in markdown with appropriate headings, sections, and bullet points."

// ChatCompleter is the slice of the OpenAI client the generator uses.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ScrapedData holds optional company information gathered from the
// company's website.
type ScrapedData struct {
	About    string `json:"about,omitempty"`
	Contact  string `json:"contact,omitempty"`
	Privacy  string `json:"privacy,omitempty"`
	Services string `json:"services,omitempty"`
}

// Input describes the policy to generate.
type Input struct {
	PolicyTypeName         string       `json:"policy_type_name"`
	CompanyName            string       `json:"company_name"`
	Website                string       `json:"website"`
	ComplianceRequirements []string     `json:"compliance_requirements"`
	Frameworks             []string     `json:"frameworks"`
	Regulations            []string     `json:"regulations"`
	EffectiveDate          string       `json:"effective_date"`
	ScrapedData            *ScrapedData `json:"scraped_data,omitempty"`
}

// Generator calls the completion provider with the policy-writer persona.
type Generator struct {
	client ChatCompleter
	model  string
}

// NewGenerator creates a generator using the given API key and model.
func NewGenerator(apiKey, model string) *Generator {
	return &Generator{client: openai.NewClient(apiKey), model: model}
}

// NewGeneratorWithClient creates a generator with a custom client.
func NewGeneratorWithClient(client ChatCompleter, model string) *Generator {
	return &Generator{client: client, model: model}
}

// Generate produces a policy document for the input.
func (g *Generator) Generate(ctx context.Context, input Input) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: 0.7,
		MaxTokens:   2000,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(input)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("generate policy: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", errors.New("generate policy: empty completion")
	}
	return resp.Choices[0].Message.Content, nil
}

// BuildPrompt renders the structured generation prompt.
func BuildPrompt(input Input) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate a comprehensive %s policy for %s that includes:\n\n", input.PolicyTypeName, input.CompanyName)
	b.WriteString("1. Introduction and Purpose\n")
	b.WriteString("2. Scope and Applicability\n")
	b.WriteString("3. Data Collection and Usage\n")
	b.WriteString("4. User Rights and Controls\n")
	b.WriteString("5. Security Measures\n")
	b.WriteString("6. Compliance and Legal Requirements\n")
	b.WriteString("7. Updates and Changes\n")
	b.WriteString("8. Contact Information\n\n")

	b.WriteString("Company Details:\n")
	fmt.Fprintf(&b, "- Website: %s\n", input.Website)
	fmt.Fprintf(&b, "- Compliance Requirements: %s\n", strings.Join(input.ComplianceRequirements, ", "))
	fmt.Fprintf(&b, "- Frameworks: %s\n", strings.Join(input.Frameworks, ", "))
	fmt.Fprintf(&b, "- Regulations: %s\n", strings.Join(input.Regulations, ", "))
	fmt.Fprintf(&b, "- Effective Date: %s\n", input.EffectiveDate)

	if sd := input.ScrapedData; sd != nil {
		b.WriteString("\nCompany Information:\n")
		if sd.About != "" {
			fmt.Fprintf(&b, "About: %s\n", sd.About)
		}
		if sd.Contact != "" {
			fmt.Fprintf(&b, "Contact: %s\n", sd.Contact)
		}
		if sd.Privacy != "" {
			fmt.Fprintf(&b, "Privacy: %s\n", sd.Privacy)
		}
		if sd.Services != "" {
			fmt.Fprintf(&b, "Services: %s\n", sd.Services)
		}
	}

	return b.String()
}
