// Package ai wraps the OpenAI API behind the three content helpers the
// site exposes: post drafting, moderation, and the coaching chat. A nil
// Client disables every helper, so the app runs without an API key.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ErrDisabled is returned by every helper when no API key is configured.
var ErrDisabled = errors.New("ai assist is not configured")

const (
	chatModel  = openai.GPT4oMini
	imageModel = openai.CreateImageModelDallE3
)

// Moderation is the classifier verdict for user-submitted content.
type Moderation struct {
	IsHarmful bool   `json:"isHarmful"`
	Reason    string `json:"reason"`
}

// Client is the assist entry point. The zero of *Client (nil) is a valid
// disabled client.
type Client struct {
	api *openai.Client
}

// New returns a Client, or nil when apiKey is empty.
func New(apiKey string) *Client {
	if apiKey == "" {
		return nil
	}
	return &Client{api: openai.NewClient(apiKey)}
}

// Enabled reports whether assist calls will be attempted.
func (c *Client) Enabled() bool {
	return c != nil
}

// GeneratePost drafts a short community post about the given topic.
func (c *Client) GeneratePost(ctx context.Context, topic string) (string, error) {
	if c == nil {
		return "", ErrDisabled
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: chatModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: "You write short, upbeat community posts for a youth robotics " +
					"academy. Keep posts under 120 words, first person, no hashtags.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: "Write a post about: " + topic,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("generate post: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("generate post: empty completion")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Moderate classifies user content before it is persisted. A harmful
// verdict blocks persistence with the returned reason.
func (c *Client) Moderate(ctx context.Context, text string) (Moderation, error) {
	if c == nil {
		return Moderation{}, ErrDisabled
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: chatModel,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: "You moderate content for a youth robotics community. Respond " +
					`with JSON: {"isHarmful": bool, "reason": string}. Flag harassment, ` +
					"hate speech, sexual content, and personal attacks. Reason must be " +
					"one short sentence, empty when not harmful.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
	})
	if err != nil {
		return Moderation{}, fmt.Errorf("moderate content: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Moderation{}, fmt.Errorf("moderate content: empty completion")
	}

	var verdict Moderation
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &verdict); err != nil {
		return Moderation{}, fmt.Errorf("moderate content: decode verdict: %w", err)
	}
	return verdict, nil
}

// GenerateImage produces an illustration for a post and returns its URL.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if c == nil {
		return "", ErrDisabled
	}

	resp, err := c.api.CreateImage(ctx, openai.ImageRequest{
		Model:  imageModel,
		Prompt: prompt,
		N:      1,
		Size:   openai.CreateImageSize1024x1024,
	})
	if err != nil {
		return "", fmt.Errorf("generate image: %w", err)
	}
	if len(resp.Data) == 0 {
		return "", fmt.Errorf("generate image: empty response")
	}
	return resp.Data[0].URL, nil
}

// ChatTurn is one prior exchange in the coaching conversation.
type ChatTurn struct {
	Role    string // "user" or "assistant"
	Content string
}

// CoachChat answers a robotics question in the voice of a friendly coach,
// addressing the user by name.
func (c *Client) CoachChat(ctx context.Context, userName string, history []ChatTurn, question string) (string, error) {
	if c == nil {
		return "", ErrDisabled
	}

	msgs := []openai.ChatCompletionMessage{
		{
			Role: openai.ChatMessageRoleSystem,
			Content: fmt.Sprintf("You are RoboCoach, a friendly robotics mentor for students. "+
				"Address the user as %s. Give practical, encouraging answers about robot "+
				"design, programming, and competition strategy. Keep answers under 200 words.",
				userName),
		},
	}
	for _, turn := range history {
		role := openai.ChatMessageRoleUser
		if turn.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: turn.Content})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: question,
	})

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       chatModel,
		Temperature: 0.5,
		Messages:    msgs,
	})
	if err != nil {
		return "", fmt.Errorf("coach chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("coach chat: empty completion")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
