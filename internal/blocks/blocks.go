// Package blocks builds the Slack Block Kit JSON the chat gateway posts.
// Only the block kinds the bot actually uses are modeled.
package blocks

import (
	"github.com/quidlabs/quid-intent/internal/models"
)

type Block struct {
	Type      string     `json:"type"`
	Elements  []any      `json:"elements,omitempty"`
	Text      *Markdown  `json:"text,omitempty"`
	Accessory *Accessory `json:"accessory,omitempty"`
}

// TextElement is the leaf text node inside rich_text sections.
type TextElement struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Section is a rich_text_section element.
type Section struct {
	Type     string `json:"type"`
	Elements []any  `json:"elements"`
}

// BulletList is a rich_text_list element with bullet styling.
type BulletList struct {
	Type     string `json:"type"`
	Style    string `json:"style"`
	Indent   int    `json:"indent"`
	Border   int    `json:"border"`
	Elements []any  `json:"elements"`
}

type PlainText struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji"`
}

type Markdown struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type Button struct {
	Type     string    `json:"type"`
	Text     PlainText `json:"text"`
	Value    string    `json:"value,omitempty"`
	ActionID string    `json:"action_id,omitempty"`
	URL      string    `json:"url,omitempty"`
}

type Accessory struct {
	Type     string   `json:"type"`
	Options  []Option `json:"options,omitempty"`
	ActionID string   `json:"action_id,omitempty"`
}

type Option struct {
	Text  Markdown `json:"text"`
	Value string   `json:"value"`
}

// Modal is the view payload for views_open.
type Modal struct {
	Type       string    `json:"type"`
	CallbackID string    `json:"callback_id"`
	Title      PlainText `json:"title"`
	Submit     PlainText `json:"submit"`
	Close      PlainText `json:"close"`
	Blocks     []Block   `json:"blocks"`
}

func Divider() Block {
	return Block{Type: "divider"}
}

func plainSection(text string) Section {
	return Section{
		Type:     "rich_text_section",
		Elements: []any{TextElement{Type: "text", Text: text}},
	}
}

// RichText wraps a single line of text in a rich_text block.
func RichText(text string) Block {
	return Block{
		Type:     "rich_text",
		Elements: []any{plainSection(text)},
	}
}

func plainText(text string) PlainText {
	return PlainText{Type: "plain_text", Text: text, Emoji: true}
}

// feedbackActions is the helpful / not-helpful button row appended to
// every formatted reply.
func feedbackActions() Block {
	return Block{
		Type: "actions",
		Elements: []any{
			Button{Type: "button", Text: plainText("helpful"), Value: "feedback", ActionID: models.FeedbackHelpful},
			Button{Type: "button", Text: plainText("not-helpful"), Value: "feedback", ActionID: models.FeedbackNotHelpful},
		},
	}
}

// RenderReply turns a decoded FormattedReply into the divider-wrapped
// block layout: summary text, an optional Details bullet list, and the
// feedback button row.
func RenderReply(reply *models.FormattedReply) []Block {
	out := []Block{Divider()}

	if reply.PlainText != "" {
		out = append(out, RichText(reply.PlainText))
	}

	if len(reply.List) > 0 {
		items := make([]any, 0, len(reply.List))
		for _, item := range reply.List {
			items = append(items, plainSection(item))
		}
		out = append(out, Block{
			Type: "rich_text",
			Elements: []any{
				plainSection("Details:"),
				BulletList{Type: "rich_text_list", Style: "bullet", Elements: items},
			},
		})
	}

	out = append(out, feedbackActions(), Divider())
	return out
}

// FallbackReply is rendered when the formatting response can't be
// decoded. Raw LLM output is never shown to the user.
func FallbackReply(message string) []Block {
	return []Block{Divider(), RichText(message), Divider()}
}

// LoadingMessage is shown while the pipeline runs.
const LoadingMessage = "Quid is working on your request..."

// LoadingReply is published for the gateway to post while the pipeline runs.
func LoadingReply() []Block {
	return FallbackReply(LoadingMessage)
}

// LoginReply prompts an unauthenticated user to log in.
func LoginReply(loginURL string) []Block {
	return []Block{
		{Type: "section", Text: &Markdown{Type: "mrkdwn", Text: "Please log in to use this bot."}},
		{Type: "actions", Elements: []any{
			Button{Type: "button", Text: plainText("Log in"), URL: loginURL, ActionID: "login"},
		}},
	}
}

// NotHelpfulModal is the feedback modal opened on a not-helpful press.
func NotHelpfulModal() Modal {
	return Modal{
		Type:       "modal",
		CallbackID: "not_helpful_modal",
		Title:      plainText("Quid"),
		Submit:     plainText("Submit"),
		Close:      plainText("Cancel"),
		Blocks: []Block{
			{
				Type: "section",
				Text: &Markdown{Type: "mrkdwn", Text: "What went wrong with this answer?"},
				Accessory: &Accessory{
					Type:     "checkboxes",
					ActionID: "checkboxes-action",
					Options: []Option{
						{Text: Markdown{Type: "mrkdwn", Text: "*Not accurate*"}, Value: "not-accurate"},
						{Text: Markdown{Type: "mrkdwn", Text: "*Missing information*"}, Value: "missing-info"},
						{Text: Markdown{Type: "mrkdwn", Text: "*Hard to read*"}, Value: "hard-to-read"},
					},
				},
			},
		},
	}
}
