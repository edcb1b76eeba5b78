// Package card builds the adaptive-card document posted to the chat
// webhook after a run. Nodes form a closed set of variants; the wire JSON
// shape is produced by Card.Payload, never by hand-built maps elsewhere.
package card

import "strings"

const (
	ColorGood      = "good"
	ColorAccent    = "accent"
	ColorAttention = "attention"

	SizeSmall  = "small"
	SizeLarge  = "large"
	WeightBold = "bolder"
)

// Node is one visual element of a card body.
type Node interface {
	// Wire renders the node into the JSON shape the chat platform expects.
	Wire() map[string]any
}

type TextBlock struct {
	Text    string
	Size    string
	Weight  string
	Color   string
	Spacing string
	Wrap    bool
}

func (t TextBlock) Wire() map[string]any {
	m := map[string]any{"type": "TextBlock", "text": t.Text}
	if t.Size != "" {
		m["size"] = t.Size
	}
	if t.Weight != "" {
		m["weight"] = t.Weight
	}
	if t.Color != "" {
		m["color"] = t.Color
	}
	if t.Spacing != "" {
		m["spacing"] = t.Spacing
	}
	if t.Wrap {
		m["wrap"] = true
	}
	return m
}

type Container struct {
	Style string
	Items []Node
}

func (c Container) Wire() map[string]any {
	m := map[string]any{"type": "Container", "items": wireItems(c.Items)}
	if c.Style != "" {
		m["style"] = c.Style
	}
	return m
}

type Column struct {
	Width string
	Items []Node
}

func (c Column) Wire() map[string]any {
	m := map[string]any{"type": "Column", "items": wireItems(c.Items)}
	if c.Width != "" {
		m["width"] = c.Width
	}
	return m
}

type ColumnSet struct {
	Columns []Column
}

func (c ColumnSet) Wire() map[string]any {
	cols := make([]map[string]any, 0, len(c.Columns))
	for _, col := range c.Columns {
		cols = append(cols, col.Wire())
	}
	return map[string]any{"type": "ColumnSet", "columns": cols}
}

func wireItems(items []Node) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		out = append(out, item.Wire())
	}
	return out
}

// Recipient identifies one person to ping in a notification.
type Recipient struct {
	Name string
	ID   string
}

// Mention is one resolved mention entity: the placeholder text substituted
// into a TextBlock plus the identity the chat platform resolves it to.
type Mention struct {
	Text string
	Name string
	ID   string
}

func (m Mention) wire() map[string]any {
	return map[string]any{
		"type": "mention",
		"text": m.Text,
		"mentioned": map[string]any{
			"id":   m.ID,
			"name": m.Name,
		},
	}
}

// Card is the top-level document wrapping a body, mention entities and the
// preview summary shown in the channel.
type Card struct {
	Body     []Node
	Mentions []Mention
	Summary  string
}

// Assemble wraps a finished body into the top-level card. Width is always
// full-bleed.
func Assemble(body []Node, mentions []Mention, summary string) Card {
	return Card{Body: body, Mentions: mentions, Summary: summary}
}

// Payload renders the complete webhook request body.
func (c Card) Payload() map[string]any {
	msteams := map[string]any{"width": "Full"}
	if len(c.Mentions) > 0 {
		entities := make([]map[string]any, 0, len(c.Mentions))
		for _, m := range c.Mentions {
			entities = append(entities, m.wire())
		}
		msteams["entities"] = entities
	}
	return map[string]any{
		"type":    "message",
		"summary": c.Summary,
		"attachments": []map[string]any{
			{
				"contentType": "application/vnd.microsoft.card.adaptive",
				"content": map[string]any{
					"type":    "AdaptiveCard",
					"version": "1.2",
					"body":    wireItems(c.Body),
					"msteams": msteams,
				},
			},
		},
	}
}

// StatusColor maps a run status to its display color. Anything that is not
// exactly "success" or "skipped", including the empty string, is an error
// state and renders as attention.
func StatusColor(status string) string {
	switch status {
	case "success":
		return ColorGood
	case "skipped":
		return ColorAccent
	}
	return ColorAttention
}

// cellColor colors status-like table cells. Unlike StatusColor, values that
// are not status-like at all keep the neutral default color.
func cellColor(v string) string {
	switch v {
	case "success", "completed":
		return ColorGood
	case "skipped":
		return ColorAccent
	case "failed", "errored":
		return ColorAttention
	}
	return ""
}

// BuildStatusBanner produces the headline container: the run name in bold
// small text, the upper-cased status in large bold colored text, then any
// extra items appended as siblings.
func BuildStatusBanner(taskName, status string, extra ...Node) Node {
	items := []Node{
		TextBlock{Text: taskName, Size: SizeSmall, Weight: WeightBold},
		TextBlock{
			Text:   strings.ToUpper(status),
			Size:   SizeLarge,
			Weight: WeightBold,
			Color:  StatusColor(status),
		},
	}
	items = append(items, extra...)
	return Container{Items: items}
}

// BuildColumnSet renders rows as one Column per requested column name, in
// the caller-given order. Each column holds a bold header followed by one
// cell per row, preserving row order. The literal "NA" renders as "-".
func BuildColumnSet(rows []map[string]string, columns []string) Node {
	cs := ColumnSet{Columns: make([]Column, 0, len(columns))}
	for _, col := range columns {
		items := make([]Node, 0, len(rows)+1)
		items = append(items, TextBlock{Text: col, Weight: WeightBold, Wrap: true})
		for _, row := range rows {
			v := row[col]
			text := v
			if text == "NA" {
				text = "-"
			}
			items = append(items, TextBlock{Text: text, Color: cellColor(v), Wrap: true})
		}
		cs.Columns = append(cs.Columns, Column{Width: "auto", Items: items})
	}
	return cs
}

// BuildErrorBlock wraps an error message for display. An empty message
// still yields a valid block.
func BuildErrorBlock(message string) Node {
	return TextBlock{Text: message, Color: ColorAttention, Spacing: "medium", Wrap: true}
}

// BuildMentions creates one mention entity per recipient.
func BuildMentions(recipients []Recipient) []Mention {
	mentions := make([]Mention, 0, len(recipients))
	for _, r := range recipients {
		mentions = append(mentions, Mention{
			Text: "<at>" + r.Name + "</at>",
			Name: r.Name,
			ID:   r.ID,
		})
	}
	return mentions
}

// BuildPingBlock renders the mention placeholders as one comma-separated
// line. Callers only emit it when there is someone to ping.
func BuildPingBlock(mentions []Mention) Node {
	parts := make([]string, 0, len(mentions))
	for _, m := range mentions {
		parts = append(parts, m.Text)
	}
	return TextBlock{Text: strings.Join(parts, ", "), Wrap: true}
}
