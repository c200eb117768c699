package transcript

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrNotFound = errors.New("chat log not found")

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Transcript is one concierge conversation. ProductName is nil for a general
// consultation. Timestamp is in epoch milliseconds.
type Transcript struct {
	ID          string    `json:"id"`
	Timestamp   int64     `json:"timestamp"`
	ProductName *string   `json:"productName"`
	Messages    []Message `json:"messages"`
	LeadName    string    `json:"leadName,omitempty"`
	LeadContact string    `json:"leadContact,omitempty"`
}

func (t Transcript) EntityID() string { return t.ID }

// Matches reports whether term occurs, case-insensitively, in the product
// name, the lead fields or any message. An empty term matches everything.
func (t Transcript) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	contains := func(s string) bool { return strings.Contains(strings.ToLower(s), term) }

	if t.ProductName != nil && contains(*t.ProductName) {
		return true
	}
	if contains(t.LeadName) || contains(t.LeadContact) {
		return true
	}
	for _, m := range t.Messages {
		if contains(m.Content) {
			return true
		}
	}
	return false
}

var jst = time.FixedZone("JST", 9*60*60)

// Export renders the plain-text file offered by the admin chat-log viewer.
func (t Transcript) Export() string {
	product := "なし（総合相談）"
	if t.ProductName != nil && *t.ProductName != "" {
		product = *t.ProductName
	}

	lines := []string{
		"【Xin Chào チャットログ】",
		"日時: " + time.UnixMilli(t.Timestamp).In(jst).Format("2006/01/02 15:04"),
		"商品: " + product,
	}
	if t.LeadName != "" {
		lines = append(lines, "名前: "+t.LeadName)
	}
	if t.LeadContact != "" {
		lines = append(lines, "連絡先: "+t.LeadContact)
	}
	lines = append(lines, "", "【会話ログ】")
	for _, m := range t.Messages {
		lines = append(lines, fmt.Sprintf("%s: %s", m.Role.Label(), m.Content))
	}
	return strings.Join(lines, "\n")
}

// ExportFilename is the download name of an exported transcript.
func (t Transcript) ExportFilename() string {
	return fmt.Sprintf("chat-log-%d.txt", t.Timestamp)
}

// Label is the speaker name shown in exports.
func (r Role) Label() string {
	if r == RoleUser {
		return "ユーザー"
	}
	return "リン"
}
