package concierge

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/wichananm65/xinchao-storefront/internal/apperr"
	"github.com/wichananm65/xinchao-storefront/internal/catalog"
	"github.com/wichananm65/xinchao-storefront/internal/transcript"
)

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrBusy         = errors.New("a reply is still streaming")
	ErrClosed       = errors.New("chat session is closed")
)

const (
	greeting = "Xin chào。リンです。ベトナム在住オーナーの買い付け相談を、会話しながら一緒に進めましょう。まず「用途・予算・好み」を軽く教えてくださいね。"
	apology  = "すみません、少し考え込んでしまいました。もう一度お伝えいただけますか？"
)

var offlineReply = strings.Join([]string{
	"ありがとう。いまチャットAIの接続が未設定のため、まずは私の方で買い付け相談の要点だけ一緒に整理します。",
	"",
	"次の5つを教えてください：",
	"1) 用途（自分用/ギフト）",
	"2) 探したいカテゴリ（食器/ラタン/刺繍/インテリアなど）",
	"3) 予算感（だいたいでOK）",
	"4) 期限（いつ頃までに欲しいか）",
	"5) 好み（色/素材/雰囲気）＆NG",
	"",
	"最後に、連絡先（Instagram/LINE/メール等）も教えてください。内容をまとめて買い付け候補を探します。",
}, "\n")

// Logger persists finished conversations.
type Logger interface {
	Log(ctx context.Context, t transcript.Transcript) (transcript.Transcript, error)
}

// Session is one conversation. It opens with the greeting and is logged once,
// at the first failed reply or when it is closed, whichever comes first.
type Session struct {
	ID      string
	Visitor string
	Product *catalog.Item

	chat   Chat
	leads  *LeadStore
	logger Logger
	rec    apperr.Recorder

	mu       sync.Mutex
	messages []transcript.Message
	busy     bool
	closed   bool
	logged   bool
	lastSeen time.Time
}

// Online reports whether replies come from the LLM rather than the offline script.
func (s *Session) Online() bool {
	return s.chat != nil
}

func (s *Session) Messages() []transcript.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]transcript.Message(nil), s.messages...)
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Send appends the visitor's message and produces the reply, handing every
// chunk to onChunk as it arrives. A failed reply is replaced by an apology
// and the conversation is logged, but the session stays open so the visitor
// can send again. The returned error is only for rejected input.
func (s *Session) Send(ctx context.Context, text string, onChunk func(string)) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyMessage
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", ErrClosed
	}
	if s.busy {
		s.mu.Unlock()
		return "", ErrBusy
	}
	s.busy = true
	s.messages = append(s.messages, transcript.Message{Role: transcript.RoleUser, Content: text})
	s.mu.Unlock()

	if s.chat == nil {
		onChunk(offlineReply)
		s.finish(offlineReply)
		return offlineReply, nil
	}

	var reply strings.Builder
	for chunk, err := range s.chat.SendMessageStream(ctx, text) {
		if err != nil {
			onChunk(apology)
			s.finish(apology)
			s.persist(ctx)
			return apology, nil
		}
		reply.WriteString(chunk)
		onChunk(chunk)
	}
	s.finish(reply.String())
	return reply.String(), nil
}

func (s *Session) finish(reply string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, transcript.Message{Role: transcript.RoleAssistant, Content: reply})
	s.busy = false
}

// close ends the session and logs it unless a failed reply already did.
func (s *Session) close(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	s.persist(ctx)
}

// persist logs the conversation unless only the greeting exists. It runs once
// per session.
func (s *Session) persist(ctx context.Context) {
	s.mu.Lock()
	if s.logged {
		s.mu.Unlock()
		return
	}
	s.logged = true
	messages := append([]transcript.Message(nil), s.messages...)
	s.mu.Unlock()

	if len(messages) <= 1 {
		return
	}
	lead := s.leads.Get(ctx, s.Visitor)
	t := transcript.Transcript{
		Messages:    messages,
		LeadName:    lead.Name,
		LeadContact: lead.Contact,
	}
	if s.Product != nil {
		name := s.Product.Name
		t.ProductName = &name
	}
	if _, err := s.logger.Log(ctx, t); err != nil {
		s.rec.Record(ctx, apperr.New(apperr.RemoteWriteFailed, "log", "chat_logs", err))
	}
}

// RequestSummary is the copyable purchase request: lead details, the viewed
// product and the conversation so far.
func (s *Session) RequestSummary(ctx context.Context) string {
	lead := s.leads.Get(ctx, s.Visitor)
	orUnset := func(v string) string {
		if v == "" {
			return "（未入力）"
		}
		return v
	}

	product := "【閲覧中の商品】なし（総合相談）"
	if s.Product != nil {
		product = fmt.Sprintf("【閲覧中の商品】%s（¥%s）", s.Product.Name, groupThousands(s.Product.Price))
	}

	lines := []string{
		"【Xin Chào 買い付け相談】",
		"名前: " + orUnset(lead.Name),
		"連絡先: " + orUnset(lead.Contact),
		"",
		product,
		"",
		"【会話ログ】",
	}
	for _, m := range s.Messages() {
		speaker := "リン"
		if m.Role == transcript.RoleUser {
			speaker = "あなた"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", speaker, m.Content))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func groupThousands(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
