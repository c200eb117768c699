// Package concierge runs the storefront's chat concierge: one session per
// conversation, an optional LLM behind it, lead capture, and a transcript
// logged when the conversation ends.
package concierge

import (
	"context"
	"iter"

	"github.com/wichananm65/xinchao-storefront/internal/catalog"
)

// Chat is one LLM conversation. It keeps its own history.
type Chat interface {
	// SendMessageStream sends text and yields the reply in chunks. The
	// sequence is lazy: nothing is sent until it is ranged over.
	SendMessageStream(ctx context.Context, text string) iter.Seq2[string, error]
}

// Provider starts chats. StartChat returns nil when no credential is configured.
type Provider interface {
	StartChat(chatContext string) Chat
}

const generalContext = "総合案内。ベトナムの文化や雑貨全般についての相談。"

// ChatContext describes what the visitor is looking at; nil means a general consultation.
func ChatContext(product *catalog.Item) string {
	if product == nil {
		return generalContext
	}
	return product.ChatContext()
}

const systemInstruction = `あなたは「Xin Chào」の買い付けコンシェルジュ「リン」です。
ベトナム在住のオーナーに代わって、ベトナムの手仕事の雑貨を探しているお客様の相談に日本語で応じます。
押し売りはせず、用途・予算・期限・好みを会話の中で自然に聞き出してください。
作り手や産地のストーリーは、提供された商品情報の範囲で誠実に伝えてください。
返答は短く、親しみやすく。`

// SystemPrompt is the instruction given to the model, followed by the chat context.
func SystemPrompt(chatContext string) string {
	return systemInstruction + "\n\n【現在見ている商品の情報】\n" + chatContext
}
