package client

import (
	"fmt"
	"strings"
)

// QuickPrompts are the canned questions offered on an empty conversation.
var QuickPrompts = []string{
	"Perso.ai는 어떤 서비스야?",
	"요금제가 어떻게 구성되어 있어?",
	"고객센터에 문의하려면 어떻게 해야 해?",
	"지원되는 언어가 뭐가 있어?",
}

// FormatBotContent renders an answer for display. Misses append the nearest
// question and its similarity when the server returned one.
func FormatBotContent(resp *ChatResponse) string {
	if resp.Found {
		return resp.Answer
	}
	if resp.SourceQuestion == nil {
		return resp.Answer
	}
	var b strings.Builder
	b.WriteString(resp.Answer)
	b.WriteString("\n(가장 가까운 질문: ")
	b.WriteString(*resp.SourceQuestion)
	if resp.Score != nil {
		fmt.Fprintf(&b, ", 유사도: %.3f", *resp.Score)
	}
	b.WriteString(")")
	return b.String()
}
