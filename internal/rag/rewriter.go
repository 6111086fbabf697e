package rag

import (
	"context"
	"strings"
	"unicode/utf8"
)

// RewriteInstruction is the fixed system prompt sent with every rewrite.
const RewriteInstruction = `너는 Perso.ai 서비스의 FAQ 검색을 돕는 질의 정규화기다.
사용자의 입력을 Perso.ai 서비스에 대한 하나의 완전한 FAQ 형식 질문으로 다시 써라.
- 사실, 숫자, 이메일, URL, 전화번호, 기능을 절대 지어내지 마라.
- 문맥상 명백한 지시어만 서비스 이름(Perso.ai)으로 채워라.
- 답변은 쓰지 말고, 질문 문장 하나만 출력하라.`

const (
	minRewriteInputRunes  = 2
	minRewriteOutputRunes = 3
)

// Rewriter normalizes a user utterance into a canonical FAQ question.
type Rewriter struct {
	Completer Completer
}

// Rewrite returns a one-sentence FAQ-style question for userText. Inputs
// shorter than two runes are returned unchanged without an upstream call,
// and degenerate completions (empty or shorter than three runes) fall back
// to userText. Upstream failures are returned as *UpstreamError.
func (r Rewriter) Rewrite(ctx context.Context, userText string) (string, error) {
	if utf8.RuneCountInString(userText) < minRewriteInputRunes {
		return userText, nil
	}
	out, err := r.Completer.Complete(ctx, CompletionRequest{
		System:      RewriteInstruction,
		User:        userText,
		Temperature: 0,
	})
	if err != nil {
		return "", upstream(StageRewrite, err)
	}
	out = strings.TrimSpace(out)
	if utf8.RuneCountInString(out) < minRewriteOutputRunes {
		return userText, nil
	}
	return out, nil
}
