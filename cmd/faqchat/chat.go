package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tbourn/faq-chat-backend/internal/client"
	"github.com/tbourn/faq-chat-backend/internal/session"
)

func newChatCmd() *cobra.Command {
	var server, dir, user string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Terminal chat client with locally stored sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				base, err := os.UserConfigDir()
				if err != nil {
					base = "."
				}
				dir = filepath.Join(base, "faqchat")
			}
			mgr := session.NewManager(session.NewFileStore(dir), log.Logger)
			mgr.Open(cmd.Context())

			api := client.New(server)
			api.UserID = user
			conv := &client.Conversation{Sessions: mgr, API: api}
			return runChat(cmd.Context(), os.Stdin, os.Stdout, conv)
		},
	}
	f := cmd.Flags()
	f.StringVar(&server, "server", "http://localhost:8080", "API base URL")
	f.StringVar(&dir, "dir", "", "session storage directory (default: user config dir)")
	f.StringVar(&user, "user", "", "X-User-ID sent with each request")
	return cmd
}

const chatHelp = `/new 새 대화   /sessions 목록   /open N 전환   /quick [N] 추천 질문   /quit 종료`

// runChat reads lines from in; slash commands manage sessions, anything else
// is sent as a question.
func runChat(ctx context.Context, in io.Reader, out io.Writer, conv *client.Conversation) error {
	mgr := conv.Sessions
	fmt.Fprintln(out, chatHelp)
	if act, ok := mgr.Active(); ok {
		printSession(out, act)
	} else {
		printQuick(out)
	}

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		cmd, arg, _ := strings.Cut(line, " ")
		switch cmd {
		case "/quit", "q":
			return nil
		case "/new":
			if _, err := mgr.NewSession(ctx); err != nil {
				fmt.Fprintf(out, "세션 저장 실패: %v\n", err)
			}
			printQuick(out)
			continue
		case "/sessions":
			printSessions(out, mgr)
			continue
		case "/open":
			all := mgr.Sessions()
			n, err := strconv.Atoi(strings.TrimSpace(arg))
			if err != nil || n < 1 || n > len(all) {
				fmt.Fprintln(out, "사용법: /open N")
				continue
			}
			_ = mgr.Activate(all[n-1].ID)
			printSession(out, all[n-1])
			continue
		case "/quick":
			arg = strings.TrimSpace(arg)
			if arg == "" {
				printQuick(out)
				continue
			}
			n, err := strconv.Atoi(arg)
			if err != nil || n < 1 || n > len(client.QuickPrompts) {
				fmt.Fprintln(out, "사용법: /quick N")
				continue
			}
			line = client.QuickPrompts[n-1]
			fmt.Fprintf(out, "나: %s\n", line)
		}

		reply, ok, err := conv.Send(ctx, line)
		if err != nil {
			fmt.Fprintf(out, "세션 저장 실패: %v\n", err)
		}
		if ok {
			fmt.Fprintf(out, "봇: %s\n", reply.Content)
		}
	}
}

func printQuick(out io.Writer) {
	fmt.Fprintln(out, "추천 질문:")
	for i, q := range client.QuickPrompts {
		fmt.Fprintf(out, "  %d. %s\n", i+1, q)
	}
}

func printSessions(out io.Writer, mgr *session.Manager) {
	act, _ := mgr.Active()
	for i, s := range mgr.Sessions() {
		mark := " "
		if s.ID == act.ID {
			mark = "*"
		}
		fmt.Fprintf(out, "%s %d. %s (%d)\n", mark, i+1, s.Title, len(s.Messages))
	}
}

func printSession(out io.Writer, s session.ChatSession) {
	fmt.Fprintf(out, "== %s ==\n", s.Title)
	for _, m := range s.Messages {
		who := "나"
		if m.Role == session.RoleBot {
			who = "봇"
		}
		fmt.Fprintf(out, "%s: %s\n", who, m.Content)
	}
}
