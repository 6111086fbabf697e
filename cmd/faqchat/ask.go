package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tbourn/faq-chat-backend/internal/services"
)

func newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask",
		Short: "Query the retrieval pipeline interactively (q to quit)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			b, err := buildBackends(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer b.Close()
			p, err := buildPipeline(cfg, b)
			if err != nil {
				return err
			}
			return runAsk(cmd.Context(), os.Stdin, os.Stdout, p)
		},
	}
}

// runAsk answers one question per input line until EOF or "q".
func runAsk(ctx context.Context, in io.Reader, out io.Writer, a services.Answerer) error {
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "질문> ")
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "q") {
			return nil
		}

		res, err := a.Answer(ctx, line)
		if err != nil {
			fmt.Fprintf(out, "오류: %v\n", err)
			continue
		}
		if res.Found {
			src := ""
			if res.SourceQuestion != nil {
				src = *res.SourceQuestion
			}
			fmt.Fprintf(out, "[유사도 %.3f] %s\n%s\n", *res.Score, src, res.Answer)
			continue
		}
		fmt.Fprintln(out, res.Answer)
		if res.Score != nil {
			fmt.Fprintf(out, "(가장 가까운 점수: %.3f)\n", *res.Score)
		}
	}
}
