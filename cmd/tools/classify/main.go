package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	analysis "github.com/zhouzirui/callpulse/backend/internal/analysis/emotion"
	"github.com/zhouzirui/callpulse/backend/internal/config"
	emotionservice "github.com/zhouzirui/callpulse/backend/internal/service/emotion"
)

type options struct {
	remote  bool
	matches bool
	pretty  bool
}

type output struct {
	analysis.Result
	Matches []matchOutput `json:"matches,omitempty"`
}

type matchOutput struct {
	Emotion  analysis.Label `json:"emotion"`
	Keywords []string       `json:"keywords,omitempty"`
	Phrases  []string       `json:"phrases,omitempty"`
	Weighted float64        `json:"weighted"`
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "classify [text...]",
		Short: "对一句或多句话做情绪分析",
		Long: `classify 使用本地规则引擎分析参数中的文本，未给出参数时逐行读取标准输入。
加上 --remote 时按 .env 中的配置调用远程大模型，失败时回退到本地结果。`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), args, opts)
		},
		SilenceUsage: true,
	}

	cmd.Flags().BoolVar(&opts.remote, "remote", false, "使用配置的远程后端分类")
	cmd.Flags().BoolVar(&opts.matches, "matches", false, "输出每条规则的匹配明细")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "格式化 JSON 输出")
	return cmd
}

func run(ctx context.Context, in io.Reader, out io.Writer, args []string, opts *options) error {
	classifier := analysis.Default()
	svc := emotionservice.NewService(nil, classifier, emotionservice.Config{})

	if opts.remote {
		if err := godotenv.Load(); err != nil {
			log.Printf("[WARN] 无法加载 .env，改用系统环境变量: %v", err)
		}
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		svc, err = emotionservice.NewFromConfig(ctx, cfg.AI, classifier)
		if err != nil {
			return err
		}
		if !svc.Enabled() {
			log.Println("[WARN] 远程分类未配置，使用本地规则")
		}
	}

	enc := json.NewEncoder(out)
	if opts.pretty {
		enc.SetIndent("", "  ")
	}

	emit := func(text string) error {
		o := output{}
		if opts.remote {
			o.Result = svc.Analyze(ctx, text)
		} else {
			o.Result = svc.Local(text)
		}
		if opts.matches {
			for _, m := range classifier.Matches(text) {
				o.Matches = append(o.Matches, matchOutput{
					Emotion:  m.Rule.Name,
					Keywords: m.MatchedKeywords,
					Phrases:  m.MatchedPhrases,
					Weighted: m.WeightedScore,
				})
			}
		}
		return enc.Encode(o)
	}

	if len(args) > 0 {
		return emit(strings.Join(args, " "))
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := emit(line); err != nil {
			return err
		}
	}
	return scanner.Err()
}
