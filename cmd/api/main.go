package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	analysis "github.com/zhouzirui/callpulse/backend/internal/analysis/emotion"
	"github.com/zhouzirui/callpulse/backend/internal/config"
	"github.com/zhouzirui/callpulse/backend/internal/handler"
	emotionservice "github.com/zhouzirui/callpulse/backend/internal/service/emotion"
	"github.com/zhouzirui/callpulse/backend/internal/service/session"
	"github.com/zhouzirui/callpulse/backend/internal/service/transcript"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	classifier := analysis.Default()
	transcripts := transcript.NewService()

	emotionSvc, err := emotionservice.NewFromConfig(ctx, cfg.AI, classifier)
	if err != nil {
		log.Printf("warning: failed to initialize remote emotion classifier: %v", err)
		log.Println("continuing with local rules only - 请检查 EMOTION_PROVIDER 及相关密钥")
		emotionSvc = emotionservice.NewService(nil, classifier, emotionservice.Config{})
	} else if !emotionSvc.Enabled() {
		log.Println("远程情绪分类未配置，仅使用本地规则")
	}

	// 未启用远程分类时传入 nil 接口，控制器据此跳过防抖与远程调用。
	var remote emotionservice.Remote
	if emotionSvc.Enabled() {
		remote = emotionSvc
	}

	controller := session.NewController(session.Config{
		Warmup:         cfg.Session.Warmup,
		Debounce:       cfg.Session.Debounce,
		CacheSize:      cfg.Session.CacheSize,
		StrictOrdering: cfg.Session.StrictOrdering,
	}, classifier, remote, transcripts)
	defer func() {
		if _, err := controller.Stop(context.Background()); err != nil && !errors.Is(err, session.ErrNoSession) {
			log.Printf("warning: failed to stop active session: %v", err)
		}
	}()

	router := handler.NewRouter(emotionSvc, controller, transcripts, analysis.NewFiller(nil))

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("CallPulse backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
