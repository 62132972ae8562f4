package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/loanmate-platform/loanmate-api/internal/config"
	"github.com/loanmate-platform/loanmate-api/internal/logging"
	"github.com/loanmate-platform/loanmate-api/internal/repository/memory"
	"github.com/loanmate-platform/loanmate-api/internal/repository/postgres"
	"github.com/loanmate-platform/loanmate-api/internal/service"
	httptransport "github.com/loanmate-platform/loanmate-api/internal/transport/http"
	"github.com/loanmate-platform/loanmate-api/internal/transport/mail"
	"github.com/loanmate-platform/loanmate-api/internal/util"
)

func main() {
	cfg := config.Load()

	if cfg.LogstashTCPAddr != "" {
		w, err := logging.NewLogstashWriter(cfg.LogstashTCPAddr)
		if err != nil {
			log.Printf("logstash disabled: %v", err)
		} else {
			defer w.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, w))
		}
	}

	db, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	users := postgres.NewUserRepo(db)
	conversations := postgres.NewConversationRepo(db)
	tokens := memory.NewTokenStore()

	jwtManager := util.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	mailer := mail.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom, cfg.SMTPUseTLS, cfg.SMTPTimeout)

	auth := service.NewAuthService(users, jwtManager, cfg.GoogleAudience)
	resets := service.NewPasswordResetService(users, tokens, mailer, cfg.FrontendBaseURL, cfg.OTPTTL, cfg.ResetGrantTTL)
	chat := service.NewChatService(conversations)
	subscriptions := service.NewSubscriptionService(mailer)
	eligibility := service.NewEligibilityService()

	e := httptransport.NewRouter(cfg.AllowOrigins)
	httptransport.RegisterAuth(e, auth)
	httptransport.RegisterPasswordReset(e, resets)
	httptransport.RegisterChat(e, auth, chat)
	httptransport.RegisterSubscribe(e, subscriptions)
	httptransport.RegisterEligibility(e, eligibility)
	httptransport.RegisterSwagger(e)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()
	log.Printf("Server running on port %s", cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
