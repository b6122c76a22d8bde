package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/battolapablo/marketgo/internal/auth"
	"github.com/battolapablo/marketgo/internal/config"
	"github.com/battolapablo/marketgo/internal/httpx"
	kafkax "github.com/battolapablo/marketgo/internal/kafka"
	"github.com/battolapablo/marketgo/internal/orders"
	"github.com/battolapablo/marketgo/internal/postgres"
	"github.com/battolapablo/marketgo/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPlaced, 1024)
	prod.Start(ctx)

	verifier := auth.NewVerifier(cfg.JWTSecret, cfg.TokenTTL)
	policy := auth.DefaultPolicy()

	repo := &orders.Repo{DB: db}
	svc := &orders.Service{Store: repo, Producer: prod, ServiceName: cfg.ServiceName}
	accounts := &orders.Accounts{Store: repo, Tokens: verifier}

	router := httpx.NewRouter()
	(&httpx.AuthHandler{Accounts: accounts}).Register(router)
	(&httpx.ProductsHandler{Repo: repo, Verifier: verifier, Policy: policy}).Register(router)
	(&httpx.UsersHandler{Repo: repo, Verifier: verifier, Policy: policy}).Register(router)
	(&httpx.OrdersHandler{Service: svc, Redis: rdb, Verifier: verifier, Policy: policy}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()
	cancel()
	prod.WaitClosed()
}
