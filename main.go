package main

import (
	"context"
	"log"

	api "github.com/navinavi029/Circld-sub003/cmd/api"
	chatRepo "github.com/navinavi029/Circld-sub003/internal/chat/repository"
	chatUsecase "github.com/navinavi029/Circld-sub003/internal/chat/usecase"
	"github.com/navinavi029/Circld-sub003/internal/notification"
	"github.com/navinavi029/Circld-sub003/internal/ratelimit"
	tradeRepo "github.com/navinavi029/Circld-sub003/internal/trade/repository"
	tradeUsecase "github.com/navinavi029/Circld-sub003/internal/trade/usecase"
	"github.com/navinavi029/Circld-sub003/pkg/config"
	"github.com/navinavi029/Circld-sub003/pkg/database"
	"github.com/navinavi029/Circld-sub003/pkg/fcm"
	"github.com/navinavi029/Circld-sub003/pkg/localstore"
	"github.com/navinavi029/Circld-sub003/pkg/retry"
)

func main() {
	// Load configuration
	cfg := config.Load()

	ctx := context.Background()

	// Initialize the remote document store
	firestoreClient, err := database.NewFirestoreClient(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to connect to Firestore:", err)
	}
	defer firestoreClient.Close()

	// Initialize the local mirror store
	localStore, err := localstore.Open(cfg.LocalStorePath)
	if err != nil {
		log.Fatal("Failed to open local store:", err)
	}
	defer localStore.Close()

	// Initialize repositories (dependency injection)
	itemRepository := tradeRepo.NewItemRepository(firestoreClient)
	sessionRepository := tradeRepo.NewSessionRepository(firestoreClient)
	offerRepository := tradeRepo.NewOfferRepository(firestoreClient)
	cacheRepository := tradeRepo.NewCacheRepository(localStore)
	conversationRepository := chatRepo.NewConversationRepository(firestoreClient)
	detailsRepository := chatRepo.NewDetailsRepository(firestoreClient)
	messageSubscriber := chatRepo.NewMessageSubscriber(firestoreClient)
	fcmTokenRepo := notification.NewFCMTokenRepository(firestoreClient)

	// Initialize FCM client if credentials are configured
	var notifier chatUsecase.Notifier
	if cfg.FirebaseCredentials != "" {
		fcmClient, err := fcm.NewClient(cfg.FirebaseCredentials)
		if err != nil {
			log.Printf("[WARN] Failed to initialize FCM client, push disabled: %v", err)
		} else {
			notifier = notification.NewService(fcmClient, fcmTokenRepo)
		}
	} else {
		log.Printf("[DEBUG] No Firebase credentials configured, FCM disabled")
	}

	// Shared retry policy and query sequencer
	executor := retry.New()
	sequencer := tradeUsecase.NewSequencer()
	defer sequencer.Close()

	limiter := ratelimit.New(cfg.SwipeRateLimit, cfg.SwipeRateWindow)

	// Initialize use cases (dependency injection)
	poolUc := tradeUsecase.NewPoolUsecase(itemRepository, sequencer, executor)
	sessionUc := tradeUsecase.NewSessionUsecase(sessionRepository, itemRepository, offerRepository, cacheRepository, limiter, executor)
	syncUc := tradeUsecase.NewSyncUsecase(sessionRepository, itemRepository, offerRepository, cacheRepository, executor)
	chatUc := chatUsecase.NewChatUsecase(conversationRepository, detailsRepository, offerRepository, messageSubscriber, notifier, executor, cfg.DetailsCacheTTL)

	// Initialize HTTP handler
	handler := api.NewHandler(poolUc, sessionUc, syncUc, chatUc, fcmTokenRepo, cfg)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
