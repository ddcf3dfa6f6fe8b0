package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"familyglitch/internal/config"
	"familyglitch/internal/model"
	"familyglitch/internal/repository"
	"familyglitch/internal/service"
)

// seeds a demo session at Act 2 with enough answered turns to unlock the
// history-based mini-games
func main() {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	sessionRepo := repository.NewSessionRepo(client)
	turnRepo := repository.NewTurnRepo(client)

	now := time.Now()
	players := []model.Player{
		{ID: uuid.New().String(), Name: "Mom", Avatar: "🦉"},
		{ID: uuid.New().String(), Name: "Dad", Avatar: "🐻"},
		{ID: uuid.New().String(), Name: "Maya", Avatar: "🦊"},
		{ID: uuid.New().String(), Name: "Leo", Avatar: "🐸"},
	}
	session := &model.Session{
		ID:        uuid.New().String(),
		Players:   players,
		Act:       2,
		Status:    model.SessionActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := sessionRepo.Create(ctx, session); err != nil {
		log.Fatalf("Failed to insert session: %v", err)
	}

	answers := []struct {
		player   int
		tpl      model.TemplateType
		prompt   string
		response any
	}{
		{0, model.TemplateTextArea, "What's the most embarrassing thing you did as a teenager?", map[string]string{"text": "Sang karaoke at my own graduation"}},
		{1, model.TemplateTimedBinary, "Pineapple on pizza?", map[string]string{"choice": "left"}},
		{1, model.TemplateMultiField, "Name your three desert island items", map[string][]string{"values": {"hammock", "guitar", "hot sauce"}}},
		{2, model.TemplateTextArea, "Describe your dream vacation", map[string]string{"text": "A treehouse hotel in Costa Rica"}},
		{3, model.TemplateSlider, "How scared are you of spiders?", map[string]int{"value": 9}},
		{0, model.TemplatePlayerSelector, "Who would survive longest in a zombie movie?", map[string]string{"selected": "Maya"}},
	}

	for i, a := range answers {
		raw, _ := json.Marshal(a.response)
		p := players[a.player]
		created := now.Add(time.Duration(i) * time.Minute)
		turn := &model.Turn{
			ID:           uuid.New().String(),
			SessionID:    session.ID,
			PlayerID:     p.ID,
			PlayerName:   p.Name,
			TemplateType: a.tpl,
			Prompt:       a.prompt,
			Status:       model.TurnCompleted,
			Response:     raw,
			CreatedAt:    created,
			CompletedAt:  &created,
		}
		if err := turnRepo.Create(ctx, turn); err != nil {
			log.Fatalf("Failed to insert turn %d: %v", i, err)
		}
	}

	token, err := service.NewAuthService(cfg.JWTSecret, cfg.TokenTTL).GenerateSessionToken(session.ID)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}

	fmt.Printf("Seeded session %s with %d players and %d turns\n", session.ID, len(players), len(answers))
	for _, p := range players {
		fmt.Printf("  %s %-5s %s\n", p.Avatar, p.Name, p.ID)
	}
	fmt.Printf("Token: %s\n", token)
}
