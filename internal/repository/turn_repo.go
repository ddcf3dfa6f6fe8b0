package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"familyglitch/internal/model"
)

// ErrTurnNotPending is returned when completing a turn that is missing or already completed
var ErrTurnNotPending = errors.New("turn is not pending")

// TurnCompletion is the one-time update applied when a player answers
type TurnCompletion struct {
	Response   []byte
	Score      *int
	DurationMS *int64
}

type TurnRepo interface {
	Create(ctx context.Context, turn *model.Turn) error
	GetByID(ctx context.Context, sessionID, turnID string) (*model.Turn, error)
	ListBySession(ctx context.Context, sessionID string) ([]model.Turn, error)
	Complete(ctx context.Context, sessionID, turnID string, c TurnCompletion) (*model.Turn, error)
	SetScore(ctx context.Context, sessionID, turnID string, score int) error
}

type turnRepo struct {
	collection *mongo.Collection
}

func NewTurnRepo(client *mongo.Client) TurnRepo {
	db := client.Database(DatabaseName)
	return &turnRepo{
		collection: db.Collection("turns"),
	}
}

func (r *turnRepo) Create(ctx context.Context, turn *model.Turn) error {
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, turn)
	return err
}

func (r *turnRepo) GetByID(ctx context.Context, sessionID, turnID string) (*model.Turn, error) {
	var turn model.Turn
	err := r.collection.FindOne(ctx, bson.M{"_id": turnID, "sessionId": sessionID}).Decode(&turn)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &turn, nil
}

func (r *turnRepo) ListBySession(ctx context.Context, sessionID string) ([]model.Turn, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"sessionId": sessionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	turns := []model.Turn{}
	if err = cursor.All(ctx, &turns); err != nil {
		return nil, err
	}
	return turns, nil
}

// Complete moves a pending turn to completed; the status filter makes it a one-shot
func (r *turnRepo) Complete(ctx context.Context, sessionID, turnID string, c TurnCompletion) (*model.Turn, error) {
	now := time.Now()
	set := bson.M{
		"status":      model.TurnCompleted,
		"response":    c.Response,
		"completedAt": now,
	}
	if c.Score != nil {
		set["score"] = *c.Score
	}
	if c.DurationMS != nil {
		set["durationMs"] = *c.DurationMS
	}

	filter := bson.M{"_id": turnID, "sessionId": sessionID, "status": model.TurnPending}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var turn model.Turn
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&turn)
	if err == mongo.ErrNoDocuments {
		return nil, ErrTurnNotPending
	}
	if err != nil {
		return nil, err
	}
	return &turn, nil
}

func (r *turnRepo) SetScore(ctx context.Context, sessionID, turnID string, score int) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": turnID, "sessionId": sessionID},
		bson.M{"$set": bson.M{"score": score}})
	return err
}
