package repository

import (
	"context"

	"finlit-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// SessionRepository stores per-attempt session snapshots. The snapshot is
// what lets a paused attempt resume with its index and correct count intact.
type SessionRepository struct {
	Col *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{Col: db.Collection("sessions")}
}

func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.LearningSession, error) {
	var session models.LearningSession
	err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// FindActiveByUser returns the user's most recent resumable session, if any.
func (r *SessionRepository) FindActiveByUser(ctx context.Context, userID string) (*models.LearningSession, error) {
	var session models.LearningSession
	err := r.Col.FindOne(ctx, bson.M{
		"user_id": userID,
		"status":  bson.M{"$in": []string{models.StatusActive, models.StatusPaused}},
	}).Decode(&session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) Create(ctx context.Context, session *models.LearningSession) error {
	_, err := r.Col.InsertOne(ctx, session)
	return err
}

// Save overwrites the whole snapshot. Transitions always rewrite the full
// session state, so a partial update has nothing to buy here.
func (r *SessionRepository) Save(ctx context.Context, session *models.LearningSession) error {
	_, err := r.Col.ReplaceOne(ctx, bson.M{"_id": session.ID}, session)
	return err
}

func (r *SessionRepository) Update(ctx context.Context, id string, update bson.M) error {
	_, err := r.Col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	return err
}
