package repository

import (
	"context"
	"errors"
	"log"
	"time"

	"finlit-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProgressRepository stores one ProgressRecord per learner. All writes are
// single atomic updates ($inc, $addToSet, positional $set), so two sessions
// for the same learner cannot lose XP to a read-modify-write race.
type ProgressRepository struct {
	Col *mongo.Collection
}

func NewProgressRepository(db *mongo.Database) *ProgressRepository {
	return &ProgressRepository{Col: db.Collection("progress")}
}

// Get returns the learner's record. A missing or undecodable document
// degrades to the zero record; corruption is logged, never surfaced.
func (r *ProgressRepository) Get(ctx context.Context, userID string) *models.ProgressRecord {
	var record models.ProgressRecord
	err := r.Col.FindOne(ctx, bson.M{"_id": userID}).Decode(&record)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			log.Printf("progress record for %s unreadable, using zero record: %v", userID, err)
		}
		return models.NewProgressRecord(userID)
	}
	if record.CompletedLevels == nil {
		record.CompletedLevels = []models.CompletedLevel{}
	}
	if record.CompletedExams == nil {
		record.CompletedExams = []models.ExamRecord{}
	}
	return &record
}

// AddXP atomically increments the ledger and returns the new total. The
// total only ever grows; callers never write an absolute value.
func (r *ProgressRepository) AddXP(ctx context.Context, userID string, amount int) (int, error) {
	if amount <= 0 {
		return r.Get(ctx, userID).TotalXP, nil
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	update := bson.M{
		"$inc": bson.M{"total_xp": amount},
		"$set": bson.M{"updated_at": time.Now()},
		"$setOnInsert": bson.M{
			"schema_version":   models.ProgressSchemaVersion,
			"completed_levels": []models.CompletedLevel{},
			"completed_exams":  []models.ExamRecord{},
		},
	}

	var record models.ProgressRecord
	err := r.Col.FindOneAndUpdate(ctx, bson.M{"_id": userID}, update, opts).Decode(&record)
	if err != nil {
		return 0, err
	}
	return record.TotalXP, nil
}

// AddCompletedLevel records a passed lesson. $addToSet makes the write
// idempotent: recording the same pass twice leaves the set unchanged.
func (r *ProgressRepository) AddCompletedLevel(ctx context.Context, userID string, level models.CompletedLevel) error {
	opts := options.Update().SetUpsert(true)
	update := bson.M{
		"$addToSet": bson.M{"completed_levels": level},
		"$set":      bson.M{"updated_at": time.Now()},
		"$setOnInsert": bson.M{
			"schema_version":  models.ProgressSchemaVersion,
			"completed_exams": []models.ExamRecord{},
		},
	}
	_, err := r.Col.UpdateOne(ctx, bson.M{"_id": userID}, update, opts)
	return err
}

// UpsertExam records a passed exam, replacing any earlier entry for the
// same topic. It reports whether the entry is new; retakes only update the
// score.
func (r *ProgressRepository) UpsertExam(ctx context.Context, userID string, exam models.ExamRecord) (bool, error) {
	// Positional update when an entry for the topic already exists.
	res, err := r.Col.UpdateOne(ctx,
		bson.M{"_id": userID, "completed_exams.topic_id": exam.TopicID},
		bson.M{"$set": bson.M{
			"completed_exams.$.score": exam.Score,
			"updated_at":              time.Now(),
		}},
	)
	if err != nil {
		return false, err
	}
	if res.MatchedCount > 0 {
		return false, nil
	}

	opts := options.Update().SetUpsert(true)
	update := bson.M{
		"$push": bson.M{"completed_exams": exam},
		"$set":  bson.M{"updated_at": time.Now()},
		"$setOnInsert": bson.M{
			"schema_version":   models.ProgressSchemaVersion,
			"completed_levels": []models.CompletedLevel{},
		},
	}
	if _, err := r.Col.UpdateOne(ctx, bson.M{"_id": userID}, update, opts); err != nil {
		return false, err
	}
	return true, nil
}
