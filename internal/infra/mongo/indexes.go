package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes declares the indexes the repositories rely on. Safe to
// run repeatedly; Mongo treats an existing identical index as a no-op.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	// The authoritative one-submission-per-student constraint. A duplicate
	// insert fails with a duplicate-key error instead of racing a
	// check-then-insert in application code.
	_, err := db.Collection(submissionsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "quizId", Value: 1}, {Key: "studentId", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_quiz_student"),
	})
	if err != nil {
		return fmt.Errorf("submissions index: %w", err)
	}

	_, err = db.Collection(submissionsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "quizId", Value: 1}, {Key: "percentage", Value: -1}, {Key: "submittedAt", Value: 1}},
		Options: options.Index().SetName("leaderboard_sort"),
	})
	if err != nil {
		return fmt.Errorf("leaderboard index: %w", err)
	}

	_, err = db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "authUid", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_auth_uid"),
	})
	if err != nil {
		return fmt.Errorf("users index: %w", err)
	}

	_, err = db.Collection(quizzesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "class", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("class_created"),
	})
	if err != nil {
		return fmt.Errorf("quizzes index: %w", err)
	}
	return nil
}
