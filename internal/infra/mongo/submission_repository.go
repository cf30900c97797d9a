package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"classquiz/internal/domain"
)

type answerDoc struct {
	QuestionIndex  int  `bson:"questionIndex"`
	SelectedOption *int `bson:"selectedOptionIndex,omitempty"`
}

type submissionDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	QuizID       string             `bson:"quizId"`
	StudentID    string             `bson:"studentId"`
	StudentName  string             `bson:"studentName"`
	StudentClass string             `bson:"studentClass"`
	Answers      []answerDoc        `bson:"answers"`
	Score        int                `bson:"score"`
	MaxScore     int                `bson:"maxScore"`
	Percentage   float64            `bson:"percentage"`
	SubmittedAt  time.Time          `bson:"submittedAt"`
}

// SubmissionRepository stores scored submissions. The collection carries
// a unique compound index on (quizId, studentId); see EnsureIndexes.
type SubmissionRepository struct {
	col *mongo.Collection
}

func NewSubmissionRepository(db *mongo.Database) *SubmissionRepository {
	return &SubmissionRepository{col: db.Collection(submissionsCollection)}
}

// TryInsert persists a submission. Under concurrent duplicates the unique
// index lets exactly one insert through; the loser's duplicate-key error
// is translated to domain.ErrAlreadySubmitted.
func (r *SubmissionRepository) TryInsert(ctx context.Context, sub domain.Submission) (domain.Submission, error) {
	doc := toSubmissionDoc(sub)
	doc.ID = primitive.NewObjectID()
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.Submission{}, domain.ErrAlreadySubmitted
		}
		return domain.Submission{}, fmt.Errorf("insert submission: %w", err)
	}
	sub.ID = doc.ID.Hex()
	return sub, nil
}

func (r *SubmissionRepository) Exists(ctx context.Context, quizID, studentID string) (bool, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{"quizId": quizID, "studentId": studentID})
	if err != nil {
		return false, fmt.Errorf("count submissions: %w", err)
	}
	return count > 0, nil
}

// FindRanked returns submissions ordered by percentage descending, then
// submission time ascending, then _id for a deterministic total order.
func (r *SubmissionRepository) FindRanked(ctx context.Context, quizID string, limit int) ([]domain.Submission, error) {
	opts := options.Find().
		SetSort(bson.D{
			{Key: "percentage", Value: -1},
			{Key: "submittedAt", Value: 1},
			{Key: "_id", Value: 1},
		}).
		SetLimit(int64(limit))
	cur, err := r.col.Find(ctx, bson.M{"quizId": quizID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find submissions: %w", err)
	}
	defer cur.Close(ctx)

	subs := make([]domain.Submission, 0)
	for cur.Next(ctx) {
		var doc submissionDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode submission: %w", err)
		}
		subs = append(subs, fromSubmissionDoc(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return subs, nil
}

func (r *SubmissionRepository) DeleteByQuiz(ctx context.Context, quizID string) error {
	if _, err := r.col.DeleteMany(ctx, bson.M{"quizId": quizID}); err != nil {
		return fmt.Errorf("delete submissions: %w", err)
	}
	return nil
}

func toSubmissionDoc(sub domain.Submission) submissionDoc {
	answers := make([]answerDoc, 0, len(sub.Answers))
	for _, a := range sub.Answers {
		answers = append(answers, answerDoc{QuestionIndex: a.QuestionIndex, SelectedOption: a.SelectedOption})
	}
	return submissionDoc{
		QuizID:       sub.QuizID,
		StudentID:    sub.StudentID,
		StudentName:  sub.StudentName,
		StudentClass: sub.StudentClass,
		Answers:      answers,
		Score:        sub.Score,
		MaxScore:     sub.MaxScore,
		Percentage:   sub.Percentage,
		SubmittedAt:  sub.SubmittedAt,
	}
}

func fromSubmissionDoc(doc submissionDoc) domain.Submission {
	answers := make([]domain.Answer, 0, len(doc.Answers))
	for _, a := range doc.Answers {
		answers = append(answers, domain.Answer{QuestionIndex: a.QuestionIndex, SelectedOption: a.SelectedOption})
	}
	return domain.Submission{
		ID:           doc.ID.Hex(),
		QuizID:       doc.QuizID,
		StudentID:    doc.StudentID,
		StudentName:  doc.StudentName,
		StudentClass: doc.StudentClass,
		Answers:      answers,
		Score:        doc.Score,
		MaxScore:     doc.MaxScore,
		Percentage:   doc.Percentage,
		SubmittedAt:  doc.SubmittedAt,
	}
}
