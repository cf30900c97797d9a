package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"classquiz/internal/app"
	"classquiz/internal/domain"
)

type optionDoc struct {
	Text      string `bson:"text"`
	IsCorrect bool   `bson:"isCorrect"`
}

type questionDoc struct {
	Text        string      `bson:"questionText"`
	Options     []optionDoc `bson:"options"`
	Explanation string      `bson:"explanation"`
	Points      int         `bson:"points"`
}

type quizDoc struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	Title            string             `bson:"title"`
	Description      string             `bson:"description"`
	Subject          string             `bson:"subject"`
	Class            string             `bson:"class"`
	TimeLimitMinutes *int               `bson:"timeLimitMinutes,omitempty"`
	Difficulty       string             `bson:"difficulty"`
	Questions        []questionDoc      `bson:"questions,omitempty"`
	IsLive           bool               `bson:"isLive"`
	CreatedBy        string             `bson:"createdBy"`
	CreatedAt        time.Time          `bson:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt"`
}

// QuizRepository stores quizzes in the quizzes collection.
type QuizRepository struct {
	col *mongo.Collection
}

func NewQuizRepository(db *mongo.Database) *QuizRepository {
	return &QuizRepository{col: db.Collection(quizzesCollection)}
}

func (r *QuizRepository) Insert(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	doc := toQuizDoc(quiz)
	doc.ID = primitive.NewObjectID()
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return domain.Quiz{}, fmt.Errorf("insert quiz: %w", err)
	}
	quiz.ID = doc.ID.Hex()
	return quiz, nil
}

func (r *QuizRepository) FindByID(ctx context.Context, id string) (domain.Quiz, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	var doc quizDoc
	err = r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("find quiz: %w", err)
	}
	return fromQuizDoc(doc), nil
}

// Find returns summaries, newest first. Question bodies are excluded by
// projection so the list path never leaks answers.
func (r *QuizRepository) Find(ctx context.Context, filter app.QuizFilter) ([]domain.Quiz, error) {
	query := bson.M{}
	if filter.Class != "" {
		query["class"] = filter.Class
	}
	if filter.Subject != "" {
		query["subject"] = filter.Subject
	}
	if filter.IsLive != nil {
		query["isLive"] = *filter.IsLive
	}
	if filter.CreatedBy != "" {
		query["createdBy"] = filter.CreatedBy
	}

	opts := options.Find().
		SetProjection(bson.M{"questions": 0}).
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("find quizzes: %w", err)
	}
	defer cur.Close(ctx)

	quizzes := make([]domain.Quiz, 0)
	for cur.Next(ctx) {
		var doc quizDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode quiz: %w", err)
		}
		quizzes = append(quizzes, fromQuizDoc(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate quizzes: %w", err)
	}
	return quizzes, nil
}

func (r *QuizRepository) Replace(ctx context.Context, quiz domain.Quiz) error {
	oid, err := primitive.ObjectIDFromHex(quiz.ID)
	if err != nil {
		return domain.ErrQuizNotFound
	}
	doc := toQuizDoc(quiz)
	doc.ID = oid
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		return fmt.Errorf("replace quiz: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (r *QuizRepository) SetLive(ctx context.Context, id string, live bool, updatedAt time.Time) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrQuizNotFound
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{"isLive": live, "updatedAt": updatedAt},
	})
	if err != nil {
		return fmt.Errorf("set live: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (r *QuizRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrQuizNotFound
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func toQuizDoc(quiz domain.Quiz) quizDoc {
	questions := make([]questionDoc, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		opts := make([]optionDoc, 0, len(q.Options))
		for _, o := range q.Options {
			opts = append(opts, optionDoc{Text: o.Text, IsCorrect: o.IsCorrect})
		}
		questions = append(questions, questionDoc{
			Text:        q.Text,
			Options:     opts,
			Explanation: q.Explanation,
			Points:      q.Points,
		})
	}
	return quizDoc{
		Title:            quiz.Title,
		Description:      quiz.Description,
		Subject:          quiz.Subject,
		Class:            quiz.Class,
		TimeLimitMinutes: quiz.TimeLimitMinutes,
		Difficulty:       string(quiz.Difficulty),
		Questions:        questions,
		IsLive:           quiz.IsLive,
		CreatedBy:        quiz.CreatedBy,
		CreatedAt:        quiz.CreatedAt,
		UpdatedAt:        quiz.UpdatedAt,
	}
}

func fromQuizDoc(doc quizDoc) domain.Quiz {
	var questions []domain.Question
	if doc.Questions != nil {
		questions = make([]domain.Question, 0, len(doc.Questions))
		for _, q := range doc.Questions {
			opts := make([]domain.Option, 0, len(q.Options))
			for _, o := range q.Options {
				opts = append(opts, domain.Option{Text: o.Text, IsCorrect: o.IsCorrect})
			}
			questions = append(questions, domain.Question{
				Text:        q.Text,
				Options:     opts,
				Explanation: q.Explanation,
				Points:      q.Points,
			})
		}
	}
	return domain.Quiz{
		ID:               doc.ID.Hex(),
		Title:            doc.Title,
		Description:      doc.Description,
		Subject:          doc.Subject,
		Class:            doc.Class,
		TimeLimitMinutes: doc.TimeLimitMinutes,
		Difficulty:       domain.Difficulty(doc.Difficulty),
		Questions:        questions,
		IsLive:           doc.IsLive,
		CreatedBy:        doc.CreatedBy,
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
	}
}
