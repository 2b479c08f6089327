package repository

import (
	"context"
	"fmt"
	"time"

	"learning-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ExamRepository struct {
	Col *mongo.Collection
}

func NewExamRepository(db *mongo.Database) *ExamRepository {
	return &ExamRepository{Col: db.Collection("exams")}
}

func (r *ExamRepository) FindAll(ctx context.Context, publishedOnly bool) ([]models.Exam, error) {
	query := bson.M{}
	if publishedOnly {
		query["published"] = true
	}
	cur, err := r.Col.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var exams []models.Exam
	if err := cur.All(ctx, &exams); err != nil {
		return nil, err
	}
	return exams, nil
}

func (r *ExamRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Exam, error) {
	var exam models.Exam
	if err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&exam); err != nil {
		return nil, mapFindErr(err)
	}
	return &exam, nil
}

func (r *ExamRepository) Create(ctx context.Context, exam *models.Exam) error {
	exam.CreatedAt = time.Now()
	exam.UpdatedAt = exam.CreatedAt
	res, err := r.Col.InsertOne(ctx, exam)
	if err != nil {
		return fmt.Errorf("failed to insert exam: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		exam.ID = oid
	}
	return nil
}

func (r *ExamRepository) Update(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	update["updated_at"] = time.Now()
	_, err := r.Col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	return err
}

func (r *ExamRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.Col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

type ExamQuestionRepository struct {
	Col *mongo.Collection
}

func NewExamQuestionRepository(db *mongo.Database) *ExamQuestionRepository {
	return &ExamQuestionRepository{Col: db.Collection("exam_questions")}
}

func (r *ExamQuestionRepository) FindByFilter(ctx context.Context, difficulty string, topicTags []string) ([]models.ExamQuestion, error) {
	query := bson.M{"is_active": true}
	if difficulty != "" {
		query["difficulty"] = difficulty
	}
	if len(topicTags) > 0 {
		query["topic_tags"] = bson.M{"$in": topicTags}
	}
	cur, err := r.Col.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var questions []models.ExamQuestion
	if err := cur.All(ctx, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *ExamQuestionRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.ExamQuestion, error) {
	cur, err := r.Col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var questions []models.ExamQuestion
	if err := cur.All(ctx, &questions); err != nil {
		return nil, err
	}
	// Preserve the paper's question order.
	byID := make(map[primitive.ObjectID]models.ExamQuestion, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	ordered := make([]models.ExamQuestion, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			ordered = append(ordered, q)
		}
	}
	return ordered, nil
}

func (r *ExamQuestionRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.ExamQuestion, error) {
	var question models.ExamQuestion
	if err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&question); err != nil {
		return nil, mapFindErr(err)
	}
	return &question, nil
}

func (r *ExamQuestionRepository) Create(ctx context.Context, question *models.ExamQuestion) error {
	question.CreatedAt = time.Now()
	question.UpdatedAt = question.CreatedAt
	res, err := r.Col.InsertOne(ctx, question)
	if err != nil {
		return fmt.Errorf("failed to insert question: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		question.ID = oid
	}
	return nil
}

func (r *ExamQuestionRepository) Update(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	update["updated_at"] = time.Now()
	_, err := r.Col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	return err
}

func (r *ExamQuestionRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.Col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

type ExamAttemptRepository struct {
	Col *mongo.Collection
}

func NewExamAttemptRepository(db *mongo.Database) *ExamAttemptRepository {
	return &ExamAttemptRepository{Col: db.Collection("exam_attempts")}
}

func (r *ExamAttemptRepository) Create(ctx context.Context, attempt *models.ExamAttempt) error {
	res, err := r.Col.InsertOne(ctx, attempt)
	if err != nil {
		return fmt.Errorf("failed to insert exam attempt: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		attempt.ID = oid
	}
	return nil
}

func (r *ExamAttemptRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.ExamAttempt, error) {
	var attempt models.ExamAttempt
	if err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&attempt); err != nil {
		return nil, mapFindErr(err)
	}
	return &attempt, nil
}

func (r *ExamAttemptRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.ExamAttempt, error) {
	cur, err := r.Col.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "started_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var attempts []models.ExamAttempt
	if err := cur.All(ctx, &attempts); err != nil {
		return nil, err
	}
	return attempts, nil
}

func (r *ExamAttemptRepository) CountByUserAndExam(ctx context.Context, userID, examID primitive.ObjectID) (int64, error) {
	return r.Col.CountDocuments(ctx, bson.M{"user_id": userID, "exam_id": examID})
}

func (r *ExamAttemptRepository) Replace(ctx context.Context, attempt *models.ExamAttempt) error {
	_, err := r.Col.ReplaceOne(ctx, bson.M{"_id": attempt.ID}, attempt)
	return err
}
