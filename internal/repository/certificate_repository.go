package repository

import (
	"context"
	"errors"
	"fmt"

	"learning-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNumberCollision is returned when a generated certificate number hits
// the unique index; callers regenerate and retry.
var ErrNumberCollision = errors.New("certificate number already in use")

type CertificateRepository struct {
	Col *mongo.Collection
}

func NewCertificateRepository(db *mongo.Database) *CertificateRepository {
	return &CertificateRepository{Col: db.Collection("certificates")}
}

func (r *CertificateRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.Col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "certificate_number", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *CertificateRepository) Create(ctx context.Context, cert *models.Certificate) error {
	res, err := r.Col.InsertOne(ctx, cert)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrNumberCollision
		}
		return fmt.Errorf("failed to insert certificate: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		cert.ID = oid
	}
	return nil
}

func (r *CertificateRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Certificate, error) {
	var cert models.Certificate
	if err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&cert); err != nil {
		return nil, mapFindErr(err)
	}
	return &cert, nil
}

func (r *CertificateRepository) FindByNumber(ctx context.Context, number string) (*models.Certificate, error) {
	var cert models.Certificate
	if err := r.Col.FindOne(ctx, bson.M{"certificate_number": number}).Decode(&cert); err != nil {
		return nil, mapFindErr(err)
	}
	return &cert, nil
}

func (r *CertificateRepository) FindByStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.Certificate, error) {
	cur, err := r.Col.Find(ctx, bson.M{"student_id": studentID},
		options.Find().SetSort(bson.D{{Key: "issued_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var certs []models.Certificate
	if err := cur.All(ctx, &certs); err != nil {
		return nil, err
	}
	return certs, nil
}

func (r *CertificateRepository) Replace(ctx context.Context, cert *models.Certificate) error {
	_, err := r.Col.ReplaceOne(ctx, bson.M{"_id": cert.ID}, cert)
	return err
}
