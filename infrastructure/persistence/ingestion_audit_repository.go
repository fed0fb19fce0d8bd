package persistence

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/model"
	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/repository"
	"github.com/tmoody1973/rhythm-lab-app-sub003/infrastructure/utils"
)

const ingestionAuditCollection = "show_ingestions"

// documentInserter is the part of *mongo.Collection the audit log writes through.
type documentInserter interface {
	InsertOne(ctx context.Context, document interface{}, opts ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error)
}

// IngestionAuditRepository appends one document per ingestion run.
type IngestionAuditRepository struct {
	collection documentInserter
}

func NewIngestionAuditRepository(client *mongo.Client, database string) *IngestionAuditRepository {
	return &IngestionAuditRepository{collection: client.Database(database).Collection(ingestionAuditCollection)}
}

func (r *IngestionAuditRepository) RecordIngestion(ctx context.Context, audit model.IngestionAudit) error {
	if audit.CreatedAt.IsZero() {
		audit.CreatedAt = utils.GetCurrentTime()
	}
	_, err := r.collection.InsertOne(ctx, audit)
	return err
}

var _ repository.IIngestionAudit = (*IngestionAuditRepository)(nil)
