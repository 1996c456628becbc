package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/unitynodes/unity-nodes-api/internal/core/domain"
	"github.com/unitynodes/unity-nodes-api/internal/core/ports"
)

const collectionLicenses = "licenses"

type licenseDoc struct {
	ID          string     `bson:"_id"`
	LicenseKey  string     `bson:"license_key"`
	Status      string     `bson:"status"`
	NodeType    string     `bson:"node_type"`
	StakeAmount float64    `bson:"stake_amount"`
	UserID      *string    `bson:"user_id,omitempty"`
	CreatedAt   time.Time  `bson:"created_at"`
	GeneratedAt *time.Time `bson:"generated_at,omitempty"`
	UsedAt      *time.Time `bson:"used_at,omitempty"`
}

func (d licenseDoc) toDomain() *domain.License {
	return &domain.License{
		ID:          d.ID,
		LicenseKey:  d.LicenseKey,
		Status:      domain.LicenseStatus(d.Status),
		NodeType:    domain.NodeType(d.NodeType),
		StakeAmount: d.StakeAmount,
		UserID:      d.UserID,
		CreatedAt:   d.CreatedAt.UTC(),
		GeneratedAt: utcTime(d.GeneratedAt),
		UsedAt:      utcTime(d.UsedAt),
	}
}

func utcTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

type LicenseRepository struct {
	col *mongo.Collection
}

func NewLicenseRepository(db *mongo.Database) *LicenseRepository {
	return &LicenseRepository{col: db.Collection(collectionLicenses)}
}

func licenseFilter(f ports.LicenseFilter) bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	if f.NodeType != "" {
		filter["node_type"] = string(f.NodeType)
	}
	if f.UserID != "" {
		filter["user_id"] = f.UserID
	}
	if !f.GeneratedSince.IsZero() {
		filter["generated_at"] = bson.M{"$gte": f.GeneratedSince.UTC()}
	}
	return filter
}

func (r *LicenseRepository) FindOldest(ctx context.Context, f ports.LicenseFilter) (*domain.License, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	var doc licenseDoc
	if err := r.col.FindOne(ctx, licenseFilter(f), opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrLicenseNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *LicenseRepository) FindFirstByUserAndStatus(ctx context.Context, userID string, status domain.LicenseStatus) (*domain.License, error) {
	return r.FindOldest(ctx, ports.LicenseFilter{UserID: userID, Status: status})
}

// UpdateStatus is a single FindOneAndUpdate guarded by the expected status,
// so concurrent claims on one document cannot both match.
func (r *LicenseRepository) UpdateStatus(ctx context.Context, u ports.StatusUpdate) (*domain.License, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"status": string(u.Next)}
	switch u.Next {
	case domain.StatusGenerated:
		set["user_id"] = u.UserID
		set["generated_at"] = u.At.UTC()
	case domain.StatusUsed:
		set["used_at"] = u.At.UTC()
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc licenseDoc
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": u.ID, "status": string(u.Expected)},
		bson.M{"$set": set},
		opts,
	).Decode(&doc)
	switch {
	case err == nil:
		return doc.toDomain(), nil
	case mongo.IsDuplicateKeyError(err):
		return nil, domain.ErrDuplicateClaim
	case errors.Is(err, mongo.ErrNoDocuments):
		n, cerr := r.col.CountDocuments(ctx, bson.M{"_id": u.ID})
		if cerr != nil {
			return nil, cerr
		}
		if n == 0 {
			return nil, domain.ErrLicenseNotFound
		}
		return nil, domain.ErrStaleLicense
	default:
		return nil, err
	}
}

func (r *LicenseRepository) Count(ctx context.Context, f ports.LicenseFilter) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.col.CountDocuments(ctx, licenseFilter(f))
}

func (r *LicenseRepository) List(ctx context.Context, f ports.LicenseFilter) ([]*domain.License, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.col.Find(ctx, licenseFilter(f), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []licenseDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domain.License, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *LicenseRepository) FindByID(ctx context.Context, id string) (*domain.License, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc licenseDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrLicenseNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

// CreateBatch inserts the batch in order. Without a replica set there are no
// transactions, so a failed batch is rolled back by deleting what was inserted.
func (r *LicenseRepository) CreateBatch(ctx context.Context, licenses []*domain.License) error {
	if len(licenses) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	docs := make([]interface{}, 0, len(licenses))
	ids := make([]string, 0, len(licenses))
	for _, l := range licenses {
		docs = append(docs, licenseDoc{
			ID:          l.ID,
			LicenseKey:  l.LicenseKey,
			Status:      string(l.Status),
			NodeType:    string(l.NodeType),
			StakeAmount: l.StakeAmount,
			UserID:      l.UserID,
			CreatedAt:   l.CreatedAt.UTC(),
			GeneratedAt: l.GeneratedAt,
			UsedAt:      l.UsedAt,
		})
		ids = append(ids, l.ID)
	}

	_, err := r.col.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err == nil {
		return nil
	}
	if _, derr := r.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); derr != nil {
		return fmt.Errorf("insert licenses: %w (rollback failed: %v)", err, derr)
	}
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrDuplicateLicenseKey
	}
	return fmt.Errorf("insert licenses: %w", err)
}

// EnsureIndexes creates the lookup indexes and the partial unique index that
// limits each user to one generated license.
func (r *LicenseRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "license_key", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "node_type", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "generated_at", Value: 1}}},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().
				SetName("uniq_generated_user").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": string(domain.StatusGenerated)}),
		},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
