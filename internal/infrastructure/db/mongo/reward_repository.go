package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/unitynodes/unity-nodes-api/internal/core/domain"
)

const collectionRewards = "rewards"

type rewardDoc struct {
	ID            string    `bson:"_id"`
	UserID        string    `bson:"user_id"`
	Amount        float64   `bson:"amount"`
	Type          string    `bson:"type"`
	Status        string    `bson:"status"`
	Period        string    `bson:"period"`
	MinutesFarmed float64   `bson:"minutes_farmed"`
	MntEarned     float64   `bson:"mnt_earned"`
	CreatedAt     time.Time `bson:"created_at"`
}

func (d rewardDoc) toDomain() *domain.Reward {
	return &domain.Reward{
		ID:            d.ID,
		UserID:        d.UserID,
		Amount:        d.Amount,
		Type:          d.Type,
		Status:        d.Status,
		Period:        domain.RewardPeriod(d.Period),
		MinutesFarmed: d.MinutesFarmed,
		MntEarned:     d.MntEarned,
		CreatedAt:     d.CreatedAt.UTC(),
	}
}

type RewardRepository struct {
	col *mongo.Collection
}

func NewRewardRepository(db *mongo.Database) *RewardRepository {
	return &RewardRepository{col: db.Collection(collectionRewards)}
}

func (r *RewardRepository) Create(ctx context.Context, rw *domain.Reward) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, rewardDoc{
		ID:            rw.ID,
		UserID:        rw.UserID,
		Amount:        rw.Amount,
		Type:          rw.Type,
		Status:        rw.Status,
		Period:        string(rw.Period),
		MinutesFarmed: rw.MinutesFarmed,
		MntEarned:     rw.MntEarned,
		CreatedAt:     rw.CreatedAt.UTC(),
	})
	return err
}

func (r *RewardRepository) FindByID(ctx context.Context, id string) (*domain.Reward, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc rewardDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRewardNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *RewardRepository) ListByUser(ctx context.Context, userID string, period domain.RewardPeriod) ([]*domain.Reward, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"user_id": userID, "period": string(period)}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []rewardDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domain.Reward, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *RewardRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "period", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}
