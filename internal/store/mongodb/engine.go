package mongodb

import (
	"context"
	"errors"

	"github.com/synergysphere/realtime/internal/store"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type user struct {
	Id    string `bson:"_id"`
	Name  string `bson:"name"`
	Email string `bson:"email"`
}

type membership struct {
	UserId      string `bson:"userId"`
	WorkspaceId string `bson:"workspaceId"`
	Role        string `bson:"role"`
}

type Engine struct {
	users       *mongo.Collection
	memberships *mongo.Collection
}

func NewEngine(client *mongo.Client) *Engine {
	database := client.Database("synergysphere")

	return &Engine{
		users:       database.Collection("users"),
		memberships: database.Collection("memberships"),
	}
}

func (e *Engine) Setup(ctx context.Context) error {
	membershipIndexModel := mongo.IndexModel{
		Keys: bson.D{
			{Key: "userId", Value: 1},
			{Key: "workspaceId", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	}

	_, err := e.memberships.Indexes().CreateOne(ctx, membershipIndexModel)

	return err
}

func (e *Engine) FindUser(ctx context.Context, id string) (store.User, error) {
	var u user
	err := e.users.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.User{}, store.ErrNotFound
	}
	if err != nil {
		return store.User{}, err
	}

	return store.User{
		Id:    u.Id,
		Name:  u.Name,
		Email: u.Email,
	}, nil
}

func (e *Engine) ListWorkspacesForUser(ctx context.Context, userId string) ([]string, error) {
	result, err := e.memberships.Find(ctx, bson.M{"userId": userId})
	if err != nil {
		return nil, err
	}

	var memberships []membership
	err = result.All(ctx, &memberships)
	if err != nil {
		return nil, err
	}

	workspaceIds := make([]string, len(memberships))
	for i, m := range memberships {
		workspaceIds[i] = m.WorkspaceId
	}

	return workspaceIds, nil
}

func (e *Engine) IsMember(ctx context.Context, userId string, workspaceId string) (bool, error) {
	filter := bson.M{
		"userId":      userId,
		"workspaceId": workspaceId,
	}

	err := e.memberships.FindOne(ctx, filter).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}
