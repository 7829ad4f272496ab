package store

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-redis/redis"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoTimeout = 10 * time.Second

func mongoClientOptions(host, port string, httpClient *http.Client) *options.ClientOptions {
	uri := fmt.Sprintf("mongodb://%s:%s/", host, port)
	return options.Client().
		ApplyURI(uri).
		SetHTTPClient(httpClient).
		SetConnectTimeout(mongoTimeout).
		SetServerSelectionTimeout(mongoTimeout)
}

func GetClientWithHTTPConfig(host, port string, httpClient *http.Client) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()
	return mongo.Connect(ctx, mongoClientOptions(host, port, httpClient))
}

func GetRedisClient(host, port string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", host, port),
	})

	if err := client.Ping().Err(); err != nil {
		return nil, err
	}

	return client, nil
}
