// Package aws собирает клиенты AWS SDK v2 и описывает узкие интерфейсы,
// которые используют хранилище и публикатор (для подмены в тестах).
package aws

import (
	"context"
	"fmt"
	"strings"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// DefaultRegion используется, если регион не задан.
const DefaultRegion = "us-east-1"

// DynamoDBAPI — подмножество клиента DynamoDB, нужное репозиторию заказов.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// SQSAPI — подмножество клиента SQS для публикации событий.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// LoadConfig загружает конфигурацию SDK (env, shared config, IAM role).
// AWS_ENDPOINT_URL подхватывается SDK автоматически, что удобно для localstack.
func LoadConfig(ctx context.Context, region string) (sdkaws.Config, error) {
	region = strings.TrimSpace(region)
	if region == "" {
		region = DefaultRegion
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return sdkaws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

// NewDynamoDB создаёт клиент DynamoDB.
func NewDynamoDB(cfg sdkaws.Config) DynamoDBAPI {
	return dynamodb.NewFromConfig(cfg)
}

// NewSQS создаёт клиент SQS.
func NewSQS(cfg sdkaws.Config) SQSAPI {
	return sqs.NewFromConfig(cfg)
}
