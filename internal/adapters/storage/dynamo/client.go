package dynamo

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// Client envuelve el cliente DynamoDB más el nombre de la single-table.
// Se construye una sola vez en el bootstrap y se inyecta a los repos.
type Client struct {
	db    *dynamodb.Client
	table string
}

type Config struct {
	TableName string
	Region    string
	Endpoint  string // opcional, para DynamoDB local
}

// Env:
//   MEDICATIONS_TABLE_NAME (requerido)
//   AWS_REGION (default us-east-1)
//   DYNAMO_ENDPOINT (opcional, dev local)
//   credenciales por la cadena default del SDK

func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.TableName == "" {
		return nil, fmt.Errorf("dynamo table name required")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}

	db := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &Client{db: db, table: cfg.TableName}, nil
}

func OpenFromEnv(ctx context.Context) (*Client, error) {
	tableName := os.Getenv("MEDICATIONS_TABLE_NAME")
	if tableName == "" {
		return nil, fmt.Errorf("MEDICATIONS_TABLE_NAME required for dynamo driver")
	}

	return New(ctx, Config{
		TableName: tableName,
		Region:    os.Getenv("AWS_REGION"),
		Endpoint:  os.Getenv("DYNAMO_ENDPOINT"),
	})
}
