package sqs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"medication-dose-tracker/internal/consumer"
	"medication-dose-tracker/internal/domain/medications"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
)

// Client publica y recibe mensajes de generación de dosis sobre una
// cola SQS. Envío fire-and-forget, entrega at-least-once, sin dedup.
type Client struct {
	sqs      *awssqs.Client
	queueURL string
}

type Config struct {
	QueueURL string
	Region   string
	Endpoint string // opcional, para LocalStack / ElasticMQ
}

// Env:
//   DOSE_GENERATION_QUEUE_URL (requerido)
//   AWS_REGION (default us-east-1)
//   SQS_ENDPOINT (opcional, dev local)

func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.QueueURL == "" {
		return nil, fmt.Errorf("sqs queue url required")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}

	client := awssqs.NewFromConfig(awsCfg, func(o *awssqs.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &Client{sqs: client, queueURL: cfg.QueueURL}, nil
}

func OpenFromEnv(ctx context.Context) (*Client, error) {
	queueURL := os.Getenv("DOSE_GENERATION_QUEUE_URL")
	if queueURL == "" {
		return nil, fmt.Errorf("DOSE_GENERATION_QUEUE_URL required for sqs queue")
	}

	return New(ctx, Config{
		QueueURL: queueURL,
		Region:   os.Getenv("AWS_REGION"),
		Endpoint: os.Getenv("SQS_ENDPOINT"),
	})
}

// PublishGeneration implementa medications.GenerationPublisher.
func (c *Client) PublishGeneration(ctx context.Context, msg medications.GenerationMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	_, err = c.sqs.SendMessage(ctx, &awssqs.SendMessageInput{
		QueueUrl:    aws.String(c.queueURL),
		MessageBody: aws.String(string(body)),
	})
	return err
}

// Receive implementa consumer.Queue con long-polling.
func (c *Client) Receive(ctx context.Context) ([]consumer.Message, error) {
	out, err := c.sqs.ReceiveMessage(ctx, &awssqs.ReceiveMessageInput{
		QueueUrl:            aws.String(c.queueURL),
		MaxNumberOfMessages: 10,
		WaitTimeSeconds:     20,
	})
	if err != nil {
		return nil, err
	}

	msgs := make([]consumer.Message, 0, len(out.Messages))
	for _, m := range out.Messages {
		msgs = append(msgs, consumer.Message{
			Body:          aws.ToString(m.Body),
			ReceiptHandle: aws.ToString(m.ReceiptHandle),
		})
	}
	return msgs, nil
}

func (c *Client) Delete(ctx context.Context, receiptHandle string) error {
	_, err := c.sqs.DeleteMessage(ctx, &awssqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: aws.String(receiptHandle),
	})
	return err
}
