package dynamo

import (
	"context"
	"errors"
	"time"

	"medication-dose-tracker/internal/domain/doses"
	"medication-dose-tracker/internal/platform/table"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// batchWriteSize es el máximo de items por BatchWriteItem.
const batchWriteSize = 25

type DosesRepo struct {
	c *Client
}

func NewDosesRepo(c *Client) *DosesRepo {
	return &DosesRepo{c: c}
}

// BatchCreate escribe en chunks de batchWriteSize. No hay atomicidad
// entre chunks: si un chunk falla los anteriores ya quedaron escritos.
func (r *DosesRepo) BatchCreate(ctx context.Context, items []doses.Dose) error {
	for start := 0; start < len(items); start += batchWriteSize {
		end := min(start+batchWriteSize, len(items))

		requests := make([]ddbtypes.WriteRequest, 0, end-start)
		for _, d := range items[start:end] {
			av, err := attributevalue.MarshalMap(toDoseItem(d))
			if err != nil {
				return err
			}
			requests = append(requests, ddbtypes.WriteRequest{
				PutRequest: &ddbtypes.PutRequest{Item: av},
			})
		}

		if err := r.batchWrite(ctx, requests); err != nil {
			return err
		}
	}

	return nil
}

// batchWrite reintenta los UnprocessedItems que DynamoDB devuelve
// por throttling.
func (r *DosesRepo) batchWrite(ctx context.Context, requests []ddbtypes.WriteRequest) error {
	pending := requests

	for attempt := 0; len(pending) > 0 && attempt < 4; attempt++ {
		res, err := r.c.db.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]ddbtypes.WriteRequest{
				r.c.table: pending,
			},
		})
		if err != nil {
			return err
		}
		pending = res.UnprocessedItems[r.c.table]
	}

	if len(pending) > 0 {
		return errors.New("batch write: unprocessed items after retries")
	}
	return nil
}

func (r *DosesRepo) ListUpcoming(ctx context.Context, careRecipientID string, from time.Time) ([]doses.Dose, error) {
	values, err := attributevalue.MarshalMap(map[string]any{
		":pk":       table.CarePK(careRecipientID),
		":skPrefix": table.DoseSKPrefix(),
		":status":   string(doses.StatusUpcoming),
		":now":      table.FormatTimestamp(from),
	})
	if err != nil {
		return nil, err
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.c.table),
		KeyConditionExpression:    aws.String("PK = :pk AND begins_with(SK, :skPrefix)"),
		FilterExpression:          aws.String("#status = :status AND dueAt >= :now"),
		ExpressionAttributeNames:  map[string]string{"#status": "status"},
		ExpressionAttributeValues: values,
	}

	var out []doses.Dose
	for {
		res, err := r.c.db.Query(ctx, input)
		if err != nil {
			return nil, err
		}

		for _, raw := range res.Items {
			var it doseItem
			if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
				return nil, err
			}
			d, err := fromDoseItem(it)
			if err != nil {
				return nil, err
			}
			out = append(out, d)
		}

		if res.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = res.LastEvaluatedKey
	}

	return out, nil
}

// MarkTaken es el único write condicional del sistema: SET status/takenAt
// solo si el status actual es UPCOMING. La condición fallida (dosis ausente
// o ya tomada) se traduce a doses.ErrNotFound, no a error de infra.
func (r *DosesRepo) MarkTaken(ctx context.Context, careRecipientID, medicationID string, dueAt, takenAt time.Time) (doses.Dose, error) {
	key, err := attributevalue.MarshalMap(map[string]string{
		"PK": table.CarePK(careRecipientID),
		"SK": table.DoseSK(medicationID, dueAt),
	})
	if err != nil {
		return doses.Dose{}, err
	}

	now := table.FormatTimestamp(takenAt)
	values, err := attributevalue.MarshalMap(map[string]any{
		":status":    string(doses.StatusTaken),
		":takenAt":   now,
		":updatedAt": now,
		":upcoming":  string(doses.StatusUpcoming),
	})
	if err != nil {
		return doses.Dose{}, err
	}

	out, err := r.c.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.c.table),
		Key:                       key,
		UpdateExpression:          aws.String("SET #status = :status, takenAt = :takenAt, updatedAt = :updatedAt"),
		ConditionExpression:       aws.String("#status = :upcoming"),
		ExpressionAttributeNames:  map[string]string{"#status": "status"},
		ExpressionAttributeValues: values,
		ReturnValues:              ddbtypes.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *ddbtypes.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return doses.Dose{}, doses.ErrNotFound
		}
		return doses.Dose{}, err
	}

	var it doseItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &it); err != nil {
		return doses.Dose{}, err
	}
	return fromDoseItem(it)
}
