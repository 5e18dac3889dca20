package dynamo

import (
	"context"
	"errors"
	"time"

	"medication-dose-tracker/internal/domain/medications"
	"medication-dose-tracker/internal/platform/table"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// batchGetSize es el máximo de keys por BatchGetItem.
const batchGetSize = 100

type MedicationsRepo struct {
	c *Client
}

func NewMedicationsRepo(c *Client) *MedicationsRepo {
	return &MedicationsRepo{c: c}
}

func (r *MedicationsRepo) Create(ctx context.Context, m medications.Medication) error {
	av, err := attributevalue.MarshalMap(toMedicationItem(m))
	if err != nil {
		return err
	}

	_, err = r.c.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.c.table),
		Item:      av,
	})
	return err
}

func (r *MedicationsRepo) GetByID(ctx context.Context, careRecipientID, medicationID string) (medications.Medication, error) {
	key, err := medicationKey(careRecipientID, medicationID)
	if err != nil {
		return medications.Medication{}, err
	}

	out, err := r.c.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.c.table),
		Key:       key,
	})
	if err != nil {
		return medications.Medication{}, err
	}
	if out.Item == nil {
		return medications.Medication{}, medications.ErrNotFound
	}

	var it medicationItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return medications.Medication{}, err
	}
	return fromMedicationItem(it)
}

func (r *MedicationsRepo) GetByIDs(ctx context.Context, careRecipientID string, medicationIDs []string) ([]medications.Medication, error) {
	if len(medicationIDs) == 0 {
		return nil, nil
	}

	// dedup antes de armar keys
	seen := make(map[string]struct{}, len(medicationIDs))
	keys := make([]map[string]ddbtypes.AttributeValue, 0, len(medicationIDs))
	for _, id := range medicationIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		key, err := medicationKey(careRecipientID, id)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}

	out := make([]medications.Medication, 0, len(keys))
	for start := 0; start < len(keys); start += batchGetSize {
		end := min(start+batchGetSize, len(keys))

		batch, err := r.batchGet(ctx, keys[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
	}

	return out, nil
}

// batchGet resuelve un chunk reintentando las UnprocessedKeys que
// DynamoDB devuelva por throttling. Las keys ausentes se ignoran.
func (r *MedicationsRepo) batchGet(ctx context.Context, keys []map[string]ddbtypes.AttributeValue) ([]medications.Medication, error) {
	out := make([]medications.Medication, 0, len(keys))
	pending := keys

	for attempt := 0; len(pending) > 0 && attempt < 4; attempt++ {
		res, err := r.c.db.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
			RequestItems: map[string]ddbtypes.KeysAndAttributes{
				r.c.table: {Keys: pending},
			},
		})
		if err != nil {
			return nil, err
		}

		for _, raw := range res.Responses[r.c.table] {
			var it medicationItem
			if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
				return nil, err
			}
			m, err := fromMedicationItem(it)
			if err != nil {
				return nil, err
			}
			out = append(out, m)
		}

		pending = res.UnprocessedKeys[r.c.table].Keys
	}

	if len(pending) > 0 {
		return nil, errors.New("batch get: unprocessed keys after retries")
	}
	return out, nil
}

func (r *MedicationsRepo) SetActive(ctx context.Context, careRecipientID, medicationID string, active bool, updatedAt time.Time) (medications.Medication, error) {
	key, err := medicationKey(careRecipientID, medicationID)
	if err != nil {
		return medications.Medication{}, err
	}

	values, err := attributevalue.MarshalMap(map[string]any{
		":active":    active,
		":updatedAt": table.FormatTimestamp(updatedAt),
	})
	if err != nil {
		return medications.Medication{}, err
	}

	out, err := r.c.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.c.table),
		Key:                       key,
		UpdateExpression:          aws.String("SET active = :active, updatedAt = :updatedAt"),
		ConditionExpression:       aws.String("attribute_exists(PK)"),
		ExpressionAttributeValues: values,
		ReturnValues:              ddbtypes.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *ddbtypes.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return medications.Medication{}, medications.ErrNotFound
		}
		return medications.Medication{}, err
	}

	var it medicationItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &it); err != nil {
		return medications.Medication{}, err
	}
	return fromMedicationItem(it)
}

func medicationKey(careRecipientID, medicationID string) (map[string]ddbtypes.AttributeValue, error) {
	return attributevalue.MarshalMap(map[string]string{
		"PK": table.CarePK(careRecipientID),
		"SK": table.MedicationSK(medicationID),
	})
}
