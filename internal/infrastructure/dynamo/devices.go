package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/conference-api/internal/domain"
)

// DeviceRepo provides typed DynamoDB operations for the devices table.
type DeviceRepo struct {
	client    API
	tableName string
}

func NewDeviceRepo(client API, tableName string) *DeviceRepo {
	return &DeviceRepo{client: client, tableName: tableName}
}

func (r *DeviceRepo) Put(ctx context.Context, d *domain.Device) error {
	item, err := attributevalue.MarshalMap(d)
	if err != nil {
		return fmt.Errorf("marshal device: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// FindDevices returns enabled devices owned by one of q.OwnerIDs that match
// q.Criteria. Owners are pushed into the filter while they fit in a single
// IN clause and are always re-checked on the returned items.
func (r *DeviceRepo) FindDevices(ctx context.Context, q domain.DeviceQuery) ([]domain.Device, error) {
	if len(q.OwnerIDs) == 0 {
		return []domain.Device{}, nil
	}
	owners := make(map[string]struct{}, len(q.OwnerIDs))
	for _, id := range q.OwnerIDs {
		owners[id] = struct{}{}
	}

	b := newFilterBuilder().eq("enable", &types.AttributeValueMemberBOOL{Value: true})
	if len(q.OwnerIDs) <= maxInOperands {
		b.in("user_id", q.OwnerIDs)
	}
	b.criteria(q.Criteria, domain.IsDeviceField)
	f, _ := b.build()

	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          aws.String(f.Expr),
		ExpressionAttributeNames:  f.Names,
		ExpressionAttributeValues: f.Values,
	})
	devices := []domain.Device{}
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan devices: %w", err)
		}
		var page []domain.Device
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshal devices: %w", err)
		}
		for _, d := range page {
			if _, ok := owners[d.UserID]; ok {
				devices = append(devices, d)
			}
		}
	}
	return devices, nil
}
