package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/okian/courtquote/internal/domain/model"
)

// Default DynamoDB table names.
const (
	DefaultQuotationsTable = "quotations"
	DefaultCountersTable   = "counters"
)

// DynamoAPI is the subset of the DynamoDB client used by DynamoStore.
type DynamoAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, opts ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

type quotationItem struct {
	QuotationNumber string  `dynamodbav:"quotation_number"`
	ID              string  `dynamodbav:"id"`
	Status          string  `dynamodbav:"status"`
	Sport           string  `dynamodbav:"sport"`
	ClientName      string  `dynamodbav:"client_name"`
	TotalCost       float64 `dynamodbav:"total_cost"`
	CreatedAt       string  `dynamodbav:"created_at"`
	Document        string  `dynamodbav:"document"`
}

// DynamoStore persists quotations in DynamoDB.
//
// Table requirements:
//   - quotations table, PK: quotation_number (string)
//   - counters table, PK: name (string)
//
// The quotation number is the partition key so a conditional put rejects
// duplicates without a second index.
type DynamoStore struct {
	ddb             DynamoAPI
	quotationsTable string
	countersTable   string
	seeded          atomic.Bool
}

// NewDynamoStore wraps a DynamoDB client. Empty table names use the defaults.
func NewDynamoStore(ddb DynamoAPI, quotationsTable, countersTable string) *DynamoStore {
	if quotationsTable == "" {
		quotationsTable = DefaultQuotationsTable
	}
	if countersTable == "" {
		countersTable = DefaultCountersTable
	}
	return &DynamoStore{ddb: ddb, quotationsTable: quotationsTable, countersTable: countersTable}
}

// NewDynamoDBConfig builds an AWS config for region. When endpoint is set
// (DynamoDB Local) static credentials from the environment are used, since
// the local server does not validate them but the SDK requires them.
// The endpoint itself is applied per client, see NewDynamoDBClient.
func NewDynamoDBConfig(ctx context.Context, region, endpoint string) (aws.Config, error) {
	if region == "" {
		region = getenvDefault("AWS_REGION", "us-east-1")
	}
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}
	if endpoint != "" {
		creds := credentials.NewStaticCredentialsProvider(
			getenvDefault("AWS_ACCESS_KEY_ID", "local"),
			getenvDefault("AWS_SECRET_ACCESS_KEY", "local"),
			"",
		)
		loadOpts = append(loadOpts, config.WithCredentialsProvider(creds))
	}
	return config.LoadDefaultConfig(ctx, loadOpts...)
}

// NewDynamoDBClient builds a DynamoDB client from cfg, pointed at endpoint
// when one is given.
func NewDynamoDBClient(cfg aws.Config, endpoint string) *dynamodb.Client {
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// NextSequence implements Sequencer with an atomic ADD on the counter item.
// A missing counter is first seeded with the number of stored quotations.
func (s *DynamoStore) NextSequence(ctx context.Context) (n int64, err error) {
	defer observe("sequence", time.Now(), &err)

	if err := s.seedSequence(ctx); err != nil {
		return 0, err
	}
	out, err := s.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.countersTable),
		Key: map[string]types.AttributeValue{
			"name": &types.AttributeValueMemberS{Value: SequenceName},
		},
		UpdateExpression:         aws.String("ADD #last_no :one"),
		ExpressionAttributeNames: map[string]string{"#last_no": "last_no"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, fmt.Errorf("advance sequence %q: %w", SequenceName, err)
	}
	v, ok := out.Attributes["last_no"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("sequence %q: missing last_no in response", SequenceName)
	}
	n, err = strconv.ParseInt(v.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("sequence %q: %w", SequenceName, err)
	}
	return n, nil
}

func (s *DynamoStore) seedSequence(ctx context.Context) error {
	if s.seeded.Load() {
		return nil
	}
	key := map[string]types.AttributeValue{
		"name": &types.AttributeValueMemberS{Value: SequenceName},
	}
	out, err := s.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.countersTable),
		Key:            key,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("read sequence %q: %w", SequenceName, err)
	}
	if len(out.Item) == 0 {
		count, err := s.CountExisting(ctx)
		if err != nil {
			return fmt.Errorf("seed sequence %q: %w", SequenceName, err)
		}
		_, err = s.ddb.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(s.countersTable),
			Item: map[string]types.AttributeValue{
				"name":    key["name"],
				"last_no": &types.AttributeValueMemberN{Value: strconv.FormatInt(count, 10)},
			},
			ConditionExpression:      aws.String("attribute_not_exists(#pk)"),
			ExpressionAttributeNames: map[string]string{"#pk": "name"},
		})
		var ccf *types.ConditionalCheckFailedException
		if err != nil && !errors.As(err, &ccf) {
			return fmt.Errorf("seed sequence %q: %w", SequenceName, err)
		}
	}
	s.seeded.Store(true)
	return nil
}

// CountExisting implements Store.
func (s *DynamoStore) CountExisting(ctx context.Context) (n int64, err error) {
	defer observe("count", time.Now(), &err)

	var start map[string]types.AttributeValue
	for {
		out, err := s.ddb.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.quotationsTable),
			Select:            types.SelectCount,
			ExclusiveStartKey: start,
		})
		if err != nil {
			return 0, fmt.Errorf("count quotations: %w", err)
		}
		n += int64(out.Count)
		if len(out.LastEvaluatedKey) == 0 {
			return n, nil
		}
		start = out.LastEvaluatedKey
	}
}

// Insert implements Store.
func (s *DynamoStore) Insert(ctx context.Context, q model.Quotation) (err error) {
	defer observe("insert", time.Now(), &err)

	doc, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("encode quotation: %w", err)
	}
	av, err := attributevalue.MarshalMap(quotationItem{
		QuotationNumber: q.QuotationNumber,
		ID:              q.ID,
		Status:          string(q.Status),
		Sport:           q.ProjectInfo.Sport,
		ClientName:      q.ClientInfo.Name,
		TotalCost:       q.Pricing.TotalCost,
		CreatedAt:       q.CreatedAt.UTC().Format(createdAtLayout),
		Document:        string(doc),
	})
	if err != nil {
		return fmt.Errorf("marshal quotation: %w", err)
	}

	_, err = s.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.quotationsTable),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#pk)"),
		ExpressionAttributeNames: map[string]string{
			"#pk": "quotation_number",
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("%w: %s", ErrDuplicateKey, q.QuotationNumber)
		}
		return fmt.Errorf("put quotation: %w", err)
	}
	return nil
}

// Get implements Store.
func (s *DynamoStore) Get(ctx context.Context, number string) (q model.Quotation, err error) {
	defer observe("get", time.Now(), &err)

	out, err := s.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.quotationsTable),
		Key: map[string]types.AttributeValue{
			"quotation_number": &types.AttributeValueMemberS{Value: number},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return model.Quotation{}, fmt.Errorf("get quotation: %w", err)
	}
	if len(out.Item) == 0 {
		return model.Quotation{}, ErrNotFound
	}
	return decodeItem(out.Item)
}

// List implements Store. DynamoDB has no global ordering, so the table is
// scanned and sorted by creation time.
func (s *DynamoStore) List(ctx context.Context, limit int) (out []model.Quotation, err error) {
	defer observe("list", time.Now(), &err)

	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	var items []quotationItem
	var start map[string]types.AttributeValue
	for {
		page, err := s.ddb.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.quotationsTable),
			ExclusiveStartKey: start,
		})
		if err != nil {
			return nil, fmt.Errorf("scan quotations: %w", err)
		}
		var batch []quotationItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("unmarshal quotations: %w", err)
		}
		items = append(items, batch...)
		if len(page.LastEvaluatedKey) == 0 {
			break
		}
		start = page.LastEvaluatedKey
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt != items[j].CreatedAt {
			return items[i].CreatedAt > items[j].CreatedAt
		}
		return items[i].QuotationNumber > items[j].QuotationNumber
	})
	if len(items) > limit {
		items = items[:limit]
	}

	out = make([]model.Quotation, 0, len(items))
	for _, it := range items {
		var q model.Quotation
		if err := json.Unmarshal([]byte(it.Document), &q); err != nil {
			return nil, fmt.Errorf("decode quotation %s: %w", it.QuotationNumber, err)
		}
		out = append(out, q)
	}
	return out, nil
}

// Close is a no-op; the SDK client holds no resources that need releasing.
func (s *DynamoStore) Close() error { return nil }

func decodeItem(av map[string]types.AttributeValue) (model.Quotation, error) {
	var it quotationItem
	if err := attributevalue.UnmarshalMap(av, &it); err != nil {
		return model.Quotation{}, fmt.Errorf("unmarshal quotation: %w", err)
	}
	var q model.Quotation
	if err := json.Unmarshal([]byte(it.Document), &q); err != nil {
		return model.Quotation{}, fmt.Errorf("decode quotation %s: %w", it.QuotationNumber, err)
	}
	return q, nil
}
