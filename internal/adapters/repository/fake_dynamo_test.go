package repository_test

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamo is an in-memory stand-in for the operations DynamoStore uses.
// Scans return pages of two items to exercise pagination.
type fakeDynamo struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]types.AttributeValue
	fail   error
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{tables: make(map[string]map[string]map[string]types.AttributeValue)}
}

func (f *fakeDynamo) table(name string) map[string]map[string]types.AttributeValue {
	t, ok := f.tables[name]
	if !ok {
		t = make(map[string]map[string]types.AttributeValue)
		f.tables[name] = t
	}
	return t
}

func keyString(av types.AttributeValue) string {
	if s, ok := av.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	t := f.table(aws.ToString(in.TableName))
	pk := in.ExpressionAttributeNames["#pk"]
	key := keyString(in.Item[pk])
	if _, exists := t[key]; exists && in.ConditionExpression != nil {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	}
	t[key] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	t := f.table(aws.ToString(in.TableName))
	for _, v := range in.Key {
		return &dynamodb.GetItemOutput{Item: t[keyString(v)]}, nil
	}
	return &dynamodb.GetItemOutput{}, nil
}

func (f *fakeDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	t := f.table(aws.ToString(in.TableName))
	key := keyString(in.Key["name"])
	item, ok := t[key]
	if !ok {
		item = map[string]types.AttributeValue{"name": in.Key["name"]}
		t[key] = item
	}
	var cur int64
	if n, ok := item["last_no"].(*types.AttributeValueMemberN); ok {
		cur, _ = strconv.ParseInt(n.Value, 10, 64)
	}
	inc, _ := strconv.ParseInt(in.ExpressionAttributeValues[":one"].(*types.AttributeValueMemberN).Value, 10, 64)
	next := &types.AttributeValueMemberN{Value: strconv.FormatInt(cur+inc, 10)}
	item["last_no"] = next
	return &dynamodb.UpdateItemOutput{Attributes: map[string]types.AttributeValue{"last_no": next}}, nil
}

func (f *fakeDynamo) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	t := f.table(aws.ToString(in.TableName))
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	startAfter := ""
	if in.ExclusiveStartKey != nil {
		startAfter = keyString(in.ExclusiveStartKey["quotation_number"])
	}
	const pageSize = 2
	out := &dynamodb.ScanOutput{}
	for _, k := range keys {
		if startAfter != "" && k <= startAfter {
			continue
		}
		if len(out.Items) == pageSize {
			last := out.Items[len(out.Items)-1]
			out.LastEvaluatedKey = map[string]types.AttributeValue{"quotation_number": last["quotation_number"]}
			break
		}
		out.Items = append(out.Items, t[k])
	}
	out.Count = int32(len(out.Items))
	if in.Select == types.SelectCount {
		out.Items = nil
	}
	return out, nil
}
