package dynamodb

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/order-service/internal/domain"
)

// mockDynamo хранит элементы одной таблицы и понимает условия репозитория.
type mockDynamo struct {
	mu       sync.Mutex
	items    map[string]map[string]types.AttributeValue
	pageSize int
	putErr   error
	scanErr  error
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{items: map[string]map[string]types.AttributeValue{}}
}

func (m *mockDynamo) PutItem(_ context.Context, params *dyn.PutItemInput, _ ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return nil, m.putErr
	}

	id := params.Item["id"].(*types.AttributeValueMemberS).Value
	existing, exists := m.items[id]
	if params.ConditionExpression != nil {
		switch *params.ConditionExpression {
		case "attribute_not_exists(id)":
			if exists {
				return nil, &types.ConditionalCheckFailedException{}
			}
		case "attribute_exists(id) AND #v = :expected":
			expected := params.ExpressionAttributeValues[":expected"].(*types.AttributeValueMemberN).Value
			if !exists || existing["version"].(*types.AttributeValueMemberN).Value != expected {
				return nil, &types.ConditionalCheckFailedException{}
			}
		default:
			return nil, errors.New("unexpected condition expression")
		}
	}
	m.items[id] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *mockDynamo) GetItem(_ context.Context, params *dyn.GetItemInput, _ ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := params.Key["id"].(*types.AttributeValueMemberS).Value
	return &dyn.GetItemOutput{Item: m.items[id]}, nil
}

func (m *mockDynamo) Scan(_ context.Context, params *dyn.ScanInput, _ ...func(*dyn.Options)) (*dyn.ScanOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.scanErr != nil {
		return nil, m.scanErr
	}

	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	startIdx := 0
	if params.ExclusiveStartKey != nil {
		last := params.ExclusiveStartKey["id"].(*types.AttributeValueMemberS).Value
		startIdx = sort.SearchStrings(keys, last) + 1
	}
	end := len(keys)
	if m.pageSize > 0 && startIdx+m.pageSize < end {
		end = startIdx + m.pageSize
	}

	out := &dyn.ScanOutput{}
	for _, k := range keys[startIdx:end] {
		out.Items = append(out.Items, m.items[k])
	}
	if end < len(keys) {
		out.LastEvaluatedKey = map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: keys[end-1]}}
	}
	return out, nil
}

func sampleOrder(id string, products ...string) *domain.Order {
	order := domain.NewOrder(domain.NewOrderParams{
		ID:         domain.EntityIDFrom(id),
		CustomerID: domain.EntityIDFrom("12345678901"),
	})
	lines := domain.NewOrderLineList()
	for _, p := range products {
		lines.Add(domain.NewOrderLine(order.ID(), domain.EntityIDFrom(p)))
	}
	order.ReplaceLines(lines)
	return order
}

func TestOrderRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(newMockDynamo(), "orders")
	order := sampleOrder("order-1", "product-1", "product-2")

	require.NoError(t, repo.Create(ctx, order))
	assert.ErrorIs(t, repo.Create(ctx, sampleOrder("order-1")), domain.ErrOrderAlreadyExists)

	got, err := repo.FindByID(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, order.Snapshot(), got.Snapshot())

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestOrderRepository_SaveOptimisticLocking(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(newMockDynamo(), "orders")
	require.NoError(t, repo.Create(ctx, sampleOrder("order-1")))

	first, err := repo.FindByID(ctx, "order-1")
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, "order-1")
	require.NoError(t, err)

	require.NoError(t, first.SetStatus(domain.StatusReceived))
	require.NoError(t, repo.Save(ctx, first))
	assert.Equal(t, int64(1), first.Version())

	assert.True(t, domain.IsVersionConflict(repo.Save(ctx, second)))
	assert.ErrorIs(t, repo.Save(ctx, sampleOrder("missing")), domain.ErrOrderNotFound)

	stored, err := repo.FindByID(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReceived, stored.Status())
	assert.Equal(t, int64(1), stored.Version())
}

func TestOrderRepository_GetAllPaginates(t *testing.T) {
	ctx := context.Background()
	client := newMockDynamo()
	client.pageSize = 2
	repo := NewOrderRepository(client, "orders")

	for _, id := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, repo.Create(ctx, sampleOrder(id)))
	}

	orders, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 5)
}

func TestOrderRepository_PutError(t *testing.T) {
	client := newMockDynamo()
	client.putErr = errors.New("throttled")
	repo := NewOrderRepository(client, "orders")

	err := repo.Create(context.Background(), sampleOrder("order-1"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrOrderAlreadyExists)
}

func TestOrderRepository_Ping(t *testing.T) {
	client := newMockDynamo()
	repo := NewOrderRepository(client, "orders")

	require.NoError(t, repo.Ping(context.Background()))

	client.scanErr = errors.New("table not found")
	err := repo.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "orders")
}
