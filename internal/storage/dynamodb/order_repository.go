// Package dynamodb хранит заказы в таблице DynamoDB (ключ партиции "id").
// Optimistic locking выполняется условными записями по атрибуту version.
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	cloudaws "github.com/vladislavdragonenkov/order-service/internal/cloud/aws"
	"github.com/vladislavdragonenkov/order-service/internal/domain"
)

const opTimeout = 5 * time.Second

// orderItem — представление заказа в DynamoDB.
type orderItem struct {
	ID            string     `dynamodbav:"id"`
	CustomerID    string     `dynamodbav:"customer_id"`
	Status        string     `dynamodbav:"status"`
	PaymentStatus string     `dynamodbav:"payment_status"`
	Lines         []lineItem `dynamodbav:"lines"`
	Version       int64      `dynamodbav:"version"`
	CreatedAt     time.Time  `dynamodbav:"created_at"`
	UpdatedAt     time.Time  `dynamodbav:"updated_at"`
}

type lineItem struct {
	ID        string `dynamodbav:"id"`
	ProductID string `dynamodbav:"product_id"`
}

// OrderRepository — DynamoDB-реализация domain.OrderRepository.
type OrderRepository struct {
	client    cloudaws.DynamoDBAPI
	tableName string
}

// NewOrderRepository создаёт репозиторий поверх таблицы tableName.
func NewOrderRepository(client cloudaws.DynamoDBAPI, tableName string) *OrderRepository {
	return &OrderRepository{client: client, tableName: tableName}
}

// Create кладёт заказ, если элемента с таким id ещё нет.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	item, err := attributevalue.MarshalMap(toItem(order.Snapshot()))
	if err != nil {
		return fmt.Errorf("marshal order item: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &r.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(id)"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return domain.ErrOrderAlreadyExists
		}
		return fmt.Errorf("put order item: %w", err)
	}
	return nil
}

// FindByID читает заказ строго консистентным чтением.
func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	item, err := r.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrOrderNotFound
	}
	return domain.RestoreOrder(fromItem(*item)), nil
}

// GetAll сканирует таблицу постранично и упорядочивает заказы по времени создания.
func (r *OrderRepository) GetAll(ctx context.Context) ([]*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var (
		items []orderItem
		start map[string]types.AttributeValue
	)
	for {
		out, err := r.client.Scan(ctx, &dyn.ScanInput{
			TableName:         &r.tableName,
			ExclusiveStartKey: start,
			ConsistentRead:    awsBool(true),
		})
		if err != nil {
			return nil, fmt.Errorf("scan orders: %w", err)
		}
		var page []orderItem
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshal orders page: %w", err)
		}
		items = append(items, page...)
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		start = out.LastEvaluatedKey
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})

	orders := make([]*domain.Order, 0, len(items))
	for _, item := range items {
		orders = append(orders, domain.RestoreOrder(fromItem(item)))
	}
	return orders, nil
}

// Save перезаписывает заказ при совпадении версии и увеличивает её.
func (r *OrderRepository) Save(ctx context.Context, order *domain.Order) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	snapshot := order.Snapshot()
	next := toItem(snapshot)
	next.Version = snapshot.Version + 1

	item, err := attributevalue.MarshalMap(next)
	if err != nil {
		return fmt.Errorf("marshal order item: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:                &r.tableName,
		Item:                     item,
		ConditionExpression:      awsString("attribute_exists(id) AND #v = :expected"),
		ExpressionAttributeNames: map[string]string{"#v": "version"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":expected": &types.AttributeValueMemberN{Value: strconv.FormatInt(snapshot.Version, 10)},
		},
	})
	if err != nil {
		if !isConditionFailed(err) {
			return fmt.Errorf("put order item: %w", err)
		}
		existing, getErr := r.get(ctx, snapshot.ID)
		if getErr != nil {
			return getErr
		}
		if existing == nil {
			return domain.ErrOrderNotFound
		}
		return domain.ErrOrderVersionConflict
	}

	order.AdvanceVersion()
	return nil
}

// Ping проверяет доступность таблицы чтением одного элемента.
func (r *OrderRepository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	limit := int32(1)
	if _, err := r.client.Scan(ctx, &dyn.ScanInput{TableName: &r.tableName, Limit: &limit}); err != nil {
		return fmt.Errorf("ping dynamodb table %s: %w", r.tableName, err)
	}
	return nil
}

func (r *OrderRepository) get(ctx context.Context, id string) (*orderItem, error) {
	out, err := r.client.GetItem(ctx, &dyn.GetItemInput{
		TableName:      &r.tableName,
		Key:            map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}},
		ConsistentRead: awsBool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get order item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var item orderItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("unmarshal order item: %w", err)
	}
	return &item, nil
}

func toItem(s domain.OrderSnapshot) orderItem {
	lines := make([]lineItem, 0, len(s.Lines))
	for _, l := range s.Lines {
		lines = append(lines, lineItem{ID: l.ID, ProductID: l.ProductID})
	}
	return orderItem{
		ID:            s.ID,
		CustomerID:    s.CustomerID,
		Status:        s.Status,
		PaymentStatus: s.PaymentStatus,
		Lines:         lines,
		Version:       s.Version,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func fromItem(item orderItem) domain.OrderSnapshot {
	lines := make([]domain.OrderLineSnapshot, 0, len(item.Lines))
	for _, l := range item.Lines {
		lines = append(lines, domain.OrderLineSnapshot{ID: l.ID, ProductID: l.ProductID})
	}
	return domain.OrderSnapshot{
		ID:            item.ID,
		CustomerID:    item.CustomerID,
		Status:        item.Status,
		PaymentStatus: item.PaymentStatus,
		Lines:         lines,
		Version:       item.Version,
		CreatedAt:     item.CreatedAt.UTC(),
		UpdatedAt:     item.UpdatedAt.UTC(),
	}
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

func awsString(s string) *string { return &s }
func awsBool(b bool) *bool       { return &b }

var _ domain.OrderRepository = (*OrderRepository)(nil)
