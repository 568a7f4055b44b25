package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DynamoStore keeps the catalog and orders in DynamoDB. Stock decrements use
// TransactWriteItems so the batch applies entirely or not at all.
type DynamoStore struct {
	client        *dynamodb.Client
	productsTable string
	ordersTable   string
}

// dynamoProduct is the DynamoDB item structure for catalog documents.
// Amounts travel as strings to keep full decimal precision.
type dynamoProduct struct {
	ID          string `dynamodbav:"id"`
	Name        string `dynamodbav:"name"`
	Price       string `dynamodbav:"price"`
	Image       string `dynamodbav:"image"`
	Category    string `dynamodbav:"category"`
	Description string `dynamodbav:"description,omitempty"`
	Stock       int    `dynamodbav:"stock"`
}

// dynamoOrder is the DynamoDB item structure for order documents.
type dynamoOrder struct {
	ID              string `dynamodbav:"id"`
	Items           string `dynamodbav:"items"`
	Subtotal        string `dynamodbav:"subtotal"`
	Discount        string `dynamodbav:"discount,omitempty"`
	Total           string `dynamodbav:"total"`
	Status          string `dynamodbav:"status"`
	Source          string `dynamodbav:"source"`
	CustomerMessage string `dynamodbav:"customer_message"`
	CreatedAt       string `dynamodbav:"created_at"`
}

func NewDynamoStore(client *dynamodb.Client, productsTable, ordersTable string) *DynamoStore {
	return &DynamoStore{
		client:        client,
		productsTable: productsTable,
		ordersTable:   ordersTable,
	}
}

func (s *DynamoStore) ListProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	var startKey map[string]types.AttributeValue

	for {
		out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.productsTable),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("scan products: %w", err)
		}

		for _, item := range out.Items {
			var rec dynamoProduct
			if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
				return nil, fmt.Errorf("unmarshal product: %w", err)
			}
			p, err := rec.toProduct()
			if err != nil {
				return nil, err
			}
			products = append(products, *p)
		}

		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	return products, nil
}

func (s *DynamoStore) GetProduct(ctx context.Context, id string) (*Product, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.productsTable),
		Key:       productKey(id),
	})
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	if out.Item == nil {
		return nil, ErrProductNotFound
	}

	var rec dynamoProduct
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal product %s: %w", id, err)
	}
	return rec.toProduct()
}

func (s *DynamoStore) PutProduct(ctx context.Context, p Product) error {
	item, err := attributevalue.MarshalMap(dynamoProduct{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price.String(),
		Image:       p.Image,
		Category:    p.Category,
		Description: p.Description,
		Stock:       p.Stock,
	})
	if err != nil {
		return fmt.Errorf("marshal product %s: %w", p.ID, err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.productsTable),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put product %s: %w", p.ID, err)
	}
	return nil
}

func (s *DynamoStore) AddStock(ctx context.Context, productID string, quantity int) error {
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.productsTable),
		Key:                 productKey(productID),
		UpdateExpression:    aws.String("SET stock = stock + :q"),
		ConditionExpression: aws.String("attribute_exists(id)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":q": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", quantity)},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrProductNotFound
		}
		return fmt.Errorf("add stock for %s: %w", productID, err)
	}
	return nil
}

// DecrementStock builds one transaction with a conditional update per
// product. DynamoDB cancels the whole transaction when any condition fails,
// which gives the all-or-nothing contract.
func (s *DynamoStore) DecrementStock(ctx context.Context, decs []StockDecrement) error {
	if len(decs) == 0 {
		return nil
	}

	items := make([]types.TransactWriteItem, 0, len(decs))
	for _, dec := range decs {
		items = append(items, types.TransactWriteItem{
			Update: &types.Update{
				TableName:           aws.String(s.productsTable),
				Key:                 productKey(dec.ProductID),
				UpdateExpression:    aws.String("SET stock = stock - :q"),
				ConditionExpression: aws.String("attribute_exists(id) AND stock >= :q"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":q": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", dec.Quantity)},
				},
			},
		})
	}

	_, err := s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err != nil {
		var canceled *types.TransactionCanceledException
		if errors.As(err, &canceled) {
			for i, reason := range canceled.CancellationReasons {
				if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
					return fmt.Errorf("%w: %s", ErrInsufficientStock, decs[i].ProductID)
				}
			}
		}
		return fmt.Errorf("decrement stock transaction: %w", err)
	}
	return nil
}

func (s *DynamoStore) AddOrder(ctx context.Context, o Order) (*Order, error) {
	o.ID = uuid.New().String()
	o.CreatedAt = time.Now().UTC()

	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return nil, err
	}
	var discountJSON string
	if o.Discount != nil {
		b, err := json.Marshal(o.Discount)
		if err != nil {
			return nil, err
		}
		discountJSON = string(b)
	}

	item, err := attributevalue.MarshalMap(dynamoOrder{
		ID:              o.ID,
		Items:           string(itemsJSON),
		Subtotal:        o.Subtotal.String(),
		Discount:        discountJSON,
		Total:           o.Total.String(),
		Status:          o.Status,
		Source:          o.Source,
		CustomerMessage: o.CustomerMessage,
		CreatedAt:       o.CreatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal order: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.ordersTable),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return nil, fmt.Errorf("put order: %w", err)
	}
	return &o, nil
}

func productKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

func (r dynamoProduct) toProduct() (*Product, error) {
	price, err := decimal.NewFromString(r.Price)
	if err != nil {
		return nil, fmt.Errorf("parse price for %s: %w", r.ID, err)
	}
	return &Product{
		ID:          r.ID,
		Name:        r.Name,
		Price:       price,
		Image:       r.Image,
		Category:    r.Category,
		Description: r.Description,
		Stock:       r.Stock,
	}, nil
}
