// Package dynamo stores trainees in a DynamoDB table keyed by a numeric "id".
//
// Ids come from an atomic counter kept in the same table under id 0.
// Searches scan the table and filter client-side because DynamoDB has no
// case-insensitive comparison.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/survey/backend/internal/domain"
	"github.com/survey/backend/internal/service/trainee"
)

const counterID = 0

// API is the subset of *dynamodb.Client the repository uses.
type API interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// item is the stored shape of a trainee.
type item struct {
	ID          int    `dynamodbav:"id"`
	Lastname    string `dynamodbav:"lastname"`
	Firstname   string `dynamodbav:"firstname"`
	Email       string `dynamodbav:"email"`
	PhoneNumber string `dynamodbav:"phone_number"`
	Birthdate   string `dynamodbav:"birthdate,omitempty"`
}

func toItem(t domain.Trainee) item {
	it := item{
		ID:          t.ID,
		Lastname:    t.Lastname,
		Firstname:   t.Firstname,
		Email:       t.Email,
		PhoneNumber: t.PhoneNumber,
	}
	if t.Birthdate != nil {
		it.Birthdate = t.Birthdate.String()
	}
	return it
}

func (it item) toTrainee() (domain.Trainee, error) {
	t := domain.Trainee{
		ID:          it.ID,
		Lastname:    it.Lastname,
		Firstname:   it.Firstname,
		Email:       it.Email,
		PhoneNumber: it.PhoneNumber,
	}
	if it.Birthdate != "" {
		bd, err := domain.ParseDate(it.Birthdate)
		if err != nil {
			return t, fmt.Errorf("trainee %d: %w", it.ID, err)
		}
		t.Birthdate = &bd
	}
	return t, nil
}

// TraineeRepo implements trainee.Repository against DynamoDB.
type TraineeRepo struct {
	client    API
	tableName string
}

// NewTraineeRepo creates a DynamoDB-backed trainee repository.
func NewTraineeRepo(client API, tableName string) *TraineeRepo {
	return &TraineeRepo{client: client, tableName: tableName}
}

func key(id int) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberN{Value: strconv.Itoa(id)},
	}
}

// FindAll scans the whole table, excluding the id counter.
func (r *TraineeRepo) FindAll(ctx context.Context) ([]domain.Trainee, error) {
	return r.scan(ctx, func(domain.Trainee) bool { return true })
}

// FindByID does a consistent GetItem. Returns trainee.ErrNotFound for a
// missing item or the counter id.
func (r *TraineeRepo) FindByID(ctx context.Context, id int) (*domain.Trainee, error) {
	if id == counterID {
		return nil, trainee.ErrNotFound
	}
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            key(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get trainee %d: %w", id, err)
	}
	if len(out.Item) == 0 {
		return nil, trainee.ErrNotFound
	}
	var it item
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, fmt.Errorf("unmarshaling trainee %d: %w", id, err)
	}
	t, err := it.toTrainee()
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Search scans and filters client-side with case-insensitive equality.
func (r *TraineeRepo) Search(ctx context.Context, f trainee.SearchFilter) ([]domain.Trainee, error) {
	return r.scan(ctx, func(t domain.Trainee) bool {
		if f.Lastname != "" && !strings.EqualFold(t.Lastname, f.Lastname) {
			return false
		}
		if f.Firstname != "" && !strings.EqualFold(t.Firstname, f.Firstname) {
			return false
		}
		return true
	})
}

// Create allocates an id from the counter and puts the item if that id is free.
func (r *TraineeRepo) Create(ctx context.Context, t *domain.Trainee) error {
	id, err := r.nextID(ctx)
	if err != nil {
		return err
	}
	t.ID = id
	if err := r.put(ctx, *t, "attribute_not_exists(id)"); err != nil {
		return fmt.Errorf("insert trainee: %w", err)
	}
	return nil
}

// Update puts the item only if it already exists.
func (r *TraineeRepo) Update(ctx context.Context, t *domain.Trainee) error {
	if t.ID == counterID {
		return trainee.ErrNotFound
	}
	err := r.put(ctx, *t, "attribute_exists(id)")
	if isConditionFailed(err) {
		return trainee.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update trainee %d: %w", t.ID, err)
	}
	return nil
}

// Delete removes the item only if it exists.
func (r *TraineeRepo) Delete(ctx context.Context, id int) error {
	if id == counterID {
		return trainee.ErrNotFound
	}
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 key(id),
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	if isConditionFailed(err) {
		return trainee.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete trainee %d: %w", id, err)
	}
	return nil
}

func (r *TraineeRepo) put(ctx context.Context, t domain.Trainee, condition string) error {
	av, err := attributevalue.MarshalMap(toItem(t))
	if err != nil {
		return fmt.Errorf("marshaling item: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String(condition),
	})
	return err
}

// nextID atomically increments the counter item and returns the new value.
func (r *TraineeRepo) nextID(ctx context.Context) (int, error) {
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.tableName),
		Key:              key(counterID),
		UpdateExpression: aws.String("ADD seq :one"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, fmt.Errorf("allocating trainee id: %w", err)
	}
	var counter struct {
		Seq int `dynamodbav:"seq"`
	}
	if err := attributevalue.UnmarshalMap(out.Attributes, &counter); err != nil {
		return 0, fmt.Errorf("reading trainee counter: %w", err)
	}
	return counter.Seq, nil
}

func (r *TraineeRepo) scan(ctx context.Context, keep func(domain.Trainee) bool) ([]domain.Trainee, error) {
	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:        aws.String(r.tableName),
		FilterExpression: aws.String("id <> :counter"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":counter": &types.AttributeValueMemberN{Value: strconv.Itoa(counterID)},
		},
	})

	out := []domain.Trainee{}
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scanning trainees: %w", err)
		}
		var items []item
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, fmt.Errorf("unmarshaling trainees: %w", err)
		}
		for _, it := range items {
			t, err := it.toTrainee()
			if err != nil {
				return nil, err
			}
			if keep(t) {
				out = append(out, t)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}
