package leads

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockDynamo struct {
	putInput  *dynamodb.PutItemInput
	putErr    error
	getOutput *dynamodb.GetItemOutput
	getErr    error
}

func (m *mockDynamo) PutItem(ctx context.Context, input *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.putInput = input
	return &dynamodb.PutItemOutput{}, m.putErr
}

func (m *mockDynamo) GetItem(ctx context.Context, input *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.getOutput == nil {
		return &dynamodb.GetItemOutput{}, nil
	}
	return m.getOutput, nil
}

func TestDynamoRepositoryRoundTrip(t *testing.T) {
	client := &mockDynamo{}
	repo := NewDynamoRepository(client, "leads")

	lead, err := repo.Create(context.Background(), &CreateLeadRequest{
		Name: "Ana", Email: "ana@example.com", Phone: "11988887777", Position: "CTO",
		BirthDate: "1980-01-01", Message: "Mensagem longa", Fbclid: "fb-1",
	})
	require.NoError(t, err)
	require.NotNil(t, client.putInput)
	assert.Equal(t, "attribute_not_exists(id)", *client.putInput.ConditionExpression)

	item := client.putInput.Item
	assert.Equal(t, lead.ID, item["id"].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, "Ana", item["name"].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, "fb-1", item["fbclid"].(*types.AttributeValueMemberS).Value)
	_, hasSource := item["utm_source"]
	assert.False(t, hasSource, "empty attribution should not be written")

	client.getOutput = &dynamodb.GetItemOutput{Item: item}
	got, err := repo.GetByID(context.Background(), lead.ID)
	require.NoError(t, err)
	assert.Equal(t, lead.CreateLeadRequest, got.CreateLeadRequest)
	assert.True(t, lead.CreatedAt.Equal(got.CreatedAt))
}

func TestDynamoRepositoryErrors(t *testing.T) {
	repo := NewDynamoRepository(&mockDynamo{}, "leads")
	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrLeadNotFound)

	boom := errors.New("throttled")
	repo = NewDynamoRepository(&mockDynamo{putErr: boom, getErr: boom}, "leads")
	_, err = repo.Create(context.Background(), &CreateLeadRequest{
		Name: "Ana", Email: "a@b.co", Phone: "1", Position: "x", BirthDate: "y", Message: "z",
	})
	assert.ErrorIs(t, err, boom)
	_, err = repo.GetByID(context.Background(), "id")
	assert.ErrorIs(t, err, boom)

	assert.Panics(t, func() { NewDynamoRepository(nil, "leads") })
	assert.Panics(t, func() { NewDynamoRepository(&mockDynamo{}, "") })
}
