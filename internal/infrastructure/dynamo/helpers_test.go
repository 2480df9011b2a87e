package dynamo

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/conference-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterBuilder_Empty(t *testing.T) {
	_, ok := newFilterBuilder().criteria(nil, domain.IsUserField).build()
	assert.False(t, ok)
}

func TestFilterBuilder_SingleEq(t *testing.T) {
	f, ok := newFilterBuilder().eq("role", &types.AttributeValueMemberS{Value: "speaker"}).build()
	require.True(t, ok)
	assert.Equal(t, "#f0 = :v0", f.Expr)
	assert.Equal(t, map[string]string{"#f0": "role"}, f.Names)
	assert.Equal(t, &types.AttributeValueMemberS{Value: "speaker"}, f.Values[":v0"])
}

func TestFilterBuilder_Criteria_Deterministic(t *testing.T) {
	c := domain.Criteria{"role": "speaker", "email": "a@b.com", "platform": "ios"}
	// Build twice to verify determinism.
	f1, _ := newFilterBuilder().criteria(c, func(string) bool { return true }).build()
	f2, _ := newFilterBuilder().criteria(c, func(string) bool { return true }).build()

	assert.Equal(t, f1.Expr, f2.Expr)
	// Keys must be sorted: email < platform < role
	assert.Equal(t, "email", f1.Names["#f0"])
	assert.Equal(t, "platform", f1.Names["#f1"])
	assert.Equal(t, "role", f1.Names["#f2"])
	assert.Equal(t, "#f0 = :v0 AND #f1 = :v1 AND #f2 = :v2", f1.Expr)
}

func TestFilterBuilder_Criteria_AttributesMap(t *testing.T) {
	c := domain.Criteria{"role": "speaker", "track": "go"}
	f, ok := newFilterBuilder().criteria(c, domain.IsUserField).build()
	require.True(t, ok)

	assert.Equal(t, "#f0 = :v0 AND #f1.#f2 = :v1", f.Expr)
	assert.Equal(t, map[string]string{"#f0": "role", "#f1": "attributes", "#f2": "track"}, f.Names)
	assert.Equal(t, &types.AttributeValueMemberS{Value: "go"}, f.Values[":v1"])
}

func TestFilterBuilder_In(t *testing.T) {
	f, ok := newFilterBuilder().
		eq("enable", &types.AttributeValueMemberBOOL{Value: true}).
		in("user_id", []string{"u1", "u2"}).
		build()
	require.True(t, ok)
	assert.Equal(t, "#f0 = :v0 AND #f1 IN (:v1, :v2)", f.Expr)
	assert.Equal(t, "user_id", f.Names["#f1"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "u2"}, f.Values[":v2"])
}

func TestStrKey(t *testing.T) {
	k := strKey("user_id", "u1")
	assert.Equal(t, &types.AttributeValueMemberS{Value: "u1"}, k["user_id"])
}
