package dynamo

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/conference-api/internal/domain"
)

// attributesAttr is the map attribute holding free-form audience attributes.
const attributesAttr = "attributes"

// maxInOperands is DynamoDB's limit on the right-hand side of an IN comparison.
const maxInOperands = 100

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

// expr is a rendered condition with its placeholder maps.
type expr struct {
	Expr   string
	Names  map[string]string
	Values map[string]types.AttributeValue
}

// filterBuilder ANDs equality and membership conditions into one filter
// expression. Every attribute goes through a #name placeholder so reserved
// words ("role", "enable") need no special casing.
type filterBuilder struct {
	clauses []string
	names   map[string]string
	values  map[string]types.AttributeValue
	n       int
}

func newFilterBuilder() *filterBuilder {
	return &filterBuilder{
		names:  make(map[string]string),
		values: make(map[string]types.AttributeValue),
	}
}

func (b *filterBuilder) name(attr string) string {
	key := fmt.Sprintf("#f%d", len(b.names))
	b.names[key] = attr
	return key
}

func (b *filterBuilder) value(v types.AttributeValue) string {
	key := fmt.Sprintf(":v%d", b.n)
	b.n++
	b.values[key] = v
	return key
}

func (b *filterBuilder) eq(attr string, v types.AttributeValue) *filterBuilder {
	b.clauses = append(b.clauses, fmt.Sprintf("%s = %s", b.name(attr), b.value(v)))
	return b
}

func (b *filterBuilder) in(attr string, vs []string) *filterBuilder {
	placeholders := make([]string, len(vs))
	for i, v := range vs {
		placeholders[i] = b.value(&types.AttributeValueMemberS{Value: v})
	}
	b.clauses = append(b.clauses, fmt.Sprintf("%s IN (%s)", b.name(attr), strings.Join(placeholders, ", ")))
	return b
}

// attrEq compares one key of the attributes map.
func (b *filterBuilder) attrEq(key string, v types.AttributeValue) *filterBuilder {
	path := b.name(attributesAttr) + "." + b.name(key)
	b.clauses = append(b.clauses, fmt.Sprintf("%s = %s", path, b.value(v)))
	return b
}

// criteria adds one string equality per entry, in key order so the rendered
// expression is deterministic. Keys for which isField is false are matched
// inside the attributes map.
func (b *filterBuilder) criteria(c domain.Criteria, isField func(string) bool) *filterBuilder {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := &types.AttributeValueMemberS{Value: c[k]}
		if isField(k) {
			b.eq(k, v)
		} else {
			b.attrEq(k, v)
		}
	}
	return b
}

// build renders the expression; ok is false when no condition was added.
func (b *filterBuilder) build() (e expr, ok bool) {
	if len(b.clauses) == 0 {
		return expr{}, false
	}
	return expr{Expr: strings.Join(b.clauses, " AND "), Names: b.names, Values: b.values}, true
}
