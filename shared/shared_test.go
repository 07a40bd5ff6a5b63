package shared_test

import (
	"testing"

	"clinicore/shared"
	"clinicore/shared/dto"

	"github.com/stretchr/testify/assert"
)

func TestCalculateTotalPage(t *testing.T) {
	tests := []struct {
		name  string
		total int
		limit int
		want  int
	}{
		{"zero total", 0, 10, 1},
		{"exact pages", 20, 10, 2},
		{"partial last page", 21, 10, 3},
		{"zero limit", 5, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shared.CalculateTotalPage(tt.total, tt.limit))
		})
	}
}

func TestFilterByTenantAndID(t *testing.T) {
	filter := shared.FilterByTenantAndID("tenant-1", "res-1", "id", "resources")

	where, args := filter.GetWhereClause()

	assert.Contains(t, where, "resources.tenant_id = :tenant_id")
	assert.Contains(t, where, "resources.id = :id")
	assert.Equal(t, "tenant-1", args["tenant_id"])
	assert.Equal(t, "res-1", args["id"])
}

func TestBuildCacheKey(t *testing.T) {
	assert.Equal(t, "resource:get", shared.BuildCacheKey("resource:get"))
	assert.Equal(t, "resource:get:t1:r1", shared.BuildCacheKey("resource:get", "t1", "r1"))
}

func TestBuildCacheKeyWithQueryIsDeterministic(t *testing.T) {
	params := dto.QueryParams{Page: 1, Limit: 10, SortBy: "created_at", SortDir: "DESC"}
	filter := dto.FilterGroup{
		Operator: dto.FilterGroupOperatorAnd,
		Filters: []any{
			dto.Filter{Field: "tenant_id", Operator: dto.FilterOperatorEq, Value: "t1"},
			dto.Filter{Field: "active", Operator: dto.FilterOperatorEq, Value: true},
		},
	}

	first := shared.BuildCacheKeyWithQuery("resource:gets", params, filter)
	second := shared.BuildCacheKeyWithQuery("resource:gets", params, filter)

	assert.Equal(t, first, second)
}
