package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveColumnsDetectsRoles(t *testing.T) {
	header := []string{"Date", "Product ID", "Category", "Region", "Units Sold", "Inventory Level", "Price"}

	res := ResolveColumns(header, nil)
	require.True(t, res.OK())

	assert.Equal(t, "Date", res.Mapping.Date)
	assert.Equal(t, "Product ID", res.Mapping.Product)
	assert.Equal(t, "Units Sold", res.Mapping.Demand)
	assert.Equal(t, "Inventory Level", res.Mapping.Inventory)
	assert.Equal(t, "Category", res.Mapping.Category)
	assert.Equal(t, "Region", res.Mapping.Region)
	assert.Equal(t, "Price", res.Mapping.Price)
}

func TestResolveColumnsCaseInsensitive(t *testing.T) {
	header := []string{"ORDER_DATE", "sku", "qty_sold", "stock_on_hand"}

	res := ResolveColumns(header, nil)
	require.True(t, res.OK())
	assert.Equal(t, "ORDER_DATE", res.Mapping.Date)
	assert.Equal(t, "sku", res.Mapping.Product)
	assert.Equal(t, "qty_sold", res.Mapping.Demand)
	assert.Equal(t, "stock_on_hand", res.Mapping.Inventory)
}

func TestResolveColumnsReportsMissing(t *testing.T) {
	res := ResolveColumns([]string{"Date", "Revenue"}, nil)

	assert.False(t, res.OK())
	assert.Contains(t, res.Missing, RoleProduct)
	assert.Contains(t, res.Missing, RoleDemand)
}

func TestResolveColumnsReportsAmbiguity(t *testing.T) {
	// two columns match the top-ranked "date" keyword; the resolver must not
	// silently pick one
	res := ResolveColumns([]string{"Order Date", "Ship Date", "Product", "Units Sold"}, nil)

	assert.False(t, res.OK())
	assert.Contains(t, res.Missing, RoleDate)
	assert.ElementsMatch(t, []string{"Order Date", "Ship Date"}, res.Ambiguous[RoleDate])
}

func TestResolveColumnsOverrides(t *testing.T) {
	header := []string{"Order Date", "Ship Date", "Product", "Units Sold"}

	res := ResolveColumns(header, map[Role]string{RoleDate: "Order Date"})
	require.True(t, res.OK())
	assert.Equal(t, "Order Date", res.Mapping.Date)
}

func TestResolveColumnsClaimedColumnNotReused(t *testing.T) {
	// "Stock Date" contains both "date" and "stock"; once claimed as the date
	// column it must not double as inventory
	res := ResolveColumns([]string{"Stock Date", "Product", "Units Sold"}, nil)

	require.True(t, res.OK())
	assert.Equal(t, "Stock Date", res.Mapping.Date)
	assert.Empty(t, res.Mapping.Inventory)
}

func TestResolveColumnsRankedKeywords(t *testing.T) {
	// "sold" outranks "units": "Units Sold" wins over "Unit Price"... which is
	// claimed by price anyway, but demand must pick the sold column
	res := ResolveColumns([]string{"Date", "Product", "Units Sold", "Units In Box"}, nil)

	require.True(t, res.OK())
	assert.Equal(t, "Units Sold", res.Mapping.Demand)
}
