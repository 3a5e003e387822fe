package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/order-service/internal/domain"
)

func productIDs(list domain.OrderLineList) []string {
	ids := make([]string, 0, list.Len())
	for _, id := range list.ProductIDs() {
		ids = append(ids, id.String())
	}
	return ids
}

func TestOrderLineList_FromItemsDeduplicatesByProduct(t *testing.T) {
	orderID := domain.NewEntityID()
	cases := []struct {
		name     string
		products []string
		want     []string
	}{
		{name: "empty", products: nil, want: []string{}},
		{name: "distinct", products: []string{"p1", "p2", "p3"}, want: []string{"p1", "p2", "p3"}},
		{name: "adjacent duplicate", products: []string{"p1", "p1", "p2"}, want: []string{"p1", "p2"}},
		{name: "first occurrence wins", products: []string{"p2", "p1", "p2", "p3", "p1"}, want: []string{"p2", "p1", "p3"}},
		{name: "all same", products: []string{"p1", "p1", "p1"}, want: []string{"p1"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lines := make([]domain.OrderLine, 0, len(tc.products))
			for _, p := range tc.products {
				lines = append(lines, domain.NewOrderLine(orderID, domain.EntityIDFrom(p)))
			}

			list := domain.NewOrderLineList(lines...)

			assert.Equal(t, len(tc.want), list.Len())
			assert.Equal(t, tc.want, productIDs(list))
		})
	}
}

func TestOrderLineList_AddIgnoresDuplicateProduct(t *testing.T) {
	orderID := domain.NewEntityID()
	first := domain.NewOrderLine(orderID, domain.EntityIDFrom("p1"))
	dup := domain.NewOrderLine(orderID, domain.EntityIDFrom("p1"))

	var list domain.OrderLineList
	list.Add(first)
	list.Add(dup)

	require.Equal(t, 1, list.Len())
	assert.True(t, list.Items()[0].ID().Equals(first.ID()))
}

func TestOrderLineList_RemoveByLineID(t *testing.T) {
	orderID := domain.NewEntityID()
	a := domain.NewOrderLine(orderID, domain.EntityIDFrom("p1"))
	b := domain.NewOrderLine(orderID, domain.EntityIDFrom("p2"))
	c := domain.NewOrderLine(orderID, domain.EntityIDFrom("p3"))
	list := domain.NewOrderLineList(a, b, c)

	list.Remove(b)
	assert.Equal(t, []string{"p1", "p3"}, productIDs(list))

	list.Remove(b)
	assert.Equal(t, 2, list.Len())

	// после удаления продукт снова можно добавить
	list.Add(domain.NewOrderLine(orderID, domain.EntityIDFrom("p2")))
	assert.Equal(t, []string{"p1", "p3", "p2"}, productIDs(list))
}

func TestOrderLineList_ItemsIsSnapshot(t *testing.T) {
	orderID := domain.NewEntityID()
	list := domain.NewOrderLineList(domain.NewOrderLine(orderID, domain.EntityIDFrom("p1")))

	items := list.Items()
	items[0] = domain.NewOrderLine(orderID, domain.EntityIDFrom("other"))

	assert.Equal(t, []string{"p1"}, productIDs(list))
}
