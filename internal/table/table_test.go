package table_test

import (
	"math"
	"strings"
	"testing"

	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/UnknownOlympus/meridian/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "order_id,seller_city,price,delivery_delay,geolocation_lat,geolocation_lng\n"

func TestParseCSV(t *testing.T) {
	t.Parallel()

	t.Run("success - typed rows", func(t *testing.T) {
		t.Parallel()
		input := header +
			"1,sao paulo,1000.5,3,-23.55,-46.63\n" +
			"2, palotina ,1,-2.5,-24.28,-53.84\n"

		tbl, err := table.ParseCSV(strings.NewReader(input))

		require.NoError(t, err)
		require.Equal(t, 2, tbl.Len())
		assert.Equal(t, 2, tbl.Located())

		orders := tbl.Orders()
		assert.Equal(t, "sao paulo", orders[0].SellerCity)
		assert.InDelta(t, 1000.5, orders[0].Price, 1e-9)
		assert.InDelta(t, 3.0, orders[0].DeliveryDelay, 1e-9)
		require.NotNil(t, orders[0].Location)
		assert.InDelta(t, -23.55, orders[0].Location.Latitude, 1e-9)
		assert.InDelta(t, -46.63, orders[0].Location.Longitude, 1e-9)
		assert.Equal(t, "palotina", orders[1].SellerCity)
	})

	t.Run("success - missing coordinates are kept but unlocated", func(t *testing.T) {
		t.Parallel()
		input := header +
			"1,ibitinga,10,40,,-48.8\n" +
			"2,ibitinga,10,41,-21.7,NaN\n" +
			"3,ibitinga,10,42,-21.7,-48.8\n"

		tbl, err := table.ParseCSV(strings.NewReader(input))

		require.NoError(t, err)
		assert.Equal(t, 3, tbl.Len())
		assert.Equal(t, 1, tbl.Located())
		orders := tbl.Orders()
		assert.Nil(t, orders[0].Location)
		assert.Nil(t, orders[1].Location)
		assert.NotNil(t, orders[2].Location)
	})

	t.Run("success - unparseable numbers become NaN", func(t *testing.T) {
		t.Parallel()
		input := header + "1,curitiba,abc,,-25.4,-49.2\n"

		tbl, err := table.ParseCSV(strings.NewReader(input))

		require.NoError(t, err)
		orders := tbl.Orders()
		assert.True(t, math.IsNaN(orders[0].Price))
		assert.True(t, math.IsNaN(orders[0].DeliveryDelay))
	})

	t.Run("success - header only is an empty table", func(t *testing.T) {
		t.Parallel()

		tbl, err := table.ParseCSV(strings.NewReader(header))

		require.NoError(t, err)
		assert.Equal(t, 0, tbl.Len())
		assert.Empty(t, tbl.Orders())
	})

	t.Run("success - windows-1252 input", func(t *testing.T) {
		t.Parallel()
		// "são paulo" with 0xE3 for ã
		input := []byte(header + "1,s\xe3o paulo,5,1,-23.5,-46.6\n")

		tbl, err := table.ParseCSV(strings.NewReader(string(input)))

		require.NoError(t, err)
		assert.Equal(t, "são paulo", tbl.Orders()[0].SellerCity)
	})

	t.Run("success - utf-8 byte order mark", func(t *testing.T) {
		t.Parallel()
		input := "\xEF\xBB\xBF" + "seller_city,price,delivery_delay,geolocation_lat,geolocation_lng\n" +
			"são paulo,5,1,-23.5,-46.6\n"

		tbl, err := table.ParseCSV(strings.NewReader(input))

		require.NoError(t, err)
		assert.Equal(t, 1, tbl.Len())
	})

	t.Run("error - missing columns are all reported", func(t *testing.T) {
		t.Parallel()
		input := "seller_city,price\nsao paulo,10\n"

		tbl, err := table.ParseCSV(strings.NewReader(input))

		require.Nil(t, tbl)
		require.ErrorIs(t, err, table.ErrMissingColumn)
		assert.ErrorContains(t, err, "delivery_delay, geolocation_lat, geolocation_lng")
	})

	t.Run("error - empty input", func(t *testing.T) {
		t.Parallel()

		tbl, err := table.ParseCSV(strings.NewReader(""))

		require.Nil(t, tbl)
		require.ErrorIs(t, err, table.ErrMissingColumn)
	})

	t.Run("error - ragged csv", func(t *testing.T) {
		t.Parallel()
		input := header + "1,sao paulo,10\n"

		tbl, err := table.ParseCSV(strings.NewReader(input))

		require.Nil(t, tbl)
		require.ErrorContains(t, err, "failed to parse csv")
	})
}

func TestParseCSV_DuplicateColumns(t *testing.T) {
	t.Parallel()

	t.Run("first occurrence of a repeated column wins", func(t *testing.T) {
		t.Parallel()
		input := "seller_city,price,delivery_delay,geolocation_lat,geolocation_lng,price\n" +
			"sao paulo,1000,3,-23.55,-46.63,7\n"

		tbl, err := table.ParseCSV(strings.NewReader(input))

		require.NoError(t, err)
		require.Equal(t, 1, tbl.Len())
		assert.InDelta(t, 1000.0, tbl.Orders()[0].Price, 1e-9)
		assert.Equal(t, 1, tbl.Located())
	})

	t.Run("renamed copy does not clash with an existing column", func(t *testing.T) {
		t.Parallel()
		input := "price.1,seller_city,price,delivery_delay,geolocation_lat,geolocation_lng,price,price\n" +
			"x,recife,10,1,-8,-34.9,20,30\n"

		tbl, err := table.ParseCSV(strings.NewReader(input))

		require.NoError(t, err)
		assert.InDelta(t, 10.0, tbl.Orders()[0].Price, 1e-9)
	})
}

func TestParseCSV_InfiniteMetricsAreMissing(t *testing.T) {
	t.Parallel()
	input := header +
		"1,sp,inf,inf,-23,-46\n" +
		"2,rio,-Infinity,-inf,-22.9,-43.2\n"

	tbl, err := table.ParseCSV(strings.NewReader(input))

	require.NoError(t, err)
	require.Equal(t, 2, tbl.Len())
	for _, order := range tbl.Orders() {
		assert.True(t, math.IsNaN(order.Price), order.SellerCity)
		assert.True(t, math.IsNaN(order.DeliveryDelay), order.SellerCity)
	}
	assert.Equal(t, 2, tbl.Located())
}

func TestFromRecords_ShortRowsArePadded(t *testing.T) {
	t.Parallel()
	records := [][]string{
		{"seller_city", "price", "delivery_delay", "geolocation_lat", "geolocation_lng"},
		{"maringa", "12", "2"},
	}

	tbl, err := table.FromRecords(records)

	require.NoError(t, err)
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, 0, tbl.Located())
}

func TestFromOrders(t *testing.T) {
	t.Parallel()
	orders := []models.OrderRecord{
		{SellerCity: " recife ", Price: 10, DeliveryDelay: 1, Location: &models.Coordinates{Latitude: -8, Longitude: -34.9}},
		{SellerCity: "natal", Price: 5, DeliveryDelay: 2},
		{SellerCity: "belem", Price: 5, DeliveryDelay: 2, Location: &models.Coordinates{Latitude: math.NaN(), Longitude: -48}},
	}

	tbl := table.FromOrders(orders)

	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, 1, tbl.Located())
	assert.Equal(t, "recife", tbl.Orders()[0].SellerCity)
	assert.Nil(t, tbl.Orders()[2].Location)
}

func TestFromOrders_InfiniteMetricsAreMissing(t *testing.T) {
	t.Parallel()

	tbl := table.FromOrders([]models.OrderRecord{
		{SellerCity: "recife", Price: math.Inf(1), DeliveryDelay: math.Inf(-1)},
	})

	order := tbl.Orders()[0]
	assert.True(t, math.IsNaN(order.Price))
	assert.True(t, math.IsNaN(order.DeliveryDelay))
}

func TestTable_IsImmutable(t *testing.T) {
	t.Parallel()
	tbl := table.FromOrders([]models.OrderRecord{
		{SellerCity: "recife", Price: 10, Location: &models.Coordinates{Latitude: -8, Longitude: -34.9}},
	})

	orders := tbl.Orders()
	orders[0].SellerCity = "changed"
	orders[0].Location.Latitude = 99

	again := tbl.Orders()
	assert.Equal(t, "recife", again[0].SellerCity)
	assert.InDelta(t, -8.0, again[0].Location.Latitude, 1e-9)
}

func TestTable_NilIsEmpty(t *testing.T) {
	t.Parallel()
	var tbl *table.Table

	assert.Equal(t, 0, tbl.Len())
	assert.Equal(t, 0, tbl.Located())
	assert.Empty(t, tbl.Orders())
}

func TestValidateHeader(t *testing.T) {
	t.Parallel()

	require.NoError(t, table.ValidateHeader(table.RequiredColumns))

	err := table.ValidateHeader([]string{"seller_city", "price", "delivery_delay", "geolocation_lat"})
	require.ErrorIs(t, err, table.ErrMissingColumn)
	assert.ErrorContains(t, err, "geolocation_lng")
}
