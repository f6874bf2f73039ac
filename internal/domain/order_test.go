package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/ordersync/internal/domain"
)

func TestComputeTotals(t *testing.T) {
	cases := []struct {
		name    string
		nbDays  int
		tjm     float64
		tauxTVA float64
		wantHT  float64
		wantTTC float64
	}{
		{name: "reference order", nbDays: 5, tjm: 650, tauxTVA: 20, wantHT: 3250, wantTTC: 3900},
		{name: "zero rate", nbDays: 3, tjm: 0, tauxTVA: 20, wantHT: 0, wantTTC: 0},
		{name: "no vat", nbDays: 10, tjm: 450.5, tauxTVA: 0, wantHT: 4505, wantTTC: 4505},
		{name: "reduced vat", nbDays: 2, tjm: 100, tauxTVA: 5.5, wantHT: 200, wantTTC: 211},
		{name: "full rate", nbDays: 1, tjm: 80, tauxTVA: 100, wantHT: 80, wantTTC: 160},
		{name: "decimal rate", nbDays: 3, tjm: 0.1, tauxTVA: 10, wantHT: 0.3, wantTTC: 0.33},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ht, ttc := domain.ComputeTotals(tc.nbDays, tc.tjm, tc.tauxTVA)
			assert.Equal(t, tc.wantHT, ht)
			assert.Equal(t, tc.wantTTC, ttc)
		})
	}
}

func TestComputeTotals_Deterministic(t *testing.T) {
	for i := 0; i < 100; i++ {
		ht, ttc := domain.ComputeTotals(7, 612.35, 19.6)
		ht2, ttc2 := domain.ComputeTotals(7, 612.35, 19.6)
		require.Equal(t, ht, ht2)
		require.Equal(t, ttc, ttc2)
	}
}

func TestOrderWithTotals_OverridesStaleTotals(t *testing.T) {
	order := domain.Order{ID: 1, Customer: "Acme", NbDays: 5, TJM: 650, TauxTVA: 20, TotalHT: 1, TotalTTC: 2}

	fresh := order.WithTotals()

	assert.Equal(t, 3250.0, fresh.TotalHT)
	assert.Equal(t, 3900.0, fresh.TotalTTC)
	assert.Equal(t, 1.0, order.TotalHT, "original must stay untouched")
}

func TestCreateOrderRequest_Order(t *testing.T) {
	req := domain.CreateOrderRequest{Customer: "Acme", NbDays: 5, TJM: 650, TauxTVA: 20}

	order := req.Order()

	assert.Equal(t, int64(0), order.ID)
	assert.Equal(t, "Acme", order.Customer)
	assert.Equal(t, 3250.0, order.TotalHT)
	assert.Equal(t, 3900.0, order.TotalTTC)
}

func TestOrderValidateInvariants_Ok(t *testing.T) {
	order := domain.Order{ID: 1, Customer: "Acme", NbDays: 5, TJM: 650, TauxTVA: 20}.WithTotals()
	assert.Empty(t, order.ValidateInvariants())
}

func TestOrderValidateInvariants_Errors(t *testing.T) {
	cases := []struct {
		name string
		mut  func(o *domain.Order)
		want error
	}{
		{name: "no customer", mut: func(o *domain.Order) { o.Customer = "" }, want: domain.ErrCustomerRequired},
		{name: "zero days", mut: func(o *domain.Order) { o.NbDays = 0; *o = o.WithTotals() }, want: domain.ErrNbDaysInvalid},
		{name: "negative tjm", mut: func(o *domain.Order) { o.TJM = -1; *o = o.WithTotals() }, want: domain.ErrTJMNegative},
		{name: "vat above 100", mut: func(o *domain.Order) { o.TauxTVA = 101; *o = o.WithTotals() }, want: domain.ErrTauxTVAOutOfRange},
		{name: "stale totals", mut: func(o *domain.Order) { o.TotalTTC = 1 }, want: domain.ErrTotalsMismatch},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			order := domain.Order{ID: 1, Customer: "Acme", NbDays: 5, TJM: 650, TauxTVA: 20}.WithTotals()
			tc.mut(&order)
			assert.Contains(t, order.ValidateInvariants(), tc.want)
		})
	}
}

func TestUpdateOrderRequest_Validate(t *testing.T) {
	req := domain.UpdateOrderRequest{Customer: "Acme", NbDays: 1, TJM: 1, TauxTVA: 1}
	assert.Equal(t, []error{domain.ErrOrderIDRequired}, req.Validate())

	req.ID = 3
	assert.Empty(t, req.Validate())
}

func TestJoinErrors(t *testing.T) {
	msg := domain.JoinErrors([]error{domain.ErrCustomerRequired, domain.ErrNbDaysInvalid})
	assert.Equal(t, "customer is required; nbDays must be at least 1", msg)
	assert.Equal(t, "", domain.JoinErrors(nil))
}
