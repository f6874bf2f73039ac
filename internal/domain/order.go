package domain

// Order описывает оплачиваемый заказ: количество дней, дневная ставка и ставка НДС
// плюс вычисляемые суммы.
type Order struct {
	// ID присваивается сервером и не меняется после создания.
	ID       int64  `json:"id"`
	Customer string `json:"customer"`
	// NbDays: количество оплачиваемых дней, не меньше 1.
	NbDays int `json:"nbDays"`
	// TJM: дневная ставка (taux journalier moyen), не отрицательная.
	TJM float64 `json:"tjm"`
	// TauxTVA: ставка НДС в процентах, от 0 до 100.
	TauxTVA  float64 `json:"tauxTva"`
	TotalHT  float64 `json:"totalHt"`
	TotalTTC float64 `json:"totalTtc"`
}

// CreateOrderRequest описывает новый заказ: без ID и без сумм.
type CreateOrderRequest struct {
	Customer string  `json:"customer"`
	NbDays   int     `json:"nbDays"`
	TJM      float64 `json:"tjm"`
	TauxTVA  float64 `json:"tauxTva"`
}

// UpdateOrderRequest описывает изменение существующего заказа.
type UpdateOrderRequest struct {
	ID       int64   `json:"id"`
	Customer string  `json:"customer"`
	NbDays   int     `json:"nbDays"`
	TJM      float64 `json:"tjm"`
	TauxTVA  float64 `json:"tauxTva"`
}

// WithTotals возвращает копию заказа с пересчитанными TotalHT и TotalTTC.
func (o Order) WithTotals() Order {
	o.TotalHT, o.TotalTTC = ComputeTotals(o.NbDays, o.TJM, o.TauxTVA)
	return o
}

// ValidateInvariants проверяет диапазоны полей и согласованность сумм.
func (o *Order) ValidateInvariants() []error {
	errs := validateFields(o.Customer, o.NbDays, o.TJM, o.TauxTVA)

	ht, ttc := ComputeTotals(o.NbDays, o.TJM, o.TauxTVA)
	if ht != o.TotalHT || ttc != o.TotalTTC {
		errs = append(errs, ErrTotalsMismatch)
	}

	return errs
}

// Order собирает заказ из запроса с уже посчитанными суммами (ID = 0).
func (r CreateOrderRequest) Order() Order {
	return Order{
		Customer: r.Customer,
		NbDays:   r.NbDays,
		TJM:      r.TJM,
		TauxTVA:  r.TauxTVA,
	}.WithTotals()
}

// Validate проверяет поля запроса на создание.
func (r CreateOrderRequest) Validate() []error {
	return validateFields(r.Customer, r.NbDays, r.TJM, r.TauxTVA)
}

// Order собирает заказ из запроса на обновление с пересчитанными суммами.
func (r UpdateOrderRequest) Order() Order {
	return Order{
		ID:       r.ID,
		Customer: r.Customer,
		NbDays:   r.NbDays,
		TJM:      r.TJM,
		TauxTVA:  r.TauxTVA,
	}.WithTotals()
}

// Validate проверяет поля запроса на обновление.
func (r UpdateOrderRequest) Validate() []error {
	errs := validateFields(r.Customer, r.NbDays, r.TJM, r.TauxTVA)
	if r.ID <= 0 {
		errs = append(errs, ErrOrderIDRequired)
	}
	return errs
}

func validateFields(customer string, nbDays int, tjm, tauxTVA float64) []error {
	var errs []error

	if customer == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if nbDays < 1 {
		errs = append(errs, ErrNbDaysInvalid)
	}
	if tjm < 0 {
		errs = append(errs, ErrTJMNegative)
	}
	if tauxTVA < 0 || tauxTVA > 100 {
		errs = append(errs, ErrTauxTVAOutOfRange)
	}

	return errs
}
