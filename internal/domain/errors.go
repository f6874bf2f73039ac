package domain

import (
	"errors"
	"strings"
)

var (
	// Ошибка отсутствующего имени клиента.
	ErrCustomerRequired = errors.New("customer is required")
	// Ошибка при количестве дней меньше одного.
	ErrNbDaysInvalid = errors.New("nbDays must be at least 1")
	// Ошибка отрицательной дневной ставки.
	ErrTJMNegative = errors.New("tjm must be non-negative")
	// Ошибка ставки НДС вне диапазона 0..100.
	ErrTauxTVAOutOfRange = errors.New("tauxTva must be between 0 and 100")
	// Ошибка несоответствия сумм полям заказа.
	ErrTotalsMismatch = errors.New("order totals do not match nbDays, tjm and tauxTva")
	// Ошибка отсутствующего идентификатора заказа.
	ErrOrderIDRequired = errors.New("order id is required")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderConflict возвращается, если запись с таким ID уже существует.
	ErrOrderConflict = errors.New("order already exists")
	// ErrOutboxPublish оборачивает ошибку публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
	// ErrOutboxMessageNotFound возвращается при попытке сменить статус неизвестного сообщения.
	ErrOutboxMessageNotFound = errors.New("outbox message not found")
	// ErrInvalidCredentials означает неверную пару логин/пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated возвращается для отсутствующего, неизвестного или истёкшего токена.
	ErrUnauthenticated = errors.New("not authenticated")
)

// IsNotFound проверяет, является ли ошибка отсутствием заказа.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound)
}

// JoinErrors склеивает ошибки валидации в одно сообщение.
func JoinErrors(errs []error) string {
	parts := make([]string, 0, len(errs))
	for _, err := range errs {
		parts = append(parts, err.Error())
	}
	return strings.Join(parts, "; ")
}
