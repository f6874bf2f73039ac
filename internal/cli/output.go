package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/vladislavdragonenkov/ordersync/internal/domain"
	"github.com/vladislavdragonenkov/ordersync/internal/store"
)

// Коды выхода orderctl.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // операция store завершилась с ошибкой
	ExitCommandError = 2 // неверные аргументы или конфигурация
)

// ExitError несёт код выхода процесса.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode извлекает код выхода; прочие ошибки дают ExitFailure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// storeFailure превращает State.Error в ошибку команды.
func storeFailure(state store.State) error {
	if state.Error == "" {
		return nil
	}
	return NewExitError(ExitFailure, state.Error)
}

// printer выводит заказы текстом или JSON.
type printer struct {
	format string
	w      io.Writer
}

func (p *printer) orders(orders []domain.Order) error {
	if p.format == formatJSON {
		if orders == nil {
			orders = []domain.Order{}
		}
		return p.json(orders)
	}
	if len(orders) == 0 {
		_, err := fmt.Fprintln(p.w, "no orders")
		return err
	}
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCUSTOMER\tDAYS\tTJM\tTVA %\tTOTAL HT\tTOTAL TTC")
	for _, o := range orders {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%.2f\t%.2f\t%.2f\t%.2f\n", o.ID, o.Customer, o.NbDays, o.TJM, o.TauxTVA, o.TotalHT, o.TotalTTC)
	}
	return tw.Flush()
}

func (p *printer) order(order domain.Order) error {
	if p.format == formatJSON {
		return p.json(order)
	}
	return p.orders([]domain.Order{order})
}

// state печатает снимок store в режиме watch.
func (p *printer) state(state store.State) error {
	if p.format == formatJSON {
		return p.json(stateView{
			Orders:  nonNil(state.Orders),
			Loading: state.Loading,
			Error:   state.Error,
		})
	}
	switch {
	case state.Loading:
		_, err := fmt.Fprintln(p.w, "loading...")
		return err
	case state.Error != "":
		_, err := fmt.Fprintf(p.w, "error: %s\n", state.Error)
		return err
	}
	return p.orders(state.Orders)
}

func (p *printer) message(format string, args ...any) error {
	if p.format == formatJSON {
		return p.json(map[string]string{"message": fmt.Sprintf(format, args...)})
	}
	_, err := fmt.Fprintf(p.w, format+"\n", args...)
	return err
}

func (p *printer) json(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type stateView struct {
	Orders  []domain.Order `json:"orders"`
	Loading bool           `json:"loading"`
	Error   string         `json:"error,omitempty"`
}

func nonNil(orders []domain.Order) []domain.Order {
	if orders == nil {
		return []domain.Order{}
	}
	return orders
}
