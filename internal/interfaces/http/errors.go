package http

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// bindJSON parsea el cuerpo y lo valida con las etiquetas validate del DTO.
// Devuelve un error de dominio de validación listo para writeError.
func bindJSON(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return domain.Validationf("cuerpo inválido: %v", err)
	}
	return validateStruct(out)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.Validationf("%v", err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Namespace()+":"+fe.Tag())
	}
	return &requestError{fields: verrs, msg: strings.Join(fields, ", ")}
}

// requestError agrupa los campos inválidos del cuerpo.
type requestError struct {
	fields validator.ValidationErrors
	msg    string
}

func (e *requestError) Error() string { return "campos inválidos: " + e.msg }
func (e *requestError) Unwrap() error { return domain.ErrValidation }

// writeError traduce un error del núcleo a estado HTTP + cuerpo ErrorResponse.
func writeError(c *fiber.Ctx, err error) error {
	status, body := mapError(err)
	return c.Status(status).JSON(body)
}

func mapError(err error) (int, dto.ErrorResponse) {
	var (
		stockErr   *domain.StockError
		overErr    *domain.OverReceiptError
		reqErr     *requestError
		storageErr *domain.StorageError
	)
	switch {
	case errors.As(err, &reqErr):
		details := make(map[string]string, len(reqErr.fields))
		for _, fe := range reqErr.fields {
			details[fe.Namespace()] = fe.Tag()
		}
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: err.Error(), Details: details}
	case errors.As(err, &stockErr):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error(), Details: map[string]string{
			"item_id":      stockErr.ItemID,
			"warehouse_id": stockErr.WarehouseID,
			"requested":    stockErr.Requested.String(),
			"available":    stockErr.Available.String(),
		}}
	case errors.As(err, &overErr):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "OVER_RECEIPT", Message: err.Error(), Details: map[string]string{
			"po_line_id": overErr.POLineID,
			"requested":  overErr.Requested.String(),
			"remaining":  overErr.Remaining.String(),
		}}
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()}
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()}
	case errors.Is(err, domain.ErrOverReceipt):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "OVER_RECEIPT", Message: err.Error()}
	case errors.Is(err, domain.ErrAlreadyPosted):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "ALREADY_POSTED", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidState):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "INVALID_STATE", Message: err.Error()}
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()}
	case errors.As(err, &storageErr), errors.Is(err, domain.ErrStorage):
		// No se filtra el detalle del driver.
		return fiber.StatusServiceUnavailable, dto.ErrorResponse{Code: "STORAGE_UNAVAILABLE", Message: "almacenamiento no disponible, reintente la operación"}
	default:
		return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"}
	}
}

// ErrorHandler manejador de errores de fiber: errores de fiber conservan su código, el resto pasa por mapError.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: "HTTP_ERROR", Message: fe.Message})
	}
	return writeError(c, err)
}
