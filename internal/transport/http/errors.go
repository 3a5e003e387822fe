package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/order-service/internal/domain"
)

// statusForKind переводит вид ошибки use case в HTTP-статус.
func statusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindInvalidArgument:
		return http.StatusBadRequest
	case domain.KindInvalidTransition:
		return http.StatusConflict
	case domain.KindUpstreamUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	status := statusForKind(kind)
	_ = c.Error(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		// детали хранилища наружу не отдаём
		message = "internal error"
	}
	c.JSON(status, gin.H{
		"error":   string(kind),
		"message": message,
	})
}
