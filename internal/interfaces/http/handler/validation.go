package handler

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/stockwatch/backend/internal/domain/watch"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("watchedevent", validWatchedEvent)
	}
}

// validWatchedEvent accepts canonical watched event names like
// "salesOrder.fulfilled"
func validWatchedEvent(fl validator.FieldLevel) bool {
	_, err := watch.ParseWatchedEvent(fl.Field().String())
	return err == nil
}
