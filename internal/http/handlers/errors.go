package handlers

import apperr "github.com/yungbote/sdgraph-backend/internal/pkg/errors"

func badRequest(msg string) error {
	return apperr.Validationf("", "", "%s", msg)
}
