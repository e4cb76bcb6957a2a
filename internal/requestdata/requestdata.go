package requestdata

import (
	"context"

	"github.com/google/uuid"
)

type contextKey struct{}

var requestDataKey = contextKey{}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if rd, ok := ctx.Value(requestDataKey).(*RequestData); ok {
		return rd
	}
	return nil
}

type RequestData struct {
	TokenString  string
	RefreshToken string
	AccountID    uuid.UUID
	AccountType  string
	CartorioID   uuid.UUID
}

// IsAdmin reports whether the authenticated account bypasses
// cartório scoping.
func (rd *RequestData) IsAdmin() bool {
	return rd != nil && rd.AccountType == "admin"
}
